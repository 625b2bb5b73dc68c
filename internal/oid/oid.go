// Package oid implements the 12-byte record identifiers used by the
// document store, rendered on the wire as 24 hexadecimal characters.
package oid

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"sync/atomic"
	"time"
)

// ErrInvalidID is returned by Parse for anything that is not 24 hex characters.
var ErrInvalidID = errors.New("invalid id")

// ID is a store-assigned record identifier: a 4-byte unix timestamp,
// 5 process-lifetime random bytes, and a 3-byte counter.
type ID [12]byte

var (
	processBytes [5]byte
	counter      uint32
)

func init() {
	if _, err := rand.Read(processBytes[:]); err != nil {
		panic("oid: rand: " + err.Error())
	}
	var seed [4]byte
	if _, err := rand.Read(seed[:]); err != nil {
		panic("oid: rand: " + err.Error())
	}
	counter = binary.BigEndian.Uint32(seed[:])
}

// New returns a fresh unique ID. IDs generated within one process are
// strictly distinct; across processes the random bytes keep collisions
// negligible.
func New() ID {
	var id ID
	binary.BigEndian.PutUint32(id[0:4], uint32(time.Now().Unix()))
	copy(id[4:9], processBytes[:])
	n := atomic.AddUint32(&counter, 1)
	id[9] = byte(n >> 16)
	id[10] = byte(n >> 8)
	id[11] = byte(n)
	return id
}

// Parse converts a 24-character hex string into an ID. It accepts upper or
// lower case and returns ErrInvalidID for anything else, so callers can
// reject malformed input before touching the store.
func Parse(s string) (ID, error) {
	var id ID
	if len(s) != 24 {
		return id, ErrInvalidID
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return id, ErrInvalidID
	}
	copy(id[:], b)
	return id, nil
}

// IsValid reports whether s parses as an ID.
func IsValid(s string) bool {
	_, err := Parse(s)
	return err == nil
}

// Hex returns the lowercase hex form. Hex is the inverse of Parse for
// lowercase input.
func (id ID) Hex() string {
	return hex.EncodeToString(id[:])
}

func (id ID) String() string {
	return id.Hex()
}
