// Package store implements the property and checklist-item managers on top
// of the document store.
package store

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lovedhomes/lovedhomes/internal/docstore"
)

var (
	// ErrNoFields signals a partial update that carried no fields. It is a
	// no-op, distinct from the target not existing.
	ErrNoFields = errors.New("no fields to update")

	// ErrCycle signals that the cascade delete revisited an item, meaning
	// the stored parent graph is not a forest.
	ErrCycle = errors.New("parent cycle detected")
)

// decode converts a stored document into a typed record via its JSON form.
func decode(doc docstore.Doc, out any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal doc: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode record: %w", err)
	}
	return nil
}

// encode converts a typed record into a storable document.
func encode(in any) (docstore.Doc, error) {
	data, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("marshal record: %w", err)
	}
	var doc docstore.Doc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	return doc, nil
}
