// Package handler maps HTTP requests onto the property and checklist stores.
// Handlers validate identifiers and payload shapes, translate store results
// into status codes, and hold no business logic of their own.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/lovedhomes/lovedhomes/internal/oid"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// pathID parses the {id} path segment. Malformed ids are rejected here,
// before any store access.
func pathID(r *http.Request) (oid.ID, error) {
	return oid.Parse(r.PathValue("id"))
}
