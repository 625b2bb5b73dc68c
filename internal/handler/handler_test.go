package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lovedhomes/lovedhomes/internal/docstore"
	"github.com/lovedhomes/lovedhomes/internal/store"
)

// setupMux wires the handlers into a mux with the production route patterns
// so path parameters resolve the same way they do in the server.
func setupMux(t *testing.T) (*http.ServeMux, *store.PropertyStore, *store.ItemStore) {
	t.Helper()

	ds, err := docstore.Open(":memory:")
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { ds.Close() })

	items := store.NewItemStore(ds)
	props := store.NewPropertyStore(ds, items)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	propertyH := NewPropertyHandler(props, nil, logger)
	itemH := NewItemHandler(items, nil, logger)
	uploadH := NewUploadHandler(logger)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/upload", uploadH.Upload)
	mux.HandleFunc("GET /api/properties", propertyH.List)
	mux.HandleFunc("POST /api/properties", propertyH.Create)
	mux.HandleFunc("PATCH /api/properties/{id}", propertyH.Update)
	mux.HandleFunc("DELETE /api/properties/{id}", propertyH.Delete)
	mux.HandleFunc("GET /api/properties/{id}/items", itemH.List)
	mux.HandleFunc("POST /api/properties/{id}/items", itemH.Create)
	mux.HandleFunc("PATCH /api/items/{id}", itemH.Update)
	mux.HandleFunc("DELETE /api/items/{id}", itemH.Delete)
	return mux, props, items
}

func doJSON(t *testing.T, mux *http.ServeMux, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.NewDecoder(bytes.NewReader(rec.Body.Bytes())).Decode(out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}
