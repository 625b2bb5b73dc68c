package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/lovedhomes/lovedhomes/internal/docstore"
	"github.com/lovedhomes/lovedhomes/internal/handler"
	"github.com/lovedhomes/lovedhomes/internal/middleware"
	"github.com/lovedhomes/lovedhomes/internal/store"
	ws "github.com/lovedhomes/lovedhomes/internal/websocket"
)

type Server struct {
	ds        *docstore.Store
	hub       *ws.Hub
	propertyH *handler.PropertyHandler
	itemH     *handler.ItemHandler
	uploadH   *handler.UploadHandler
	logger    *slog.Logger
}

func New(ds *docstore.Store, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	itemStore := store.NewItemStore(ds)
	propertyStore := store.NewPropertyStore(ds, itemStore)

	return &Server{
		ds:        ds,
		hub:       hub,
		propertyH: handler.NewPropertyHandler(propertyStore, hub, logger.With("component", "property")),
		itemH:     handler.NewItemHandler(itemStore, hub, logger.With("component", "item")),
		uploadH:   handler.NewUploadHandler(logger.With("component", "upload")),
		logger:    logger,
	}
}

// Hub returns the websocket hub, for broadcasting outside request handling.
func (s *Server) Hub() *ws.Hub {
	return s.hub
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.rootHandler)
	mux.HandleFunc("GET /test", s.diagnosticsHandler)
	mux.HandleFunc("GET /health", s.healthHandler)
	mux.Handle("GET /ws", ws.Handler(s.hub, s.logger.With("component", "websocket")))

	mux.HandleFunc("POST /api/upload", s.uploadH.Upload)

	mux.HandleFunc("GET /api/properties", s.propertyH.List)
	mux.HandleFunc("POST /api/properties", s.propertyH.Create)
	mux.HandleFunc("PATCH /api/properties/{id}", s.propertyH.Update)
	mux.HandleFunc("DELETE /api/properties/{id}", s.propertyH.Delete)

	mux.HandleFunc("GET /api/properties/{id}/items", s.itemH.List)
	mux.HandleFunc("POST /api/properties/{id}/items", s.itemH.Create)
	mux.HandleFunc("PATCH /api/items/{id}", s.itemH.Update)
	mux.HandleFunc("DELETE /api/items/{id}", s.itemH.Delete)

	var h http.Handler = mux
	h = middleware.CORS(h)
	return middleware.RequestLogger(s.logger.With("component", "http"))(h)
}

func (s *Server) rootHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Loved Homes backend running"})
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// diagnosticsHandler reports backend and database status for quick manual
// checks during deployment.
func (s *Server) diagnosticsHandler(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"backend":           "running",
		"database":          "not available",
		"database_name":     s.ds.Path(),
		"connection_status": "not connected",
		"collections":       []string{},
	}

	if err := s.ds.Ping(); err != nil {
		resp["database"] = "error: " + err.Error()
		writeJSON(w, http.StatusOK, resp)
		return
	}
	resp["database"] = "connected"
	resp["connection_status"] = "connected"

	if collections, err := s.ds.Collections(); err == nil && collections != nil {
		resp["collections"] = collections
	}

	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
