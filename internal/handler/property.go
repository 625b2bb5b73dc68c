package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/lovedhomes/lovedhomes/internal/model"
	"github.com/lovedhomes/lovedhomes/internal/store"
	"github.com/lovedhomes/lovedhomes/internal/websocket"
)

type PropertyHandler struct {
	props  *store.PropertyStore
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewPropertyHandler(ps *store.PropertyStore, hub *websocket.Hub, logger *slog.Logger) *PropertyHandler {
	return &PropertyHandler{props: ps, hub: hub, logger: logger}
}

func (h *PropertyHandler) broadcast(action, id string) {
	if h.hub != nil {
		h.hub.Broadcast(websocket.NewMessage("property", action, id, nil))
	}
}

type propertyCreateRequest struct {
	Name     string  `json:"name"`
	PhotoURL *string `json:"photo_url"`
}

func (h *PropertyHandler) List(w http.ResponseWriter, r *http.Request) {
	props, err := h.props.List()
	if err != nil {
		h.logger.Error("list properties", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list properties"})
		return
	}
	if props == nil {
		props = []model.Property{}
	}
	writeJSON(w, http.StatusOK, props)
}

func (h *PropertyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req propertyCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	prop, err := h.props.Create(req.Name, req.PhotoURL)
	if err != nil {
		h.logger.Error("create property", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create property"})
		return
	}

	h.broadcast("created", prop.ID)

	writeJSON(w, http.StatusCreated, prop)
}

func (h *PropertyHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	var req model.PropertyUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	prop, err := h.props.Update(id, req)
	if err == store.ErrNoFields {
		writeJSON(w, http.StatusOK, map[string]bool{"updated": false})
		return
	}
	if err != nil {
		h.logger.Error("update property", "id", id.Hex(), "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update property"})
		return
	}
	if prop == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}

	h.broadcast("updated", prop.ID)

	writeJSON(w, http.StatusOK, prop)
}

func (h *PropertyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	if err := h.props.Delete(id); err != nil {
		h.logger.Error("delete property", "id", id.Hex(), "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete property"})
		return
	}

	h.broadcast("deleted", id.Hex())

	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}
