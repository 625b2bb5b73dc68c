package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/lovedhomes/lovedhomes/internal/model"
	"github.com/lovedhomes/lovedhomes/internal/oid"
	"github.com/lovedhomes/lovedhomes/internal/store"
	"github.com/lovedhomes/lovedhomes/internal/websocket"
)

type ItemHandler struct {
	items  *store.ItemStore
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewItemHandler(is *store.ItemStore, hub *websocket.Hub, logger *slog.Logger) *ItemHandler {
	return &ItemHandler{items: is, hub: hub, logger: logger}
}

func (h *ItemHandler) broadcast(action, id string) {
	if h.hub != nil {
		h.hub.Broadcast(websocket.NewMessage("item", action, id, nil))
	}
}

type itemCreateRequest struct {
	Title    string `json:"title"`
	IsFolder bool   `json:"is_folder"`
	ParentID string `json:"parent_id"`
}

// List serves GET /api/properties/{id}/items. An absent or empty parent_id
// query parameter selects root-level items.
func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	propertyID, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	var parentID *oid.ID
	if raw := r.URL.Query().Get("parent_id"); raw != "" {
		parsed, err := oid.Parse(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid parent id"})
			return
		}
		parentID = &parsed
	}

	items, err := h.items.ListByParent(propertyID, parentID)
	if err != nil {
		h.logger.Error("list items", "property_id", propertyID.Hex(), "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list items"})
		return
	}
	if items == nil {
		items = []model.ChecklistItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	propertyID, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	var req itemCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "title is required"})
		return
	}

	// The parent must be well-formed but is not checked for existence.
	var parentID *oid.ID
	if req.ParentID != "" {
		parsed, err := oid.Parse(req.ParentID)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid parent id"})
			return
		}
		parentID = &parsed
	}

	item, err := h.items.Create(propertyID, req.Title, req.IsFolder, parentID)
	if err != nil {
		h.logger.Error("create item", "property_id", propertyID.Hex(), "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create item"})
		return
	}

	h.broadcast("created", item.ID)

	writeJSON(w, http.StatusCreated, item)
}

func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	var req model.ChecklistItemUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	item, err := h.items.Update(id, req)
	if err == store.ErrNoFields {
		writeJSON(w, http.StatusOK, map[string]bool{"updated": false})
		return
	}
	if err != nil {
		h.logger.Error("update item", "id", id.Hex(), "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update item"})
		return
	}
	if item == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}

	h.broadcast("updated", item.ID)

	writeJSON(w, http.StatusOK, item)
}

// Delete removes an item and its whole subtree.
func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	if err := h.items.Delete(id); err != nil {
		if errors.Is(err, store.ErrCycle) {
			h.logger.Error("delete item: parent graph has a cycle", "id", id.Hex())
		} else {
			h.logger.Error("delete item", "id", id.Hex(), "error", err)
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete item"})
		return
	}

	h.broadcast("deleted", id.Hex())

	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}
