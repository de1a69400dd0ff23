package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"memora-backend/internal/models"
	"memora-backend/internal/services"
)

type ItemHandler struct {
	items services.ItemStore
}

func NewItemHandler(items services.ItemStore) *ItemHandler {
	return &ItemHandler{items: items}
}

func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 50
	offset := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
			offset = n
		}
	}
	itemType := r.URL.Query().Get("type")
	if itemType != "" && !models.ItemType(itemType).IsValid() {
		writeJSON(w, http.StatusBadRequest, errorResp(services.CodeInvalidParams, "Unknown item type", r))
		return
	}

	items, err := h.items.ListPublished(r.Context(), itemType, limit, offset)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("internal_error", "Failed to fetch items", r))
		return
	}
	total, err := h.items.CountPublished(r.Context(), itemType)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("internal_error", "Failed to fetch items", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"items": items,
		"total": total,
	})
}

func (h *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp(services.CodeInvalidParams, "Invalid item ID", r))
		return
	}

	item, err := h.items.GetByID(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResp(services.CodeItemNotFound, "Item not found", r))
		return
	}
	writeJSON(w, http.StatusOK, item)
}
