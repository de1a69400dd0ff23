package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"memora-backend/internal/middleware"
	"memora-backend/internal/models"
	"memora-backend/internal/services"
)

const (
	defaultQueueLimit = 20
	defaultMixNew     = 0.3
)

type ReviewHandler struct {
	reviews *services.ReviewService
}

func NewReviewHandler(reviews *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

func (h *ReviewHandler) Queue(w http.ResponseWriter, r *http.Request) {
	learnerID := middleware.GetLearnerID(r.Context())

	limit := defaultQueueLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResp(services.CodeInvalidParams, "Invalid limit", r))
			return
		}
		limit = n
	}
	mixNew := defaultMixNew
	if raw := r.URL.Query().Get("mix_new"); raw != "" {
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResp(services.CodeInvalidParams, "Invalid mix_new", r))
			return
		}
		mixNew = f
	}

	queue, err := h.reviews.BuildQueue(r.Context(), learnerID, limit, mixNew)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, queue)
}

func (h *ReviewHandler) Record(w http.ResponseWriter, r *http.Request) {
	var req models.RecordReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp(services.CodeInvalidParams, "Invalid request body", r))
		return
	}

	learnerID := middleware.GetLearnerID(r.Context())
	resp, err := h.reviews.RecordReview(r.Context(), learnerID, req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *ReviewHandler) Preview(w http.ResponseWriter, r *http.Request) {
	itemID, err := uuid.Parse(r.URL.Query().Get("item_id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp(services.CodeInvalidParams, "Invalid item_id", r))
		return
	}

	learnerID := middleware.GetLearnerID(r.Context())
	preview, err := h.reviews.PreviewIntervals(r.Context(), learnerID, itemID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, preview)
}
