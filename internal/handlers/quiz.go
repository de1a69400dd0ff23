package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"memora-backend/internal/middleware"
	"memora-backend/internal/models"
	"memora-backend/internal/services"
)

type QuizHandler struct {
	quizzes *services.QuizService
}

func NewQuizHandler(quizzes *services.QuizService) *QuizHandler {
	return &QuizHandler{quizzes: quizzes}
}

func (h *QuizHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req models.StartQuizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp(services.CodeInvalidParams, "Invalid request body", r))
		return
	}

	learnerID := middleware.GetLearnerID(r.Context())
	quiz, err := h.quizzes.Start(r.Context(), learnerID, req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, quiz)
}

func (h *QuizHandler) Get(w http.ResponseWriter, r *http.Request) {
	quizID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp(services.CodeInvalidParams, "Invalid quiz ID", r))
		return
	}

	learnerID := middleware.GetLearnerID(r.Context())
	quiz, err := h.quizzes.Get(r.Context(), learnerID, quizID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

func (h *QuizHandler) Submit(w http.ResponseWriter, r *http.Request) {
	quizID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp(services.CodeInvalidParams, "Invalid quiz ID", r))
		return
	}

	var req models.SubmitAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp(services.CodeInvalidParams, "Invalid request body", r))
		return
	}

	learnerID := middleware.GetLearnerID(r.Context())
	resp, err := h.quizzes.Submit(r.Context(), learnerID, quizID, req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *QuizHandler) Finish(w http.ResponseWriter, r *http.Request) {
	quizID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp(services.CodeInvalidParams, "Invalid quiz ID", r))
		return
	}

	learnerID := middleware.GetLearnerID(r.Context())
	summary, err := h.quizzes.Finish(r.Context(), learnerID, quizID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
