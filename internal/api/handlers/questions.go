package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/pathwise/knowtrace/internal/service"
)

type QuestionsHandler struct {
	svc *service.QuestionService
}

func NewQuestionsHandler(svc *service.QuestionService) *QuestionsHandler {
	return &QuestionsHandler{svc: svc}
}

type selectQuestionsRequest struct {
	StudentID     string `json:"student_id"`
	Subject       string `json:"subject"`
	Chapter       string `json:"chapter,omitempty"`
	Count         int    `json:"count,omitempty"`
	ExcludeRecent bool   `json:"exclude_recent,omitempty"`
}

// Select runs adaptive question selection for a student. A pool smaller
// than requested returns the best-effort subset, not an error.
func (h *QuestionsHandler) Select(w http.ResponseWriter, r *http.Request) {
	var req selectQuestionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	studentID, err := uuid.Parse(req.StudentID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid student_id")
		return
	}
	if req.Subject == "" {
		writeError(w, http.StatusBadRequest, "subject is required")
		return
	}

	result, err := h.svc.Select(r.Context(), service.SelectionRequest{
		StudentID:     studentID,
		Subject:       req.Subject,
		Chapter:       req.Chapter,
		Count:         req.Count,
		ExcludeRecent: req.ExcludeRecent,
	})
	if err != nil {
		if errors.Is(err, service.ErrNoQuestions) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to select questions")
		return
	}

	writeJSON(w, http.StatusOK, result)
}
