package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/pathwise/knowtrace/internal/service"
)

type AnswerHandler struct {
	svc *service.OrchestratorService
}

func NewAnswerHandler(svc *service.OrchestratorService) *AnswerHandler {
	return &AnswerHandler{svc: svc}
}

type submitAnswerRequest struct {
	StudentID    string  `json:"student_id"`
	SkillID      string  `json:"skill_id"`
	IsCorrect    bool    `json:"is_correct"`
	QuestionID   string  `json:"question_id,omitempty"`
	SessionID    string  `json:"session_id,omitempty"`
	ResponseTime float64 `json:"response_time,omitempty"`
}

// Submit is the per-answer entry point: it runs the full tracing pipeline
// and returns the adaptive decision.
func (h *AnswerHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	studentID, err := uuid.Parse(req.StudentID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid student_id")
		return
	}

	meta := service.AnswerMeta{ResponseTime: req.ResponseTime}
	if req.QuestionID != "" {
		questionID, err := uuid.Parse(req.QuestionID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid question_id")
			return
		}
		meta.QuestionID = questionID
	}
	if req.SessionID != "" {
		sessionID, err := uuid.Parse(req.SessionID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid session_id")
			return
		}
		meta.SessionID = sessionID
	}

	decision, err := h.svc.ProcessAnswer(r.Context(), studentID, req.SkillID, req.IsCorrect, meta)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrStudentIDMissing),
			errors.Is(err, service.ErrSkillIDMissing):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to process answer")
		}
		return
	}

	writeJSON(w, http.StatusOK, decision)
}
