package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/pathwise/knowtrace/internal/domain"
	"github.com/pathwise/knowtrace/internal/service"
	"github.com/pathwise/knowtrace/internal/store"
)

type ProgressionHandler struct {
	progStore domain.ProgressionStore
	svc       *service.ProgressionService
}

func NewProgressionHandler(progStore domain.ProgressionStore, svc *service.ProgressionService) *ProgressionHandler {
	return &ProgressionHandler{progStore: progStore, svc: svc}
}

type progressionResponse struct {
	*domain.LevelProgression
	AvailableQuestionLevels []int `json:"available_question_levels"`
	MaxLevel                int   `json:"max_level"`
}

// Get returns the level-progression state for one (student, skill) pair.
func (h *ProgressionHandler) Get(w http.ResponseWriter, r *http.Request) {
	studentID, err := uuid.Parse(chi.URLParam(r, "studentID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid student id")
		return
	}
	skillID := chi.URLParam(r, "skillID")

	prog, err := h.progStore.Get(r.Context(), studentID, skillID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			prog = h.svc.Initialize(studentID, skillID)
		} else {
			writeError(w, http.StatusInternalServerError, "failed to load progression")
			return
		}
	}

	writeJSON(w, http.StatusOK, progressionResponse{
		LevelProgression:        prog,
		AvailableQuestionLevels: h.svc.AvailableLevels(prog),
		MaxLevel:                h.svc.MaxLevel,
	})
}
