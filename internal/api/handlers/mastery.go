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

type MasteryHandler struct {
	bktStore domain.BKTStore
	bkt      *service.BKTService
}

func NewMasteryHandler(bktStore domain.BKTStore, bkt *service.BKTService) *MasteryHandler {
	return &MasteryHandler{bktStore: bktStore, bkt: bkt}
}

type masteryResponse struct {
	*domain.BKTParams
	Mastered bool `json:"mastered"`
}

// Get returns the BKT parameters for one (student, skill) pair. A pair with
// no recorded interactions reports the initialization defaults.
func (h *MasteryHandler) Get(w http.ResponseWriter, r *http.Request) {
	studentID, err := uuid.Parse(chi.URLParam(r, "studentID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid student id")
		return
	}
	skillID := chi.URLParam(r, "skillID")

	params, err := h.bktStore.Get(r.Context(), studentID, skillID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			params = h.bkt.Initialize(studentID, skillID)
		} else {
			writeError(w, http.StatusInternalServerError, "failed to load mastery")
			return
		}
	}

	writeJSON(w, http.StatusOK, masteryResponse{
		BKTParams: params,
		Mastered:  h.bkt.IsMastered(params),
	})
}

type masteryListResponse struct {
	Skills []masteryResponse `json:"skills"`
	Count  int               `json:"count"`
}

// List returns BKT state for every skill the student has touched.
func (h *MasteryHandler) List(w http.ResponseWriter, r *http.Request) {
	studentID, err := uuid.Parse(chi.URLParam(r, "studentID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid student id")
		return
	}

	params, err := h.bktStore.ListByStudent(r.Context(), studentID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusInternalServerError, "failed to list mastery")
		return
	}

	skills := make([]masteryResponse, 0, len(params))
	for i := range params {
		p := params[i]
		skills = append(skills, masteryResponse{
			BKTParams: &p,
			Mastered:  h.bkt.IsMastered(&p),
		})
	}

	writeJSON(w, http.StatusOK, masteryListResponse{Skills: skills, Count: len(skills)})
}

// Reset restores the mastery belief to the prior for one skill. Resetting a
// pair that was never touched is a no-op that reports the defaults.
func (h *MasteryHandler) Reset(w http.ResponseWriter, r *http.Request) {
	studentID, err := uuid.Parse(chi.URLParam(r, "studentID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid student id")
		return
	}
	skillID := chi.URLParam(r, "skillID")

	params, err := h.bktStore.Get(r.Context(), studentID, skillID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			params = h.bkt.Initialize(studentID, skillID)
		} else {
			writeError(w, http.StatusInternalServerError, "failed to load mastery")
			return
		}
	}

	reset := h.bkt.Reset(*params)
	if err := h.bktStore.Save(r.Context(), &reset); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to reset mastery")
		return
	}

	writeJSON(w, http.StatusOK, masteryResponse{
		BKTParams: &reset,
		Mastered:  h.bkt.IsMastered(&reset),
	})
}
