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

type DKTHandler struct {
	dktStore domain.DKTStore
	dkt      *service.DKTService
}

func NewDKTHandler(dktStore domain.DKTStore, dkt *service.DKTService) *DKTHandler {
	return &DKTHandler{dktStore: dktStore, dkt: dkt}
}

type dktResponse struct {
	StudentID      string    `json:"student_id"`
	Predictions    []float32 `json:"predictions"`
	HiddenState    []float32 `json:"hidden_state"`
	Confidence     float64   `json:"confidence"`
	SequenceLength int       `json:"sequence_length"`
}

// Get returns the sequence-model state for a student. Students with no
// history report the initial uniform predictions.
func (h *DKTHandler) Get(w http.ResponseWriter, r *http.Request) {
	studentID, err := uuid.Parse(chi.URLParam(r, "studentID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid student id")
		return
	}

	state, err := h.dktStore.Get(r.Context(), studentID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			state = h.dkt.NewState(studentID)
		} else {
			writeError(w, http.StatusInternalServerError, "failed to load dkt state")
			return
		}
	}

	writeJSON(w, http.StatusOK, dktResponse{
		StudentID:      state.StudentID.String(),
		Predictions:    state.Predictions,
		HiddenState:    state.HiddenState,
		Confidence:     state.Confidence,
		SequenceLength: len(state.Interactions),
	})
}
