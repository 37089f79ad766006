package domain

import (
	"time"

	"github.com/google/uuid"
)

// MaxInteractionWindow bounds the retained interaction history per student.
// The window is FIFO: appending past the cap evicts the oldest entry.
const MaxInteractionWindow = 100

// Interaction is one observed answer in a student's history.
type Interaction struct {
	SkillID      string    `json:"skill_id"`
	IsCorrect    bool      `json:"is_correct"`
	ResponseTime float64   `json:"response_time"`
	Timestamp    time.Time `json:"timestamp"`
}

// DKTState is the per-student sequence-model state covering all skills.
// Predictions holds one mastery estimate per skill slot, HiddenState is a
// decayed recency-weighted summary of the retained window, and Confidence
// reflects how much history backs the predictions.
type DKTState struct {
	StudentID    uuid.UUID     `json:"student_id"`
	Interactions []Interaction `json:"interactions"`
	Predictions  []float32     `json:"predictions"`
	HiddenState  []float32     `json:"hidden_state"`
	Confidence   float64       `json:"confidence"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// Append adds an interaction to the window, evicting the oldest entry once
// the cap is reached. It does not recompute predictions; that is the
// predictor's job.
func (s *DKTState) Append(in Interaction) {
	s.Interactions = append(s.Interactions, in)
	if len(s.Interactions) > MaxInteractionWindow {
		s.Interactions = s.Interactions[len(s.Interactions)-MaxInteractionWindow:]
	}
}

// AttemptsForSkill counts retained interactions for one skill.
func (s *DKTState) AttemptsForSkill(skillID string) int {
	n := 0
	for _, in := range s.Interactions {
		if in.SkillID == skillID {
			n++
		}
	}
	return n
}
