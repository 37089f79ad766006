package domain

import (
	"time"

	"github.com/google/uuid"
)

// Default Bayesian Knowledge Tracing parameters for a skill a student has
// never seen before. These are fixed at creation; only Mastery evolves.
const (
	DefaultPriorKnown = 0.1
	DefaultLearnRate  = 0.3
	DefaultGuess      = 0.2
	DefaultSlip       = 0.1
)

// BKTParams is the four-parameter Bayesian Knowledge Tracing model for one
// (student, skill) pair. PriorKnown, LearnRate, Guess and Slip never change
// after initialization; Mastery is the current belief that the student knows
// the skill and is updated on every observed answer.
type BKTParams struct {
	StudentID  uuid.UUID `json:"student_id"`
	SkillID    string    `json:"skill_id"`
	PriorKnown float64   `json:"p_l0"`
	LearnRate  float64   `json:"p_t"`
	Guess      float64   `json:"p_g"`
	Slip       float64   `json:"p_s"`
	Mastery    float64   `json:"p_l"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewBKTParams returns parameters initialized with the model defaults and
// Mastery set to the prior.
func NewBKTParams(studentID uuid.UUID, skillID string) *BKTParams {
	return &BKTParams{
		StudentID:  studentID,
		SkillID:    skillID,
		PriorKnown: DefaultPriorKnown,
		LearnRate:  DefaultLearnRate,
		Guess:      DefaultGuess,
		Slip:       DefaultSlip,
		Mastery:    DefaultPriorKnown,
	}
}

// Clamp01 restricts v to the [0, 1] probability range. Out-of-range values
// are recovered locally, never rejected.
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
