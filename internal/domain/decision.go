package domain

import "github.com/google/uuid"

// Algorithm identifies which tracing model drove a decision.
type Algorithm string

const (
	AlgorithmBKT      Algorithm = "bkt"
	AlgorithmDKT      Algorithm = "dkt"
	AlgorithmEnsemble Algorithm = "ensemble"
	AlgorithmRandom   Algorithm = "random"
)

func ValidAlgorithm(a string) bool {
	switch Algorithm(a) {
	case AlgorithmBKT, AlgorithmDKT, AlgorithmEnsemble, AlgorithmRandom:
		return true
	}
	return false
}

// ProgressionOutcome summarizes the level-progression result of one answer.
type ProgressionOutcome struct {
	LevelChanged    bool   `json:"level_changed"`
	NewLevel        int    `json:"new_level"`
	Congratulations string `json:"congratulations_message,omitempty"`
}

// AdaptiveDecision is the per-answer result returned to the caller. It is
// ephemeral: the decision itself is never persisted, only the underlying
// BKT/DKT/progression state is.
type AdaptiveDecision struct {
	StudentID     uuid.UUID          `json:"student_id"`
	SkillID       string             `json:"skill_id"`
	Algorithm     Algorithm          `json:"algorithm"`
	MasteryBefore float64            `json:"mastery_before"`
	MasteryAfter  float64            `json:"mastery_after"`
	DKTPrediction float64            `json:"dkt_prediction"`
	Progression   ProgressionOutcome `json:"progression"`
	Message       string             `json:"message"`
}
