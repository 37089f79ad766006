package domain

import (
	"context"

	"github.com/google/uuid"
)

// BKTStore persists per-(student, skill) Bayesian parameters.
type BKTStore interface {
	Get(ctx context.Context, studentID uuid.UUID, skillID string) (*BKTParams, error)
	ListByStudent(ctx context.Context, studentID uuid.UUID) ([]BKTParams, error)
	Save(ctx context.Context, p *BKTParams) error
}

// DKTStore persists the per-student sequence-model state.
type DKTStore interface {
	Get(ctx context.Context, studentID uuid.UUID) (*DKTState, error)
	Save(ctx context.Context, s *DKTState) error
}

// ProgressionStore persists per-(student, skill) level progression.
type ProgressionStore interface {
	Get(ctx context.Context, studentID uuid.UUID, skillID string) (*LevelProgression, error)
	Save(ctx context.Context, p *LevelProgression) error
}

// QuestionFilter narrows the candidate pool for selection.
type QuestionFilter struct {
	Subject      string
	Chapter      string
	SkillTags    []string
	Difficulties []Difficulty
	ExcludeIDs   []uuid.UUID
	Limit        int
}

// QuestionStore is the read-only view of the external question repository,
// plus the attempt log that backs recency exclusion.
type QuestionStore interface {
	ListCandidates(ctx context.Context, f QuestionFilter) ([]Question, error)
	// RecentlyAttempted returns the question ids the student saw in their
	// most recent n sessions.
	RecentlyAttempted(ctx context.Context, studentID uuid.UUID, sessions int) ([]uuid.UUID, error)
	RecordAttempt(ctx context.Context, studentID, questionID, sessionID uuid.UUID) error
}
