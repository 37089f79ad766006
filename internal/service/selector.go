package service

import (
	"github.com/google/uuid"
	"github.com/pathwise/knowtrace/internal/domain"
	"go.uber.org/zap"
)

const (
	// Below this many attempts the selector always picks BKT (cold start).
	coldStartAttempts = 5

	// DKT alone is only trusted once this many attempts exist.
	dktMinAttempts = 10

	// DefaultConfidenceThreshold gates pure-DKT selection.
	DefaultConfidenceThreshold = 0.7
)

// SelectorService decides which tracing model should drive question
// selection for a student.
type SelectorService struct {
	logger *zap.Logger

	ConfidenceThreshold float64
}

func NewSelectorService(logger *zap.Logger) *SelectorService {
	return &SelectorService{
		logger:              logger,
		ConfidenceThreshold: DefaultConfidenceThreshold,
	}
}

// Choose evaluates the decision table in order; the first matching row wins.
func (s *SelectorService) Choose(totalAttempts int, dktAvailable bool, dktConfidence float64) domain.Algorithm {
	switch {
	case totalAttempts < coldStartAttempts:
		return domain.AlgorithmBKT
	case !dktAvailable:
		return domain.AlgorithmBKT
	case totalAttempts >= dktMinAttempts && dktConfidence > s.ConfidenceThreshold:
		return domain.AlgorithmDKT
	default:
		return domain.AlgorithmEnsemble
	}
}

// MergeEnsemble combines two rankings: BKT contributes its top half (by
// count), DKT fills the remainder. Duplicate question ids keep their
// first-seen entry.
func (s *SelectorService) MergeEnsemble(bktRanked, dktRanked []domain.SelectedQuestion, n int) []domain.SelectedQuestion {
	if n <= 0 {
		return nil
	}

	merged := make([]domain.SelectedQuestion, 0, n)
	seen := make(map[uuid.UUID]bool)

	bktShare := n / 2
	if n%2 == 1 {
		bktShare++
	}
	for _, q := range bktRanked {
		if len(merged) >= bktShare {
			break
		}
		if seen[q.ID] {
			continue
		}
		seen[q.ID] = true
		merged = append(merged, q)
	}

	for _, q := range dktRanked {
		if len(merged) >= n {
			break
		}
		if seen[q.ID] {
			continue
		}
		seen[q.ID] = true
		merged = append(merged, q)
	}

	// Top up from the rest of the BKT ranking if DKT came up short.
	for _, q := range bktRanked {
		if len(merged) >= n {
			break
		}
		if seen[q.ID] {
			continue
		}
		seen[q.ID] = true
		merged = append(merged, q)
	}

	return merged
}
