package service

import (
	"github.com/google/uuid"
	"github.com/pathwise/knowtrace/internal/domain"
	"go.uber.org/zap"
)

// DefaultMasteryThreshold is the mastery probability above which a skill is
// considered fully mastered.
const DefaultMasteryThreshold = 0.95

// BKTService implements the Bayesian Knowledge Tracing update. All methods
// are pure: they take parameter values and return updated values, leaving
// persistence to the caller.
type BKTService struct {
	logger *zap.Logger

	MasteryThreshold float64
}

func NewBKTService(logger *zap.Logger) *BKTService {
	return &BKTService{
		logger:           logger,
		MasteryThreshold: DefaultMasteryThreshold,
	}
}

// Update applies one observed answer: a Bayesian posterior on the mastery
// belief followed by the learning transition. Inputs outside [0, 1] are
// clamped rather than rejected.
func (s *BKTService) Update(p domain.BKTParams, isCorrect bool) domain.BKTParams {
	mastery := domain.Clamp01(p.Mastery)
	guess := domain.Clamp01(p.Guess)
	slip := domain.Clamp01(p.Slip)
	learn := domain.Clamp01(p.LearnRate)

	var posterior float64
	if isCorrect {
		// P(correct | known) = 1 - slip, P(correct | not known) = guess
		evidence := (1-slip)*mastery + guess*(1-mastery)
		if evidence == 0 {
			posterior = mastery
		} else {
			posterior = (1 - slip) * mastery / evidence
		}
	} else {
		// P(incorrect | known) = slip, P(incorrect | not known) = 1 - guess
		evidence := slip*mastery + (1-guess)*(1-mastery)
		if evidence == 0 {
			posterior = mastery
		} else {
			posterior = slip * mastery / evidence
		}
	}

	p.Mastery = domain.Clamp01(posterior + learn*(1-posterior))
	return p
}

// Initialize returns fresh parameters for a first interaction with a skill.
func (s *BKTService) Initialize(studentID uuid.UUID, skillID string) *domain.BKTParams {
	return domain.NewBKTParams(studentID, skillID)
}

// IsMastered reports whether the mastery belief has crossed the threshold.
func (s *BKTService) IsMastered(p *domain.BKTParams) bool {
	return p.Mastery >= s.MasteryThreshold
}

// Reset restores the mastery belief to the prior, keeping the fixed
// parameters untouched.
func (s *BKTService) Reset(p domain.BKTParams) domain.BKTParams {
	p.Mastery = p.PriorKnown
	return p
}
