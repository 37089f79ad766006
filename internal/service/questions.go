package service

import (
	"context"
	"errors"
	"math/rand"

	"github.com/google/uuid"
	"github.com/pathwise/knowtrace/internal/domain"
	"github.com/pathwise/knowtrace/internal/store"
	"go.uber.org/zap"
)

const (
	// DefaultWeakSkillThreshold marks a skill as weak under BKT.
	DefaultWeakSkillThreshold = 0.6

	// DefaultDKTWeakThreshold marks a skill as weak under DKT.
	DefaultDKTWeakThreshold = 0.7

	// practiceShare is the fraction of a BKT selection devoted to easy
	// practice on weak skills; the rest goes to harder reinforcement.
	practiceShare = 0.7

	// recentSessionWindow is how many past sessions feed recency exclusion.
	recentSessionWindow = 5
)

var ErrNoQuestions = errors.New("no candidate questions available")

// SelectionRequest describes one adaptive-selection call.
type SelectionRequest struct {
	StudentID     uuid.UUID
	Subject       string
	Chapter       string
	Count         int
	ExcludeRecent bool
}

// SelectionResult carries the chosen questions and how they were chosen.
type SelectionResult struct {
	Questions []domain.SelectedQuestion `json:"questions"`
	Algorithm domain.Algorithm          `json:"algorithm"`
	Method    string                    `json:"selection_method"`
}

// QuestionService ranks and filters the candidate pool using whichever
// tracing model the selector recommends. Selection is read-only: the pool is
// never mutated and a short pool is a best-effort result, not an error.
type QuestionService struct {
	questions domain.QuestionStore
	bktStore  domain.BKTStore
	dktStore  domain.DKTStore

	dkt      *DKTService
	selector *SelectorService
	logger   *zap.Logger

	WeakSkillThreshold float64
	MasteryThreshold   float64
	DKTWeakThreshold   float64

	rng *rand.Rand
}

func NewQuestionService(
	questions domain.QuestionStore,
	bktStore domain.BKTStore,
	dktStore domain.DKTStore,
	dkt *DKTService,
	selector *SelectorService,
	logger *zap.Logger,
) *QuestionService {
	return &QuestionService{
		questions:          questions,
		bktStore:           bktStore,
		dktStore:           dktStore,
		dkt:                dkt,
		selector:           selector,
		logger:             logger,
		WeakSkillThreshold: DefaultWeakSkillThreshold,
		MasteryThreshold:   DefaultMasteryThreshold,
		DKTWeakThreshold:   DefaultDKTWeakThreshold,
	}
}

// SetRand injects a deterministic source for tests.
func (s *QuestionService) SetRand(rng *rand.Rand) {
	s.rng = rng
}

func (s *QuestionService) shuffle(qs []domain.Question) {
	swap := func(i, j int) { qs[i], qs[j] = qs[j], qs[i] }
	if s.rng != nil {
		s.rng.Shuffle(len(qs), swap)
		return
	}
	rand.Shuffle(len(qs), swap)
}

// Select produces up to req.Count questions with no duplicate ids. Any
// failure while gathering model signals degrades to the BKT policy; a
// failure inside a policy degrades to a uniform random draw tagged
// random_fallback.
func (s *QuestionService) Select(ctx context.Context, req SelectionRequest) (*SelectionResult, error) {
	if req.Count <= 0 {
		req.Count = 10
	}

	var excludeIDs []uuid.UUID
	if req.ExcludeRecent {
		ids, err := s.questions.RecentlyAttempted(ctx, req.StudentID, recentSessionWindow)
		if err != nil {
			s.logger.Warn("recency exclusion unavailable", zap.Error(err))
		} else {
			excludeIDs = ids
		}
	}

	algorithm := s.chooseAlgorithm(ctx, req.StudentID)

	var selected []domain.SelectedQuestion
	var err error
	switch algorithm {
	case domain.AlgorithmDKT:
		selected, err = s.selectByDKT(ctx, req, excludeIDs)
	case domain.AlgorithmEnsemble:
		selected, err = s.selectEnsemble(ctx, req, excludeIDs)
	default:
		selected, err = s.selectByBKT(ctx, req, excludeIDs)
	}

	if err != nil {
		s.logger.Warn("adaptive selection failed, drawing at random",
			zap.String("algorithm", string(algorithm)),
			zap.Error(err))
		selected, err = s.selectRandom(ctx, req, excludeIDs)
		if err != nil {
			return nil, err
		}
		return &SelectionResult{
			Questions: selected,
			Algorithm: domain.AlgorithmRandom,
			Method:    "random_fallback",
		}, nil
	}

	return &SelectionResult{
		Questions: selected,
		Algorithm: algorithm,
		Method:    string(algorithm),
	}, nil
}

// chooseAlgorithm gathers the selector's inputs; any error on the way falls
// back to BKT.
func (s *QuestionService) chooseAlgorithm(ctx context.Context, studentID uuid.UUID) domain.Algorithm {
	state, err := s.dktStore.Get(ctx, studentID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.logger.Warn("dkt state unavailable, using bkt", zap.Error(err))
		}
		return domain.AlgorithmBKT
	}
	return s.selector.Choose(len(state.Interactions), true, state.Confidence)
}

// selectByBKT partitions the student's skills into weak and strong and
// allocates 70% of the request to easy practice on weak skills, 30% to
// moderate and difficult reinforcement across both.
func (s *QuestionService) selectByBKT(ctx context.Context, req SelectionRequest, excludeIDs []uuid.UUID) ([]domain.SelectedQuestion, error) {
	params, err := s.bktStore.ListByStudent(ctx, req.StudentID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	var weak, strong []string
	for _, p := range params {
		if p.Mastery < s.WeakSkillThreshold {
			weak = append(weak, p.SkillID)
		} else if p.Mastery >= s.MasteryThreshold {
			strong = append(strong, p.SkillID)
		}
	}

	practiceCount := int(float64(req.Count)*practiceShare + 0.5)
	reinforceCount := req.Count - practiceCount

	seen := make(map[uuid.UUID]bool)
	var out []domain.SelectedQuestion

	practice, err := s.questions.ListCandidates(ctx, domain.QuestionFilter{
		Subject:      req.Subject,
		Chapter:      req.Chapter,
		SkillTags:    weak,
		Difficulties: []domain.Difficulty{domain.DifficultyVeryEasy, domain.DifficultyEasy},
		ExcludeIDs:   excludeIDs,
		Limit:        practiceCount,
	})
	if err != nil {
		return nil, err
	}
	for _, q := range practice {
		if seen[q.ID] {
			continue
		}
		seen[q.ID] = true
		out = append(out, domain.SelectedQuestion{
			Question:  q,
			Purpose:   domain.PurposePractice,
			Rationale: "weak skill, easy difficulty",
		})
	}

	reinforce, err := s.questions.ListCandidates(ctx, domain.QuestionFilter{
		Subject:      req.Subject,
		Chapter:      req.Chapter,
		SkillTags:    append(append([]string{}, weak...), strong...),
		Difficulties: []domain.Difficulty{domain.DifficultyModerate, domain.DifficultyDifficult},
		ExcludeIDs:   excludeIDs,
		Limit:        reinforceCount + practiceCount, // headroom when practice came up short
	})
	if err != nil {
		return nil, err
	}
	for _, q := range reinforce {
		if len(out) >= req.Count {
			break
		}
		if seen[q.ID] {
			continue
		}
		seen[q.ID] = true
		out = append(out, domain.SelectedQuestion{
			Question:  q,
			Purpose:   domain.PurposeReinforcement,
			Rationale: "moderate difficulty to consolidate",
		})
	}

	return out, nil
}

// selectByDKT prefers skills whose predicted mastery is below the weak
// threshold; when too few weak-skill questions exist it falls back to the
// first half of a shuffled candidate pool.
func (s *QuestionService) selectByDKT(ctx context.Context, req SelectionRequest, excludeIDs []uuid.UUID) ([]domain.SelectedQuestion, error) {
	state, err := s.dktStore.Get(ctx, req.StudentID)
	if err != nil {
		return nil, err
	}

	weakSet := make(map[string]bool)
	for _, in := range state.Interactions {
		if s.dkt.PredictionFor(state, in.SkillID) < s.DKTWeakThreshold {
			weakSet[in.SkillID] = true
		}
	}
	weak := make([]string, 0, len(weakSet))
	for skill := range weakSet {
		weak = append(weak, skill)
	}

	var out []domain.SelectedQuestion
	seen := make(map[uuid.UUID]bool)

	if len(weak) > 0 {
		qs, err := s.questions.ListCandidates(ctx, domain.QuestionFilter{
			Subject:    req.Subject,
			Chapter:    req.Chapter,
			SkillTags:  weak,
			ExcludeIDs: excludeIDs,
			Limit:      req.Count,
		})
		if err != nil {
			return nil, err
		}
		for _, q := range qs {
			if seen[q.ID] {
				continue
			}
			seen[q.ID] = true
			out = append(out, domain.SelectedQuestion{
				Question:  q,
				Purpose:   domain.PurposePractice,
				Rationale: "low predicted mastery",
			})
		}
	}

	if len(out) < req.Count/2 {
		pool, err := s.questions.ListCandidates(ctx, domain.QuestionFilter{
			Subject:    req.Subject,
			Chapter:    req.Chapter,
			ExcludeIDs: excludeIDs,
			Limit:      req.Count * 2,
		})
		if err != nil {
			return nil, err
		}
		s.shuffle(pool)
		for _, q := range pool[:len(pool)/2] {
			if len(out) >= req.Count {
				break
			}
			if seen[q.ID] {
				continue
			}
			seen[q.ID] = true
			out = append(out, domain.SelectedQuestion{
				Question:  q,
				Purpose:   domain.PurposeFallback,
				Rationale: "insufficient weak-skill coverage",
			})
		}
	}

	if len(out) > req.Count {
		out = out[:req.Count]
	}
	return out, nil
}

func (s *QuestionService) selectEnsemble(ctx context.Context, req SelectionRequest, excludeIDs []uuid.UUID) ([]domain.SelectedQuestion, error) {
	bktRanked, err := s.selectByBKT(ctx, req, excludeIDs)
	if err != nil {
		return nil, err
	}
	dktRanked, err := s.selectByDKT(ctx, req, excludeIDs)
	if err != nil {
		return nil, err
	}
	return s.selector.MergeEnsemble(bktRanked, dktRanked, req.Count), nil
}

func (s *QuestionService) selectRandom(ctx context.Context, req SelectionRequest, excludeIDs []uuid.UUID) ([]domain.SelectedQuestion, error) {
	pool, err := s.questions.ListCandidates(ctx, domain.QuestionFilter{
		Subject:    req.Subject,
		Chapter:    req.Chapter,
		ExcludeIDs: excludeIDs,
		Limit:      req.Count * 3,
	})
	if err != nil {
		return nil, err
	}
	if len(pool) == 0 {
		return nil, ErrNoQuestions
	}

	s.shuffle(pool)
	if len(pool) > req.Count {
		pool = pool[:req.Count]
	}

	out := make([]domain.SelectedQuestion, 0, len(pool))
	for _, q := range pool {
		out = append(out, domain.SelectedQuestion{
			Question:  q,
			Purpose:   domain.PurposeFallback,
			Rationale: "uniform random draw",
		})
	}
	return out, nil
}
