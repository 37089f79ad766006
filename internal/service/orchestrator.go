package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/pathwise/knowtrace/internal/domain"
	"github.com/pathwise/knowtrace/internal/store"
	"go.uber.org/zap"
)

var (
	ErrSkillIDMissing   = errors.New("skill id is required")
	ErrStudentIDMissing = errors.New("student id is required")
)

// masteryChangeQualifier threshold: swings larger than this get an extra
// sentence appended to the adaptation message.
const masteryChangeQualifier = 0.1

// AnswerMeta carries optional interaction context from the caller.
type AnswerMeta struct {
	QuestionID   uuid.UUID
	SessionID    uuid.UUID
	ResponseTime float64
}

// OrchestratorService is the per-answer entry point. It sequences the BKT
// update, the DKT recompute and the level-progression transition, composes
// the adaptation message, and persists each updated entity exactly once,
// only after every computation has succeeded. A failure anywhere yields a
// safe fallback decision and no partial writes.
type OrchestratorService struct {
	bkt         *BKTService
	dkt         *DKTService
	progression *ProgressionService
	selector    *SelectorService

	bktStore         domain.BKTStore
	dktStore         domain.DKTStore
	progressionStore domain.ProgressionStore
	questionStore    domain.QuestionStore

	logger *zap.Logger
	locks  *keyedMutex
}

func NewOrchestratorService(
	bkt *BKTService,
	dkt *DKTService,
	progression *ProgressionService,
	selector *SelectorService,
	bktStore domain.BKTStore,
	dktStore domain.DKTStore,
	progressionStore domain.ProgressionStore,
	questionStore domain.QuestionStore,
	logger *zap.Logger,
) *OrchestratorService {
	return &OrchestratorService{
		bkt:              bkt,
		dkt:              dkt,
		progression:      progression,
		selector:         selector,
		bktStore:         bktStore,
		dktStore:         dktStore,
		progressionStore: progressionStore,
		questionStore:    questionStore,
		logger:           logger,
		locks:            newKeyedMutex(),
	}
}

// ProcessAnswer applies one submitted answer for a (student, skill) pair.
// Calls for the same pair are serialized; distinct pairs run concurrently.
func (s *OrchestratorService) ProcessAnswer(ctx context.Context, studentID uuid.UUID, skillID string, isCorrect bool, meta AnswerMeta) (*domain.AdaptiveDecision, error) {
	if studentID == uuid.Nil {
		return nil, ErrStudentIDMissing
	}
	if skillID == "" {
		return nil, ErrSkillIDMissing
	}

	unlock := s.locks.Lock(studentID.String() + "/" + skillID)
	defer unlock()

	decision, err := s.processLocked(ctx, studentID, skillID, isCorrect, meta)
	if err != nil {
		s.logger.Error("answer processing failed",
			zap.String("student_id", studentID.String()),
			zap.String("skill_id", skillID),
			zap.Error(err))
		return s.fallbackDecision(ctx, studentID, skillID), err
	}
	return decision, nil
}

func (s *OrchestratorService) processLocked(ctx context.Context, studentID uuid.UUID, skillID string, isCorrect bool, meta AnswerMeta) (*domain.AdaptiveDecision, error) {
	// Read current state, initializing defaults where absent. Missing state
	// is never an error to the caller.
	params, err := s.bktStore.Get(ctx, studentID, skillID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("load bkt params: %w", err)
		}
		params = s.bkt.Initialize(studentID, skillID)
	}

	dktState, err := s.dktStore.Get(ctx, studentID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("load dkt state: %w", err)
		}
		dktState = s.dkt.NewState(studentID)
	}

	prog, err := s.progressionStore.Get(ctx, studentID, skillID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("load progression: %w", err)
		}
		prog = s.progression.Initialize(studentID, skillID)
	}

	// Pure computation phase. No writes happen until all of it succeeds.
	before := params.Mastery
	updated := s.bkt.Update(*params, isCorrect)

	s.dkt.Append(dktState, domain.Interaction{
		SkillID:      skillID,
		IsCorrect:    isCorrect,
		ResponseTime: meta.ResponseTime,
		Timestamp:    time.Now().UTC(),
	})

	levelUp := s.progression.Apply(prog, isCorrect, updated.Mastery)

	algorithm := s.selector.Choose(dktState.AttemptsForSkill(skillID), true, dktState.Confidence)

	message := adaptationMessage(isCorrect, updated.Mastery, updated.Mastery-before)

	// Persistence phase: exactly one write per updated entity. A failed
	// write aborts the remaining ones and surfaces the error; the
	// repository collaborator owns transactional semantics beyond that.
	if err := s.bktStore.Save(ctx, &updated); err != nil {
		return nil, fmt.Errorf("save bkt params: %w", err)
	}
	if err := s.dktStore.Save(ctx, dktState); err != nil {
		return nil, fmt.Errorf("save dkt state: %w", err)
	}
	if err := s.progressionStore.Save(ctx, prog); err != nil {
		return nil, fmt.Errorf("save progression: %w", err)
	}
	if meta.QuestionID != uuid.Nil {
		if err := s.questionStore.RecordAttempt(ctx, studentID, meta.QuestionID, meta.SessionID); err != nil {
			return nil, fmt.Errorf("record attempt: %w", err)
		}
	}

	outcome := domain.ProgressionOutcome{
		LevelChanged: levelUp != nil,
		NewLevel:     prog.CurrentLevel,
	}
	if levelUp != nil {
		outcome.Congratulations = levelUp.Message
	}

	return &domain.AdaptiveDecision{
		StudentID:     studentID,
		SkillID:       skillID,
		Algorithm:     algorithm,
		MasteryBefore: before,
		MasteryAfter:  updated.Mastery,
		DKTPrediction: s.dkt.PredictionFor(dktState, skillID),
		Progression:   outcome,
		Message:       message,
	}, nil
}

// fallbackDecision is returned alongside the error when processing failed:
// BKT as the algorithm, neutral message, mastery unchanged.
func (s *OrchestratorService) fallbackDecision(ctx context.Context, studentID uuid.UUID, skillID string) *domain.AdaptiveDecision {
	mastery := domain.DefaultPriorKnown
	if params, err := s.bktStore.Get(ctx, studentID, skillID); err == nil {
		mastery = params.Mastery
	}
	return &domain.AdaptiveDecision{
		StudentID:     studentID,
		SkillID:       skillID,
		Algorithm:     domain.AlgorithmBKT,
		MasteryBefore: mastery,
		MasteryAfter:  mastery,
		DKTPrediction: 0.5,
		Progression:   domain.ProgressionOutcome{},
		Message:       "Keep practicing.",
	}
}

// adaptationMessage picks from the fixed template table keyed by correctness
// and the post-update mastery bucket, appending a qualifier on large swings.
func adaptationMessage(isCorrect bool, masteryAfter, change float64) string {
	var msg string
	if isCorrect {
		switch {
		case masteryAfter > 0.9:
			msg = "Excellent! You have mastered this skill. Time for harder questions."
		case masteryAfter > 0.7:
			msg = "Great progress! Let's try some harder questions."
		case masteryAfter > 0.4:
			msg = "Good work! We will gradually increase the difficulty."
		default:
			msg = "Nice! Keep practicing to build your confidence."
		}
	} else {
		switch {
		case masteryAfter > 0.8:
			msg = "That looks like a slip. Let's stay at this level for now."
		case masteryAfter > 0.5:
			msg = "Let's try some slightly easier questions."
		case masteryAfter > 0.2:
			msg = "Let's work on easier questions to build your confidence."
		default:
			msg = "Let's go back to basics and rebuild the foundation."
		}
	}

	if math.Abs(change) > masteryChangeQualifier {
		if change > 0 {
			msg += " Your mastery is improving quickly."
		} else {
			msg += " Your mastery estimate dropped noticeably."
		}
	}
	return msg
}
