package service

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/pathwise/knowtrace/internal/domain"
	"go.uber.org/zap"
)

const (
	// DefaultMaxLevel is the absorbing ceiling: correct answers past it hold
	// the streak without erroring.
	DefaultMaxLevel = 10

	// DefaultLevelMasteryThreshold is the BKT mastery required to level up.
	DefaultLevelMasteryThreshold = 0.8

	// DefaultRequiredConsecutive is the correct-answer streak required to
	// level up.
	DefaultRequiredConsecutive = 3
)

// ProgressionService runs the mastery-gated level state machine. Leveling up
// requires sustained mastery AND a streak; either alone is not enough.
type ProgressionService struct {
	logger *zap.Logger

	MaxLevel            int
	MasteryThreshold    float64
	RequiredConsecutive int
}

func NewProgressionService(logger *zap.Logger) *ProgressionService {
	return &ProgressionService{
		logger:              logger,
		MaxLevel:            DefaultMaxLevel,
		MasteryThreshold:    DefaultLevelMasteryThreshold,
		RequiredConsecutive: DefaultRequiredConsecutive,
	}
}

// Initialize returns the starting state for a (student, skill) pair.
func (s *ProgressionService) Initialize(studentID uuid.UUID, skillID string) *domain.LevelProgression {
	return domain.NewLevelProgression(studentID, skillID)
}

// Apply transitions the state for one answer. The mastery argument is the
// post-update BKT belief. Returns a LevelUpEvent when the student advances,
// nil otherwise.
func (s *ProgressionService) Apply(p *domain.LevelProgression, isCorrect bool, mastery float64) *domain.LevelUpEvent {
	if !isCorrect {
		p.ConsecutiveCorrect = 0
		return nil
	}

	p.ConsecutiveCorrect++

	if mastery < s.MasteryThreshold ||
		p.ConsecutiveCorrect < s.RequiredConsecutive ||
		p.CurrentLevel >= s.MaxLevel {
		return nil
	}

	p.CurrentLevel++
	if !p.Unlocked(p.CurrentLevel) {
		p.UnlockedLevels = append(p.UnlockedLevels, p.CurrentLevel)
	}
	p.ConsecutiveCorrect = 0

	evt := &domain.LevelUpEvent{
		StudentID: p.StudentID,
		SkillID:   p.SkillID,
		NewLevel:  p.CurrentLevel,
		Message:   fmt.Sprintf("Congratulations! You unlocked level %d. Harder questions are now available.", p.CurrentLevel),
	}

	s.logger.Info("level unlocked",
		zap.String("student_id", p.StudentID.String()),
		zap.String("skill_id", p.SkillID),
		zap.Int("new_level", p.CurrentLevel))

	return evt
}

// AvailableLevels returns the unlocked levels at or below the current level,
// sorted ascending. The current level is always included.
func (s *ProgressionService) AvailableLevels(p *domain.LevelProgression) []int {
	levels := make([]int, 0, len(p.UnlockedLevels))
	for _, l := range p.UnlockedLevels {
		if l <= p.CurrentLevel {
			levels = append(levels, l)
		}
	}
	if !containsInt(levels, p.CurrentLevel) {
		levels = append(levels, p.CurrentLevel)
	}
	sort.Ints(levels)
	return levels
}

func containsInt(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}
