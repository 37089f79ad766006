package domain

import (
	"time"

	"github.com/google/uuid"
)

// LevelProgression is the per-(student, skill) difficulty gate. Levels only
// ever unlock; CurrentLevel is always a member of UnlockedLevels and level 0
// is always unlocked. ConsecutiveCorrect is scoped to the current level and
// resets on any incorrect answer or on level-up.
type LevelProgression struct {
	StudentID          uuid.UUID `json:"student_id"`
	SkillID            string    `json:"skill_id"`
	CurrentLevel       int       `json:"current_level"`
	UnlockedLevels     []int     `json:"unlocked_levels"`
	ConsecutiveCorrect int       `json:"consecutive_correct"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// NewLevelProgression returns the initial state: level 0, empty streak,
// only level 0 unlocked.
func NewLevelProgression(studentID uuid.UUID, skillID string) *LevelProgression {
	return &LevelProgression{
		StudentID:      studentID,
		SkillID:        skillID,
		CurrentLevel:   0,
		UnlockedLevels: []int{0},
	}
}

// Unlocked reports whether the given level has ever been unlocked.
func (p *LevelProgression) Unlocked(level int) bool {
	for _, l := range p.UnlockedLevels {
		if l == level {
			return true
		}
	}
	return false
}

// LevelUpEvent is emitted when a student advances to a new level.
type LevelUpEvent struct {
	StudentID uuid.UUID `json:"student_id"`
	SkillID   string    `json:"skill_id"`
	NewLevel  int       `json:"new_level"`
	Message   string    `json:"message"`
}
