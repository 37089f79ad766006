package domain

import "github.com/google/uuid"

type Difficulty string

const (
	DifficultyVeryEasy  Difficulty = "very_easy"
	DifficultyEasy      Difficulty = "easy"
	DifficultyModerate  Difficulty = "moderate"
	DifficultyDifficult Difficulty = "difficult"
)

func ValidDifficulty(d string) bool {
	switch Difficulty(d) {
	case DifficultyVeryEasy, DifficultyEasy, DifficultyModerate, DifficultyDifficult:
		return true
	}
	return false
}

// Question is a candidate item from the external question repository. The
// core only reads subject, skill tags and difficulty; everything else about
// a question is opaque to it.
type Question struct {
	ID         uuid.UUID  `json:"id"`
	Subject    string     `json:"subject"`
	Chapter    string     `json:"chapter,omitempty"`
	SkillTags  []string   `json:"skill_tags"`
	Difficulty Difficulty `json:"difficulty"`
	Active     bool       `json:"active"`
}

// HasSkill reports whether the question is tagged with the given skill.
func (q *Question) HasSkill(skillID string) bool {
	for _, t := range q.SkillTags {
		if t == skillID {
			return true
		}
	}
	return false
}

// SelectionPurpose explains why a question was chosen for a student.
type SelectionPurpose string

const (
	PurposePractice      SelectionPurpose = "practice"
	PurposeReinforcement SelectionPurpose = "reinforcement"
	PurposeFallback      SelectionPurpose = "fallback"
)

// SelectedQuestion is a question annotated with the selection rationale.
type SelectedQuestion struct {
	Question
	Purpose   SelectionPurpose `json:"purpose"`
	Rationale string           `json:"rationale"`
}
