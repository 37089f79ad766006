package domain

import (
	"testing"

	"github.com/google/uuid"
)

func TestClamp01(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{-0.5, 0},
		{0, 0},
		{0.42, 0.42},
		{1, 1},
		{1.7, 1},
	}
	for _, tt := range tests {
		if got := Clamp01(tt.in); got != tt.want {
			t.Errorf("Clamp01(%f) = %f, want %f", tt.in, got, tt.want)
		}
	}
}

func TestDKTState_AttemptsForSkill(t *testing.T) {
	s := DKTState{
		Interactions: []Interaction{
			{SkillID: "a", IsCorrect: true},
			{SkillID: "b", IsCorrect: false},
			{SkillID: "a", IsCorrect: false},
		},
	}

	if got := s.AttemptsForSkill("a"); got != 2 {
		t.Errorf("AttemptsForSkill(a) = %d, want 2", got)
	}
	if got := s.AttemptsForSkill("c"); got != 0 {
		t.Errorf("AttemptsForSkill(c) = %d, want 0", got)
	}
}

func TestValidDifficulty(t *testing.T) {
	for _, d := range []string{"very_easy", "easy", "moderate", "difficult"} {
		if !ValidDifficulty(d) {
			t.Errorf("ValidDifficulty(%q) = false, want true", d)
		}
	}
	if ValidDifficulty("impossible") {
		t.Error("ValidDifficulty(impossible) = true, want false")
	}
}

func TestQuestion_HasSkill(t *testing.T) {
	q := Question{ID: uuid.New(), SkillTags: []string{"fraction-addition", "fraction-simplification"}}

	if !q.HasSkill("fraction-addition") {
		t.Error("HasSkill(fraction-addition) = false, want true")
	}
	if q.HasSkill("linear-equations") {
		t.Error("HasSkill(linear-equations) = true, want false")
	}
}
