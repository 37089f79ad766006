package service

import (
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/pathwise/knowtrace/internal/domain"
	"go.uber.org/zap"
)

func TestBKTService_Update_Correct(t *testing.T) {
	svc := NewBKTService(zap.NewNop())
	params := domain.NewBKTParams(uuid.New(), "fraction-addition")

	updated := svc.Update(*params, true)

	// posterior = 0.9*0.1 / (0.9*0.1 + 0.2*0.9) = 1/3
	// p_l = 1/3 + 0.3*(2/3) = 0.5333...
	want := 1.0/3.0 + 0.3*(2.0/3.0)
	if math.Abs(updated.Mastery-want) > 1e-9 {
		t.Errorf("Mastery = %f, want %f", updated.Mastery, want)
	}

	// Fixed parameters never change.
	if updated.PriorKnown != params.PriorKnown || updated.LearnRate != params.LearnRate ||
		updated.Guess != params.Guess || updated.Slip != params.Slip {
		t.Error("fixed parameters changed during update")
	}
}

func TestBKTService_Update_Incorrect(t *testing.T) {
	svc := NewBKTService(zap.NewNop())
	params := domain.NewBKTParams(uuid.New(), "fraction-addition")
	params.Mastery = 0.5

	updated := svc.Update(*params, false)

	// posterior = 0.1*0.5 / (0.1*0.5 + 0.8*0.5) = 1/9
	// p_l = 1/9 + 0.3*(8/9)
	want := 1.0/9.0 + 0.3*(8.0/9.0)
	if math.Abs(updated.Mastery-want) > 1e-9 {
		t.Errorf("Mastery = %f, want %f", updated.Mastery, want)
	}
}

func TestBKTService_Update_ProbabilityInvariant(t *testing.T) {
	svc := NewBKTService(zap.NewNop())

	// Mixed answer sequences keep p_l inside [0, 1] after every update.
	sequences := [][]bool{
		{true, true, true, true, true, true, true, true, true, true},
		{false, false, false, false, false, false, false, false},
		{true, false, true, false, true, false, true, false},
		{false, true, true, false, false, true, true, true},
	}

	for _, seq := range sequences {
		params := *domain.NewBKTParams(uuid.New(), "skill")
		for i, correct := range seq {
			params = svc.Update(params, correct)
			if params.Mastery < 0 || params.Mastery > 1 {
				t.Fatalf("Mastery = %f out of [0,1] after update %d", params.Mastery, i+1)
			}
		}
	}
}

func TestBKTService_Update_MonotonicOnCorrectStreak(t *testing.T) {
	svc := NewBKTService(zap.NewNop())
	params := *domain.NewBKTParams(uuid.New(), "skill")

	for i := 0; i < 30; i++ {
		before := params.Mastery
		params = svc.Update(params, true)
		if params.Mastery < before {
			t.Fatalf("Mastery decreased on correct answer %d: %f -> %f", i+1, before, params.Mastery)
		}
	}
}

func TestBKTService_Update_MasteryConvergence(t *testing.T) {
	svc := NewBKTService(zap.NewNop())
	params := *domain.NewBKTParams(uuid.New(), "skill")

	crossed := -1
	for i := 1; i <= 20; i++ {
		params = svc.Update(params, true)
		if crossed < 0 && params.Mastery > 0.99 {
			crossed = i
		}
	}

	if crossed < 0 || crossed >= 20 {
		t.Errorf("Mastery did not exceed 0.99 before the 20th update (crossed at %d, final %f)", crossed, params.Mastery)
	}
}

func TestBKTService_Update_ZeroEvidenceGuard(t *testing.T) {
	svc := NewBKTService(zap.NewNop())

	// slip=1, guess=0, p_l=1 makes the correct-evidence denominator zero;
	// p_l must pass through the posterior unchanged.
	params := domain.BKTParams{
		PriorKnown: 1,
		LearnRate:  0,
		Guess:      0,
		Slip:       1,
		Mastery:    1,
	}

	updated := svc.Update(params, true)
	if updated.Mastery != 1 {
		t.Errorf("Mastery = %f, want 1 (unchanged on zero evidence)", updated.Mastery)
	}
}

func TestBKTService_Update_ClampsOutOfRangeInputs(t *testing.T) {
	svc := NewBKTService(zap.NewNop())

	params := domain.BKTParams{
		PriorKnown: 0.1,
		LearnRate:  1.7,
		Guess:      -0.3,
		Slip:       0.1,
		Mastery:    1.4,
	}

	updated := svc.Update(params, true)
	if updated.Mastery < 0 || updated.Mastery > 1 {
		t.Errorf("Mastery = %f out of [0,1] for out-of-range inputs", updated.Mastery)
	}
}

func TestBKTService_Reset_Idempotent(t *testing.T) {
	svc := NewBKTService(zap.NewNop())
	params := *domain.NewBKTParams(uuid.New(), "skill")

	params = svc.Update(params, true)
	params = svc.Update(params, true)
	params = svc.Reset(params)

	if params.Mastery != params.PriorKnown {
		t.Errorf("Mastery = %f after reset, want prior %f", params.Mastery, params.PriorKnown)
	}
}

func TestBKTService_IsMastered(t *testing.T) {
	svc := NewBKTService(zap.NewNop())

	tests := []struct {
		name    string
		mastery float64
		want    bool
	}{
		{"below threshold", 0.94, false},
		{"at threshold", 0.95, true},
		{"above threshold", 0.99, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := domain.NewBKTParams(uuid.New(), "skill")
			p.Mastery = tt.mastery
			if got := svc.IsMastered(p); got != tt.want {
				t.Errorf("IsMastered(%f) = %v, want %v", tt.mastery, got, tt.want)
			}
		})
	}
}
