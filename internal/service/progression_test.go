package service

import (
	"reflect"
	"testing"

	"github.com/google/uuid"
	"github.com/pathwise/knowtrace/internal/domain"
	"go.uber.org/zap"
)

func TestProgressionService_Apply_RequiresMasteryAndStreak(t *testing.T) {
	svc := NewProgressionService(zap.NewNop())

	tests := []struct {
		name       string
		streak     int
		mastery    float64
		wantEvent  bool
		wantLevel  int
		wantStreak int
	}{
		{"streak too short", 1, 0.95, false, 0, 2},
		{"one below required", 2, 0.85, true, 1, 0},
		{"mastery too low", 2, 0.79, false, 0, 3},
		{"both satisfied at thresholds", 2, 0.8, true, 1, 0},
		{"high streak low mastery", 9, 0.5, false, 0, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := domain.NewLevelProgression(uuid.New(), "skill")
			p.ConsecutiveCorrect = tt.streak

			evt := svc.Apply(p, true, tt.mastery)

			if (evt != nil) != tt.wantEvent {
				t.Errorf("event = %v, wantEvent %v", evt, tt.wantEvent)
			}
			if p.CurrentLevel != tt.wantLevel {
				t.Errorf("CurrentLevel = %d, want %d", p.CurrentLevel, tt.wantLevel)
			}
			if p.ConsecutiveCorrect != tt.wantStreak {
				t.Errorf("ConsecutiveCorrect = %d, want %d", p.ConsecutiveCorrect, tt.wantStreak)
			}
		})
	}
}

func TestProgressionService_Apply_IncorrectResetsStreak(t *testing.T) {
	svc := NewProgressionService(zap.NewNop())
	p := domain.NewLevelProgression(uuid.New(), "skill")
	p.ConsecutiveCorrect = 2

	evt := svc.Apply(p, false, 0.95)

	if evt != nil {
		t.Error("incorrect answer must never produce a level-up event")
	}
	if p.ConsecutiveCorrect != 0 {
		t.Errorf("ConsecutiveCorrect = %d, want 0 after incorrect answer", p.ConsecutiveCorrect)
	}
	if p.CurrentLevel != 0 {
		t.Errorf("CurrentLevel = %d, want unchanged 0", p.CurrentLevel)
	}
}

func TestProgressionService_Apply_LevelUpUnlocksAndResets(t *testing.T) {
	svc := NewProgressionService(zap.NewNop())
	p := domain.NewLevelProgression(uuid.New(), "skill")
	p.ConsecutiveCorrect = 2

	evt := svc.Apply(p, true, 0.9)
	if evt == nil {
		t.Fatal("expected a level-up event")
	}

	if evt.NewLevel != 1 {
		t.Errorf("NewLevel = %d, want 1", evt.NewLevel)
	}
	if evt.Message != "Congratulations! You unlocked level 1. Harder questions are now available." {
		t.Errorf("unexpected message: %q", evt.Message)
	}
	if !p.Unlocked(1) {
		t.Error("level 1 should be in the unlocked set")
	}
	if p.ConsecutiveCorrect != 0 {
		t.Errorf("streak = %d after level-up, want 0", p.ConsecutiveCorrect)
	}
}

func TestProgressionService_Apply_MaxLevelIsAbsorbing(t *testing.T) {
	svc := NewProgressionService(zap.NewNop())
	p := domain.NewLevelProgression(uuid.New(), "skill")
	p.CurrentLevel = svc.MaxLevel

	for i := 0; i < 10; i++ {
		if evt := svc.Apply(p, true, 0.99); evt != nil {
			t.Fatalf("level-up event at max level on answer %d", i+1)
		}
	}

	if p.CurrentLevel != svc.MaxLevel {
		t.Errorf("CurrentLevel = %d, want %d", p.CurrentLevel, svc.MaxLevel)
	}
	// The streak keeps counting at the ceiling; it just never fires.
	if p.ConsecutiveCorrect != 10 {
		t.Errorf("ConsecutiveCorrect = %d, want 10", p.ConsecutiveCorrect)
	}
}

func TestProgressionService_AvailableLevels(t *testing.T) {
	svc := NewProgressionService(zap.NewNop())

	p := domain.NewLevelProgression(uuid.New(), "skill")
	p.CurrentLevel = 2
	p.UnlockedLevels = []int{0, 1, 2, 3}

	// Levels above the current one are held back even if unlocked.
	got := svc.AvailableLevels(p)
	if want := []int{0, 1, 2}; !reflect.DeepEqual(got, want) {
		t.Errorf("AvailableLevels = %v, want %v", got, want)
	}
}

func TestProgressionService_AvailableLevels_AlwaysIncludesCurrent(t *testing.T) {
	svc := NewProgressionService(zap.NewNop())

	p := domain.NewLevelProgression(uuid.New(), "skill")
	p.CurrentLevel = 4
	p.UnlockedLevels = []int{0, 1}

	got := svc.AvailableLevels(p)
	if want := []int{0, 1, 4}; !reflect.DeepEqual(got, want) {
		t.Errorf("AvailableLevels = %v, want %v", got, want)
	}
}

func TestNewLevelProgression_StartsAtZero(t *testing.T) {
	p := domain.NewLevelProgression(uuid.New(), "skill")

	if p.CurrentLevel != 0 {
		t.Errorf("CurrentLevel = %d, want 0", p.CurrentLevel)
	}
	if !reflect.DeepEqual(p.UnlockedLevels, []int{0}) {
		t.Errorf("UnlockedLevels = %v, want [0]", p.UnlockedLevels)
	}
	if p.ConsecutiveCorrect != 0 {
		t.Errorf("ConsecutiveCorrect = %d, want 0", p.ConsecutiveCorrect)
	}
}
