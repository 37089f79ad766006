package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/pathwise/knowtrace/internal/domain"
	"go.uber.org/zap"
)

func TestSelectorService_Choose(t *testing.T) {
	svc := NewSelectorService(zap.NewNop())

	tests := []struct {
		name          string
		totalAttempts int
		dktAvailable  bool
		dktConfidence float64
		want          domain.Algorithm
	}{
		{"cold start beats everything", 3, true, 0.9, domain.AlgorithmBKT},
		{"cold start boundary", 4, true, 0.99, domain.AlgorithmBKT},
		{"no dkt state", 12, false, 0.9, domain.AlgorithmBKT},
		{"warm and confident", 12, true, 0.9, domain.AlgorithmDKT},
		{"warm but unsure", 12, true, 0.5, domain.AlgorithmEnsemble},
		{"confidence at threshold is not enough", 12, true, 0.7, domain.AlgorithmEnsemble},
		{"confident but few attempts", 7, true, 0.9, domain.AlgorithmEnsemble},
		{"dkt minimum boundary", 10, true, 0.71, domain.AlgorithmDKT},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := svc.Choose(tt.totalAttempts, tt.dktAvailable, tt.dktConfidence)
			if got != tt.want {
				t.Errorf("Choose(%d, %v, %f) = %q, want %q",
					tt.totalAttempts, tt.dktAvailable, tt.dktConfidence, got, tt.want)
			}
		})
	}
}

func TestSelectorService_Choose_Deterministic(t *testing.T) {
	svc := NewSelectorService(zap.NewNop())

	first := svc.Choose(8, true, 0.6)
	for i := 0; i < 20; i++ {
		if svc.Choose(8, true, 0.6) != first {
			t.Fatal("Choose is not deterministic for identical inputs")
		}
	}
}

func rankedQuestion(id uuid.UUID) domain.SelectedQuestion {
	return domain.SelectedQuestion{
		Question: domain.Question{ID: id, Subject: "math", Difficulty: domain.DifficultyEasy},
		Purpose:  domain.PurposePractice,
	}
}

func TestSelectorService_MergeEnsemble(t *testing.T) {
	svc := NewSelectorService(zap.NewNop())

	a, b, c := uuid.New(), uuid.New(), uuid.New()
	d, e := uuid.New(), uuid.New()

	bktRanked := []domain.SelectedQuestion{rankedQuestion(a), rankedQuestion(b), rankedQuestion(c)}
	dktRanked := []domain.SelectedQuestion{rankedQuestion(b), rankedQuestion(d), rankedQuestion(e)}

	merged := svc.MergeEnsemble(bktRanked, dktRanked, 4)

	// BKT share of 4 is 2 (a, b); DKT fills with d, e after skipping the
	// duplicate b.
	wantOrder := []uuid.UUID{a, b, d, e}
	if len(merged) != len(wantOrder) {
		t.Fatalf("len(merged) = %d, want %d", len(merged), len(wantOrder))
	}
	for i, want := range wantOrder {
		if merged[i].ID != want {
			t.Errorf("merged[%d] = %s, want %s", i, merged[i].ID, want)
		}
	}
}

func TestSelectorService_MergeEnsemble_OddCountFavorsBKT(t *testing.T) {
	svc := NewSelectorService(zap.NewNop())

	bktRanked := []domain.SelectedQuestion{
		rankedQuestion(uuid.New()), rankedQuestion(uuid.New()), rankedQuestion(uuid.New()),
	}
	dktRanked := []domain.SelectedQuestion{
		rankedQuestion(uuid.New()), rankedQuestion(uuid.New()),
	}

	merged := svc.MergeEnsemble(bktRanked, dktRanked, 5)

	if len(merged) != 5 {
		t.Fatalf("len(merged) = %d, want 5", len(merged))
	}
	// BKT contributes ceil(5/2) = 3 before DKT fills.
	for i := 0; i < 3; i++ {
		if merged[i].ID != bktRanked[i].ID {
			t.Errorf("merged[%d] should come from the BKT ranking", i)
		}
	}
}

func TestSelectorService_MergeEnsemble_TopsUpFromBKT(t *testing.T) {
	svc := NewSelectorService(zap.NewNop())

	bktRanked := []domain.SelectedQuestion{
		rankedQuestion(uuid.New()), rankedQuestion(uuid.New()),
		rankedQuestion(uuid.New()), rankedQuestion(uuid.New()),
	}

	// DKT came up empty; the full request is served from the BKT ranking.
	merged := svc.MergeEnsemble(bktRanked, nil, 4)
	if len(merged) != 4 {
		t.Fatalf("len(merged) = %d, want 4", len(merged))
	}

	seen := make(map[uuid.UUID]bool)
	for _, q := range merged {
		if seen[q.ID] {
			t.Fatalf("duplicate question %s in merged result", q.ID)
		}
		seen[q.ID] = true
	}
}

func TestSelectorService_MergeEnsemble_ZeroCount(t *testing.T) {
	svc := NewSelectorService(zap.NewNop())

	if got := svc.MergeEnsemble([]domain.SelectedQuestion{rankedQuestion(uuid.New())}, nil, 0); got != nil {
		t.Errorf("MergeEnsemble with n=0 = %v, want nil", got)
	}
}
