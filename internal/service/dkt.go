package service

import (
	"hash/fnv"
	"math"
	"math/rand"

	"github.com/google/uuid"
	"github.com/pathwise/knowtrace/internal/domain"
	"go.uber.org/zap"
)

const (
	// DefaultSkillCount is the number of skill slots in the prediction
	// vector. Skill ids map onto slots via FNV-1a so the mapping is stable
	// across processes.
	DefaultSkillCount = 50

	// DefaultHiddenSize is the length of the hidden-state summary vector.
	DefaultHiddenSize = 20

	// DefaultSkillLearningRate controls how fast the empirical accuracy
	// takes over from the base difficulty as attempts accumulate.
	DefaultSkillLearningRate = 0.1

	// dktBaseSeed fixes the per-skill base difficulties so predictions are
	// reproducible across runs and platforms.
	dktBaseSeed = 42

	dktTransferWeight = 0.1
	dktTransferRadius = 2

	dktHiddenWindow = 10
	dktHiddenDecay  = 0.9

	dktPredictionFloor = 0.1
	dktPredictionCeil  = 0.9

	dktVariancePenaltyCap = 0.2
)

// DKTService is a deterministic heuristic stand-in for a trained sequence
// model. It recomputes per-skill mastery predictions, a hidden-state summary
// and a confidence score from the full retained interaction window on every
// update.
type DKTService struct {
	logger *zap.Logger

	SkillCount   int
	HiddenSize   int
	LearningRate float64
}

func NewDKTService(logger *zap.Logger) *DKTService {
	return &DKTService{
		logger:       logger,
		SkillCount:   DefaultSkillCount,
		HiddenSize:   DefaultHiddenSize,
		LearningRate: DefaultSkillLearningRate,
	}
}

// SkillSlot maps a skill id onto a prediction-vector slot. FNV-1a over the
// UTF-8 bytes keeps the mapping stable regardless of process or platform.
func (s *DKTService) SkillSlot(skillID string) int {
	return int(fnv1a(skillID) % uint32(s.SkillCount))
}

func (s *DKTService) hiddenSlot(skillID string) int {
	return int(fnv1a(skillID) % uint32(s.HiddenSize))
}

func fnv1a(v string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(v))
	return h.Sum32()
}

// BaseDifficulty returns the fixed pseudo-random base prediction in
// [0.2, 0.8] for a skill slot. Seeded per slot so the value never depends on
// call order.
func (s *DKTService) BaseDifficulty(slot int) float64 {
	rng := rand.New(rand.NewSource(dktBaseSeed + int64(slot)))
	return 0.2 + 0.6*rng.Float64()
}

// NewState returns the initial per-student state: uniform 0.5 predictions
// and a zero hidden state.
func (s *DKTService) NewState(studentID uuid.UUID) *domain.DKTState {
	preds := make([]float32, s.SkillCount)
	for i := range preds {
		preds[i] = 0.5
	}
	return &domain.DKTState{
		StudentID:   studentID,
		Predictions: preds,
		HiddenState: make([]float32, s.HiddenSize),
		Confidence:  0.5,
	}
}

// Append adds an interaction to the window (evicting the oldest past the
// cap) and recomputes predictions, hidden state and confidence from the
// retained sequence.
func (s *DKTService) Append(state *domain.DKTState, in domain.Interaction) {
	state.Append(in)
	preds, hidden := s.Predict(state.Interactions)
	state.Predictions = preds
	state.HiddenState = hidden
	state.Confidence = s.Confidence(state.Interactions, preds)
}

type skillTally struct {
	correct int
	total   int
}

// Predict computes the per-slot mastery predictions and the hidden-state
// summary for an interaction sequence. An empty sequence yields the base
// difficulties and a zero hidden state; Predict never fails.
func (s *DKTService) Predict(sequence []domain.Interaction) ([]float32, []float32) {
	tallies := make(map[int]*skillTally)
	for _, in := range sequence {
		slot := s.SkillSlot(in.SkillID)
		t := tallies[slot]
		if t == nil {
			t = &skillTally{}
			tallies[slot] = t
		}
		t.total++
		if in.IsCorrect {
			t.correct++
		}
	}

	preds := make([]float64, s.SkillCount)
	for i := range preds {
		preds[i] = s.BaseDifficulty(i)
	}

	// Blend observed accuracy in, weighted by how much data the skill has.
	for slot, t := range tallies {
		accuracy := float64(t.correct) / float64(t.total)
		progress := math.Min(1, float64(t.total)*s.LearningRate)
		preds[slot] = (1-progress)*preds[slot] + progress*accuracy
	}

	// Transfer learning: neighboring slots with data pull each other by 10%.
	adjusted := make([]float64, len(preds))
	copy(adjusted, preds)
	for slot := range preds {
		var sum float64
		var n int
		for d := -dktTransferRadius; d <= dktTransferRadius; d++ {
			neighbor := slot + d
			if d == 0 || neighbor < 0 || neighbor >= s.SkillCount {
				continue
			}
			if t, ok := tallies[neighbor]; ok {
				sum += float64(t.correct) / float64(t.total)
				n++
			}
		}
		if n > 0 {
			adjusted[slot] = (1-dktTransferWeight)*preds[slot] + dktTransferWeight*(sum/float64(n))
		}
	}

	out := make([]float32, s.SkillCount)
	for i, p := range adjusted {
		out[i] = float32(math.Min(dktPredictionCeil, math.Max(dktPredictionFloor, p)))
	}

	return out, s.hiddenState(sequence)
}

// hiddenState folds the most recent interactions into a fixed-length vector:
// each step back in time decays by 0.9, correct answers add the weight and
// incorrect answers subtract half of it, in the slot hashed from the skill
// id. Normalized by the maximum absolute value when nonzero.
func (s *DKTService) hiddenState(sequence []domain.Interaction) []float32 {
	hidden := make([]float64, s.HiddenSize)

	start := len(sequence) - dktHiddenWindow
	if start < 0 {
		start = 0
	}
	recent := sequence[start:]

	for i, in := range recent {
		stepsBack := len(recent) - 1 - i
		weight := math.Pow(dktHiddenDecay, float64(stepsBack))
		if !in.IsCorrect {
			weight *= -0.5
		}
		hidden[s.hiddenSlot(in.SkillID)] += weight
	}

	var maxAbs float64
	for _, v := range hidden {
		if a := math.Abs(v); a > maxAbs {
			maxAbs = a
		}
	}

	out := make([]float32, s.HiddenSize)
	for i, v := range hidden {
		if maxAbs > 0 {
			out[i] = float32(v / maxAbs)
		}
	}
	return out
}

// Confidence grows with sequence length and shrinks with prediction
// variance; always within [0.1, 0.9].
func (s *DKTService) Confidence(sequence []domain.Interaction, preds []float32) float64 {
	c := 0.3 + 0.02*float64(len(sequence))
	if c > 0.9 {
		c = 0.9
	}
	if c < 0.1 {
		c = 0.1
	}

	if len(preds) > 0 {
		var mean float64
		for _, p := range preds {
			mean += float64(p)
		}
		mean /= float64(len(preds))

		var variance float64
		for _, p := range preds {
			d := float64(p) - mean
			variance += d * d
		}
		variance /= float64(len(preds))

		penalty := variance
		if penalty > dktVariancePenaltyCap {
			penalty = dktVariancePenaltyCap
		}
		c -= penalty
	}

	if c < 0.1 {
		c = 0.1
	}
	return c
}

// PredictionFor returns the current prediction for a skill, defaulting to
// 0.5 when the state has no prediction vector yet.
func (s *DKTService) PredictionFor(state *domain.DKTState, skillID string) float64 {
	slot := s.SkillSlot(skillID)
	if state == nil || slot >= len(state.Predictions) {
		return 0.5
	}
	return float64(state.Predictions[slot])
}
