package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pathwise/knowtrace/internal/domain"
	pgvector "github.com/pgvector/pgvector-go"
)

type DKTStore struct {
	db *pgxpool.Pool
}

func NewDKTStore(db *pgxpool.Pool) *DKTStore {
	return &DKTStore{db: db}
}

func (s *DKTStore) Get(ctx context.Context, studentID uuid.UUID) (*domain.DKTState, error) {
	state := &domain.DKTState{}
	var interactions []byte
	var predictions, hidden pgvector.Vector

	err := s.db.QueryRow(ctx,
		`SELECT student_id, interactions, predictions, hidden_state, confidence, updated_at
		 FROM dkt_states WHERE student_id = $1`,
		studentID,
	).Scan(&state.StudentID, &interactions, &predictions, &hidden, &state.Confidence, &state.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if err := json.Unmarshal(interactions, &state.Interactions); err != nil {
		return nil, err
	}
	state.Predictions = predictions.Slice()
	state.HiddenState = hidden.Slice()
	return state, nil
}

func (s *DKTStore) Save(ctx context.Context, st *domain.DKTState) error {
	interactions, err := json.Marshal(st.Interactions)
	if err != nil {
		return err
	}

	return s.db.QueryRow(ctx,
		`INSERT INTO dkt_states (student_id, interactions, predictions, hidden_state, confidence)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (student_id)
		 DO UPDATE SET interactions = EXCLUDED.interactions,
		               predictions = EXCLUDED.predictions,
		               hidden_state = EXCLUDED.hidden_state,
		               confidence = EXCLUDED.confidence,
		               updated_at = NOW()
		 RETURNING updated_at`,
		st.StudentID, interactions, pgvector.NewVector(st.Predictions), pgvector.NewVector(st.HiddenState), st.Confidence,
	).Scan(&st.UpdatedAt)
}
