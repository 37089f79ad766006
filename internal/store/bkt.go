package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pathwise/knowtrace/internal/domain"
)

type BKTStore struct {
	db *pgxpool.Pool
}

func NewBKTStore(db *pgxpool.Pool) *BKTStore {
	return &BKTStore{db: db}
}

func (s *BKTStore) Get(ctx context.Context, studentID uuid.UUID, skillID string) (*domain.BKTParams, error) {
	p := &domain.BKTParams{}
	err := s.db.QueryRow(ctx,
		`SELECT student_id, skill_id, p_l0, p_t, p_g, p_s, p_l, created_at, updated_at
		 FROM bkt_params WHERE student_id = $1 AND skill_id = $2`,
		studentID, skillID,
	).Scan(&p.StudentID, &p.SkillID, &p.PriorKnown, &p.LearnRate, &p.Guess, &p.Slip, &p.Mastery, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (s *BKTStore) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]domain.BKTParams, error) {
	rows, err := s.db.Query(ctx,
		`SELECT student_id, skill_id, p_l0, p_t, p_g, p_s, p_l, created_at, updated_at
		 FROM bkt_params WHERE student_id = $1
		 ORDER BY skill_id`,
		studentID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var params []domain.BKTParams
	for rows.Next() {
		var p domain.BKTParams
		if err := rows.Scan(&p.StudentID, &p.SkillID, &p.PriorKnown, &p.LearnRate, &p.Guess, &p.Slip, &p.Mastery, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		params = append(params, p)
	}
	return params, rows.Err()
}

func (s *BKTStore) Save(ctx context.Context, p *domain.BKTParams) error {
	return s.db.QueryRow(ctx,
		`INSERT INTO bkt_params (student_id, skill_id, p_l0, p_t, p_g, p_s, p_l)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (student_id, skill_id)
		 DO UPDATE SET p_l = EXCLUDED.p_l, updated_at = NOW()
		 RETURNING created_at, updated_at`,
		p.StudentID, p.SkillID, p.PriorKnown, p.LearnRate, p.Guess, p.Slip, p.Mastery,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
}
