package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pathwise/knowtrace/internal/domain"
)

type ProgressionStore struct {
	db *pgxpool.Pool
}

func NewProgressionStore(db *pgxpool.Pool) *ProgressionStore {
	return &ProgressionStore{db: db}
}

func (s *ProgressionStore) Get(ctx context.Context, studentID uuid.UUID, skillID string) (*domain.LevelProgression, error) {
	p := &domain.LevelProgression{}
	err := s.db.QueryRow(ctx,
		`SELECT student_id, skill_id, current_level, unlocked_levels, consecutive_correct, updated_at
		 FROM level_progressions WHERE student_id = $1 AND skill_id = $2`,
		studentID, skillID,
	).Scan(&p.StudentID, &p.SkillID, &p.CurrentLevel, &p.UnlockedLevels, &p.ConsecutiveCorrect, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (s *ProgressionStore) Save(ctx context.Context, p *domain.LevelProgression) error {
	return s.db.QueryRow(ctx,
		`INSERT INTO level_progressions (student_id, skill_id, current_level, unlocked_levels, consecutive_correct)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (student_id, skill_id)
		 DO UPDATE SET current_level = EXCLUDED.current_level,
		               unlocked_levels = EXCLUDED.unlocked_levels,
		               consecutive_correct = EXCLUDED.consecutive_correct,
		               updated_at = NOW()
		 RETURNING updated_at`,
		p.StudentID, p.SkillID, p.CurrentLevel, p.UnlockedLevels, p.ConsecutiveCorrect,
	).Scan(&p.UpdatedAt)
}
