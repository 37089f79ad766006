package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pathwise/knowtrace/internal/domain"
)

type QuestionStore struct {
	db *pgxpool.Pool
}

func NewQuestionStore(db *pgxpool.Pool) *QuestionStore {
	return &QuestionStore{db: db}
}

func (s *QuestionStore) ListCandidates(ctx context.Context, f domain.QuestionFilter) ([]domain.Question, error) {
	conditions := []string{"active = TRUE"}
	var args []any

	if f.Subject != "" {
		conditions = append(conditions, fmt.Sprintf("subject = $%d", len(args)+1))
		args = append(args, f.Subject)
	}
	if f.Chapter != "" {
		conditions = append(conditions, fmt.Sprintf("chapter = $%d", len(args)+1))
		args = append(args, f.Chapter)
	}
	if len(f.SkillTags) > 0 {
		conditions = append(conditions, fmt.Sprintf("skill_tags && $%d", len(args)+1))
		args = append(args, f.SkillTags)
	}
	if len(f.Difficulties) > 0 {
		diffs := make([]string, len(f.Difficulties))
		for i, d := range f.Difficulties {
			diffs[i] = string(d)
		}
		conditions = append(conditions, fmt.Sprintf("difficulty = ANY($%d)", len(args)+1))
		args = append(args, diffs)
	}
	if len(f.ExcludeIDs) > 0 {
		conditions = append(conditions, fmt.Sprintf("id != ALL($%d)", len(args)+1))
		args = append(args, f.ExcludeIDs)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit)

	query := fmt.Sprintf(
		`SELECT id, subject, chapter, skill_tags, difficulty, active
		 FROM questions WHERE %s
		 ORDER BY id
		 LIMIT $%d`,
		strings.Join(conditions, " AND "), len(args),
	)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []domain.Question
	for rows.Next() {
		var q domain.Question
		if err := rows.Scan(&q.ID, &q.Subject, &q.Chapter, &q.SkillTags, &q.Difficulty, &q.Active); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

func (s *QuestionStore) RecentlyAttempted(ctx context.Context, studentID uuid.UUID, sessions int) ([]uuid.UUID, error) {
	if sessions <= 0 {
		sessions = 5
	}

	rows, err := s.db.Query(ctx,
		`SELECT DISTINCT question_id FROM question_attempts
		 WHERE student_id = $1
		   AND session_id IN (
		     SELECT session_id FROM question_attempts
		     WHERE student_id = $1
		     GROUP BY session_id
		     ORDER BY MAX(attempted_at) DESC
		     LIMIT $2
		   )`,
		studentID, sessions,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *QuestionStore) RecordAttempt(ctx context.Context, studentID, questionID, sessionID uuid.UUID) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO question_attempts (student_id, question_id, session_id, attempted_at)
		 VALUES ($1, $2, $3, NOW())`,
		studentID, questionID, sessionID,
	)
	return err
}
