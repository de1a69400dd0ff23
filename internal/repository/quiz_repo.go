package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"memora-backend/internal/models"
)

var (
	// ErrDuplicateResult reports a second submission for the same (quiz, item).
	ErrDuplicateResult = errors.New("result already exists for quiz item")
	// ErrQuizNotActive reports a finish attempt on a quiz that is not in progress.
	ErrQuizNotActive = errors.New("quiz is not in progress")
)

type QuizRepo struct {
	pool *pgxpool.Pool
}

func NewQuizRepo(pool *pgxpool.Pool) *QuizRepo {
	return &QuizRepo{pool: pool}
}

// Create persists the quiz and its frozen item list atomically.
func (r *QuizRepo) Create(ctx context.Context, q *models.Quiz) error {
	q.ID = uuid.New()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO quizzes (id, learner_id, status, time_limit_s, started_at, version)
		 VALUES ($1, $2, $3, $4, $5, 1)`,
		q.ID, q.LearnerID, q.Status, q.TimeLimitS, q.StartedAt,
	)
	if err != nil {
		return err
	}

	for i := range q.Items {
		q.Items[i].QuizID = q.ID
		_, err = tx.Exec(ctx,
			`INSERT INTO quiz_items (quiz_id, item_id, position) VALUES ($1, $2, $3)`,
			q.ID, q.Items[i].ItemID, q.Items[i].Position,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// GetByID loads a quiz with its frozen item list and any recorded results.
func (r *QuizRepo) GetByID(ctx context.Context, id, learnerID uuid.UUID) (*models.Quiz, error) {
	q := &models.Quiz{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, learner_id, status, time_limit_s, started_at, finished_at, final_score, version
		 FROM quizzes WHERE id = $1 AND learner_id = $2`,
		id, learnerID,
	).Scan(&q.ID, &q.LearnerID, &q.Status, &q.TimeLimitS, &q.StartedAt, &q.FinishedAt, &q.FinalScore, &q.Version)
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT qi.quiz_id, qi.item_id, qi.position, i.type, i.prompt
		 FROM quiz_items qi
		 JOIN items i ON i.id = qi.item_id
		 WHERE qi.quiz_id = $1
		 ORDER BY qi.position ASC`,
		id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var qi models.QuizItem
		if err := rows.Scan(&qi.QuizID, &qi.ItemID, &qi.Position, &qi.Type, &qi.Prompt); err != nil {
			return nil, err
		}
		q.Items = append(q.Items, qi)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	resRows, err := r.pool.Query(ctx,
		`SELECT quiz_id, item_id, correct, score, response, explanation, latency_ms, submitted_at
		 FROM quiz_results WHERE quiz_id = $1 ORDER BY submitted_at ASC`,
		id,
	)
	if err != nil {
		return nil, err
	}
	defer resRows.Close()

	for resRows.Next() {
		var res models.Result
		if err := resRows.Scan(&res.QuizID, &res.ItemID, &res.Correct, &res.Score,
			&res.Response, &res.Explanation, &res.LatencyMs, &res.SubmittedAt); err != nil {
			return nil, err
		}
		q.Results = append(q.Results, res)
	}
	return q, resRows.Err()
}

// InsertResult records one graded submission. The (quiz_id, item_id) primary
// key enforces at-most-one result per slot; losing the race surfaces as
// ErrDuplicateResult rather than overwriting.
func (r *QuizRepo) InsertResult(ctx context.Context, res *models.Result) error {
	query := `INSERT INTO quiz_results
			(quiz_id, item_id, correct, score, response, explanation, latency_ms, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (quiz_id, item_id) DO NOTHING`

	tag, err := r.pool.Exec(ctx, query,
		res.QuizID, res.ItemID, res.Correct, res.Score, res.Response,
		res.Explanation, res.LatencyMs, res.SubmittedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrDuplicateResult
	}
	return nil
}

// Finish moves a quiz to its terminal state. The status guard makes a second
// finish call a no-op at the database level, reported as ErrQuizNotActive.
func (r *QuizRepo) Finish(ctx context.Context, id uuid.UUID, finishedAt time.Time, finalScore float64) error {
	query := `UPDATE quizzes
		SET status = $2, finished_at = $3, final_score = $4, version = version + 1
		WHERE id = $1 AND status = $5`

	tag, err := r.pool.Exec(ctx, query,
		id, models.QuizStatusFinished, finishedAt, finalScore, models.QuizStatusInProgress,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrQuizNotActive
	}
	return nil
}

// IsNotFound reports whether err means the queried row does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
