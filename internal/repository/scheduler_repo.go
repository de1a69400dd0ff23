package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"memora-backend/internal/models"
)

// ErrVersionConflict reports a lost optimistic-lock race: the row's version
// changed between read and write, so the caller must re-read and recompute.
var ErrVersionConflict = errors.New("scheduler state version conflict")

type SchedulerRepo struct {
	pool *pgxpool.Pool
}

func NewSchedulerRepo(pool *pgxpool.Pool) *SchedulerRepo {
	return &SchedulerRepo{pool: pool}
}

func (r *SchedulerRepo) Get(ctx context.Context, learnerID, itemID uuid.UUID) (*models.SchedulerState, error) {
	s := &models.SchedulerState{}
	query := `SELECT learner_id, item_id, stability, difficulty, state, due_at,
			interval_days, reps, lapses, last_reviewed_at, version
		FROM scheduler_states WHERE learner_id = $1 AND item_id = $2`

	err := r.pool.QueryRow(ctx, query, learnerID, itemID).Scan(
		&s.LearnerID, &s.ItemID, &s.Stability, &s.Difficulty, &s.State, &s.DueAt,
		&s.IntervalDays, &s.Reps, &s.Lapses, &s.LastReviewedAt, &s.Version,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Insert creates the row produced by a pair's first review. A concurrent
// first review on the same pair loses the race on the primary key and is
// reported as ErrVersionConflict so the caller retries from the fresh row.
func (r *SchedulerRepo) Insert(ctx context.Context, s *models.SchedulerState) error {
	query := `INSERT INTO scheduler_states
			(learner_id, item_id, stability, difficulty, state, due_at,
			 interval_days, reps, lapses, last_reviewed_at, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 1)
		ON CONFLICT (learner_id, item_id) DO NOTHING`

	tag, err := r.pool.Exec(ctx, query,
		s.LearnerID, s.ItemID, s.Stability, s.Difficulty, s.State, s.DueAt,
		s.IntervalDays, s.Reps, s.Lapses, s.LastReviewedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrVersionConflict
	}
	s.Version = 1
	return nil
}

// Update persists a recomputed state only if nobody else wrote the row
// since it was read at expectedVersion.
func (r *SchedulerRepo) Update(ctx context.Context, s *models.SchedulerState, expectedVersion int) error {
	query := `UPDATE scheduler_states
		SET stability = $3, difficulty = $4, state = $5, due_at = $6,
			interval_days = $7, reps = $8, lapses = $9, last_reviewed_at = $10,
			version = version + 1
		WHERE learner_id = $1 AND item_id = $2 AND version = $11`

	tag, err := r.pool.Exec(ctx, query,
		s.LearnerID, s.ItemID, s.Stability, s.Difficulty, s.State, s.DueAt,
		s.IntervalDays, s.Reps, s.Lapses, s.LastReviewedAt, expectedVersion,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrVersionConflict
	}
	s.Version = expectedVersion + 1
	return nil
}

func (r *SchedulerRepo) InsertReview(ctx context.Context, rev *models.Review) error {
	rev.ID = uuid.New()
	query := `INSERT INTO reviews
			(id, learner_id, item_id, rating, correct, latency_ms, latency_bucket,
			 mode, reviewed_at, next_due, interval_days)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.pool.Exec(ctx, query,
		rev.ID, rev.LearnerID, rev.ItemID, rev.Rating, rev.Correct,
		rev.LatencyMs, rev.LatencyBucket, rev.Mode, rev.ReviewedAt,
		rev.NextDue, rev.IntervalDays,
	)
	return err
}

// ListDue returns published items whose state is past due for the learner,
// most overdue first, harder items first on equal due times.
func (r *SchedulerRepo) ListDue(ctx context.Context, learnerID uuid.UUID, now time.Time, limit int) ([]models.QueueItem, error) {
	query := `SELECT i.id, i.type, i.prompt, s.due_at
		FROM scheduler_states s
		JOIN items i ON i.id = s.item_id AND i.status = 'published'
		WHERE s.learner_id = $1 AND s.due_at <= $2
		ORDER BY s.due_at ASC, s.difficulty DESC
		LIMIT $3`

	rows, err := r.pool.Query(ctx, query, learnerID, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.QueueItem
	for rows.Next() {
		var q models.QueueItem
		var dueAt time.Time
		if err := rows.Scan(&q.ID, &q.Type, &q.Prompt, &dueAt); err != nil {
			return nil, err
		}
		q.DueAt = &dueAt
		out = append(out, q)
	}
	return out, rows.Err()
}

// ListNew returns published items the learner has never reviewed, in item
// creation order.
func (r *SchedulerRepo) ListNew(ctx context.Context, learnerID uuid.UUID, limit int) ([]models.QueueItem, error) {
	query := `SELECT i.id, i.type, i.prompt
		FROM items i
		LEFT JOIN scheduler_states s ON s.item_id = i.id AND s.learner_id = $1
		WHERE i.status = 'published' AND s.item_id IS NULL
		ORDER BY i.created_at ASC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, learnerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.QueueItem
	for rows.Next() {
		var q models.QueueItem
		if err := rows.Scan(&q.ID, &q.Type, &q.Prompt); err != nil {
			return nil, err
		}
		q.IsNew = true
		out = append(out, q)
	}
	return out, rows.Err()
}
