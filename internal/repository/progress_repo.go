package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"memora-backend/internal/models"
)

type ProgressRepo struct {
	pool *pgxpool.Pool
}

func NewProgressRepo(pool *pgxpool.Pool) *ProgressRepo {
	return &ProgressRepo{pool: pool}
}

// Overview aggregates recent activity, the current daily streak, and the
// learner's per-state item totals in three queries.
func (r *ProgressRepo) Overview(ctx context.Context, learnerID uuid.UUID, now time.Time) (*models.ProgressOverview, error) {
	o := &models.ProgressOverview{}

	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*),
			COUNT(*) FILTER (WHERE correct),
			AVG(latency_ms)
		 FROM reviews
		 WHERE learner_id = $1 AND reviewed_at >= $2`,
		learnerID, now.AddDate(0, 0, -7),
	).Scan(&o.ReviewsLast7Days, &o.CorrectLast7Days, &o.AvgLatencyMs7d)
	if err != nil {
		return nil, err
	}
	if o.ReviewsLast7Days > 0 {
		o.AccuracyLast7 = float64(o.CorrectLast7Days) / float64(o.ReviewsLast7Days)
	}

	// Streak: count consecutive days ending today (or yesterday, so an
	// unfinished day does not break the streak) with at least one review.
	err = r.pool.QueryRow(ctx,
		`WITH days AS (
			SELECT DISTINCT reviewed_at::date AS day
			FROM reviews WHERE learner_id = $1
		), numbered AS (
			SELECT day, ROW_NUMBER() OVER (ORDER BY day DESC) AS rn
			FROM days
		)
		SELECT COUNT(*) FROM numbered
		WHERE day = $2::date - (rn - 1) + CASE
			WHEN EXISTS (SELECT 1 FROM days WHERE day = $2::date) THEN 0 ELSE -1 END`,
		learnerID, now,
	).Scan(&o.StreakDays)
	if err != nil {
		return nil, err
	}

	err = r.pool.QueryRow(ctx,
		`SELECT
			(SELECT COUNT(*) FROM items WHERE status = 'published'),
			COUNT(*) FILTER (WHERE s.state = 'learning'),
			COUNT(*) FILTER (WHERE s.state = 'review'),
			COUNT(*) FILTER (WHERE s.state = 'relearning'),
			COUNT(*) FILTER (WHERE s.due_at <= $2)
		 FROM scheduler_states s
		 WHERE s.learner_id = $1`,
		learnerID, now,
	).Scan(&o.TotalItems, &o.LearningItems, &o.ReviewItems, &o.RelearningItems, &o.DueToday)
	if err != nil {
		return nil, err
	}
	return o, nil
}

// Forecast reports the per-day count of items coming due over the next
// `days` days. Already-overdue items fold into the first day.
func (r *ProgressRepo) Forecast(ctx context.Context, learnerID uuid.UUID, now time.Time, days int) (*models.Forecast, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT GREATEST(due_at::date, $2::date) AS day, COUNT(*)
		 FROM scheduler_states
		 WHERE learner_id = $1 AND due_at < $2::date + $3
		 GROUP BY day
		 ORDER BY day ASC`,
		learnerID, now, days,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var day time.Time
		var n int
		if err := rows.Scan(&day, &n); err != nil {
			return nil, err
		}
		counts[day.Format("2006-01-02")] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	f := &models.Forecast{Days: make([]models.ForecastDay, 0, days)}
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	for i := 0; i < days; i++ {
		day := start.AddDate(0, 0, i)
		f.Days = append(f.Days, models.ForecastDay{
			Date: day,
			Due:  counts[day.Format("2006-01-02")],
		})
	}
	return f, nil
}
