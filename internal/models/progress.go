package models

import "time"

// ProgressOverview aggregates a learner's recent activity and totals.
type ProgressOverview struct {
	ReviewsLast7Days int      `json:"reviews_last_7_days"`
	CorrectLast7Days int      `json:"correct_last_7_days"`
	AccuracyLast7    float64  `json:"accuracy_last_7_days"`
	AvgLatencyMs7d   *float64 `json:"avg_latency_ms_7d"` // nil until a timed review exists
	StreakDays       int      `json:"streak_days"`
	TotalItems       int      `json:"total_items"`
	LearningItems    int      `json:"learning_items"`
	ReviewItems      int      `json:"review_items"`
	RelearningItems  int      `json:"relearning_items"`
	DueToday         int      `json:"due_today"`
}

// ForecastDay is the number of items becoming due on one calendar day.
type ForecastDay struct {
	Date time.Time `json:"date"`
	Due  int       `json:"due"`
}

// Forecast is the upcoming per-day due load.
type Forecast struct {
	Days []ForecastDay `json:"days"`
}
