package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	QuizStatusInProgress = "in_progress"
	QuizStatusFinished   = "finished"
)

// Quiz is a bounded grading session over a frozen ordered item list.
type Quiz struct {
	ID         uuid.UUID  `json:"id"`
	LearnerID  uuid.UUID  `json:"learner_id"`
	Status     string     `json:"status"`
	TimeLimitS *int       `json:"time_limit_s"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at"`
	FinalScore *float64   `json:"final_score"`
	Items      []QuizItem `json:"items,omitempty"`
	Results    []Result   `json:"results,omitempty"`
	Version    int        `json:"-"`
}

// QuizItem is one slot in a quiz's frozen item list. Position is the
// 0-based presentation order fixed at start time.
type QuizItem struct {
	QuizID   uuid.UUID `json:"quiz_id"`
	ItemID   uuid.UUID `json:"item_id"`
	Position int       `json:"position"`
	Type     ItemType  `json:"type"`
	Prompt   string    `json:"prompt"`
}

// Result is the graded outcome of one submission within a quiz.
// At most one Result exists per (quiz, item).
type Result struct {
	QuizID      uuid.UUID       `json:"quiz_id"`
	ItemID      uuid.UUID       `json:"item_id"`
	Correct     bool            `json:"correct"`
	Score       float64         `json:"score"` // [0, 1]
	Response    json.RawMessage `json:"response"`
	Explanation string          `json:"explanation,omitempty"`
	LatencyMs   *int            `json:"latency_ms"`
	SubmittedAt time.Time       `json:"submitted_at"`
}

// StartQuizRequest selects the items and optional time limit for a quiz.
// Type narrows a drill to one item type; it is ignored when item_ids is set.
type StartQuizRequest struct {
	ItemIDs    []uuid.UUID `json:"item_ids"`
	Limit      int         `json:"limit"`
	Type       string      `json:"type,omitempty"`
	TimeLimitS *int        `json:"time_limit_s"`
}

// SubmitAnswerRequest grades one item inside a quiz.
type SubmitAnswerRequest struct {
	ItemID    uuid.UUID       `json:"item_id"`
	Response  json.RawMessage `json:"response"`
	LatencyMs *int            `json:"latency_ms"`
}

// SubmitAnswerResponse echoes the grading outcome for one submission.
type SubmitAnswerResponse struct {
	Correct      bool      `json:"correct"`
	Score        float64   `json:"score"`
	Explanation  string    `json:"explanation,omitempty"`
	NextDue      time.Time `json:"next_due"`
	IntervalDays int       `json:"interval_days"`
}

// QuizSummary is the terminal report produced by finishing a quiz.
type QuizSummary struct {
	QuizID       uuid.UUID `json:"quiz_id"`
	FinalScore   float64   `json:"final_score"`
	TotalItems   int       `json:"total_items"`
	CorrectItems int       `json:"correct_items"`
	Answered     int       `json:"answered"`
	TimeTakenS   int       `json:"time_taken_s"`
}
