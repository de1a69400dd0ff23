package models

import (
	"time"

	"github.com/google/uuid"
)

// WebSocket message types
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type ReviewRecordedEvent struct {
	ItemID       uuid.UUID `json:"item_id"`
	Rating       int       `json:"rating"`
	NextDue      time.Time `json:"next_due"`
	IntervalDays int       `json:"interval_days"`
}

type QuizFinishedEvent struct {
	QuizID       uuid.UUID `json:"quiz_id"`
	FinalScore   float64   `json:"final_score"`
	TotalItems   int       `json:"total_items"`
	CorrectItems int       `json:"correct_items"`
}

type ProgressUpdatedEvent struct {
	DueToday   int `json:"due_today"`
	StreakDays int `json:"streak_days"`
}

// API Error response
type APIError struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id"`
}

type ErrorResponse struct {
	Error APIError `json:"error"`
}
