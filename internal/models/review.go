package models

import (
	"time"

	"github.com/google/uuid"
)

// ReviewMode distinguishes ad hoc reviews from quiz-driven ones.
type ReviewMode string

const (
	ReviewModeReview ReviewMode = "review"
	ReviewModeQuiz   ReviewMode = "quiz"
)

// SchedulerState is the FSRS memory state for one (learner, item) pair.
// A pair with no row is "new"; the row appears with the first recorded
// review and is only ever mutated through optimistic version checks.
type SchedulerState struct {
	LearnerID      uuid.UUID  `json:"learner_id"`
	ItemID         uuid.UUID  `json:"item_id"`
	Stability      float64    `json:"stability"`  // days
	Difficulty     float64    `json:"difficulty"` // [1, 10]
	State          string     `json:"state"`      // learning | review | relearning
	DueAt          time.Time  `json:"due_at"`
	IntervalDays   int        `json:"interval_days"`
	Reps           int        `json:"reps"`
	Lapses         int        `json:"lapses"`
	LastReviewedAt *time.Time `json:"last_reviewed_at"`
	Version        int        `json:"-"` // optimistic lock stamp
}

// Review is one immutable grading event in the append-only audit log.
type Review struct {
	ID            uuid.UUID  `json:"id"`
	LearnerID     uuid.UUID  `json:"learner_id"`
	ItemID        uuid.UUID  `json:"item_id"`
	Rating        int        `json:"rating"` // 1=again 2=hard 3=good 4=easy
	Correct       bool       `json:"correct"`
	LatencyMs     *int       `json:"latency_ms"`
	LatencyBucket *int       `json:"latency_bucket"` // 1..5, derived from latency_ms
	Mode          ReviewMode `json:"mode"`
	ReviewedAt    time.Time  `json:"reviewed_at"`
	NextDue       time.Time  `json:"next_due"`
	IntervalDays  int        `json:"interval_days"`
}

// LatencyBucket maps a response latency to an analytics bucket:
// <1s, 1-3s, 3-10s, 10-30s, 30s+ -> 1..5. Nil latency stays nil.
func LatencyBucket(latencyMs *int) *int {
	if latencyMs == nil {
		return nil
	}
	var bucket int
	switch ms := *latencyMs; {
	case ms < 1000:
		bucket = 1
	case ms < 3000:
		bucket = 2
	case ms < 10000:
		bucket = 3
	case ms < 30000:
		bucket = 4
	default:
		bucket = 5
	}
	return &bucket
}

// RecordReviewRequest is the review recording payload.
type RecordReviewRequest struct {
	ItemID    uuid.UUID  `json:"item_id"`
	Rating    int        `json:"rating"`
	Correct   bool       `json:"correct"`
	LatencyMs *int       `json:"latency_ms"`
	Mode      ReviewMode `json:"mode"`
}

// RecordReviewResponse reports the scheduling outcome of one review.
type RecordReviewResponse struct {
	NextDue      time.Time       `json:"next_due"`
	IntervalDays int             `json:"interval_days"`
	State        *SchedulerState `json:"state"`
}

// QueueItem is one entry in the review queue.
type QueueItem struct {
	ID     uuid.UUID  `json:"id"`
	Type   ItemType   `json:"type"`
	Prompt string     `json:"prompt"`
	DueAt  *time.Time `json:"due_at,omitempty"` // nil for new items
	IsNew  bool       `json:"is_new"`
}

// Queue is the due/new split returned by the queue builder.
type Queue struct {
	Due []QueueItem `json:"due"`
	New []QueueItem `json:"new"`
}

// IntervalPreview reports the would-be interval for each rating.
type IntervalPreview struct {
	ItemID    uuid.UUID   `json:"item_id"`
	Intervals map[int]int `json:"intervals"` // rating -> days
}
