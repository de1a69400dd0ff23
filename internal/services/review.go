package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"memora-backend/internal/fsrs"
	"memora-backend/internal/models"
	"memora-backend/internal/repository"
)

// ItemStore is the read-only item bank surface the services depend on.
type ItemStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Item, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Item, error)
	ListPublished(ctx context.Context, itemType string, limit, offset int) ([]*models.Item, error)
	CountPublished(ctx context.Context, itemType string) (int, error)
}

// SchedulerStore persists per-(learner, item) memory state and the
// append-only review log.
type SchedulerStore interface {
	Get(ctx context.Context, learnerID, itemID uuid.UUID) (*models.SchedulerState, error)
	Insert(ctx context.Context, s *models.SchedulerState) error
	Update(ctx context.Context, s *models.SchedulerState, expectedVersion int) error
	InsertReview(ctx context.Context, rev *models.Review) error
	ListDue(ctx context.Context, learnerID uuid.UUID, now time.Time, limit int) ([]models.QueueItem, error)
	ListNew(ctx context.Context, learnerID uuid.UUID, limit int) ([]models.QueueItem, error)
}

type ReviewService struct {
	items     ItemStore
	states    SchedulerStore
	scheduler *fsrs.Scheduler
	events    Publisher
	now       func() time.Time
}

func NewReviewService(items ItemStore, states SchedulerStore, scheduler *fsrs.Scheduler, events Publisher) *ReviewService {
	return &ReviewService{
		items:     items,
		states:    states,
		scheduler: scheduler,
		events:    events,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// RecordReview applies one grading event to the pair's memory state and
// appends it to the review log. Exactly one state write and one review
// insert happen per successful call; a lost version race surfaces as a
// conflict the caller retries against the freshly written state.
func (s *ReviewService) RecordReview(ctx context.Context, learnerID uuid.UUID, req models.RecordReviewRequest) (*models.RecordReviewResponse, error) {
	fieldErrors := make(map[string]string)
	if !fsrs.Rating(req.Rating).IsValid() {
		fieldErrors["rating"] = "Must be between 1 (again) and 4 (easy)"
	}
	if req.Mode == "" {
		req.Mode = models.ReviewModeReview
	}
	if req.Mode != models.ReviewModeReview && req.Mode != models.ReviewModeQuiz {
		fieldErrors["mode"] = "Must be 'review' or 'quiz'"
	}
	if req.LatencyMs != nil && *req.LatencyMs < 0 {
		fieldErrors["latency_ms"] = "Must be non-negative"
	}
	if len(fieldErrors) > 0 {
		code := CodeInvalidParams
		if _, bad := fieldErrors["rating"]; bad {
			code = CodeInvalidRating
		}
		return nil, &ValidationError{Code: code, Fields: fieldErrors}
	}

	if _, err := s.items.GetByID(ctx, req.ItemID); err != nil {
		if repository.IsNotFound(err) {
			return nil, &NotFoundError{Code: CodeItemNotFound, Message: "Item not found"}
		}
		return nil, err
	}

	now := s.now()
	prior, err := s.states.Get(ctx, learnerID, req.ItemID)
	firstReview := false
	if err != nil {
		if !repository.IsNotFound(err) {
			return nil, err
		}
		firstReview = true
		prior = &models.SchedulerState{LearnerID: learnerID, ItemID: req.ItemID, State: fsrs.New.String()}
	}

	memory, err := memoryFromState(prior)
	if err != nil {
		return nil, err
	}
	outcome, err := s.scheduler.Review(memory, fsrs.Rating(req.Rating), now)
	if err != nil {
		if errors.Is(err, fsrs.ErrInvalidRating) {
			return nil, &ValidationError{Code: CodeInvalidRating, Fields: map[string]string{"rating": err.Error()}}
		}
		return nil, err
	}

	next := stateFromOutcome(learnerID, req.ItemID, outcome)
	if firstReview {
		err = s.states.Insert(ctx, next)
	} else {
		err = s.states.Update(ctx, next, prior.Version)
	}
	if err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			return nil, &ConflictError{
				Code:    CodeConcurrentModification,
				Message: "Scheduler state was modified concurrently; retry the review",
			}
		}
		return nil, err
	}

	rev := &models.Review{
		LearnerID:     learnerID,
		ItemID:        req.ItemID,
		Rating:        req.Rating,
		Correct:       req.Correct,
		LatencyMs:     req.LatencyMs,
		LatencyBucket: models.LatencyBucket(req.LatencyMs),
		Mode:          req.Mode,
		ReviewedAt:    now,
		NextDue:       outcome.Due,
		IntervalDays:  outcome.IntervalDays,
	}
	if err := s.states.InsertReview(ctx, rev); err != nil {
		return nil, err
	}

	if s.events != nil {
		s.events.PublishUpdate(ctx, learnerID, models.WSMessage{
			Type: "review.recorded",
			Payload: models.ReviewRecordedEvent{
				ItemID:       req.ItemID,
				Rating:       req.Rating,
				NextDue:      outcome.Due,
				IntervalDays: outcome.IntervalDays,
			},
		})
		s.events.EnqueueProgressRefresh(ctx, learnerID)
	}

	return &models.RecordReviewResponse{
		NextDue:      outcome.Due,
		IntervalDays: outcome.IntervalDays,
		State:        next,
	}, nil
}

// PreviewIntervals reports the interval each rating would produce for the
// pair's current state, without touching it.
func (s *ReviewService) PreviewIntervals(ctx context.Context, learnerID, itemID uuid.UUID) (*models.IntervalPreview, error) {
	if _, err := s.items.GetByID(ctx, itemID); err != nil {
		if repository.IsNotFound(err) {
			return nil, &NotFoundError{Code: CodeItemNotFound, Message: "Item not found"}
		}
		return nil, err
	}

	var memory fsrs.Memory
	prior, err := s.states.Get(ctx, learnerID, itemID)
	if err == nil {
		memory, err = memoryFromState(prior)
		if err != nil {
			return nil, err
		}
	} else if !repository.IsNotFound(err) {
		return nil, err
	}

	outcomes := s.scheduler.Preview(memory, s.now())
	preview := &models.IntervalPreview{ItemID: itemID, Intervals: make(map[int]int, len(outcomes))}
	for rating, outcome := range outcomes {
		preview.Intervals[int(rating)] = outcome.IntervalDays
	}
	return preview, nil
}

func memoryFromState(s *models.SchedulerState) (fsrs.Memory, error) {
	state, err := fsrs.ParseState(s.State)
	if err != nil {
		return fsrs.Memory{}, fmt.Errorf("corrupt scheduler state for item %s: %w", s.ItemID, err)
	}
	return fsrs.Memory{
		Stability:      s.Stability,
		Difficulty:     s.Difficulty,
		State:          state,
		Reps:           s.Reps,
		Lapses:         s.Lapses,
		LastReviewedAt: s.LastReviewedAt,
	}, nil
}

func stateFromOutcome(learnerID, itemID uuid.UUID, o fsrs.Outcome) *models.SchedulerState {
	return &models.SchedulerState{
		LearnerID:      learnerID,
		ItemID:         itemID,
		Stability:      o.Memory.Stability,
		Difficulty:     o.Memory.Difficulty,
		State:          o.Memory.State.String(),
		DueAt:          o.Due,
		IntervalDays:   o.IntervalDays,
		Reps:           o.Memory.Reps,
		Lapses:         o.Memory.Lapses,
		LastReviewedAt: o.Memory.LastReviewedAt,
	}
}
