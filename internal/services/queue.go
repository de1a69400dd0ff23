package services

import (
	"context"
	"math"

	"github.com/google/uuid"

	"memora-backend/internal/models"
)

const maxQueueLimit = 100

// BuildQueue assembles the learner's next batch: overdue items first,
// interleaved with unseen ones according to mixNewRatio. A target count
// one pool cannot fill is backfilled from the other, so the combined
// result reaches limit whenever enough items exist.
func (s *ReviewService) BuildQueue(ctx context.Context, learnerID uuid.UUID, limit int, mixNewRatio float64) (*models.Queue, error) {
	fieldErrors := make(map[string]string)
	if limit <= 0 {
		fieldErrors["limit"] = "Must be positive"
	}
	if mixNewRatio < 0 || mixNewRatio > 1 {
		fieldErrors["mix_new"] = "Must be between 0 and 1"
	}
	if len(fieldErrors) > 0 {
		return nil, &ValidationError{Code: CodeInvalidParams, Fields: fieldErrors}
	}
	if limit > maxQueueLimit {
		limit = maxQueueLimit
	}

	now := s.now()
	due, err := s.states.ListDue(ctx, learnerID, now, limit)
	if err != nil {
		return nil, err
	}
	newItems, err := s.states.ListNew(ctx, learnerID, limit)
	if err != nil {
		return nil, err
	}

	newTarget := int(math.Round(float64(limit) * mixNewRatio))
	newCount := min(newTarget, len(newItems))
	dueCount := min(limit-newCount, len(due))
	// Backfill: whatever the due pool could not supply goes back to new.
	newCount = min(limit-dueCount, len(newItems))

	q := &models.Queue{
		Due: due[:dueCount],
		New: newItems[:newCount],
	}
	if q.Due == nil {
		q.Due = []models.QueueItem{}
	}
	if q.New == nil {
		q.New = []models.QueueItem{}
	}
	return q, nil
}
