package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memora-backend/internal/fsrs"
	"memora-backend/internal/models"
)

func newTestReviewService(t *testing.T) (*ReviewService, *fakeItemStore, *fakeSchedulerStore, *fakePublisher) {
	t.Helper()
	items := newFakeItemStore()
	states := newFakeSchedulerStore(items)
	events := &fakePublisher{}
	scheduler, err := fsrs.NewScheduler(fsrs.Config{})
	require.NoError(t, err)

	svc := NewReviewService(items, states, scheduler, events)
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) }
	return svc, items, states, events
}

func TestRecordReviewFirstExposure(t *testing.T) {
	svc, items, states, events := newTestReviewService(t)
	item := items.add(models.ItemTypeFlashcard, "hello (it)", `{"front":"hello (it)","back":"Ciao"}`)

	resp, err := svc.RecordReview(context.Background(), uuid.New(), models.RecordReviewRequest{
		ItemID:  item.ID,
		Rating:  int(fsrs.Good),
		Correct: true,
	})
	require.NoError(t, err)

	assert.GreaterOrEqual(t, resp.IntervalDays, 1)
	assert.True(t, resp.NextDue.After(svc.now()))
	require.NotNil(t, resp.State)
	assert.Equal(t, "learning", resp.State.State)
	assert.Equal(t, 1, resp.State.Reps)
	assert.Equal(t, 1, resp.State.Version)

	require.Len(t, states.reviews, 1)
	assert.Equal(t, models.ReviewModeReview, states.reviews[0].Mode)
	require.Len(t, events.messages, 1)
	assert.Equal(t, "review.recorded", events.messages[0].Type)
	assert.Len(t, events.refreshes, 1)
}

func TestRecordReviewInvalidRating(t *testing.T) {
	svc, items, _, _ := newTestReviewService(t)
	item := items.add(models.ItemTypeFlashcard, "q", `{"back":"a"}`)

	for _, rating := range []int{0, 5, -1} {
		_, err := svc.RecordReview(context.Background(), uuid.New(), models.RecordReviewRequest{
			ItemID: item.ID,
			Rating: rating,
		})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, CodeInvalidRating, verr.Code)
		assert.Contains(t, verr.Fields, "rating")
	}
}

func TestRecordReviewItemNotFound(t *testing.T) {
	svc, _, _, _ := newTestReviewService(t)

	_, err := svc.RecordReview(context.Background(), uuid.New(), models.RecordReviewRequest{
		ItemID: uuid.New(),
		Rating: int(fsrs.Good),
	})
	var nferr *NotFoundError
	require.ErrorAs(t, err, &nferr)
	assert.Equal(t, CodeItemNotFound, nferr.Code)
}

func TestRecordReviewNotIdempotent(t *testing.T) {
	svc, items, states, _ := newTestReviewService(t)
	item := items.add(models.ItemTypeFlashcard, "q", `{"back":"a"}`)
	learnerID := uuid.New()
	req := models.RecordReviewRequest{ItemID: item.ID, Rating: int(fsrs.Good), Correct: true}

	first, err := svc.RecordReview(context.Background(), learnerID, req)
	require.NoError(t, err)
	second, err := svc.RecordReview(context.Background(), learnerID, req)
	require.NoError(t, err)

	// Two identical calls append two review records and advance the due date.
	assert.Len(t, states.reviews, 2)
	assert.True(t, second.NextDue.After(first.NextDue) || second.NextDue.Equal(first.NextDue))
	assert.Equal(t, 2, second.State.Reps)
	assert.Equal(t, 2, second.State.Version)
}

func TestRecordReviewConcurrentModification(t *testing.T) {
	svc, items, states, _ := newTestReviewService(t)
	item := items.add(models.ItemTypeFlashcard, "q", `{"back":"a"}`)
	learnerID := uuid.New()

	_, err := svc.RecordReview(context.Background(), learnerID, models.RecordReviewRequest{
		ItemID: item.ID, Rating: int(fsrs.Good), Correct: true,
	})
	require.NoError(t, err)

	// A concurrent writer wins the race between our read and our write.
	svc.states = &conflictOnUpdate{fakeSchedulerStore: states}

	_, err = svc.RecordReview(context.Background(), learnerID, models.RecordReviewRequest{
		ItemID: item.ID, Rating: int(fsrs.Good), Correct: true,
	})
	var cerr *ConflictError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, CodeConcurrentModification, cerr.Code)
}

// conflictOnUpdate bumps the stored version between Get and Update, like a
// concurrent writer winning the race.
type conflictOnUpdate struct {
	*fakeSchedulerStore
}

func (c *conflictOnUpdate) Update(ctx context.Context, s *models.SchedulerState, expectedVersion int) error {
	c.states[stateKey{s.LearnerID, s.ItemID}].Version++
	return c.fakeSchedulerStore.Update(ctx, s, expectedVersion)
}

func TestPreviewIntervals(t *testing.T) {
	svc, items, _, _ := newTestReviewService(t)
	item := items.add(models.ItemTypeFlashcard, "q", `{"back":"a"}`)

	preview, err := svc.PreviewIntervals(context.Background(), uuid.New(), item.ID)
	require.NoError(t, err)
	require.Len(t, preview.Intervals, 4)
	assert.LessOrEqual(t, preview.Intervals[int(fsrs.Again)], preview.Intervals[int(fsrs.Easy)])
	for _, days := range preview.Intervals {
		assert.GreaterOrEqual(t, days, 1)
	}
}

func TestPreviewIntervalsUnknownItem(t *testing.T) {
	svc, _, _, _ := newTestReviewService(t)
	_, err := svc.PreviewIntervals(context.Background(), uuid.New(), uuid.New())
	var nferr *NotFoundError
	require.ErrorAs(t, err, &nferr)
	assert.Equal(t, CodeItemNotFound, nferr.Code)
}
