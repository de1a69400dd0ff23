package fsrs

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var reviewTime = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func newTestScheduler(t *testing.T) *Scheduler {
	t.Helper()
	s, err := NewScheduler(Config{})
	require.NoError(t, err)
	return s
}

func TestNewSchedulerValidation(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"retention above one", Config{DesiredRetention: 1.5}},
		{"negative retention", Config{DesiredRetention: -0.1}},
		{"negative max interval", Config{MaximumInterval: -5}},
		{"out of bounds parameters", Config{Parameters: func() [21]float64 {
			p := DefaultParameters
			p[3] = 1e6
			return p
		}()}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewScheduler(tc.cfg)
			assert.Error(t, err)
		})
	}
}

func TestReviewRejectsInvalidRating(t *testing.T) {
	s := newTestScheduler(t)

	for _, r := range []Rating{0, 5, -1} {
		_, err := s.Review(Memory{}, r, reviewTime)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidRating)
	}
}

func TestFirstReviewSeedsState(t *testing.T) {
	s := newTestScheduler(t)

	out, err := s.Review(Memory{}, Good, reviewTime)
	require.NoError(t, err)

	m := out.Memory
	assert.Equal(t, Learning, m.State)
	assert.Equal(t, 1, m.Reps)
	assert.Equal(t, 0, m.Lapses)
	assert.InDelta(t, DefaultParameters[2], m.Stability, 1e-9)
	assert.Greater(t, m.Difficulty, 1.0)
	require.NotNil(t, m.LastReviewedAt)
	assert.Equal(t, reviewTime, *m.LastReviewedAt)
	assert.GreaterOrEqual(t, out.IntervalDays, 1)
	assert.Equal(t, reviewTime.AddDate(0, 0, out.IntervalDays), out.Due)
}

func TestFirstReviewAgainIsNotALapse(t *testing.T) {
	s := newTestScheduler(t)

	out, err := s.Review(Memory{}, Again, reviewTime)
	require.NoError(t, err)
	assert.Equal(t, Learning, out.Memory.State)
	assert.Equal(t, 0, out.Memory.Lapses)
}

func TestStabilityMonotonicInOutcome(t *testing.T) {
	s := newTestScheduler(t)

	// Seed a reviewed item, then check monotonicity: a failure strictly
	// shrinks stability, a success strictly grows it.
	seeded, err := s.Review(Memory{}, Good, reviewTime)
	require.NoError(t, err)
	later := reviewTime.AddDate(0, 0, 3)

	for _, r := range []Rating{Good, Easy} {
		out, err := s.Review(seeded.Memory, r, later)
		require.NoError(t, err)
		assert.Greater(t, out.Memory.Stability, seeded.Memory.Stability, "rating %s", r)
	}

	out, err := s.Review(seeded.Memory, Again, later)
	require.NoError(t, err)
	assert.Less(t, out.Memory.Stability, seeded.Memory.Stability)
}

func TestLapseTransitionsToRelearning(t *testing.T) {
	s := newTestScheduler(t)

	out, err := s.Review(Memory{}, Good, reviewTime)
	require.NoError(t, err)

	out, err = s.Review(out.Memory, Again, reviewTime.AddDate(0, 0, 2))
	require.NoError(t, err)
	assert.Equal(t, Relearning, out.Memory.State)
	assert.Equal(t, 1, out.Memory.Lapses)
	assert.Equal(t, 2, out.Memory.Reps)
}

func TestGraduationAtThreshold(t *testing.T) {
	s := newTestScheduler(t)

	out, err := s.Review(Memory{}, Good, reviewTime)
	require.NoError(t, err)
	assert.Equal(t, Learning, out.Memory.State, "one rep should not graduate")

	out, err = s.Review(out.Memory, Good, reviewTime.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, Review, out.Memory.State, "second successful rep graduates")
}

func TestRelearningRecovers(t *testing.T) {
	s := newTestScheduler(t)

	out, err := s.Review(Memory{}, Good, reviewTime)
	require.NoError(t, err)
	out, err = s.Review(out.Memory, Good, reviewTime.AddDate(0, 0, 1))
	require.NoError(t, err)
	out, err = s.Review(out.Memory, Again, reviewTime.AddDate(0, 0, 4))
	require.NoError(t, err)
	require.Equal(t, Relearning, out.Memory.State)

	out, err = s.Review(out.Memory, Good, reviewTime.AddDate(0, 0, 5))
	require.NoError(t, err)
	assert.Equal(t, Review, out.Memory.State)
}

func TestRepeatedReviewAdvancesDue(t *testing.T) {
	s := newTestScheduler(t)

	first, err := s.Review(Memory{}, Good, reviewTime)
	require.NoError(t, err)

	second, err := s.Review(first.Memory, Good, reviewTime)
	require.NoError(t, err)

	// Two applications never collapse into one: state keeps moving.
	assert.Equal(t, 2, second.Memory.Reps)
	assert.False(t, second.Due.Before(first.Due))
	assert.GreaterOrEqual(t, second.Memory.Stability, first.Memory.Stability)
}

func TestDifficultyStaysBounded(t *testing.T) {
	s := newTestScheduler(t)

	m := Memory{}
	at := reviewTime
	for i := 0; i < 30; i++ {
		out, err := s.Review(m, Again, at)
		require.NoError(t, err)
		m = out.Memory
		at = at.AddDate(0, 0, 1)
		assert.LessOrEqual(t, m.Difficulty, 10.0)
		assert.GreaterOrEqual(t, m.Difficulty, 1.0)
	}
	assert.Equal(t, 29, m.Lapses)
}

func TestPreviewCoversAllRatings(t *testing.T) {
	s := newTestScheduler(t)

	seeded, err := s.Review(Memory{}, Good, reviewTime)
	require.NoError(t, err)

	previews := s.Preview(seeded.Memory, reviewTime.AddDate(0, 0, 3))
	require.Len(t, previews, 4)
	assert.Less(t, previews[Again].IntervalDays, previews[Easy].IntervalDays)
	for r, out := range previews {
		assert.GreaterOrEqual(t, out.IntervalDays, 1, "rating %s", r)
	}
}

func TestPreviewSafeAlongsideConcurrentReviews(t *testing.T) {
	s, err := NewScheduler(Config{EnableFuzzing: true})
	require.NoError(t, err)

	seeded, err := s.Review(Memory{}, Good, reviewTime)
	require.NoError(t, err)
	later := reviewTime.AddDate(0, 0, 3)

	// One Scheduler instance serves previews and reviews at the same time;
	// run both from many goroutines so the race detector can observe any
	// shared-state mutation.
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				previews := s.Preview(seeded.Memory, later)
				assert.Len(t, previews, 4)

				out, err := s.Review(seeded.Memory, Good, later)
				assert.NoError(t, err)
				assert.GreaterOrEqual(t, out.IntervalDays, 1)
			}
		}()
	}
	wg.Wait()
}

func TestPreviewIsDeterministicWithFuzzingEnabled(t *testing.T) {
	s, err := NewScheduler(Config{EnableFuzzing: true})
	require.NoError(t, err)

	seeded, err := s.Review(Memory{}, Good, reviewTime)
	require.NoError(t, err)
	later := reviewTime.AddDate(0, 0, 3)

	first := s.Preview(seeded.Memory, later)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, s.Preview(seeded.Memory, later))
	}
}

func TestRetrievabilityDecaysOverTime(t *testing.T) {
	s := newTestScheduler(t)

	assert.Equal(t, 1.0, s.Retrievability(Memory{}, reviewTime), "unreviewed pair has nothing to forget")

	seeded, err := s.Review(Memory{}, Good, reviewTime)
	require.NoError(t, err)

	soon := s.Retrievability(seeded.Memory, reviewTime.AddDate(0, 0, 1))
	late := s.Retrievability(seeded.Memory, reviewTime.AddDate(0, 0, 30))
	assert.Greater(t, soon, late)
}

func TestStateRoundTrip(t *testing.T) {
	for _, st := range []State{New, Learning, Review, Relearning} {
		text, err := st.MarshalText()
		require.NoError(t, err)

		parsed, err := ParseState(string(text))
		require.NoError(t, err)
		assert.Equal(t, st, parsed)
	}

	_, err := ParseState("mastered")
	assert.Error(t, err)
}
