// Package fsrs implements the FSRS-6 spaced repetition memory model.
//
// The Scheduler is a pure function over explicit inputs: it maps a memory
// state and a rating to the next memory state and review interval, and never
// touches storage. Persistence and locking live in the repository layer.
package fsrs

import (
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// Memory is the continuous memory state for one (learner, item) pair.
// The zero value represents a pair that has never been reviewed.
type Memory struct {
	Stability      float64
	Difficulty     float64
	State          State
	Reps           int
	Lapses         int
	LastReviewedAt *time.Time
}

// Outcome is the result of applying one review to a Memory.
type Outcome struct {
	Memory       Memory
	IntervalDays int
	Due          time.Time
}

// Config tunes a Scheduler. Zero values select documented defaults.
type Config struct {
	Parameters        [21]float64 // zero array -> DefaultParameters
	DesiredRetention  float64     // zero -> 0.9
	MaximumInterval   int         // zero -> 36500 days
	LearningThreshold int         // zero -> 2 reps to graduate learning/relearning
	EnableFuzzing     bool        // false keeps intervals deterministic
}

// Scheduler computes FSRS-6 state transitions. All configuration is fixed
// at construction, so one instance is safe for concurrent use.
type Scheduler struct {
	algo              algo
	desiredRetention  float64
	maximumInterval   int
	learningThreshold int
	enableFuzzing     bool

	rngMu sync.Mutex // guards rng
	rng   *rand.Rand
}

// NewScheduler creates a Scheduler from the given config.
func NewScheduler(cfg Config) (*Scheduler, error) {
	params := cfg.Parameters
	if params == [21]float64{} {
		params = DefaultParameters
	}
	if err := ValidateParameters(params); err != nil {
		return nil, err
	}

	dr := cfg.DesiredRetention
	if dr == 0 {
		dr = 0.9
	}
	if dr <= 0 || dr >= 1 {
		return nil, fmt.Errorf("fsrs: desired retention %f out of range (0, 1)", dr)
	}

	maxIvl := cfg.MaximumInterval
	if maxIvl == 0 {
		maxIvl = 36500
	}
	if maxIvl < 1 {
		return nil, fmt.Errorf("fsrs: maximum interval %d must be positive", maxIvl)
	}

	threshold := cfg.LearningThreshold
	if threshold == 0 {
		threshold = 2
	}

	return &Scheduler{
		algo:              newAlgo(params),
		desiredRetention:  dr,
		maximumInterval:   maxIvl,
		learningThreshold: threshold,
		enableFuzzing:     cfg.EnableFuzzing,
		rng:               rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

// Review applies one rated review at the given time and returns the updated
// memory state, the next interval in whole days, and the resulting due date.
// The input Memory is not mutated.
func (s *Scheduler) Review(m Memory, rating Rating, now time.Time) (Outcome, error) {
	return s.review(m, rating, now, s.enableFuzzing)
}

// Preview returns the outcome of reviewing with each possible rating, without
// recording anything. Fuzzing is never applied so previews are reproducible.
func (s *Scheduler) Preview(m Memory, now time.Time) map[Rating]Outcome {
	result := make(map[Rating]Outcome, 4)
	for _, r := range []Rating{Again, Hard, Good, Easy} {
		out, _ := s.review(m, r, now, false)
		result[r] = out
	}
	return result
}

func (s *Scheduler) review(m Memory, rating Rating, now time.Time, fuzz bool) (Outcome, error) {
	if !rating.IsValid() {
		return Outcome{}, fmt.Errorf("%w: %d", ErrInvalidRating, int(rating))
	}

	s.updateMemory(&m, rating, now)
	s.transition(&m, rating)

	m.Reps++
	reviewedAt := now
	m.LastReviewedAt = &reviewedAt

	interval := s.algo.nextInterval(m.Stability, s.desiredRetention, s.maximumInterval)
	if fuzz && m.State == Review {
		s.rngMu.Lock()
		interval = applyFuzz(interval, s.maximumInterval, s.rng)
		s.rngMu.Unlock()
	}

	return Outcome{
		Memory:       m,
		IntervalDays: interval,
		Due:          now.AddDate(0, 0, interval),
	}, nil
}

// Retrievability estimates the probability of successful recall at the given
// time. A never-reviewed pair has retrievability 1 (nothing to forget yet).
func (s *Scheduler) Retrievability(m Memory, now time.Time) float64 {
	if m.LastReviewedAt == nil || m.Stability <= 0 {
		return 1.0
	}
	elapsed := now.Sub(*m.LastReviewedAt).Hours() / 24.0
	return s.algo.retrievability(elapsed, m.Stability)
}

// updateMemory advances stability and difficulty for one review.
func (s *Scheduler) updateMemory(m *Memory, rating Rating, now time.Time) {
	if m.State == New || m.LastReviewedAt == nil {
		// First exposure: seed from rating-indexed baselines.
		m.Stability = s.algo.initStability(rating)
		m.Difficulty = s.algo.initDifficulty(rating, true)
		return
	}

	elapsedDays := now.Sub(*m.LastReviewedAt).Hours() / 24.0
	if elapsedDays < 1 {
		m.Stability = s.algo.shortTermStability(m.Stability, rating)
	} else {
		r := s.algo.retrievability(elapsedDays, m.Stability)
		m.Stability = s.algo.nextStability(m.Difficulty, m.Stability, r, rating)
	}
	m.Difficulty = s.algo.nextDifficulty(m.Difficulty, rating)
}

// transition applies the learning-phase state machine.
func (s *Scheduler) transition(m *Memory, rating Rating) {
	if m.State == New {
		// First exposure enters learning regardless of rating; a failed
		// first attempt is not a lapse, there was nothing to forget.
		m.State = Learning
		if rating != Again && m.Reps+1 >= s.learningThreshold {
			m.State = Review
		}
		return
	}

	if rating == Again {
		m.State = Relearning
		m.Lapses++
		return
	}

	// Successful rating: graduate once enough reps have accumulated.
	if m.State == Learning || m.State == Relearning {
		if m.Reps+1 >= s.learningThreshold {
			m.State = Review
		}
	}
}
