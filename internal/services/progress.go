package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"memora-backend/internal/models"
)

const (
	progressCacheTTL    = 5 * time.Minute
	forecastDaysMax     = 90
	forecastDaysDefault = 30
)

// ProgressStore answers aggregate queries over reviews and scheduler state.
type ProgressStore interface {
	Overview(ctx context.Context, learnerID uuid.UUID, now time.Time) (*models.ProgressOverview, error)
	Forecast(ctx context.Context, learnerID uuid.UUID, now time.Time, days int) (*models.Forecast, error)
}

type ProgressService struct {
	progress ProgressStore
	cache    *redis.Client
	events   Publisher
	now      func() time.Time
}

func NewProgressService(progress ProgressStore, cache *redis.Client, events Publisher) *ProgressService {
	return &ProgressService{
		progress: progress,
		cache:    cache,
		events:   events,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func progressCacheKey(learnerID uuid.UUID) string {
	return fmt.Sprintf("progress:overview:%s", learnerID.String())
}

// Overview serves the cached aggregate when fresh and falls back to the
// database otherwise. The cache is advisory: a Redis failure degrades to
// a direct query, never to an error.
func (s *ProgressService) Overview(ctx context.Context, learnerID uuid.UUID) (*models.ProgressOverview, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, progressCacheKey(learnerID)).Result()
		if err == nil {
			o := &models.ProgressOverview{}
			if err := json.Unmarshal([]byte(cached), o); err == nil {
				return o, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			log.Printf("Progress cache read failed for learner %s: %v", learnerID, err)
		}
	}
	return s.Refresh(ctx, learnerID)
}

// Refresh recomputes the overview and rewrites the cache. The worker pool
// calls this off the request path after every recorded review.
func (s *ProgressService) Refresh(ctx context.Context, learnerID uuid.UUID) (*models.ProgressOverview, error) {
	o, err := s.progress.Overview(ctx, learnerID, s.now())
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if data, err := json.Marshal(o); err == nil {
			if err := s.cache.Set(ctx, progressCacheKey(learnerID), data, progressCacheTTL).Err(); err != nil {
				log.Printf("Progress cache write failed for learner %s: %v", learnerID, err)
			}
		}
	}
	return o, nil
}

// NotifyUpdated pushes the refreshed headline numbers to connected clients.
func (s *ProgressService) NotifyUpdated(ctx context.Context, learnerID uuid.UUID, o *models.ProgressOverview) {
	if s.events == nil {
		return
	}
	s.events.PublishUpdate(ctx, learnerID, models.WSMessage{
		Type: "progress.updated",
		Payload: models.ProgressUpdatedEvent{
			DueToday:   o.DueToday,
			StreakDays: o.StreakDays,
		},
	})
}

func (s *ProgressService) Forecast(ctx context.Context, learnerID uuid.UUID, days int) (*models.Forecast, error) {
	if days <= 0 {
		days = forecastDaysDefault
	}
	if days > forecastDaysMax {
		return nil, &ValidationError{Code: CodeInvalidParams, Fields: map[string]string{
			"days": fmt.Sprintf("Must be at most %d", forecastDaysMax),
		}}
	}
	return s.progress.Forecast(ctx, learnerID, s.now(), days)
}
