package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"memora-backend/internal/models"
)

// Publisher pushes learner-scoped events out of the request path.
type Publisher interface {
	PublishUpdate(ctx context.Context, learnerID uuid.UUID, msg models.WSMessage)
	EnqueueProgressRefresh(ctx context.Context, learnerID uuid.UUID)
}

// EventService fans learner events out over Redis: pub/sub for the
// WebSocket hub and a worker queue for progress-cache refreshes.
type EventService struct {
	pubsub *redis.Client
	queue  *redis.Client
}

func NewEventService(pubsub, queue *redis.Client) *EventService {
	return &EventService{pubsub: pubsub, queue: queue}
}

// PublishUpdate sends a WebSocket update via Redis pub/sub. Delivery is
// best effort; a failed publish never fails the triggering operation.
func (s *EventService) PublishUpdate(ctx context.Context, learnerID uuid.UUID, msg models.WSMessage) {
	data, _ := json.Marshal(msg)
	if err := s.pubsub.Publish(ctx, fmt.Sprintf("learner_updates:%s", learnerID.String()), string(data)).Err(); err != nil {
		log.Printf("Failed to publish %s event for learner %s: %v", msg.Type, learnerID, err)
	}
}

// EnqueueProgressRefresh asks the worker pool to recompute the learner's
// cached progress overview.
func (s *EventService) EnqueueProgressRefresh(ctx context.Context, learnerID uuid.UUID) {
	if err := s.queue.LPush(ctx, "queue:progress-refresh", learnerID.String()).Err(); err != nil {
		log.Printf("Failed to enqueue progress refresh for learner %s: %v", learnerID, err)
	}
}
