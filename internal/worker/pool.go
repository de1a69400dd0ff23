package worker

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"memora-backend/internal/services"
)

const progressQueue = "queue:progress-refresh"

// Pool drains progress-refresh jobs enqueued after every recorded review
// and rebuilds the learner's cached overview off the request path.
type Pool struct {
	redis       *redis.Client
	progress    *services.ProgressService
	workerCount int
	stopChan    chan struct{}
}

func NewPool(redisClient *redis.Client, progress *services.ProgressService, workerCount int) *Pool {
	return &Pool{
		redis:       redisClient,
		progress:    progress,
		workerCount: workerCount,
		stopChan:    make(chan struct{}),
	}
}

func (p *Pool) Start() {
	for i := 0; i < p.workerCount; i++ {
		go p.worker(i)
	}

	log.Printf("Started %d worker goroutines", p.workerCount)
}

func (p *Pool) Stop() {
	close(p.stopChan)
}

func (p *Pool) worker(id int) {
	for {
		select {
		case <-p.stopChan:
			log.Printf("Worker %d shutting down", id)
			return
		default:
		}

		ctx := context.Background()

		// BLPOP with 30s timeout
		result, err := p.redis.BLPop(ctx, 30*time.Second, progressQueue).Result()
		if err != nil {
			continue // Timeout or error, retry
		}

		if len(result) < 2 {
			continue
		}

		learnerID, err := uuid.Parse(result[1])
		if err != nil {
			log.Printf("Worker %d: bad learner id on queue: %q", id, result[1])
			continue
		}

		// Coalesce bursts: one refresh per learner at a time, and queued
		// duplicates behind the lock are safe to drop.
		lockKey := fmt.Sprintf("progress_lock:%s", learnerID.String())
		locked, err := p.redis.SetNX(ctx, lockKey, "1", time.Minute).Result()
		if err != nil || !locked {
			continue
		}

		overview, err := p.progress.Refresh(ctx, learnerID)
		if err != nil {
			log.Printf("Worker %d: progress refresh failed for learner %s: %v", id, learnerID, err)
		} else {
			p.progress.NotifyUpdated(ctx, learnerID, overview)
		}

		p.redis.Del(ctx, lockKey)
	}
}
