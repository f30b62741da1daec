package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	interfaces "academic-records/internal/interfaces/infrastructure"
	"academic-records/pkg/logger"

	"github.com/go-redis/redis/v8"
)

const (
	AuditQueueKey         = "queue:audit"
	DefaultDequeueTimeout = 2 * time.Second
)

// RedisQueue keeps audit events in a redis list so several server processes
// can share one writer.
type RedisQueue struct {
	client redis.UniversalClient

	workers int
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
	mu      sync.RWMutex

	handler interfaces.AuditHandler
}

// NewRedisQueue creates a Redis-based audit queue
func NewRedisQueue(client redis.UniversalClient, workers int) *RedisQueue {
	if workers < 1 {
		workers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &RedisQueue{
		client:  client,
		workers: workers,
		ctx:     ctx,
		cancel:  cancel,
	}
}

func (rq *RedisQueue) SetHandler(handler interfaces.AuditHandler) {
	rq.mu.Lock()
	defer rq.mu.Unlock()
	rq.handler = handler
}

func (rq *RedisQueue) StartWorkers() {
	rq.mu.Lock()
	defer rq.mu.Unlock()

	if rq.started {
		return
	}

	if rq.handler == nil {
		logger.Warn("Audit handler not set, workers cannot process events")
		return
	}

	logger.Info("Starting %d Redis audit workers", rq.workers)

	for i := 0; i < rq.workers; i++ {
		rq.wg.Add(1)
		go rq.worker(i)
	}

	rq.started = true
}

func (rq *RedisQueue) StopWorkers() {
	rq.mu.Lock()
	defer rq.mu.Unlock()

	if !rq.started {
		return
	}

	logger.Info("Stopping Redis audit workers...")
	rq.cancel()
	rq.wg.Wait()
	rq.started = false
	logger.Info("Redis audit workers stopped")
}

// EnqueueAudit pushes an event onto the redis list
func (rq *RedisQueue) EnqueueAudit(ctx context.Context, event interfaces.AuditEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal audit event: %w", err)
	}

	if err := rq.client.LPush(ctx, AuditQueueKey, data).Err(); err != nil {
		return fmt.Errorf("failed to enqueue audit event: %w", err)
	}
	return nil
}

// DequeueAudit waits up to DefaultDequeueTimeout for an event. It returns a
// nil event when none arrived.
func (rq *RedisQueue) DequeueAudit(ctx context.Context) (*interfaces.AuditEvent, error) {
	result, err := rq.client.BRPop(ctx, DefaultDequeueTimeout, AuditQueueKey).Result()
	if err != nil {
		if err == redis.Nil || errors.Is(err, context.DeadlineExceeded) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to dequeue audit event: %w", err)
	}

	if len(result) != 2 {
		return nil, fmt.Errorf("unexpected Redis BRPOP result format")
	}

	var event interfaces.AuditEvent
	if err := json.Unmarshal([]byte(result[1]), &event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal audit event: %w", err)
	}
	return &event, nil
}

func (rq *RedisQueue) Len(ctx context.Context) (int, error) {
	n, err := rq.client.LLen(ctx, AuditQueueKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to read audit queue length: %w", err)
	}
	return int(n), nil
}

func (rq *RedisQueue) worker(workerID int) {
	defer rq.wg.Done()

	for {
		select {
		case <-rq.ctx.Done():
			return
		default:
		}

		event, err := rq.DequeueAudit(rq.ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			logger.Error("Redis audit worker %d error: %v", workerID, err)
			time.Sleep(time.Second)
			continue
		}
		if event == nil {
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
		if err := rq.handler.HandleAuditEvent(ctx, *event); err != nil {
			logger.Error("Redis audit worker %d failed to write %s event: %v", workerID, event.Kind, err)
		}
		cancel()
	}
}

var _ interfaces.QueueService = (*RedisQueue)(nil)
