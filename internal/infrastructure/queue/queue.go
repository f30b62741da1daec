package queue

import (
	"context"
	"errors"
	"sync"
	"time"

	interfaces "academic-records/internal/interfaces/infrastructure"
	"academic-records/pkg/logger"
)

var (
	ErrQueueFull    = errors.New("audit queue is full")
	ErrQueueStopped = errors.New("audit queue is stopped")
)

const handleTimeout = 5 * time.Second

// Queue is a bounded in-memory audit queue drained by worker goroutines.
type Queue struct {
	events chan interfaces.AuditEvent

	workers int
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
	stopped bool
	mu      sync.RWMutex

	handler interfaces.AuditHandler
}

func NewInMemoryQueue(bufferSize, workers int) *Queue {
	if bufferSize < 1 {
		bufferSize = 1
	}
	if workers < 1 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Queue{
		events:  make(chan interfaces.AuditEvent, bufferSize),
		workers: workers,
		ctx:     ctx,
		cancel:  cancel,
	}
}

func (q *Queue) SetHandler(handler interfaces.AuditHandler) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handler = handler
}

func (q *Queue) StartWorkers() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.started || q.stopped {
		return
	}

	if q.handler == nil {
		logger.Warn("Audit handler not set, workers cannot process events")
		return
	}

	logger.Debug("Starting %d audit queue workers", q.workers)

	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(i)
	}

	q.started = true
}

// StopWorkers refuses new events, lets the workers write what is already
// queued and waits for them to exit.
func (q *Queue) StopWorkers() {
	q.mu.Lock()
	if q.stopped {
		q.mu.Unlock()
		return
	}
	q.stopped = true
	started := q.started
	q.mu.Unlock()

	q.cancel()
	if started {
		q.wg.Wait()
	}
	logger.Debug("Audit queue workers stopped")
}

func (q *Queue) EnqueueAudit(ctx context.Context, event interfaces.AuditEvent) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.stopped {
		return ErrQueueStopped
	}

	select {
	case q.events <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrQueueFull
	}
}

func (q *Queue) DequeueAudit(ctx context.Context) (*interfaces.AuditEvent, error) {
	select {
	case event := <-q.events:
		return &event, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (q *Queue) Len(ctx context.Context) (int, error) {
	return len(q.events), nil
}

func (q *Queue) worker(workerID int) {
	defer q.wg.Done()

	for {
		select {
		case event := <-q.events:
			q.handle(workerID, event)
		case <-q.ctx.Done():
			q.drain(workerID)
			return
		}
	}
}

func (q *Queue) drain(workerID int) {
	for {
		select {
		case event := <-q.events:
			q.handle(workerID, event)
		default:
			return
		}
	}
}

func (q *Queue) handle(workerID int, event interfaces.AuditEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
	defer cancel()

	if err := q.handler.HandleAuditEvent(ctx, event); err != nil {
		logger.Error("Audit worker %d failed to write %s event: %v", workerID, event.Kind, err)
	}
}

var _ interfaces.QueueService = (*Queue)(nil)
