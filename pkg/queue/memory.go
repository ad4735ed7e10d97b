package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"AShareLab/pkg/logger"

	"github.com/google/uuid"
)

// MemoryQueue is an in-process queue with the same job model as RedisQueue.
// It is the default for single-node deployments where Redis is not
// configured.
type MemoryQueue struct {
	logger    *logger.Logger
	config    *QueueConfig
	jobs      map[string]Job
	ch        chan *Message
	wg        sync.WaitGroup
	mu        sync.RWMutex
	isRunning bool
	cancel    context.CancelFunc
}

// NewMemoryQueue creates a new in-process queue.
func NewMemoryQueue(lgr *logger.Logger, config *QueueConfig) *MemoryQueue {
	if config == nil {
		config = &QueueConfig{}
	}
	if config.Workers <= 0 {
		config.Workers = 1
	}
	if config.QueueSize <= 0 {
		config.QueueSize = 100
	}
	if config.RetryDelay <= 0 {
		config.RetryDelay = 5 * time.Second
	}
	return &MemoryQueue{
		logger: lgr,
		config: config,
		jobs:   make(map[string]Job),
		ch:     make(chan *Message, config.QueueSize),
	}
}

// RegisterJob registers a handler for a message type.
func (q *MemoryQueue) RegisterJob(job Job) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, ok := q.jobs[job.Type()]; ok {
		q.logger.Warn("job already registered", logger.String("job", job.Name()))
		return
	}
	q.jobs[job.Type()] = job
}

// PublishMessage enqueues a message, failing fast when the queue is full.
func (q *MemoryQueue) PublishMessage(ctx context.Context, msgType string, payload interface{}) error {
	msg := &Message{
		ID:        uuid.NewString(),
		Type:      msgType,
		Payload:   payload,
		Timestamp: time.Now(),
	}
	select {
	case q.ch <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return fmt.Errorf("queue full")
	}
}

// Start launches the worker pool.
func (q *MemoryQueue) Start() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.isRunning {
		return fmt.Errorf("queue already running")
	}
	q.isRunning = true

	ctx, cancel := context.WithCancel(context.Background())
	q.cancel = cancel
	for i := 0; i < q.config.Workers; i++ {
		q.wg.Add(1)
		go q.worker(ctx, i)
	}
	q.logger.Info("memory queue started", logger.Int("workers", q.config.Workers))
	return nil
}

// Stop cancels the workers and waits for in-flight jobs.
func (q *MemoryQueue) Stop(ctx context.Context) error {
	q.mu.Lock()
	if !q.isRunning {
		q.mu.Unlock()
		return nil
	}
	q.isRunning = false
	q.mu.Unlock()

	q.cancel()
	done := make(chan struct{})
	go func() { q.wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	q.logger.Info("memory queue stopped")
	return nil
}

func (q *MemoryQueue) worker(ctx context.Context, id int) {
	defer q.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-q.ch:
			q.handle(ctx, msg)
		}
	}
}

func (q *MemoryQueue) handle(ctx context.Context, msg *Message) {
	q.mu.RLock()
	job, ok := q.jobs[msg.Type]
	q.mu.RUnlock()
	if !ok {
		q.logger.Warn("no job registered for message type", logger.String("type", msg.Type))
		return
	}

	if err := job.Handle(ctx, msg.Payload); err != nil {
		msg.Attempts++
		q.logger.Error("job failed",
			logger.String("job", job.Name()),
			logger.Int("attempts", msg.Attempts),
			logger.Error(err))
		if msg.Attempts < q.config.RetryLimit {
			time.AfterFunc(q.config.RetryDelay, func() {
				select {
				case q.ch <- msg:
				default:
					q.logger.Warn("retry dropped, queue full", logger.String("job", job.Name()))
				}
			})
		}
	}
}

var _ Runner = (*MemoryQueue)(nil)
