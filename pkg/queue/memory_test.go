package queue

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"AShareLab/pkg/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

type countingJob struct {
	name    string
	msgType string
	calls   int64
	fail    int64 // fail the first N attempts
}

func (j *countingJob) Name() string { return j.name }
func (j *countingJob) Type() string { return j.msgType }

func (j *countingJob) Handle(context.Context, interface{}) error {
	n := atomic.AddInt64(&j.calls, 1)
	if n <= atomic.LoadInt64(&j.fail) {
		return errors.New("transient failure")
	}
	return nil
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within %v", timeout)
}

func TestMemoryQueueDispatch(t *testing.T) {
	q := NewMemoryQueue(testLogger(t), &QueueConfig{Workers: 2, QueueSize: 10})
	job := &countingJob{name: "report-generator", msgType: "report:generate"}
	q.RegisterJob(job)

	if err := q.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer q.Stop(context.Background())

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if err := q.PublishMessage(ctx, "report:generate", map[string]interface{}{"n": i}); err != nil {
			t.Fatalf("publish %d: %v", i, err)
		}
	}

	waitFor(t, time.Second, func() bool { return atomic.LoadInt64(&job.calls) == 3 })
}

func TestMemoryQueueRetry(t *testing.T) {
	q := NewMemoryQueue(testLogger(t), &QueueConfig{
		Workers:    1,
		QueueSize:  10,
		RetryLimit: 2,
		RetryDelay: 10 * time.Millisecond,
	})
	job := &countingJob{name: "report-generator", msgType: "report:generate", fail: 1}
	q.RegisterJob(job)

	if err := q.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer q.Stop(context.Background())

	if err := q.PublishMessage(context.Background(), "report:generate", nil); err != nil {
		t.Fatalf("publish: %v", err)
	}

	waitFor(t, time.Second, func() bool { return atomic.LoadInt64(&job.calls) == 2 })
}

func TestMemoryQueueFullFailsFast(t *testing.T) {
	q := NewMemoryQueue(testLogger(t), &QueueConfig{Workers: 1, QueueSize: 1})
	// not started, so nothing drains the channel
	ctx := context.Background()
	if err := q.PublishMessage(ctx, "report:generate", nil); err != nil {
		t.Fatalf("first publish: %v", err)
	}
	if err := q.PublishMessage(ctx, "report:generate", nil); err == nil {
		t.Fatalf("expected queue full error")
	}
}

func TestMemoryQueueDoubleStart(t *testing.T) {
	q := NewMemoryQueue(testLogger(t), nil)
	if err := q.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer q.Stop(context.Background())
	if err := q.Start(); err == nil {
		t.Fatalf("second start must fail")
	}
}

func TestMemoryQueueStopIdempotent(t *testing.T) {
	q := NewMemoryQueue(testLogger(t), nil)
	if err := q.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := q.Stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if err := q.Stop(context.Background()); err != nil {
		t.Fatalf("second stop should be a no-op: %v", err)
	}
}
