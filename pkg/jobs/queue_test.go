package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type outcomes struct {
	mu       sync.Mutex
	statuses []string
	done     chan struct{}
	final    int
}

func newOutcomes(final int) *outcomes {
	return &outcomes{done: make(chan struct{}), final: final}
}

func (o *outcomes) observe(job Job, status string, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.statuses = append(o.statuses, status)
	if status != StatusRetrying {
		o.final--
		if o.final == 0 {
			close(o.done)
		}
	}
}

func (o *outcomes) wait(t *testing.T) {
	t.Helper()
	select {
	case <-o.done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for jobs")
	}
}

func TestQueueProcessesJobs(t *testing.T) {
	seen := make(chan Job, 1)
	obs := newOutcomes(1)
	q := NewQueue("test", func(ctx context.Context, job Job) error {
		seen <- job
		return nil
	}, QueueConfig{Observer: obs.observe})
	q.Start(context.Background())
	defer q.Stop()

	job, err := q.Enqueue(context.Background(), Job{Kind: "recalc", Subject: "s1"})
	require.NoError(t, err)
	assert.NotEmpty(t, job.ID)
	assert.False(t, job.Enqueued.IsZero())

	obs.wait(t)
	got := <-seen
	assert.Equal(t, job.ID, got.ID)
	assert.Equal(t, "s1", got.Subject)
	assert.Equal(t, Stats{Enqueued: 1, Succeeded: 1}, q.Stats())
}

func TestQueueRetriesThenFails(t *testing.T) {
	obs := newOutcomes(1)
	calls := 0
	var mu sync.Mutex
	q := NewQueue("test", func(ctx context.Context, job Job) error {
		mu.Lock()
		calls++
		mu.Unlock()
		return errors.New("boom")
	}, QueueConfig{MaxRetries: 2, RetryDelay: time.Millisecond, Observer: obs.observe})
	q.Start(context.Background())
	defer q.Stop()

	_, err := q.Enqueue(context.Background(), Job{Kind: "recalc"})
	require.NoError(t, err)
	obs.wait(t)

	mu.Lock()
	assert.Equal(t, 3, calls)
	mu.Unlock()
	assert.Equal(t, []string{StatusRetrying, StatusRetrying, StatusFailed}, obs.statuses)
	assert.Equal(t, Stats{Enqueued: 1, Retried: 2, Failed: 1}, q.Stats())
}

func TestQueueRetrySucceeds(t *testing.T) {
	obs := newOutcomes(1)
	q := NewQueue("test", func(ctx context.Context, job Job) error {
		if job.Attempt == 0 {
			return errors.New("transient")
		}
		return nil
	}, QueueConfig{MaxRetries: 3, RetryDelay: time.Millisecond, Observer: obs.observe})
	q.Start(context.Background())
	defer q.Stop()

	_, err := q.Enqueue(context.Background(), Job{Kind: "recalc"})
	require.NoError(t, err)
	obs.wait(t)
	assert.Equal(t, []string{StatusRetrying, StatusSucceeded}, obs.statuses)
	assert.Equal(t, int64(1), q.Stats().Enqueued)
}

func TestQueueRejectsWhenStopped(t *testing.T) {
	q := NewQueue("test", func(context.Context, Job) error { return nil }, QueueConfig{})
	_, err := q.Enqueue(context.Background(), Job{})
	assert.ErrorIs(t, err, ErrQueueClosed)

	q.Start(context.Background())
	q.Stop()
	_, err = q.Enqueue(context.Background(), Job{})
	assert.ErrorIs(t, err, ErrQueueClosed)
}

func TestQueueEnqueueHonoursCallerContextWhenFull(t *testing.T) {
	running := make(chan struct{}, 1)
	release := make(chan struct{})
	q := NewQueue("test", func(ctx context.Context, job Job) error {
		running <- struct{}{}
		select {
		case <-release:
		case <-ctx.Done():
		}
		return nil
	}, QueueConfig{Workers: 1, BufferSize: 1})
	q.Start(context.Background())
	defer q.Stop()
	defer close(release)

	_, err := q.Enqueue(context.Background(), Job{Subject: "busy"})
	require.NoError(t, err)
	<-running
	_, err = q.Enqueue(context.Background(), Job{Subject: "buffered"})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	start := time.Now()
	_, err = q.Enqueue(ctx, Job{Subject: "overflow"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, int64(2), q.Stats().Enqueued)
}
