package jobs

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueRejectsBeforeStart(t *testing.T) {
	q := NewQueue[int]("test", func(context.Context, Job[int]) error { return nil }, QueueConfig{})
	ok, err := q.Enqueue("a", 1)
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrQueueStopped)
}

func TestQueueCoalescesPendingKeys(t *testing.T) {
	release := make(chan struct{})
	var mu sync.Mutex
	seen := make([]string, 0)

	q := NewQueue[string]("test", func(_ context.Context, job Job[string]) error {
		<-release
		mu.Lock()
		seen = append(seen, job.Payload)
		mu.Unlock()
		return nil
	}, QueueConfig{Workers: 1, BufferSize: 8})
	q.Start(context.Background())
	defer q.Stop()

	// the first job is taken by the worker and blocks; the rest wait in the buffer
	ok, err := q.Enqueue("all", "first")
	require.NoError(t, err)
	require.True(t, ok)
	require.Eventually(t, func() bool { return q.Pending() == 0 }, time.Second, 5*time.Millisecond)

	ok, _ = q.Enqueue("term", "second")
	assert.True(t, ok)
	ok, _ = q.Enqueue("term", "duplicate")
	assert.False(t, ok)
	assert.Equal(t, 1, q.Pending())

	close(release)
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 2
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"first", "second"}, seen)
}

func TestQueueRetriesFailedJobs(t *testing.T) {
	var attempts int32
	q := NewQueue[int]("test", func(_ context.Context, job Job[int]) error {
		if atomic.AddInt32(&attempts, 1) < 3 {
			return errors.New("transient")
		}
		return nil
	}, QueueConfig{MaxRetries: 3, RetryDelay: time.Millisecond})
	q.Start(context.Background())
	defer q.Stop()

	_, err := q.Enqueue("k", 1)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return atomic.LoadInt32(&attempts) == 3 }, time.Second, 5*time.Millisecond)
}

func TestQueueStopIsIdempotent(t *testing.T) {
	q := NewQueue[int]("test", func(context.Context, Job[int]) error { return nil }, QueueConfig{})
	q.Start(context.Background())
	q.Stop()
	q.Stop()

	_, err := q.Enqueue("k", 1)
	assert.ErrorIs(t, err, ErrQueueStopped)
}
