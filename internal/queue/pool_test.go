package queue

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerPool(t *testing.T) {
	tests := []struct {
		name       string
		numTasks   int
		numWorkers int
		failing    int
	}{
		{name: "Simple tasks", numTasks: 5, numWorkers: 2},
		{name: "Errors do not stop the pool", numTasks: 4, numWorkers: 2, failing: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wp := NewWorkerPool(tt.numWorkers)

			var executed int32
			for i := 0; i < tt.numTasks; i++ {
				i := i
				err := wp.AddTask(context.Background(), func() error {
					atomic.AddInt32(&executed, 1)
					if i < tt.failing {
						return assert.AnError
					}
					time.Sleep(10 * time.Millisecond)
					return nil
				})
				require.NoError(t, err)
			}
			wp.Close()

			assert.Equal(t, int32(tt.numTasks), atomic.LoadInt32(&executed))
		})
	}
}

func TestWorkerPool_AddTaskCanceled(t *testing.T) {
	wp := NewWorkerPool(1)
	defer wp.Close()

	block := make(chan struct{})
	require.NoError(t, wp.AddTask(context.Background(), func() error { <-block; return nil }))
	require.NoError(t, wp.AddTask(context.Background(), func() error { return nil }))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := wp.AddTask(ctx, func() error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
	close(block)
}

func TestWorkerPool_AddTaskAfterClose(t *testing.T) {
	wp := NewWorkerPool(2)
	wp.Close()
	wp.Close()

	err := wp.AddTask(context.Background(), func() error { return nil })
	assert.ErrorIs(t, err, ErrPoolClosed)
}

func TestPoolDispatcher(t *testing.T) {
	wp := NewWorkerPool(2)

	var (
		mu   sync.Mutex
		seen []Job
	)
	d := NewPoolDispatcher(wp, func(ctx context.Context, job Job) error {
		assert.NoError(t, ctx.Err())
		mu.Lock()
		seen = append(seen, job)
		mu.Unlock()
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, d.Dispatch(ctx, PublishJob(7, 3)))
	require.NoError(t, d.Dispatch(ctx, UnpublishJob(8, 3, 99)))
	cancel()
	wp.Close()

	require.Len(t, seen, 2)
	kinds := map[JobKind]Job{}
	for _, j := range seen {
		kinds[j.Kind] = j
		assert.NotEmpty(t, j.ID)
	}
	assert.Equal(t, 7, kinds[JobPublish].PlacementID)
	assert.Equal(t, 99, kinds[JobUnpublish].PostID)
}
