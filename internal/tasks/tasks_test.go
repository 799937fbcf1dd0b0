package tasks

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_RunsSubmittedTasks(t *testing.T) {
	pool := NewPool(2, 16)
	defer pool.Shutdown()

	var count atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		ok := pool.Submit(func(context.Context) error {
			defer wg.Done()
			count.Add(1)
			return nil
		})
		require.True(t, ok)
	}
	wg.Wait()

	assert.Equal(t, int64(10), count.Load())
}

func TestPool_SurvivesPanickingTask(t *testing.T) {
	pool := NewPool(1, 4)
	defer pool.Shutdown()

	done := make(chan struct{})
	require.True(t, pool.Submit(func(context.Context) error {
		panic("boom")
	}))
	require.True(t, pool.Submit(func(context.Context) error {
		close(done)
		return nil
	}))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not survive the panic")
	}
}

func TestPool_ShutdownDrainsQueue(t *testing.T) {
	pool := NewPool(1, 16)

	var count atomic.Int64
	for i := 0; i < 5; i++ {
		require.True(t, pool.Submit(func(context.Context) error {
			count.Add(1)
			return nil
		}))
	}
	pool.Shutdown()

	assert.Equal(t, int64(5), count.Load())
}

func TestPool_RejectsAfterShutdown(t *testing.T) {
	pool := NewPool(1, 4)
	pool.Shutdown()

	assert.False(t, pool.Submit(func(context.Context) error { return nil }))
}

func TestPool_RejectsWhenQueueFull(t *testing.T) {
	pool := NewPool(1, 1)
	defer pool.Shutdown()

	block := make(chan struct{})
	defer close(block)
	require.True(t, pool.Submit(func(context.Context) error {
		<-block
		return nil
	}))

	// wait until the worker picked up the blocking task, then fill the queue
	require.Eventually(t, func() bool {
		return pool.Submit(func(context.Context) error { return nil })
	}, time.Second, 5*time.Millisecond)

	assert.False(t, pool.Submit(func(context.Context) error { return nil }))
}
