package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestSerialOrder(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	q := New("test")
	stopped := make(chan error)
	go func() { stopped <- q.Run(ctx) }()

	var got []int
	for i := 0; i < 100; i++ {
		i := i
		require.True(t, q.Async(func() { got = append(got, i) }))
	}
	require.True(t, q.Sync(func() {}))

	require.Len(t, got, 100)
	for i, v := range got {
		assert.Equal(t, i, v)
	}

	cancel()
	require.NoError(t, <-stopped)
}

func TestNoOverlap(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	q := New("test")
	go q.Run(ctx)

	var mu sync.Mutex
	active := 0
	maxActive := 0

	wg := sync.WaitGroup{}
	for p := 0; p < 4; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				q.Async(func() {
					mu.Lock()
					active++
					if active > maxActive {
						maxActive = active
					}
					mu.Unlock()

					time.Sleep(100 * time.Microsecond)

					mu.Lock()
					active--
					mu.Unlock()
				})
			}
		}()
	}
	wg.Wait()
	q.Sync(func() {})

	assert.Equal(t, 1, maxActive)

	cancel()
	<-q.Stopped()
}

func TestStoppedQueue(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	q := New("test")
	go q.Run(ctx)
	cancel()
	<-q.Stopped()

	assert.False(t, q.Async(func() { t.Error("must not run") }))
	assert.False(t, q.Sync(func() { t.Error("must not run") }))
	assert.ErrorIs(t, q.Run(context.Background()), ErrRunning)
}

func TestReenqueueFromQueue(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	q := New("test")
	go q.Run(ctx)
	defer func() {
		cancel()
		<-q.Stopped()
	}()

	// a backlog is waiting while the running task schedules more work
	release := make(chan struct{})
	require.True(t, q.Async(func() { <-release }))
	for i := 0; i < 200; i++ {
		require.True(t, q.Async(func() {}))
	}

	ran := 0
	finished := make(chan struct{})
	require.True(t, q.Async(func() {
		for i := 0; i < 200; i++ {
			q.Async(func() { ran++ })
		}
		q.Async(func() { close(finished) })
	}))
	close(release)

	select {
	case <-finished:
	case <-time.After(3 * time.Second):
		t.Fatal("queue is stuck")
	}
	assert.Equal(t, 200, ran)
}
