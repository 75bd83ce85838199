// queue is a serial dispatch queue: all submitted functions run
// one after another on a single goroutine, in submission order.
// Submitting never blocks, so queued functions may submit more work.
package queue

import (
	"context"
	"errors"
	"sync"

	"github.com/SyntropyNet/nwswitch/pkg/slock"
)

var ErrRunning = errors.New("queue already running")

type Queue struct {
	name string

	mu      sync.Mutex
	pending []func()
	stopped bool
	wake    chan struct{}

	done chan struct{}
	lock slock.AtomicServiceLock
}

func New(name string) *Queue {
	return &Queue{
		name: name,
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

func (q *Queue) Name() string {
	return q.name
}

// Async schedules fn and returns at once.
// Returns false (and drops fn) once the queue has stopped.
func (q *Queue) Async(fn func()) bool {
	q.mu.Lock()
	if q.stopped {
		q.mu.Unlock()
		return false
	}
	q.pending = append(q.pending, fn)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
	return true
}

// Sync schedules fn and waits for its completion.
// Must not be called from the queue itself.
func (q *Queue) Sync(fn func()) bool {
	finished := make(chan struct{})
	if !q.Async(func() {
		defer close(finished)
		fn()
	}) {
		return false
	}

	select {
	case <-finished:
		return true
	case <-q.done:
		return false
	}
}

// Run executes scheduled functions until ctx is done.
// A queue can be run only once.
func (q *Queue) Run(ctx context.Context) error {
	if !q.lock.TryLock() {
		return ErrRunning
	}
	defer q.stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-q.wake:
		}

		for {
			fn := q.next()
			if fn == nil {
				break
			}
			fn()
			if ctx.Err() != nil {
				return nil
			}
		}
	}
}

func (q *Queue) next() func() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		return nil
	}
	fn := q.pending[0]
	q.pending[0] = nil
	q.pending = q.pending[1:]
	return fn
}

func (q *Queue) stop() {
	q.mu.Lock()
	q.stopped = true
	q.pending = nil
	q.mu.Unlock()
	close(q.done)
}

// Stopped is closed when Run returns
func (q *Queue) Stopped() <-chan struct{} {
	return q.done
}
