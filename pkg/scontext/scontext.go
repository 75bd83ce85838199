// scontext is a restartable child context.
// Every Start creates a fresh cancellable child of the parent context,
// Stop cancels it. Safe for concurrent use.
package scontext

import (
	"context"
	"errors"
	"sync"
)

var (
	ErrRunning       = errors.New("already running")
	ErrStopped       = errors.New("not running")
	ErrParentStopped = errors.New("parent context stopped")
)

type StartStopContext struct {
	mu     sync.Mutex
	parent context.Context
	ctx    context.Context
	cancel context.CancelFunc
}

func New(parent context.Context) *StartStopContext {
	return &StartStopContext{parent: parent}
}

// Context returns the running child context, or parent if not started
func (sc *StartStopContext) Context() context.Context {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.cancel == nil {
		return sc.parent
	}
	return sc.ctx
}

// Start creates a new child context.
// Fails if previous one was not stopped or parent is done.
func (sc *StartStopContext) Start() (context.Context, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.cancel != nil {
		return nil, ErrRunning
	}
	if sc.parent.Err() != nil {
		return nil, ErrParentStopped
	}

	sc.ctx, sc.cancel = context.WithCancel(sc.parent)
	return sc.ctx, nil
}

// Stop cancels the child context
func (sc *StartStopContext) Stop() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.cancel == nil {
		return ErrStopped
	}
	sc.cancel()
	sc.cancel = nil
	return nil
}

func (sc *StartStopContext) Running() bool {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.cancel != nil
}
