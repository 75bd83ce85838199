// slock - a simple, yet effective way for locking
package slock

import "sync/atomic"

// ServiceLocker is minimalistic service locking interface
type ServiceLocker interface {
	TryLock() bool
	TryUnlock() bool
	Running() bool
}

// AtomicServiceLock prevents a service from being started twice
// or stopped when not running. Zero value is unlocked.
type AtomicServiceLock struct {
	running atomic.Bool
}

func (sl *AtomicServiceLock) TryLock() bool {
	return sl.running.CompareAndSwap(false, true)
}

func (sl *AtomicServiceLock) TryUnlock() bool {
	return sl.running.CompareAndSwap(true, false)
}

func (sl *AtomicServiceLock) Running() bool {
	return sl.running.Load()
}
