package netpath

import "context"

// Source is a path snapshot provider
type Source interface {
	// Current returns most recent snapshot
	Current() (Snapshot, error)
	// Watch calls fn on every change until ctx is done
	Watch(ctx context.Context, fn func(Snapshot)) error
}
