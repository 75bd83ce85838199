package common

import "context"

// Service interface describes background running instances.
// Run starts the service and returns. Service stops when ctx is done.
type Service interface {
	Name() string
	Run(ctx context.Context) error
}
