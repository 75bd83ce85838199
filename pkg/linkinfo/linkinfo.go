// linkinfo provides short human readable details about the current path.
// Lookups are best effort. Callers append the text to a status label.
package linkinfo

import (
	"context"
	"errors"
	"strings"
)

var ErrNoInfo = errors.New("no link info")

// Provider looks up details of the path going through ifname.
// Empty ifname is the default route.
type Provider interface {
	Lookup(ctx context.Context, ifname string) (string, error)
}

// ProviderFunc adapts a function to Provider
type ProviderFunc func(ctx context.Context, ifname string) (string, error)

func (f ProviderFunc) Lookup(ctx context.Context, ifname string) (string, error) {
	return f(ctx, ifname)
}

// Multi joins results of all providers, skipping the failed ones.
// Error is returned only if every provider failed.
type Multi []Provider

func (m Multi) Lookup(ctx context.Context, ifname string) (string, error) {
	var parts []string
	var errs []error

	for _, p := range m {
		text, err := p.Lookup(ctx, ifname)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if text != "" {
			parts = append(parts, text)
		}
	}

	if len(parts) == 0 {
		if len(errs) > 0 {
			return "", errors.Join(errs...)
		}
		return "", ErrNoInfo
	}
	return strings.Join(parts, " "), nil
}
