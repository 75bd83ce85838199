package linkinfo

import (
	"context"
	"net"
)

// IPResolver is implemented by pubip.Resolver
type IPResolver interface {
	PublicIP(ctx context.Context, ifname string) (net.IP, error)
}

// PublicIP reports public address seen by peers of the path.
// Caching is up to the resolver.
type PublicIP struct {
	Resolver IPResolver
}

func (p PublicIP) Lookup(ctx context.Context, ifname string) (string, error) {
	ip, err := p.Resolver.PublicIP(ctx, ifname)
	if err != nil {
		return "", err
	}
	return "| public " + ip.String(), nil
}
