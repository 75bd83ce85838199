// pubip gets public IP of a network path.
// Ip may be get from several providers (STUN and fallback to webpage currently)
// Also caches IP per interface for some time to reduce requests to servers.
package pubip

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/SyntropyNet/nwswitch/pkg/pubip/stunip"
	"github.com/SyntropyNet/nwswitch/pkg/pubip/webip"
)

type ipProvider int

const (
	Fallback ipProvider = iota
	Stun
	WebIP
)

func (p ipProvider) String() string {
	switch p {
	case Stun:
		return "STUN"
	case WebIP:
		return "WebIP"
	case Fallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// Lookuper is implemented by stunip.Client and webip.Client.
// Empty ifname is the default route.
type Lookuper interface {
	PublicIP(ctx context.Context, ifname string) (net.IP, error)
}

type cachedIP struct {
	ip      net.IP
	updated time.Time
}

type Resolver struct {
	sync.Mutex
	stun     Lookuper
	web      Lookuper
	period   time.Duration
	provider ipProvider
	cache    map[string]cachedIP
	now      func() time.Time
}

// New creates resolver with STUN first and web services as a fallback
func New(stunServers []string, period time.Duration) *Resolver {
	return NewWithProviders(stunip.New(stunServers), webip.New(nil, nil), period)
}

func NewWithProviders(stun, web Lookuper, period time.Duration) *Resolver {
	return &Resolver{
		stun:     stun,
		web:      web,
		period:   period,
		provider: Stun,
		cache:    make(map[string]cachedIP),
		now:      time.Now,
	}
}

// Reset resets IP provider and forces checking
func (r *Resolver) Reset() {
	r.Lock()
	defer r.Unlock()
	r.provider = Stun
	r.cache = make(map[string]cachedIP)
}

func (r *Resolver) Provider() string {
	r.Lock()
	defer r.Unlock()
	return r.provider.String()
}

// PublicIP returns cached address of the path through ifname
// or queries providers when cache is outdated.
// On failure nil IP and error is returned, and next call retries asap.
func (r *Resolver) PublicIP(ctx context.Context, ifname string) (net.IP, error) {
	r.Lock()
	defer r.Unlock()

	if c, ok := r.cache[ifname]; ok && r.now().Sub(c.updated) < r.period {
		return c.ip, nil
	}

	var ip net.IP
	var err error

	// Fallback means we have failed everything last time
	// Lets retry once again
	if r.provider == Fallback {
		r.provider = Stun
	}

	// Try STUN servers first
	if r.provider == Stun {
		ip, err = r.stun.PublicIP(ctx, ifname)
		if err != nil {
			// All STUN servers failed. Some networks block UDP,
			// fallback to Web IP services and don't try stun again.
			r.provider = WebIP
		}
	}

	// Web service is a fallback
	if r.provider == WebIP {
		ip, err = r.web.PublicIP(ctx, ifname)
		if err != nil {
			r.provider = Fallback
		}
	}

	if err != nil {
		// Do not cache, so I will retry asap
		delete(r.cache, ifname)
		return nil, err
	}

	r.cache[ifname] = cachedIP{ip: ip, updated: r.now()}
	return ip, nil
}
