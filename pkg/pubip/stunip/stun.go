// stunip gets public IP from public STUN servers
package stunip

import (
	"context"
	"errors"
	"net"
	"sync"

	"github.com/SyntropyNet/nwswitch/pkg/sockopt"
	"github.com/pion/stun"
)

// DefaultServers are well known public STUN servers
var DefaultServers = []string{
	"stun.l.google.com:19302",
	"stun1.l.google.com:19302",
	"stun2.l.google.com:19302",
	"stun.cloudflare.com:3478",
}

var ErrNoServer = errors.New("could not get public ip address")

// Client queries a list of STUN servers.
// If server fails - it tries another one from list.
// When server responds successfully - next time it will be tried first.
type Client struct {
	sync.Mutex
	servers     []string
	lastGoodIdx int
	bind        func(ifname string) sockopt.Control
}

func New(servers []string) *Client {
	if len(servers) == 0 {
		servers = DefaultServers
	}
	return &Client{
		servers: servers,
		bind:    sockopt.BindToDevice,
	}
}

// PublicIP returns address of the path going through ifname.
// Requests are bound to that device, empty ifname uses the default route.
func (c *Client) PublicIP(ctx context.Context, ifname string) (net.IP, error) {
	c.Lock()
	defer c.Unlock()

	var lastErr error
	for i := 0; i < len(c.servers); i++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		ip, err := c.checkServer(ctx, c.servers[c.lastGoodIdx], ifname)
		if err == nil {
			// Return IP address and stay on same server
			return ip, nil
		}

		// Server failed - try next one
		lastErr = err
		c.lastGoodIdx++
		if c.lastGoodIdx >= len(c.servers) {
			c.lastGoodIdx = 0
		}
	}

	if lastErr == nil {
		lastErr = ErrNoServer
	}
	return nil, lastErr
}

func (c *Client) checkServer(ctx context.Context, srv, ifname string) (net.IP, error) {
	var ip net.IP
	var resErr error

	callback := func(res stun.Event) {
		if res.Error != nil {
			resErr = res.Error
			return
		}

		// Decoding XOR-MAPPED-ADDRESS attribute from message.
		var xorAddr stun.XORMappedAddress
		if resErr = xorAddr.GetFrom(res.Message); resErr != nil {
			return
		}
		ip = xorAddr.IP
	}

	// By default we want an IPv4, thus "udp4"
	dialer := net.Dialer{Control: c.bind(ifname)}
	conn, err := dialer.DialContext(ctx, "udp4", srv)
	if err != nil {
		return nil, err
	}

	client, err := stun.NewClient(conn)
	if err != nil {
		conn.Close()
		return nil, err
	}
	defer client.Close()

	// Unblock pending transaction when context is done
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			client.Close()
		case <-stop:
		}
	}()

	// Building binding request with random transaction id.
	message := stun.MustBuild(stun.TransactionID, stun.BindingRequest)
	if err := client.Do(message, callback); err != nil {
		return nil, err
	}
	if resErr != nil {
		return nil, resErr
	}
	if ip == nil {
		return nil, ErrNoServer
	}

	return ip, nil
}
