// Gets public IP address from plain text web services
package webip

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/SyntropyNet/nwswitch/pkg/sockopt"
)

var DefaultURLs = []string{
	"https://ifconfig.me/ip",
	"https://ifconfig.co/ip",
	"https://ident.me",
}

var ErrInvalidAddress = errors.New("invalid IP address")

const requestTimeout = 5 * time.Second

type Client struct {
	urls      []string
	transport http.RoundTripper
	bind      func(ifname string) sockopt.Control
}

// New creates web IP client. A nil transport dials every lookup
// through the requested interface.
func New(urls []string, transport http.RoundTripper) *Client {
	if len(urls) == 0 {
		urls = DefaultURLs
	}
	return &Client{
		urls:      urls,
		transport: transport,
		bind:      sockopt.BindToDevice,
	}
}

// PublicIP asks services one by one and returns the first valid answer.
// Empty ifname uses the default route.
func (c *Client) PublicIP(ctx context.Context, ifname string) (net.IP, error) {
	client := &http.Client{
		Timeout:   requestTimeout,
		Transport: c.transport,
	}
	if c.transport == nil {
		tr := &http.Transport{
			DialContext: (&net.Dialer{
				Timeout: requestTimeout,
				Control: c.bind(ifname),
			}).DialContext,
			TLSHandshakeTimeout: requestTimeout,
			ForceAttemptHTTP2:   true,
		}
		defer tr.CloseIdleConnections()
		client.Transport = tr
	}

	var lastErr error
	for _, url := range c.urls {
		ip, err := query(ctx, client, url)
		if err == nil {
			return ip, nil
		}
		// This provider failed, continue to next
		lastErr = err
	}
	return nil, lastErr
}

func query(ctx context.Context, client *http.Client, url string) (net.IP, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: %s", url, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 256))
	if err != nil {
		return nil, err
	}

	// Some providers return IP address escaped in commas. Trim the newline as well.
	ipStr := strings.Trim(strings.TrimSpace(string(body)), "\"")
	ip := net.ParseIP(ipStr)
	if ip == nil {
		return nil, fmt.Errorf("%s: %w %q", url, ErrInvalidAddress, ipStr)
	}

	return ip, nil
}
