package webip

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/SyntropyNet/nwswitch/pkg/sockopt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebIP(t *testing.T) {
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer broken.Close()

	garbage := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html>not an address</html>")
	}))
	defer garbage.Close()

	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "\"203.0.113.7\"\n")
	}))
	defer good.Close()

	c := New([]string{broken.URL, garbage.URL, good.URL}, nil)
	ip, err := c.PublicIP(context.Background(), "")
	require.NoError(t, err)
	assert.True(t, ip.Equal(net.ParseIP("203.0.113.7")))

	c = New([]string{broken.URL, garbage.URL}, nil)
	_, err = c.PublicIP(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidAddress)
}

func TestDialBoundToInterface(t *testing.T) {
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "203.0.113.9")
	}))
	defer good.Close()

	var bound []string
	c := New([]string{good.URL}, nil)
	c.bind = func(ifname string) sockopt.Control {
		bound = append(bound, ifname)
		return nil
	}

	ip, err := c.PublicIP(context.Background(), "wwan0")
	require.NoError(t, err)
	assert.True(t, ip.Equal(net.ParseIP("203.0.113.9")))
	assert.Equal(t, []string{"wwan0"}, bound)
}
