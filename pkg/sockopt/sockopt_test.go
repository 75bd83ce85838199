package sockopt

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBindToDevice(t *testing.T) {
	assert.Nil(t, BindToDevice(""))

	// binding needs CAP_NET_RAW for most devices, unknown one fails either way
	dialer := net.Dialer{Control: BindToDevice("nwswitch-none0")}
	conn, err := dialer.Dial("udp4", "127.0.0.1:9")
	if conn != nil {
		conn.Close()
	}
	require.Error(t, err)
}
