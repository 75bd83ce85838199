// sockopt holds dialer hooks setting socket options before connect
package sockopt

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// Control is the net.Dialer.Control hook
type Control func(network, address string, rc syscall.RawConn) error

// BindToDevice makes traffic of a socket leave through ifname only.
// Empty ifname returns nil, which leaves routing to the kernel.
func BindToDevice(ifname string) Control {
	if ifname == "" {
		return nil
	}
	return func(network, address string, rc syscall.RawConn) error {
		var bindErr error
		err := rc.Control(func(fd uintptr) {
			bindErr = unix.BindToDevice(int(fd), ifname)
		})
		if err != nil {
			return err
		}
		return bindErr
	}
}
