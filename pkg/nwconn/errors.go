package nwconn

import (
	"errors"
	"net"

	"golang.org/x/sys/unix"
)

var (
	ErrNotReady       = errors.New("connection is not ready")
	ErrCancelled      = errors.New("connection cancelled")
	ErrNoInterface    = errors.New("no interface of required type available")
	ErrPeerClosed     = errors.New("connection closed by peer")
	ErrReceivePending = errors.New("receive already pending")
)

// Errors, meaning the network path itself is gone (interface down, no route)
var pathErrnos = []error{
	unix.ENETUNREACH,
	unix.EHOSTUNREACH,
	unix.ENETDOWN,
	unix.EHOSTDOWN,
	unix.ENODEV,
	unix.ENONET,
	unix.EADDRNOTAVAIL,
}

// IsPathError reports whether err is caused by unavailable network path.
// Such errors on established connection move it to Waiting.
func IsPathError(err error) bool {
	if errors.Is(err, ErrNoInterface) {
		return true
	}
	for _, errno := range pathErrnos {
		if errors.Is(err, errno) {
			return true
		}
	}
	return false
}

// IsTransient reports whether a dial error is worth retrying on the same
// connection (Waiting) rather than failing it.
func IsTransient(err error) bool {
	if IsPathError(err) {
		return true
	}
	if errors.Is(err, unix.ECONNREFUSED) {
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
