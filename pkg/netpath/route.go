package netpath

import (
	"errors"

	"github.com/vishvananda/netlink"
	"golang.org/x/sys/unix"
)

var ErrNoDefaultRoute = errors.New("default route not found")

// defaultRouteIndex returns link index of the IPv4 default route
// with the lowest metric
func defaultRouteIndex() (int, error) {
	routes, err := netlink.RouteList(nil, unix.AF_INET)
	if err != nil {
		return 0, err
	}

	var defaultRoute *netlink.Route
	for idx, r := range routes {
		if !isDefaultRoute(r) {
			continue
		}
		if defaultRoute == nil || defaultRoute.Priority > r.Priority {
			defaultRoute = &routes[idx]
		}
	}

	if defaultRoute == nil {
		return 0, ErrNoDefaultRoute
	}
	return defaultRoute.LinkIndex, nil
}

// isDefaultRoute returns true for 0.0.0.0/0 in main table
func isDefaultRoute(r netlink.Route) bool {
	if r.Table != 0 && r.Table != unix.RT_TABLE_MAIN {
		return false
	}
	if r.Dst == nil {
		return true
	}
	ones, _ := r.Dst.Mask.Size()
	return ones == 0 && r.Dst.IP.IsUnspecified()
}
