package netpath

import (
	"context"
	"errors"
	"net"
	"sort"

	"github.com/SyntropyNet/nwswitch/internal/logger"
	"github.com/vishvananda/netlink"
	"golang.org/x/sys/unix"
)

const pkgName = "NetPath. "

var ErrSubscriptionClosed = errors.New("netlink subscription closed")

type linkInfo struct {
	name     string
	index    int
	linkType string
	encap    string
	devtype  string
	wireless bool
	up       bool
	hasAddr  bool

	// carries the preferred IPv4 default route
	defaultRoute bool
}

// An interface is available when it is up, carries traffic and has
// at least one global unicast address.
// Default route interface goes first, so First(Any) picks it.
func buildSnapshot(links []linkInfo) Snapshot {
	snap := Snapshot{}
	sort.SliceStable(links, func(i, j int) bool {
		return links[i].defaultRoute && !links[j].defaultRoute
	})
	for _, l := range links {
		if !l.up || !l.hasAddr {
			continue
		}
		ifType := Classify(l.name, l.linkType, l.encap, l.devtype, l.wireless)
		if ifType == Loopback {
			continue
		}
		snap.Interfaces = append(snap.Interfaces, Interface{
			Name:  l.name,
			Index: l.index,
			Type:  ifType,
		})
	}
	return snap
}

func linkIsUp(attrs *netlink.LinkAttrs) bool {
	if attrs.Flags&net.FlagUp == 0 {
		return false
	}
	switch attrs.OperState {
	case netlink.OperUp:
		return true
	case netlink.OperUnknown:
		// tun and some point-to-point drivers never report operstate
		return attrs.RawFlags&unix.IFF_RUNNING != 0
	default:
		return false
	}
}

func hasGlobalAddress(link netlink.Link) bool {
	addrs, err := netlink.AddrList(link, netlink.FAMILY_ALL)
	if err != nil {
		return false
	}
	for _, addr := range addrs {
		if addr.IPNet != nil && addr.IP.IsGlobalUnicast() {
			return true
		}
	}
	return false
}

// Current lists kernel interfaces and builds a fresh snapshot
func Current() (Snapshot, error) {
	links, err := netlink.LinkList()
	if err != nil {
		return Snapshot{}, err
	}

	// Snapshot is still usable without default route, just unordered
	defIndex, err := defaultRouteIndex()
	if err != nil {
		logger.Debug().Println(pkgName, err)
	}

	infos := make([]linkInfo, 0, len(links))
	for _, link := range links {
		attrs := link.Attrs()
		infos = append(infos, linkInfo{
			name:     attrs.Name,
			index:    attrs.Index,
			linkType: link.Type(),
			encap:    attrs.EncapType,
			devtype:  devType(attrs.Name),
			wireless: hasWirelessDir(attrs.Name),
			up:       linkIsUp(attrs),
			hasAddr:  hasGlobalAddress(link),

			defaultRoute: attrs.Index == defIndex,
		})
	}

	return buildSnapshot(infos), nil
}

// Watcher emits a new snapshot on every kernel link or address change
type Watcher struct{}

func NewWatcher() *Watcher {
	return &Watcher{}
}

// Current implements Source
func (w *Watcher) Current() (Snapshot, error) {
	return Current()
}

// Watch delivers the initial snapshot and then one snapshot per change event.
// Blocks until ctx is done or subscription fails.
func (w *Watcher) Watch(ctx context.Context, fn func(Snapshot)) error {
	linkCh := make(chan netlink.LinkUpdate)
	addrCh := make(chan netlink.AddrUpdate)
	done := make(chan struct{})
	defer close(done)

	if err := netlink.LinkSubscribe(linkCh, done); err != nil {
		return err
	}
	if err := netlink.AddrSubscribe(addrCh, done); err != nil {
		return err
	}

	emit := func() {
		snap, err := Current()
		if err != nil {
			logger.Warning().Println(pkgName, "interface list", err)
			return
		}
		fn(snap)
	}

	emit()
	for {
		select {
		case <-ctx.Done():
			logger.Debug().Println(pkgName, "stopping watcher")
			return nil
		case _, ok := <-linkCh:
			if !ok {
				return ErrSubscriptionClosed
			}
			emit()
		case _, ok := <-addrCh:
			if !ok {
				return ErrSubscriptionClosed
			}
			emit()
		}
	}
}
