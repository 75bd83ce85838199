// netpath describes local network paths: which interfaces are available
// and what kind of link (wireless, cellular, wired) each of them is.
package netpath

import (
	"fmt"
	"strings"
)

// InterfaceType is a kind of network link.
// Any is used only as "no constraint" and is never reported for an interface.
type InterfaceType int

const (
	Any InterfaceType = iota
	Wireless
	Cellular
	Wired
	Other
	Loopback
)

func (t InterfaceType) String() string {
	switch t {
	case Any:
		return "any"
	case Wireless:
		return "wifi"
	case Cellular:
		return "cellular"
	case Wired:
		return "wired"
	case Loopback:
		return "loopback"
	default:
		return "other"
	}
}

// ParseInterfaceType accepts names used in configuration
func ParseInterfaceType(name string) (InterfaceType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "any", "":
		return Any, nil
	case "wifi", "wi-fi", "wireless", "wlan":
		return Wireless, nil
	case "cellular", "wwan", "mobile":
		return Cellular, nil
	case "wired", "ethernet", "eth":
		return Wired, nil
	case "other":
		return Other, nil
	default:
		return Any, fmt.Errorf("unknown interface type %q", name)
	}
}

// Interface is one available local interface
type Interface struct {
	Name  string
	Index int
	Type  InterfaceType
}

// Snapshot is a set of currently available interfaces.
// Every new snapshot supersedes the previous one.
type Snapshot struct {
	Interfaces []Interface
}

func (s Snapshot) Len() int {
	return len(s.Interfaces)
}

// First returns the first available interface of requested type.
// Any matches any interface.
func (s Snapshot) First(t InterfaceType) (Interface, bool) {
	for _, iface := range s.Interfaces {
		if t == Any || iface.Type == t {
			return iface, true
		}
	}
	return Interface{}, false
}

func (s Snapshot) String() string {
	names := make([]string, 0, len(s.Interfaces))
	for _, iface := range s.Interfaces {
		names = append(names, iface.Name+"("+iface.Type.String()+")")
	}
	return "[" + strings.Join(names, " ") + "]"
}
