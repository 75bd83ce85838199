package netpath

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// sysfs root. Variable for tests
var sysClassNet = "/sys/class/net"

// devType reads DEVTYPE from interface uevent file (wlan, wwan, bridge, etc.)
func devType(name string) string {
	file, err := os.Open(filepath.Join(sysClassNet, name, "uevent"))
	if err != nil {
		return ""
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if val := strings.TrimPrefix(scanner.Text(), "DEVTYPE="); val != scanner.Text() {
			return strings.TrimSpace(val)
		}
	}
	return ""
}

func hasWirelessDir(name string) bool {
	for _, sub := range []string{"wireless", "phy80211"} {
		if _, err := os.Stat(filepath.Join(sysClassNet, name, sub)); err == nil {
			return true
		}
	}
	return false
}

// Classify guesses interface type from its kernel attributes.
// linkType is netlink link type ("device", "veth", "wireguard", ...),
// encap is link encapsulation ("ether", "loopback", "none", ...),
// devtype is DEVTYPE from sysfs uevent (may be empty).
func Classify(name, linkType, encap, devtype string, wireless bool) InterfaceType {
	switch {
	case encap == "loopback":
		return Loopback
	case wireless || devtype == "wlan":
		return Wireless
	case devtype == "wwan":
		return Cellular
	}

	// Some modem drivers do not set DEVTYPE
	for _, prefix := range []string{"wwan", "rmnet", "ccmni"} {
		if strings.HasPrefix(name, prefix) {
			return Cellular
		}
	}
	if strings.HasPrefix(name, "wl") && devtype == "" {
		return Wireless
	}

	// Plain ethernet devices. Virtual ones (bridge, vlan, veth) have own types
	if linkType == "device" && encap == "ether" && devtype == "" {
		return Wired
	}
	return Other
}
