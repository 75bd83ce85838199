package netpath

import (
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/vishvananda/netlink"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		ifname   string
		linkType string
		encap    string
		devtype  string
		wireless bool
		want     InterfaceType
	}{
		{"loopback", "lo", "device", "loopback", "", false, Loopback},
		{"wireless sysfs", "wlp3s0", "device", "ether", "wlan", true, Wireless},
		{"wireless devtype only", "wlan0", "device", "ether", "wlan", false, Wireless},
		{"wireless by name", "wlx001122", "device", "ether", "", false, Wireless},
		{"modem devtype", "usb0", "device", "none", "wwan", false, Cellular},
		{"modem by name", "rmnet_data0", "device", "none", "", false, Cellular},
		{"ethernet", "enp0s31f6", "device", "ether", "", false, Wired},
		{"bridge", "br0", "bridge", "ether", "bridge", false, Other},
		{"veth", "veth12", "veth", "ether", "", false, Other},
		{"wireguard", "wg0", "wireguard", "none", "", false, Other},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.ifname, tt.linkType, tt.encap, tt.devtype, tt.wireless)
			if got != tt.want {
				t.Errorf("Classify got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestDefaultRouteFirst(t *testing.T) {
	links := []linkInfo{
		{name: "eth0", index: 2, linkType: "device", encap: "ether", up: true, hasAddr: true},
		{name: "wwan0", index: 4, linkType: "device", encap: "none", devtype: "wwan", up: true, hasAddr: true, defaultRoute: true},
	}

	got := buildSnapshot(links)
	if iface, ok := got.First(Any); !ok || iface.Name != "wwan0" {
		t.Errorf("First(Any) = %v, %v", iface, ok)
	}
	if got.Len() != 2 {
		t.Errorf("snapshot length %d", got.Len())
	}
}

func TestIsDefaultRoute(t *testing.T) {
	_, dst, _ := net.ParseCIDR("0.0.0.0/0")
	_, lan, _ := net.ParseCIDR("192.168.1.0/24")

	tests := []struct {
		route netlink.Route
		want  bool
	}{
		{netlink.Route{}, true},
		{netlink.Route{Dst: dst}, true},
		{netlink.Route{Dst: lan}, false},
		{netlink.Route{Table: 100}, false},
	}
	for _, tt := range tests {
		if got := isDefaultRoute(tt.route); got != tt.want {
			t.Errorf("isDefaultRoute(%v) = %v, want %v", tt.route.Dst, got, tt.want)
		}
	}
}

func TestBuildSnapshot(t *testing.T) {
	links := []linkInfo{
		{name: "lo", index: 1, linkType: "device", encap: "loopback", up: true, hasAddr: true},
		{name: "eth0", index: 2, linkType: "device", encap: "ether", up: true, hasAddr: true},
		{name: "wlan0", index: 3, linkType: "device", encap: "ether", devtype: "wlan", up: true, hasAddr: false},
		{name: "wwan0", index: 4, linkType: "device", encap: "none", devtype: "wwan", up: false, hasAddr: true},
		{name: "wlan1", index: 5, linkType: "device", encap: "ether", wireless: true, up: true, hasAddr: true},
	}

	want := Snapshot{Interfaces: []Interface{
		{Name: "eth0", Index: 2, Type: Wired},
		{Name: "wlan1", Index: 5, Type: Wireless},
	}}

	got := buildSnapshot(links)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
	}

	if iface, ok := got.First(Wireless); !ok || iface.Name != "wlan1" {
		t.Errorf("First(Wireless) = %v, %v", iface, ok)
	}
	if iface, ok := got.First(Any); !ok || iface.Name != "eth0" {
		t.Errorf("First(Any) = %v, %v", iface, ok)
	}
	if _, ok := got.First(Cellular); ok {
		t.Errorf("unexpected cellular interface")
	}
}

func TestSysfsAttributes(t *testing.T) {
	root := t.TempDir()
	prev := sysClassNet
	sysClassNet = root
	defer func() { sysClassNet = prev }()

	mustWrite := func(name, content string) {
		dir := filepath.Join(root, name)
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(dir, "uevent"), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	mustWrite("wlan0", "DEVTYPE=wlan\nINTERFACE=wlan0\nIFINDEX=3\n")
	mustWrite("eth0", "INTERFACE=eth0\nIFINDEX=2\n")
	if err := os.MkdirAll(filepath.Join(root, "wlan0", "phy80211"), 0755); err != nil {
		t.Fatal(err)
	}

	if got := devType("wlan0"); got != "wlan" {
		t.Errorf("devType(wlan0) = %q", got)
	}
	if got := devType("eth0"); got != "" {
		t.Errorf("devType(eth0) = %q", got)
	}
	if got := devType("missing0"); got != "" {
		t.Errorf("devType(missing0) = %q", got)
	}
	if !hasWirelessDir("wlan0") {
		t.Errorf("wlan0 expected to be wireless")
	}
	if hasWirelessDir("eth0") {
		t.Errorf("eth0 expected not to be wireless")
	}
}

func TestParseInterfaceType(t *testing.T) {
	for name, want := range map[string]InterfaceType{
		"wifi":     Wireless,
		"Wi-Fi":    Wireless,
		"cellular": Cellular,
		"wired":    Wired,
		"any":      Any,
	} {
		got, err := ParseInterfaceType(name)
		if err != nil || got != want {
			t.Errorf("ParseInterfaceType(%q) = %s, %v", name, got, err)
		}
	}

	if _, err := ParseInterfaceType("bluetooth"); err == nil {
		t.Errorf("expected error on unknown interface type")
	}
}
