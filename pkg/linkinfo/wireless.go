package linkinfo

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
)

const procNetWireless = "/proc/net/wireless"

// Wireless reports link quality and signal level of a wireless interface.
// Empty ifname picks the first wireless interface.
type Wireless struct {
	// Path of the wireless statistics file. Empty means /proc/net/wireless.
	Path string
}

type wirelessStats struct {
	ifname string
	link   float64
	level  float64
}

func (w Wireless) Lookup(ctx context.Context, ifname string) (string, error) {
	path := w.Path
	if path == "" {
		path = procNetWireless
	}

	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	stats, err := parseWireless(bufio.NewScanner(f), ifname)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("| %s: link %s, signal %s dBm", stats.ifname,
		strconv.FormatFloat(stats.link, 'f', -1, 64),
		strconv.FormatFloat(stats.level, 'f', -1, 64)), nil
}

// parseWireless parses /proc/net/wireless content:
//
//	Inter-| sta-|   Quality        |   Discarded packets               | Missed | WE
//	 face | tus | link level noise |  nwid  crypt   frag  retry   misc | beacon | 22
//	 wlan0: 0000   54.  -56.  -256        0      0      0      0    123        0
func parseWireless(sc *bufio.Scanner, ifname string) (wirelessStats, error) {
	line := 0
	for sc.Scan() {
		line++
		if line <= 2 {
			// headers
			continue
		}

		fields := strings.Fields(sc.Text())
		if len(fields) < 5 {
			continue
		}

		name := strings.TrimSuffix(fields[0], ":")
		if ifname != "" && name != ifname {
			continue
		}

		link, err := parseStat(fields[2])
		if err != nil {
			return wirelessStats{}, fmt.Errorf("%s link quality: %w", name, err)
		}
		level, err := parseStat(fields[3])
		if err != nil {
			return wirelessStats{}, fmt.Errorf("%s signal level: %w", name, err)
		}

		return wirelessStats{ifname: name, link: link, level: level}, nil
	}

	if err := sc.Err(); err != nil {
		return wirelessStats{}, err
	}
	return wirelessStats{}, ErrNoInfo
}

// Kernel marks updated values with a trailing dot
func parseStat(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimRight(s, ".*"), 64)
}
