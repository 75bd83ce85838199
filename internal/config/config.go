package config

import (
	"time"

	"github.com/SyntropyNet/nwswitch/pkg/netpath"
)

const pkgName = "NWSwitchConfig. "

// This struct is used to cache agent configuration.
// All values are exported shell variables, parsed once in Init()
// and used from here. Nothing is persisted.
type configCache struct {
	echoHost string
	echoPort uint

	times struct {
		echoInterval time.Duration
		dropTime     time.Duration
	}

	logBufferSize uint
	debugLevel    int
	logFile       string

	instances   []netpath.InterfaceType
	stunServers []string

	exporterPort uint16
	statusPort   uint16
}

var cache configCache
