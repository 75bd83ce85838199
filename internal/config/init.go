package config

import (
	"os"

	"github.com/SyntropyNet/nwswitch/internal/env"
	"github.com/SyntropyNet/nwswitch/internal/logger"
	"github.com/SyntropyNet/nwswitch/pkg/netpath"
	"github.com/SyntropyNet/nwswitch/pkg/pubip/stunip"
)

const maxPort = 65535

func Init() {
	var tmpval uint

	initString(&cache.echoHost, "NWSWITCH_HOST", env.DefaultEchoHost)
	initUint(&cache.echoPort, "NWSWITCH_PORT", env.DefaultEchoPort)
	if cache.echoPort == 0 || cache.echoPort > maxPort {
		cache.echoPort = env.DefaultEchoPort
	}

	initDuration(&cache.times.echoInterval, "NWSWITCH_ECHO_INTERVAL", env.DefaultEchoInterval)
	initDuration(&cache.times.dropTime, "NWSWITCH_DROP_TIME", env.DefaultDropTime)

	initUint(&cache.logBufferSize, "NWSWITCH_LOG_BUFFER", env.DefaultLogBufferSize)
	if cache.logBufferSize < 1 {
		cache.logBufferSize = env.DefaultLogBufferSize
	}

	cache.debugLevel = logger.ParseLevel(os.Getenv("NWSWITCH_LOG_LEVEL"))
	initString(&cache.logFile, "NWSWITCH_LOG_FILE", "")

	initInstances()
	initList(&cache.stunServers, "NWSWITCH_STUN_SERVERS", stunip.DefaultServers)

	initUint(&tmpval, "NWSWITCH_EXPORTER_PORT", 0)
	if tmpval <= maxPort {
		cache.exporterPort = uint16(tmpval)
	}
	initUint(&tmpval, "NWSWITCH_STATUS_PORT", 0)
	if tmpval <= maxPort {
		cache.statusPort = uint16(tmpval)
	}
}

func Close() {
	// Anything needed to be closed or destroyed at the end of program, goes here
}

func initInstances() {
	var names []string
	initList(&names, "NWSWITCH_INSTANCES", []string{"wifi", "wired", "any"})

	cache.instances = nil
	seen := make(map[netpath.InterfaceType]bool)
	for _, name := range names {
		ifType, err := netpath.ParseInterfaceType(name)
		if err != nil {
			logger.Warning().Println(pkgName, "ignoring instance", err)
			continue
		}
		// One instance per constraint
		if seen[ifType] {
			continue
		}
		seen[ifType] = true
		cache.instances = append(cache.instances, ifType)
	}

	if len(cache.instances) == 0 {
		cache.instances = []netpath.InterfaceType{netpath.Any}
	}
}
