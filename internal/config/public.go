package config

import (
	"net"
	"strconv"
	"time"

	"github.com/SyntropyNet/nwswitch/pkg/netpath"
)

func GetEchoHost() string {
	return cache.echoHost
}

func GetEchoPort() uint {
	return cache.echoPort
}

// GetEchoAddress returns host:port of the remote echo endpoint
func GetEchoAddress() string {
	return net.JoinHostPort(cache.echoHost, strconv.Itoa(int(cache.echoPort)))
}

func EchoInterval() time.Duration {
	return cache.times.echoInterval
}

func DropTime() time.Duration {
	return cache.times.dropTime
}

func LogBufferSize() int {
	return int(cache.logBufferSize)
}

func GetDebugLevel() int {
	return cache.debugLevel
}

func GetLogFile() string {
	return cache.logFile
}

// Instances returns interface constraints, one connection manager per entry.
// netpath.Any stands for unconstrained instance.
func Instances() []netpath.InterfaceType {
	return cache.instances
}

func StunServers() []string {
	return cache.stunServers
}

func MetricsExporterEnabled() bool {
	return cache.exporterPort > 0
}

func MetricsExporterPort() uint16 {
	return cache.exporterPort
}

func StatusServerEnabled() bool {
	return cache.statusPort > 0
}

func StatusServerPort() uint16 {
	return cache.statusPort
}
