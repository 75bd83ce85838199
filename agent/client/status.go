package client

import (
	"sync/atomic"

	"github.com/SyntropyNet/nwswitch/pkg/nwconn"
)

// Status is what the presentation layer shows for an instance
type Status struct {
	Name       string
	Constraint string
	Label      string
	State      nwconn.Kind
	LastError  string
}

type counters struct {
	sent       atomic.Uint64
	echoes     atomic.Uint64
	sendErrors atomic.Uint64
	restarts   atomic.Uint64
	cancels    atomic.Uint64
	reconnects atomic.Uint64
}

// Stats are counters since instance start
type Stats struct {
	Sent        uint64
	Echoes      uint64
	SendErrors  uint64
	Restarts    uint64
	Cancels     uint64
	Reconnects  uint64
	PathChanges uint64
	PathUpdates uint64
}

func (c *counters) snapshot() Stats {
	return Stats{
		Sent:       c.sent.Load(),
		Echoes:     c.echoes.Load(),
		SendErrors: c.sendErrors.Load(),
		Restarts:   c.restarts.Load(),
		Cancels:    c.cancels.Load(),
		Reconnects: c.reconnects.Load(),
	}
}
