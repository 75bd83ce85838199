// pathmon derives a human readable label of the interface carrying traffic.
// Unconstrained monitor follows path changes, constrained one keeps
// the label it was created with.
package pathmon

import (
	"context"
	"sync"
	"time"

	"github.com/SyntropyNet/nwswitch/internal/logger"
	"github.com/SyntropyNet/nwswitch/pkg/netpath"
	"github.com/google/go-cmp/cmp"
)

const (
	pkgName = "PathMonitor. "

	LabelWireless = "On Wi-Fi"
	LabelCellular = "On cellular"
	// constrained cellular instance starts with a capitalized label
	LabelCellularInitial = "On Cellular"
	LabelWired           = "On wired Ethernet"
	LabelOther           = "On something else"
	LabelAny             = "On one of them"

	resubscribeDelay = 5 * time.Second
)

// Dispatcher runs functions serially. queue.Queue implements it.
type Dispatcher interface {
	Async(fn func()) bool
}

// InitialLabel is the label a monitor starts with
func InitialLabel(constraint netpath.InterfaceType) string {
	switch constraint {
	case netpath.Any:
		return LabelAny
	case netpath.Cellular:
		return LabelCellularInitial
	default:
		return pathLabel(constraint)
	}
}

func pathLabel(t netpath.InterfaceType) string {
	switch t {
	case netpath.Wireless:
		return LabelWireless
	case netpath.Cellular:
		return LabelCellular
	case netpath.Wired:
		return LabelWired
	default:
		return LabelOther
	}
}

type Monitor struct {
	constraint netpath.InterfaceType
	source     netpath.Source

	mu      sync.RWMutex
	label   string
	last    *netpath.Snapshot
	updates uint64
	changes uint64
}

func New(constraint netpath.InterfaceType, source netpath.Source) *Monitor {
	return &Monitor{
		constraint: constraint,
		source:     source,
		label:      InitialLabel(constraint),
	}
}

func (m *Monitor) Constraint() netpath.InterfaceType {
	return m.constraint
}

// Label returns current label
func (m *Monitor) Label() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.label
}

// Changes returns number of label changes
func (m *Monitor) Changes() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.changes
}

// Updates returns number of processed (not coalesced) snapshots
func (m *Monitor) Updates() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.updates
}

// Update processes a path snapshot. Returns true if label has changed.
// Only an unconstrained monitor with exactly one available interface relabels.
// Zero or several interfaces leave the label as it was.
func (m *Monitor) Update(snap netpath.Snapshot) bool {
	if m.constraint != netpath.Any {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.last != nil && cmp.Equal(*m.last, snap) {
		return false
	}
	m.last = &snap
	m.updates++

	if snap.Len() != 1 {
		return false
	}

	label := pathLabel(snap.Interfaces[0].Type)
	if label == m.label {
		return false
	}

	logger.Debug().Println(pkgName, m.label, "->", label, snap)
	m.label = label
	m.changes++
	return true
}

// Run watches path changes and processes them on dispatcher.
// onChange is called on dispatcher after label change.
// Constrained monitor ignores path events and returns immediately.
// Blocks until ctx is done.
func (m *Monitor) Run(ctx context.Context, dispatch Dispatcher, onChange func(label string)) error {
	if m.constraint != netpath.Any {
		return nil
	}

	handler := func(snap netpath.Snapshot) {
		dispatch.Async(func() {
			if m.Update(snap) && onChange != nil {
				onChange(m.Label())
			}
		})
	}

	for {
		err := m.source.Watch(ctx, handler)
		if ctx.Err() != nil {
			return nil
		}
		logger.Error().Println(pkgName, "path watcher", err, "- resubscribing")

		t := time.NewTimer(resubscribeDelay)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil
		case <-t.C:
		}
	}
}
