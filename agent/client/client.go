// client is the connection manager: it keeps a heartbeat connection to
// the echo endpoint, recovers it from failures and reports the interface
// label of the path carrying traffic.
// Everything except the status getters runs on the instance serial queue.
package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/SyntropyNet/nwswitch/agent/pathmon"
	"github.com/SyntropyNet/nwswitch/internal/env"
	"github.com/SyntropyNet/nwswitch/internal/logger"
	"github.com/SyntropyNet/nwswitch/pkg/linkinfo"
	"github.com/SyntropyNet/nwswitch/pkg/logbuf"
	"github.com/SyntropyNet/nwswitch/pkg/netpath"
	"github.com/SyntropyNet/nwswitch/pkg/nwconn"
	"github.com/SyntropyNet/nwswitch/pkg/queue"
	"github.com/SyntropyNet/nwswitch/pkg/slock"
	"github.com/SyntropyNet/nwswitch/pkg/state"
	"github.com/google/uuid"
)

const pkgName = "Client. "

var ErrRunning = errors.New("instance already running")

type Config struct {
	Name       string
	Address    string
	Constraint netpath.InterfaceType
	Interval   time.Duration
	DropTime   time.Duration
	// Log sink capacity
	LogSize int
	// Path source for the monitor and interface binding
	Interfaces netpath.Source
	// Optional link info appended to status label
	Info linkinfo.Provider
	// Defaults to NewTCPConnection
	NewConnection Factory
}

type Manager struct {
	name     string
	address  string
	params   nwconn.Parameters
	interval time.Duration
	newConn  Factory
	info     linkinfo.Provider

	queue   *queue.Queue
	monitor *pathmon.Monitor
	sink    *logbuf.Buffer

	// confined to the queue
	ctx              context.Context
	conn             Connection
	reconnectPending bool
	infoBusy         bool
	infoText         string

	mu      sync.RWMutex
	status  string
	lastErr string
	kind    state.StateMachine[nwconn.Kind]
	stats   counters

	lock slock.AtomicServiceLock
	wg   sync.WaitGroup
	done chan struct{}
}

func New(cfg Config) *Manager {
	if cfg.Interval <= 0 {
		cfg.Interval = env.DefaultEchoInterval
	}
	if cfg.DropTime <= 0 {
		cfg.DropTime = env.DefaultDropTime
	}
	if cfg.NewConnection == nil {
		cfg.NewConnection = NewTCPConnection
	}
	if cfg.Name == "" {
		cfg.Name = cfg.Constraint.String()
	}

	m := &Manager{
		name:    cfg.Name,
		address: cfg.Address,
		params: nwconn.Parameters{
			RequiredInterface: cfg.Constraint,
			DropTime:          cfg.DropTime,
			Interfaces:        cfg.Interfaces,
		},
		interval: cfg.Interval,
		newConn:  cfg.NewConnection,
		info:     cfg.Info,
		queue:    queue.New(cfg.Name),
		monitor:  pathmon.New(cfg.Constraint, cfg.Interfaces),
		sink:     logbuf.New(cfg.LogSize),
		ctx:      context.Background(),
		done:     make(chan struct{}),
	}
	m.status = m.monitor.Label()
	m.kind.SetState(nwconn.KindConnecting)

	return m
}

func (m *Manager) Name() string {
	return m.name
}

// Log is the instance log sink
func (m *Manager) Log() *logbuf.Buffer {
	return m.sink
}

func (m *Manager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Status{
		Name:       m.name,
		Constraint: m.params.RequiredInterface.String(),
		Label:      m.status,
		State:      m.kind.GetState(),
		LastError:  m.lastErr,
	}
}

func (m *Manager) Stats() Stats {
	s := m.stats.snapshot()
	s.PathChanges = m.monitor.Changes()
	s.PathUpdates = m.monitor.Updates()
	return s
}

// Done is closed when instance has stopped after Run() context was cancelled
func (m *Manager) Done() <-chan struct{} {
	return m.done
}

// Run starts the instance: serial queue, path monitor, first connection and
// the heartbeat. Returns immediately, everything stops when ctx is done.
func (m *Manager) Run(ctx context.Context) error {
	if !m.lock.TryLock() {
		return ErrRunning
	}
	m.ctx = ctx

	m.queue.Async(m.connect)
	go m.queue.Run(ctx)

	m.wg.Add(2)
	go func() {
		defer m.wg.Done()
		m.monitor.Run(ctx, m.queue, m.onPathChange)
	}()
	go func() {
		defer m.wg.Done()
		m.heartbeat(ctx)
	}()

	go func() {
		<-m.queue.Stopped()
		// queue is not running anymore, so connection is not shared
		if m.conn != nil {
			m.conn.Cancel()
		}
		m.wg.Wait()
		logger.Debug().Println(pkgName, m.name, "stopped")
		close(m.done)
	}()

	return nil
}

// heartbeat ticks on the queue. A slow tick delays the next one, never overlaps it.
func (m *Manager) heartbeat(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	if !m.queue.Sync(m.tick) {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !m.queue.Sync(m.tick) {
				return
			}
		}
	}
}

func (m *Manager) log(format string, args ...interface{}) {
	text := fmt.Sprintf(format, args...)
	m.sink.Append(text)
	logger.Debug().Println(pkgName, m.name, text)
}

func (m *Manager) setError(err error) {
	m.mu.Lock()
	m.lastErr = err.Error()
	m.mu.Unlock()
}

// connect replaces current connection with a fresh one and arms receive
func (m *Manager) connect() {
	conn := m.newConn(m.address, m.params)
	id := conn.ID()
	m.conn = conn
	m.kind.SetState(conn.State().Kind())

	conn.Start(m.ctx, m.queue, func(s nwconn.State) { m.onState(id, s) })
	m.receive(conn)
}

func (m *Manager) current(id uuid.UUID) bool {
	return m.conn != nil && m.conn.ID() == id
}

func (m *Manager) onState(id uuid.UUID, s nwconn.State) {
	if !m.current(id) {
		logger.Debug().Println(pkgName, m.name, "ignoring state of discarded connection", id, s)
		return
	}
	logger.Debug().Println(pkgName, m.name, "connection", id, s)
	m.kind.SetState(s.Kind())
}

func (m *Manager) tick() {
	m.lookupInfo()
	m.updateStatus()

	if m.reconnectPending {
		m.reconnectPending = false
		m.stats.reconnects.Add(1)
		m.connect()
		return
	}

	conn := m.conn
	switch s := conn.State().(type) {
	case nwconn.Ready:
		m.send(conn)

	case nwconn.Waiting:
		m.setError(s.Err)
		m.log("waiting; error: %v; restarting", s.Err)
		m.stats.restarts.Add(1)
		conn.Restart()

	case nwconn.Failed:
		m.setError(s.Err)
		m.log("failed; error: %v; cancelling", s.Err)
		m.stats.cancels.Add(1)
		conn.Cancel()

	case nwconn.Cancelled:
		m.log("connection cancelled, setting up a new one")
		m.reconnectPending = true

	default:
		logger.Debug().Println(pkgName, m.name, "connection state:", s)
	}
}

func (m *Manager) send(conn Connection) {
	id := conn.ID()
	data := []byte(m.monitor.Label() + "\n")

	m.stats.sent.Add(1)
	conn.Send(data, func(err error) {
		if err == nil || !m.current(id) {
			return
		}
		err = fmt.Errorf("%w: %w", ErrSendFailed, err)
		m.stats.sendErrors.Add(1)
		m.setError(err)
		m.log("send error: %v", err)
	})
}

func (m *Manager) receive(conn Connection) {
	id := conn.ID()
	conn.Receive(env.ReceiveMinLength, env.ReceiveMaxLength, func(data []byte, isComplete bool, err error) {
		m.onReceive(id, data, isComplete, err)
	})
}

func (m *Manager) onReceive(id uuid.UUID, data []byte, isComplete bool, err error) {
	if !m.current(id) {
		return
	}

	if len(data) > 0 {
		text := strings.ToValidUTF8(string(data), "\uFFFD")
		text = strings.TrimRight(text, "\r\n")
		m.stats.echoes.Add(1)
		m.log("echo: %s", text)
	}

	if err != nil {
		err = fmt.Errorf("%w: %w", ErrReceiveFailed, err)
		m.setError(err)
		m.log("receive error: %v", err)
		return
	}

	if !isComplete {
		m.receive(m.conn)
	}
}

func (m *Manager) onPathChange(label string) {
	m.log("path: %s", label)
	m.updateStatus()
}

// lookupInfo starts link info lookup unless one is already running.
// Result is applied on the queue, so tick never waits for it.
func (m *Manager) lookupInfo() {
	if m.info == nil || m.infoBusy {
		return
	}
	m.infoBusy = true

	ctx := m.ctx
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()

		lookupCtx, cancel := context.WithTimeout(ctx, m.interval)
		ifname, err := m.boundInterface()
		var text string
		if err == nil {
			text, err = m.info.Lookup(lookupCtx, ifname)
		}
		cancel()

		m.queue.Async(func() {
			m.infoBusy = false
			if err != nil {
				logger.Debug().Println(pkgName, m.name, "link info", err)
				text = ""
			}
			m.infoText = text
			m.updateStatus()
		})
	}()
}

// boundInterface is the device a constrained connection goes through.
// Unconstrained connection follows the default route, so ifname is empty.
func (m *Manager) boundInterface() (string, error) {
	if m.params.RequiredInterface == netpath.Any {
		return "", nil
	}
	if m.params.Interfaces == nil {
		return "", nwconn.ErrNoInterface
	}

	snap, err := m.params.Interfaces.Current()
	if err != nil {
		return "", err
	}
	iface, ok := snap.First(m.params.RequiredInterface)
	if !ok {
		return "", nwconn.ErrNoInterface
	}
	return iface.Name, nil
}

// updateStatus composes status label from path label and link info
func (m *Manager) updateStatus() {
	label := m.monitor.Label()
	if m.infoText != "" {
		label = label + " " + m.infoText
	}

	m.mu.Lock()
	m.status = label
	m.mu.Unlock()
}
