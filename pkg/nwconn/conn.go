// nwconn is a TCP connection with explicit lifecycle states.
// Connection reports its state changes, send and receive completions
// asynchronously on a caller provided serial dispatcher.
// Recovery is driven by the owner: Restart() a Waiting connection,
// Cancel() a Failed one and create a new Conn.
package nwconn

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"syscall"
	"time"

	"github.com/SyntropyNet/nwswitch/internal/logger"
	"github.com/SyntropyNet/nwswitch/pkg/netpath"
	"github.com/SyntropyNet/nwswitch/pkg/scontext"
	"github.com/google/uuid"
	"golang.org/x/sys/unix"
)

const (
	pkgName = "NWConn. "

	defaultDialTimeout  = 10 * time.Second
	restartBackoffBase  = 250 * time.Millisecond
	restartBackoffLimit = 8 * time.Second
)

// Dispatcher runs functions serially and must not block the caller.
// queue.Queue implements it.
type Dispatcher interface {
	Async(fn func()) bool
}

// InterfaceSource provides current local interfaces. Used to find a device
// to bind to when connection requires specific interface type.
type InterfaceSource interface {
	Current() (netpath.Snapshot, error)
}

// Parameters are fixed for the lifetime of a connection
type Parameters struct {
	// Bind connection to an interface of this type. netpath.Any - no constraint.
	RequiredInterface netpath.InterfaceType
	// Drop detection time. Applied as TCP_USER_TIMEOUT and keepalive period.
	DropTime time.Duration
	// Dial attempt timeout
	DialTimeout time.Duration
	// Must be set when RequiredInterface is not netpath.Any
	Interfaces InterfaceSource
}

// ReceiveHandler is called once per Receive() call
type ReceiveHandler func(data []byte, isComplete bool, err error)

type receiveRequest struct {
	min, max int
	done     ReceiveHandler
}

type Conn struct {
	id      uuid.UUID
	address string
	params  Parameters

	dispatch Dispatcher
	onState  func(State)

	mu       sync.Mutex
	state    State
	started  bool
	sock     net.Conn
	attempt  *scontext.StartStopContext
	recv     *receiveRequest
	reading  bool
	restarts int
	pending  []func()

	writeMu sync.Mutex
}

// New creates connection in Connecting state. Nothing happens until Start().
func New(address string, params Parameters) *Conn {
	if params.DialTimeout <= 0 {
		params.DialTimeout = defaultDialTimeout
	}
	return &Conn{
		id:      uuid.New(),
		address: address,
		params:  params,
		state:   Connecting{},
	}
}

// ID identifies the connection. Restart keeps it, new connection gets a fresh one.
func (c *Conn) ID() uuid.UUID {
	return c.id
}

// State returns current connection state
func (c *Conn) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Start begins connecting. State changes are reported via onState on dispatcher.
// ctx bounds the whole connection lifetime.
func (c *Conn) Start(ctx context.Context, dispatch Dispatcher, onState func(State)) {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return
	}
	c.started = true
	c.dispatch = dispatch
	c.onState = onState
	c.attempt = scontext.New(ctx)
	c.dialLocked(0)
	c.unlockAndFlush()
}

// Send writes data. done is called on dispatcher with write result.
func (c *Conn) Send(data []byte, done func(error)) {
	c.mu.Lock()
	sock := c.sock
	if _, ok := c.state.(Ready); !ok || sock == nil {
		c.queueLocked(func() { done(ErrNotReady) })
		c.unlockAndFlush()
		return
	}
	c.mu.Unlock()

	go func() {
		c.writeMu.Lock()
		_, err := sock.Write(data)
		c.writeMu.Unlock()

		c.mu.Lock()
		if err != nil {
			c.sockErrorLocked(sock, err)
		}
		c.queueLocked(func() { done(err) })
		c.unlockAndFlush()
	}()
}

// Receive arms a single read of at least min and at most max bytes.
// done is called once on dispatcher. Call Receive again to continue receiving.
// A pending receive survives Restart().
func (c *Conn) Receive(min, max int, done ReceiveHandler) {
	if min < 1 {
		min = 1
	}
	if max < min {
		max = min
	}

	c.mu.Lock()
	switch {
	case c.recv != nil:
		c.queueLocked(func() { done(nil, false, ErrReceivePending) })
	case c.state.Kind() == KindCancelled:
		c.queueLocked(func() { done(nil, true, ErrCancelled) })
	default:
		c.recv = &receiveRequest{min: min, max: max, done: done}
		c.readLocked()
	}
	c.unlockAndFlush()
}

// Restart retries a Waiting connection. Identity and parameters are preserved.
// Consecutive restarts are delayed with exponential backoff.
func (c *Conn) Restart() {
	c.mu.Lock()
	defer c.unlockAndFlush()

	if c.state.Kind() != KindWaiting || !c.started {
		return
	}

	c.closeSockLocked()
	c.attempt.Stop()
	c.setStateLocked(Connecting{})

	delay := time.Duration(0)
	if c.restarts > 0 {
		delay = restartBackoffBase << (c.restarts - 1)
		if delay > restartBackoffLimit || delay <= 0 {
			delay = restartBackoffLimit
		}
	}
	c.restarts++
	c.dialLocked(delay)
}

// Cancel closes connection for good. Pending receive is dropped.
func (c *Conn) Cancel() {
	c.mu.Lock()
	defer c.unlockAndFlush()

	if c.state.Kind() == KindCancelled {
		return
	}

	c.closeSockLocked()
	if c.started {
		c.attempt.Stop()
	}
	c.recv = nil
	c.setStateLocked(Cancelled{})
}

func (c *Conn) queueLocked(fn func()) {
	c.pending = append(c.pending, fn)
}

// Notifications are dispatched outside of the lock,
// a dispatcher without a queue runs them right away
func (c *Conn) unlockAndFlush() {
	pending := c.pending
	c.pending = nil
	dispatch := c.dispatch
	c.mu.Unlock()

	for _, fn := range pending {
		if dispatch == nil {
			fn()
			continue
		}
		dispatch.Async(fn)
	}
}

func (c *Conn) setStateLocked(newState State) {
	if !CanTransition(c.state, newState) {
		logger.Debug().Println(pkgName, c.id, "ignoring transition", c.state, "->", newState)
		return
	}

	logger.Debug().Println(pkgName, c.id, c.state, "->", newState)
	c.state = newState
	if _, ok := newState.(Ready); ok {
		c.restarts = 0
	}

	if c.onState != nil {
		onState := c.onState
		c.queueLocked(func() { onState(newState) })
	}
}

func (c *Conn) closeSockLocked() {
	if c.sock != nil {
		c.sock.Close()
		c.sock = nil
	}
}

// sockErrorLocked handles a read or write error of an established socket
func (c *Conn) sockErrorLocked(sock net.Conn, err error) {
	if sock != c.sock {
		// stale socket, already replaced or closed by us
		return
	}
	c.closeSockLocked()

	if IsPathError(err) {
		c.setStateLocked(Waiting{Err: err})
	} else {
		c.setStateLocked(Failed{Err: err})
	}
}

func (c *Conn) dialLocked(delay time.Duration) {
	ctx, err := c.attempt.Start()
	if err != nil {
		// parent context is done, nothing to dial anymore
		c.setStateLocked(Failed{Err: err})
		return
	}

	go func() {
		if delay > 0 {
			t := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				t.Stop()
				return
			case <-t.C:
			}
		}

		sock, err := c.dial(ctx)

		c.mu.Lock()
		defer c.unlockAndFlush()

		if ctx.Err() != nil {
			// Restarted or cancelled while dialing
			if sock != nil {
				sock.Close()
			}
			return
		}

		if err != nil {
			if IsTransient(err) {
				c.setStateLocked(Waiting{Err: err})
			} else {
				c.setStateLocked(Failed{Err: err})
			}
			return
		}

		c.sock = sock
		c.setStateLocked(Ready{})
		c.readLocked()
	}()
}

func (c *Conn) dial(ctx context.Context) (net.Conn, error) {
	var ifname string
	if c.params.RequiredInterface != netpath.Any {
		if c.params.Interfaces == nil {
			return nil, ErrNoInterface
		}
		snap, err := c.params.Interfaces.Current()
		if err != nil {
			return nil, err
		}
		iface, ok := snap.First(c.params.RequiredInterface)
		if !ok {
			return nil, ErrNoInterface
		}
		ifname = iface.Name
	}

	dialer := net.Dialer{
		Timeout:   c.params.DialTimeout,
		KeepAlive: c.params.DropTime,
		Control:   socketControl(ifname, c.params.DropTime),
	}
	return dialer.DialContext(ctx, "tcp", c.address)
}

// socketControl applies drop time and interface binding to a socket before connect
func socketControl(ifname string, dropTime time.Duration) func(string, string, syscall.RawConn) error {
	return func(network, address string, rc syscall.RawConn) error {
		var sockErr error
		err := rc.Control(func(fd uintptr) {
			if dropTime > 0 {
				sockErr = unix.SetsockoptInt(int(fd), unix.IPPROTO_TCP, unix.TCP_USER_TIMEOUT,
					int(dropTime/time.Millisecond))
				if sockErr != nil {
					return
				}
			}
			if ifname != "" {
				sockErr = unix.BindToDevice(int(fd), ifname)
			}
		})
		if err != nil {
			return err
		}
		return sockErr
	}
}

// readLocked starts a socket read if receive was requested and connection is ready
func (c *Conn) readLocked() {
	if c.recv == nil || c.reading || c.sock == nil {
		return
	}
	if _, ok := c.state.(Ready); !ok {
		return
	}

	c.reading = true
	sock := c.sock
	req := c.recv

	go func() {
		buf := make([]byte, req.max)
		n, err := io.ReadAtLeast(sock, buf, req.min)
		c.readDone(sock, req, buf[:n], err)
	}()
}

func (c *Conn) readDone(sock net.Conn, req *receiveRequest, data []byte, err error) {
	c.mu.Lock()
	defer c.unlockAndFlush()

	c.reading = false
	if c.recv != req {
		// Cancelled meanwhile
		return
	}

	if err != nil && sock != c.sock {
		// Socket was replaced by restart. Keep receive armed for the new one.
		c.readLocked()
		return
	}

	switch {
	case err == nil:
		c.recv = nil
		c.queueLocked(func() { req.done(data, false, nil) })

	case errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF):
		c.recv = nil
		c.queueLocked(func() { req.done(data, true, nil) })
		c.closeSockLocked()
		c.setStateLocked(Failed{Err: ErrPeerClosed})

	case IsPathError(err):
		// Receive stays armed and resumes once restarted connection is ready
		c.sockErrorLocked(sock, err)

	default:
		c.recv = nil
		c.queueLocked(func() { req.done(data, false, err) })
		c.sockErrorLocked(sock, err)
	}
}
