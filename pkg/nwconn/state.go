package nwconn

import "fmt"

// State is a closed set of connection states:
// Connecting, Ready, Waiting, Failed, Cancelled
type State interface {
	Kind() Kind
	String() string
}

type Kind uint32

const (
	KindConnecting Kind = iota
	KindReady
	KindWaiting
	KindFailed
	KindCancelled
	kindCount
)

// Connecting: dialing is in progress
type Connecting struct{}

// Ready: connection is established and can send/receive
type Ready struct{}

// Waiting: a transient condition prevents connection. Recovered by Restart()
type Waiting struct{ Err error }

// Failed: connection is unusable. Recovered by Cancel() and a new connection
type Failed struct{ Err error }

// Cancelled: final state, the connection will never be used again
type Cancelled struct{}

func (Connecting) Kind() Kind { return KindConnecting }
func (Ready) Kind() Kind      { return KindReady }
func (Waiting) Kind() Kind    { return KindWaiting }
func (Failed) Kind() Kind     { return KindFailed }
func (Cancelled) Kind() Kind  { return KindCancelled }

func (Connecting) String() string { return "connecting" }
func (Ready) String() string      { return "ready" }
func (s Waiting) String() string  { return fmt.Sprintf("waiting (%v)", s.Err) }
func (s Failed) String() string   { return fmt.Sprintf("failed (%v)", s.Err) }
func (Cancelled) String() string  { return "cancelled" }

func (k Kind) String() string {
	switch k {
	case KindConnecting:
		return "connecting"
	case KindReady:
		return "ready"
	case KindWaiting:
		return "waiting"
	case KindFailed:
		return "failed"
	case KindCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Kinds lists all state kinds
func Kinds() []Kind {
	return []Kind{KindConnecting, KindReady, KindWaiting, KindFailed, KindCancelled}
}

// transitions[from][to] is true when a state change is allowed
var transitions = [kindCount][kindCount]bool{
	KindConnecting: {KindReady: true, KindWaiting: true, KindFailed: true, KindCancelled: true},
	KindReady:      {KindWaiting: true, KindFailed: true, KindCancelled: true},
	KindWaiting:    {KindConnecting: true, KindFailed: true, KindCancelled: true},
	KindFailed:     {KindCancelled: true},
	KindCancelled:  {},
}

// CanTransition reports whether connection may move from one state to another
func CanTransition(from, to State) bool {
	return transitions[from.Kind()][to.Kind()]
}
