package client

import (
	"context"
	"errors"

	"github.com/SyntropyNet/nwswitch/pkg/nwconn"
	"github.com/google/uuid"
)

var (
	ErrSendFailed    = errors.New("send failed")
	ErrReceiveFailed = errors.New("receive failed")
)

// Connection is a single logical connection to the echo endpoint.
// nwconn.Conn implements it.
type Connection interface {
	ID() uuid.UUID
	State() nwconn.State
	Start(ctx context.Context, dispatch nwconn.Dispatcher, onState func(nwconn.State))
	Send(data []byte, done func(error))
	Receive(min, max int, done nwconn.ReceiveHandler)
	Restart()
	Cancel()
}

// Factory builds a fresh connection. Every call must return a new identity.
type Factory func(address string, params nwconn.Parameters) Connection

// NewTCPConnection is the default Factory
func NewTCPConnection(address string, params nwconn.Parameters) Connection {
	return nwconn.New(address, params)
}
