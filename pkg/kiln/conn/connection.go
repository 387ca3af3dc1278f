// Package conn implements the per-connection half-duplex state
// machine that drives one socket through read -> handle -> send,
// looping on keep-alive or terminating on any protocol or I/O error.
package conn

import (
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kilnhttp/kiln/pkg/kiln/app"
	"github.com/kilnhttp/kiln/pkg/kiln/wire"
)

// State is one of the five states a Connection passes through.
type State int32

const (
	StateIdle State = iota
	StateReading
	StateHandling
	StateWriting
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateReading:
		return "reading"
	case StateHandling:
		return "handling"
	case StateWriting:
		return "writing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Limits bundles the per-connection protocol limits: header and
// body size ceilings and the three independent timeout budgets.
type Limits struct {
	MaxHeaderSize     int
	MaxBodySize       int64
	HeaderReadTimeout time.Duration
	BodyReadTimeout   time.Duration
	WriteTimeout      time.Duration
}

// DefaultLimits returns the package defaults.
func DefaultLimits() Limits {
	return Limits{
		MaxHeaderSize:     wire.DefaultMaxHeaderSize,
		MaxBodySize:       wire.DefaultMaxBodySize,
		HeaderReadTimeout: wire.DefaultTimeout,
		BodyReadTimeout:   wire.DefaultTimeout,
		WriteTimeout:      wire.DefaultTimeout,
	}
}

// Connection owns one accepted socket and drives it through the state
// machine until it closes. State is tracked with an
// atomic so a supervisor goroutine can observe it without synchronizing
// with the connection's own goroutine.
type Connection struct {
	netConn net.Conn
	app     app.App
	limits  Limits

	buf    *wire.Buffer
	parser *wire.Parser

	state atomic.Int32

	remoteAddr string
	client     any

	disconnectOnce sync.Once
}

// New wraps netConn with the parsing and framing machinery, ready for
// Serve to drive it. state is the client_state already produced by the
// caller's OnConnect — accepting a connection and deciding whether to
// admit it is the worker pool's job, not this state machine's; by
// the time a Connection exists, admission has already happened.
func New(netConn net.Conn, a app.App, limits Limits, state any) *Connection {
	buf := wire.NewBuffer(netConn, limits.MaxHeaderSize, limits.HeaderReadTimeout)
	return &Connection{
		netConn:    netConn,
		app:        a,
		limits:     limits,
		buf:        buf,
		parser:     wire.NewParser(buf),
		remoteAddr: netConn.RemoteAddr().String(),
		client:     state,
	}
}

// State returns the connection's current state.
func (c *Connection) State() State { return State(c.state.Load()) }

// RemoteAddr returns the peer address captured at construction.
func (c *Connection) RemoteAddr() string { return c.remoteAddr }

// Serve runs the connection to completion: a keep-alive loop of
// read/handle/send cycles, then exactly one OnDisconnect. It returns once
// the connection is fully closed; callers (the worker pool) run it in its
// own goroutine.
func (c *Connection) Serve() {
	defer c.disconnect()

	for {
		if !c.cycle() {
			return
		}
	}
}

// cycle runs one read -> handle -> send iteration. It returns false when
// the connection should close, true to loop for the next request
// (keep-alive).
func (c *Connection) cycle() bool {
	c.state.Store(int32(StateReading))
	c.buf.Reset()

	req, err := c.parser.Parse(wire.Limits{
		MaxBodySize:     c.limits.MaxBodySize,
		BodyReadTimeout: c.limits.BodyReadTimeout,
	})
	if err != nil {
		if errors.Is(err, wire.ErrNoRequest) {
			return false
		}
		if resp := c.app.OnReadError(c.client, err); resp != nil {
			if sendErr := c.send(resp); sendErr != nil {
				c.app.OnSendError(c.client, sendErr)
			}
		}
		return false
	}

	c.state.Store(int32(StateHandling))
	resp := c.app.HandleRequest(c.client, req)

	c.state.Store(int32(StateWriting))
	sendErr := c.send(resp)
	keepAlive := !req.Close
	c.parser.Release(req)

	if sendErr != nil {
		c.app.OnSendError(c.client, sendErr)
		return false
	}
	if !keepAlive {
		return false
	}

	c.state.Store(int32(StateIdle))
	return true
}

func (c *Connection) send(resp *wire.Response) error {
	w := wire.NewWriter(c.netConn, c.netConn, c.limits.WriteTimeout)
	return w.Write(resp)
}

// disconnect closes the socket and invokes OnDisconnect exactly once,
// regardless of which path through cycle led here — the sync.Once is
// what gives "exactly once" its guarantee without every caller having to
// reason about it.
func (c *Connection) disconnect() {
	c.disconnectOnce.Do(func() {
		c.state.Store(int32(StateClosed))
		c.netConn.Close()
		c.app.OnDisconnect(c.client)
	})
}
