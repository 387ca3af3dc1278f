// Package listener implements a set of bound listening sockets, each
// tagged with a protocol variant, that accept() turns into client
// sockets with TCP_NODELAY already applied.
package listener

import (
	"fmt"
	"net"

	"github.com/hashicorp/go-multierror"
)

// Protocol tags a listening endpoint's variant. The core only defines
// HTTP; the type is kept open for embedders that add their own (e.g. an
// embedder-side TLS front end) without this package needing to know.
type Protocol string

// ProtocolHTTP is the only variant this package defines.
const ProtocolHTTP Protocol = "http"

// Endpoint is one configured listen address plus its protocol tag.
type Endpoint struct {
	Address  string
	Protocol Protocol
}

// Accepted is one accepted client connection together with the listener
// metadata it arrived through.
type Accepted struct {
	Conn     net.Conn
	Protocol Protocol
}

// boundListener pairs a live net.Listener with the protocol it was bound
// under.
type boundListener struct {
	ln       net.Listener
	protocol Protocol
}

// Set is an ordered collection of bound listening sockets, shared
// read-only across every worker: each worker independently calls Accept
// on every listener in the set.
type Set struct {
	listeners []boundListener
}

// Bind opens one listening socket per endpoint. If any bind fails, every
// socket already opened is closed and the aggregated errors (one per
// failed endpoint) are returned together, so an operator sees every bad
// address in one report instead of fixing them one at a time.
func Bind(endpoints []Endpoint) (*Set, error) {
	set := &Set{}
	var bindErrs *multierror.Error

	for _, ep := range endpoints {
		ln, err := net.Listen("tcp", ep.Address)
		if err != nil {
			bindErrs = multierror.Append(bindErrs, fmt.Errorf("listen %s: %w", ep.Address, err))
			continue
		}
		set.listeners = append(set.listeners, boundListener{ln: ln, protocol: ep.Protocol})
	}

	if bindErrs.ErrorOrNil() != nil {
		set.Close()
		return nil, bindErrs.ErrorOrNil()
	}
	return set, nil
}

// Addresses returns the bound address of every listener in the set, in
// bind order — used for the App's OnStart notification.
func (s *Set) Addresses() []string {
	addrs := make([]string, len(s.listeners))
	for i, l := range s.listeners {
		addrs[i] = l.ln.Addr().String()
	}
	return addrs
}

// Len returns the number of bound listeners.
func (s *Set) Len() int { return len(s.listeners) }

// Accept blocks on the listener at index i until a client connects, or
// the listener errors (e.g. because Close was called). The returned
// connection already has TCP_NODELAY set.
func (s *Set) Accept(i int) (Accepted, error) {
	l := s.listeners[i]
	c, err := l.ln.Accept()
	if err != nil {
		return Accepted{}, err
	}
	if tc, ok := c.(*net.TCPConn); ok {
		tc.SetNoDelay(true)
	}
	return Accepted{Conn: c, Protocol: l.protocol}, nil
}

// Close closes every listener in the set. Errors are aggregated, not
// stopped-at-first, so a partial shutdown still attempts every socket.
func (s *Set) Close() error {
	var closeErrs *multierror.Error
	for _, l := range s.listeners {
		if err := l.ln.Close(); err != nil {
			closeErrs = multierror.Append(closeErrs, err)
		}
	}
	return closeErrs.ErrorOrNil()
}
