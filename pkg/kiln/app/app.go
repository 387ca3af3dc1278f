// Package app defines the contract an embedder implements to plug a
// request handler into the connection/worker-pool machinery. The
// interface is intentionally narrow: everything the core does not need
// an opinion about (routing, templating, persistence) stays outside it.
package app

import "github.com/kilnhttp/kiln/pkg/kiln/wire"

// App is the embedder's contract. An App value is shared across every
// worker and every connection for the process lifetime; implementations
// must be safe for concurrent use from multiple goroutines. The core
// makes no locking decisions on the embedder's behalf.
type App interface {
	// OnStart is informational: it reports the addresses the server is
	// about to listen on.
	OnStart(addresses []string)

	// OnConnect is called once per accepted connection, before any
	// request is parsed. Returning ok == false rejects the connection;
	// the socket is closed without any request ever reaching
	// HandleRequest. The returned state is owned exclusively by this
	// connection for its entire lifetime.
	OnConnect(peerAddr string) (state any, ok bool)

	// HandleRequest is called once a request has successfully parsed. It
	// must return a response; req is only valid for the duration of this
	// call and must not be retained.
	HandleRequest(state any, req *wire.Request) *wire.Response

	// OnDisconnect is invoked exactly once per connection, when it
	// transitions to Closed — regardless of which path led there (idle
	// close, parse error, send error, handler error).
	OnDisconnect(state any)

	// OnAcceptError is advisory: the listener continues accepting after
	// it returns.
	OnAcceptError(err error)

	// OnReadError is consulted when parsing a request fails. It may
	// return a response to transmit before the connection closes (e.g. a
	// 400 or 413), or nil to close without a reply.
	OnReadError(state any, err error) *wire.Response

	// OnSendError is informational: it fires when emitting a response
	// fails partway through. No further emission is attempted.
	OnSendError(state any, err error)
}
