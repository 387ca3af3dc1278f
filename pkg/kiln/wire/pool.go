package wire

import "sync"

// requestPool backs Parser's request allocation. A single sync.Pool is
// enough here: unlike the request/response objects of a general-purpose
// client library, a *Request's lifetime is bounded by one parse-handle
// cycle on one connection, so a per-CPU sharded pool for longer-lived
// objects buys nothing for this package.
var requestPool = sync.Pool{
	New: func() interface{} {
		return &Request{}
	},
}

// getRequest retrieves a reset *Request from the pool.
func getRequest() *Request {
	req := requestPool.Get().(*Request)
	return req
}

// putRequest resets req and returns it to the pool. Safe to call with nil.
func putRequest(req *Request) {
	if req == nil {
		return
	}
	req.reset()
	requestPool.Put(req)
}
