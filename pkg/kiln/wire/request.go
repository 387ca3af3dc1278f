package wire

import "github.com/valyala/bytebufferpool"

// Request is the parsed-request value: every byte slice
// field borrows from the connection's Buffer and is valid only until that
// buffer's next Reset. Callers must not retain a Request (or any slice
// obtained from it) past the handle_request call for the cycle that
// produced it — see the "zero-copy borrows" design note.
type Request struct {
	MethodID uint8

	methodBytes []byte
	targetBytes []byte
	pathBytes   []byte
	queryBytes  []byte
	protoBytes  []byte

	Header Header

	// Body is nil for a request with no declared Content-Length. When
	// present it is an owned copy, not a borrow into the Buffer, because
	// its lifetime must survive across the (possibly blocking) body read
	// that happens after the header buffer handed off ownership.
	Body []byte

	ContentLength int64
	Close         bool

	RemoteAddr string

	bodyBuf *bytebufferpool.ByteBuffer
}

// Method returns the canonical method name.
func (r *Request) Method() string { return MethodString(r.MethodID) }

// MethodBytes returns the raw method token as scanned.
func (r *Request) MethodBytes() []byte { return r.methodBytes }

// Target returns the raw request target (path plus optional query),
// excluding the trailing space that terminated it during scanning.
func (r *Request) Target() []byte { return r.targetBytes }

// Path returns the path portion of the target, i.e. the part before any
// '?'.
func (r *Request) Path() []byte { return r.pathBytes }

// RawQuery returns the portion of the target after '?', or nil if there was
// none.
func (r *Request) RawQuery() []byte { return r.queryBytes }

// Proto returns the raw protocol token, always "HTTP/1.1" for a
// successfully parsed request.
func (r *Request) Proto() []byte { return r.protoBytes }

// HasBody reports whether the request carries a body, i.e. declared a
// Content-Length greater than zero (an empty body is encoded as absent).
func (r *Request) HasBody() bool { return r.Body != nil }

// reset clears a pooled Request for reuse.
func (r *Request) reset() {
	r.MethodID = MethodUnknown
	r.methodBytes = nil
	r.targetBytes = nil
	r.pathBytes = nil
	r.queryBytes = nil
	r.protoBytes = nil
	r.Header.Reset()
	if r.bodyBuf != nil {
		bytebufferpool.Put(r.bodyBuf)
		r.bodyBuf = nil
	}
	r.Body = nil
	r.ContentLength = 0
	r.Close = false
	r.RemoteAddr = ""
}
