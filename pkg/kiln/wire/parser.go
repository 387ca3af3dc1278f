package wire

import (
	"time"

	"github.com/valyala/bytebufferpool"
)

// Limits bundles the per-connection protocol limits that bound a single
// parse: max_header_size (enforced by the Buffer itself), max_body_size,
// and body_read_timeout.
type Limits struct {
	MaxBodySize     int64
	BodyReadTimeout time.Duration
}

// Parser drives a Scanner through one request-line + field-list + body
// parse, producing a pooled *Request. Callers must call Release(req) once
// the handler has returned — retaining the Request past that point
// violates its zero-copy borrow contract.
type Parser struct {
	scanner *Scanner
}

// NewParser wraps buf with the scanning and parsing primitives.
func NewParser(buf *Buffer) *Parser {
	return &Parser{scanner: NewScanner(buf)}
}

// Parse consumes one request from the scanner. It returns ErrNoRequest
// (rather than ErrIncompleteHeader) when the peer closed the connection
// cleanly before sending any byte of a new request — see the idle-close
// design note.
func (p *Parser) Parse(limits Limits) (*Request, error) {
	req := getRequest()

	if err := p.parseRequestLine(req); err != nil {
		putRequest(req)
		return nil, err
	}
	if err := p.parseFields(req); err != nil {
		putRequest(req)
		return nil, err
	}
	if err := p.parseBody(req, limits); err != nil {
		putRequest(req)
		return nil, err
	}

	return req, nil
}

// Release returns a Request (and any body buffer it owns) to their pools.
// Must be called exactly once, after handle_request has returned and the
// caller has finished reading any fields off the request.
func (p *Parser) Release(req *Request) {
	putRequest(req)
}

func (p *Parser) parseRequestLine(req *Request) error {
	method, err := p.scanner.ScanUntil(' ')
	if err != nil {
		return err
	}
	method = method[:len(method)-1] // drop the trailing space scan_until kept
	req.methodBytes = method
	req.MethodID = ParseMethodID(method)
	if req.MethodID == MethodUnknown {
		return ErrInvalidMethod
	}

	target, err := p.scanner.ScanWhileUntil(isTargetChar, ' ', ErrInvalidTarget)
	if err != nil {
		return err
	}
	req.targetBytes = target
	if qi := indexByte(target, '?'); qi >= 0 {
		req.pathBytes = target[:qi]
		req.queryBytes = target[qi+1:]
	} else {
		req.pathBytes = target
		req.queryBytes = nil
	}

	line, err := p.scanner.ScanUntilNewline()
	if err != nil {
		return err
	}
	proto := line[:len(line)-2] // drop CRLF
	req.protoBytes = proto
	if !bytesEqual(proto, http11Bytes) {
		return ErrInvalidVersion
	}

	return nil
}

func (p *Parser) parseFields(req *Request) error {
	var hasContentLength bool
	var contentLengthValue int64

	for {
		b, err := p.scanner.Peek()
		if err != nil {
			return err
		}
		if b == '\r' {
			end, err := p.scanner.ScanUntilNewline()
			if err != nil {
				return err
			}
			if len(end) != 2 { // must be exactly CRLF, i.e. the blank line
				return ErrInvalidField
			}
			break
		}

		name, err := p.scanner.ScanWhileUntil(isFieldNameChar, ':', ErrInvalidField)
		if err != nil {
			return err
		}
		if len(name) == 0 {
			return ErrInvalidField
		}

		if err := p.scanner.SkipWhitespace(); err != nil {
			return err
		}
		value, err := p.scanner.ScanWhileUntil(isFieldValueChar, '\r', ErrInvalidField)
		if err != nil {
			return err
		}
		value = trimTrailingOWS(value)

		lf, err := p.scanner.Peek()
		if err != nil {
			return err
		}
		if lf != '\n' {
			return ErrInvalidField
		}
		p.scanner.Next()

		if err := req.Header.Add(name, value); err != nil {
			return ErrInvalidField
		}

		if bytesEqualCaseInsensitive(name, headerContentLength) {
			n, ok := parseDecimal(value)
			if !ok {
				return ErrInvalidContentLength
			}
			if hasContentLength && n != contentLengthValue {
				return ErrInvalidContentLength
			}
			hasContentLength = true
			contentLengthValue = n
			req.ContentLength = n
		} else if bytesEqualCaseInsensitive(name, headerTransferEncoding) {
			if hasContentLength {
				return ErrInvalidContentLength
			}
			// This wire protocol does not define a chunked request body; a
			// Transfer-Encoding field combined with a later Content-Length is
			// equally rejected, checked below.
		} else if bytesEqualCaseInsensitive(name, headerConnection) {
			if bytesEqualCaseInsensitive(value, headerClose) {
				req.Close = true
			}
		}
	}

	if hasContentLength && req.Header.Has(headerTransferEncoding) {
		return ErrInvalidContentLength
	}

	return nil
}

func (p *Parser) parseBody(req *Request, limits Limits) error {
	if req.ContentLength == 0 {
		req.Body = nil
		return nil
	}
	if limits.MaxBodySize > 0 && req.ContentLength > limits.MaxBodySize {
		return ErrBodyTooLarge
	}

	bb := bytebufferpool.Get()
	growBodyBuffer(bb, int(req.ContentLength))
	if err := p.scanner.Body(bb.B, limits.BodyReadTimeout); err != nil {
		bytebufferpool.Put(bb)
		return err
	}
	req.bodyBuf = bb
	req.Body = bb.B
	return nil
}

func growBodyBuffer(bb *bytebufferpool.ByteBuffer, n int) {
	if cap(bb.B) < n {
		bb.B = make([]byte, n)
		return
	}
	bb.B = bb.B[:n]
}

func trimTrailingOWS(b []byte) []byte {
	for len(b) > 0 && (b[len(b)-1] == ' ' || b[len(b)-1] == '\t') {
		b = b[:len(b)-1]
	}
	return b
}

func parseDecimal(b []byte) (int64, bool) {
	if len(b) == 0 {
		return 0, false
	}
	var n int64
	for _, c := range b {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int64(c-'0')
		if n < 0 {
			return 0, false
		}
	}
	return n, true
}

func indexByte(b []byte, c byte) int {
	for i, v := range b {
		if v == c {
			return i
		}
	}
	return -1
}
