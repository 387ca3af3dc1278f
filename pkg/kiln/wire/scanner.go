package wire

import (
	"io"
	"time"
)

// Scanner is a thin set of token-scanning primitives layered over a
// Buffer. Every returned slice borrows from the underlying Buffer and is
// valid only until the buffer's next Reset.
type Scanner struct {
	buf *Buffer
}

// NewScanner wraps a Buffer with scanning primitives.
func NewScanner(buf *Buffer) *Scanner { return &Scanner{buf: buf} }

// Peek returns the next unconsumed byte without advancing.
func (s *Scanner) Peek() (byte, error) { return s.buf.Peek() }

// Next advances past the byte last returned by Peek.
func (s *Scanner) Next() { s.buf.Next() }

// SkipWhitespace consumes spaces and tabs until a non-whitespace byte (or an
// error) is encountered. The non-whitespace byte is left unconsumed.
func (s *Scanner) SkipWhitespace() error {
	for {
		b, err := s.buf.Peek()
		if err != nil {
			return err
		}
		if b != ' ' && b != '\t' {
			return nil
		}
		s.buf.Next()
	}
}

// ScanUntil consumes bytes up to and including the first occurrence of c,
// returning the consumed slice (inclusive of c).
func (s *Scanner) ScanUntil(c byte) ([]byte, error) {
	start := s.buf.Cursor()
	for {
		b, err := s.buf.Peek()
		if err != nil {
			return nil, err
		}
		s.buf.Next()
		if b == c {
			return s.buf.Subslice(start, s.buf.Cursor()), nil
		}
	}
}

// ScanUntilPair consumes bytes up to and including the b of the first
// adjacent (a, b) pair, returning the consumed slice (inclusive of b).
func (s *Scanner) ScanUntilPair(a, b byte) ([]byte, error) {
	start := s.buf.Cursor()
	sawA := false
	for {
		c, err := s.buf.Peek()
		if err != nil {
			return nil, err
		}
		s.buf.Next()
		if sawA && c == b {
			return s.buf.Subslice(start, s.buf.Cursor()), nil
		}
		sawA = c == a
	}
}

// ScanUntilNewline is ScanUntilPair(CR, LF).
func (s *Scanner) ScanUntilNewline() ([]byte, error) {
	return s.ScanUntilPair('\r', '\n')
}

// ScanWhileUntil consumes bytes satisfying allowed until it encounters
// terminator (consumed, not included in the returned slice) or a byte that
// satisfies neither allowed nor equals terminator (errOnInvalid is
// returned).
func (s *Scanner) ScanWhileUntil(allowed func(byte) bool, terminator byte, errOnInvalid error) ([]byte, error) {
	start := s.buf.Cursor()
	for {
		b, err := s.buf.Peek()
		if err != nil {
			return nil, err
		}
		if b == terminator {
			value := s.buf.Subslice(start, s.buf.Cursor())
			s.buf.Next()
			return value, nil
		}
		if !allowed(b) {
			return nil, errOnInvalid
		}
		s.buf.Next()
	}
}

// Body transitions ownership from the header-scanning buffer to the raw
// socket: it copies whatever body bytes are already buffered into dst
// (which must have length == content-length), then reads the remainder
// directly from the connection, bounded by bodyReadTimeout as a single
// cancellable operation. After Body returns, the scanner must not be used
// again until the next Reset.
func (s *Scanner) Body(dst []byte, bodyReadTimeout time.Duration) error {
	copied := s.buf.CopyBody(dst)
	if copied == len(dst) {
		return nil
	}

	conn := s.buf.Conn()
	if bodyReadTimeout > 0 {
		if err := conn.SetReadDeadline(time.Now().Add(bodyReadTimeout)); err != nil {
			return err
		}
	}

	_, err := io.ReadFull(conn, dst[copied:])
	if err != nil {
		if isTimeoutError(err) {
			return ErrBodyReadTimeout
		}
		return err
	}
	return nil
}
