package wire

import (
	"errors"
	"testing"
)

func newTestScanner(data string) *Scanner {
	return NewScanner(NewBuffer(newMockConn(data), 4096, 0))
}

func TestScannerScanUntil(t *testing.T) {
	s := newTestScanner("GET / HTTP/1.1\r\n")
	got, err := s.ScanUntil(' ')
	if err != nil {
		t.Fatalf("ScanUntil failed: %v", err)
	}
	if string(got) != "GET " {
		t.Errorf("ScanUntil(' ') = %q, want %q", got, "GET ")
	}
}

func TestScannerScanUntilPair(t *testing.T) {
	s := newTestScanner("HTTP/1.1\r\nHost: x\r\n")
	got, err := s.ScanUntilPair('\r', '\n')
	if err != nil {
		t.Fatalf("ScanUntilPair failed: %v", err)
	}
	if string(got) != "HTTP/1.1\r\n" {
		t.Errorf("ScanUntilPair = %q, want %q", got, "HTTP/1.1\r\n")
	}
}

func TestScannerScanUntilNewline(t *testing.T) {
	s := newTestScanner("Host: example.com\r\nrest")
	got, err := s.ScanUntilNewline()
	if err != nil {
		t.Fatalf("ScanUntilNewline failed: %v", err)
	}
	if string(got) != "Host: example.com\r\n" {
		t.Errorf("ScanUntilNewline = %q, want %q", got, "Host: example.com\r\n")
	}
}

func TestScannerSkipWhitespace(t *testing.T) {
	s := newTestScanner("   \tvalue")
	if err := s.SkipWhitespace(); err != nil {
		t.Fatalf("SkipWhitespace failed: %v", err)
	}
	b, err := s.Peek()
	if err != nil {
		t.Fatalf("Peek failed: %v", err)
	}
	if b != 'v' {
		t.Errorf("Peek after SkipWhitespace = %q, want %q", b, 'v')
	}
}

func TestScannerScanWhileUntilTerminator(t *testing.T) {
	s := newTestScanner("Content-Length: 4\r\n")
	name, err := s.ScanWhileUntil(isFieldNameChar, ':', ErrInvalidField)
	if err != nil {
		t.Fatalf("ScanWhileUntil failed: %v", err)
	}
	if string(name) != "Content-Length" {
		t.Errorf("name = %q, want %q", name, "Content-Length")
	}
}

func TestScannerScanWhileUntilInvalidByte(t *testing.T) {
	s := newTestScanner("Bad Name: v\r\n")
	_, err := s.ScanWhileUntil(isFieldNameChar, ':', ErrInvalidField)
	if !errors.Is(err, ErrInvalidField) {
		t.Fatalf("err = %v, want ErrInvalidField (space is not a field-name char)", err)
	}
}

func TestScannerBodyCopiesAlreadyBufferedBytes(t *testing.T) {
	conn := newMockConn("HEADERabcd")
	buf := NewBuffer(conn, 64, 0)
	s := NewScanner(buf)

	for i := 0; i < len("HEADER"); i++ {
		if _, err := s.Peek(); err != nil {
			t.Fatalf("Peek failed: %v", err)
		}
		s.Next()
	}

	dst := make([]byte, 4)
	if err := s.Body(dst, 0); err != nil {
		t.Fatalf("Body failed: %v", err)
	}
	if string(dst) != "abcd" {
		t.Errorf("Body dst = %q, want %q", dst, "abcd")
	}
}

func TestScannerBodyReadsRemainderDirectlyFromSocket(t *testing.T) {
	// Only "ab" is buffered at the time Body is called; "cd" must come
	// from a direct socket read once ownership transitions.
	conn := newMockConn("ab")
	buf := &Buffer{conn: conn, buf: []byte("ab"), length: 2}
	s := NewScanner(buf)

	// Prime the "remainder" the header scan already consumed into buf by
	// writing past what the mockConn originally offered: simulate the
	// socket having more bytes than the header buffer saw by wrapping a
	// second mock conn chained onto the same Buffer.conn.
	buf.conn = newMockConn("cd")

	dst := make([]byte, 4)
	if err := s.Body(dst, 0); err != nil {
		t.Fatalf("Body failed: %v", err)
	}
	if string(dst) != "abcd" {
		t.Errorf("Body dst = %q, want %q", dst, "abcd")
	}
}
