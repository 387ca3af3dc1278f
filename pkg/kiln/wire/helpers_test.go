package wire

import (
	"net"
	"strings"
	"sync"
	"time"
)

// mockConn is a minimal net.Conn double over an in-memory reader/writer,
// grounded on the http11 test package's own mockConn: no real socket is
// needed to drive Buffer/Scanner/Writer through their read and write
// paths, only something that satisfies net.Conn's signature.
type mockConn struct {
	readData  *strings.Reader
	writeData strings.Builder
	closed    bool
	deadline  time.Time
	mu        sync.Mutex
}

func newMockConn(data string) *mockConn {
	return &mockConn{readData: strings.NewReader(data)}
}

func (m *mockConn) Read(b []byte) (int, error)  { return m.readData.Read(b) }
func (m *mockConn) Write(b []byte) (int, error) { return m.writeData.Write(b) }

func (m *mockConn) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *mockConn) LocalAddr() net.Addr  { return &net.TCPAddr{IP: net.ParseIP("127.0.0.1"), Port: 8080} }
func (m *mockConn) RemoteAddr() net.Addr { return &net.TCPAddr{IP: net.ParseIP("127.0.0.1"), Port: 12345} }

func (m *mockConn) SetDeadline(t time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deadline = t
	return nil
}

func (m *mockConn) SetReadDeadline(t time.Time) error  { return m.SetDeadline(t) }
func (m *mockConn) SetWriteDeadline(t time.Time) error { return m.SetDeadline(t) }

func (m *mockConn) written() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writeData.String()
}
