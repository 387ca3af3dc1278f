package listener

import (
	"net"
	"testing"
)

func TestBindSingleEndpoint(t *testing.T) {
	set, err := Bind([]Endpoint{{Address: "127.0.0.1:0", Protocol: ProtocolHTTP}})
	if err != nil {
		t.Fatalf("Bind failed: %v", err)
	}
	defer set.Close()

	if set.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", set.Len())
	}
	addrs := set.Addresses()
	if len(addrs) != 1 || addrs[0] == "" {
		t.Fatalf("Addresses() = %v", addrs)
	}
}

func TestBindMultipleEndpoints(t *testing.T) {
	set, err := Bind([]Endpoint{
		{Address: "127.0.0.1:0", Protocol: ProtocolHTTP},
		{Address: "127.0.0.1:0", Protocol: ProtocolHTTP},
	})
	if err != nil {
		t.Fatalf("Bind failed: %v", err)
	}
	defer set.Close()

	if set.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", set.Len())
	}
	addrs := set.Addresses()
	if addrs[0] == addrs[1] {
		t.Errorf("expected distinct ephemeral ports, got %v", addrs)
	}
}

func TestBindFailsWhenAnyEndpointFails(t *testing.T) {
	// Bind one good endpoint, then a deliberately unparseable address so
	// the second bind fails; the whole call must report an error. Bind
	// also closes the listener it did open, which this test does not
	// observe (the ephemeral address is never returned).
	_, err := Bind([]Endpoint{
		{Address: "127.0.0.1:0", Protocol: ProtocolHTTP},
		{Address: "not-a-valid-address", Protocol: ProtocolHTTP},
	})
	if err == nil {
		t.Fatal("expected an aggregated bind error")
	}
}

func TestAcceptReturnsConnWithProtocolTag(t *testing.T) {
	set, err := Bind([]Endpoint{{Address: "127.0.0.1:0", Protocol: ProtocolHTTP}})
	if err != nil {
		t.Fatalf("Bind failed: %v", err)
	}
	defer set.Close()

	addr := set.Addresses()[0]
	connected := make(chan struct{})
	go func() {
		c, err := net.Dial("tcp", addr)
		if err == nil {
			<-connected
			c.Close()
		}
	}()

	accepted, err := set.Accept(0)
	if err != nil {
		t.Fatalf("Accept failed: %v", err)
	}
	defer accepted.Conn.Close()
	close(connected)

	if accepted.Protocol != ProtocolHTTP {
		t.Errorf("Protocol = %q, want %q", accepted.Protocol, ProtocolHTTP)
	}
}

func TestCloseStopsFurtherAccepts(t *testing.T) {
	set, err := Bind([]Endpoint{{Address: "127.0.0.1:0", Protocol: ProtocolHTTP}})
	if err != nil {
		t.Fatalf("Bind failed: %v", err)
	}
	if err := set.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if _, err := set.Accept(0); err == nil {
		t.Error("Accept after Close should fail")
	}
}
