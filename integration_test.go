package oscpub_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/oscpub/oscpub-go/pkg/discovery"
	"github.com/oscpub/oscpub-go/pkg/publish"
	"github.com/oscpub/oscpub-go/pkg/transport"
	"github.com/oscpub/oscpub-go/pkg/wire"
)

// TestE2E_PublishToReceiver drives a real post loop against a loopback UDP
// receiver and checks the datagrams that arrive on the wire.
func TestE2E_PublishToReceiver(t *testing.T) {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatalf("Failed to open receiver socket: %v", err)
	}
	defer conn.Close()
	port := uint16(conn.LocalAddr().(*net.UDPAddr).Port)

	m := publish.NewManager(publish.Config{Pool: transport.NewConnPool()})

	value := int32(7)
	el, err := m.Publish("127.0.0.1", port, "/sensor/count", func() int32 { return value })
	if err != nil {
		t.Fatalf("Failed to publish: %v", err)
	}
	el.SetIntervalMsec(10)

	// The first send is due one interval after registration.
	deadline := time.Now().Add(2 * time.Second)
	for {
		if stats := m.Post(); stats.Sent > 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("No element became due within 2s")
		}
		time.Sleep(time.Millisecond)
	}

	buf := make([]byte, wire.MaxPacketSize)
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, _, err := conn.ReadFromUDP(buf)
	if err != nil {
		t.Fatalf("Failed to read datagram: %v", err)
	}

	var msg wire.Message
	if err := msg.UnmarshalBinary(buf[:n]); err != nil {
		t.Fatalf("Failed to decode datagram: %v", err)
	}
	if msg.Address != "/sensor/count" {
		t.Errorf("Address mismatch: expected /sensor/count, got %s", msg.Address)
	}
	if len(msg.Arguments) != 1 || msg.Arguments[0] != int32(7) {
		t.Errorf("Arguments mismatch: got %v", msg.Arguments)
	}

	// The getter is re-read each send, so the next datagram carries the
	// new value.
	value = 8
	for {
		if stats := m.Post(); stats.Sent > 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("Second send never became due")
		}
		time.Sleep(time.Millisecond)
	}
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, _, err = conn.ReadFromUDP(buf)
	if err != nil {
		t.Fatalf("Failed to read second datagram: %v", err)
	}
	if err := msg.UnmarshalBinary(buf[:n]); err != nil {
		t.Fatalf("Failed to decode second datagram: %v", err)
	}
	if len(msg.Arguments) != 1 || msg.Arguments[0] != int32(8) {
		t.Errorf("Second send arguments mismatch: got %v", msg.Arguments)
	}
}

// TestE2E_Discovery tests that a browser can discover an advertised OSC
// endpoint via mDNS.
func TestE2E_Discovery(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	advertiser := discovery.NewAdvertiser(discovery.AdvertiserConfig{})
	defer advertiser.Stop()

	info := &discovery.EndpointInfo{
		Name:         "oscpub-e2e",
		Port:         9000,
		AddressSpace: []string{"/sensor"},
		Version:      "1.0",
	}
	if err := advertiser.Advertise(info); err != nil {
		t.Fatalf("Failed to advertise endpoint: %v", err)
	}

	// Give mDNS time to propagate
	time.Sleep(500 * time.Millisecond)

	browser := discovery.NewBrowser(discovery.BrowserConfig{})
	found, err := browser.FindByName(ctx, "oscpub-e2e")
	if err != nil {
		t.Fatalf("Failed to find endpoint: %v", err)
	}

	if found.Port != 9000 {
		t.Errorf("Port mismatch: expected 9000, got %d", found.Port)
	}
	if len(found.AddressSpace) != 1 || found.AddressSpace[0] != "/sensor" {
		t.Errorf("Address space mismatch: got %v", found.AddressSpace)
	}
	if found.Version != "1.0" {
		t.Errorf("Version mismatch: expected 1.0, got %s", found.Version)
	}
}
