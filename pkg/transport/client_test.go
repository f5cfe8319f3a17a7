package transport

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oscpub/oscpub-go/pkg/wire"
)

// udpSink is a loopback listener that captures datagrams for assertions.
type udpSink struct {
	conn *net.UDPConn
	port uint16
}

func newUDPSink(t *testing.T) *udpSink {
	t.Helper()
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return &udpSink{
		conn: conn,
		port: uint16(conn.LocalAddr().(*net.UDPAddr).Port),
	}
}

func (s *udpSink) recv(t *testing.T) []byte {
	t.Helper()
	s.conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, wire.MaxPacketSize)
	n, _, err := s.conn.ReadFromUDP(buf)
	require.NoError(t, err)
	return buf[:n]
}

func newTestClient() *Client {
	return NewClient(Config{Pool: NewConnPool()})
}

func TestClientSend(t *testing.T) {
	sink := newUDPSink(t)
	c := newTestClient()

	require.NoError(t, c.Send("127.0.0.1", sink.port, "/x", int32(42)))

	var m wire.Message
	require.NoError(t, m.UnmarshalBinary(sink.recv(t)))
	assert.Equal(t, "/x", m.Address)
	assert.Equal(t, []any{int32(42)}, m.Arguments)
}

func TestClientSendMultipleArgs(t *testing.T) {
	sink := newUDPSink(t)
	c := newTestClient()

	require.NoError(t, c.Send("127.0.0.1", sink.port, "/multi", int32(1), float32(2.5), "three"))

	var m wire.Message
	require.NoError(t, m.UnmarshalBinary(sink.recv(t)))
	assert.Equal(t, []any{int32(1), float32(2.5), "three"}, m.Arguments)
}

func TestClientScratchReuse(t *testing.T) {
	sink := newUDPSink(t)
	c := newTestClient()

	require.NoError(t, c.Send("127.0.0.1", sink.port, "/a", int32(1), int32(2)))
	sink.recv(t)
	require.NoError(t, c.Send("127.0.0.1", sink.port, "/b", "only"))

	var m wire.Message
	require.NoError(t, m.UnmarshalBinary(sink.recv(t)))
	assert.Equal(t, "/b", m.Address)
	assert.Equal(t, []any{"only"}, m.Arguments, "scratch message must not leak previous args")
}

func TestClientBundle(t *testing.T) {
	sink := newUDPSink(t)
	c := newTestClient()

	require.NoError(t, c.BeginBundle(wire.Immediately))
	require.NoError(t, c.AddBundle("/a", int32(1)))
	require.NoError(t, c.AddBundle("/b", int32(2), int32(3)))
	require.NoError(t, c.EndBundle())
	require.NoError(t, c.SendBundle("127.0.0.1", sink.port))

	data := sink.recv(t)
	require.True(t, wire.IsBundle(data))

	var b wire.Bundle
	require.NoError(t, b.UnmarshalBinary(data))
	assert.Equal(t, wire.Immediately, b.Timetag)
	require.Len(t, b.Messages, 2)
	assert.Equal(t, "/a", b.Messages[0].Address)
	assert.Equal(t, []any{int32(2), int32(3)}, b.Messages[1].Arguments)
}

func TestClientInvalidIP(t *testing.T) {
	c := newTestClient()
	assert.Error(t, c.Send("not-an-ip", 9000, "/x", int32(1)))
}

func TestClientRejectsBadArgument(t *testing.T) {
	c := newTestClient()
	assert.Error(t, c.Send("127.0.0.1", 9000, "/x", struct{}{}))
}

func TestClientLocalPortResolvesEphemeral(t *testing.T) {
	c := newTestClient()
	port, err := c.LocalPort()
	require.NoError(t, err)
	assert.NotZero(t, port)

	// Stable across calls: same pooled socket.
	again, err := c.LocalPort()
	require.NoError(t, err)
	assert.Equal(t, port, again)
}

func TestConnPoolSharesSocketPerPort(t *testing.T) {
	pool := NewConnPool()
	t.Cleanup(func() { pool.Close() })

	a, err := pool.Get(0)
	require.NoError(t, err)
	b, err := pool.Get(0)
	require.NoError(t, err)
	assert.Same(t, a, b)
}
