package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageKnownLayout(t *testing.T) {
	m, err := NewMessage("/x", int32(42))
	require.NoError(t, err)

	data, err := m.MarshalBinary()
	require.NoError(t, err)

	// "/x\0\0" ",i\0\0" 0x0000002a
	want := []byte{
		'/', 'x', 0, 0,
		',', 'i', 0, 0,
		0, 0, 0, 42,
	}
	assert.Equal(t, want, data)
}

func TestMessagePushCoercion(t *testing.T) {
	var m Message
	m.Init("/coerce")
	require.NoError(t, m.Push(7, int64(1)<<40, uint16(3), float32(1.5), "s", true, nil))

	tags, err := m.TypeTags()
	require.NoError(t, err)
	assert.Equal(t, ",ihifsTN", tags)
	assert.Equal(t, int32(7), m.Arguments[0])
	assert.Equal(t, int32(3), m.Arguments[2])
}

func TestMessagePushRejectsUnsupported(t *testing.T) {
	var m Message
	m.Init("/bad")
	err := m.Push(struct{}{})
	require.Error(t, err)
	assert.Empty(t, m.Arguments, "failed push must leave the message unchanged")
}

func TestMessageInitReuse(t *testing.T) {
	var m Message
	m.Init("/a")
	require.NoError(t, m.Push(int32(1), int32(2)))
	m.Init("/b")
	assert.Equal(t, "/b", m.Address)
	assert.Empty(t, m.Arguments)
}

func TestMessageRoundTrip(t *testing.T) {
	m, err := NewMessage("/mix", int32(-5), "hello", float32(0.25), []byte{1, 2, 3}, false)
	require.NoError(t, err)

	data, err := m.MarshalBinary()
	require.NoError(t, err)
	require.Zero(t, len(data)%4)

	var got Message
	require.NoError(t, got.UnmarshalBinary(data))
	assert.Equal(t, "/mix", got.Address)
	assert.Equal(t, []any{int32(-5), "hello", float32(0.25), []byte{1, 2, 3}, false}, got.Arguments)
}

func TestMessageInvalidAddress(t *testing.T) {
	m, err := NewMessage("no-slash", int32(1))
	require.NoError(t, err)
	_, err = m.MarshalBinary()
	assert.Error(t, err)
}

func TestMessageString(t *testing.T) {
	m, err := NewMessage("/s", int32(1), "x")
	require.NoError(t, err)
	assert.Equal(t, "/s ,is 1 x", m.String())
}

func TestBundleRoundTrip(t *testing.T) {
	m1, err := NewMessage("/a", int32(1))
	require.NoError(t, err)
	m2, err := NewMessage("/b", "two", float32(3))
	require.NoError(t, err)

	b := Bundle{Timetag: Immediately}
	b.Append(m1)
	b.Append(m2)

	data, err := b.MarshalBinary()
	require.NoError(t, err)
	require.True(t, IsBundle(data))
	require.Zero(t, len(data)%4)

	var got Bundle
	require.NoError(t, got.UnmarshalBinary(data))
	assert.Equal(t, Immediately, got.Timetag)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "/a", got.Messages[0].Address)
	assert.Equal(t, []any{"two", float32(3)}, got.Messages[1].Arguments)
}
