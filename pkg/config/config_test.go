package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oscpub/oscpub-go/pkg/publish"
	"github.com/oscpub/oscpub-go/pkg/transport"
)

const sample = `
local_port: 8888
publishers:
  - ip: 10.0.0.5
    port: 9000
    address: /sensor/temp
    interval_ms: 100
    values: [21.5]
  - ip: 239.0.0.1
    port: 9000
    address: /status
    multicast: true
    frame_rate: 2
    values: [1, up]
`

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(sample))
	require.NoError(t, err)

	assert.Equal(t, uint16(8888), cfg.LocalPort)
	require.Len(t, cfg.Publishers, 2)

	first := cfg.Publishers[0]
	assert.Equal(t, "10.0.0.5", first.IP)
	assert.Equal(t, "/sensor/temp", first.Address)
	assert.Equal(t, float32(100), first.IntervalMsec)
	assert.False(t, first.Multicast)

	second := cfg.Publishers[1]
	assert.True(t, second.Multicast)
	assert.Equal(t, []any{1, "up"}, second.Values)
}

func TestParseRejectsUnknownFields(t *testing.T) {
	_, err := Parse([]byte("local_prot: 8888"))
	assert.Error(t, err, "typos must fail loudly")
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"missing ip", "publishers:\n  - port: 9000\n    address: /x\n    values: [1]"},
		{"missing port", "publishers:\n  - ip: 10.0.0.1\n    address: /x\n    values: [1]"},
		{"bad address", "publishers:\n  - ip: 10.0.0.1\n    port: 9000\n    address: x\n    values: [1]"},
		{"no values", "publishers:\n  - ip: 10.0.0.1\n    port: 9000\n    address: /x"},
		{"both rates", "publishers:\n  - ip: 10.0.0.1\n    port: 9000\n    address: /x\n    values: [1]\n    interval_ms: 10\n    frame_rate: 30"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.yaml))
			assert.Error(t, err)
		})
	}
}

func TestApply(t *testing.T) {
	cfg, err := Parse([]byte(sample))
	require.NoError(t, err)

	m := publish.NewManager(publish.Config{Pool: transport.NewConnPool()})
	require.NoError(t, cfg.Apply(m))

	assert.Equal(t, 2, m.Count())

	el := m.ElementRef(publish.NewDestination("10.0.0.5", 9000, "/sensor/temp"))
	assert.Equal(t, uint32(100000), el.IntervalUsec())

	mc := m.ElementRef(publish.NewMulticastDestination("239.0.0.1", 9000, "/status"))
	assert.Equal(t, uint32(500000), mc.IntervalUsec(), "frame_rate 2 is a 500ms interval")
}
