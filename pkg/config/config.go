// Package config loads declarative publisher setups from YAML.
//
// A config file names the local send port and a table of publishers, each
// a destination plus the constant values to send and an optional rate.
// Getter and bound-value sources cannot be expressed declaratively; code
// that needs them registers through the publish API directly and can still
// use a config file for the static part of its setup.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/oscpub/oscpub-go/pkg/publish"
)

// Config is a parsed publisher configuration.
type Config struct {
	// LocalPort is the UDP port sends originate from.
	LocalPort uint16 `yaml:"local_port"`

	// Publishers lists the publish registrations to apply.
	Publishers []Publisher `yaml:"publishers"`
}

// Publisher declares one publish registration.
type Publisher struct {
	// IP is the destination host or multicast group address.
	IP string `yaml:"ip"`

	// Port is the destination UDP port.
	Port uint16 `yaml:"port"`

	// Address is the OSC address pattern.
	Address string `yaml:"address"`

	// Multicast routes the entry through the multicast send path.
	Multicast bool `yaml:"multicast"`

	// IntervalMsec overrides the default re-send interval. Mutually
	// exclusive with FrameRate.
	IntervalMsec float32 `yaml:"interval_ms"`

	// FrameRate expresses the interval as sends per second.
	FrameRate float32 `yaml:"frame_rate"`

	// Values are the constant arguments of each send, in order.
	Values []any `yaml:"values"`
}

// Load reads and parses the config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML config data. Unknown fields are rejected so typos fail
// loudly instead of silently dropping a publisher.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(strings.NewReader(string(data)))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("YAML parse error: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every declared publisher.
func (c *Config) Validate() error {
	for i, p := range c.Publishers {
		if p.IP == "" {
			return fmt.Errorf("publisher %d: missing ip", i)
		}
		if p.Port == 0 {
			return fmt.Errorf("publisher %d: missing port", i)
		}
		if !strings.HasPrefix(p.Address, "/") {
			return fmt.Errorf("publisher %d: address %q must start with '/'", i, p.Address)
		}
		if len(p.Values) == 0 {
			return fmt.Errorf("publisher %d: no values", i)
		}
		if p.IntervalMsec > 0 && p.FrameRate > 0 {
			return fmt.Errorf("publisher %d: interval_ms and frame_rate are mutually exclusive", i)
		}
	}
	return nil
}

// Apply registers every declared publisher on the manager.
func (c *Config) Apply(m *publish.Manager) error {
	if c.LocalPort != 0 {
		m.SetLocalPort(c.LocalPort)
	}
	for i, p := range c.Publishers {
		var el *publish.Element
		var err error
		if p.Multicast {
			el, err = m.PublishMulticast(p.IP, p.Port, p.Address, p.Values...)
		} else {
			el, err = m.Publish(p.IP, p.Port, p.Address, p.Values...)
		}
		if err != nil {
			return fmt.Errorf("publisher %d (%s): %w", i, p.Address, err)
		}
		if p.IntervalMsec > 0 {
			el.SetIntervalMsec(p.IntervalMsec)
		}
		if p.FrameRate > 0 {
			el.SetFrameRate(p.FrameRate)
		}
	}
	return nil
}
