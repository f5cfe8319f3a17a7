package discovery

import (
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/enbility/zeroconf/v3"
)

// AdvertiserConfig configures endpoint advertising.
type AdvertiserConfig struct {
	// Interface restricts advertising to one network interface by name.
	// Empty advertises on all interfaces.
	Interface string

	// TTL overrides the mDNS record TTL. Zero uses the library default.
	TTL time.Duration
}

// Advertiser publishes a local OSC endpoint as an "_osc._udp" service.
type Advertiser struct {
	config AdvertiserConfig

	mu     sync.Mutex
	server *zeroconf.Server
}

// NewAdvertiser creates an advertiser.
func NewAdvertiser(config AdvertiserConfig) *Advertiser {
	return &Advertiser{config: config}
}

// getInterfaces returns the interfaces to advertise on, or nil for all.
func (a *Advertiser) getInterfaces() []net.Interface {
	if a.config.Interface == "" {
		return nil
	}
	iface, err := net.InterfaceByName(a.config.Interface)
	if err != nil {
		return nil
	}
	return []net.Interface{*iface}
}

// Advertise starts announcing the endpoint, replacing any previous
// announcement from this advertiser.
func (a *Advertiser) Advertise(info *EndpointInfo) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.server != nil {
		a.server.Shutdown()
		a.server = nil
	}

	instanceName := info.Name
	if instanceName == "" {
		instanceName = fmt.Sprintf("osc-%d", info.Port)
	}
	if len(instanceName) > MaxInstanceNameLen {
		instanceName = instanceName[:MaxInstanceNameLen]
	}

	txtStrings := TXTRecordsToStrings(EncodeTXT(info))

	var opts []zeroconf.ServerOption
	if a.config.TTL > 0 {
		opts = append(opts, zeroconf.TTL(uint32(a.config.TTL.Seconds())))
	}

	server, err := zeroconf.Register(
		instanceName,
		ServiceType,
		Domain,
		int(info.Port),
		txtStrings,
		a.getInterfaces(),
		opts...,
	)
	if err != nil {
		return fmt.Errorf("failed to register OSC endpoint service: %w", err)
	}

	a.server = server
	return nil
}

// Update replaces the TXT metadata of the running announcement.
func (a *Advertiser) Update(info *EndpointInfo) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.server == nil {
		return ErrNotAdvertising
	}
	a.server.SetText(TXTRecordsToStrings(EncodeTXT(info)))
	return nil
}

// Stop withdraws the announcement.
func (a *Advertiser) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.server != nil {
		a.server.Shutdown()
		a.server = nil
	}
}
