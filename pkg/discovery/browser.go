package discovery

import (
	"context"
	"net"

	"github.com/enbility/zeroconf/v3"
)

// BrowserConfig configures endpoint browsing.
type BrowserConfig struct {
	// Interface restricts browsing to one network interface by name.
	// Empty browses all interfaces.
	Interface string
}

// Browser finds OSC endpoints on the local network.
type Browser struct {
	config BrowserConfig
}

// NewBrowser creates a browser.
func NewBrowser(config BrowserConfig) *Browser {
	return &Browser{config: config}
}

// Browse streams endpoints as they are discovered until ctx is cancelled.
// Entries for the same instance name arriving from several interfaces are
// aggregated: the endpoint is emitted once and its address list merged.
func (b *Browser) Browse(ctx context.Context) (<-chan *Endpoint, error) {
	out := make(chan *Endpoint)

	entries := make(chan *zeroconf.ServiceEntry)
	removed := make(chan *zeroconf.ServiceEntry)
	opts := b.browserOptions()

	go func() {
		defer close(out)

		seen := make(map[string]*Endpoint)
		for {
			select {
			case entry, ok := <-entries:
				if !ok {
					return
				}
				ep := entryToEndpoint(entry)
				if existing, found := seen[ep.InstanceName]; found {
					existing.Addresses = mergeAddresses(existing.Addresses, ep.Addresses)
					continue
				}
				seen[ep.InstanceName] = ep
				select {
				case out <- ep:
				case <-ctx.Done():
					return
				}

			case entry, ok := <-removed:
				if !ok {
					continue
				}
				delete(seen, entry.Instance)

			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		_ = zeroconf.Browse(ctx, ServiceType, Domain, entries, removed, opts...)
	}()

	return out, nil
}

// FindByName browses until an endpoint with the given instance name shows
// up, or the context expires.
func (b *Browser) FindByName(ctx context.Context, name string) (*Endpoint, error) {
	ctx, cancel := context.WithTimeout(ctx, BrowseTimeout)
	defer cancel()

	endpoints, err := b.Browse(ctx)
	if err != nil {
		return nil, err
	}
	for {
		select {
		case ep, ok := <-endpoints:
			if !ok {
				return nil, ErrNotFound
			}
			if ep.InstanceName == name {
				return ep, nil
			}
		case <-ctx.Done():
			return nil, ErrNotFound
		}
	}
}

func (b *Browser) browserOptions() []zeroconf.ClientOption {
	var opts []zeroconf.ClientOption
	if b.config.Interface != "" {
		iface, err := net.InterfaceByName(b.config.Interface)
		if err == nil {
			opts = append(opts, zeroconf.SelectIfaces([]net.Interface{*iface}))
		}
	}
	return opts
}

func entryToEndpoint(entry *zeroconf.ServiceEntry) *Endpoint {
	addressSpace, version := DecodeTXT(StringsToTXTRecords(entry.Text))

	addrs := make([]string, 0, len(entry.AddrIPv4)+len(entry.AddrIPv6))
	for _, ip := range entry.AddrIPv4 {
		addrs = append(addrs, ip.String())
	}
	for _, ip := range entry.AddrIPv6 {
		addrs = append(addrs, ip.String())
	}

	return &Endpoint{
		InstanceName: entry.Instance,
		Host:         entry.HostName,
		Port:         uint16(entry.Port),
		Addresses:    addrs,
		AddressSpace: addressSpace,
		Version:      version,
	}
}

// mergeAddresses appends the addresses from next that are not already in
// have, preserving order.
func mergeAddresses(have, next []string) []string {
	for _, addr := range next {
		found := false
		for _, existing := range have {
			if existing == addr {
				found = true
				break
			}
		}
		if !found {
			have = append(have, addr)
		}
	}
	return have
}
