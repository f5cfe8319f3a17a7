package discovery

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// ServiceType is the DNS-SD service type for OSC-over-UDP endpoints.
	ServiceType = "_osc._udp"

	// Domain is the mDNS domain.
	Domain = "local"

	// BrowseTimeout is the default timeout for browse operations.
	BrowseTimeout = 10 * time.Second

	// MaxInstanceNameLen caps mDNS instance names.
	MaxInstanceNameLen = 63
)

// Discovery errors.
var (
	ErrNotAdvertising = errors.New("service is not being advertised")
	ErrNotFound       = errors.New("endpoint not found")
)

// EndpointInfo describes the local OSC endpoint to advertise.
type EndpointInfo struct {
	// Name is the instance name shown to browsers.
	Name string

	// Port is the UDP port the endpoint receives OSC on.
	Port uint16

	// AddressSpace optionally lists the root address patterns the
	// endpoint understands, e.g. "/1", "/synth".
	AddressSpace []string

	// Version is the advertised software version, free-form.
	Version string
}

// Endpoint is a discovered OSC endpoint.
type Endpoint struct {
	// InstanceName is the mDNS instance name.
	InstanceName string

	// Host is the advertised hostname.
	Host string

	// Port is the endpoint's OSC receive port.
	Port uint16

	// Addresses lists the endpoint's IP addresses as strings.
	Addresses []string

	// AddressSpace lists the advertised root address patterns.
	AddressSpace []string

	// Version is the advertised software version.
	Version string
}

// TXTRecordMap holds DNS TXT key/value pairs.
type TXTRecordMap map[string]string

// EncodeTXT builds the TXT records for an endpoint advertisement.
func EncodeTXT(info *EndpointInfo) TXTRecordMap {
	txt := make(TXTRecordMap)
	if len(info.AddressSpace) > 0 {
		txt["as"] = strings.Join(info.AddressSpace, ",")
	}
	if info.Version != "" {
		txt["ver"] = info.Version
	}
	return txt
}

// DecodeTXT extracts endpoint metadata from TXT records. Unknown keys are
// ignored for forward compatibility.
func DecodeTXT(txt TXTRecordMap) (addressSpace []string, version string) {
	if as, ok := txt["as"]; ok && as != "" {
		addressSpace = strings.Split(as, ",")
	}
	version = txt["ver"]
	return addressSpace, version
}

// TXTRecordsToStrings converts a TXTRecordMap to "key=value" strings, the
// form mDNS libraries expect.
func TXTRecordsToStrings(txt TXTRecordMap) []string {
	result := make([]string, 0, len(txt))
	for k, v := range txt {
		result = append(result, fmt.Sprintf("%s=%s", k, v))
	}
	return result
}

// StringsToTXTRecords parses "key=value" strings into a TXTRecordMap.
func StringsToTXTRecords(strs []string) TXTRecordMap {
	txt := make(TXTRecordMap)
	for _, s := range strs {
		parts := strings.SplitN(s, "=", 2)
		if len(parts) == 2 {
			txt[parts[0]] = parts[1]
		} else if len(parts) == 1 && parts[0] != "" {
			txt[parts[0]] = ""
		}
	}
	return txt
}
