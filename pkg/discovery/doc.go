// Package discovery advertises and browses OSC endpoints over mDNS.
//
// OSC has no handshake, so peers conventionally announce their receive
// port as an "_osc._udp" DNS-SD service (TouchOSC, OSCQuery hosts and most
// controller apps follow this). Advertiser publishes an endpoint; Browser
// finds endpoints on the local network so applications can build publish
// destinations without static configuration.
package discovery
