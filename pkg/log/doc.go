// Package log defines the event logging surface of the OSC engine.
//
// The engine never writes to a global logger. Components that can observe
// interesting traffic (the transport client, the publish manager) accept a
// Logger and emit structured Events: one per datagram send, scheduler tick
// or error. Applications plug in whatever sink they want: NoopLogger to
// disable logging, SlogAdapter for development consoles, or FileLogger to
// capture a CBOR event stream that Reader can replay later.
package log
