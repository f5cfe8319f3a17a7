// Package wire implements the OSC 1.0 binary message format.
//
// An OSC message consists of an address pattern, a type tag string and a
// sequence of typed arguments, each padded to a 4-byte boundary. Messages may
// be grouped into a bundle that carries a single 64-bit NTP-style time tag.
//
// The package provides the logical Message builder, the Timetag and Bundle
// types, and a reusable Encoder workspace that assembles single messages or
// bundles into a scratch buffer without allocating per send.
package wire
