// Package transport sends encoded OSC packets over UDP.
//
// A Client owns one wire.Encoder workspace and one scratch wire.Message,
// both reused across sends so the steady-state path does not allocate. The
// underlying sockets live in a ConnPool keyed by local port, so every
// client bound to the same local port shares one datagram socket.
//
// Sends are best-effort: one call, one datagram, no delivery confirmation.
package transport
