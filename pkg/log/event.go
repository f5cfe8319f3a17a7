package log

import "time"

// Event is one engine log record. CBOR encoding uses integer keys for
// compactness so long capture files stay small.
type Event struct {
	// Timestamp when the event occurred.
	Timestamp time.Time `cbor:"1,keyasint"`

	// ClientID identifies the transport client that produced the event
	// (UUID, assigned at client construction).
	ClientID string `cbor:"2,keyasint"`

	// Category classifies the event.
	Category Category `cbor:"3,keyasint"`

	// RemoteAddr is the destination "ip:port" for send events.
	RemoteAddr string `cbor:"4,keyasint,omitempty"`

	// Address is the OSC address pattern, when the event concerns a
	// single message.
	Address string `cbor:"5,keyasint,omitempty"`

	// ArgCount is the number of OSC arguments in the message.
	ArgCount int `cbor:"6,keyasint,omitempty"`

	// PacketSize is the encoded datagram size in bytes.
	PacketSize int `cbor:"7,keyasint,omitempty"`

	// Multicast marks sends routed through the multicast path.
	Multicast bool `cbor:"8,keyasint,omitempty"`

	// Due and Sent describe a scheduler tick: how many registry entries
	// came due and how many sends succeeded.
	Due  int `cbor:"9,keyasint,omitempty"`
	Sent int `cbor:"10,keyasint,omitempty"`

	// Error carries the error text for CategoryError events.
	Error string `cbor:"11,keyasint,omitempty"`
}

// Category classifies an engine event.
type Category uint8

const (
	// CategorySend is a single-message datagram send.
	CategorySend Category = 0

	// CategoryBundle is a bundle datagram send.
	CategoryBundle Category = 1

	// CategoryTick is one publish scheduler Post pass.
	CategoryTick Category = 2

	// CategoryError is a failed send or bind.
	CategoryError Category = 3
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategorySend:
		return "SEND"
	case CategoryBundle:
		return "BUNDLE"
	case CategoryTick:
		return "TICK"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}
