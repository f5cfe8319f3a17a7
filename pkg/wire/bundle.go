package wire

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// bundleTag is the OSC string that opens every bundle.
const bundleTag = "#bundle"

// Bundle is an OSC bundle: a time tag plus the messages that share it.
// Nested bundles are not supported; the engine sends flat bundles only.
type Bundle struct {
	Timetag  Timetag
	Messages []*Message
}

// Append adds a message to the bundle.
func (b *Bundle) Append(m *Message) {
	b.Messages = append(b.Messages, m)
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (b *Bundle) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	writeBundleHeader(&buf, b.Timetag)
	for _, m := range b.Messages {
		if err := appendBundleElement(&buf, m); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary parses the wire form of a flat bundle.
func (b *Bundle) UnmarshalBinary(data []byte) error {
	if len(data)%word32 != 0 {
		return fmt.Errorf("OSC bundle length %d is not 4-byte aligned", len(data))
	}
	tag, n, err := readPaddedString(data)
	if err != nil {
		return err
	}
	if tag != bundleTag {
		return fmt.Errorf("invalid bundle start tag %q", tag)
	}
	data = data[n:]
	if len(data) < word64 {
		return fmt.Errorf("truncated bundle time tag")
	}
	b.Timetag = Timetag(binary.BigEndian.Uint64(data))
	data = data[word64:]

	b.Messages = b.Messages[:0]
	for len(data) > 0 {
		if len(data) < word32 {
			return fmt.Errorf("truncated bundle element size")
		}
		size := int(binary.BigEndian.Uint32(data))
		data = data[word32:]
		if size < 0 || size > len(data) {
			return fmt.Errorf("invalid bundle element size %d", size)
		}
		var m Message
		if err := m.UnmarshalBinary(data[:size]); err != nil {
			return err
		}
		b.Messages = append(b.Messages, &m)
		data = data[size:]
	}
	return nil
}

// IsBundle reports whether data starts with the bundle tag.
func IsBundle(data []byte) bool {
	return len(data) >= len(bundleTag) && string(data[:len(bundleTag)]) == bundleTag
}

func writeBundleHeader(buf *bytes.Buffer, tt Timetag) {
	writePaddedString(buf, bundleTag)
	var scratch [word64]byte
	binary.BigEndian.PutUint64(scratch[:], uint64(tt))
	buf.Write(scratch[:])
}

// appendBundleElement writes one size-prefixed message into buf.
func appendBundleElement(buf *bytes.Buffer, m *Message) error {
	sizeAt := buf.Len()
	buf.Write(zeroPad[:word32]) // size placeholder
	before := buf.Len()
	if err := m.appendTo(buf); err != nil {
		buf.Truncate(sizeAt)
		return err
	}
	binary.BigEndian.PutUint32(buf.Bytes()[sizeAt:sizeAt+word32], uint32(buf.Len()-before))
	return nil
}
