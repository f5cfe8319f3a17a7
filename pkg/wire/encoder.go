package wire

import (
	"bytes"
	"fmt"
)

// Encoder is a reusable encode workspace. A transport client owns exactly
// one Encoder and re-initialises it before every send, so steady-state
// sending does not allocate.
//
// Single messages and bundles share the same buffer: Init/Encode for a
// single message, Init/BeginBundle/Encode.../EndBundle for a bundle. The
// two forms must not be interleaved.
type Encoder struct {
	buf      bytes.Buffer
	inBundle bool
}

// Init resets the scratch buffer and leaves the encoder in single-message
// mode. It returns the encoder for call chaining.
func (e *Encoder) Init() *Encoder {
	e.buf.Reset()
	e.inBundle = false
	return e
}

// Encode appends the wire form of m to the buffer. In bundle mode the
// message is written as a size-prefixed bundle element.
func (e *Encoder) Encode(m *Message) error {
	if e.inBundle {
		return appendBundleElement(&e.buf, m)
	}
	return m.appendTo(&e.buf)
}

// BeginBundle writes the bundle header for the given time tag and switches
// the encoder to bundle mode.
func (e *Encoder) BeginBundle(tt Timetag) error {
	if e.inBundle {
		return fmt.Errorf("bundle already in progress")
	}
	writeBundleHeader(&e.buf, tt)
	e.inBundle = true
	return nil
}

// EndBundle finalises the bundle. The buffer then holds the complete packet
// until the next Init.
func (e *Encoder) EndBundle() error {
	if !e.inBundle {
		return fmt.Errorf("no bundle in progress")
	}
	e.inBundle = false
	return nil
}

// Data returns the encoded packet bytes. The slice is valid until the next
// Init or Encode call.
func (e *Encoder) Data() []byte { return e.buf.Bytes() }

// Size returns the number of encoded bytes.
func (e *Encoder) Size() int { return e.buf.Len() }
