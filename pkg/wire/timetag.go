package wire

import (
	"encoding/binary"
	"time"
)

// Timetag is a 64-bit OSC time tag. The upper 32 bits count seconds since
// midnight 1900-01-01, the lower 32 bits are the fractional second, as in
// NTP timestamps.
type Timetag uint64

// Immediately is the special time tag value meaning "process now".
const Immediately Timetag = 1

// secondsFrom1900To1970 is the NTP/Unix epoch offset.
const secondsFrom1900To1970 = 2208988800

// TimetagFromTime converts a time.Time to an OSC time tag.
func TimetagFromTime(t time.Time) Timetag {
	secs := uint64(t.Unix() + secondsFrom1900To1970)
	frac := uint64(t.Nanosecond()) << 32 / uint64(time.Second)
	return Timetag(secs<<32 | frac)
}

// Time converts the time tag back to a time.Time. The result for
// Immediately is not meaningful.
func (t Timetag) Time() time.Time {
	secs := int64(t>>32) - secondsFrom1900To1970
	nanos := (uint64(t) & 0xffffffff) * uint64(time.Second) >> 32
	return time.Unix(secs, int64(nanos))
}

// Seconds returns the whole-second part of the time tag.
func (t Timetag) Seconds() uint32 { return uint32(t >> 32) }

// Fraction returns the fractional-second part of the time tag.
func (t Timetag) Fraction() uint32 { return uint32(t) }

// MarshalBinary implements encoding.BinaryMarshaler.
func (t Timetag) MarshalBinary() ([]byte, error) {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(t))
	return b, nil
}
