package wire

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"strings"
	"time"
)

// Message is a single logical OSC message: an address pattern plus zero or
// more typed arguments in push order. The zero value is usable; Init resets
// a message for reuse without reallocating the argument slice.
type Message struct {
	Address   string
	Arguments []any
}

// NewMessage returns a message for the given address with the given
// arguments already pushed. It returns an error if any argument is not an
// OSC-encodable type.
func NewMessage(addr string, args ...any) (*Message, error) {
	m := &Message{}
	m.Init(addr)
	if err := m.Push(args...); err != nil {
		return nil, err
	}
	return m, nil
}

// Init resets the message to a fresh state for the given address pattern.
func (m *Message) Init(addr string) {
	m.Address = addr
	m.Arguments = m.Arguments[:0]
}

// Push appends arguments in order. Values must be OSC-encodable; plain Go
// integer types are coerced to int32 or int64 and time.Time to a Timetag.
// On error the message is left unchanged.
func (m *Message) Push(args ...any) error {
	for _, arg := range args {
		if _, err := coerce(arg); err != nil {
			return err
		}
	}
	for _, arg := range args {
		v, _ := coerce(arg)
		m.Arguments = append(m.Arguments, v)
	}
	return nil
}

// coerce maps convenience Go types onto the canonical OSC argument types.
func coerce(arg any) (any, error) {
	switch v := arg.(type) {
	case int32, int64, float32, float64, string, []byte, Timetag, bool, nil:
		return arg, nil
	case int:
		if v >= math.MinInt32 && v <= math.MaxInt32 {
			return int32(v), nil
		}
		return int64(v), nil
	case int8:
		return int32(v), nil
	case int16:
		return int32(v), nil
	case uint8:
		return int32(v), nil
	case uint16:
		return int32(v), nil
	case uint32:
		return int64(v), nil
	case time.Time:
		return TimetagFromTime(v), nil
	default:
		return nil, fmt.Errorf("unsupported OSC argument type %T", arg)
	}
}

// TypeTags returns the message's type tag string, including the leading
// comma.
func (m *Message) TypeTags() (string, error) {
	return TypeTagsOf(m.Arguments)
}

// String renders the message in the conventional "/addr ,tags args" form.
func (m *Message) String() string {
	if m == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(m.Address)
	tags, err := m.TypeTags()
	if err != nil || len(tags) == 1 {
		return b.String()
	}
	b.WriteByte(' ')
	b.WriteString(tags)
	for _, arg := range m.Arguments {
		switch v := arg.(type) {
		case nil:
			b.WriteString(" nil")
		case []byte:
			fmt.Fprintf(&b, " blob(%d)", len(v))
		default:
			fmt.Fprintf(&b, " %v", v)
		}
	}
	return b.String()
}

// appendTo writes the wire form of the message to buf.
func (m *Message) appendTo(buf *bytes.Buffer) error {
	if m.Address == "" || m.Address[0] != '/' {
		return fmt.Errorf("invalid OSC address pattern %q", m.Address)
	}
	tags, err := m.TypeTags()
	if err != nil {
		return err
	}
	writePaddedString(buf, m.Address)
	writePaddedString(buf, tags)

	var scratch [word64]byte
	for _, arg := range m.Arguments {
		switch v := arg.(type) {
		case bool, nil:
			// Encoded entirely in the type tag string.
		case int32:
			binary.BigEndian.PutUint32(scratch[:word32], uint32(v))
			buf.Write(scratch[:word32])
		case float32:
			binary.BigEndian.PutUint32(scratch[:word32], math.Float32bits(v))
			buf.Write(scratch[:word32])
		case int64:
			binary.BigEndian.PutUint64(scratch[:], uint64(v))
			buf.Write(scratch[:])
		case float64:
			binary.BigEndian.PutUint64(scratch[:], math.Float64bits(v))
			buf.Write(scratch[:])
		case Timetag:
			binary.BigEndian.PutUint64(scratch[:], uint64(v))
			buf.Write(scratch[:])
		case string:
			writePaddedString(buf, v)
		case []byte:
			writeBlob(buf, v)
		default:
			return fmt.Errorf("unsupported OSC argument type %T", arg)
		}
	}

	if buf.Len() > MaxPacketSize {
		return fmt.Errorf("OSC packet too large: %d bytes", buf.Len())
	}
	return nil
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (m *Message) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	if err := m.appendTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary parses the wire form of a single message.
func (m *Message) UnmarshalBinary(data []byte) error {
	if len(data) == 0 || data[0] != '/' {
		return fmt.Errorf("data is not an OSC message")
	}
	if len(data)%word32 != 0 {
		return fmt.Errorf("OSC message length %d is not 4-byte aligned", len(data))
	}

	addr, n, err := readPaddedString(data)
	if err != nil {
		return err
	}
	m.Init(addr)
	data = data[n:]

	if len(data) == 0 {
		return nil
	}
	tags, n, err := readPaddedString(data)
	if err != nil {
		return err
	}
	data = data[n:]
	if len(tags) == 0 || tags[0] != ',' {
		return fmt.Errorf("invalid type tag string %q", tags)
	}

	for _, tag := range []byte(tags[1:]) {
		switch TypeTag(tag) {
		case TagInt32:
			if len(data) < word32 {
				return fmt.Errorf("truncated int32 argument")
			}
			m.Arguments = append(m.Arguments, int32(binary.BigEndian.Uint32(data)))
			data = data[word32:]
		case TagFloat32:
			if len(data) < word32 {
				return fmt.Errorf("truncated float32 argument")
			}
			m.Arguments = append(m.Arguments, math.Float32frombits(binary.BigEndian.Uint32(data)))
			data = data[word32:]
		case TagInt64:
			if len(data) < word64 {
				return fmt.Errorf("truncated int64 argument")
			}
			m.Arguments = append(m.Arguments, int64(binary.BigEndian.Uint64(data)))
			data = data[word64:]
		case TagFloat64:
			if len(data) < word64 {
				return fmt.Errorf("truncated float64 argument")
			}
			m.Arguments = append(m.Arguments, math.Float64frombits(binary.BigEndian.Uint64(data)))
			data = data[word64:]
		case TagTimetag:
			if len(data) < word64 {
				return fmt.Errorf("truncated timetag argument")
			}
			m.Arguments = append(m.Arguments, Timetag(binary.BigEndian.Uint64(data)))
			data = data[word64:]
		case TagString:
			s, n, err := readPaddedString(data)
			if err != nil {
				return err
			}
			m.Arguments = append(m.Arguments, s)
			data = data[n:]
		case TagBlob:
			blob, n, err := readBlob(data)
			if err != nil {
				return err
			}
			m.Arguments = append(m.Arguments, blob)
			data = data[n:]
		case TagTrue:
			m.Arguments = append(m.Arguments, true)
		case TagFalse:
			m.Arguments = append(m.Arguments, false)
		case TagNil:
			m.Arguments = append(m.Arguments, nil)
		default:
			return fmt.Errorf("unsupported type tag %q", tag)
		}
	}
	return nil
}
