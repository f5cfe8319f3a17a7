package wire

import "fmt"

// TypeTag identifies the OSC 1.0 type of a single argument.
type TypeTag byte

// OSC 1.0 type tags.
const (
	TagInt32   TypeTag = 'i'
	TagInt64   TypeTag = 'h'
	TagFloat32 TypeTag = 'f'
	TagFloat64 TypeTag = 'd'
	TagString  TypeTag = 's'
	TagBlob    TypeTag = 'b'
	TagTimetag TypeTag = 't'
	TagTrue    TypeTag = 'T'
	TagFalse   TypeTag = 'F'
	TagNil     TypeTag = 'N'
	TagInvalid TypeTag = 0
)

// ToTypeTag returns the type tag for a Go value, or TagInvalid if the value
// is not an OSC-encodable type. Only the canonical argument types are
// accepted here; Message.Push performs coercion before this check.
func ToTypeTag(arg any) TypeTag {
	switch v := arg.(type) {
	case int32:
		return TagInt32
	case int64:
		return TagInt64
	case float32:
		return TagFloat32
	case float64:
		return TagFloat64
	case string:
		return TagString
	case []byte:
		return TagBlob
	case Timetag:
		return TagTimetag
	case bool:
		if v {
			return TagTrue
		}
		return TagFalse
	case nil:
		return TagNil
	default:
		return TagInvalid
	}
}

// TypeTagsOf builds the type tag string (including the leading comma) for an
// argument slice.
func TypeTagsOf(args []any) (string, error) {
	tags := make([]byte, 0, len(args)+1)
	tags = append(tags, ',')
	for _, arg := range args {
		t := ToTypeTag(arg)
		if t == TagInvalid {
			return "", fmt.Errorf("unsupported OSC argument type %T", arg)
		}
		tags = append(tags, byte(t))
	}
	return string(tags), nil
}
