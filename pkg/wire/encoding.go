package wire

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

const (
	word32 = 4
	word64 = 8
)

// MaxPacketSize bounds a single OSC datagram. Anything larger would not
// survive typical UDP paths anyway.
const MaxPacketSize = 65507

// padLen returns how many zero bytes are needed to reach the next 4-byte
// boundary after n bytes.
func padLen(n int) int {
	return (word32 - n%word32) % word32
}

var zeroPad [word32]byte

// writePaddedString writes s followed by a terminating zero and padding to a
// 4-byte boundary.
func writePaddedString(b *bytes.Buffer, s string) {
	b.WriteString(s)
	b.WriteByte(0)
	b.Write(zeroPad[:padLen(len(s)+1)])
}

// readPaddedString consumes a zero-terminated padded string from data and
// returns the string and the total number of bytes consumed.
func readPaddedString(data []byte) (string, int, error) {
	pos := bytes.IndexByte(data, 0)
	if pos < 0 {
		return "", 0, fmt.Errorf("unterminated OSC string")
	}
	n := pos + 1
	n += padLen(n)
	if n > len(data) {
		return "", 0, fmt.Errorf("OSC string padding exceeds data")
	}
	return string(data[:pos]), n, nil
}

// writeBlob writes a length-prefixed, padded OSC blob.
func writeBlob(b *bytes.Buffer, blob []byte) {
	var size [word32]byte
	binary.BigEndian.PutUint32(size[:], uint32(len(blob)))
	b.Write(size[:])
	b.Write(blob)
	b.Write(zeroPad[:padLen(len(blob))])
}

// readBlob consumes a length-prefixed padded blob and returns the payload
// and the total number of bytes consumed.
func readBlob(data []byte) ([]byte, int, error) {
	if len(data) < word32 {
		return nil, 0, fmt.Errorf("truncated OSC blob size")
	}
	size := int(binary.BigEndian.Uint32(data[:word32]))
	n := word32 + size
	n += padLen(size)
	if size < 0 || n > len(data) {
		return nil, 0, fmt.Errorf("invalid OSC blob length %d", size)
	}
	blob := make([]byte, size)
	copy(blob, data[word32:word32+size])
	return blob, n, nil
}
