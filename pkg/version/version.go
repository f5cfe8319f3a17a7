// Package version identifies the library and the OSC spec it implements.
package version

import "fmt"

// Library is the oscpub-go release version.
const Library = "0.1.0"

// OSCSpec is the OSC specification version the wire codec implements.
const OSCSpec = "1.0"

// String returns a human-readable version banner.
func String() string {
	return fmt.Sprintf("oscpub-go %s (OSC %s)", Library, OSCSpec)
}
