// Package publish implements the periodic OSC publish engine.
//
// Applications register value sources against a Destination (remote IP,
// port, OSC address, unicast/multicast flag). Each registration becomes an
// Element carrying its own re-send interval. A single cooperative call to
// Manager.Post scans the registry and sends every element whose interval
// has elapsed, so callers drive publishing from their own control loop
// without per-frame send logic.
//
// Value sources come in four shapes: a pointer to caller-owned storage
// (encoded fresh each send), a snapshot constant, a zero-argument getter
// (re-evaluated each send), and a tuple of the above that encodes one
// multi-argument message. The caller of ValueOf must keep the referent
// alive for as long as the element is registered; that obligation is not
// checked at runtime.
//
// Timing uses a free-running 32-bit microsecond counter. All interval
// comparisons are wraparound-safe, so schedules survive counter overflow
// (about every 71 minutes).
package publish
