package publish

import "time"

// Clock reads a free-running microsecond counter. The counter is expected
// to wrap; consumers must compare timestamps with unsigned subtraction.
type Clock func() uint32

// MonotonicClock returns a Clock backed by the runtime's monotonic clock,
// counting microseconds from the moment of this call.
func MonotonicClock() Clock {
	start := time.Now()
	return func() uint32 {
		return uint32(time.Since(start).Microseconds())
	}
}
