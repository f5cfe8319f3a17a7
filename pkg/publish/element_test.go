package publish

import (
	"testing"

	"github.com/oscpub/oscpub-go/pkg/wire"
)

func encodeOne(t *testing.T, s Source) []any {
	t.Helper()
	var m wire.Message
	m.Init("/test")
	if err := s.EncodeTo(&m); err != nil {
		t.Fatalf("EncodeTo failed: %v", err)
	}
	return m.Arguments
}

func TestGetterReflectsCurrentState(t *testing.T) {
	state := int32(1)
	s := GetterOf(func() int32 { return state })

	if args := encodeOne(t, s); args[0] != int32(1) {
		t.Errorf("first encode = %v, want 1", args[0])
	}
	state = 2
	if args := encodeOne(t, s); args[0] != int32(2) {
		t.Errorf("encode after change = %v, want 2 (getter must be re-invoked)", args[0])
	}
}

func TestConstSnapshotsAtRegistration(t *testing.T) {
	state := int32(1)
	s := ConstOf(state)

	state = 2
	if args := encodeOne(t, s); args[0] != int32(1) {
		t.Errorf("encode after change = %v, want original 1", args[0])
	}
}

func TestValueReadsReferentAtSendTime(t *testing.T) {
	state := int32(1)
	s := ValueOf(&state)

	state = 7
	if args := encodeOne(t, s); args[0] != int32(7) {
		t.Errorf("encode = %v, want current referent value 7", args[0])
	}
}

func TestTuplePreservesRegistrationOrder(t *testing.T) {
	s := TupleOf(ConstOf(int32(1)), ConstOf(int32(2)), ConstOf(int32(3)))

	args := encodeOne(t, s)
	if len(args) != 3 {
		t.Fatalf("argument count = %d, want 3", len(args))
	}
	for i, want := range []int32{1, 2, 3} {
		if args[i] != want {
			t.Errorf("args[%d] = %v, want %d", i, args[i], want)
		}
	}
}

func TestNewSourceDispatch(t *testing.T) {
	// Zero-argument callable becomes a getter.
	s, err := NewSource(func() int32 { return 5 })
	if err != nil {
		t.Fatalf("NewSource(func) failed: %v", err)
	}
	if args := encodeOne(t, s); args[0] != int32(5) {
		t.Errorf("getter encode = %v, want 5", args[0])
	}

	// Pointer becomes a bound value read at send time.
	v := int32(3)
	s, err = NewSource(&v)
	if err != nil {
		t.Fatalf("NewSource(ptr) failed: %v", err)
	}
	v = 4
	if args := encodeOne(t, s); args[0] != int32(4) {
		t.Errorf("value encode = %v, want 4", args[0])
	}

	// Anything else becomes a snapshot constant.
	s, err = NewSource("hello")
	if err != nil {
		t.Fatalf("NewSource(string) failed: %v", err)
	}
	if args := encodeOne(t, s); args[0] != "hello" {
		t.Errorf("const encode = %v, want hello", args[0])
	}
}

func TestNewSourceRejectsBadRegistrations(t *testing.T) {
	if _, err := NewSource(func(x int) int { return x }); err == nil {
		t.Error("func with arguments should be rejected")
	}
	if _, err := NewSource(func() (int, int) { return 0, 0 }); err == nil {
		t.Error("func with two results should be rejected")
	}
	if _, err := NewSource((*int32)(nil)); err == nil {
		t.Error("nil pointer should be rejected")
	}
	if _, err := NewSource(struct{}{}); err == nil {
		t.Error("un-encodable constant should be rejected at registration")
	}
}

func TestElementDueAfterInterval(t *testing.T) {
	e := NewElement(ConstOf(int32(1)))
	e.markSent(0)

	if e.Due(0) {
		t.Error("Due immediately after stamp must be false")
	}
	if e.Due(DefaultIntervalMicros - 1) {
		t.Error("Due one microsecond early must be false")
	}
	if !e.Due(DefaultIntervalMicros) {
		t.Error("Due exactly at the interval must be true")
	}
}

func TestElementDueAcrossWraparound(t *testing.T) {
	e := NewElement(ConstOf(int32(1)))
	e.SetIntervalUsec(33333)

	// Stamped just before the 32-bit counter wraps.
	last := uint32(0xFFFFFF00)
	e.markSent(last)

	if e.Due(last + 33332) { // wraps to 33076
		t.Error("Due must be false one microsecond before the interval, across wraparound")
	}
	if !e.Due(last + 33333) { // wraps to 33077
		t.Error("Due must be true at the interval, across wraparound")
	}
}

func TestElementIntervalSetters(t *testing.T) {
	e := NewElement(nil)

	if e.IntervalUsec() != DefaultIntervalMicros {
		t.Errorf("default interval = %d, want %d", e.IntervalUsec(), DefaultIntervalMicros)
	}

	e.SetFrameRate(30)
	if got := e.IntervalUsec(); got != 33333 {
		t.Errorf("SetFrameRate(30) interval = %d, want 33333", got)
	}

	e.SetIntervalMsec(100)
	if got := e.IntervalUsec(); got != 100000 {
		t.Errorf("SetIntervalMsec(100) interval = %d, want 100000", got)
	}

	e.SetIntervalSec(2)
	if got := e.IntervalUsec(); got != 2000000 {
		t.Errorf("SetIntervalSec(2) interval = %d, want 2000000", got)
	}

	e.SetIntervalUsec(1)
	if got := e.IntervalUsec(); got != 1 {
		t.Errorf("SetIntervalUsec(1) interval = %d, want 1", got)
	}
}

func TestPlaceholderElementEncodesNothing(t *testing.T) {
	e := NewElement(nil)

	var m wire.Message
	ok, err := e.EncodeTo(&m, "/x")
	if err != nil {
		t.Fatalf("EncodeTo failed: %v", err)
	}
	if ok {
		t.Error("placeholder without a source must not encode")
	}

	e.SetSource(ConstOf(int32(9)))
	ok, err = e.EncodeTo(&m, "/x")
	if err != nil || !ok {
		t.Fatalf("EncodeTo after SetSource = (%v, %v), want (true, nil)", ok, err)
	}
	if m.Address != "/x" || m.Arguments[0] != int32(9) {
		t.Errorf("encoded message = %v", m.String())
	}
}
