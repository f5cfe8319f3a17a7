package publish

import (
	"fmt"
	"reflect"
	"sync/atomic"

	"github.com/oscpub/oscpub-go/pkg/wire"
)

// Source is the type-erased value behind a publish element. EncodeTo
// appends the source's current logical value(s) to an in-progress message
// and must be callable repeatedly.
type Source interface {
	EncodeTo(m *wire.Message) error
}

// valueSource encodes the current contents of caller-owned storage.
type valueSource[T any] struct {
	ref *T
}

func (s valueSource[T]) EncodeTo(m *wire.Message) error {
	return m.Push(*s.ref)
}

// ValueOf returns a source bound to caller-owned storage. The value behind
// the pointer is read fresh on every send; the caller must keep it alive
// for the lifetime of the registration.
func ValueOf[T any](ref *T) Source {
	return valueSource[T]{ref: ref}
}

// constSource encodes a snapshot taken at registration time.
type constSource struct {
	value any
}

func (s constSource) EncodeTo(m *wire.Message) error {
	return m.Push(s.value)
}

// ConstOf returns a source holding an owned snapshot of value.
func ConstOf(value any) Source {
	return constSource{value: value}
}

// getterSource re-invokes a zero-argument callable on every send.
type getterSource struct {
	get func() any
}

func (s getterSource) EncodeTo(m *wire.Message) error {
	return m.Push(s.get())
}

// GetterOf returns a source that calls fn on every send, so the encoded
// value reflects state at send time rather than registration time.
func GetterOf[T any](fn func() T) Source {
	return getterSource{get: func() any { return fn() }}
}

// tupleSource encodes its children in order into one message, producing a
// single multi-argument send.
type tupleSource struct {
	children []Source
}

func (s tupleSource) EncodeTo(m *wire.Message) error {
	for _, c := range s.children {
		if err := c.EncodeTo(m); err != nil {
			return err
		}
	}
	return nil
}

// TupleOf aggregates several sources under one address.
func TupleOf(children ...Source) Source {
	return tupleSource{children: children}
}

// NewSource builds a Source from an arbitrary registration value:
//
//   - a Source is used as-is
//   - a zero-argument single-result func becomes a getter
//   - a non-nil pointer becomes a bound value source
//   - anything else becomes a snapshot constant
//
// Constants are validated immediately; getter results are validated at
// encode time, when the callable is first invoked.
func NewSource(value any) (Source, error) {
	if value == nil {
		return ConstOf(nil), nil
	}
	if s, ok := value.(Source); ok {
		return s, nil
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Func:
		rt := rv.Type()
		if rt.NumIn() != 0 || rt.NumOut() != 1 || rt.IsVariadic() {
			return nil, fmt.Errorf("getter must be func() T, got %s", rt)
		}
		return getterSource{get: func() any {
			return rv.Call(nil)[0].Interface()
		}}, nil

	case reflect.Pointer:
		if rv.IsNil() {
			return nil, fmt.Errorf("nil pointer registration")
		}
		return getterSource{get: func() any {
			return rv.Elem().Interface()
		}}, nil

	default:
		// Snapshot constant. Reject un-encodable types at registration
		// rather than on the first tick.
		var probe wire.Message
		probe.Init("/")
		if err := probe.Push(value); err != nil {
			return nil, err
		}
		return ConstOf(value), nil
	}
}

// DefaultIntervalMicros is the re-send interval for fresh elements, about
// 30 sends per second.
const DefaultIntervalMicros uint32 = 33333

// Element is one registry entry: a type-erased source plus its private
// rate-limit state. Interval setters may be called at any time through the
// handle returned by Publish; they take effect on the next Due evaluation.
type Element struct {
	source     atomic.Pointer[Source]
	lastSentUs atomic.Uint32
	intervalUs atomic.Uint32
}

// NewElement creates an element around source with the default interval.
// A nil source leaves the element inert until SetSource is called.
func NewElement(source Source) *Element {
	e := &Element{}
	e.intervalUs.Store(DefaultIntervalMicros)
	if source != nil {
		e.source.Store(&source)
	}
	return e
}

// SetSource replaces the element's value source. Used to give placeholder
// elements obtained from Manager.ElementRef something to send.
func (e *Element) SetSource(source Source) {
	if source == nil {
		e.source.Store(nil)
		return
	}
	e.source.Store(&source)
}

// Due reports whether at least one interval has elapsed since the last
// send. The unsigned subtraction is wraparound-safe: the comparison stays
// correct across overflow of the 32-bit microsecond counter.
func (e *Element) Due(now uint32) bool {
	return now-e.lastSentUs.Load() >= e.intervalUs.Load()
}

// markSent stamps the last-sent timestamp.
func (e *Element) markSent(now uint32) {
	e.lastSentUs.Store(now)
}

// EncodeTo initialises m for addr and encodes the element's current value
// into it. Elements without a source encode nothing and report false.
func (e *Element) EncodeTo(m *wire.Message, addr string) (bool, error) {
	src := e.source.Load()
	if src == nil {
		return false, nil
	}
	m.Init(addr)
	if err := (*src).EncodeTo(m); err != nil {
		return false, err
	}
	return true, nil
}

// IntervalUsec returns the current interval in microseconds.
func (e *Element) IntervalUsec() uint32 {
	return e.intervalUs.Load()
}

// SetFrameRate sets the interval as sends per second.
func (e *Element) SetFrameRate(fps float32) {
	if fps > 0 {
		e.intervalUs.Store(uint32(1_000_000 / fps))
	}
}

// SetIntervalUsec sets the interval in microseconds.
func (e *Element) SetIntervalUsec(us uint32) {
	e.intervalUs.Store(us)
}

// SetIntervalMsec sets the interval in milliseconds.
func (e *Element) SetIntervalMsec(ms float32) {
	e.intervalUs.Store(uint32(ms * 1_000))
}

// SetIntervalSec sets the interval in seconds.
func (e *Element) SetIntervalSec(sec float32) {
	e.intervalUs.Store(uint32(sec * 1_000_000))
}
