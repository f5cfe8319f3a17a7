package publish

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/oscpub/oscpub-go/pkg/log"
	"github.com/oscpub/oscpub-go/pkg/transport"
	"github.com/oscpub/oscpub-go/pkg/wire"
)

// Publish errors.
var (
	ErrNoValues     = errors.New("publish requires at least one value")
	ErrNotPublished = errors.New("destination not published")
)

// Config configures a Manager.
type Config struct {
	// LocalPort is the UDP port sends originate from. 0 binds an
	// ephemeral port.
	LocalPort uint16

	// Pool is the transport socket pool. Nil uses the shared pool.
	Pool *transport.ConnPool

	// Logger receives send and tick events. Nil disables logging.
	Logger log.Logger

	// Clock overrides the microsecond counter, mainly for tests.
	// Nil uses MonotonicClock.
	Clock Clock
}

// Manager owns the publish registry and the transport client that ships
// registered elements. Registration may happen from any goroutine; the
// Post tick and the one-off send helpers share the client's scratch
// buffers and must be driven from a single control-flow context.
type Manager struct {
	mu       sync.Mutex
	registry map[Destination]*Element

	client *transport.Client
	clock  Clock
	logger log.Logger

	// msg is the scratch message elements encode into during Post.
	msg wire.Message
}

// TickStats summarises one Post pass.
type TickStats struct {
	// Due is how many registry entries had an elapsed interval.
	Due int

	// Sent is how many of those were shipped without error.
	Sent int
}

// NewManager creates a publish manager.
func NewManager(config Config) *Manager {
	clock := config.Clock
	if clock == nil {
		clock = MonotonicClock()
	}
	return &Manager{
		registry: make(map[Destination]*Element),
		client: transport.NewClient(transport.Config{
			LocalPort: config.LocalPort,
			Pool:      config.Pool,
			Logger:    config.Logger,
		}),
		clock:  clock,
		logger: log.OrNoop(config.Logger),
	}
}

// Client returns the manager's transport client, for one-off sends that
// should share the manager's socket and scratch buffers.
func (m *Manager) Client() *transport.Client { return m.client }

// LocalPort resolves the bound local port.
func (m *Manager) LocalPort() (uint16, error) { return m.client.LocalPort() }

// SetLocalPort changes the local port for subsequent sends.
func (m *Manager) SetLocalPort(port uint16) { m.client.SetLocalPort(port) }

// Publish registers values for periodic sending to ip:port under addr and
// returns the registered element handle. A single value registers as-is;
// several values are wrapped in a tuple so each send emits one
// multi-argument message. Values follow NewSource dispatch: zero-argument
// funcs are re-evaluated per send, pointers are read per send, everything
// else is snapshotted now.
//
// Publishing to a destination that is already registered replaces the old
// element; the previous value and interval are discarded.
func (m *Manager) Publish(ip string, port uint16, addr string, values ...any) (*Element, error) {
	return m.publish(NewDestination(ip, port, addr), values)
}

// PublishMulticast is Publish routed through the multicast send path.
func (m *Manager) PublishMulticast(group string, port uint16, addr string, values ...any) (*Element, error) {
	return m.publish(NewMulticastDestination(group, port, addr), values)
}

func (m *Manager) publish(dest Destination, values []any) (*Element, error) {
	if len(values) == 0 {
		return nil, ErrNoValues
	}

	sources := make([]Source, len(values))
	for i, v := range values {
		s, err := NewSource(v)
		if err != nil {
			return nil, err
		}
		sources[i] = s
	}

	source := sources[0]
	if len(sources) > 1 {
		source = TupleOf(sources...)
	}
	return m.PublishElement(dest, NewElement(source)), nil
}

// PublishElement registers a pre-built element under dest, replacing any
// existing entry, and returns it. The last-sent stamp is set to now, so the
// first send happens one interval after registration.
func (m *Manager) PublishElement(dest Destination, el *Element) *Element {
	el.markSent(m.clock())

	m.mu.Lock()
	m.registry[dest] = el
	m.mu.Unlock()
	return el
}

// ElementRef returns the element registered under dest, inserting an inert
// placeholder if none exists. A placeholder is skipped by Post until
// SetSource gives it a value.
func (m *Manager) ElementRef(dest Destination) *Element {
	m.mu.Lock()
	defer m.mu.Unlock()

	if el, ok := m.registry[dest]; ok {
		return el
	}
	el := NewElement(nil)
	el.markSent(m.clock())
	m.registry[dest] = el
	return el
}

// Unpublish removes the registration for dest.
func (m *Manager) Unpublish(dest Destination) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.registry[dest]; !ok {
		return ErrNotPublished
	}
	delete(m.registry, dest)
	return nil
}

// Clear removes every registration.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.registry = make(map[Destination]*Element)
}

// Count returns the number of registered destinations.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.registry)
}

// Destinations returns the registered destinations in tick order.
func (m *Manager) Destinations() []Destination {
	m.mu.Lock()
	dests := make([]Destination, 0, len(m.registry))
	for d := range m.registry {
		dests = append(dests, d)
	}
	m.mu.Unlock()

	sortDestinations(dests)
	return dests
}

// Post runs one synchronous scheduling tick: every element whose interval
// has elapsed is encoded and shipped, unicast or multicast per its
// destination flag. The last-sent stamp records the attempt, not delivery,
// so a failed send is retried on the element's next natural tick rather
// than immediately. A send failure never aborts the scan; failures surface
// through the Logger and the returned stats.
func (m *Manager) Post() TickStats {
	m.mu.Lock()
	type entry struct {
		dest Destination
		el   *Element
	}
	entries := make([]entry, 0, len(m.registry))
	dests := make([]Destination, 0, len(m.registry))
	for d := range m.registry {
		dests = append(dests, d)
	}
	sortDestinations(dests)
	for _, d := range dests {
		entries = append(entries, entry{dest: d, el: m.registry[d]})
	}
	m.mu.Unlock()

	var stats TickStats
	for _, ent := range entries {
		now := m.clock()
		if !ent.el.Due(now) {
			continue
		}

		ok, err := ent.el.EncodeTo(&m.msg, ent.dest.Address)
		if !ok && err == nil {
			// Placeholder without a source; not counted as due.
			continue
		}
		stats.Due++
		ent.el.markSent(now)
		if err != nil {
			// A getter produced an un-encodable value. The tick is
			// consumed; send errors below are logged by the client.
			m.logger.Log(log.Event{
				Timestamp: time.Now(),
				ClientID:  m.client.ID(),
				Category:  log.CategoryError,
				Address:   ent.dest.Address,
				Error:     err.Error(),
			})
			continue
		}
		if ent.dest.Multicast {
			err = m.client.SendMessageMulticast(ent.dest.IP, ent.dest.Port, &m.msg)
		} else {
			err = m.client.SendMessage(ent.dest.IP, ent.dest.Port, &m.msg)
		}
		if err == nil {
			stats.Sent++
		}
	}

	if stats.Due > 0 {
		m.logger.Log(log.Event{
			Timestamp: time.Now(),
			ClientID:  m.client.ID(),
			Category:  log.CategoryTick,
			Due:       stats.Due,
			Sent:      stats.Sent,
		})
	}
	return stats
}

// Send ships a one-off message through the manager's client.
func (m *Manager) Send(ip string, port uint16, addr string, args ...any) error {
	return m.client.Send(ip, port, addr, args...)
}

// SendMulticast ships a one-off message to a multicast group.
func (m *Manager) SendMulticast(group string, port uint16, addr string, args ...any) error {
	return m.client.SendMulticast(group, port, addr, args...)
}

// BeginBundle opens a bundle on the manager's client.
func (m *Manager) BeginBundle(tt wire.Timetag) error { return m.client.BeginBundle(tt) }

// AddBundle encodes one message into the open bundle.
func (m *Manager) AddBundle(addr string, args ...any) error {
	return m.client.AddBundle(addr, args...)
}

// EndBundle finalises the open bundle.
func (m *Manager) EndBundle() error { return m.client.EndBundle() }

// SendBundle ships the finalised bundle to ip:port.
func (m *Manager) SendBundle(ip string, port uint16) error {
	return m.client.SendBundle(ip, port)
}

// sortDestinations orders by Less, breaking the unicast/multicast tie so
// iteration order is deterministic.
func sortDestinations(dests []Destination) {
	sort.Slice(dests, func(i, j int) bool {
		if dests[i].Less(dests[j]) {
			return true
		}
		if dests[j].Less(dests[i]) {
			return false
		}
		return !dests[i].Multicast && dests[j].Multicast
	})
}
