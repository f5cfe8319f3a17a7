package transport

import (
	"fmt"
	"net"
	"sync"
)

// ConnPool maps local ports to live UDP sockets. Sockets are opened lazily
// on first use and kept for the life of the pool, so one binding is shared
// per local port. Port 0 binds an ephemeral port chosen by the kernel.
type ConnPool struct {
	mu    sync.Mutex
	conns map[uint16]*net.UDPConn
}

// NewConnPool creates an empty pool.
func NewConnPool() *ConnPool {
	return &ConnPool{conns: make(map[uint16]*net.UDPConn)}
}

// sharedPool is the process-wide pool used by clients that do not bring
// their own. It preserves the one-socket-per-local-port contract across
// independently constructed clients.
var sharedPool = NewConnPool()

// SharedPool returns the process-wide connection pool.
func SharedPool() *ConnPool { return sharedPool }

// Get returns the socket bound to the given local port, opening it if
// needed. A port that cannot be bound is a configuration error and fails
// every send until the conflict is resolved.
func (p *ConnPool) Get(localPort uint16) (*net.UDPConn, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if conn, ok := p.conns[localPort]; ok {
		return conn, nil
	}

	conn, err := net.ListenUDP("udp", &net.UDPAddr{Port: int(localPort)})
	if err != nil {
		return nil, fmt.Errorf("bind local port %d: %w", localPort, err)
	}
	p.conns[localPort] = conn
	return conn, nil
}

// Close closes every socket in the pool and empties it.
func (p *ConnPool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var firstErr error
	for port, conn := range p.conns {
		if err := conn.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(p.conns, port)
	}
	return firstErr
}
