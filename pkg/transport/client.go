package transport

import (
	"fmt"
	"net"
	"time"

	"github.com/google/uuid"

	"github.com/oscpub/oscpub-go/pkg/log"
	"github.com/oscpub/oscpub-go/pkg/wire"
)

// Config configures a Client.
type Config struct {
	// LocalPort is the UDP port to send from. 0 binds an ephemeral port.
	LocalPort uint16

	// Pool is the socket pool to draw from. Nil uses the process-wide
	// shared pool.
	Pool *ConnPool

	// Logger receives send events. Nil disables logging.
	Logger log.Logger
}

// Client assembles and ships OSC packets. It owns one encoder workspace and
// one scratch message; both are reused across calls, so a Client must only
// be driven from one goroutine at a time.
type Client struct {
	id        string
	localPort uint16
	pool      *ConnPool
	logger    log.Logger

	enc wire.Encoder
	msg wire.Message
}

// NewClient creates a client for the given config.
func NewClient(config Config) *Client {
	pool := config.Pool
	if pool == nil {
		pool = SharedPool()
	}
	return &Client{
		id:        uuid.NewString(),
		localPort: config.LocalPort,
		pool:      pool,
		logger:    log.OrNoop(config.Logger),
	}
}

// ID returns the client's UUID, as carried in its log events.
func (c *Client) ID() string { return c.id }

// SetLocalPort changes the local port used for subsequent sends.
func (c *Client) SetLocalPort(port uint16) { c.localPort = port }

// LocalPort returns the actual bound local port. For a client configured
// with port 0 this resolves the kernel-assigned ephemeral port, binding the
// socket if necessary.
func (c *Client) LocalPort() (uint16, error) {
	conn, err := c.pool.Get(c.localPort)
	if err != nil {
		return 0, err
	}
	return uint16(conn.LocalAddr().(*net.UDPAddr).Port), nil
}

// Send builds a message from addr and args and ships it to ip:port as one
// datagram.
func (c *Client) Send(ip string, port uint16, addr string, args ...any) error {
	c.msg.Init(addr)
	if err := c.msg.Push(args...); err != nil {
		return err
	}
	return c.SendMessage(ip, port, &c.msg)
}

// SendMessage encodes m and ships it to ip:port.
func (c *Client) SendMessage(ip string, port uint16, m *wire.Message) error {
	if err := c.enc.Init().Encode(m); err != nil {
		return err
	}
	return c.ship(ip, port, false, m)
}

// SendMulticast is Send routed to a multicast group address.
func (c *Client) SendMulticast(group string, port uint16, addr string, args ...any) error {
	c.msg.Init(addr)
	if err := c.msg.Push(args...); err != nil {
		return err
	}
	return c.SendMessageMulticast(group, port, &c.msg)
}

// SendMessageMulticast encodes m and ships it to the multicast group.
func (c *Client) SendMessageMulticast(group string, port uint16, m *wire.Message) error {
	if err := c.enc.Init().Encode(m); err != nil {
		return err
	}
	return c.ship(group, port, true, m)
}

// BeginBundle resets the encoder and opens a bundle with the given time
// tag. Follow with AddBundle calls, EndBundle, then SendBundle.
func (c *Client) BeginBundle(tt wire.Timetag) error {
	return c.enc.Init().BeginBundle(tt)
}

// AddBundle encodes one message into the open bundle.
func (c *Client) AddBundle(addr string, args ...any) error {
	c.msg.Init(addr)
	if err := c.msg.Push(args...); err != nil {
		return err
	}
	return c.enc.Encode(&c.msg)
}

// EndBundle finalises the open bundle.
func (c *Client) EndBundle() error {
	return c.enc.EndBundle()
}

// SendBundle ships the finalised bundle buffer to ip:port.
func (c *Client) SendBundle(ip string, port uint16) error {
	conn, err := c.pool.Get(c.localPort)
	if err != nil {
		c.logError("", err)
		return err
	}
	raddr, err := resolveAddr(ip, port)
	if err != nil {
		c.logError("", err)
		return err
	}
	if _, err := conn.WriteToUDP(c.enc.Data(), raddr); err != nil {
		err = fmt.Errorf("send bundle to %s: %w", raddr, err)
		c.logError(raddr.String(), err)
		return err
	}
	c.logger.Log(log.Event{
		Timestamp:  time.Now(),
		ClientID:   c.id,
		Category:   log.CategoryBundle,
		RemoteAddr: raddr.String(),
		PacketSize: c.enc.Size(),
	})
	return nil
}

// ship transmits the encoder buffer. m is only used for log metadata.
func (c *Client) ship(ip string, port uint16, multicast bool, m *wire.Message) error {
	conn, err := c.pool.Get(c.localPort)
	if err != nil {
		c.logError("", err)
		return err
	}
	raddr, err := resolveAddr(ip, port)
	if err != nil {
		c.logError("", err)
		return err
	}
	if _, err := conn.WriteToUDP(c.enc.Data(), raddr); err != nil {
		err = fmt.Errorf("send %s to %s: %w", m.Address, raddr, err)
		c.logError(raddr.String(), err)
		return err
	}
	c.logger.Log(log.Event{
		Timestamp:  time.Now(),
		ClientID:   c.id,
		Category:   log.CategorySend,
		RemoteAddr: raddr.String(),
		Address:    m.Address,
		ArgCount:   len(m.Arguments),
		PacketSize: c.enc.Size(),
		Multicast:  multicast,
	})
	return nil
}

func (c *Client) logError(remote string, err error) {
	c.logger.Log(log.Event{
		Timestamp:  time.Now(),
		ClientID:   c.id,
		Category:   log.CategoryError,
		RemoteAddr: remote,
		Error:      err.Error(),
	})
}

func resolveAddr(ip string, port uint16) (*net.UDPAddr, error) {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return nil, fmt.Errorf("invalid IP address %q", ip)
	}
	return &net.UDPAddr{IP: parsed, Port: int(port)}, nil
}
