package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"github.com/oscpub/oscpub-go/pkg/discovery"
	"github.com/oscpub/oscpub-go/pkg/log"
	"github.com/oscpub/oscpub-go/pkg/publish"
	"github.com/oscpub/oscpub-go/pkg/transport"
	"github.com/oscpub/oscpub-go/pkg/version"
)

// defaultTickRate is the post-loop frequency when "start" is given no rate.
const defaultTickRate = 100.0

// console handles the interactive command loop. One-off sends go through a
// dedicated transport client so they never race the post loop, which drives
// the manager's own client from its goroutine.
type console struct {
	manager *publish.Manager
	sender  *transport.Client
	rl      *readline.Instance

	// Post loop control
	loopCtx     context.Context
	loopCancel  context.CancelFunc
	loopRunning bool
}

func newConsole(manager *publish.Manager, logger log.Logger) (*console, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "osc> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	return &console{
		manager: manager,
		sender:  transport.NewClient(transport.Config{Logger: logger}),
		rl:      rl,
	}, nil
}

// Run starts the interactive command loop.
func (c *console) Run(ctx context.Context, cancel context.CancelFunc) {
	defer c.rl.Close()
	defer c.stopLoop()

	c.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := c.rl.Readline()
		if err != nil {
			// EOF or interrupt
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(c.rl.Stdout(), "Exiting...")
			cancel()
			return
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		parts := strings.Fields(input)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "help", "?":
			c.printHelp()

		case "send", "s":
			c.cmdSend(args)

		case "publish", "p":
			c.cmdPublish(args)

		case "rate":
			c.cmdRate(args)

		case "interval":
			c.cmdInterval(args)

		case "unpublish":
			c.cmdUnpublish(args)

		case "list", "ls":
			c.cmdList()

		case "post":
			c.cmdPost()

		case "start":
			c.cmdStart(args)

		case "stop":
			c.cmdStop()

		case "clear":
			c.manager.Clear()

		case "port":
			c.cmdPort(args)

		case "discover":
			c.cmdDiscover(args)

		case "version":
			fmt.Fprintln(c.rl.Stdout(), version.String())

		case "exit", "quit", "q":
			cancel()
			return

		default:
			fmt.Fprintf(c.rl.Stderr(), "Unknown command: %s (try 'help')\n", cmd)
		}
	}
}

func (c *console) cmdSend(args []string) {
	dest, values, err := c.parseDestination(args)
	if err != nil {
		fmt.Fprintf(c.rl.Stderr(), "send: %v\n", err)
		return
	}
	if dest.Multicast {
		err = c.sender.SendMulticast(dest.IP, dest.Port, dest.Address, values...)
	} else {
		err = c.sender.Send(dest.IP, dest.Port, dest.Address, values...)
	}
	if err != nil {
		fmt.Fprintf(c.rl.Stderr(), "send: %v\n", err)
	}
}

func (c *console) cmdPublish(args []string) {
	dest, values, err := c.parseDestination(args)
	if err != nil {
		fmt.Fprintf(c.rl.Stderr(), "publish: %v\n", err)
		return
	}
	if dest.Multicast {
		_, err = c.manager.PublishMulticast(dest.IP, dest.Port, dest.Address, values...)
	} else {
		_, err = c.manager.Publish(dest.IP, dest.Port, dest.Address, values...)
	}
	if err != nil {
		fmt.Fprintf(c.rl.Stderr(), "publish: %v\n", err)
		return
	}
	fmt.Fprintf(c.rl.Stdout(), "Publishing %s\n", dest)
}

func (c *console) cmdRate(args []string) {
	dest, rest, err := c.parseDestinationOnly(args)
	if err != nil || len(rest) != 1 {
		fmt.Fprintln(c.rl.Stderr(), "Usage: rate [-m] <ip> <port> <address> <fps>")
		return
	}
	fps, err := strconv.ParseFloat(rest[0], 32)
	if err != nil || fps <= 0 {
		fmt.Fprintf(c.rl.Stderr(), "rate: invalid frame rate %q\n", rest[0])
		return
	}
	el, err := c.registeredElement(dest)
	if err != nil {
		fmt.Fprintf(c.rl.Stderr(), "rate: %v\n", err)
		return
	}
	el.SetFrameRate(float32(fps))
}

func (c *console) cmdInterval(args []string) {
	dest, rest, err := c.parseDestinationOnly(args)
	if err != nil || len(rest) != 1 {
		fmt.Fprintln(c.rl.Stderr(), "Usage: interval [-m] <ip> <port> <address> <msec>")
		return
	}
	msec, err := strconv.ParseFloat(rest[0], 32)
	if err != nil || msec <= 0 {
		fmt.Fprintf(c.rl.Stderr(), "interval: invalid interval %q\n", rest[0])
		return
	}
	el, err := c.registeredElement(dest)
	if err != nil {
		fmt.Fprintf(c.rl.Stderr(), "interval: %v\n", err)
		return
	}
	el.SetIntervalMsec(float32(msec))
}

func (c *console) cmdUnpublish(args []string) {
	dest, rest, err := c.parseDestinationOnly(args)
	if err != nil || len(rest) != 0 {
		fmt.Fprintln(c.rl.Stderr(), "Usage: unpublish [-m] <ip> <port> <address>")
		return
	}
	if err := c.manager.Unpublish(dest); err != nil {
		fmt.Fprintf(c.rl.Stderr(), "unpublish: %v\n", err)
	}
}

func (c *console) cmdList() {
	dests := c.manager.Destinations()
	if len(dests) == 0 {
		fmt.Fprintln(c.rl.Stdout(), "No publishers registered")
		return
	}
	for _, dest := range dests {
		el := c.manager.ElementRef(dest)
		fmt.Fprintf(c.rl.Stdout(), "  %s  every %d us\n", dest, el.IntervalUsec())
	}
}

func (c *console) cmdPost() {
	if c.loopRunning {
		fmt.Fprintln(c.rl.Stderr(), "Post loop is running; stop it before ticking manually")
		return
	}
	stats := c.manager.Post()
	fmt.Fprintf(c.rl.Stdout(), "Due %d, sent %d\n", stats.Due, stats.Sent)
}

func (c *console) cmdStart(args []string) {
	if c.loopRunning {
		fmt.Fprintln(c.rl.Stderr(), "Post loop already running")
		return
	}
	rate := defaultTickRate
	if len(args) > 0 {
		parsed, err := strconv.ParseFloat(args[0], 64)
		if err != nil || parsed <= 0 {
			fmt.Fprintf(c.rl.Stderr(), "start: invalid tick rate %q\n", args[0])
			return
		}
		rate = parsed
	}

	c.loopCtx, c.loopCancel = context.WithCancel(context.Background())
	c.loopRunning = true

	interval := time.Duration(float64(time.Second) / rate)
	go func(ctx context.Context) {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.manager.Post()
			}
		}
	}(c.loopCtx)

	fmt.Fprintf(c.rl.Stdout(), "Post loop started at %.1f Hz\n", rate)
}

func (c *console) cmdStop() {
	if !c.loopRunning {
		fmt.Fprintln(c.rl.Stderr(), "Post loop is not running")
		return
	}
	c.stopLoop()
	fmt.Fprintln(c.rl.Stdout(), "Post loop stopped")
}

func (c *console) stopLoop() {
	if c.loopCancel != nil {
		c.loopCancel()
		c.loopCancel = nil
	}
	c.loopRunning = false
}

func (c *console) cmdPort(args []string) {
	if len(args) == 0 {
		port, err := c.manager.LocalPort()
		if err != nil {
			fmt.Fprintf(c.rl.Stderr(), "port: %v\n", err)
			return
		}
		fmt.Fprintf(c.rl.Stdout(), "Local port %d\n", port)
		return
	}
	port, err := strconv.ParseUint(args[0], 10, 16)
	if err != nil {
		fmt.Fprintf(c.rl.Stderr(), "port: invalid port %q\n", args[0])
		return
	}
	c.manager.SetLocalPort(uint16(port))
	c.sender.SetLocalPort(uint16(port))
}

func (c *console) cmdDiscover(args []string) {
	timeout := 3 * time.Second
	if len(args) > 0 {
		secs, err := strconv.Atoi(args[0])
		if err != nil || secs <= 0 {
			fmt.Fprintf(c.rl.Stderr(), "discover: invalid timeout %q\n", args[0])
			return
		}
		timeout = time.Duration(secs) * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	browser := discovery.NewBrowser(discovery.BrowserConfig{})
	endpoints, err := browser.Browse(ctx)
	if err != nil {
		fmt.Fprintf(c.rl.Stderr(), "discover: %v\n", err)
		return
	}

	found := 0
	for ep := range endpoints {
		found++
		fmt.Fprintf(c.rl.Stdout(), "  %s  %s:%d  %v\n", ep.InstanceName, ep.Host, ep.Port, ep.Addresses)
	}
	if found == 0 {
		fmt.Fprintln(c.rl.Stdout(), "No endpoints found")
	}
}

// registeredElement looks up dest without inserting a placeholder.
func (c *console) registeredElement(dest publish.Destination) (*publish.Element, error) {
	for _, d := range c.manager.Destinations() {
		if d.Equal(dest) {
			return c.manager.ElementRef(dest), nil
		}
	}
	return nil, publish.ErrNotPublished
}

// parseDestination parses "[-m] <ip> <port> <address> [values...]" and
// returns the destination plus the parsed trailing values.
func (c *console) parseDestination(args []string) (publish.Destination, []any, error) {
	dest, rest, err := c.parseDestinationOnly(args)
	if err != nil {
		return dest, nil, err
	}
	values := make([]any, 0, len(rest))
	for _, tok := range rest {
		values = append(values, parseValue(tok))
	}
	return dest, values, nil
}

// parseDestinationOnly parses "[-m] <ip> <port> <address>" and returns the
// remaining tokens untouched.
func (c *console) parseDestinationOnly(args []string) (publish.Destination, []string, error) {
	multicast := false
	if len(args) > 0 && args[0] == "-m" {
		multicast = true
		args = args[1:]
	}
	if len(args) < 3 {
		return publish.Destination{}, nil, fmt.Errorf("expected <ip> <port> <address>")
	}
	port, err := strconv.ParseUint(args[1], 10, 16)
	if err != nil {
		return publish.Destination{}, nil, fmt.Errorf("invalid port %q", args[1])
	}
	if !strings.HasPrefix(args[2], "/") {
		return publish.Destination{}, nil, fmt.Errorf("address %q must start with '/'", args[2])
	}
	if multicast {
		return publish.NewMulticastDestination(args[0], uint16(port), args[2]), args[3:], nil
	}
	return publish.NewDestination(args[0], uint16(port), args[2]), args[3:], nil
}

// parseValue infers int, float, bool, or string from a console token.
func parseValue(tok string) any {
	if n, err := strconv.ParseInt(tok, 10, 32); err == nil {
		return int32(n)
	}
	if f, err := strconv.ParseFloat(tok, 32); err == nil {
		return float32(f)
	}
	if tok == "true" || tok == "false" {
		return tok == "true"
	}
	return tok
}

func (c *console) printHelp() {
	fmt.Fprintln(c.rl.Stdout(), `Commands:
  send [-m] <ip> <port> <address> [values...]     Send one message now
  publish [-m] <ip> <port> <address> <values...>  Register a periodic publisher
  rate [-m] <ip> <port> <address> <fps>           Set publisher frame rate
  interval [-m] <ip> <port> <address> <msec>      Set publisher interval
  unpublish [-m] <ip> <port> <address>            Remove a publisher
  list                                            List registered publishers
  post                                            Run one scheduling tick
  start [hz]                                      Run the post loop (default 100 Hz)
  stop                                            Stop the post loop
  clear                                           Remove all publishers
  port [n]                                        Show or set the local send port
  discover [secs]                                 Browse for OSC endpoints via mDNS
  version                                         Show version
  help, ?                                         Show this help
  exit, quit                                      Leave the console`)
}
