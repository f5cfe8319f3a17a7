// oscsend is a CLI tool for sending one-off OSC messages over UDP.
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/oscpub/oscpub-go/pkg/log"
	"github.com/oscpub/oscpub-go/pkg/transport"
	"github.com/oscpub/oscpub-go/pkg/version"
	"github.com/oscpub/oscpub-go/pkg/wire"
)

const (
	exitSuccess      = 0
	exitCommandError = 1
	exitSendError    = 2
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	var (
		localPort uint64
		multicast bool
		bundle    bool
		logPath   string
	)

	rest := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-h", "--help":
			printUsage()
			return exitSuccess
		case "-v", "--version":
			fmt.Println(version.String())
			return exitSuccess
		case "-m", "--multicast":
			multicast = true
		case "-b", "--bundle":
			bundle = true
		case "-p", "--local-port":
			i++
			if i >= len(args) {
				fmt.Fprintln(os.Stderr, "Missing value for --local-port")
				return exitCommandError
			}
			port, err := strconv.ParseUint(args[i], 10, 16)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Invalid local port: %s\n", args[i])
				return exitCommandError
			}
			localPort = port
		case "-l", "--log":
			i++
			if i >= len(args) {
				fmt.Fprintln(os.Stderr, "Missing value for --log")
				return exitCommandError
			}
			logPath = args[i]
		default:
			if strings.HasPrefix(args[i], "-") {
				fmt.Fprintf(os.Stderr, "Unknown option: %s\n", args[i])
				printUsage()
				return exitCommandError
			}
			rest = append(rest, args[i])
		}
	}

	if len(rest) < 3 {
		printUsage()
		return exitCommandError
	}

	ip := rest[0]
	port, err := strconv.ParseUint(rest[1], 10, 16)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid port: %s\n", rest[1])
		return exitCommandError
	}

	var logger log.Logger
	if logPath != "" {
		fl, err := log.NewFileLogger(logPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
			return exitCommandError
		}
		defer fl.Close()
		logger = fl
	}

	client := transport.NewClient(transport.Config{
		LocalPort: uint16(localPort),
		Logger:    logger,
	})

	if bundle {
		return sendBundle(client, ip, uint16(port), rest[2:])
	}

	address := rest[2]
	if !strings.HasPrefix(address, "/") {
		fmt.Fprintf(os.Stderr, "OSC address %q must start with '/'\n", address)
		return exitCommandError
	}
	oscArgs, err := parseArguments(rest[3:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitCommandError
	}

	if multicast {
		err = client.SendMulticast(ip, uint16(port), address, oscArgs...)
	} else {
		err = client.Send(ip, uint16(port), address, oscArgs...)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Send failed: %v\n", err)
		return exitSendError
	}
	return exitSuccess
}

// sendBundle packs one message per address token into a single bundle
// datagram. Every token starting with '/' opens a new message; the tokens
// that follow are its arguments.
func sendBundle(client *transport.Client, ip string, port uint16, tokens []string) int {
	if len(tokens) == 0 || !strings.HasPrefix(tokens[0], "/") {
		fmt.Fprintln(os.Stderr, "Bundle mode needs at least one /address")
		return exitCommandError
	}

	if err := client.BeginBundle(wire.Immediately); err != nil {
		fmt.Fprintf(os.Stderr, "Bundle failed: %v\n", err)
		return exitSendError
	}
	for i := 0; i < len(tokens); {
		address := tokens[i]
		i++
		end := i
		for end < len(tokens) && !strings.HasPrefix(tokens[end], "/") {
			end++
		}
		oscArgs, err := parseArguments(tokens[i:end])
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return exitCommandError
		}
		if err := client.AddBundle(address, oscArgs...); err != nil {
			fmt.Fprintf(os.Stderr, "Bundle failed: %v\n", err)
			return exitSendError
		}
		i = end
	}
	if err := client.EndBundle(); err != nil {
		fmt.Fprintf(os.Stderr, "Bundle failed: %v\n", err)
		return exitSendError
	}
	if err := client.SendBundle(ip, port); err != nil {
		fmt.Fprintf(os.Stderr, "Send failed: %v\n", err)
		return exitSendError
	}
	return exitSuccess
}

// parseArguments converts command-line tokens into OSC argument values.
// Tokens may carry an explicit type prefix (int:5, float:2.5, string:hi);
// untyped tokens are inferred as int, float, bool, or string.
func parseArguments(tokens []string) ([]any, error) {
	args := make([]any, 0, len(tokens))
	for _, tok := range tokens {
		val, err := parseArgument(tok)
		if err != nil {
			return nil, err
		}
		args = append(args, val)
	}
	return args, nil
}

func parseArgument(tok string) (any, error) {
	if typ, raw, ok := strings.Cut(tok, ":"); ok {
		switch typ {
		case "int", "i":
			n, err := strconv.ParseInt(raw, 10, 32)
			if err != nil {
				return nil, fmt.Errorf("invalid int argument %q", raw)
			}
			return int32(n), nil
		case "int64", "h":
			n, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid int64 argument %q", raw)
			}
			return n, nil
		case "float", "f":
			f, err := strconv.ParseFloat(raw, 32)
			if err != nil {
				return nil, fmt.Errorf("invalid float argument %q", raw)
			}
			return float32(f), nil
		case "double", "d":
			f, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid double argument %q", raw)
			}
			return f, nil
		case "string", "s":
			return raw, nil
		case "bool", "b":
			b, err := strconv.ParseBool(raw)
			if err != nil {
				return nil, fmt.Errorf("invalid bool argument %q", raw)
			}
			return b, nil
		}
	}

	if n, err := strconv.ParseInt(tok, 10, 32); err == nil {
		return int32(n), nil
	}
	if f, err := strconv.ParseFloat(tok, 32); err == nil {
		return float32(f), nil
	}
	if tok == "true" || tok == "false" {
		return tok == "true", nil
	}
	return tok, nil
}

func printUsage() {
	fmt.Println(`oscsend - one-shot OSC message sender

Usage:
  oscsend [options] <ip> <port> <address> [args...]

Arguments are inferred as int, float, bool, or string, or typed
explicitly with a prefix: int:5, int64:9, float:2.5, double:2.5,
string:hello, bool:true.

In bundle mode (-b) everything after <port> is a sequence of messages:
each token starting with '/' begins a new message, the tokens after it
are that message's arguments. The whole bundle goes out as one datagram.

Options:
  -p, --local-port <n>  Bind the local send socket to port n
  -m, --multicast       Send to a multicast group address
  -b, --bundle          Send several messages as one OSC bundle
  -l, --log <file>      Append CBOR send events to file
  -h, --help            Show this help message
  -v, --version         Show version information

Examples:
  oscsend 127.0.0.1 9000 /mixer/gain float:0.8
  oscsend -m 239.0.0.1 9000 /status int:1 string:up
  oscsend -b 127.0.0.1 9000 /a 1 /b 2.5 hi`)
}
