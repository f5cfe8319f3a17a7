// oscconsole is an interactive console for sending and publishing OSC
// messages.
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/oscpub/oscpub-go/pkg/config"
	"github.com/oscpub/oscpub-go/pkg/log"
	"github.com/oscpub/oscpub-go/pkg/publish"
	"github.com/oscpub/oscpub-go/pkg/version"
)

const (
	exitSuccess      = 0
	exitCommandError = 1
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	var (
		localPort  uint64
		configPath string
		logPath    string
	)

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-h", "--help":
			printUsage()
			return exitSuccess
		case "-v", "--version":
			fmt.Println(version.String())
			return exitSuccess
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
		case "-c", "--config":
			i++
			if i >= len(args) {
				fmt.Fprintln(os.Stderr, "Missing value for --config")
				return exitCommandError
			}
			configPath = args[i]
		case "-l", "--log":
			i++
			if i >= len(args) {
				fmt.Fprintln(os.Stderr, "Missing value for --log")
				return exitCommandError
			}
			logPath = args[i]
		default:
			fmt.Fprintf(os.Stderr, "Unknown option: %s\n", args[i])
			printUsage()
			return exitCommandError
		}
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

	manager := publish.NewManager(publish.Config{
		LocalPort: uint16(localPort),
		Logger:    logger,
	})

	if configPath != "" {
		cfg, err := config.Load(configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			return exitCommandError
		}
		if err := cfg.Apply(manager); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to apply config: %v\n", err)
			return exitCommandError
		}
	}

	console, err := newConsole(manager, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start console: %v\n", err)
		return exitCommandError
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	console.Run(ctx, cancel)
	return exitSuccess
}

func printUsage() {
	fmt.Println(`oscconsole - interactive OSC send and publish console

Usage:
  oscconsole [options]

Options:
  -p, --local-port <n>  Bind the local send socket to port n
  -c, --config <file>   Load a YAML publisher config at startup
  -l, --log <file>      Append CBOR send events to file
  -h, --help            Show this help message
  -v, --version         Show version information`)
}
