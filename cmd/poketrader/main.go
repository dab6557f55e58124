// Command poketrader lists and trades the Pokémon stored on a link-cable
// trade device attached over USB serial.
//
// Usage:
//
//	poketrader                      terminal UI
//	poketrader -plain -port /dev/ttyACM0
//	poketrader -list-ports
//
// Settings are read from ~/.config/poketrader/config.toml (or -config,
// or $POKETRADER_CONFIG) and POKETRADER_* environment variables.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/luhtfiimanal/go-poketrader/internal/config"
	"github.com/luhtfiimanal/go-poketrader/internal/logging"
	"github.com/luhtfiimanal/go-poketrader/internal/tui"
	"github.com/luhtfiimanal/go-poketrader/protocol"
	"github.com/luhtfiimanal/go-poketrader/serial"
	"github.com/luhtfiimanal/go-poketrader/session"
)

type options struct {
	configPath string
	port       string
	transport  string
	plain      bool
	listPorts  bool
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("poketrader", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.configPath, "config", "", "config file (default ~/.config/poketrader/config.toml)")
	fs.StringVar(&o.port, "port", "", "serial port to use, overrides serial.port")
	fs.StringVar(&o.transport, "transport", "", "serial transport: termios or portable")
	fs.BoolVar(&o.plain, "plain", false, "line-mode REPL instead of the terminal UI")
	fs.BoolVar(&o.listPorts, "list-ports", false, "print serial ports and exit")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if fs.NArg() > 0 {
		return o, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	return o, nil
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	opts, err := parseFlags(args, os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if opts.listPorts {
		if err := printPorts(os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		return 0
	}

	logOpts := logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format, File: cfg.Log.File}
	if !opts.plain && logOpts.File == "" {
		// the UI owns the terminal
		logOpts.File = defaultLogFile()
	}
	logger, closer, err := logging.Open(os.Stderr, logOpts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer closer.Close()

	open, err := serial.OpenerFor(cfg.Serial.Transport)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if opts.plain {
		return runPlain(ctx, cfg, open, logger)
	}
	return runTUI(cfg, open, logger)
}

func loadConfig(opts options) (config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return cfg, err
	}
	if opts.port != "" {
		cfg.Serial.Port = opts.port
	}
	if opts.transport != "" {
		cfg.Serial.Transport = opts.transport
		if err := cfg.Validate(); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

func sessionConfig(cfg config.Config, open serial.Opener, logger zerolog.Logger, obs session.Observer) session.Config {
	return session.Config{
		Serial:       cfg.SerialDefaults(),
		Open:         open,
		PollInterval: cfg.Session.PollInterval,
		QueueSize:    cfg.Session.QueueSize,
		TradeRole:    protocol.Role(cfg.Session.TradeRole),
		Logger:       &logger,
		Observer:     obs,
	}
}

func runTUI(cfg config.Config, open serial.Opener, logger zerolog.Logger) int {
	rec := session.NewRecorder(500)
	sess := session.New(sessionConfig(cfg, open, logger, rec))
	defer sess.Disconnect()

	model := tui.New(tui.Options{
		Session:      sess,
		Recorder:     rec,
		Port:         cfg.Serial.Port,
		PollInterval: cfg.Session.PollInterval,
	})
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		return 1
	}
	return 0
}

func runPlain(ctx context.Context, cfg config.Config, open serial.Opener, logger zerolog.Logger) int {
	le := NewLineEditor()
	defer le.Close()

	out := le.Output()
	sess := session.New(sessionConfig(cfg, open, logger, &printer{out: out}))
	defer sess.Disconnect()

	r := &repl{
		sess:        sess,
		out:         out,
		defaultPort: cfg.Serial.Port,
		listPorts:   serial.ListPorts,
	}
	if cfg.Serial.Port != "" {
		r.execute("connect " + cfg.Serial.Port)
	}
	runREPL(ctx, r, le)
	return 0
}

func printPorts(w io.Writer) error {
	ports, err := serial.ListPorts()
	if err != nil {
		return err
	}
	if len(ports) == 0 {
		fmt.Fprintln(w, "No serial ports found.")
	}
	for _, p := range ports {
		fmt.Fprintln(w, p.String())
	}
	return nil
}

func defaultLogFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "poketrader", "poketrader.log")
}
