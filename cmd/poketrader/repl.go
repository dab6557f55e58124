package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/luhtfiimanal/go-poketrader/serial"
	"github.com/luhtfiimanal/go-poketrader/session"
)

const replHelp = `Commands:
  ports              list serial ports
  connect [port]     open the link (default: configured port)
  disconnect         close the link
  list               ask the device for its storage
  show               print the last received storage list
  select <n>         highlight entry n of the list
  mark               mark the highlighted Pokémon for trade
  trade              initiate the trade
  cancel             cancel/reset the trade on the device
  status             request device status
  help               show this text
  quit               exit`

// printer is the session.Observer of the plain REPL: it writes the status
// and raw logs as they happen.
type printer struct {
	mu  sync.Mutex
	out io.Writer
}

func (p *printer) EntitiesChanged([]session.Entity) {}

func (p *printer) Status(msg session.StatusMessage) {
	p.println(msg.Format())
}

func (p *printer) Raw(e session.RawEntry) {
	p.println(e.Format())
}

// StateChanged is silent; connects and disconnects show in the raw log.
func (p *printer) StateChanged(session.State) {}

func (p *printer) println(s string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out, s)
}

// repl executes plain-mode commands against a Session.
type repl struct {
	sess        *session.Session
	out         io.Writer
	defaultPort string
	listPorts   func() ([]serial.PortInfo, error)
}

// execute runs one command line and reports whether the REPL should exit.
func (r *repl) execute(line string) (quit bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	var err error
	switch cmd {
	case "quit", "exit", ".quit":
		return true
	case "help", "?", ".help":
		fmt.Fprintln(r.out, replHelp)
	case "ports":
		err = r.printPorts()
	case "connect":
		port := r.defaultPort
		if len(args) > 0 {
			port = args[0]
		}
		err = r.sess.Connect(port)
	case "disconnect":
		r.sess.Disconnect()
	case "list", "refresh":
		err = r.sess.Refresh()
	case "show":
		r.printEntities()
	case "select":
		err = r.selectEntry(args)
	case "mark":
		err = r.sess.MarkForTrade()
	case "trade":
		err = r.sess.InitiateTrade()
	case "cancel":
		err = r.sess.CancelTrade()
	case "status":
		err = r.sess.GetStatus()
	default:
		fmt.Fprintf(r.out, "Unknown command %q. Type 'help' for a list.\n", cmd)
	}

	if err != nil {
		r.printError(err)
	}
	return false
}

func (r *repl) selectEntry(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: select <n>")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("select: %q is not a number", args[0])
	}
	if err := r.sess.Highlight(n); err != nil {
		return err
	}
	e, _, _ := r.sess.Highlighted()
	fmt.Fprintf(r.out, "Selected %s\n", e.Label())
	return nil
}

func (r *repl) printEntities() {
	entities := r.sess.Entities()
	if len(entities) == 0 {
		fmt.Fprintln(r.out, "No list received yet. Use 'list'.")
		return
	}
	marked, hasMarked := r.sess.MarkedIndex()
	for i, e := range entities {
		if e.Placeholder {
			fmt.Fprintln(r.out, e.Label())
			continue
		}
		flag := " "
		if hasMarked && e.Index == marked {
			flag = "*"
		}
		fmt.Fprintf(r.out, "%s%3d  %s\n", flag, i, e.Label())
	}
}

func (r *repl) printPorts() error {
	ports, err := r.listPorts()
	if err != nil {
		return err
	}
	if len(ports) == 0 {
		fmt.Fprintln(r.out, "No serial ports found.")
		return nil
	}
	for _, p := range ports {
		fmt.Fprintln(r.out, p.String())
	}
	return nil
}

func (r *repl) printError(err error) {
	switch {
	case session.IsUserActionError(err):
		fmt.Fprintln(r.out, err)
	case errors.Is(err, session.ErrNotConnected):
		// already in the raw log
	default:
		fmt.Fprintf(r.out, "Error: %v\n", err)
	}
}

// runREPL reads commands until quit or end of input. Device output is
// drained in the background for the lifetime of the loop.
func runREPL(ctx context.Context, r *repl, le *LineEditor) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go r.sess.Run(ctx)

	if le.IsInteractive() {
		fmt.Fprintln(r.out, "poketrader - type 'help' for commands")
	}
	for {
		line, err := le.GetLine(prompt(r.sess))
		if err != nil {
			if !errors.Is(err, io.EOF) {
				fmt.Fprintf(r.out, "Error: %v\n", err)
			}
			fmt.Fprintln(r.out)
			return
		}
		if r.execute(line) {
			return
		}
	}
}

func prompt(s *session.Session) string {
	if s.State() == session.Connected {
		return "[" + s.Port() + "] > "
	}
	return "[offline] > "
}
