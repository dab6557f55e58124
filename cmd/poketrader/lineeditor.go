package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ergochat/readline"
	"golang.org/x/term"
)

const (
	historyFileName = ".poketrader_history"
	historySize     = 500
)

// LineEditor reads REPL input. On a terminal it uses readline with
// persistent history; otherwise (piped input, Emacs comint) it reads plain
// lines and prints the prompt itself.
type LineEditor struct {
	interactive bool
	rl          *readline.Instance
	scanner     *bufio.Scanner
	out         io.Writer
}

// NewLineEditor picks the input mode for stdin.
func NewLineEditor() *LineEditor {
	interactive := term.IsTerminal(int(os.Stdin.Fd())) && os.Getenv("INSIDE_EMACS") == ""
	if !interactive {
		return newPlainLineEditor(os.Stdin, os.Stdout)
	}

	rl, err := readline.NewFromConfig(&readline.Config{
		HistoryFile:            filepath.Join(homeDir(), historyFileName),
		HistoryLimit:           historySize,
		DisableAutoSaveHistory: true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: readline init failed (%v), using basic input\n", err)
		return newPlainLineEditor(os.Stdin, os.Stdout)
	}
	return &LineEditor{interactive: true, rl: rl, out: os.Stdout}
}

func newPlainLineEditor(in io.Reader, out io.Writer) *LineEditor {
	return &LineEditor{scanner: bufio.NewScanner(in), out: out}
}

// GetLine reads one line. It returns io.EOF on Ctrl-D, Ctrl-C or end of
// input.
func (le *LineEditor) GetLine(prompt string) (string, error) {
	if !le.interactive {
		fmt.Fprint(le.out, prompt)
		if !le.scanner.Scan() {
			if err := le.scanner.Err(); err != nil {
				return "", err
			}
			return "", io.EOF
		}
		return le.scanner.Text(), nil
	}

	le.rl.SetPrompt(prompt)
	line, err := le.rl.Readline()
	if err != nil {
		if err == readline.ErrInterrupt {
			return "", io.EOF
		}
		return "", err
	}
	if trimmed := strings.TrimSpace(line); trimmed != "" {
		le.rl.SaveToHistory(trimmed)
	}
	return line, nil
}

// Output is where REPL output goes.
func (le *LineEditor) Output() io.Writer {
	return le.out
}

// Close saves history. Safe to call more than once.
func (le *LineEditor) Close() {
	if le.rl != nil {
		le.rl.Close()
		le.rl = nil
	}
}

// IsInteractive reports whether readline editing is active.
func (le *LineEditor) IsInteractive() bool {
	return le.interactive
}

func homeDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "."
}
