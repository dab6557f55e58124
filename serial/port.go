package serial

import (
	"bytes"
	"errors"
	"fmt"
	"time"
)

// Defaults used by the device link.
const (
	DefaultBaudRate    = 115200
	DefaultReadTimeout = 100 * time.Millisecond
	DefaultDelimiter   = "\n"
)

// Transport names accepted by OpenerFor.
const (
	TransportTermios  = "termios"
	TransportPortable = "portable"
)

var (
	// ErrClosed is returned when a closed port is used.
	ErrClosed = errors.New("serial port closed")

	// ErrNoDevice is returned when Config.Device is empty.
	ErrNoDevice = errors.New("no serial device given")

	// ErrUnsupportedBaud is returned for baud rates the transport cannot set.
	ErrUnsupportedBaud = errors.New("unsupported baud rate")

	// ErrNoTermios is returned by OpenTermios on hosts without the termios
	// transport.
	ErrNoTermios = errors.New("termios transport is only available on linux")
)

// Config holds configuration parameters for opening a serial port.
type Config struct {
	Device      string
	BaudRate    int
	Delimiter   string        // default "\n"
	ReadTimeout time.Duration // upper bound of a single wait for input
}

func (c Config) withDefaults() Config {
	if c.BaudRate == 0 {
		c.BaudRate = DefaultBaudRate
	}
	if c.Delimiter == "" {
		c.Delimiter = DefaultDelimiter
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = DefaultReadTimeout
	}
	return c
}

// Port is a line-oriented serial connection.
//
// ReadLinesLoop is meant to run on its own goroutine; Close may be called
// from any goroutine and makes ReadLinesLoop return without reporting an error.
type Port interface {
	WriteLine(line string, newline string) error
	ReadLinesLoop(onLine func(string), onError func(error))
	Close() error
}

// Opener opens a Port for a Config.
type Opener func(cfg Config) (Port, error)

// OpenDefault opens cfg with DefaultTransport.
func OpenDefault(cfg Config) (Port, error) {
	open, err := OpenerFor(DefaultTransport)
	if err != nil {
		return nil, err
	}
	return open(cfg)
}

// OpenerFor returns the Opener registered under name. An empty name selects
// DefaultTransport: termios on Linux, the portable transport elsewhere.
func OpenerFor(name string) (Opener, error) {
	if name == "" {
		name = DefaultTransport
	}
	switch name {
	case TransportTermios:
		return OpenTermios, nil
	case TransportPortable:
		return OpenPortable, nil
	default:
		return nil, fmt.Errorf("unknown transport %q", name)
	}
}

// splitter accumulates raw bytes and cuts complete lines at delim.
type splitter struct {
	delim string
	buf   []byte
}

func (s *splitter) feed(p []byte) []string {
	s.buf = append(s.buf, p...)
	var lines []string
	d := []byte(s.delim)
	for {
		idx := bytes.Index(s.buf, d)
		if idx < 0 {
			break
		}
		lines = append(lines, string(s.buf[:idx]))
		s.buf = s.buf[idx+len(d):]
	}
	if len(s.buf) == 0 {
		s.buf = nil
	}
	return lines
}
