package serial

import (
	"errors"
	"fmt"
	"sync"

	bugst "go.bug.st/serial"
)

// PortablePort implements Port on top of go.bug.st/serial. It works on every
// platform that library supports and is the fallback when termios is not
// available.
type PortablePort struct {
	port      bugst.Port
	config    Config
	done      chan struct{}
	closeOnce sync.Once
	writeMu   sync.Mutex
}

// OpenPortable opens cfg.Device with go.bug.st/serial, 8N1, using
// cfg.ReadTimeout as the per-read timeout.
func OpenPortable(cfg Config) (Port, error) {
	cfg = cfg.withDefaults()
	if cfg.Device == "" {
		return nil, ErrNoDevice
	}
	p, err := bugst.Open(cfg.Device, &bugst.Mode{
		BaudRate: cfg.BaudRate,
		DataBits: 8,
		Parity:   bugst.NoParity,
		StopBits: bugst.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Device, err)
	}
	if err := p.SetReadTimeout(cfg.ReadTimeout); err != nil {
		p.Close()
		return nil, fmt.Errorf("set read timeout: %w", err)
	}
	return &PortablePort{
		port:   p,
		config: cfg,
		done:   make(chan struct{}),
	}, nil
}

// WriteLine writes a line followed by newline.
func (p *PortablePort) WriteLine(line string, newline string) error {
	select {
	case <-p.done:
		return ErrClosed
	default:
	}
	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	_, err := p.port.Write([]byte(line + newline))
	return err
}

// ReadLinesLoop reads until the port fails or is closed. A read that times
// out with no data simply starts the next wait.
func (p *PortablePort) ReadLinesLoop(onLine func(string), onError func(error)) {
	buf := make([]byte, 1024)
	sp := splitter{delim: p.config.Delimiter}
	for {
		select {
		case <-p.done:
			return
		default:
		}

		n, err := p.port.Read(buf)
		if err != nil {
			if !p.closed() {
				var perr *bugst.PortError
				if errors.As(err, &perr) && perr.Code() == bugst.PortClosed {
					return
				}
				onError(err)
			}
			return
		}
		if n == 0 {
			continue
		}
		for _, line := range sp.feed(buf[:n]) {
			onLine(line)
		}
	}
}

func (p *PortablePort) closed() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// Close closes the port. Safe to call multiple times.
func (p *PortablePort) Close() error {
	var err error
	p.closeOnce.Do(func() {
		close(p.done)
		err = p.port.Close()
	})
	return err
}
