//go:build linux

package serial

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// DefaultTransport is the transport OpenerFor picks for an empty name.
const DefaultTransport = TransportTermios

// OpenTermios is an Opener for the raw termios transport.
func OpenTermios(cfg Config) (Port, error) {
	p, err := Open(cfg)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// TermiosPort provides low-latency, killable, line-oriented access to a Linux serial port.
// It is safe for concurrent use by multiple goroutines; reads are serialized,
// so a running ReadLinesLoop holds off ReadLine until the port is closed.
type TermiosPort struct {
	fd        int
	file      *os.File
	done      chan struct{}
	closeOnce sync.Once
	config    Config
	pipeR     int // self-pipe read fd
	pipeW     int // self-pipe write fd

	readMu  sync.Mutex
	sp      splitter
	pending []string // complete lines not yet handed out
}

// Open opens a serial port using the provided Config and returns a TermiosPort.
// The port is configured for raw, low-latency, non-buffered operation.
func Open(cfg Config) (*TermiosPort, error) {
	cfg = cfg.withDefaults()
	if cfg.Device == "" {
		return nil, ErrNoDevice
	}

	fd, err := syscall.Open(cfg.Device, syscall.O_RDWR|syscall.O_NOCTTY|syscall.O_NONBLOCK, 0666)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Device, err)
	}

	termios, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		syscall.Close(fd)
		return nil, fmt.Errorf("get termios: %w", err)
	}

	// Raw mode
	termios.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.PARMRK | unix.ISTRIP | unix.INLCR | unix.IGNCR | unix.ICRNL | unix.IXON
	termios.Oflag &^= unix.OPOST
	termios.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.ISIG | unix.IEXTEN
	termios.Cflag &^= unix.CSIZE | unix.PARENB
	termios.Cflag |= unix.CS8 | unix.CREAD | unix.CLOCAL

	baud, err := baudToUnix(cfg.BaudRate)
	if err != nil {
		syscall.Close(fd)
		return nil, err
	}
	termios.Cflag &^= unix.CBAUD
	termios.Cflag |= baud
	termios.Ispeed = baud
	termios.Ospeed = baud

	// VMIN=1, VTIME=0: reads return as soon as one byte is available
	termios.Cc[unix.VMIN] = 1
	termios.Cc[unix.VTIME] = 0

	if err := unix.IoctlSetTermios(fd, unix.TCSETS, termios); err != nil {
		syscall.Close(fd)
		return nil, fmt.Errorf("set termios: %w", err)
	}

	// Back to blocking mode now that config is done; waits go through poll.
	if err := syscall.SetNonblock(fd, false); err != nil {
		syscall.Close(fd)
		return nil, fmt.Errorf("set blocking: %w", err)
	}

	pipeFds := make([]int, 2)
	if err := unix.Pipe(pipeFds); err != nil {
		syscall.Close(fd)
		return nil, fmt.Errorf("pipe: %w", err)
	}

	return &TermiosPort{
		fd:     fd,
		file:   os.NewFile(uintptr(fd), cfg.Device),
		done:   make(chan struct{}),
		config: cfg,
		pipeR:  pipeFds[0],
		pipeW:  pipeFds[1],
		sp:     splitter{delim: cfg.Delimiter},
	}, nil
}

// WriteLine writes a line (with specified newline) to the serial port.
func (s *TermiosPort) WriteLine(line string, newline string) error {
	select {
	case <-s.done:
		return ErrClosed
	default:
	}
	_, err := s.file.WriteString(line + newline)
	return err
}

// wait blocks until the port is readable, the port is killed, or the read
// timeout expires. ready is false on timeout.
func (s *TermiosPort) wait() (ready bool, err error) {
	timeout := int(s.config.ReadTimeout / time.Millisecond)
	if timeout <= 0 {
		timeout = -1
	}
	pfd := []unix.PollFd{
		{Fd: int32(s.fd), Events: unix.POLLIN},
		{Fd: int32(s.pipeR), Events: unix.POLLIN},
	}
	n, err := unix.Poll(pfd, timeout)
	if err != nil {
		if errors.Is(err, unix.EINTR) {
			return false, nil
		}
		return false, err
	}
	select {
	case <-s.done:
		return false, ErrClosed
	default:
	}
	if pfd[1].Revents&unix.POLLIN != 0 {
		return false, ErrClosed
	}
	if n == 0 {
		return false, nil
	}
	// POLLHUP/POLLERR without data still go through read so the cause surfaces.
	return pfd[0].Revents&(unix.POLLIN|unix.POLLHUP|unix.POLLERR) != 0, nil
}

func (s *TermiosPort) read(buf []byte) (int, error) {
	n, err := s.file.Read(buf)
	if n == 0 && err == nil {
		err = io.EOF
	}
	return n, err
}

// ReadLine reads a single line from the serial port, blocking until a full
// line is received, the port is closed, or an error occurs. Lines that
// arrive in the same read are returned by the following calls.
func (s *TermiosPort) ReadLine() (string, error) {
	s.readMu.Lock()
	defer s.readMu.Unlock()

	buf := make([]byte, 4096)
	for len(s.pending) == 0 {
		ready, err := s.wait()
		if err != nil {
			return "", err
		}
		if !ready {
			continue
		}
		n, err := s.read(buf)
		if err != nil {
			return "", err
		}
		s.pending = s.sp.feed(buf[:n])
	}
	line := s.pending[0]
	s.pending = s.pending[1:]
	return line, nil
}

// ReadLinesLoop continuously reads lines from the serial port and invokes onLine for each complete line.
// If a read error occurs, onError is called once and the loop exits.
// Closing the port ends the loop without calling onError.
func (s *TermiosPort) ReadLinesLoop(onLine func(string), onError func(error)) {
	s.readMu.Lock()
	defer s.readMu.Unlock()

	for _, line := range s.pending {
		onLine(line)
	}
	s.pending = nil

	buf := make([]byte, 4096)
	for {
		ready, err := s.wait()
		if err != nil {
			if !errors.Is(err, ErrClosed) && !s.closed() {
				onError(err)
			}
			return
		}
		if !ready {
			continue
		}
		n, err := s.read(buf)
		if err != nil {
			if !s.closed() {
				onError(err)
			}
			return
		}
		for _, line := range s.sp.feed(buf[:n]) {
			onLine(line)
		}
	}
}

func (s *TermiosPort) closed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// Close closes the serial port and unblocks any ReadLine/ReadLinesLoop calls.
// Safe to call multiple times; subsequent calls are no-ops.
func (s *TermiosPort) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		// Wake up poll using self-pipe
		if s.pipeW > 0 {
			unix.Write(s.pipeW, []byte{1})
		}
		if s.file != nil {
			err = s.file.Close()
		}
		if s.pipeR > 0 {
			unix.Close(s.pipeR)
		}
		if s.pipeW > 0 {
			unix.Close(s.pipeW)
		}
	})
	return err
}

func baudToUnix(baud int) (uint32, error) {
	switch baud {
	case 9600:
		return unix.B9600, nil
	case 19200:
		return unix.B19200, nil
	case 38400:
		return unix.B38400, nil
	case 57600:
		return unix.B57600, nil
	case 115200:
		return unix.B115200, nil
	case 230400:
		return unix.B230400, nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrUnsupportedBaud, baud)
	}
}
