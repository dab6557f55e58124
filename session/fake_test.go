package session

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/luhtfiimanal/go-poketrader/serial"
)

// fakePort is an in-memory serial.Port. Lines written to it are recorded and
// handed to respond; whatever respond returns is delivered to the reader.
type fakePort struct {
	mu       sync.Mutex
	written  []string
	writeErr error
	respond  func(cmd string) []string

	incoming  chan string
	failures  chan error
	closed    chan struct{}
	closeOnce sync.Once
}

func newFakePort(respond func(string) []string) *fakePort {
	return &fakePort{
		respond:  respond,
		incoming: make(chan string, 1024),
		failures: make(chan error, 1),
		closed:   make(chan struct{}),
	}
}

func (p *fakePort) WriteLine(line, newline string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	select {
	case <-p.closed:
		return serial.ErrClosed
	default:
	}
	if p.writeErr != nil {
		return p.writeErr
	}
	p.written = append(p.written, line)
	if p.respond != nil {
		for _, r := range p.respond(line) {
			p.incoming <- r + newline
		}
	}
	return nil
}

func (p *fakePort) ReadLinesLoop(onLine func(string), onError func(error)) {
	for {
		select {
		case <-p.closed:
			return
		case err := <-p.failures:
			onError(err)
			return
		case line := <-p.incoming:
			onLine(line)
		}
	}
}

func (p *fakePort) Close() error {
	p.closeOnce.Do(func() { close(p.closed) })
	return nil
}

// emit queues an unsolicited line from the device.
func (p *fakePort) emit(lines ...string) {
	for _, l := range lines {
		p.incoming <- l
	}
}

// fail makes the read loop report err and stop.
func (p *fakePort) fail(err error) {
	p.failures <- err
}

func (p *fakePort) setWriteErr(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.writeErr = err
}

func (p *fakePort) Written() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.written...)
}

func (p *fakePort) isClosed() bool {
	select {
	case <-p.closed:
		return true
	default:
		return false
	}
}

type storedPokemon struct {
	name    string
	species int
}

// device answers commands the way the trade firmware does.
type device struct {
	mu       sync.Mutex
	storage  map[int]storedPokemon
	selected int
	state    string
}

func newDevice(pokemon map[int]storedPokemon) *device {
	if pokemon == nil {
		pokemon = map[int]storedPokemon{}
	}
	return &device{storage: pokemon, selected: -1, state: "IDLE"}
}

func (d *device) respond(line string) []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	cmd, args, _ := strings.Cut(strings.TrimSpace(line), " ")
	switch cmd {
	case "LIST_POKEMON":
		out := []string{"POKEMON_LIST_START"}
		if len(d.storage) == 0 {
			out = append(out, "INFO No Pokemon in storage.")
		}
		indices := make([]int, 0, len(d.storage))
		for i := range d.storage {
			indices = append(indices, i)
		}
		sort.Ints(indices)
		for _, i := range indices {
			p := d.storage[i]
			name := p.name
			if name == "" {
				name = fmt.Sprintf("SPECIES_ID_%d", p.species)
			}
			out = append(out, fmt.Sprintf("POKEMON %d %s %d", i, name, p.species))
		}
		return append(out, "POKEMON_LIST_END")
	case "SELECT_POKEMON":
		idx, err := strconv.Atoi(args)
		if err != nil {
			return []string{"ERROR Missing or invalid index for SELECT_POKEMON command."}
		}
		if _, ok := d.storage[idx]; !ok {
			return []string{fmt.Sprintf("ERROR Pokemon not found or invalid at index %d", idx)}
		}
		d.selected = idx
		return []string{fmt.Sprintf("ACK_SELECT %d", idx)}
	case "INITIATE_TRADE":
		role := "MASTER"
		if args == "SLAVE" {
			role = "SLAVE"
		}
		d.state = "WAITING_FOR_PARTNER"
		return []string{"ACK_INITIATE " + role}
	case "GET_STATUS":
		return []string{fmt.Sprintf("STATUS %s Trade state is %s", d.state, strings.ToLower(d.state))}
	case "CANCEL_TRADE":
		d.state = "IDLE"
		return []string{"ACK_CANCEL Trade cancelled or reset."}
	default:
		return []string{"ERROR Unknown command: " + cmd}
	}
}

// fakeOpener returns an Opener handing out port, or failing with err.
func fakeOpener(port *fakePort, err error) (serial.Opener, *[]serial.Config) {
	var opened []serial.Config
	return func(cfg serial.Config) (serial.Port, error) {
		opened = append(opened, cfg)
		if err != nil {
			return nil, err
		}
		return port, nil
	}, &opened
}

var errUnplugged = errors.New("device unplugged")
