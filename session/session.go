package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/luhtfiimanal/go-poketrader/internal/logging"
	"github.com/luhtfiimanal/go-poketrader/protocol"
	"github.com/luhtfiimanal/go-poketrader/serial"
)

// Defaults for Config fields left zero.
const (
	DefaultPollInterval = 100 * time.Millisecond
	DefaultQueueSize    = 256
)

// Config configures a Session.
type Config struct {
	// Serial is the template for every connection; Device is replaced by the
	// port passed to Connect.
	Serial serial.Config

	// Open opens the transport. Defaults to serial.OpenDefault.
	Open serial.Opener

	// PollInterval is how often Run drains the inbound queue.
	PollInterval time.Duration

	// QueueSize bounds the inbound queue between reader and controller.
	QueueSize int

	// TradeRole is sent with INITIATE_TRADE; empty lets the device decide.
	TradeRole protocol.Role

	Logger   *zerolog.Logger
	Observer Observer

	// Now stamps status and raw log entries. Defaults to time.Now.
	Now func() time.Time
}

func (c Config) withDefaults() Config {
	if c.Open == nil {
		c.Open = serial.OpenDefault
	}
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.QueueSize <= 0 {
		c.QueueSize = DefaultQueueSize
	}
	if c.Observer == nil {
		c.Observer = ObserverFuncs{}
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

// Session is the controller for one device link. It owns the connection,
// the entity list, the highlighted entity and the index marked for trade.
//
// All methods are safe for concurrent use.
type Session struct {
	mu  sync.Mutex
	cfg Config
	log zerolog.Logger
	obs Observer

	state State
	id    string
	port  string
	link  serial.Port
	inbox chan Inbound
	done  chan struct{}

	entities  []Entity
	highlight int // position in entities, -1 when none
	marked    int
	hasMarked bool

	lastErr error // I/O failure that ended the last connection
}

// New creates a disconnected Session.
func New(cfg Config) *Session {
	cfg = cfg.withDefaults()
	log := zerolog.Nop()
	if cfg.Logger != nil {
		log = *cfg.Logger
	}
	return &Session{
		cfg:       cfg,
		log:       logging.Component(log, "session"),
		obs:       cfg.Observer,
		highlight: -1,
	}
}

// Connect opens port and starts the line reader, then requests the entity
// list. On failure to open, the Session stays disconnected.
func (s *Session) Connect(port string) error {
	port = strings.TrimSpace(port)
	if port == "" {
		return newUserActionError("connect", "No serial port selected.")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Connected {
		return ErrAlreadyConnected
	}

	cfg := s.cfg.Serial
	cfg.Device = port
	link, err := s.cfg.Open(cfg)
	if err != nil {
		cerr := &ConnectionError{Port: port, Cause: err}
		s.raw(RawError, cerr.Error())
		s.log.Error().Err(err).Str("port", port).Msg("connect failed")
		return cerr
	}

	s.id = uuid.NewString()
	s.lastErr = nil
	s.port = port
	s.link = link
	s.inbox = make(chan Inbound, s.cfg.QueueSize)
	s.done = make(chan struct{})
	s.state = Connected

	s.log.Info().Str("session", s.id).Str("port", port).Msg("connected")
	s.raw(RawInfo, "Connected to "+port)
	s.obs.StateChanged(Connected)

	go readLines(link, s.inbox, s.done)

	return s.refresh()
}

// Disconnect closes the link. It is a no-op when already disconnected.
// Lines still queued from the closed link are discarded.
func (s *Session) Disconnect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disconnect()
}

func (s *Session) disconnect() {
	if s.state != Connected {
		return
	}
	close(s.done)
	if err := s.link.Close(); err != nil {
		s.log.Warn().Err(err).Str("session", s.id).Msg("close port")
	}
	s.link = nil
	s.inbox = nil
	s.done = nil
	s.highlight = -1
	s.marked, s.hasMarked = 0, false
	s.state = Disconnected

	s.log.Info().Str("session", s.id).Str("port", s.port).Msg("disconnected")
	s.raw(RawInfo, "Disconnected")
	s.obs.StateChanged(Disconnected)
}

func (s *Session) connectionLost(cause error) {
	s.lastErr = &IOError{Op: "read", Cause: cause}
	s.log.Error().Err(s.lastErr).Str("session", s.id).Msg("connection lost")
	s.raw(RawError, fmt.Sprintf("Serial reading error: %v", cause))
	s.status("Serial connection lost.", true)
	s.disconnect()
}

// send writes cmd. A write failure ends the session.
func (s *Session) send(cmd protocol.Command) error {
	text := cmd.Format()
	if s.state != Connected {
		s.raw(RawError, fmt.Sprintf("Cannot send '%s'. Not connected.", text))
		return ErrNotConnected
	}
	if err := s.link.WriteLine(text, protocol.Newline); err != nil {
		ioErr := &IOError{Op: "write", Command: text, Cause: err}
		s.lastErr = ioErr
		s.log.Error().Err(err).Str("session", s.id).Str("command", text).Msg("write failed")
		s.raw(RawError, fmt.Sprintf("Failed to send command '%s': %v", text, err))
		s.status(fmt.Sprintf("Failed to send command: %v", err), true)
		s.disconnect()
		return ioErr
	}
	s.log.Debug().Str("session", s.id).Str("command", text).Msg("sent")
	s.raw(RawSend, text)
	return nil
}

// Refresh clears the local list and asks the device for its storage.
func (s *Session) Refresh() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refresh()
}

func (s *Session) refresh() error {
	s.entities = nil
	s.highlight = -1
	s.notifyEntities()
	return s.send(protocol.NewListPokemonCommand())
}

// Highlight selects the entity at position pos of Entities for later
// marking. The placeholder row cannot be highlighted.
func (s *Session) Highlight(pos int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if pos < 0 || pos >= len(s.entities) {
		return newUserActionError("highlight", fmt.Sprintf("No Pokémon at position %d.", pos))
	}
	if s.entities[pos].Placeholder {
		return newUserActionError("highlight", "There is no Pokémon to select.")
	}
	s.highlight = pos
	return nil
}

// ClearHighlight drops the highlighted entity.
func (s *Session) ClearHighlight() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.highlight = -1
}

// MarkForTrade designates the highlighted entity as the one to trade. The
// marked index is only remembered once SELECT_POKEMON has been written.
func (s *Session) MarkForTrade() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.highlight < 0 {
		return newUserActionError("mark", "Please select a Pokémon from the list first.")
	}
	index := s.entities[s.highlight].Index
	if err := s.send(protocol.NewSelectPokemonCommand(index)); err != nil {
		return err
	}
	s.marked, s.hasMarked = index, true
	s.raw(RawInfo, fmt.Sprintf("Marked Pokémon at storage index %d for trade.", index))
	return nil
}

// InitiateTrade asks the device to start trading the marked entity.
func (s *Session) InitiateTrade() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.hasMarked {
		return newUserActionError("trade", "No Pokémon has been designated for trade.")
	}
	return s.send(protocol.NewInitiateTradeCommand(s.cfg.TradeRole))
}

// CancelTrade resets the device's trade state.
func (s *Session) CancelTrade() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.send(protocol.NewCancelTradeCommand())
}

// GetStatus requests a STATUS line from the device.
func (s *Session) GetStatus() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.send(protocol.NewGetStatusCommand())
}

// Drain handles every item queued by the line reader without blocking and
// returns how many it consumed. A connection-lost item disconnects the
// Session and ends the cycle; items after it are never looked at.
func (s *Session) Drain() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inbox == nil {
		return 0
	}
	// Bounded so a chatty device cannot pin the controller here.
	limit := cap(s.inbox) + 1
	n := 0
	for n < limit {
		select {
		case in, ok := <-s.inbox:
			if !ok {
				s.connectionLost(ErrReaderStopped)
				return n
			}
			n++
			if in.IsSentinel() {
				s.connectionLost(in.Err)
				return n
			}
			s.handleLine(in.Line)
		default:
			return n
		}
	}
	return n
}

// Run drains the queue every PollInterval until ctx is done.
func (s *Session) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.Drain()
		}
	}
}

func (s *Session) handleLine(line string) {
	s.raw(RawRecv, line)

	ev, err := protocol.Parse(line)
	if err != nil {
		s.raw(RawError, fmt.Sprintf("Could not parse line '%s': %v", line, err))
		s.log.Warn().Err(err).Str("session", s.id).Str("line", line).Msg("unparseable line")
		return
	}

	switch ev.Kind {
	case protocol.EventListStart:
		s.entities = nil
		s.highlight = -1
		s.raw(RawInfo, "Receiving Pokémon list...")
		s.notifyEntities()
	case protocol.EventEntity:
		s.dropPlaceholder()
		s.entities = append(s.entities, Entity{Index: ev.Index, Name: ev.Name, SpeciesID: ev.SpeciesID})
		s.notifyEntities()
	case protocol.EventListEnd:
		s.raw(RawInfo, "Pokémon list finished.")
		if len(s.entities) == 0 {
			s.entities = []Entity{placeholderEntity()}
		}
		s.notifyEntities()
	case protocol.EventAckSelect:
		s.status(fmt.Sprintf("Acknowledged: Pokémon at index %s selected for trade.", ev.Text), false)
	case protocol.EventAckInitiate:
		s.status(fmt.Sprintf("Acknowledged: Trade initiated (Role: %s).", ev.Text), false)
	case protocol.EventAckCancel:
		s.status("Acknowledged: Trade cancelled/reset on device.", false)
	case protocol.EventStatus:
		s.status("Device Status: "+ev.Text, false)
	case protocol.EventDeviceError:
		s.status("Device Error: "+ev.Text, true)
	case protocol.EventInfo:
		s.status("Device Info: "+ev.Text, false)
	default:
		s.status("Device: "+ev.Raw, false)
	}
}

// dropPlaceholder removes the "no entities" row when an entity arrives
// outside a listing.
func (s *Session) dropPlaceholder() {
	if len(s.entities) == 1 && s.entities[0].Placeholder {
		s.entities = nil
	}
}

func (s *Session) notifyEntities() {
	s.obs.EntitiesChanged(append([]Entity(nil), s.entities...))
}

func (s *Session) status(text string, isError bool) {
	s.obs.Status(StatusMessage{Time: s.cfg.Now(), Text: text, IsError: isError})
}

func (s *Session) raw(kind RawKind, text string) {
	s.obs.Raw(RawEntry{Time: s.cfg.Now(), Kind: kind, Text: text})
}

// State returns the connection state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ID returns the id of the current or last connection, empty before the
// first Connect.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// Port returns the port of the current or last connection.
func (s *Session) Port() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port
}

// Entities returns a copy of the entity list.
func (s *Session) Entities() []Entity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Entity(nil), s.entities...)
}

// Highlighted returns the highlighted entity and its position in Entities.
func (s *Session) Highlighted() (Entity, int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.highlight < 0 {
		return Entity{}, -1, false
	}
	return s.entities[s.highlight], s.highlight, true
}

// MarkedIndex returns the storage index marked for trade.
func (s *Session) MarkedIndex() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.marked, s.hasMarked
}

// Err returns the *IOError that ended the most recent connection, or nil if
// it was closed by Disconnect or is still open.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}
