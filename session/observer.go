package session

import (
	"fmt"
	"sync"
	"time"
)

// State is the connection state of a Session.
type State int

// Connection states.
const (
	Disconnected State = iota
	Connected
)

// String returns "connected" or "disconnected".
func (s State) String() string {
	if s == Connected {
		return "connected"
	}
	return "disconnected"
}

// StatusMessage is a device-level message for the status pane.
type StatusMessage struct {
	Time    time.Time
	Text    string
	IsError bool
}

// Format renders the message as "[15:04:05] text".
func (m StatusMessage) Format() string {
	return fmt.Sprintf("[%s] %s", m.Time.Format(time.TimeOnly), m.Text)
}

// RawKind tags entries of the raw protocol log.
type RawKind int

// Raw log kinds.
const (
	RawInfo  RawKind = iota // local notes: connected, list finished
	RawSend                 // commands written to the device
	RawRecv                 // lines read from the device
	RawError                // parse, read and write failures
)

// String returns the tag shown in the raw log, e.g. "SEND".
func (k RawKind) String() string {
	switch k {
	case RawSend:
		return "SEND"
	case RawRecv:
		return "RECV"
	case RawError:
		return "ERROR"
	default:
		return "INFO"
	}
}

// RawEntry is one line of the raw protocol log.
type RawEntry struct {
	Time time.Time
	Kind RawKind
	Text string
}

// Format renders the entry as "[15:04:05] [SEND] LIST_POKEMON".
func (e RawEntry) Format() string {
	return fmt.Sprintf("[%s] [%s] %s", e.Time.Format(time.TimeOnly), e.Kind, e.Text)
}

// Observer receives everything a presentation layer needs to render a
// session. Methods are called with the session lock held: they must return
// quickly and must not call back into the Session.
type Observer interface {
	EntitiesChanged(entities []Entity)
	Status(msg StatusMessage)
	Raw(entry RawEntry)
	StateChanged(state State)
}

// ObserverFuncs adapts plain functions to Observer. Nil fields are skipped.
type ObserverFuncs struct {
	OnEntities func([]Entity)
	OnStatus   func(StatusMessage)
	OnRaw      func(RawEntry)
	OnState    func(State)
}

// EntitiesChanged calls OnEntities.
func (f ObserverFuncs) EntitiesChanged(entities []Entity) {
	if f.OnEntities != nil {
		f.OnEntities(entities)
	}
}

// Status calls OnStatus.
func (f ObserverFuncs) Status(msg StatusMessage) {
	if f.OnStatus != nil {
		f.OnStatus(msg)
	}
}

// Raw calls OnRaw.
func (f ObserverFuncs) Raw(entry RawEntry) {
	if f.OnRaw != nil {
		f.OnRaw(entry)
	}
}

// StateChanged calls OnState.
func (f ObserverFuncs) StateChanged(state State) {
	if f.OnState != nil {
		f.OnState(state)
	}
}

// Recorder is an Observer that keeps the latest list and bounded histories
// of status and raw log lines. It is safe for concurrent use.
type Recorder struct {
	mu       sync.Mutex
	limit    int
	entities []Entity
	status   []StatusMessage
	raw      []RawEntry
	states   []State
}

// NewRecorder keeps at most limit status and raw entries each; limit <= 0
// keeps everything.
func NewRecorder(limit int) *Recorder {
	return &Recorder{limit: limit}
}

// EntitiesChanged replaces the recorded list.
func (r *Recorder) EntitiesChanged(entities []Entity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entities = append([]Entity(nil), entities...)
}

// Status appends msg to the status history.
func (r *Recorder) Status(msg StatusMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status = trim(append(r.status, msg), r.limit)
}

// Raw appends entry to the raw history.
func (r *Recorder) Raw(entry RawEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.raw = trim(append(r.raw, entry), r.limit)
}

// StateChanged appends state to the state history.
func (r *Recorder) StateChanged(state State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = trim(append(r.states, state), r.limit)
}

// Entities returns a copy of the last published list.
func (r *Recorder) Entities() []Entity {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Entity(nil), r.entities...)
}

// StatusLog returns a copy of the status history.
func (r *Recorder) StatusLog() []StatusMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]StatusMessage(nil), r.status...)
}

// RawLog returns a copy of the raw log history.
func (r *Recorder) RawLog() []RawEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]RawEntry(nil), r.raw...)
}

// StateChanges returns every state transition seen, oldest first.
func (r *Recorder) StateChanges() []State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]State(nil), r.states...)
}

func trim[T any](s []T, limit int) []T {
	if limit > 0 && len(s) > limit {
		return append(s[:0:0], s[len(s)-limit:]...)
	}
	return s
}

type multiObserver []Observer

func (m multiObserver) EntitiesChanged(entities []Entity) {
	for _, o := range m {
		o.EntitiesChanged(entities)
	}
}

func (m multiObserver) Status(msg StatusMessage) {
	for _, o := range m {
		o.Status(msg)
	}
}

func (m multiObserver) Raw(entry RawEntry) {
	for _, o := range m {
		o.Raw(entry)
	}
}

func (m multiObserver) StateChanged(state State) {
	for _, o := range m {
		o.StateChanged(state)
	}
}

// Observers fans notifications out to several observers in order.
func Observers(obs ...Observer) Observer {
	return multiObserver(obs)
}
