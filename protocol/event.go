package protocol

// EventKind identifies what a device line means.
type EventKind int

const (
	// EventUnrecognized is any line outside the vocabulary; Text holds it verbatim.
	EventUnrecognized EventKind = iota
	// EventListStart begins a storage listing.
	EventListStart
	// EventEntity is one stored Pokémon.
	EventEntity
	// EventListEnd closes a storage listing.
	EventListEnd
	// EventAckSelect acknowledges SELECT_POKEMON.
	EventAckSelect
	// EventAckInitiate acknowledges INITIATE_TRADE; Text holds the role.
	EventAckInitiate
	// EventAckCancel acknowledges CANCEL_TRADE.
	EventAckCancel
	// EventStatus is a device status report.
	EventStatus
	// EventDeviceError is an error reported by the device.
	EventDeviceError
	// EventInfo is an informational device message.
	EventInfo
)

var eventKindNames = [...]string{
	EventUnrecognized: "unrecognized",
	EventListStart:    "list_start",
	EventEntity:       "entity",
	EventListEnd:      "list_end",
	EventAckSelect:    "ack_select",
	EventAckInitiate:  "ack_initiate",
	EventAckCancel:    "ack_cancel",
	EventStatus:       "status",
	EventDeviceError:  "device_error",
	EventInfo:         "info",
}

// String returns the name of the kind, e.g. "list_start".
func (k EventKind) String() string {
	if int(k) >= 0 && int(k) < len(eventKindNames) {
		return eventKindNames[k]
	}
	return "unknown"
}

// Event is the structured form of one inbound line.
type Event struct {
	Kind EventKind

	// Raw is the full line as received.
	Raw string

	// Text is the argument string after the command token, or the whole
	// line for EventUnrecognized.
	Text string

	// EventEntity fields. Index is also set for EventAckSelect when the
	// device echoes a numeric index; HasIndex tells whether it did.
	Index     int
	HasIndex  bool
	Name      string
	SpeciesID string

	// EventStatus fields: the first word is the trade state, the rest the
	// human-readable message.
	State   string
	Message string
}

// IsError reports whether the event should be presented as an error.
func (e Event) IsError() bool {
	return e.Kind == EventDeviceError
}
