package protocol

import (
	"strconv"
	"strings"
)

// Parse interprets one decoded line from the device. It is a pure function;
// list bookkeeping (clearing on start, placeholder on end) is the caller's job.
//
// A *ParseError is returned for blank lines and for POKEMON lines that do not
// carry an index, a name and a species id. Lines outside the vocabulary are
// not errors: they come back as EventUnrecognized.
func Parse(line string) (Event, error) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return Event{}, newEmptyLineError()
	}

	command, args, _ := strings.Cut(trimmed, " ")
	ev := Event{Raw: trimmed, Text: args}

	switch command {
	case RespListStart:
		ev.Kind = EventListStart
	case RespListEnd:
		ev.Kind = EventListEnd
	case RespPokemon:
		return parseEntity(trimmed, args)
	case RespAckSelect:
		ev.Kind = EventAckSelect
		if idx, err := strconv.Atoi(strings.TrimSpace(args)); err == nil {
			ev.Index = idx
			ev.HasIndex = true
		}
	case RespAckInitiate:
		ev.Kind = EventAckInitiate
	case RespAckCancel:
		ev.Kind = EventAckCancel
	case RespStatus:
		ev.Kind = EventStatus
		state, msg, _ := strings.Cut(args, " ")
		ev.State = state
		ev.Message = strings.TrimSpace(msg)
	case RespError:
		ev.Kind = EventDeviceError
	case RespInfo:
		ev.Kind = EventInfo
	default:
		ev.Kind = EventUnrecognized
		ev.Text = trimmed
	}
	return ev, nil
}

// parseEntity handles "POKEMON <index> <name> <speciesId>". The species id is
// the token after the last space so nicknames containing spaces survive.
func parseEntity(line, args string) (Event, error) {
	args = strings.TrimSpace(args)

	indexStr, rest, ok := strings.Cut(args, " ")
	if !ok {
		return Event{}, newMalformedEntityError(line, "expected <index> <name> <speciesId>")
	}
	rest = strings.TrimSpace(rest)
	last := strings.LastIndex(rest, " ")
	if last < 0 {
		return Event{}, newMalformedEntityError(line, "missing name or species id")
	}
	name := strings.TrimSpace(rest[:last])
	species := rest[last+1:]
	if name == "" || species == "" {
		return Event{}, newMalformedEntityError(line, "missing name or species id")
	}

	index, err := strconv.Atoi(indexStr)
	if err != nil || index < 0 {
		return Event{}, newInvalidIndexError(line, indexStr)
	}

	return Event{
		Kind:      EventEntity,
		Raw:       line,
		Text:      args,
		Index:     index,
		HasIndex:  true,
		Name:      name,
		SpeciesID: species,
	}, nil
}
