package protocol

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCommandFormatting(t *testing.T) {
	tests := []struct {
		name     string
		cmd      Command
		expected string
	}{
		{"ListPokemon", NewListPokemonCommand(), "LIST_POKEMON"},
		{"SelectPokemon", NewSelectPokemonCommand(0), "SELECT_POKEMON 0"},
		{"SelectPokemon 17", NewSelectPokemonCommand(17), "SELECT_POKEMON 17"},
		{"InitiateTrade", NewInitiateTradeCommand(RoleDefault), "INITIATE_TRADE"},
		{"InitiateTrade master", NewInitiateTradeCommand(RoleMaster), "INITIATE_TRADE MASTER"},
		{"InitiateTrade slave", NewInitiateTradeCommand(RoleSlave), "INITIATE_TRADE SLAVE"},
		{"GetStatus", NewGetStatusCommand(), "GET_STATUS"},
		{"CancelTrade", NewCancelTradeCommand(), "CANCEL_TRADE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, tt.cmd.Format())
			require.Equal(t, tt.expected+"\n", tt.cmd.FormatLine())
			require.LessOrEqual(t, len(tt.cmd.Format()), MaxLineLength)
		})
	}
}

func TestRoleValid(t *testing.T) {
	require.True(t, RoleDefault.Valid())
	require.True(t, RoleMaster.Valid())
	require.True(t, RoleSlave.Valid())
	require.False(t, Role("master").Valid())
}

func TestParseEntity(t *testing.T) {
	tests := []struct {
		line    string
		index   int
		name    string
		species string
	}{
		{"POKEMON 0 PIKA 25", 0, "PIKA", "25"},
		{"POKEMON 19 SPECIES_ID_7 7", 19, "SPECIES_ID_7", "7"},
		{"POKEMON 3 MR MIME 122", 3, "MR MIME", "122"},
		{"POKEMON 4 BIG OLD SNORLAX 143", 4, "BIG OLD SNORLAX", "143"},
		{"POKEMON 5  EXTRA  SPACES 1", 5, "EXTRA  SPACES", "1"},
		{"POKEMON 2 PIKA 25\r", 2, "PIKA", "25"},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			ev, err := Parse(tt.line)
			require.NoError(t, err)
			require.Equal(t, EventEntity, ev.Kind)
			require.Equal(t, tt.index, ev.Index)
			require.True(t, ev.HasIndex)
			require.Equal(t, tt.name, ev.Name)
			require.Equal(t, tt.species, ev.SpeciesID)
		})
	}
}

// Generated lines: any single-word or space-separated name round-trips.
func TestParseEntityGenerated(t *testing.T) {
	names := []string{"A", "PIKA", "MR MIME", "FARFETCH'D", "NIDORAN F", "X Y Z"}
	for idx := 0; idx < 20; idx++ {
		for _, name := range names {
			species := fmt.Sprintf("%d", idx*7+1)
			line := fmt.Sprintf("POKEMON %d %s %s", idx, name, species)
			ev, err := Parse(line)
			require.NoError(t, err, line)
			require.Equal(t, idx, ev.Index, line)
			require.Equal(t, name, ev.Name, line)
			require.Equal(t, species, ev.SpeciesID, line)
		}
	}
}

func TestParseEntityErrors(t *testing.T) {
	tests := []struct {
		line string
		kind ParseErrorKind
	}{
		{"POKEMON", ErrKindMalformedEntity},
		{"POKEMON 0", ErrKindMalformedEntity},
		{"POKEMON 0 PIKA", ErrKindMalformedEntity},
		{"POKEMON x PIKA 25", ErrKindInvalidIndex},
		{"POKEMON -1 PIKA 25", ErrKindInvalidIndex},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			_, err := Parse(tt.line)
			var perr *ParseError
			require.True(t, errors.As(err, &perr), "got %v", err)
			require.Equal(t, tt.kind, perr.Kind)
			require.NotEmpty(t, perr.Error())
		})
	}
}

func TestParseResponses(t *testing.T) {
	tests := []struct {
		line string
		want Event
	}{
		{"POKEMON_LIST_START", Event{Kind: EventListStart, Raw: "POKEMON_LIST_START"}},
		{"POKEMON_LIST_END", Event{Kind: EventListEnd, Raw: "POKEMON_LIST_END"}},
		{"ACK_SELECT 0", Event{Kind: EventAckSelect, Raw: "ACK_SELECT 0", Text: "0", Index: 0, HasIndex: true}},
		{"ACK_SELECT ?", Event{Kind: EventAckSelect, Raw: "ACK_SELECT ?", Text: "?"}},
		{"ACK_INITIATE MASTER", Event{Kind: EventAckInitiate, Raw: "ACK_INITIATE MASTER", Text: "MASTER"}},
		{"ACK_CANCEL Trade cancelled or reset.", Event{Kind: EventAckCancel, Raw: "ACK_CANCEL Trade cancelled or reset.", Text: "Trade cancelled or reset."}},
		{"ACK_CANCEL", Event{Kind: EventAckCancel, Raw: "ACK_CANCEL"}},
		{"STATUS IDLE Waiting for trade", Event{Kind: EventStatus, Raw: "STATUS IDLE Waiting for trade", Text: "IDLE Waiting for trade", State: "IDLE", Message: "Waiting for trade"}},
		{"STATUS IDLE", Event{Kind: EventStatus, Raw: "STATUS IDLE", Text: "IDLE", State: "IDLE"}},
		{"ERROR Unknown command: FOO", Event{Kind: EventDeviceError, Raw: "ERROR Unknown command: FOO", Text: "Unknown command: FOO"}},
		{"INFO No Pokemon in storage.", Event{Kind: EventInfo, Raw: "INFO No Pokemon in storage.", Text: "No Pokemon in storage."}},
		{"DEBUG: Received command line: 'LIST_POKEMON'", Event{Kind: EventUnrecognized, Raw: "DEBUG: Received command line: 'LIST_POKEMON'", Text: "DEBUG: Received command line: 'LIST_POKEMON'"}},
		{"FORMAT: SELECT_POKEMON <index>", Event{Kind: EventUnrecognized, Raw: "FORMAT: SELECT_POKEMON <index>", Text: "FORMAT: SELECT_POKEMON <index>"}},
		{"status lowercase", Event{Kind: EventUnrecognized, Raw: "status lowercase", Text: "status lowercase"}},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := Parse(tt.line)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestParseEmptyLine(t *testing.T) {
	for _, line := range []string{"", "   ", "\r"} {
		_, err := Parse(line)
		var perr *ParseError
		require.ErrorAs(t, err, &perr)
		require.Equal(t, ErrKindEmptyLine, perr.Kind)
	}
}

func TestEventHelpers(t *testing.T) {
	require.True(t, Event{Kind: EventDeviceError}.IsError())
	require.False(t, Event{Kind: EventInfo}.IsError())
	require.Equal(t, "entity", EventEntity.String())
	require.Equal(t, "unknown", EventKind(99).String())
}
