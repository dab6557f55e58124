package protocol

import (
	"strconv"
)

// Command is an outbound request to the device.
type Command struct {
	Name string
	Args []string
}

// NewListPokemonCommand asks the device to dump its storage.
func NewListPokemonCommand() Command {
	return Command{Name: CmdListPokemon}
}

// NewSelectPokemonCommand marks the storage slot index as the one to offer.
func NewSelectPokemonCommand(index int) Command {
	return Command{Name: CmdSelectPokemon, Args: []string{strconv.Itoa(index)}}
}

// NewInitiateTradeCommand starts a link-cable trade session.
func NewInitiateTradeCommand(role Role) Command {
	if role == RoleDefault {
		return Command{Name: CmdInitiateTrade}
	}
	return Command{Name: CmdInitiateTrade, Args: []string{string(role)}}
}

// NewGetStatusCommand requests a STATUS line.
func NewGetStatusCommand() Command {
	return Command{Name: CmdGetStatus}
}

// NewCancelTradeCommand resets the device's trade state machine.
func NewCancelTradeCommand() Command {
	return Command{Name: CmdCancelTrade}
}

// Format returns the command text without the line terminator.
func (c Command) Format() string {
	s := c.Name
	for _, a := range c.Args {
		s += " " + a
	}
	return s
}

// FormatLine returns the command as it goes on the wire.
func (c Command) FormatLine() string {
	return c.Format() + Newline
}

// String implements fmt.Stringer.
func (c Command) String() string {
	return c.Format()
}
