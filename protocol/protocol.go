// Package protocol implements the line-oriented text protocol spoken by the
// trade device over its USB serial link.
//
// Every message is one line of ASCII terminated by a newline. The first word
// is the command token, the rest of the line its arguments:
//
//	Host -> device:  LIST_POKEMON
//	Device -> host:  POKEMON_LIST_START
//	Device -> host:  POKEMON 0 PIKA 25
//	Device -> host:  POKEMON 3 SPECIES_ID_7 7
//	Device -> host:  POKEMON_LIST_END
//	Host -> device:  SELECT_POKEMON 0
//	Device -> host:  ACK_SELECT 0
//	Host -> device:  INITIATE_TRADE
//	Device -> host:  ACK_INITIATE MASTER
//
// The device also emits unsolicited STATUS, INFO and ERROR lines at any time.
// Anything it sends that is not part of the vocabulary is passed through as
// an unrecognized line.
package protocol

// Newline terminates every outbound command.
const Newline = "\n"

// MaxLineLength is the longest command line the device buffers (its command
// buffer is 128 bytes including the terminator).
const MaxLineLength = 127

// Outbound command tokens (host -> device).
const (
	CmdListPokemon   = "LIST_POKEMON"
	CmdSelectPokemon = "SELECT_POKEMON"
	CmdInitiateTrade = "INITIATE_TRADE"
	CmdGetStatus     = "GET_STATUS"
	CmdCancelTrade   = "CANCEL_TRADE"
)

// Inbound response tokens (device -> host).
const (
	RespListStart   = "POKEMON_LIST_START"
	RespPokemon     = "POKEMON"
	RespListEnd     = "POKEMON_LIST_END"
	RespAckSelect   = "ACK_SELECT"
	RespAckInitiate = "ACK_INITIATE"
	RespAckCancel   = "ACK_CANCEL"
	RespStatus      = "STATUS"
	RespError       = "ERROR"
	RespInfo        = "INFO"
)

// Role is the link-cable role requested when initiating a trade.
type Role string

// Roles understood by INITIATE_TRADE. RoleDefault sends no argument and lets
// the device pick (it defaults to master).
const (
	RoleDefault Role = ""
	RoleMaster  Role = "MASTER"
	RoleSlave   Role = "SLAVE"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleDefault, RoleMaster, RoleSlave:
		return true
	}
	return false
}
