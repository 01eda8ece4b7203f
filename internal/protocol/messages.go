// Package protocol defines the JSON text frames exchanged with clients.
// Frames are parsed once at the connection boundary into tagged structs;
// everything past the boundary dispatches on the action tag.
package protocol

// Action identifies a frame on the wire.
type Action string

const (
	// Client -> Server
	ActionLogon      Action = "logon"
	ActionStandby    Action = "standby"
	ActionBotRequest Action = "bot_request"
	ActionMove       Action = "move"
	ActionSurrender  Action = "surrender"
	ActionQuit       Action = "quit"

	// Server -> Client
	ActionMatch   Action = "match"
	ActionEndTurn Action = "endturn"
	ActionEndGame Action = "endgame"
)

// Winner tags are relative to the receiving client.
const (
	WinnerMe   = "me"
	WinnerThem = "them"
	WinnerNone = ""
)

// ClientFrame is a decoded client -> server frame. Only the fields implied
// by Action are meaningful.
type ClientFrame struct {
	Action Action

	// Name is set for logon frames.
	Name string
	// Turn and Move are set for move frames.
	Turn int
	Move int
}

// ServerFrame is a server -> client frame ready for JSON encoding.
type ServerFrame interface {
	serverFrame()
}

// MatchFrame announces a pairing to the client.
type MatchFrame struct {
	Action   Action `json:"action"`
	Opponent string `json:"opponent"`
}

// EndTurnFrame reports the outcome of one turn.
type EndTurnFrame struct {
	Action       Action `json:"action"`
	Winner       string `json:"winner"`
	OpponentMove int    `json:"opponent_move"`
}

// EndGameFrame reports the end of a game. Reason is null unless the game
// ended early via leave or surrender.
type EndGameFrame struct {
	Action Action  `json:"action"`
	Winner string  `json:"winner"`
	Reason *string `json:"reason"`
}

func (MatchFrame) serverFrame()   {}
func (EndTurnFrame) serverFrame() {}
func (EndGameFrame) serverFrame() {}

// NewMatchFrame builds a match frame carrying the opponent's display name.
func NewMatchFrame(opponent string) MatchFrame {
	return MatchFrame{Action: ActionMatch, Opponent: opponent}
}

// NewEndTurnFrame builds an endturn frame. winner is one of the Winner
// tags.
func NewEndTurnFrame(winner string, opponentMove int) EndTurnFrame {
	return EndTurnFrame{Action: ActionEndTurn, Winner: winner, OpponentMove: opponentMove}
}

// NewEndGameFrame builds an endgame frame. reason is empty for a game won
// on score and serialises as null.
func NewEndGameFrame(winner, reason string) EndGameFrame {
	f := EndGameFrame{Action: ActionEndGame, Winner: winner}
	if reason != "" {
		f.Reason = &reason
	}
	return f
}
