package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrUnknownAction marks a frame whose action tag is not part of the
	// protocol. The reader logs and drops these.
	ErrUnknownAction = errors.New("unknown action")
	// ErrMissingKey marks a frame lacking a key its action requires.
	ErrMissingKey = errors.New("missing key")
)

// rawFrame covers the superset of client frame keys. Pointers distinguish
// absent keys from zero values.
type rawFrame struct {
	Action *string `json:"action"`
	Name   *string `json:"name"`
	Turn   *int    `json:"turn"`
	Move   *int    `json:"move"`
}

// ParseClientFrame decodes one client frame. Malformed JSON, a missing
// action, missing required keys, and unknown actions all return errors; the
// connection reader logs them at warning and keeps reading.
func ParseClientFrame(data []byte) (ClientFrame, error) {
	var raw rawFrame
	if err := json.Unmarshal(data, &raw); err != nil {
		return ClientFrame{}, fmt.Errorf("cannot decode as JSON: %w", err)
	}
	if raw.Action == nil {
		return ClientFrame{}, fmt.Errorf("%w: action", ErrMissingKey)
	}

	switch action := Action(*raw.Action); action {
	case ActionLogon:
		if raw.Name == nil {
			return ClientFrame{}, fmt.Errorf("%w: name (for logon)", ErrMissingKey)
		}
		return ClientFrame{Action: ActionLogon, Name: *raw.Name}, nil

	case ActionStandby, ActionBotRequest, ActionSurrender, ActionQuit:
		return ClientFrame{Action: action}, nil

	case ActionMove:
		if raw.Turn == nil {
			return ClientFrame{}, fmt.Errorf("%w: turn (for move)", ErrMissingKey)
		}
		if raw.Move == nil {
			return ClientFrame{}, fmt.Errorf("%w: move (for move)", ErrMissingKey)
		}
		return ClientFrame{Action: ActionMove, Turn: *raw.Turn, Move: *raw.Move}, nil

	default:
		return ClientFrame{}, fmt.Errorf("%w: %q", ErrUnknownAction, *raw.Action)
	}
}
