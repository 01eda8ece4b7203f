package game

// CommandAction identifies a session command posted by a coordinator.
type CommandAction string

const (
	// CmdMatch pairs the session with an opponent (matchmaker -> session).
	CmdMatch CommandAction = "match"
	// CmdLivecheck asks a waiting session to prove its connection is alive.
	CmdLivecheck CommandAction = "livecheck"
	// CmdEndTurn signals that the judge resolved a turn.
	CmdEndTurn CommandAction = "endturn"
	// CmdEndGame signals that the game reached a terminal state.
	CmdEndGame CommandAction = "endgame"
	// CmdTerminate dismisses an unmatched bot session.
	CmdTerminate CommandAction = "terminate"
)

// Command travels over a participant's command queue.
type Command struct {
	Action CommandAction

	// Opponent is set for CmdMatch.
	Opponent *Participant
}

// Special is an early game terminator.
type Special string

const (
	SpecialLeave     Special = "leave"
	SpecialSurrender Special = "surrender"
)

// Submission is one participant's contribution to a turn as seen by the
// judge: either a gesture or a special terminator.
type Submission struct {
	Gesture Gesture
	Special Special
}

// SubmitGesture wraps a gesture for the judge intake.
func SubmitGesture(g Gesture) Submission {
	return Submission{Gesture: g}
}

// SubmitSpecial wraps a special terminator for the judge intake.
func SubmitSpecial(s Special) Submission {
	return Submission{Gesture: Pass, Special: s}
}

// IsSpecial reports whether the submission carries a terminator rather than
// a gesture.
func (s Submission) IsSpecial() bool {
	return s.Special != ""
}

func (s Submission) String() string {
	if s.IsSpecial() {
		return string(s.Special)
	}
	return s.Gesture.String()
}
