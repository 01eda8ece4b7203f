package arena

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/tlau/rpsduel/internal/game"
)

// MoveSubmission is one entry on the judge intake: who submitted, and the
// gesture or special terminator they submitted.
type MoveSubmission struct {
	From       *game.Participant
	Submission game.Submission
}

// Judge is the turn-resolution coordinator: a serial loop pairing the two
// submissions of each turn, applying the game rules, and instructing both
// sessions how to advance.
type Judge struct {
	logger *log.Logger
	intake chan MoveSubmission
}

// NewJudge builds a judge.
func NewJudge(logger *log.Logger) *Judge {
	return &Judge{
		logger: logger.WithPrefix("judge"),
		intake: make(chan MoveSubmission, intakeBuffer),
	}
}

// Submit delivers a submission to the judge. The send completes before
// Submit returns; nothing is fire-and-forget.
func (j *Judge) Submit(ctx context.Context, from *game.Participant, s game.Submission) error {
	select {
	case j.intake <- MoveSubmission{From: from, Submission: s}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run consumes submissions serially until ctx is cancelled. The judge never
// blocks on a session queue: commands are posted bounded-loss.
func (j *Judge) Run(ctx context.Context) error {
	// One entry per active game at most: the first mover of the turn,
	// keyed by submitter UID.
	outstanding := make(map[string]game.Submission)

	for {
		var sub MoveSubmission
		select {
		case <-ctx.Done():
			return ctx.Err()
		case sub = <-j.intake:
		}

		user := sub.From
		if user.Dropped() {
			// Residual submission from a torn-down session; guard
			// against it lest the judge be brought down.
			j.logger.Warn("submission from dropped participant, ignored", "participant", user.String())
			continue
		}

		opponent := user.Opponent()
		if opponent == nil {
			j.logger.Warn("submission from unpaired participant, ignored", "participant", user.String())
			continue
		}

		g := user.Game()
		if g == nil {
			j.logger.Warn("paired participant has no game, ignored", "participant", user.String())
			continue
		}

		if opponent.Dropped() {
			// The opponent vanished without a farewell; end the
			// game in the submitter's favour.
			j.logger.Warn("opponent has been dropped, forcing game end",
				"participant", user.String(), "opponent", opponent.String())
			g.SetOutcome(user, game.SpecialLeave)
			delete(outstanding, opponent.UID)
			user.PostCommand(game.Command{Action: game.CmdEndGame})
			continue
		}

		theirs, ok := outstanding[opponent.UID]
		if !ok {
			// First mover of the turn.
			outstanding[user.UID] = sub.Submission
			continue
		}
		delete(outstanding, opponent.UID)

		// Normalise to the game's fixed (user1, user2) order.
		u1, u2 := user, opponent
		m1, m2 := sub.Submission, theirs
		if !g.P1().Equal(u1) {
			u1, u2 = u2, u1
			m1, m2 = m2, m1
		}

		switch {
		case m1.IsSpecial():
			g.SetOutcome(u2, m1.Special)
			u2.PostCommand(game.Command{Action: game.CmdEndGame})
		case m2.IsSpecial():
			g.SetOutcome(u1, m2.Special)
			u1.PostCommand(game.Command{Action: game.CmdEndGame})
		default:
			g.Turn(m1.Gesture, m2.Gesture)
			j.logger.Debug("turn resolved", "game", g.String(),
				"move1", m1.Gesture.String(), "move2", m2.Gesture.String())
			if w := g.Winner(); w != nil {
				j.logger.Info("game won", "winner", w.String(), "game", g.String())
			}
			u1.PostCommand(game.Command{Action: game.CmdEndTurn})
			u2.PostCommand(game.Command{Action: game.CmdEndTurn})
		}
	}
}
