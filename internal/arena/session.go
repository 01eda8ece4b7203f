package arena

import (
	"context"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/tlau/rpsduel/internal/game"
	"github.com/tlau/rpsduel/internal/protocol"
)

// Session drives one human client through the lifecycle
// Logon -> WaitOpponent -> PlayGame -> {WaitOpponent | exit}, translating
// client frames into judge submissions and coordinator commands into client
// frames.
type Session struct {
	transport  Transport
	matchmaker *Matchmaker
	judge      *Judge
	clock      quartz.Clock
	timings    Timings
	logger     *log.Logger

	me *game.Participant
}

// recvResult classifies the outcome of a receive helper.
type recvResult int

const (
	recvOK recvResult = iota
	recvClosed
	recvTimeout
	recvInterrupted
)

// Run executes the session until the client disconnects, quits, or fails a
// liveness probe. It owns the transport and closes it on the way out.
func (s *Session) Run(ctx context.Context) {
	me, ok := s.logon(ctx)
	if !ok {
		_ = s.transport.Close()
		return
	}
	s.me = me
	s.logger = s.logger.With("participant", me.String())
	s.logger.Info("logged on")

	defer func() {
		_ = s.transport.Close()
		me.MarkDropped()
		s.logger.Info("dropped")
		// Hold the participant a while longer so the judge can drain
		// residual submissions against a still-valid dropped flag.
		sleep(ctx, s.clock, s.timings.RetentionGrace)
	}()

	for {
		if !s.waitForOpponent(ctx) {
			return
		}
		if !s.playGame(ctx) {
			return
		}
	}
}

// logon waits for a logon frame with a nonempty name and builds the
// participant.
func (s *Session) logon(ctx context.Context) (*game.Participant, bool) {
	frame, res := s.awaitFrame(ctx, protocol.ActionLogon, nil,
		func(f protocol.ClientFrame) bool { return f.Name != "" })
	if res != recvOK {
		return nil, false
	}

	if len(frame.Name) > game.MaxNameBytes {
		s.logger.Warn("name too long, truncating", "name", frame.Name, "max_bytes", game.MaxNameBytes)
	}
	return game.NewParticipant(frame.Name), true
}

// waitForOpponent publishes a pair request and waits for the matchmaker's
// match command, answering livechecks and forwarding a bot request in the
// meantime. It reports whether the session was paired.
func (s *Session) waitForOpponent(ctx context.Context) bool {
	if _, res := s.awaitFrame(ctx, protocol.ActionStandby, nil, nil); res != recvOK {
		return false
	}

	// Request a human opponent.
	if err := s.matchmaker.Request(ctx, PairRequest{Participant: s.me}); err != nil {
		return false
	}

	// Until the match command arrives, keep watching the socket as well:
	// a bot_request frame turns into a second pair request. The watch
	// ends with the match, which is all the cancellation the listener
	// needs.
	for {
		select {
		case <-ctx.Done():
			return false

		case frame, ok := <-s.transport.Frames():
			if !ok {
				s.logger.Info("connection closed")
				return false
			}
			if frame.Action != protocol.ActionBotRequest {
				s.logger.Warn("ignoring unexpected action", "expected", protocol.ActionBotRequest, "got", frame.Action)
				continue
			}
			if err := s.matchmaker.Request(ctx, PairRequest{Participant: s.me, WantBot: true}); err != nil {
				return false
			}

		case cmd := <-s.me.Commands():
			switch cmd.Action {
			case game.CmdLivecheck:
				if !s.answerLivecheck(ctx) {
					return false
				}
			case game.CmdMatch:
				return true
			default:
				s.logger.Warn("ignoring unexpected command", "expected", game.CmdMatch, "got", cmd.Action)
			}
		}
	}
}

// answerLivecheck pings the client and reports the result to the
// matchmaker. A failed ping ends the session.
func (s *Session) answerLivecheck(ctx context.Context) bool {
	pingCtx, cancel := context.WithTimeout(ctx, s.timings.LivecheckTimeout)
	err := s.transport.Ping(pingCtx)
	cancel()

	live := err == nil
	_ = s.matchmaker.ReportLive(ctx, LiveReport{Participant: s.me, Live: live})
	if !live {
		s.logger.Info("connection closed", "ping_error", err)
		return false
	}
	return true
}

// playGame runs one game against the current opponent. It reports whether
// the session may continue with another game.
func (s *Session) playGame(ctx context.Context) bool {
	me := s.me
	them := me.Opponent()
	g := me.Game()

	if err := s.transport.Send(protocol.NewMatchFrame(them.Name)); err != nil {
		s.submitLeave(ctx)
		return false
	}

	for {
		turn := g.TurnCount()
		deadline, timer := s.after(s.timings.MoveTimeout)
		frame, res := s.awaitFrame(ctx, protocol.ActionMove, deadline,
			func(f protocol.ClientFrame) bool { return f.Turn == turn },
			protocol.ActionSurrender, protocol.ActionQuit)
		timer.Stop()

		var move game.Gesture
		switch res {
		case recvClosed:
			s.submitLeave(ctx)
			return false
		case recvTimeout:
			move = game.Pass
		case recvInterrupted:
			if frame.Action == protocol.ActionQuit {
				s.logger.Info("quit")
				s.submitLeave(ctx)
				_ = s.transport.Close()
				return false
			}
			s.logger.Info("surrendered", "to", them.String())
			_ = s.judge.Submit(ctx, me, game.SubmitSpecial(game.SpecialSurrender))
			return true
		default:
			move = game.GestureFromWire(frame.Move)
		}

		if err := s.judge.Submit(ctx, me, game.SubmitGesture(move)); err != nil {
			return false
		}

		cmd, ok := s.awaitCommand(ctx, game.CmdEndTurn, game.CmdEndGame)
		if !ok {
			return false
		}

		if cmd.Action == game.CmdEndTurn {
			if !s.sendEndTurn(ctx, g) {
				return false
			}
		}

		if w := g.Winner(); w != nil {
			// Give the client a beat before the verdict lands.
			sleep(ctx, s.clock, s.timings.EndGamePause)
			winner := protocol.WinnerThem
			if w.Equal(me) {
				winner = protocol.WinnerMe
			}
			_ = s.transport.Send(protocol.NewEndGameFrame(winner, string(g.Special())))
			me.ClearPairing()
			return true
		}

		// Give clients time to show this turn's result.
		sleep(ctx, s.clock, s.timings.EndTurnPause)
	}
}

// sendEndTurn relays the last resolved turn to the client.
func (s *Session) sendEndTurn(ctx context.Context, g *game.Game) bool {
	last, ok := g.LastTurn()
	if !ok {
		return true
	}

	winner := protocol.WinnerNone
	if last.Winner != nil {
		if last.Winner.Equal(s.me) {
			winner = protocol.WinnerMe
		} else {
			winner = protocol.WinnerThem
		}
	}

	them := s.me.Opponent()
	frame := protocol.NewEndTurnFrame(winner, last.Gestures[them.UID].Wire())
	if err := s.transport.Send(frame); err != nil {
		s.submitLeave(ctx)
		return false
	}
	return true
}

// submitLeave tells the judge this participant is gone, best effort.
func (s *Session) submitLeave(ctx context.Context) {
	if err := s.judge.Submit(ctx, s.me, game.SubmitSpecial(game.SpecialLeave)); err != nil {
		s.logger.Debug("leave submission not delivered", "error", err)
	}
}

// awaitFrame waits for a frame with the wanted action. Frames with other
// actions are logged and skipped unless the action is one of the
// interrupters, which return immediately. A frame failing the validity test
// is skipped too. deadline may be nil (wait forever); once it fires the
// result is recvTimeout.
func (s *Session) awaitFrame(ctx context.Context, want protocol.Action, deadline <-chan struct{},
	valid func(protocol.ClientFrame) bool, interrupters ...protocol.Action) (protocol.ClientFrame, recvResult) {
	for {
		select {
		case <-ctx.Done():
			return protocol.ClientFrame{}, recvClosed

		case <-deadline:
			s.logger.Debug("expected action timed out", "expected", want)
			return protocol.ClientFrame{}, recvTimeout

		case frame, ok := <-s.transport.Frames():
			if !ok {
				s.logger.Info("connection closed")
				return protocol.ClientFrame{}, recvClosed
			}
			if slices.Contains(interrupters, frame.Action) {
				s.logger.Debug("interrupted", "expected", want, "got", frame.Action)
				return frame, recvInterrupted
			}
			if frame.Action != want {
				s.logger.Warn("ignoring unexpected action", "expected", want, "got", frame.Action)
				continue
			}
			if valid != nil && !valid(frame) {
				s.logger.Warn("frame failed validity test, ignored", "action", frame.Action)
				continue
			}
			return frame, recvOK
		}
	}
}

// awaitCommand waits on the session command queue for the wanted action or
// one of the interrupters, skipping anything else with a warning.
func (s *Session) awaitCommand(ctx context.Context, want game.CommandAction, interrupters ...game.CommandAction) (game.Command, bool) {
	for {
		select {
		case <-ctx.Done():
			return game.Command{}, false
		case cmd := <-s.me.Commands():
			if slices.Contains(interrupters, cmd.Action) {
				s.logger.Debug("interrupted", "expected", want, "got", cmd.Action)
				return cmd, true
			}
			if cmd.Action != want {
				s.logger.Warn("ignoring unexpected command", "expected", want, "got", cmd.Action)
				continue
			}
			return cmd, true
		}
	}
}

// after arms a one-shot deadline on the session clock.
func (s *Session) after(d time.Duration) (<-chan struct{}, *quartz.Timer) {
	fired := make(chan struct{})
	timer := s.clock.AfterFunc(d, func() { close(fired) })
	return fired, timer
}
