package arena

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/tlau/rpsduel/internal/game"
)

// intakeBuffer sizes the coordinator intake channels. Producers block once
// it fills, which preserves per-producer FIFO order.
const intakeBuffer = 64

// PairRequest asks the matchmaker to find an opponent for Participant.
// WantBot requests a freshly spawned bot instead of waiting for a human.
type PairRequest struct {
	Participant *game.Participant
	WantBot     bool
}

// LiveReport is a session's answer to a livecheck command.
type LiveReport struct {
	Participant *game.Participant
	Live        bool
}

// BotSpawner creates a bot for the given human and starts its session,
// returning the bot participant.
type BotSpawner func(ctx context.Context, human *game.Participant) *game.Participant

// Matchmaker is the pairing coordinator: a serial loop holding at most one
// waiting participant, pairing each arrival against it after a liveness
// probe.
type Matchmaker struct {
	logger     *log.Logger
	clock      quartz.Clock
	timings    Timings
	requests   chan PairRequest
	livechecks chan LiveReport
	spawnBot   BotSpawner
}

// NewMatchmaker builds a matchmaker. spawnBot is injected so tests can
// observe and script bot creation.
func NewMatchmaker(logger *log.Logger, clock quartz.Clock, timings Timings, spawnBot BotSpawner) *Matchmaker {
	return &Matchmaker{
		logger:     logger.WithPrefix("matchmaker"),
		clock:      clock,
		timings:    timings,
		requests:   make(chan PairRequest, intakeBuffer),
		livechecks: make(chan LiveReport, intakeBuffer),
		spawnBot:   spawnBot,
	}
}

// Request submits a pair request to the intake queue.
func (m *Matchmaker) Request(ctx context.Context, req PairRequest) error {
	select {
	case m.requests <- req:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ReportLive delivers a session's livecheck answer.
func (m *Matchmaker) ReportLive(ctx context.Context, rep LiveReport) error {
	select {
	case m.livechecks <- rep:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run processes pair requests serially until ctx is cancelled. The waiting
// slot, the on-hold scratch, and the pairing assignments are all touched
// only from this goroutine.
func (m *Matchmaker) Run(ctx context.Context) error {
	var waiting *game.Participant

	for {
		// A bot left over from a previous cycle must not be paired;
		// kick it out before taking the next request.
		if waiting != nil && waiting.IsBot() {
			waiting.PostCommand(game.Command{Action: game.CmdTerminate})
			waiting = nil
		}

		var req PairRequest
		select {
		case <-ctx.Done():
			return ctx.Err()
		case req = <-m.requests:
		}

		newUser := req.Participant
		var onHold *game.Participant
		if req.WantBot {
			// The requester goes into the waiting slot (if not
			// already there) and the spawned bot becomes the
			// arrival to pair against them.
			if waiting == nil {
				waiting = newUser
			} else if !waiting.Equal(newUser) {
				onHold = waiting
				waiting = newUser
			}
			newUser = m.spawnBot(ctx, newUser)
		}

		if waiting != nil {
			live := m.probe(ctx, waiting)
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if !live {
				m.logger.Info("discarding unresponsive participant", "participant", waiting.String())
				waiting = newUser
				continue
			}

			u1, u2 := waiting, newUser
			g := game.NewGame(u1, u2)
			u1.SetPairing(u2, g)
			u2.SetPairing(u1, g)
			u1.PostCommand(game.Command{Action: game.CmdMatch, Opponent: u2})
			u2.PostCommand(game.Command{Action: game.CmdMatch, Opponent: u1})
			m.logger.Info("match made", "user1", u1.String(), "user2", u2.String())
			waiting = nil
			continue
		}
		waiting = newUser

		// Restore the on-hold participant, if any.
		if onHold != nil {
			waiting = onHold
		}
	}
}

// probe posts a livecheck to the waiting participant and waits for its
// report, ignoring reports from anyone else. Deadline or a negative report
// fails the probe.
func (m *Matchmaker) probe(ctx context.Context, waiting *game.Participant) bool {
	if !waiting.PostCommand(game.Command{Action: game.CmdLivecheck}) {
		m.logger.Warn("livecheck undeliverable, command queue full", "participant", waiting.String())
		return false
	}

	deadline := make(chan struct{})
	timer := m.clock.AfterFunc(m.timings.LivecheckTimeout, func() { close(deadline) })
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return false
		case <-deadline:
			// No answer in time; assume the connection dropped.
			return false
		case rep := <-m.livechecks:
			if !rep.Participant.Equal(waiting) {
				m.logger.Warn("livecheck answer from unexpected participant, ignored",
					"expected", waiting.String(), "got", rep.Participant.String())
				continue
			}
			return rep.Live
		}
	}
}
