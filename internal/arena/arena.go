// Package arena holds the coordination engine: per-connection session state
// machines, autonomous bot sessions, and the two singleton coordinators
// (matchmaker and judge) that maintain the pairing and per-turn ordering
// invariants. Each coordinator is a goroutine owning a private intake
// channel; sessions reach them through handles on the Arena.
package arena

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"

	"github.com/tlau/rpsduel/internal/game"
)

// Timings collects every deadline and pacing pause the engine uses. The
// pauses exist for client animation cadence and may be tuned; the defaults
// are the observed protocol timing.
type Timings struct {
	// MoveTimeout is the per-turn deadline for a client move; exceeding
	// it records a Pass.
	MoveTimeout time.Duration
	// LivecheckTimeout bounds both the matchmaker's wait for a liveness
	// report and the session's ping round trip.
	LivecheckTimeout time.Duration
	// EndTurnPause is the pause between turns.
	EndTurnPause time.Duration
	// EndGamePause is the pause before the endgame frame.
	EndGamePause time.Duration
	// RetentionGrace is how long participant state is held after the
	// session exits, letting the judge drain residual submissions.
	RetentionGrace time.Duration
}

// DefaultTimings returns the production timings.
func DefaultTimings() Timings {
	return Timings{
		MoveTimeout:      10500 * time.Millisecond,
		LivecheckTimeout: 10 * time.Second,
		EndTurnPause:     2 * time.Second,
		EndGamePause:     500 * time.Millisecond,
		RetentionGrace:   30 * time.Second,
	}
}

// Arena wires the coordinators together and hands out sessions.
type Arena struct {
	logger     *log.Logger
	clock      quartz.Clock
	timings    Timings
	matchmaker *Matchmaker
	judge      *Judge
}

// New builds an arena. The clock is the single time source for every
// deadline and pause, so tests can drive it.
func New(logger *log.Logger, clock quartz.Clock, timings Timings) *Arena {
	a := &Arena{
		logger:  logger,
		clock:   clock,
		timings: timings,
	}
	a.judge = NewJudge(logger)
	a.matchmaker = NewMatchmaker(logger, clock, timings, a.spawnBot)
	return a
}

// Run starts the matchmaker and judge loops and blocks until ctx is
// cancelled.
func (a *Arena) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.matchmaker.Run(ctx) })
	g.Go(func() error { return a.judge.Run(ctx) })
	return g.Wait()
}

// NewSession builds the session driver for one accepted connection.
func (a *Arena) NewSession(transport Transport) *Session {
	return &Session{
		transport:  transport,
		matchmaker: a.matchmaker,
		judge:      a.judge,
		clock:      a.clock,
		timings:    a.timings,
		logger:     a.logger.WithPrefix("session"),
	}
}

// Matchmaker returns the pairing coordinator.
func (a *Arena) Matchmaker() *Matchmaker {
	return a.matchmaker
}

// Judge returns the turn-resolution coordinator.
func (a *Arena) Judge() *Judge {
	return a.judge
}

// spawnBot creates a bot participant for human and starts its session.
func (a *Arena) spawnBot(ctx context.Context, human *game.Participant) *game.Participant {
	bot := game.NewBot(randomBotName(), human)
	a.logger.Info("spawning bot", "bot", bot.String(), "for", human.String())
	go RunBot(ctx, bot, a.judge, a.logger.WithPrefix("bot"))
	return bot
}

// sleep waits for d on the given clock, returning early if ctx is done.
func sleep(ctx context.Context, clock quartz.Clock, d time.Duration) {
	if d <= 0 {
		return
	}
	done := make(chan struct{})
	timer := clock.AfterFunc(d, func() { close(done) })
	defer timer.Stop()
	select {
	case <-done:
	case <-ctx.Done():
	}
}
