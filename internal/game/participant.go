package game

import (
	"fmt"
	"sync"
	"sync/atomic"
	"unicode/utf8"
)

// MaxNameBytes bounds a display name; longer names are truncated on a UTF-8
// boundary.
const MaxNameBytes = 16

// commandQueueSize bounds a session command queue. Coordinators post
// commands without blocking; a full queue drops the command, so the size
// only needs to cover the handful of commands in flight for one session.
const commandQueueSize = 16

// Participant is one player, human or bot. A session goroutine owns the
// receive side of the command queue; the matchmaker and judge post to it.
type Participant struct {
	UID  string
	Name string

	// Affiliation points at the human a bot was spawned for; nil for
	// humans.
	Affiliation *Participant

	commands chan Command
	dropped  atomic.Bool

	mu       sync.RWMutex
	opponent *Participant
	game     *Game
}

// NewParticipant creates a human participant with a fresh UID and a
// boundary-safe truncated name.
func NewParticipant(name string) *Participant {
	return &Participant{
		UID:      NewUID(),
		Name:     TruncateName(name),
		commands: make(chan Command, commandQueueSize),
	}
}

// NewBot creates a bot participant affiliated to the human that requested
// it.
func NewBot(name string, affiliation *Participant) *Participant {
	return &Participant{
		UID:         NewUID(),
		Name:        TruncateName(name),
		Affiliation: affiliation,
		commands:    make(chan Command, commandQueueSize),
	}
}

// TruncateName caps name at MaxNameBytes bytes, discarding any partial rune
// left at the cut so the result is always valid UTF-8.
func TruncateName(name string) string {
	b := []byte(name)
	if len(b) > MaxNameBytes {
		b = b[:MaxNameBytes]
	}
	for len(b) > 0 {
		r, size := utf8.DecodeLastRune(b)
		if r == utf8.RuneError && size <= 1 {
			b = b[:len(b)-1]
			continue
		}
		break
	}
	return string(b)
}

// IsBot reports whether the participant was spawned on a human's behalf.
func (p *Participant) IsBot() bool {
	return p.Affiliation != nil
}

// Commands exposes the receive side of the session command queue.
func (p *Participant) Commands() <-chan Command {
	return p.commands
}

// PostCommand enqueues cmd without blocking. It reports whether the command
// was accepted; a full queue drops it.
func (p *Participant) PostCommand(cmd Command) bool {
	select {
	case p.commands <- cmd:
		return true
	default:
		return false
	}
}

// MarkDropped flags the participant as torn down. Set exactly once at the
// end of the session.
func (p *Participant) MarkDropped() {
	p.dropped.Store(true)
}

// Dropped reports whether the owning session has exited.
func (p *Participant) Dropped() bool {
	return p.dropped.Load()
}

// SetPairing installs the opponent and shared game. Called only by the
// matchmaker at pair commit.
func (p *Participant) SetPairing(opponent *Participant, g *Game) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.opponent = opponent
	p.game = g
}

// ClearPairing drops the opponent and game references at game end.
func (p *Participant) ClearPairing() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.opponent = nil
	p.game = nil
}

// Opponent returns the currently paired opponent, or nil.
func (p *Participant) Opponent() *Participant {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.opponent
}

// Game returns the game shared with the current opponent, or nil.
func (p *Participant) Game() *Game {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.game
}

// Equal reports UID equality.
func (p *Participant) Equal(other *Participant) bool {
	if p == nil || other == nil {
		return p == other
	}
	return p.UID == other.UID
}

func (p *Participant) String() string {
	return fmt.Sprintf("%s %q", p.UID, p.Name)
}
