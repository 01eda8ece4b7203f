package game

import (
	"fmt"
	"sync"
)

const (
	// winningScore is the score a participant must reach to win.
	winningScore = 10
	// winningMargin is the lead required over the opponent.
	winningMargin = 2
)

// TurnRecord captures the outcome of one resolved turn.
type TurnRecord struct {
	// Winner is nil when the turn was a draw.
	Winner *Participant
	// Gestures holds the exact gesture each participant submitted, keyed
	// by UID.
	Gestures map[string]Gesture
}

// Game is the shared state of one duel. The judge is the only writer; the
// two sessions read through the locked accessors.
type Game struct {
	mu      sync.RWMutex
	p1      *Participant
	p2      *Participant
	score1  int
	score2  int
	winner  *Participant
	special Special
	turns   []TurnRecord
}

// NewGame creates a game between p1 and p2. The order is fixed for the
// game's lifetime and anchors how the judge pairs submissions.
func NewGame(p1, p2 *Participant) *Game {
	return &Game{p1: p1, p2: p2}
}

// P1 returns the first participant of the fixed pair.
func (g *Game) P1() *Participant {
	return g.p1
}

// P2 returns the second participant of the fixed pair.
func (g *Game) P2() *Participant {
	return g.p2
}

// Scores returns the current (score1, score2) pair.
func (g *Game) Scores() (int, int) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.score1, g.score2
}

// Winner returns the game winner, or nil while the game is live.
func (g *Game) Winner() *Participant {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.winner
}

// Special returns the early terminator, or "" when the game ended on score.
func (g *Game) Special() Special {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.special
}

// TurnCount returns the number of resolved turns, which is also the index
// of the turn currently being played.
func (g *Game) TurnCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.turns)
}

// LastTurn returns the most recently resolved turn.
func (g *Game) LastTurn() (TurnRecord, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if len(g.turns) == 0 {
		return TurnRecord{}, false
	}
	return g.turns[len(g.turns)-1], true
}

// SetOutcome force-ends the game with the given winner and terminator.
// Called by the judge for leave and surrender endings.
func (g *Game) SetOutcome(winner *Participant, special Special) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.winner = winner
	g.special = special
}

// Turn resolves one turn from the fixed-order pair of gestures, updating
// scores, the turn log, and possibly the winner. Passing anything that is
// not a known gesture is a programmer error.
func (g *Game) Turn(m1, m2 Gesture) {
	for _, m := range []Gesture{m1, m2} {
		if !m.Valid() {
			panic(fmt.Sprintf("game: expected Gesture, got %d", int(m)))
		}
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	var winner *Participant
	switch {
	case m1.Beats(m2):
		winner = g.p1
		g.score1++
		if g.score1 >= max(winningScore, g.score2+winningMargin) {
			g.winner = winner
		}
	case m2.Beats(m1):
		winner = g.p2
		g.score2++
		if g.score2 >= max(winningScore, g.score1+winningMargin) {
			g.winner = winner
		}
	}

	g.turns = append(g.turns, TurnRecord{
		Winner: winner,
		Gestures: map[string]Gesture{
			g.p1.UID: m1,
			g.p2.UID: m2,
		},
	})
}

func (g *Game) String() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return fmt.Sprintf("%s %d - %d %s", g.p1, g.score1, g.score2, g.p2)
}
