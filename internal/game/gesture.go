package game

import "fmt"

// Gesture is a player's move on a single turn. Pass is the implicit gesture
// recorded when a move cannot be parsed or arrives after the turn deadline.
type Gesture int

const (
	Pass     Gesture = -1
	Rock     Gesture = 0
	Paper    Gesture = 1
	Scissors Gesture = 2
)

// GestureFromWire maps the wire-level move integer onto a Gesture. Unknown
// values degrade to Pass.
func GestureFromWire(v int) Gesture {
	switch v {
	case 0:
		return Rock
	case 1:
		return Paper
	case 2:
		return Scissors
	default:
		return Pass
	}
}

// Wire returns the integer sent on the wire for this gesture.
func (g Gesture) Wire() int {
	return int(g)
}

// Valid reports whether g is one of the four known gestures.
func (g Gesture) Valid() bool {
	switch g {
	case Rock, Paper, Scissors, Pass:
		return true
	}
	return false
}

// Beats reports whether g wins against other. The cycle is the usual one,
// any real gesture beats Pass, and equal gestures (including Pass vs Pass)
// draw.
func (g Gesture) Beats(other Gesture) bool {
	if g == Pass {
		return false
	}
	if other == Pass {
		return true
	}
	return g == Rock && other == Scissors ||
		g == Paper && other == Rock ||
		g == Scissors && other == Paper
}

func (g Gesture) String() string {
	switch g {
	case Rock:
		return "ROCK"
	case Paper:
		return "PAPER"
	case Scissors:
		return "SCISSORS"
	case Pass:
		return "PASS"
	}
	return fmt.Sprintf("Gesture(%d)", int(g))
}
