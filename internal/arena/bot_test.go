package arena

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tlau/rpsduel/internal/game"
)

// recvSubmission reads the judge intake directly, standing in for the judge
// loop.
func recvSubmission(t *testing.T, j *Judge) MoveSubmission {
	t.Helper()
	select {
	case sub := <-j.intake:
		return sub
	case <-time.After(testWait):
		t.Fatal("timed out waiting for judge submission")
		return MoveSubmission{}
	}
}

func TestBotPlaysUntilGameWon(t *testing.T) {
	j := NewJudge(testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	human := game.NewParticipant("Alice")
	bot := game.NewBot("Zeratul", human)
	g := game.NewGame(human, bot)
	human.SetPairing(bot, g)
	bot.SetPairing(human, g)

	go RunBot(ctx, bot, j, testLogger())
	require.True(t, bot.PostCommand(game.Command{Action: game.CmdMatch, Opponent: human}))

	// First turn: the bot submits a real gesture.
	sub := recvSubmission(t, j)
	assert.True(t, sub.From.Equal(bot))
	assert.False(t, sub.Submission.IsSpecial())
	assert.True(t, sub.Submission.Gesture.Valid())
	assert.NotEqual(t, game.Pass, sub.Submission.Gesture)

	// Turn resolved, nobody won yet: the bot keeps playing.
	require.True(t, bot.PostCommand(game.Command{Action: game.CmdEndTurn}))
	recvSubmission(t, j)

	// Declare the game over; the bot stands down.
	g.SetOutcome(human, game.SpecialSurrender)
	require.True(t, bot.PostCommand(game.Command{Action: game.CmdEndGame}))

	assert.Eventually(t, bot.Dropped, testWait, 5*time.Millisecond)
}

func TestBotStopsOnWinnerAfterEndTurn(t *testing.T) {
	j := NewJudge(testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	human := game.NewParticipant("Alice")
	bot := game.NewBot("Zeratul", human)
	g := game.NewGame(human, bot)
	human.SetPairing(bot, g)
	bot.SetPairing(human, g)

	go RunBot(ctx, bot, j, testLogger())
	require.True(t, bot.PostCommand(game.Command{Action: game.CmdMatch, Opponent: human}))
	recvSubmission(t, j)

	// Winner decided on this turn: endturn, not endgame, ends the loop.
	g.SetOutcome(bot, "")
	require.True(t, bot.PostCommand(game.Command{Action: game.CmdEndTurn}))

	assert.Eventually(t, bot.Dropped, testWait, 5*time.Millisecond)
}

func TestBotTerminatesUnmatched(t *testing.T) {
	j := NewJudge(testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	human := game.NewParticipant("Alice")
	bot := game.NewBot("Zeratul", human)

	go RunBot(ctx, bot, j, testLogger())
	require.True(t, bot.PostCommand(game.Command{Action: game.CmdTerminate}))

	assert.Eventually(t, bot.Dropped, testWait, 5*time.Millisecond)
}

func TestRandomBotName(t *testing.T) {
	for i := 0; i < 20; i++ {
		assert.Contains(t, botNames, randomBotName())
	}
}

func TestRandomGesture(t *testing.T) {
	for i := 0; i < 50; i++ {
		g := randomGesture()
		assert.True(t, g.Valid())
		assert.NotEqual(t, game.Pass, g)
	}
}
