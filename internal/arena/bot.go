package arena

import (
	"context"
	"math/rand/v2"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/tlau/rpsduel/internal/game"
)

// botNames is the roster a spawned bot draws its display name from.
var botNames = []string{
	"Abathur",
	"Alarak",
	"Aldaris",
	"Alexei Stukov",
	"Amon",
	"Arcturus Mengsk",
	"Ariel Hanson",
	"Artanis",
	"Daggoth",
	"Dehaka",
	"Edmund Duke",
	"Egon Stetmann",
	"Emil Narud",
	"Fenix",
	"Gabriel Tosh",
	"Gerard DuGalle",
	"Horace Warfield",
	"Jim Raynor",
	"Karax",
	"Matt Horner",
	"Nova Terra",
	"Raszagal",
	"Rohana",
	"Rory Swann",
	"Samir Duran",
	"Sarah Kerrigan",
	"Selendis",
	"Tassadar",
	"The Overmind",
	"Tychus Findlay",
	"Valerian Mengsk",
	"Zagara",
	"Zasz",
	"Zeratul",
	"Zurvan",
}

func randomBotName() string {
	return botNames[rand.IntN(len(botNames))]
}

func randomGesture() game.Gesture {
	return game.Gesture(rand.IntN(3))
}

// RunBot plays one game as bot, submitting uniformly random gestures. The
// bot needs no transport and no matchmaker interaction: it is created
// already earmarked for its human and waits only for the match command, or
// for termination if the matchmaker evicts it unplayed.
func RunBot(ctx context.Context, bot *game.Participant, judge *Judge, logger *log.Logger) {
	logger = logger.With("bot", bot.String())
	defer func() {
		bot.MarkDropped()
		logger.Info("mission complete")
	}()

	cmd, ok := awaitBotCommand(ctx, bot, logger, game.CmdMatch, game.CmdTerminate)
	if !ok || cmd.Action == game.CmdTerminate {
		return
	}

	g := bot.Game()
	for {
		if err := judge.Submit(ctx, bot, game.SubmitGesture(randomGesture())); err != nil {
			return
		}

		cmd, ok := awaitBotCommand(ctx, bot, logger, game.CmdEndTurn, game.CmdEndGame)
		if !ok || cmd.Action == game.CmdEndGame {
			return
		}
		if g.Winner() != nil {
			return
		}
	}
}

// awaitBotCommand waits on the bot command queue for the wanted action or
// one of the interrupters, skipping anything else with a warning.
func awaitBotCommand(ctx context.Context, bot *game.Participant, logger *log.Logger,
	want game.CommandAction, interrupters ...game.CommandAction) (game.Command, bool) {
	for {
		select {
		case <-ctx.Done():
			return game.Command{}, false
		case cmd := <-bot.Commands():
			if cmd.Action == want || slices.Contains(interrupters, cmd.Action) {
				return cmd, true
			}
			logger.Warn("ignoring unexpected command", "expected", want, "got", cmd.Action)
		}
	}
}
