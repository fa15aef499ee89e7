package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/arjun-christopher/Functopus/internal/game/hangman"
	"github.com/arjun-christopher/Functopus/internal/game/registry"
	"github.com/arjun-christopher/Functopus/internal/game/tod"
	"github.com/arjun-christopher/Functopus/internal/platform"
)

const embedColor = 0x7289da

func hangmanEmbed(title string, s *hangman.Session) platform.Embed {
	wrong := s.GuessedSummary()
	if wrong == "" {
		wrong = "none"
	}
	return platform.Embed{
		Title:       title,
		Description: fmt.Sprintf("```%s```\n`%s`", hangman.Drawing(s.AttemptsRemaining()), s.Display()),
		Color:       embedColor,
		Fields: []platform.EmbedField{
			{Name: "Attempts left", Value: fmt.Sprintf("%d / %d", s.AttemptsRemaining(), hangman.MaxAttempts), Inline: true},
			{Name: "Wrong guesses", Value: wrong, Inline: true},
		},
	}
}

func (h *Handlers) cmdHangman(ctx context.Context, inv Invocation) error {
	word := h.deps.Words.Resolve(ctx)
	sess, err := hangman.New(word, inv.Author)
	if err != nil {
		return fmt.Errorf("creating hangman session: %w", err)
	}

	if err := h.deps.Sessions.PutGuess(inv.Channel, sess); err != nil {
		if errors.Is(err, registry.ErrSessionConflict) {
			return h.reply(ctx, inv, "There's already a game running in this channel. Finish it first!")
		}
		return err
	}

	h.deps.Logger.Info("hangman started",
		zap.String("channel", string(inv.Channel)),
		zap.String("player", string(inv.Author)),
	)
	_, err = h.deps.Messenger.SendEmbed(ctx, inv.Channel,
		hangmanEmbed(fmt.Sprintf("Hangman! Use %sguess <letter> to play.", h.deps.Prefix), sess))
	return err
}

func (h *Handlers) cmdGuess(ctx context.Context, inv Invocation) error {
	sess, ok := h.deps.Sessions.Guess(inv.Channel)
	if !ok {
		return h.reply(ctx, inv, fmt.Sprintf("No hangman game here. Start one with %shangman.", h.deps.Prefix))
	}

	if len(inv.Args) != 1 {
		return h.reply(ctx, inv, fmt.Sprintf("Usage: %sguess <letter>", h.deps.Prefix))
	}
	letters := []rune(inv.Args[0])
	if len(letters) != 1 {
		return h.reply(ctx, inv, "Guess one letter at a time!")
	}

	out, err := sess.SubmitGuess(letters[0])
	switch {
	case errors.Is(err, hangman.ErrNotALetter):
		return h.reply(ctx, inv, "That's not a letter. Try a-z.")
	case errors.Is(err, hangman.ErrAlreadyGuessed):
		return h.reply(ctx, inv, fmt.Sprintf("You already tried `%s`.", strings.ToLower(inv.Args[0])))
	case errors.Is(err, hangman.ErrFinished):
		return h.reply(ctx, inv, "That game is already over.")
	case err != nil:
		return err
	}

	switch out.State {
	case hangman.Won:
		h.deps.Sessions.RemoveGuessIf(inv.Channel, sess)
		h.recordResult(ctx, inv, sess, true)
		_, err := h.deps.Messenger.SendEmbed(ctx, inv.Channel, platform.Embed{
			Title:       "You won! 🎉",
			Description: fmt.Sprintf("The word was **%s**.", sess.Word()),
			Color:       embedColor,
		})
		return err
	case hangman.Lost:
		h.deps.Sessions.RemoveGuessIf(inv.Channel, sess)
		h.recordResult(ctx, inv, sess, false)
		_, err := h.deps.Messenger.SendEmbed(ctx, inv.Channel, platform.Embed{
			Title:       "Game over!",
			Description: fmt.Sprintf("```%s```\nThe word was **%s**.", hangman.Drawing(0), sess.Word()),
			Color:       embedColor,
		})
		return err
	default:
		title := fmt.Sprintf("`%c` is a miss.", out.Letter)
		if out.Hit {
			title = fmt.Sprintf("`%c` is in the word!", out.Letter)
		}
		_, err := h.deps.Messenger.SendEmbed(ctx, inv.Channel, hangmanEmbed(title, sess))
		return err
	}
}

func (h *Handlers) recordResult(ctx context.Context, inv Invocation, sess *hangman.Session, won bool) {
	if h.deps.Stats == nil {
		return
	}
	err := h.deps.Stats.RecordResult(ctx, string(inv.Channel), string(inv.Author), sess.Word(), won)
	if err != nil {
		h.deps.Logger.Warn("recording game result", zap.Error(err))
	}
}

func (h *Handlers) cmdHangmanStop(ctx context.Context, inv Invocation) error {
	sess, ok := h.deps.Sessions.Guess(inv.Channel)
	if !ok {
		return h.reply(ctx, inv, "No hangman game to stop here.")
	}

	mod, err := h.deps.Permissions.IsModerator(ctx, inv.Channel, inv.Author)
	if err != nil {
		h.deps.Logger.Warn("checking moderator status", zap.Error(err))
		mod = false
	}
	if !sess.CanStop(inv.Author, mod) {
		return h.reply(ctx, inv, "Only the player who started the game or a moderator can stop it.")
	}

	h.deps.Sessions.RemoveGuessIf(inv.Channel, sess)
	return h.reply(ctx, inv, fmt.Sprintf("Game stopped. The word was **%s**.", sess.Word()))
}

func (h *Handlers) cmdLeaderboard(ctx context.Context, inv Invocation) error {
	if h.deps.Stats == nil {
		return h.reply(ctx, inv, "The leaderboard isn't available right now.")
	}
	entries, err := h.deps.Stats.Top(ctx, 10)
	if err != nil {
		return fmt.Errorf("fetching leaderboard: %w", err)
	}
	if len(entries) == 0 {
		return h.reply(ctx, inv, "Nobody has finished a game yet. Be the first!")
	}

	var b strings.Builder
	for i, e := range entries {
		fmt.Fprintf(&b, "%d. %s - %d wins, %d losses\n", i+1, e.Player, e.Wins, e.Losses)
	}
	_, err = h.deps.Messenger.SendEmbed(ctx, inv.Channel, platform.Embed{
		Title:       "Hangman leaderboard",
		Description: b.String(),
		Color:       embedColor,
	})
	return err
}

func (h *Handlers) cmdTruthOrDare(ctx context.Context, inv Invocation) error {
	sub := ""
	if len(inv.Args) > 0 {
		sub = strings.ToLower(inv.Args[0])
	}

	switch sub {
	case "", "new":
		return h.todNew(ctx, inv)
	case "join":
		return h.todJoin(ctx, inv)
	case "leave":
		return h.todLeave(ctx, inv)
	case "start", "begin":
		return h.todStart(ctx, inv)
	case "stop", "end":
		return h.todStop(ctx, inv)
	default:
		return h.reply(ctx, inv, fmt.Sprintf("Usage: %stod [join|leave|start|stop]", h.deps.Prefix))
	}
}

func (h *Handlers) todNew(ctx context.Context, inv Invocation) error {
	game := tod.NewGame(inv.Author, inv.AuthorName)
	if err := h.deps.Sessions.PutTurn(inv.Channel, game); err != nil {
		if errors.Is(err, registry.ErrSessionConflict) {
			return h.reply(ctx, inv, "There's already a game running in this channel. Finish it first!")
		}
		return err
	}

	h.deps.Logger.Info("truth or dare lobby opened",
		zap.String("channel", string(inv.Channel)),
		zap.String("creator", string(inv.Author)),
	)
	return h.reply(ctx, inv, fmt.Sprintf(
		"%s opened a truth or dare lobby! Type `%stod join` to play, then `%stod start` to begin.",
		inv.AuthorName, h.deps.Prefix, h.deps.Prefix))
}

func (h *Handlers) todJoin(ctx context.Context, inv Invocation) error {
	game, ok := h.deps.Sessions.Turn(inv.Channel)
	if !ok {
		return h.reply(ctx, inv, fmt.Sprintf("No lobby is open. Start one with %stod.", h.deps.Prefix))
	}

	switch err := game.Join(inv.Author, inv.AuthorName); {
	case errors.Is(err, tod.ErrAlreadyJoined):
		return h.reply(ctx, inv, "You're already in!")
	case errors.Is(err, tod.ErrNotInLobby):
		return h.reply(ctx, inv, "The game has already started.")
	case err != nil:
		return err
	}
	return h.reply(ctx, inv, fmt.Sprintf("%s joined! %d players in the lobby.", inv.AuthorName, game.PlayerCount()))
}

func (h *Handlers) todLeave(ctx context.Context, inv Invocation) error {
	game, ok := h.deps.Sessions.Turn(inv.Channel)
	if !ok {
		return h.reply(ctx, inv, "There's no truth or dare game here.")
	}

	empty, err := game.Leave(inv.Author)
	switch {
	case errors.Is(err, tod.ErrNotJoined):
		return h.reply(ctx, inv, "You weren't playing.")
	case errors.Is(err, tod.ErrEnded):
		return h.reply(ctx, inv, "That game is already over.")
	case err != nil:
		return err
	}

	if empty {
		game.End()
		h.deps.Sessions.RemoveIf(inv.Channel, game)
		return h.reply(ctx, inv, "Everyone left, the lobby is closed.")
	}
	return h.reply(ctx, inv, fmt.Sprintf("%s left the game.", inv.AuthorName))
}

func (h *Handlers) todStart(ctx context.Context, inv Invocation) error {
	game, ok := h.deps.Sessions.Turn(inv.Channel)
	if !ok {
		return h.reply(ctx, inv, fmt.Sprintf("No lobby is open. Start one with %stod.", h.deps.Prefix))
	}
	if inv.Author != game.Creator() {
		return h.reply(ctx, inv, "Only the player who opened the lobby can start the game.")
	}

	switch err := game.Start(); {
	case errors.Is(err, tod.ErrNotEnoughPlayers):
		return h.reply(ctx, inv, fmt.Sprintf("Need at least %d players to start.", tod.MinPlayers))
	case errors.Is(err, tod.ErrNotInLobby):
		return h.reply(ctx, inv, "The game has already started.")
	case err != nil:
		return err
	}

	// The loop outlives this command, so it runs on the bot's context.
	go h.deps.Turns.Run(h.deps.BaseCtx, inv.Channel, game)

	h.deps.Logger.Info("truth or dare started",
		zap.String("channel", string(inv.Channel)),
		zap.Int("players", game.PlayerCount()),
	)
	return h.reply(ctx, inv, fmt.Sprintf("Truth or dare is starting with %d players!", game.PlayerCount()))
}

func (h *Handlers) todStop(ctx context.Context, inv Invocation) error {
	game, ok := h.deps.Sessions.Turn(inv.Channel)
	if !ok {
		return h.reply(ctx, inv, "There's no truth or dare game here.")
	}

	mod, err := h.deps.Permissions.IsModerator(ctx, inv.Channel, inv.Author)
	if err != nil {
		h.deps.Logger.Warn("checking moderator status", zap.Error(err))
		mod = false
	}
	if inv.Author != game.Creator() && !mod {
		return h.reply(ctx, inv, "Only the player who opened the lobby or a moderator can stop the game.")
	}

	game.End()
	h.deps.Sessions.RemoveIf(inv.Channel, game)
	return h.reply(ctx, inv, "Truth or dare is over. Thanks for playing!")
}
