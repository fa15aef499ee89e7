package tod

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arjun-christopher/Functopus/internal/platform"
)

// Store is the slice of the session registry the scheduler needs: looking up
// the channel's current turn game and conditionally removing it.
type Store interface {
	// Turn returns the turn game registered for the channel, if any.
	Turn(ch platform.ChannelID) (*Game, bool)
	// RemoveIf removes the channel's session only if it is still the given
	// game, and reports whether it removed anything.
	RemoveIf(ch platform.ChannelID, game *Game) bool
}

// ContentProvider fetches a prompt for a chosen turn kind.
type ContentProvider interface {
	// TurnContent returns a question or challenge for the given kind,
	// "truth" or "dare".
	TurnContent(ctx context.Context, kind string) (string, error)
}

// Config carries the scheduler's timing knobs.
type Config struct {
	// ChoiceTimeout bounds how long a player has to pick truth or dare.
	ChoiceTimeout time.Duration
	// CompletionTimeout bounds how long a player has to signal completion.
	CompletionTimeout time.Duration
	// TurnDelay is the pause between consecutive turns.
	TurnDelay time.Duration
	// DoneCommand is the message content that completes a turn.
	DoneCommand string
}

// errStop aborts the turn loop without an error announcement. It is raised
// when the game was ended or replaced underneath the scheduler.
var errStop = errors.New("turn loop stopped")

// Scheduler drives the turn loop for turn games. One Run call serves one
// game; concurrent games in different channels each get their own Run.
type Scheduler struct {
	store   Store
	msgr    platform.Messenger
	content ContentProvider
	cfg     Config
	logger  *zap.Logger
}

// NewScheduler creates a scheduler.
//
// Precondition: All arguments must be non-nil.
func NewScheduler(store Store, msgr platform.Messenger, content ContentProvider, cfg Config, logger *zap.Logger) *Scheduler {
	if cfg.DoneCommand == "" {
		cfg.DoneCommand = "!done"
	}
	return &Scheduler{
		store:   store,
		msgr:    msgr,
		content: content,
		cfg:     cfg,
		logger:  logger,
	}
}

// Run plays turns for the game in the given channel until the game ends, is
// replaced in the store, or the context is cancelled. It blocks for the
// lifetime of the game and is meant to be run on its own goroutine.
//
// Postcondition: The game is in the ended phase and, if it was still the
// channel's registered session, it has been removed from the store.
func (s *Scheduler) Run(ctx context.Context, ch platform.ChannelID, game *Game) {
	runID := uuid.NewString()
	logger := s.logger.With(
		zap.String("run_id", runID),
		zap.String("channel", string(ch)),
	)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("turn loop panicked", zap.Any("panic", r))
			s.failGame(ctx, ch, game, logger)
		}
	}()

	logger.Info("turn loop starting", zap.Int("players", game.PlayerCount()))

	for {
		if ctx.Err() != nil {
			logger.Info("turn loop cancelled")
			s.failGame(ctx, ch, game, logger)
			return
		}
		if !s.owns(ch, game) {
			logger.Info("turn loop stopping, game no longer active")
			game.End()
			return
		}

		if game.PlayerCount() < MinPlayers {
			logger.Info("turn loop stopping, not enough players", zap.Int("players", game.PlayerCount()))
			s.endGame(ctx, ch, game, logger, "Not enough players left to continue. The game is over!")
			return
		}

		player, ok := game.CurrentPlayer()
		if !ok {
			logger.Info("turn loop stopping, roster empty")
			s.endGame(ctx, ch, game, logger, "Everyone left, the game is over!")
			return
		}

		if err := s.playTurn(ctx, ch, game, player, logger); err != nil {
			if errors.Is(err, errStop) {
				game.End()
				s.store.RemoveIf(ch, game)
				return
			}
			logger.Error("turn failed", zap.Error(err))
			s.failGame(ctx, ch, game, logger)
			return
		}

		game.Advance()

		select {
		case <-ctx.Done():
			logger.Info("turn loop cancelled")
			s.failGame(ctx, ch, game, logger)
			return
		case <-time.After(s.cfg.TurnDelay):
		}
	}
}

// playTurn runs a single turn for the given player: prompt the choice, wait
// for the pick, fetch content, then wait for the completion signal.
func (s *Scheduler) playTurn(ctx context.Context, ch platform.ChannelID, game *Game, player Player, logger *zap.Logger) error {
	logger = logger.With(zap.String("player", string(player.ID)))

	prompt, err := s.msgr.SendChoicePrompt(ctx, ch, player.ID,
		fmt.Sprintf("%s, it's your turn! Truth or dare?", s.msgr.Mention(player.ID)),
		[]platform.ChoiceOption{
			{Label: "Truth", Value: "truth"},
			{Label: "Dare", Value: "dare"},
		})
	if err != nil {
		return fmt.Errorf("sending choice prompt: %w", err)
	}
	defer func() {
		if derr := s.msgr.DeleteMessage(context.WithoutCancel(ctx), prompt.Ref); derr != nil {
			logger.Warn("deleting choice prompt", zap.Error(derr))
		}
	}()

	var kind string
	select {
	case <-ctx.Done():
		return errStop
	case <-time.After(s.cfg.ChoiceTimeout):
		if !s.owns(ch, game) {
			return errStop
		}
		logger.Info("choice timed out, skipping turn")
		if err := s.msgr.SendText(ctx, ch, fmt.Sprintf("%s took too long to choose. Skipping their turn!", player.Name)); err != nil {
			return fmt.Errorf("announcing skipped turn: %w", err)
		}
		return nil
	case choice, ok := <-prompt.Choices:
		if !ok {
			return errStop
		}
		kind = choice
	}
	if !s.owns(ch, game) {
		return errStop
	}
	logger.Info("choice made", zap.String("kind", kind))

	text, err := s.content.TurnContent(ctx, kind)
	if err != nil {
		logger.Warn("fetching turn content", zap.Error(err))
		if serr := s.msgr.SendText(ctx, ch, fmt.Sprintf("Couldn't fetch a %s this time. Skipping %s's turn!", kind, player.Name)); serr != nil {
			return fmt.Errorf("announcing content failure: %w", serr)
		}
		return nil
	}
	if err := s.msgr.SendText(ctx, ch, fmt.Sprintf("**%s for %s:** %s\nType `%s` when you're finished.", titleKind(kind), player.Name, text, s.cfg.DoneCommand)); err != nil {
		return fmt.Errorf("sending turn content: %w", err)
	}

	done, err := s.msgr.AwaitSignal(ctx, ch, player.ID, func(content string) bool {
		return strings.EqualFold(content, s.cfg.DoneCommand)
	}, s.cfg.CompletionTimeout)
	if err != nil {
		if ctx.Err() != nil {
			return errStop
		}
		return fmt.Errorf("awaiting completion: %w", err)
	}
	if !s.owns(ch, game) {
		return errStop
	}

	if done {
		if err := s.msgr.SendText(ctx, ch, fmt.Sprintf("%s completed their %s! Moving on.", player.Name, kind)); err != nil {
			return fmt.Errorf("announcing completion: %w", err)
		}
	} else {
		logger.Info("completion timed out")
		if err := s.msgr.SendText(ctx, ch, fmt.Sprintf("Time's up for %s! Moving on.", player.Name)); err != nil {
			return fmt.Errorf("announcing timeout: %w", err)
		}
	}
	return nil
}

// owns reports whether the game is still the channel's registered session
// and still playing.
func (s *Scheduler) owns(ch platform.ChannelID, game *Game) bool {
	current, ok := s.store.Turn(ch)
	return ok && current == game && game.Phase() == Playing
}

func (s *Scheduler) endGame(ctx context.Context, ch platform.ChannelID, game *Game, logger *zap.Logger, announcement string) {
	game.End()
	s.store.RemoveIf(ch, game)
	if err := s.msgr.SendText(context.WithoutCancel(ctx), ch, announcement); err != nil {
		logger.Warn("announcing game end", zap.Error(err))
	}
}

// failGame ends and evicts the game. Outside of shutdown it also tells the
// channel, so players are not left waiting on a game that silently died.
func (s *Scheduler) failGame(ctx context.Context, ch platform.ChannelID, game *Game, logger *zap.Logger) {
	game.End()
	if s.store.RemoveIf(ch, game) {
		logger.Info("game removed after failure")
	}
	if ctx.Err() != nil {
		return
	}
	if err := s.msgr.SendText(context.WithoutCancel(ctx), ch, "Something went wrong and the game has been ended."); err != nil {
		logger.Warn("announcing game failure", zap.Error(err))
	}
}

func titleKind(kind string) string {
	if kind == "dare" {
		return "Dare"
	}
	return "Truth"
}
