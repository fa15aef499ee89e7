package commands

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/arjun-christopher/Functopus/internal/game/dice"
	"github.com/arjun-christopher/Functopus/internal/game/registry"
	"github.com/arjun-christopher/Functopus/internal/game/tod"
	"github.com/arjun-christopher/Functopus/internal/platform"
)

// ContentAPI is the slice of the content client the commands need.
type ContentAPI interface {
	NeverHaveIEver(ctx context.Context) (string, error)
	Joke(ctx context.Context) (string, error)
	UselessFact(ctx context.Context) (string, error)
	Meme(ctx context.Context) (string, error)
	Compliment(ctx context.Context) (string, error)
	Insult(ctx context.Context) (string, error)
	SearchGIF(ctx context.Context, query string) (string, error)
}

// Asker produces free-form AI replies.
type Asker interface {
	Ask(ctx context.Context, prompt string) (string, error)
}

// WordResolver supplies hidden words for guessing games.
type WordResolver interface {
	Resolve(ctx context.Context) string
}

// TurnRunner drives the turn loop for a turn game.
type TurnRunner interface {
	Run(ctx context.Context, ch platform.ChannelID, game *tod.Game)
}

// LeaderboardEntry is one row of the win/loss leaderboard.
type LeaderboardEntry struct {
	Player string
	Wins   int
	Losses int
}

// GameStats records finished guessing games and reports standings.
type GameStats interface {
	RecordResult(ctx context.Context, channel, player, word string, won bool) error
	Top(ctx context.Context, limit int) ([]LeaderboardEntry, error)
}

// Deps carries everything the built-in commands need. AI and Stats may be
// nil; the corresponding commands then answer with a friendly notice.
type Deps struct {
	Sessions    *registry.Registry
	Messenger   platform.Messenger
	Permissions platform.Permissions
	Words       WordResolver
	Content     ContentAPI
	AI          Asker
	Stats       GameStats
	Roller      *dice.Roller
	Rand        dice.Source
	Turns       TurnRunner

	// BaseCtx bounds background turn loops to the bot's lifetime rather
	// than to the invoking message.
	BaseCtx context.Context

	ReactionWindow      time.Duration
	RoastExcludeInvoker bool
	Prefix              string
	Logger              *zap.Logger
}

// Handlers holds the dependencies shared by all built-in command handlers.
type Handlers struct {
	deps Deps
}

// New builds the command registry with all built-in commands wired to deps.
//
// Precondition: Sessions, Messenger, Permissions, Words, Content, Roller,
// Rand, Turns, BaseCtx and Logger must be non-nil.
func New(deps Deps) (*Registry, error) {
	switch {
	case deps.Sessions == nil,
		deps.Messenger == nil,
		deps.Permissions == nil,
		deps.Words == nil,
		deps.Content == nil,
		deps.Roller == nil,
		deps.Rand == nil,
		deps.Turns == nil,
		deps.BaseCtx == nil,
		deps.Logger == nil:
		return nil, fmt.Errorf("commands: missing required dependency")
	}
	if deps.Prefix == "" {
		deps.Prefix = "!"
	}

	h := &Handlers{deps: deps}

	cmds := []Command{
		{Name: "hangman", Aliases: []string{"hg"}, Help: "Start a hangman game", Category: CategoryGames, Run: h.cmdHangman},
		{Name: "guess", Aliases: []string{"g"}, Help: "Guess a letter (guess <letter>)", Category: CategoryGames, Run: h.cmdGuess},
		{Name: "hstop", Aliases: nil, Help: "Stop the current hangman game", Category: CategoryGames, Run: h.cmdHangmanStop},
		{Name: "hgtop", Aliases: []string{"leaderboard"}, Help: "Show the hangman leaderboard", Category: CategoryGames, Run: h.cmdLeaderboard},
		{Name: "tod", Aliases: nil, Help: "Truth or dare (tod [join|leave|start|stop])", Category: CategoryGames, Run: h.cmdTruthOrDare},
		{Name: "roll", Aliases: nil, Help: "Roll dice (roll 2d6+3)", Category: CategoryFun, Run: h.cmdRoll},
		{Name: "flip", Aliases: []string{"coin"}, Help: "Flip a coin", Category: CategoryFun, Run: h.cmdFlip},
		{Name: "nhie", Aliases: nil, Help: "Never have I ever, react to answer", Category: CategoryFun, Run: h.cmdNeverHaveIEver},
		{Name: "meme", Aliases: nil, Help: "Fetch a random meme", Category: CategoryFun, Run: h.cmdMeme},
		{Name: "joke", Aliases: nil, Help: "Tell a joke", Category: CategoryFun, Run: h.cmdJoke},
		{Name: "fact", Aliases: nil, Help: "Share a useless fact", Category: CategoryFun, Run: h.cmdFact},
		{Name: "compliment", Aliases: nil, Help: "Compliment someone (compliment [@user])", Category: CategoryFun, Run: h.cmdCompliment},
		{Name: "roast", Aliases: nil, Help: "Roast someone (roast [@user|@everyone])", Category: CategoryFun, Run: h.cmdRoast},
		{Name: "gif", Aliases: nil, Help: "Search a GIF (gif <query>)", Category: CategoryFun, Run: h.cmdGIF},
		{Name: "ask", Aliases: nil, Help: "Ask the AI anything (ask <question>)", Category: CategoryAI, Run: h.cmdAsk},
	}

	// The help command needs the finished registry, so it is wired through
	// a late-bound pointer.
	var reg *Registry
	cmds = append(cmds, Command{
		Name:     "help",
		Aliases:  []string{"?"},
		Help:     "Show available commands",
		Category: CategorySystem,
		Run: func(ctx context.Context, inv Invocation) error {
			return h.cmdHelp(ctx, inv, reg)
		},
	})

	var err error
	reg, err = NewRegistry(cmds)
	if err != nil {
		return nil, err
	}
	return reg, nil
}

// reply sends plain text to the invoking channel.
func (h *Handlers) reply(ctx context.Context, inv Invocation, text string) error {
	return h.deps.Messenger.SendText(ctx, inv.Channel, text)
}

// messageLimit is the platform's maximum message length.
const messageLimit = 2000

// chunkMessage splits text into pieces no longer than limit runes, breaking
// at newlines where possible.
func chunkMessage(text string, limit int) []string {
	runes := []rune(text)
	if len(runes) <= limit {
		return []string{text}
	}

	var chunks []string
	for len(runes) > 0 {
		if len(runes) <= limit {
			chunks = append(chunks, string(runes))
			break
		}
		cut := limit
		for i := limit - 1; i > limit/2; i-- {
			if runes[i] == '\n' {
				cut = i + 1
				break
			}
		}
		chunks = append(chunks, string(runes[:cut]))
		runes = runes[cut:]
	}
	return chunks
}
