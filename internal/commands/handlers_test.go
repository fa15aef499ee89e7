package commands_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/arjun-christopher/Functopus/internal/commands"
	"github.com/arjun-christopher/Functopus/internal/game/dice"
	"github.com/arjun-christopher/Functopus/internal/game/registry"
	"github.com/arjun-christopher/Functopus/internal/game/tod"
	"github.com/arjun-christopher/Functopus/internal/platform"
)

const channel = platform.ChannelID("chan-1")

type stubContent struct{}

func (stubContent) NeverHaveIEver(context.Context) (string, error) { return "never statement", nil }
func (stubContent) Joke(context.Context) (string, error)           { return "a joke", nil }
func (stubContent) UselessFact(context.Context) (string, error)    { return "a fact", nil }
func (stubContent) Meme(context.Context) (string, error)           { return "https://example.com/m.png", nil }
func (stubContent) Compliment(context.Context) (string, error)     { return "nice work", nil }
func (stubContent) Insult(context.Context) (string, error)         { return "terrible wifi", nil }
func (stubContent) SearchGIF(context.Context, string) (string, error) {
	return "https://example.com/g.gif", nil
}

type stubWords struct{ word string }

func (s stubWords) Resolve(context.Context) string { return s.word }

type stubTurns struct {
	mu    sync.Mutex
	calls []*tod.Game
}

func (s *stubTurns) Run(_ context.Context, _ platform.ChannelID, game *tod.Game) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, game)
}

func (s *stubTurns) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

type stubAI struct{ reply string }

func (s stubAI) Ask(context.Context, string) (string, error) { return s.reply, nil }

type stubStats struct {
	mu      sync.Mutex
	results []bool
	top     []commands.LeaderboardEntry
}

func (s *stubStats) RecordResult(_ context.Context, _, _, _ string, won bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, won)
	return nil
}

func (s *stubStats) Top(context.Context, int) ([]commands.LeaderboardEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.top, nil
}

type fixedSource struct{ v int }

func (f fixedSource) Intn(n int) int { return f.v % n }

type harness struct {
	reg      *commands.Registry
	rec      *platform.Recorder
	sessions *registry.Registry
	turns    *stubTurns
	stats    *stubStats
}

func newHarness(t *testing.T, mutate func(*commands.Deps)) *harness {
	t.Helper()
	rec := platform.NewRecorder()
	sessions := registry.New()
	turns := &stubTurns{}
	stats := &stubStats{}

	deps := commands.Deps{
		Sessions:       sessions,
		Messenger:      rec,
		Permissions:    rec,
		Words:          stubWords{word: "cat"},
		Content:        stubContent{},
		AI:             stubAI{reply: "because"},
		Stats:          stats,
		Roller:         dice.NewLoggedRoller(fixedSource{v: 3}, zap.NewNop()),
		Rand:           fixedSource{v: 0},
		Turns:          turns,
		BaseCtx:        context.Background(),
		ReactionWindow: 10 * time.Millisecond,
		Prefix:         "!",
		Logger:         zap.NewNop(),
	}
	if mutate != nil {
		mutate(&deps)
	}

	reg, err := commands.New(deps)
	require.NoError(t, err)
	return &harness{reg: reg, rec: rec, sessions: sessions, turns: turns, stats: stats}
}

func (h *harness) run(t *testing.T, line string, author platform.UserID) {
	t.Helper()
	parsed := commands.Parse(line)
	cmd, ok := h.reg.Resolve(parsed.Command)
	require.True(t, ok, "command %q not registered", parsed.Command)
	require.NoError(t, cmd.Run(context.Background(), commands.Invocation{
		Channel:    channel,
		Author:     author,
		AuthorName: string(author),
		Args:       parsed.Args,
		RawArgs:    parsed.RawArgs,
	}))
}

func (h *harness) lastText(t *testing.T) string {
	t.Helper()
	texts := h.rec.TextsSnapshot()
	require.NotEmpty(t, texts)
	return texts[len(texts)-1].Text
}

func TestHangman_StartAndConflict(t *testing.T) {
	h := newHarness(t, nil)

	h.run(t, "hangman", "alice")
	require.Len(t, h.rec.Embeds, 1)
	_, ok := h.sessions.Guess(channel)
	assert.True(t, ok)

	h.run(t, "hangman", "bob")
	assert.Contains(t, h.lastText(t), "already a game")
	assert.Equal(t, 1, h.sessions.Len())
}

func TestGuess_WinRecordsResultAndFreesChannel(t *testing.T) {
	h := newHarness(t, nil)
	h.run(t, "hangman", "alice")

	for _, l := range []string{"c", "a", "t"} {
		h.run(t, "guess "+l, "alice")
	}

	last := h.rec.Embeds[len(h.rec.Embeds)-1]
	assert.Contains(t, last.Embed.Title, "won")
	assert.Equal(t, 0, h.sessions.Len())
	assert.Equal(t, []bool{true}, h.stats.results)

	// The channel is free for the next game.
	h.run(t, "hangman", "bob")
	assert.Equal(t, 1, h.sessions.Len())
}

func TestGuess_WithoutGame(t *testing.T) {
	h := newHarness(t, nil)
	h.run(t, "guess a", "alice")
	assert.Contains(t, h.lastText(t), "No hangman game")
}

func TestHangmanStop_Permissions(t *testing.T) {
	h := newHarness(t, nil)
	h.rec.Moderators["modesta"] = true
	h.run(t, "hangman", "alice")

	h.run(t, "hstop", "bob")
	assert.Contains(t, h.lastText(t), "Only the player")
	assert.Equal(t, 1, h.sessions.Len())

	h.run(t, "hstop", "modesta")
	assert.Contains(t, h.lastText(t), "The word was")
	assert.Equal(t, 0, h.sessions.Len())
}

func TestLeaderboard(t *testing.T) {
	h := newHarness(t, nil)
	h.stats.top = []commands.LeaderboardEntry{
		{Player: "alice", Wins: 3, Losses: 1},
		{Player: "bob", Wins: 1, Losses: 4},
	}

	h.run(t, "hgtop", "alice")
	require.NotEmpty(t, h.rec.Embeds)
	desc := h.rec.Embeds[len(h.rec.Embeds)-1].Embed.Description
	assert.Contains(t, desc, "1. alice")
	assert.Contains(t, desc, "2. bob")
}

func TestTruthOrDare_LobbyFlow(t *testing.T) {
	h := newHarness(t, nil)

	h.run(t, "tod", "alice")
	game, ok := h.sessions.Turn(channel)
	require.True(t, ok)

	h.run(t, "tod start", "alice")
	assert.Contains(t, h.lastText(t), "at least")
	assert.Equal(t, 0, h.turns.count())

	h.run(t, "tod join", "bob")
	h.run(t, "tod start", "bob")
	assert.Contains(t, h.lastText(t), "Only the player")
	assert.Equal(t, 0, h.turns.count())

	h.run(t, "tod start", "alice")
	require.Eventually(t, func() bool { return h.turns.count() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, tod.Playing, game.Phase())
}

func TestTruthOrDare_StopByModerator(t *testing.T) {
	h := newHarness(t, nil)
	h.rec.Moderators["modesta"] = true

	h.run(t, "tod", "alice")
	h.run(t, "tod stop", "bob")
	assert.Equal(t, 1, h.sessions.Len())

	h.run(t, "tod stop", "modesta")
	assert.Equal(t, 0, h.sessions.Len())
}

func TestRoll(t *testing.T) {
	h := newHarness(t, nil)

	h.run(t, "roll 2d6+1", "alice")
	assert.Contains(t, h.lastText(t), "2d6+1")

	h.run(t, "roll nonsense", "alice")
	assert.Contains(t, h.lastText(t), "can't roll")
}

func TestFlip(t *testing.T) {
	h := newHarness(t, nil)
	h.run(t, "flip", "alice")
	assert.Contains(t, h.lastText(t), "Heads")
}

func TestAsk_ChunksLongReplies(t *testing.T) {
	long := strings.Repeat("a", 4500)
	h := newHarness(t, func(d *commands.Deps) {
		d.AI = stubAI{reply: long}
	})

	h.run(t, "ask why", "alice")
	texts := h.rec.TextsSnapshot()
	require.Len(t, texts, 3)
	total := 0
	for _, msg := range texts {
		assert.LessOrEqual(t, len(msg.Text), 2000)
		total += len(msg.Text)
	}
	assert.Equal(t, len(long), total)
}

func TestAsk_WithoutAI(t *testing.T) {
	h := newHarness(t, func(d *commands.Deps) { d.AI = nil })
	h.run(t, "ask why", "alice")
	assert.Contains(t, h.lastText(t), "isn't configured")
}

func TestRoastEveryone_ExcludesInvokerWhenConfigured(t *testing.T) {
	h := newHarness(t, func(d *commands.Deps) { d.RoastExcludeInvoker = true })
	h.rec.Members[channel] = []platform.UserID{"alice", "bob", "carol"}

	parsed := commands.Parse("roast")
	cmd, ok := h.reg.Resolve(parsed.Command)
	require.True(t, ok)
	require.NoError(t, cmd.Run(context.Background(), commands.Invocation{
		Channel:          channel,
		Author:           "alice",
		AuthorName:       "alice",
		MentionsEveryone: true,
	}))

	var mentioned []string
	for _, msg := range h.rec.TextsSnapshot() {
		if strings.Contains(msg.Text, "terrible wifi") {
			mentioned = append(mentioned, msg.Text)
		}
	}
	require.Len(t, mentioned, 2)
	for _, msg := range mentioned {
		assert.NotContains(t, msg, "@alice ")
	}
}

func TestRoast_WarnsBeforeRoasting(t *testing.T) {
	h := newHarness(t, nil)
	h.run(t, "roast", "alice")

	texts := h.rec.TextsSnapshot()
	require.GreaterOrEqual(t, len(texts), 2)
	assert.Contains(t, texts[0].Text, "You asked for it")
	assert.Contains(t, texts[1].Text, "terrible wifi")
	assert.Contains(t, texts[1].Text, "@alice")
}

func TestRoast_HitsEveryMention(t *testing.T) {
	h := newHarness(t, nil)

	cmd, ok := h.reg.Resolve("roast")
	require.True(t, ok)
	require.NoError(t, cmd.Run(context.Background(), commands.Invocation{
		Channel:    channel,
		Author:     "alice",
		AuthorName: "alice",
		Mentions:   []platform.UserID{"bob", "carol"},
	}))

	var roasted []string
	for _, msg := range h.rec.TextsSnapshot() {
		if strings.Contains(msg.Text, "terrible wifi") {
			roasted = append(roasted, msg.Text)
		}
	}
	require.Len(t, roasted, 2)
	assert.Contains(t, roasted[0], "@bob")
	assert.Contains(t, roasted[1], "@carol")
}

func TestCompliment_ComplimentsEveryMention(t *testing.T) {
	h := newHarness(t, nil)

	cmd, ok := h.reg.Resolve("compliment")
	require.True(t, ok)
	require.NoError(t, cmd.Run(context.Background(), commands.Invocation{
		Channel:    channel,
		Author:     "alice",
		AuthorName: "alice",
		Mentions:   []platform.UserID{"bob", "carol"},
	}))

	var praised []string
	for _, msg := range h.rec.TextsSnapshot() {
		if strings.Contains(msg.Text, "nice work") {
			praised = append(praised, msg.Text)
		}
	}
	require.Len(t, praised, 2)
	assert.Contains(t, praised[0], "@bob")
	assert.Contains(t, praised[1], "@carol")
}

func TestNeverHaveIEver_CountsReactors(t *testing.T) {
	h := newHarness(t, nil)
	h.rec.Reactions["msg-1"] = map[string][]platform.UserID{
		"🙋": {"bob", "carol"},
		"🙈": {"dave"},
	}

	h.run(t, "nhie", "alice")

	last := h.lastText(t)
	assert.Contains(t, last, "2 have")
	assert.Contains(t, last, "1 never")

	require.NotEmpty(t, h.rec.Embeds)
	assert.Len(t, h.rec.Seeded[h.rec.Embeds[0].Ref.ID], 2, "both emojis seeded without entering the tally")
}

func TestNeverHaveIEver_Tally(t *testing.T) {
	h := newHarness(t, nil)
	h.run(t, "nhie", "alice")

	require.NotEmpty(t, h.rec.Embeds)
	assert.Contains(t, h.rec.Embeds[0].Embed.Title, "Never have I ever")
	assert.Contains(t, h.lastText(t), "Time's up")
}

func TestHelp_ListsCommands(t *testing.T) {
	h := newHarness(t, nil)
	h.run(t, "help", "alice")

	require.NotEmpty(t, h.rec.Embeds)
	embed := h.rec.Embeds[len(h.rec.Embeds)-1].Embed
	assert.Contains(t, embed.Title, "commands")

	var all strings.Builder
	for _, f := range embed.Fields {
		all.WriteString(f.Value)
	}
	for _, name := range []string{"hangman", "tod", "roll", "ask", "help"} {
		assert.Contains(t, all.String(), name)
	}
}
