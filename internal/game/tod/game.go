// Package tod implements a multi-player truth-or-dare game: a joinable lobby
// with an ordered roster and a scheduler that runs the turn loop against the
// chat platform.
package tod

import (
	"errors"
	"sync"

	"github.com/arjun-christopher/Functopus/internal/platform"
)

// Phase describes where a game is in its lifecycle.
type Phase int

const (
	// Lobby means players may join and leave; the turn loop has not started.
	Lobby Phase = iota
	// Playing means the turn loop is running.
	Playing
	// Ended means the game is over and accepts no further operations.
	Ended
)

// String returns a human-readable phase name.
func (p Phase) String() string {
	switch p {
	case Lobby:
		return "lobby"
	case Playing:
		return "playing"
	case Ended:
		return "ended"
	default:
		return "unknown"
	}
}

// MinPlayers is the smallest roster with which a game can start.
const MinPlayers = 2

var (
	// ErrAlreadyJoined reports a join by a player already on the roster.
	ErrAlreadyJoined = errors.New("player already joined")
	// ErrNotJoined reports a leave by a player not on the roster.
	ErrNotJoined = errors.New("player has not joined")
	// ErrNotInLobby reports a join or start after the lobby closed.
	ErrNotInLobby = errors.New("game is no longer in the lobby phase")
	// ErrNotEnoughPlayers reports a start with too small a roster.
	ErrNotEnoughPlayers = errors.New("not enough players to start")
	// ErrEnded reports an operation on a finished game.
	ErrEnded = errors.New("game has ended")
)

// Player is one entry on the roster.
type Player struct {
	ID   platform.UserID
	Name string
}

// Game holds the roster and turn cursor for one channel's game. All methods
// are safe for concurrent use.
type Game struct {
	mu      sync.Mutex
	creator platform.UserID
	players []Player
	cursor  int
	phase   Phase
}

// NewGame creates a game in the lobby phase with the creator as the first
// player.
func NewGame(creator platform.UserID, creatorName string) *Game {
	return &Game{
		creator: creator,
		players: []Player{{ID: creator, Name: creatorName}},
	}
}

// Creator returns the player who opened the lobby.
func (g *Game) Creator() platform.UserID {
	return g.creator
}

// Phase returns the current lifecycle phase.
func (g *Game) Phase() Phase {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.phase
}

// Join adds a player to the roster.
//
// Precondition: The game must be in the lobby phase.
func (g *Game) Join(id platform.UserID, name string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.phase != Lobby {
		return ErrNotInLobby
	}
	for _, p := range g.players {
		if p.ID == id {
			return ErrAlreadyJoined
		}
	}
	g.players = append(g.players, Player{ID: id, Name: name})
	return nil
}

// Leave removes a player from the roster. It reports whether the roster is
// now empty. Removing a player before the cursor shifts the cursor back so
// the current player keeps their turn; removing the last roster slot wraps
// the cursor to the start.
func (g *Game) Leave(id platform.UserID) (empty bool, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.phase == Ended {
		return false, ErrEnded
	}
	idx := -1
	for i, p := range g.players {
		if p.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false, ErrNotJoined
	}

	g.players = append(g.players[:idx], g.players[idx+1:]...)
	if idx < g.cursor {
		g.cursor--
	}
	if g.cursor >= len(g.players) {
		g.cursor = 0
	}
	return len(g.players) == 0, nil
}

// Start closes the lobby and begins play.
//
// Precondition: At least MinPlayers players have joined.
func (g *Game) Start() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.phase != Lobby {
		return ErrNotInLobby
	}
	if len(g.players) < MinPlayers {
		return ErrNotEnoughPlayers
	}
	g.phase = Playing
	return nil
}

// End moves the game to the ended phase. Ending an already ended game is a
// no-op.
func (g *Game) End() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.phase = Ended
}

// CurrentPlayer returns the player whose turn it is.
func (g *Game) CurrentPlayer() (Player, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if len(g.players) == 0 || g.cursor >= len(g.players) {
		return Player{}, false
	}
	return g.players[g.cursor], true
}

// Advance moves the turn cursor to the next player, wrapping at the end of
// the roster.
func (g *Game) Advance() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if len(g.players) == 0 {
		g.cursor = 0
		return
	}
	g.cursor = (g.cursor + 1) % len(g.players)
}

// PlayerCount returns the roster size.
func (g *Game) PlayerCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.players)
}

// Players returns a copy of the roster in join order.
func (g *Game) Players() []Player {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]Player, len(g.players))
	copy(out, g.players)
	return out
}

// HasPlayer reports whether the user is on the roster.
func (g *Game) HasPlayer(id platform.UserID) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, p := range g.players {
		if p.ID == id {
			return true
		}
	}
	return false
}
