// Package registry tracks the at-most-one active game session per channel.
// The channel space is sharded so games in unrelated channels never contend
// on a lock.
package registry

import (
	"errors"
	"hash/fnv"
	"sync"

	"github.com/arjun-christopher/Functopus/internal/game/hangman"
	"github.com/arjun-christopher/Functopus/internal/game/tod"
	"github.com/arjun-christopher/Functopus/internal/platform"
)

var (
	// ErrSessionConflict reports an attempt to start a game in a channel
	// that already has one.
	ErrSessionConflict = errors.New("channel already has an active game")
	// ErrNoSession reports a lookup in a channel with no active game.
	ErrNoSession = errors.New("no active game in channel")
)

const shardCount = 16

// Session is the channel's active game, exactly one of the fields set.
type Session struct {
	Guess *hangman.Session
	Turn  *tod.Game
}

type shard struct {
	mu       sync.RWMutex
	sessions map[platform.ChannelID]Session
}

// Registry maps channels to their active game session.
type Registry struct {
	shards [shardCount]*shard
}

// New creates an empty registry.
func New() *Registry {
	r := &Registry{}
	for i := range r.shards {
		r.shards[i] = &shard{sessions: make(map[platform.ChannelID]Session)}
	}
	return r
}

func (r *Registry) shard(ch platform.ChannelID) *shard {
	h := fnv.New32a()
	h.Write([]byte(ch))
	return r.shards[h.Sum32()%shardCount]
}

// PutGuess registers a hangman session for the channel.
//
// Postcondition: On success the channel's only session is the given one.
func (r *Registry) PutGuess(ch platform.ChannelID, sess *hangman.Session) error {
	s := r.shard(ch)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.sessions[ch]; exists {
		return ErrSessionConflict
	}
	s.sessions[ch] = Session{Guess: sess}
	return nil
}

// PutTurn registers a turn game for the channel.
//
// Postcondition: On success the channel's only session is the given one.
func (r *Registry) PutTurn(ch platform.ChannelID, game *tod.Game) error {
	s := r.shard(ch)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.sessions[ch]; exists {
		return ErrSessionConflict
	}
	s.sessions[ch] = Session{Turn: game}
	return nil
}

// Guess returns the channel's hangman session. It reports false when the
// channel has no session or a session of another kind.
func (r *Registry) Guess(ch platform.ChannelID) (*hangman.Session, bool) {
	s := r.shard(ch)
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[ch]
	if !ok || sess.Guess == nil {
		return nil, false
	}
	return sess.Guess, true
}

// Turn returns the channel's turn game. It reports false when the channel
// has no session or a session of another kind.
func (r *Registry) Turn(ch platform.ChannelID) (*tod.Game, bool) {
	s := r.shard(ch)
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[ch]
	if !ok || sess.Turn == nil {
		return nil, false
	}
	return sess.Turn, true
}

// Lookup returns whatever session the channel holds.
func (r *Registry) Lookup(ch platform.ChannelID) (Session, bool) {
	s := r.shard(ch)
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[ch]
	return sess, ok
}

// Remove unconditionally clears the channel's session and reports whether
// one was present.
func (r *Registry) Remove(ch platform.ChannelID) bool {
	s := r.shard(ch)
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[ch]
	delete(s.sessions, ch)
	return ok
}

// RemoveIf clears the channel's session only if it is still the given turn
// game. A stale caller whose game has already been replaced removes nothing.
func (r *Registry) RemoveIf(ch platform.ChannelID, game *tod.Game) bool {
	s := r.shard(ch)
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[ch]
	if !ok || sess.Turn != game {
		return false
	}
	delete(s.sessions, ch)
	return true
}

// RemoveGuessIf clears the channel's session only if it is still the given
// hangman session.
func (r *Registry) RemoveGuessIf(ch platform.ChannelID, sess *hangman.Session) bool {
	s := r.shard(ch)
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.sessions[ch]
	if !ok || cur.Guess != sess {
		return false
	}
	delete(s.sessions, ch)
	return true
}

// Len returns the total number of active sessions.
func (r *Registry) Len() int {
	total := 0
	for _, s := range r.shards {
		s.mu.RLock()
		total += len(s.sessions)
		s.mu.RUnlock()
	}
	return total
}
