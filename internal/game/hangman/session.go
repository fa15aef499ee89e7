// Package hangman implements a single-player letter guessing game bound to a
// chat channel. One hidden word, a fixed pool of wrong guesses, and a gallows
// drawing that worsens as the pool drains.
package hangman

import (
	"errors"
	"fmt"
	"regexp"
	"sync"

	"github.com/arjun-christopher/Functopus/internal/platform"
)

// MaxAttempts is the number of wrong guesses a player is allowed before the
// game is lost.
const MaxAttempts = 6

// State describes where a session is in its lifecycle.
type State int

const (
	// Active means the word is not yet fully revealed and attempts remain.
	Active State = iota
	// Won means every letter of the word has been revealed.
	Won
	// Lost means the player ran out of attempts.
	Lost
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case Active:
		return "active"
	case Won:
		return "won"
	case Lost:
		return "lost"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

var (
	// ErrNotALetter reports a guess that is not a single ASCII letter.
	ErrNotALetter = errors.New("guess must be a single letter")
	// ErrAlreadyGuessed reports a letter that was guessed before.
	ErrAlreadyGuessed = errors.New("letter already guessed")
	// ErrFinished reports a guess submitted after the game ended.
	ErrFinished = errors.New("game already finished")
)

var wordPattern = regexp.MustCompile(`^[a-z]{3,12}$`)

// GuessOutcome describes the effect of a single guess.
type GuessOutcome struct {
	Letter            rune
	Hit               bool
	State             State
	AttemptsRemaining int
}

// Session is a hangman game in progress. All methods are safe for concurrent
// use.
type Session struct {
	mu       sync.Mutex
	word     string
	owner    platform.UserID
	revealed map[rune]bool
	wrong    map[rune]bool
	attempts int
	state    State
}

// New creates a session for the given word, owned by the starting player.
//
// Precondition: word must be 3 to 12 lowercase ASCII letters.
func New(word string, owner platform.UserID) (*Session, error) {
	if !wordPattern.MatchString(word) {
		return nil, fmt.Errorf("invalid word %q: must be 3-12 lowercase letters", word)
	}
	return &Session{
		word:     word,
		owner:    owner,
		revealed: make(map[rune]bool),
		wrong:    make(map[rune]bool),
		attempts: MaxAttempts,
	}, nil
}

// Owner returns the player who started the session.
func (s *Session) Owner() platform.UserID {
	return s.owner
}

// Word returns the hidden word.
func (s *Session) Word() string {
	return s.word
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// AttemptsRemaining returns the number of wrong guesses still allowed.
func (s *Session) AttemptsRemaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempts
}

// SubmitGuess applies a single letter guess. Uppercase input is folded to
// lowercase. A repeated letter is rejected without consuming an attempt.
//
// Postcondition: On a miss, AttemptsRemaining decreases by exactly one.
func (s *Session) SubmitGuess(letter rune) (GuessOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Active {
		return GuessOutcome{}, ErrFinished
	}

	if letter >= 'A' && letter <= 'Z' {
		letter += 'a' - 'A'
	}
	if letter < 'a' || letter > 'z' {
		return GuessOutcome{}, ErrNotALetter
	}
	if s.revealed[letter] || s.wrong[letter] {
		return GuessOutcome{}, ErrAlreadyGuessed
	}

	hit := false
	for _, r := range s.word {
		if r == letter {
			hit = true
			break
		}
	}

	if hit {
		s.revealed[letter] = true
		if s.fullyRevealed() {
			s.state = Won
		}
	} else {
		s.wrong[letter] = true
		s.attempts--
		if s.attempts == 0 {
			s.state = Lost
		}
	}

	return GuessOutcome{
		Letter:            letter,
		Hit:               hit,
		State:             s.state,
		AttemptsRemaining: s.attempts,
	}, nil
}

func (s *Session) fullyRevealed() bool {
	for _, r := range s.word {
		if !s.revealed[r] {
			return false
		}
	}
	return true
}

// CanStop reports whether the requesting user may end the session early.
// Only the session owner or a channel moderator may stop a game.
func (s *Session) CanStop(requester platform.UserID, moderator bool) bool {
	return moderator || requester == s.owner
}
