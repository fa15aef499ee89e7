package hangman

import (
	"sort"
	"strings"
)

// stages holds the gallows drawings ordered from most damaged to untouched.
// Index 0 is the fully drawn figure shown when no attempts remain.
var stages = []string{
	`
   +---+
   |   |
   O   |
  /|\  |
  / \  |
       |
=========`,
	`
   +---+
   |   |
   O   |
  /|\  |
  /    |
       |
=========`,
	`
   +---+
   |   |
   O   |
  /|\  |
       |
       |
=========`,
	`
   +---+
   |   |
   O   |
  /|   |
       |
       |
=========`,
	`
   +---+
   |   |
   O   |
   |   |
       |
       |
=========`,
	`
   +---+
   |   |
   O   |
       |
       |
       |
=========`,
	`
   +---+
   |   |
       |
       |
       |
       |
=========`,
}

// Drawing returns the gallows stage for the given number of remaining
// attempts. Zero attempts yields the most damaged drawing; values beyond the
// stage count are clamped to the untouched gallows.
func Drawing(attemptsRemaining int) string {
	idx := attemptsRemaining
	if idx < 0 {
		idx = 0
	}
	if idx >= len(stages) {
		idx = len(stages) - 1
	}
	return stages[idx]
}

// Display returns the word with unrevealed letters masked, one space between
// positions, for example "c _ t".
func (s *Session) Display() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	parts := make([]string, 0, len(s.word))
	for _, r := range s.word {
		if s.revealed[r] {
			parts = append(parts, string(r))
		} else {
			parts = append(parts, "_")
		}
	}
	return strings.Join(parts, " ")
}

// GuessedSummary returns the wrong guesses so far in alphabetical order, or
// an empty string when there are none.
func (s *Session) GuessedSummary() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.wrong) == 0 {
		return ""
	}
	letters := make([]string, 0, len(s.wrong))
	for r := range s.wrong {
		letters = append(letters, string(r))
	}
	sort.Strings(letters)
	return strings.Join(letters, ", ")
}
