// Package words supplies hidden words for guessing games through a fallback
// chain: a generative model first, a lookup service second, and a built-in
// list as the floor that never fails.
package words

import (
	"context"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/arjun-christopher/Functopus/internal/config"
	"github.com/arjun-christopher/Functopus/internal/game/dice"
)

// Provider produces a single candidate word.
type Provider interface {
	// Word returns a candidate word. Implementations should honor ctx
	// cancellation and deadlines.
	Word(ctx context.Context) (string, error)
}

var (
	primaryPattern   = regexp.MustCompile(`^[a-z]{5,10}$`)
	secondaryPattern = regexp.MustCompile(`^[a-z]{3,12}$`)
)

// Source resolves words through the fallback chain. Either of the remote
// providers may be nil, in which case that tier is skipped.
type Source struct {
	generative Provider
	lookup     Provider
	list       []string
	rng        dice.Source
	cfg        config.WordsConfig
	logger     *zap.Logger
}

// NewSource creates a word source.
//
// Precondition: list must be non-empty; rng and logger must be non-nil.
func NewSource(generative, lookup Provider, list []string, rng dice.Source, cfg config.WordsConfig, logger *zap.Logger) *Source {
	if len(list) == 0 {
		panic("words: NewSource requires a non-empty word list")
	}
	return &Source{
		generative: generative,
		lookup:     lookup,
		list:       list,
		rng:        rng,
		cfg:        cfg,
		logger:     logger,
	}
}

// Resolve returns a playable word. It tries the generative provider, then
// the lookup provider, then picks from the built-in list. Resolve never
// fails; the list tier has no failure mode.
//
// Postcondition: The returned word is lowercase ASCII letters only.
func (s *Source) Resolve(ctx context.Context) string {
	if word, ok := s.try(ctx, s.generative, primaryPattern, s.cfg.GenerativeTimeout, "generative"); ok {
		return word
	}
	if word, ok := s.try(ctx, s.lookup, secondaryPattern, s.cfg.LookupTimeout, "lookup"); ok {
		return word
	}
	return s.list[s.rng.Intn(len(s.list))]
}

func (s *Source) try(ctx context.Context, p Provider, valid *regexp.Regexp, timeout time.Duration, tier string) (string, bool) {
	if p == nil {
		return "", false
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	word, err := p.Word(ctx)
	if err != nil {
		s.logger.Warn("word provider failed",
			zap.String("tier", tier),
			zap.Error(err),
		)
		return "", false
	}
	word = strings.ToLower(strings.TrimSpace(word))
	if !valid.MatchString(word) {
		s.logger.Warn("word provider returned unusable word",
			zap.String("tier", tier),
			zap.String("word", word),
		)
		return "", false
	}
	return word, true
}

// ProviderFunc adapts a function into a Provider.
type ProviderFunc func(ctx context.Context) (string, error)

// Word calls the underlying function.
func (f ProviderFunc) Word(ctx context.Context) (string, error) {
	return f(ctx)
}
