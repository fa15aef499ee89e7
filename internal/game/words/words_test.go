package words_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/arjun-christopher/Functopus/internal/config"
	"github.com/arjun-christopher/Functopus/internal/game/words"
)

type zeroSource struct{}

func (zeroSource) Intn(int) int { return 0 }

func fastWordsConfig() config.WordsConfig {
	return config.WordsConfig{
		GenerativeTimeout: 50 * time.Millisecond,
		LookupTimeout:     50 * time.Millisecond,
	}
}

func provider(word string, err error) words.ProviderFunc {
	return func(context.Context) (string, error) { return word, err }
}

func TestResolve_PrefersGenerative(t *testing.T) {
	src := words.NewSource(
		provider("Cascade", nil),
		provider("fallback", nil),
		[]string{"listword"},
		zeroSource{}, fastWordsConfig(), zap.NewNop(),
	)
	assert.Equal(t, "cascade", src.Resolve(context.Background()))
}

func TestResolve_FallsBackToLookup(t *testing.T) {
	cases := []words.ProviderFunc{
		provider("", errors.New("model down")),
		provider("ab", nil),
		provider("toolongawordxx", nil),
		provider("c4scade", nil),
	}
	for _, generative := range cases {
		src := words.NewSource(
			generative,
			provider("paradigm", nil),
			[]string{"listword"},
			zeroSource{}, fastWordsConfig(), zap.NewNop(),
		)
		assert.Equal(t, "paradigm", src.Resolve(context.Background()))
	}
}

func TestResolve_LookupAcceptsShorterWords(t *testing.T) {
	// "cat" is too short for the generative tier but fine for lookup.
	src := words.NewSource(
		provider("", errors.New("down")),
		provider("cat", nil),
		[]string{"listword"},
		zeroSource{}, fastWordsConfig(), zap.NewNop(),
	)
	assert.Equal(t, "cat", src.Resolve(context.Background()))
}

func TestResolve_ListIsTheFloor(t *testing.T) {
	src := words.NewSource(
		provider("", errors.New("down")),
		provider("", errors.New("down too")),
		[]string{"wizard"},
		zeroSource{}, fastWordsConfig(), zap.NewNop(),
	)
	assert.Equal(t, "wizard", src.Resolve(context.Background()))
}

func TestResolve_NilProvidersSkipStraightToList(t *testing.T) {
	src := words.NewSource(nil, nil, []string{"magic"}, zeroSource{}, fastWordsConfig(), zap.NewNop())
	assert.Equal(t, "magic", src.Resolve(context.Background()))
}

func TestResolve_ProviderTimeoutFallsThrough(t *testing.T) {
	slow := words.ProviderFunc(func(ctx context.Context) (string, error) {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(time.Second):
			return "tooslowword", nil
		}
	})
	src := words.NewSource(slow, slow, []string{"hangman"}, zeroSource{}, fastWordsConfig(), zap.NewNop())

	start := time.Now()
	got := src.Resolve(context.Background())
	assert.Equal(t, "hangman", got)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestDefaultList_NonEmptyCopies(t *testing.T) {
	a := words.DefaultList()
	require.NotEmpty(t, a)
	a[0] = "mutated"
	assert.NotEqual(t, a[0], words.DefaultList()[0])
}

func TestLoadList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.yaml")
	require.NoError(t, os.WriteFile(path, []byte("words:\n  - alpha\n  - beta\n"), 0o644))

	list, err := words.LoadList(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta"}, list)

	_, err = words.LoadList(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	empty := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("words: []\n"), 0o644))
	_, err = words.LoadList(empty)
	assert.Error(t, err)
}
