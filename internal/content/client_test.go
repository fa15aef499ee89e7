package content

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/arjun-christopher/Functopus/internal/config"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := config.ContentConfig{
		TruthOrDareURL: srv.URL + "/v1",
		RandomWordURL:  srv.URL + "/word",
		JokeURL:        srv.URL + "/joke",
		FactURL:        srv.URL + "/fact",
		MemeURL:        srv.URL + "/meme",
		ComplimentURL:  srv.URL + "/compliment",
		InsultURL:      srv.URL + "/insult",
		TenorURL:       srv.URL + "/tenor",
		TenorKey:       "test-key",
		RequestTimeout: 2 * time.Second,
	}
	return NewClient(cfg, zap.NewNop()), srv
}

func TestTurnContent(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/truth", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"question":"What is your biggest fear?"}`))
	})
	mux.HandleFunc("/v1/dare", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"question":"Sing a song."}`))
	})
	c, _ := newTestClient(t, mux)

	truth, err := c.TurnContent(context.Background(), "truth")
	require.NoError(t, err)
	assert.Equal(t, "What is your biggest fear?", truth)

	dare, err := c.TurnContent(context.Background(), "dare")
	require.NoError(t, err)
	assert.Equal(t, "Sing a song.", dare)

	_, err = c.TurnContent(context.Background(), "chaos")
	assert.Error(t, err)
}

func TestTurnContent_UpstreamFailure(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	_, err := c.TurnContent(context.Background(), "truth")
	assert.ErrorContains(t, err, "status 502")
}

func TestNeverHaveIEver(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/nhie", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"question":"Never have I ever skipped a meeting."}`))
	})
	c, _ := newTestClient(t, mux)

	got, err := c.NeverHaveIEver(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Never have I ever skipped a meeting.", got)
}

func TestJoke(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/joke", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"setup":"Why do programmers prefer dark mode?","punchline":"Because light attracts bugs."}`))
	})
	c, _ := newTestClient(t, mux)

	got, err := c.Joke(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "**Why do programmers prefer dark mode?**\n\nBecause light attracts bugs.", got)
}

func TestUselessFactAndMeme(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/fact", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"text":"Bananas are berries."}`))
	})
	mux.HandleFunc("/meme", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"url":"https://example.com/meme.png"}`))
	})
	c, _ := newTestClient(t, mux)

	fact, err := c.UselessFact(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bananas are berries.", fact)

	meme, err := c.Meme(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/meme.png", meme)
}

func TestComplimentAndInsult(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/compliment", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"compliment":"You write readable code."}`))
	})
	mux.HandleFunc("/insult", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"insult":"Your code only compiles on Fridays."}`))
	})
	c, _ := newTestClient(t, mux)

	compliment, err := c.Compliment(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "You write readable code.", compliment)

	insult, err := c.Insult(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Your code only compiles on Fridays.", insult)
}

func TestSearchGIF(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/tenor", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		assert.Equal(t, "cats", r.URL.Query().Get("q"))
		w.Write([]byte(`{"results":[{"media_formats":{"gif":{"url":"https://example.com/cat.gif"}}}]}`))
	})
	c, _ := newTestClient(t, mux)

	got, err := c.SearchGIF(context.Background(), "cats")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/cat.gif", got)
}

func TestSearchGIF_NoResults(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/tenor", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"results":[]}`))
	})
	c, _ := newTestClient(t, mux)

	_, err := c.SearchGIF(context.Background(), "nothing")
	assert.Error(t, err)
}

func TestSearchGIF_RequiresKey(t *testing.T) {
	c := NewClient(config.ContentConfig{RequestTimeout: time.Second}, zap.NewNop())
	_, err := c.SearchGIF(context.Background(), "cats")
	assert.ErrorContains(t, err, "api key")
}

func TestWordClient(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/word", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`["cascade"]`))
	})
	c, _ := newTestClient(t, mux)

	word, err := NewWordClient(c).Word(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "cascade", word)
}

func TestWordClient_EmptyList(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/word", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`[]`))
	})
	c, _ := newTestClient(t, mux)

	_, err := NewWordClient(c).Word(context.Background())
	assert.Error(t, err)
}
