// Package content fetches jokes, facts, memes, insults, GIFs and game
// prompts from public REST APIs.
package content

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/arjun-christopher/Functopus/internal/config"
)

// maxBodySize bounds downloaded response bodies.
const maxBodySize = 1 << 20

// Client talks to the external content APIs. It is safe for concurrent use.
type Client struct {
	http   *http.Client
	cfg    config.ContentConfig
	logger *zap.Logger
}

// NewClient creates a content client.
//
// Precondition: logger must be non-nil.
func NewClient(cfg config.ContentConfig, logger *zap.Logger) *Client {
	return &Client{
		http:   &http.Client{Timeout: cfg.RequestTimeout},
		cfg:    cfg,
		logger: logger,
	}
}

func (c *Client) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("building request for %s: %w", rawURL, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("requesting %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("requesting %s: unexpected status %d", rawURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("reading response from %s: %w", rawURL, err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding response from %s: %w", rawURL, err)
	}
	return nil
}

// TurnContent returns a question or challenge for a turn game.
//
// Precondition: kind must be "truth" or "dare".
func (c *Client) TurnContent(ctx context.Context, kind string) (string, error) {
	if kind != "truth" && kind != "dare" {
		return "", fmt.Errorf("unknown turn kind %q", kind)
	}
	var out struct {
		Question string `json:"question"`
	}
	if err := c.getJSON(ctx, c.cfg.TruthOrDareURL+"/"+kind, &out); err != nil {
		return "", err
	}
	if out.Question == "" {
		return "", fmt.Errorf("empty %s question", kind)
	}
	return out.Question, nil
}

// NeverHaveIEver returns a "never have I ever" statement.
func (c *Client) NeverHaveIEver(ctx context.Context) (string, error) {
	var out struct {
		Question string `json:"question"`
	}
	if err := c.getJSON(ctx, c.cfg.TruthOrDareURL+"/nhie", &out); err != nil {
		return "", err
	}
	if out.Question == "" {
		return "", fmt.Errorf("empty nhie statement")
	}
	return out.Question, nil
}

// Joke returns a two-part joke rendered as setup and punchline.
func (c *Client) Joke(ctx context.Context) (string, error) {
	var out struct {
		Setup     string `json:"setup"`
		Punchline string `json:"punchline"`
	}
	if err := c.getJSON(ctx, c.cfg.JokeURL, &out); err != nil {
		return "", err
	}
	if out.Setup == "" {
		return "", fmt.Errorf("empty joke")
	}
	return fmt.Sprintf("**%s**\n\n%s", out.Setup, out.Punchline), nil
}

// UselessFact returns a random fact.
func (c *Client) UselessFact(ctx context.Context) (string, error) {
	var out struct {
		Text string `json:"text"`
	}
	if err := c.getJSON(ctx, c.cfg.FactURL, &out); err != nil {
		return "", err
	}
	if out.Text == "" {
		return "", fmt.Errorf("empty fact")
	}
	return out.Text, nil
}

// Meme returns the image URL of a random meme.
func (c *Client) Meme(ctx context.Context) (string, error) {
	var out struct {
		URL string `json:"url"`
	}
	if err := c.getJSON(ctx, c.cfg.MemeURL, &out); err != nil {
		return "", err
	}
	if out.URL == "" {
		return "", fmt.Errorf("meme response had no url")
	}
	return out.URL, nil
}

// Compliment returns a random compliment.
func (c *Client) Compliment(ctx context.Context) (string, error) {
	var out struct {
		Compliment string `json:"compliment"`
	}
	if err := c.getJSON(ctx, c.cfg.ComplimentURL, &out); err != nil {
		return "", err
	}
	if out.Compliment == "" {
		return "", fmt.Errorf("empty compliment")
	}
	return out.Compliment, nil
}

// Insult returns a random insult.
func (c *Client) Insult(ctx context.Context) (string, error) {
	var out struct {
		Insult string `json:"insult"`
	}
	if err := c.getJSON(ctx, c.cfg.InsultURL, &out); err != nil {
		return "", err
	}
	if out.Insult == "" {
		return "", fmt.Errorf("empty insult")
	}
	return out.Insult, nil
}

// SearchGIF returns the URL of a GIF matching the query.
//
// Precondition: The Tenor API key must be configured.
func (c *Client) SearchGIF(ctx context.Context, query string) (string, error) {
	if c.cfg.TenorKey == "" {
		return "", fmt.Errorf("tenor api key not configured")
	}
	q := url.Values{}
	q.Set("q", query)
	q.Set("key", c.cfg.TenorKey)
	q.Set("limit", "1")
	q.Set("media_filter", "gif")
	q.Set("contentfilter", "medium")

	var out struct {
		Results []struct {
			MediaFormats struct {
				GIF struct {
					URL string `json:"url"`
				} `json:"gif"`
			} `json:"media_formats"`
		} `json:"results"`
	}
	if err := c.getJSON(ctx, c.cfg.TenorURL+"?"+q.Encode(), &out); err != nil {
		return "", err
	}
	if len(out.Results) == 0 || out.Results[0].MediaFormats.GIF.URL == "" {
		return "", fmt.Errorf("no gif found for %q", strings.TrimSpace(query))
	}
	return out.Results[0].MediaFormats.GIF.URL, nil
}
