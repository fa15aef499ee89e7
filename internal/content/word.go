package content

import (
	"context"
	"fmt"
)

// WordClient fetches single random words from a lookup service that responds
// with a JSON array of words.
type WordClient struct {
	client *Client
}

// NewWordClient creates a word client sharing the content client's transport.
func NewWordClient(client *Client) *WordClient {
	return &WordClient{client: client}
}

// Word returns the first word of the service's response.
func (w *WordClient) Word(ctx context.Context) (string, error) {
	var out []string
	if err := w.client.getJSON(ctx, w.client.cfg.RandomWordURL, &out); err != nil {
		return "", err
	}
	if len(out) == 0 {
		return "", fmt.Errorf("word service returned an empty list")
	}
	return out[0], nil
}
