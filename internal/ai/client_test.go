package ai

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/arjun-christopher/Functopus/internal/config"
)

func TestNewClient_RequiresAPIKey(t *testing.T) {
	_, err := NewClient(config.AIConfig{}, zap.NewNop())
	assert.ErrorContains(t, err, "api key")

	c, err := NewClient(config.AIConfig{
		APIKey:         "test-key",
		Model:          "claude-3-5-haiku-latest",
		MaxTokens:      512,
		RequestTimeout: 10 * time.Second,
	}, zap.NewNop())
	require.NoError(t, err)
	assert.NotNil(t, c)
}
