package postgres_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arjun-christopher/Functopus/internal/storage/postgres"
	"github.com/arjun-christopher/Functopus/internal/testutil"
)

func TestLeaderboardRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	pc := testutil.NewPostgresContainer(t)
	pc.ApplyMigrations(t)
	repo := postgres.NewLeaderboardRepository(pc.RawPool)
	ctx := context.Background()

	require.NoError(t, repo.RecordResult(ctx, "chan-1", "alice", "cascade", true))
	require.NoError(t, repo.RecordResult(ctx, "chan-1", "alice", "wizard", true))
	require.NoError(t, repo.RecordResult(ctx, "chan-2", "alice", "magic", false))
	require.NoError(t, repo.RecordResult(ctx, "chan-1", "bob", "python", true))
	require.NoError(t, repo.RecordResult(ctx, "chan-2", "carol", "discord", false))

	top, err := repo.Top(ctx, 10)
	require.NoError(t, err)
	require.Len(t, top, 3)

	assert.Equal(t, "alice", top[0].Player)
	assert.Equal(t, 2, top[0].Wins)
	assert.Equal(t, 1, top[0].Losses)
	assert.Equal(t, "bob", top[1].Player)
	assert.Equal(t, "carol", top[2].Player)

	top, err = repo.Top(ctx, 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "alice", top[0].Player)

	history, err := repo.PlayerHistory(ctx, "alice", 10)
	require.NoError(t, err)
	require.Len(t, history, 3)
	for _, res := range history {
		assert.Equal(t, "alice", res.PlayerID)
		assert.False(t, res.CreatedAt.IsZero())
	}
}

func TestLeaderboardRepository_EmptyTable(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	pc := testutil.NewPostgresContainer(t)
	pc.ApplyMigrations(t)
	repo := postgres.NewLeaderboardRepository(pc.RawPool)

	top, err := repo.Top(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, top)
}
