package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arjun-christopher/Functopus/internal/commands"
)

// Result represents one finished guessing game in the database.
type Result struct {
	ID        int64
	ChannelID string
	PlayerID  string
	Word      string
	Won       bool
	CreatedAt time.Time
}

// LeaderboardRepository persists game results and computes standings.
type LeaderboardRepository struct {
	db *pgxpool.Pool
}

// NewLeaderboardRepository creates a LeaderboardRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewLeaderboardRepository(db *pgxpool.Pool) *LeaderboardRepository {
	return &LeaderboardRepository{db: db}
}

// RecordResult stores the outcome of one finished game.
//
// Precondition: channel, player and word must be non-empty.
func (r *LeaderboardRepository) RecordResult(ctx context.Context, channel, player, word string, won bool) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO hangman_results (channel_id, player_id, word, won) VALUES ($1, $2, $3, $4)`,
		channel, player, word, won,
	)
	if err != nil {
		return fmt.Errorf("inserting game result: %w", err)
	}
	return nil
}

// Top returns up to limit players ordered by wins descending, losses
// ascending.
//
// Precondition: limit must be > 0.
func (r *LeaderboardRepository) Top(ctx context.Context, limit int) ([]commands.LeaderboardEntry, error) {
	rows, err := r.db.Query(ctx,
		`SELECT player_id,
		        COUNT(*) FILTER (WHERE won) AS wins,
		        COUNT(*) FILTER (WHERE NOT won) AS losses
		   FROM hangman_results
		  GROUP BY player_id
		  ORDER BY wins DESC, losses ASC, player_id ASC
		  LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []commands.LeaderboardEntry
	for rows.Next() {
		var e commands.LeaderboardEntry
		if err := rows.Scan(&e.Player, &e.Wins, &e.Losses); err != nil {
			return nil, fmt.Errorf("scanning leaderboard row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating leaderboard rows: %w", err)
	}
	return entries, nil
}

// PlayerHistory returns the most recent results for a player, newest first.
//
// Precondition: limit must be > 0.
func (r *LeaderboardRepository) PlayerHistory(ctx context.Context, player string, limit int) ([]Result, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, channel_id, player_id, word, won, created_at
		   FROM hangman_results
		  WHERE player_id = $1
		  ORDER BY created_at DESC
		  LIMIT $2`,
		player, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying player history: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var res Result
		if err := rows.Scan(&res.ID, &res.ChannelID, &res.PlayerID, &res.Word, &res.Won, &res.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning result row: %w", err)
		}
		results = append(results, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating result rows: %w", err)
	}
	return results, nil
}
