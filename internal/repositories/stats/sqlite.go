package stats

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/KirkDiggler/tablebot/internal/models"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS player_stats (
	player_id  TEXT    NOT NULL,
	game_key   TEXT    NOT NULL,
	played     INTEGER NOT NULL DEFAULT 0,
	wins       INTEGER NOT NULL DEFAULT 0,
	losses     INTEGER NOT NULL DEFAULT 0,
	high_score INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (player_id, game_key)
);
CREATE TABLE IF NOT EXISTS applied_results (
	match_id  TEXT NOT NULL,
	player_id TEXT NOT NULL,
	PRIMARY KEY (match_id, player_id)
);
CREATE INDEX IF NOT EXISTS player_stats_wins ON player_stats (game_key, wins DESC);
`

// SQLiteConfig holds configuration for the SQLite stats repository
type SQLiteConfig struct {
	// Path is the database file
	Path string
}

// sqliteRepository implements the Repository interface on a SQLite file
type sqliteRepository struct {
	db *sql.DB
}

// NewSQLite opens (creating if needed) a SQLite-backed stats repository
func NewSQLite(cfg *SQLiteConfig) (*sqliteRepository, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, errors.New("sqlite path cannot be empty")
	}

	dsn := filepath.Clean(cfg.Path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}
	// One writer keeps SQLite from returning SQLITE_BUSY under concurrent results.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &sqliteRepository{db: db}, nil
}

// Close closes the database handle
func (r *sqliteRepository) Close() error {
	return r.db.Close()
}

// RecordResult inserts the (match, player) marker and upserts the counters in
// one transaction
func (r *sqliteRepository) RecordResult(ctx context.Context, input *RecordResultInput) (*RecordResultOutput, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO applied_results (match_id, player_id) VALUES (?, ?)`,
		input.MatchID, input.PlayerID)
	if err != nil {
		return nil, fmt.Errorf("failed to claim result: %w", err)
	}
	claimed, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to claim result: %w", err)
	}

	if claimed == 1 {
		var wins, losses int64
		if input.Won {
			wins = 1
		} else {
			losses = 1
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO player_stats (player_id, game_key, played, wins, losses, high_score)
			 VALUES (?, ?, 1, ?, ?, ?)
			 ON CONFLICT (player_id, game_key) DO UPDATE SET
			   played     = played + 1,
			   wins       = wins + excluded.wins,
			   losses     = losses + excluded.losses,
			   high_score = MAX(high_score, excluded.high_score)`,
			input.PlayerID, input.GameKey, wins, losses, input.Score)
		if err != nil {
			return nil, fmt.Errorf("failed to record result: %w", err)
		}
	}

	stats, err := scanStats(tx.QueryRowContext(ctx,
		`SELECT player_id, game_key, played, wins, losses, high_score
		   FROM player_stats WHERE player_id = ? AND game_key = ?`,
		input.PlayerID, input.GameKey))
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to read stats: %w", err)
	}
	if stats == nil {
		stats = &models.PlayerStats{PlayerID: input.PlayerID, GameKey: input.GameKey}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit result: %w", err)
	}
	return &RecordResultOutput{Applied: claimed == 1, Stats: stats}, nil
}

// GetPlayerStats retrieves a player's stats for every game they played
func (r *sqliteRepository) GetPlayerStats(ctx context.Context, input *GetPlayerStatsInput) (*GetPlayerStatsOutput, error) {
	if input == nil || input.PlayerID == "" {
		return nil, errors.New("input and player ID cannot be empty")
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT player_id, game_key, played, wins, losses, high_score
		   FROM player_stats WHERE player_id = ? ORDER BY game_key`,
		input.PlayerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query stats: %w", err)
	}
	defer rows.Close()

	out := &GetPlayerStatsOutput{Stats: []*models.PlayerStats{}}
	for rows.Next() {
		stats, err := scanStats(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stats: %w", err)
		}
		out.Stats = append(out.Stats, stats)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate stats: %w", err)
	}
	return out, nil
}

// GetLeaderboard ranks players by wins, then by fewest games played
func (r *sqliteRepository) GetLeaderboard(ctx context.Context, input *GetLeaderboardInput) (*GetLeaderboardOutput, error) {
	if input == nil || input.GameKey == "" {
		return nil, errors.New("input and game key cannot be empty")
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT player_id, game_key, played, wins, losses, high_score
		   FROM player_stats WHERE game_key = ?
		  ORDER BY wins DESC, played ASC, player_id ASC
		  LIMIT ?`,
		input.GameKey, limitOrDefault(input.Limit))
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	board := &models.Leaderboard{GameKey: input.GameKey, Entries: []*models.PlayerStats{}}
	for rows.Next() {
		stats, err := scanStats(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard: %w", err)
		}
		board.Entries = append(board.Entries, stats)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate leaderboard: %w", err)
	}
	return &GetLeaderboardOutput{Leaderboard: board}, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanStats(row scanner) (*models.PlayerStats, error) {
	var s models.PlayerStats
	if err := row.Scan(&s.PlayerID, &s.GameKey, &s.Played, &s.Wins, &s.Losses, &s.HighScore); err != nil {
		return nil, err
	}
	return &s, nil
}
