package stats

//go:generate mockgen -package=mocks -destination=mocks/mock_repository.go github.com/KirkDiggler/tablebot/internal/repositories/stats Repository

import (
	"context"
)

// Repository persists per-game win/loss records and leaderboards
type Repository interface {
	// RecordResult applies one player's result for one match. Applying the
	// same (match, player) pair twice is a no-op.
	RecordResult(ctx context.Context, input *RecordResultInput) (*RecordResultOutput, error)

	// GetPlayerStats retrieves a player's record for every game they played
	GetPlayerStats(ctx context.Context, input *GetPlayerStatsInput) (*GetPlayerStatsOutput, error)

	// GetLeaderboard ranks players of one game by wins
	GetLeaderboard(ctx context.Context, input *GetLeaderboardInput) (*GetLeaderboardOutput, error)
}
