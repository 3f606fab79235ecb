package stats

import (
	"errors"

	"github.com/KirkDiggler/tablebot/internal/models"
)

// ErrInvalidInput is returned when a required field is missing
var ErrInvalidInput = errors.New("match ID, player ID and game key are required")

const defaultLeaderboardLimit = 10

// RecordResultInput contains one player's result
type RecordResultInput struct {
	MatchID  string
	PlayerID string
	GameKey  string
	Won      bool
	Score    int64
}

// RecordResultOutput contains the player's record after the result
type RecordResultOutput struct {
	// Applied is false when the result had already been recorded
	Applied bool
	Stats   *models.PlayerStats
}

// GetPlayerStatsInput contains parameters for retrieving a player's stats
type GetPlayerStatsInput struct {
	PlayerID string
}

// GetPlayerStatsOutput contains one entry per game key played
type GetPlayerStatsOutput struct {
	Stats []*models.PlayerStats
}

// GetLeaderboardInput contains parameters for retrieving a leaderboard
type GetLeaderboardInput struct {
	GameKey string

	// Limit caps the number of entries; zero means the default of 10
	Limit int
}

// GetLeaderboardOutput contains the leaderboard
type GetLeaderboardOutput struct {
	Leaderboard *models.Leaderboard
}

func (i *RecordResultInput) validate() error {
	if i == nil || i.MatchID == "" || i.PlayerID == "" || i.GameKey == "" {
		return ErrInvalidInput
	}
	return nil
}

func limitOrDefault(limit int) int {
	if limit <= 0 {
		return defaultLeaderboardLimit
	}
	return limit
}
