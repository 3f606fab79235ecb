package ledger

import (
	"time"

	"github.com/KirkDiggler/tablebot/internal/models"
)

// CreateEntryInput contains parameters for crediting coins
type CreateEntryInput struct {
	SeasonID  string
	PlayerID  string
	MatchID   string
	Amount    int64
	Reason    models.LedgerReason
	Timestamp time.Time
}

// CreateEntryOutput contains the stored entry
type CreateEntryOutput struct {
	// Applied is false when an entry for the same match, player and reason
	// already existed
	Applied bool
	Entry   *models.LedgerEntry
}

// GetEntriesForPlayerInput contains parameters for retrieving a player's entries
type GetEntriesForPlayerInput struct {
	PlayerID string

	// Limit caps the number of entries; zero means all
	Limit int
}

// GetEntriesForPlayerOutput contains a player's entries
type GetEntriesForPlayerOutput struct {
	Entries []*models.LedgerEntry
}

// GetBalanceInput contains parameters for retrieving a balance
type GetBalanceInput struct {
	PlayerID string
	SeasonID string
}

// GetBalanceOutput contains a balance
type GetBalanceOutput struct {
	Balance *models.Balance
}

// GetStandingsInput contains parameters for ranking a season
type GetStandingsInput struct {
	SeasonID string
	Limit    int
}

// GetStandingsOutput contains balances ordered highest first
type GetStandingsOutput struct {
	Balances []*models.Balance
}

// CreateSeasonInput contains parameters for starting a season
type CreateSeasonInput struct {
	GuildID string
}

// CreateSeasonOutput contains the new season and the one it replaced
type CreateSeasonOutput struct {
	Season   *models.Season
	Previous *models.Season
}

// EnsureSeasonInput contains parameters for finding or starting a season
type EnsureSeasonInput struct {
	GuildID string
}

// EnsureSeasonOutput contains the active season
type EnsureSeasonOutput struct {
	Season *models.Season

	// Created is true when this call started the season
	Created bool
}

// GetCurrentSeasonInput contains parameters for retrieving the current season
type GetCurrentSeasonInput struct {
	GuildID string
}

// GetCurrentSeasonOutput contains the current season, or nil if none exists
type GetCurrentSeasonOutput struct {
	Season *models.Season
}

// ListGuildsInput contains no parameters
type ListGuildsInput struct{}

// ListGuildsOutput contains guild IDs in lexical order
type ListGuildsOutput struct {
	GuildIDs []string
}
