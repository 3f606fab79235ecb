package ledger

//go:generate mockgen -package=mocks -destination=mocks/mock_repository.go github.com/KirkDiggler/tablebot/internal/repositories/ledger Repository

import (
	"context"
)

// Repository persists coin payouts and the seasons they are ranked in
type Repository interface {
	// CreateEntry credits coins to a player. A second entry for the same
	// match, player and reason is ignored.
	CreateEntry(ctx context.Context, input *CreateEntryInput) (*CreateEntryOutput, error)

	// GetEntriesForPlayer retrieves a player's entries, newest first
	GetEntriesForPlayer(ctx context.Context, input *GetEntriesForPlayerInput) (*GetEntriesForPlayerOutput, error)

	// GetBalance returns a player's season and lifetime totals
	GetBalance(ctx context.Context, input *GetBalanceInput) (*GetBalanceOutput, error)

	// GetStandings ranks a season's players by balance
	GetStandings(ctx context.Context, input *GetStandingsInput) (*GetStandingsOutput, error)

	// CreateSeason starts a new season for a guild and ends the current one
	CreateSeason(ctx context.Context, input *CreateSeasonInput) (*CreateSeasonOutput, error)

	// EnsureSeason returns the guild's active season, starting the first one
	// when the guild has none. Concurrent callers get the same season.
	EnsureSeason(ctx context.Context, input *EnsureSeasonInput) (*EnsureSeasonOutput, error)

	// GetCurrentSeason retrieves the guild's active season, or nil
	GetCurrentSeason(ctx context.Context, input *GetCurrentSeasonInput) (*GetCurrentSeasonOutput, error)

	// ListGuilds returns every guild that has had a season
	ListGuilds(ctx context.Context, input *ListGuildsInput) (*ListGuildsOutput, error)
}
