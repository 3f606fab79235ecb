package history

//go:generate mockgen -package=mocks -destination=mocks/mock_repository.go github.com/KirkDiggler/tablebot/internal/repositories/history Repository

import (
	"context"

	"github.com/KirkDiggler/tablebot/internal/models"
)

// Repository defines the interface for finished match persistence
type Repository interface {
	// SaveMatch persists a match. Saving the same match ID twice overwrites it.
	SaveMatch(ctx context.Context, input *SaveMatchInput) error

	// GetMatch retrieves a match by ID
	GetMatch(ctx context.Context, input *GetMatchInput) (*models.Match, error)

	// GetMatchesByChannel retrieves a channel's matches, most recently ended first
	GetMatchesByChannel(ctx context.Context, input *GetMatchesByChannelInput) (*GetMatchesOutput, error)

	// GetRecentMatches retrieves matches across all channels, most recently ended first
	GetRecentMatches(ctx context.Context, input *GetRecentMatchesInput) (*GetMatchesOutput, error)
}
