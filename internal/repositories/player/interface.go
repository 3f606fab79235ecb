package player

//go:generate mockgen -package=mocks -destination=mocks/mock_repository.go github.com/KirkDiggler/tablebot/internal/repositories/player Repository

import (
	"context"

	"github.com/KirkDiggler/tablebot/internal/models"
)

// Repository tracks which channel's table each player is seated at
type Repository interface {
	// GetPlayer retrieves a player by ID
	GetPlayer(ctx context.Context, input *GetPlayerInput) (*models.Player, error)

	// SeatPlayer records the player at their CurrentChannelID, releasing any
	// seat they held elsewhere
	SeatPlayer(ctx context.Context, input *SeatPlayerInput) error

	// UnseatPlayer clears the player's seat if they are still seated at the
	// given channel
	UnseatPlayer(ctx context.Context, input *UnseatPlayerInput) error

	// UnseatChannel clears every seat at a channel's table
	UnseatChannel(ctx context.Context, input *UnseatChannelInput) (*UnseatChannelOutput, error)
}
