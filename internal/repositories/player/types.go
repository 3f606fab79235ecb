package player

import "github.com/KirkDiggler/tablebot/internal/models"

// GetPlayerInput contains parameters for retrieving a player
type GetPlayerInput struct {
	PlayerID string
}

// SeatPlayerInput contains the player to seat
type SeatPlayerInput struct {
	Player *models.Player
}

// UnseatPlayerInput contains parameters for releasing one seat
type UnseatPlayerInput struct {
	PlayerID  string
	ChannelID string
}

// UnseatChannelInput contains parameters for releasing a table's seats
type UnseatChannelInput struct {
	ChannelID string
}

// UnseatChannelOutput lists the players whose seats were cleared
type UnseatChannelOutput struct {
	PlayerIDs []string
}
