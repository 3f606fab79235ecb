package models

import (
	"time"
)

// Player is a Discord user known to the bot
type Player struct {
	// ID is the Discord user ID of the player
	ID string

	// Name is the display name of the player
	Name string

	// CurrentChannelID is the channel whose game the player is seated in
	CurrentChannelID string

	// LastSeen is when the player last joined or acted
	LastSeen time.Time
}
