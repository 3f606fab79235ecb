package models

import (
	"time"
)

// Season is a period over which coin balances are ranked. Each guild has
// exactly one active season at a time.
type Season struct {
	// ID is the unique identifier for this season
	ID string

	// GuildID is the Discord server this season belongs to
	GuildID string

	// Number counts seasons within the guild, starting at 1
	Number int

	// StartedAt is when the season began
	StartedAt time.Time

	// EndedAt is when the season was rolled over; zero while active
	EndedAt time.Time

	// Active indicates if this is the current season
	Active bool
}

// Balance is a player's coin total
type Balance struct {
	PlayerID string
	Season   int64
	Lifetime int64
}
