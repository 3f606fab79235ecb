package models

// PlayerStats is one player's record for one game type
type PlayerStats struct {
	// PlayerID is the Discord user ID of the player
	PlayerID string

	// GameKey is the game type the stats are for
	GameKey string

	// Played is the number of finished games
	Played int64

	// Wins is the number of games won
	Wins int64

	// Losses is the number of games lost
	Losses int64

	// HighScore is the best single-game score
	HighScore int64
}

// Leaderboard ranks players of one game type by wins
type Leaderboard struct {
	// GameKey is the game type
	GameKey string

	// Entries are ordered best first
	Entries []*PlayerStats
}
