package models

import (
	"time"
)

// MatchStatus records how a game session ended
type MatchStatus string

const (
	// MatchStatusCompleted indicates the game reached a winner
	MatchStatusCompleted MatchStatus = "completed"

	// MatchStatusAbandoned indicates the game was cancelled or timed out
	MatchStatusAbandoned MatchStatus = "abandoned"

	// MatchStatusAborted indicates the engine hit a broken invariant
	MatchStatusAborted MatchStatus = "aborted"
)

// Match is the history record of one game session
type Match struct {
	// ID is the session ID the match was played under
	ID string

	// GuildID is the Discord server the match was played in
	GuildID string

	// ChannelID is the Discord channel the match was played in
	ChannelID string

	// GameKey is the game type, e.g. "uno" or "poker"
	GameKey string

	// CreatorID is the user who opened the lobby
	CreatorID string

	// PlayerIDs are the seated players in seat order
	PlayerIDs []string

	// WinnerIDs are the players who won; empty unless completed
	WinnerIDs []string

	// Status is how the match ended
	Status MatchStatus

	// StartedAt is when the lobby was opened
	StartedAt time.Time

	// EndedAt is when the match ended
	EndedAt time.Time
}
