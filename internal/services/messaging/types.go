package messaging

import (
	"github.com/KirkDiggler/tablebot/internal/games"
	"github.com/KirkDiggler/tablebot/internal/models"
	"github.com/KirkDiggler/tablebot/internal/registry"
	"github.com/KirkDiggler/tablebot/internal/rng"
)

// MessageTone represents the tone of a message
type MessageTone string

const (
	// ToneNeutral is a neutral tone
	ToneNeutral MessageTone = "neutral"

	// ToneFunny is a humorous tone
	ToneFunny MessageTone = "funny"

	// ToneCelebration is a celebratory tone
	ToneCelebration MessageTone = "celebration"
)

// ServiceConfig contains configuration for the messaging service
type ServiceConfig struct {
	// Random picks between message variants; defaults to a time-seeded roller
	Random rng.Source
}

// GetJoinGameMessageInput contains parameters for getting a join game message
type GetJoinGameMessageInput struct {
	// PlayerName is the name of the player joining
	PlayerName string

	// Kind is the game being joined
	Kind games.Kind

	// Seated is the number of players after the join
	Seated int
}

// GetJoinGameMessageOutput contains the result of getting a join game message
type GetJoinGameMessageOutput struct {
	Message string
	Tone    MessageTone
}

// GetTurnMessageInput contains parameters for a turn nudge
type GetTurnMessageInput struct {
	PlayerName string
	Kind       games.Kind
}

// GetTurnMessageOutput contains the nudge
type GetTurnMessageOutput struct {
	Message string
}

// GetGameOverMessageInput describes how a game ended
type GetGameOverMessageInput struct {
	Kind   games.Kind
	Status models.MatchStatus

	// WinnerNames are display names of the winners, if any
	WinnerNames []string

	// Reason is set when the game timed out
	Reason registry.Reason
}

// GetGameOverMessageOutput contains the announcement
type GetGameOverMessageOutput struct {
	Title   string
	Message string
	Tone    MessageTone
}

// GetErrorMessageInput contains the error to explain
type GetErrorMessageInput struct {
	Err error
}

// GetErrorMessageOutput contains a user-facing explanation
type GetErrorMessageOutput struct {
	Title   string
	Message string

	// Ephemeral is true for errors only the acting player needs to see
	Ephemeral bool
}
