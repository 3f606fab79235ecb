package messaging

//go:generate mockgen -package=mocks -destination=mocks/mock_service.go github.com/KirkDiggler/tablebot/internal/services/messaging Service

import "context"

// Service is the interface for the messaging service
type Service interface {
	// GetJoinGameMessage returns a message for when a player joins a game
	GetJoinGameMessage(ctx context.Context, input *GetJoinGameMessageInput) (*GetJoinGameMessageOutput, error)

	// GetTurnMessage returns a nudge for the player whose turn it is
	GetTurnMessage(ctx context.Context, input *GetTurnMessageInput) (*GetTurnMessageOutput, error)

	// GetGameOverMessage announces how a game ended
	GetGameOverMessage(ctx context.Context, input *GetGameOverMessageInput) (*GetGameOverMessageOutput, error)

	// GetErrorMessage turns a rejected move or failed command into a
	// user-friendly notice
	GetErrorMessage(ctx context.Context, input *GetErrorMessageInput) (*GetErrorMessageOutput, error)
}
