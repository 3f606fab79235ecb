package game

//go:generate mockgen -package=mocks -destination=mocks/mock_service.go github.com/KirkDiggler/tablebot/internal/services/game Service

import "context"

// Service defines the interface for game operations
type Service interface {
	// CreateGame opens a lobby in a Discord channel and seats its creator
	CreateGame(ctx context.Context, input *CreateGameInput) (*CreateGameOutput, error)

	// JoinGame seats a player in a channel's lobby
	JoinGame(ctx context.Context, input *JoinGameInput) (*JoinGameOutput, error)

	// LeaveGame unseats a player from the lobby, or forfeits them from a
	// running game
	LeaveGame(ctx context.Context, input *LeaveGameInput) (*LeaveGameOutput, error)

	// StartGame deals the cards. Only the creator may start.
	StartGame(ctx context.Context, input *StartGameInput) (*StartGameOutput, error)

	// Act applies one player's move
	Act(ctx context.Context, input *ActInput) (*ActOutput, error)

	// AbandonGame cancels a channel's game. Only the creator may abandon.
	AbandonGame(ctx context.Context, input *AbandonGameInput) (*AbandonGameOutput, error)

	// GetGame returns the public view of a channel's game
	GetGame(ctx context.Context, input *GetGameInput) (*GetGameOutput, error)

	// GetHand returns one player's private cards
	GetHand(ctx context.Context, input *GetHandInput) (*GetHandOutput, error)

	// RollDice rolls dice outside of any game
	RollDice(ctx context.Context, input *RollDiceInput) (*RollDiceOutput, error)

	// GetLeaderboard ranks players of one game type by wins
	GetLeaderboard(ctx context.Context, input *GetLeaderboardInput) (*GetLeaderboardOutput, error)

	// GetPlayerStats returns one player's record for every game type
	GetPlayerStats(ctx context.Context, input *GetPlayerStatsInput) (*GetPlayerStatsOutput, error)

	// GetBalance returns a player's coins for the guild's current season
	GetBalance(ctx context.Context, input *GetBalanceInput) (*GetBalanceOutput, error)

	// GetStandings ranks the guild's current season by coins
	GetStandings(ctx context.Context, input *GetStandingsInput) (*GetStandingsOutput, error)

	// GetHistory lists finished matches, for one channel or all channels
	GetHistory(ctx context.Context, input *GetHistoryInput) (*GetHistoryOutput, error)

	// ListGames summarises every live game
	ListGames(ctx context.Context, input *ListGamesInput) (*ListGamesOutput, error)

	// HandleExpired records a session that the registry timed out
	HandleExpired(ctx context.Context, input *HandleExpiredInput) (*HandleExpiredOutput, error)

	// RolloverSeasons starts a new coin season in every known guild
	RolloverSeasons(ctx context.Context, input *RolloverSeasonsInput) (*RolloverSeasonsOutput, error)
}
