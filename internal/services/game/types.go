package game

import (
	"github.com/KirkDiggler/tablebot/internal/common/clock"
	"github.com/KirkDiggler/tablebot/internal/games"
	"github.com/KirkDiggler/tablebot/internal/games/poker"
	"github.com/KirkDiggler/tablebot/internal/games/uno"
	"github.com/KirkDiggler/tablebot/internal/models"
	"github.com/KirkDiggler/tablebot/internal/registry"
	historyRepo "github.com/KirkDiggler/tablebot/internal/repositories/history"
	ledgerRepo "github.com/KirkDiggler/tablebot/internal/repositories/ledger"
	playerRepo "github.com/KirkDiggler/tablebot/internal/repositories/player"
	statsRepo "github.com/KirkDiggler/tablebot/internal/repositories/stats"
	"github.com/KirkDiggler/tablebot/internal/rng"
	"go.uber.org/zap"
)

// EngineFactory builds a fresh engine in the lobby phase
type EngineFactory func(kind games.Kind) (games.Engine, error)

// Rewards are the coins paid when a game finishes
type Rewards struct {
	// UnoWin is paid to the winner of an Uno game
	UnoWin int64

	// Participation is paid to every player seated at the end
	Participation int64
}

// Config holds configuration for the game service
type Config struct {
	// Registry holds the live sessions
	Registry *registry.Registry

	// Repositories
	StatsRepo   statsRepo.Repository
	PlayerRepo  playerRepo.Repository
	LedgerRepo  ledgerRepo.Repository
	HistoryRepo historyRepo.Repository

	// Optional; defaults to the system clock
	Clock clock.Clock

	// Optional; defaults to a no-op logger
	Logger *zap.Logger

	// Optional; builds engines from Uno and Poker
	NewEngine EngineFactory

	// Optional table settings for the default engine factory
	Uno   *uno.Config
	Poker *poker.Config

	// Dice rolls for /roll; defaults to a time-seeded roller
	Dice *rng.Roller

	Rewards Rewards
}

// Game is the public view of a channel's game
type Game struct {
	SessionID string
	GuildID   string
	ChannelID string
	CreatorID string
	Kind      games.Kind
	Phase     games.Phase
	Players   []string
	Turn      string

	// Version changes with every accepted action; echo it back in ActInput
	// to reject clicks on stale messages
	Version uint64

	// Snapshot is the engine's public state: uno.Snapshot or poker.Snapshot
	Snapshot any
}

// Settlement describes what a finished or cancelled game left behind
type Settlement struct {
	Status  models.MatchStatus
	Winners []string
	Results []games.Result
}

type CreateGameInput struct {
	GuildID     string
	ChannelID   string
	CreatorID   string
	CreatorName string
	Kind        games.Kind
}

type CreateGameOutput struct {
	Game *Game
}

type JoinGameInput struct {
	ChannelID  string
	PlayerID   string
	PlayerName string
}

type JoinGameOutput struct {
	Game *Game
}

type LeaveGameInput struct {
	ChannelID string
	PlayerID  string
}

type LeaveGameOutput struct {
	// Game is nil when the leaver was the last player in the lobby
	Game *Game

	// Forfeited is true when the player left a running game
	Forfeited bool

	// Settlement is set when the leave ended the game
	Settlement *Settlement
}

type StartGameInput struct {
	ChannelID string
	PlayerID  string
}

type StartGameOutput struct {
	Game *Game
}

type ActInput struct {
	ChannelID string
	PlayerID  string
	Move      games.Move

	// Version, when set, must match the game's current version
	Version uint64
}

type ActOutput struct {
	Game       *Game
	Action     games.Action
	Settlement *Settlement
}

type AbandonGameInput struct {
	ChannelID string
	PlayerID  string
}

type AbandonGameOutput struct {
	Game *Game
}

type GetGameInput struct {
	ChannelID string
}

type GetGameOutput struct {
	Game *Game
}

type GetHandInput struct {
	ChannelID string
	PlayerID  string
}

// GetHandOutput carries the private view for whichever game is running
type GetHandOutput struct {
	Game *Game

	// Uno
	UnoCards    []uno.Card
	UnoPlayable []int

	// UnoDrewPlayable is set after a voluntary draw turned up a playable
	// card; the player may only play that card or pass
	UnoDrewPlayable bool

	// Poker
	PokerCards   []poker.Card
	PokerOptions *poker.Options

	// PokerHandName names the best hand made with the board so far
	PokerHandName string
}

type RollDiceInput struct {
	Count int
	Sides int
}

type RollDiceOutput struct {
	Rolls []int
	Total int
}

type GetLeaderboardInput struct {
	Kind  games.Kind
	Limit int
}

type GetLeaderboardOutput struct {
	Leaderboard *models.Leaderboard
}

type GetPlayerStatsInput struct {
	PlayerID string
}

type GetPlayerStatsOutput struct {
	Stats []*models.PlayerStats
}

type GetBalanceInput struct {
	GuildID  string
	PlayerID string
}

type GetBalanceOutput struct {
	Balance *models.Balance
	Season  *models.Season

	// Recent holds the player's latest payouts, newest first
	Recent []*models.LedgerEntry
}

type GetStandingsInput struct {
	GuildID string
	Limit   int
}

type GetStandingsOutput struct {
	Season   *models.Season
	Balances []*models.Balance
}

type GetHistoryInput struct {
	// ChannelID narrows the list to one channel; empty lists every channel
	ChannelID string
	Limit     int
}

type GetHistoryOutput struct {
	Matches []*models.Match
}

type ListGamesInput struct{}

type ListGamesOutput struct {
	Games []registry.Summary
}

type HandleExpiredInput struct {
	Summary registry.Summary
	Reason  registry.Reason
}

type HandleExpiredOutput struct {
	Settlement *Settlement
}

type RolloverSeasonsInput struct{}

type RolloverSeasonsOutput struct {
	Seasons []*models.Season
}
