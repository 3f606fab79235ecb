package game

// GameError is a custom error type for game-related errors
type GameError string

// Error implements the error interface
func (e GameError) Error() string {
	return string(e)
}

// Define errors
const (
	ErrGameNotFound        GameError = "no game in this channel"
	ErrGameAlreadyExists   GameError = "a game is already running in this channel"
	ErrGameAlreadyStarted  GameError = "game has already started"
	ErrGameFull            GameError = "game is at maximum capacity"
	ErrNotEnoughPlayers    GameError = "not enough players to start"
	ErrPlayerAlreadyInGame GameError = "player already in game"
	ErrPlayerInOtherGame   GameError = "player is seated at a game in another channel"
	ErrPlayerNotInGame     GameError = "player not in game"
	ErrNotCreator          GameError = "only the player who opened the game can do that"
	ErrUnknownGame         GameError = "unknown game type"
	ErrStaleAction         GameError = "game has moved on since this was shown"
	ErrSessionAborted      GameError = "game was aborted after an internal error"
	ErrInvalidInput        GameError = "invalid input"
	ErrNilConfig           GameError = "config cannot be nil"
	ErrNilRegistry         GameError = "registry cannot be nil"
	ErrNilStatsRepo        GameError = "stats repository cannot be nil"
	ErrNilPlayerRepo       GameError = "player repository cannot be nil"
	ErrNilLedgerRepo       GameError = "ledger repository cannot be nil"
	ErrNilHistoryRepo      GameError = "history repository cannot be nil"
)
