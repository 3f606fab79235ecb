package registry

// Error is returned by registry operations
type Error string

// Error implements the error interface
func (e Error) Error() string {
	return string(e)
}

const (
	ErrChannelBusy   Error = "a game is already running in this channel"
	ErrNoSession     Error = "no game in this channel"
	ErrSessionClosed Error = "game is over"
	ErrStaleVersion  Error = "game has moved on since this was shown"
	ErrNilEngine     Error = "engine cannot be nil"
	ErrEmptyChannel  Error = "channel ID cannot be empty"
)
