package registry

import (
	"sync"
	"time"

	"github.com/KirkDiggler/tablebot/internal/common/clock"
	"github.com/KirkDiggler/tablebot/internal/games"
)

// Session is one game bound to one channel. Its engine is only reachable
// through Registry.Do.
type Session struct {
	ID        string
	GuildID   string
	ChannelID string
	CreatorID string
	CreatedAt time.Time

	mu         sync.Mutex
	engine     games.Engine
	open       bool
	version    uint64
	generation uint64
	timer      clock.Timer
	deadline   time.Time
	lastActive time.Time
}

// Summary is a point-in-time copy of a session's public fields
type Summary struct {
	ID         string      `json:"id"`
	GuildID    string      `json:"guild_id,omitempty"`
	ChannelID  string      `json:"channel_id"`
	CreatorID  string      `json:"creator_id"`
	Kind       games.Kind  `json:"kind"`
	Phase      games.Phase `json:"phase"`
	Players    []string    `json:"players"`
	Turn       string      `json:"turn,omitempty"`
	Version    uint64      `json:"version"`
	CreatedAt  time.Time   `json:"created_at"`
	LastActive time.Time   `json:"last_active"`
	Deadline   time.Time   `json:"deadline"`
}

// Engine returns the session's engine. Only call it inside Registry.Do or
// Registry.View.
func (s *Session) Engine() games.Engine {
	return s.engine
}

// Version counts accepted actions. Only call it inside Registry.Do or
// Registry.View; inside Do it already counts the action being applied.
func (s *Session) Version() uint64 {
	return s.version
}

// End closes the session from inside Registry.Do; the registry frees the
// channel once the callback returns.
func (s *Session) End() {
	s.closeLocked()
}

// Summary returns a copy of the session's public state. It takes the session
// lock, so never call it inside Registry.Do.
func (s *Session) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summaryLocked()
}

func (s *Session) summaryLocked() Summary {
	return Summary{
		ID:         s.ID,
		GuildID:    s.GuildID,
		ChannelID:  s.ChannelID,
		CreatorID:  s.CreatorID,
		Kind:       s.engine.Kind(),
		Phase:      s.engine.Phase(),
		Players:    s.engine.Players(),
		Turn:       s.engine.CurrentPlayer(),
		Version:    s.version,
		CreatedAt:  s.CreatedAt,
		LastActive: s.lastActive,
		Deadline:   s.deadline,
	}
}

func (s *Session) closeLocked() {
	s.open = false
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
