// Package registry keeps the live game sessions, one per channel.
//
// Every session owns its engine and a single cancellable timer. While the
// session sits in the lobby the timer is the lobby deadline; once the game is
// running it is the inactivity deadline and every accepted action re-arms it.
// Timer callbacks and actions take the same session lock and both check that
// the session is still open, so whichever gets there first wins.
package registry

import (
	"sort"
	"sync"
	"time"

	"github.com/KirkDiggler/tablebot/internal/common/clock"
	"github.com/KirkDiggler/tablebot/internal/common/uuid"
	"github.com/KirkDiggler/tablebot/internal/games"
	"go.uber.org/zap"
)

const (
	defaultLobbyTimeout = 5 * time.Minute
	defaultIdleTimeout  = 3 * time.Minute
)

// Reason says why a session was closed by its timer
type Reason string

const (
	ReasonLobbyTimeout Reason = "lobby-timeout"
	ReasonIdleTimeout  Reason = "idle-timeout"
)

// ExpireFunc is told about sessions that timed out. It runs without any
// registry or session lock held.
type ExpireFunc func(summary Summary, reason Reason)

// Config for the registry
type Config struct {
	Clock        clock.Clock
	UUID         uuid.Generator
	Logger       *zap.Logger
	LobbyTimeout time.Duration
	IdleTimeout  time.Duration
}

// Registry maps channels to their live session
type Registry struct {
	clock        clock.Clock
	uuid         uuid.Generator
	logger       *zap.Logger
	lobbyTimeout time.Duration
	idleTimeout  time.Duration

	mu       sync.Mutex
	sessions map[string]*Session
	onExpire ExpireFunc
}

// New creates an empty registry
func New(cfg *Config) *Registry {
	r := &Registry{
		clock:        &clock.DefaultClock{},
		uuid:         uuid.New(),
		logger:       zap.NewNop(),
		lobbyTimeout: defaultLobbyTimeout,
		idleTimeout:  defaultIdleTimeout,
		sessions:     make(map[string]*Session),
	}
	if cfg == nil {
		return r
	}
	if cfg.Clock != nil {
		r.clock = cfg.Clock
	}
	if cfg.UUID != nil {
		r.uuid = cfg.UUID
	}
	if cfg.Logger != nil {
		r.logger = cfg.Logger
	}
	if cfg.LobbyTimeout > 0 {
		r.lobbyTimeout = cfg.LobbyTimeout
	}
	if cfg.IdleTimeout > 0 {
		r.idleTimeout = cfg.IdleTimeout
	}
	return r
}

// OnExpire sets the function told about timed-out sessions
func (r *Registry) OnExpire(fn ExpireFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onExpire = fn
}

// Create opens a session for channel around engine and arms the lobby timer.
// It fails with ErrChannelBusy when the channel already has a live session.
func (r *Registry) Create(guildID, channelID, creatorID string, engine games.Engine) (*Session, error) {
	if channelID == "" {
		return nil, ErrEmptyChannel
	}
	if engine == nil {
		return nil, ErrNilEngine
	}

	r.mu.Lock()
	if _, ok := r.sessions[channelID]; ok {
		r.mu.Unlock()
		return nil, ErrChannelBusy
	}
	now := r.clock.Now()
	s := &Session{
		ID:         r.uuid.NewID(),
		GuildID:    guildID,
		ChannelID:  channelID,
		CreatorID:  creatorID,
		CreatedAt:  now,
		engine:     engine,
		open:       true,
		version:    1,
		lastActive: now,
	}
	r.sessions[channelID] = s
	r.mu.Unlock()

	s.mu.Lock()
	r.arm(s, r.lobbyTimeout, ReasonLobbyTimeout)
	s.mu.Unlock()

	r.logger.Info("session created",
		zap.String("session_id", s.ID),
		zap.String("channel_id", channelID),
		zap.String("kind", string(engine.Kind())))
	return s, nil
}

// Get returns the live session for channel
func (r *Registry) Get(channelID string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[channelID]
	return s, ok
}

// Do runs fn with exclusive access to the channel's session. When fn returns
// nil the version is bumped and, for a running game, the inactivity timer is
// re-armed. If fn ends the session it is removed from the registry.
func (r *Registry) Do(channelID string, fn func(s *Session) error) error {
	return r.do(channelID, 0, fn)
}

// DoAt is Do guarded by a version check: it fails with ErrStaleVersion if
// anything happened to the session since version was read.
func (r *Registry) DoAt(channelID string, version uint64, fn func(s *Session) error) error {
	return r.do(channelID, version, fn)
}

func (r *Registry) do(channelID string, version uint64, fn func(s *Session) error) error {
	s, ok := r.Get(channelID)
	if !ok {
		return ErrNoSession
	}

	s.mu.Lock()
	if !s.open {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if version != 0 && version != s.version {
		s.mu.Unlock()
		return ErrStaleVersion
	}

	s.version++
	err := fn(s)
	if err != nil {
		s.version--
	}
	if err == nil && s.open {
		s.lastActive = r.clock.Now()
		switch s.engine.Phase() {
		case games.PhaseActive:
			r.arm(s, r.idleTimeout, ReasonIdleTimeout)
		case games.PhaseFinished:
			s.closeLocked()
		}
	}
	closed := !s.open
	s.mu.Unlock()

	if closed {
		r.detach(s)
	}
	return err
}

// View runs fn with read access to the channel's session. The version and
// timers are left alone.
func (r *Registry) View(channelID string, fn func(s *Session)) error {
	s, ok := r.Get(channelID)
	if !ok {
		return ErrNoSession
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open {
		return ErrSessionClosed
	}
	fn(s)
	return nil
}

// Remove closes the channel's session and frees the channel. It returns false
// if there was no session.
func (r *Registry) Remove(channelID string) bool {
	r.mu.Lock()
	s, ok := r.sessions[channelID]
	if ok {
		delete(r.sessions, channelID)
	}
	r.mu.Unlock()
	if !ok {
		return false
	}

	s.mu.Lock()
	s.closeLocked()
	s.mu.Unlock()

	r.logger.Info("session removed",
		zap.String("session_id", s.ID),
		zap.String("channel_id", channelID))
	return true
}

// List summarises every live session, oldest first
func (r *Registry) List() []Summary {
	r.mu.Lock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.mu.Unlock()

	out := make([]Summary, 0, len(sessions))
	for _, s := range sessions {
		s.mu.Lock()
		out = append(out, s.summaryLocked())
		s.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ChannelID < out[j].ChannelID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Len returns the number of live sessions
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// arm replaces the session's timer. The caller holds s.mu.
func (r *Registry) arm(s *Session, d time.Duration, reason Reason) {
	if s.timer != nil {
		s.timer.Stop()
	}
	s.generation++
	gen := s.generation
	s.deadline = r.clock.Now().Add(d)
	s.timer = r.clock.AfterFunc(d, func() {
		r.expire(s, gen, reason)
	})
}

func (r *Registry) expire(s *Session, gen uint64, reason Reason) {
	s.mu.Lock()
	if !s.open || s.generation != gen {
		s.mu.Unlock()
		return
	}
	summary := s.summaryLocked()
	s.closeLocked()
	s.mu.Unlock()

	r.detach(s)

	r.logger.Info("session expired",
		zap.String("session_id", s.ID),
		zap.String("channel_id", s.ChannelID),
		zap.String("reason", string(reason)))

	r.mu.Lock()
	fn := r.onExpire
	r.mu.Unlock()
	if fn != nil {
		fn(summary, reason)
	}
}

// detach drops s from the map unless the channel already holds a newer session
func (r *Registry) detach(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.sessions[s.ChannelID]; ok && cur == s {
		delete(r.sessions, s.ChannelID)
	}
}
