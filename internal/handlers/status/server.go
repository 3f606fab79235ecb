// Package status serves a small read-only HTTP view of the bot: liveness,
// live tables and recent matches.
package status

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/KirkDiggler/tablebot/internal/services/game"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxHistoryLimit = 100

// Config holds configuration for the status server
type Config struct {
	// Addr is the listen address, e.g. ":8080"
	Addr string

	GameService game.Service

	// Optional; defaults to a no-op logger
	Logger *zap.Logger
}

// Server is the status HTTP server
type Server struct {
	gameService game.Service
	logger      *zap.Logger
	router      *gin.Engine
	http        *http.Server
}

// New builds the router. Call ListenAndServe to start serving.
func New(cfg *Config) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if cfg.GameService == nil {
		return nil, errors.New("game service cannot be nil")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		gameService: cfg.GameService,
		logger:      logger,
		router:      gin.New(),
	}
	s.router.Use(gin.Recovery(), s.logRequests())
	s.router.GET("/healthz", s.healthz)
	s.router.GET("/sessions", s.sessions)
	s.router.GET("/matches", s.matches)

	s.http = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s, nil
}

// Handler exposes the router, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe blocks until the server stops. A clean Shutdown returns nil.
func (s *Server) ListenAndServe() error {
	s.logger.Info("status server listening", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) logRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("status request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}

func (s *Server) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) sessions(c *gin.Context) {
	out, err := s.gameService.ListGames(c.Request.Context(), &game.ListGamesInput{})
	if err != nil {
		s.logger.Error("failed to list games", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list games"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":    len(out.Games),
		"sessions": out.Games,
	})
}

type matchResponse struct {
	ID        string    `json:"id"`
	GuildID   string    `json:"guild_id,omitempty"`
	ChannelID string    `json:"channel_id"`
	Game      string    `json:"game"`
	Status    string    `json:"status"`
	Players   []string  `json:"players"`
	Winners   []string  `json:"winners,omitempty"`
	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at"`
}

func (s *Server) matches(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxHistoryLimit {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 100"})
			return
		}
		limit = n
	}

	out, err := s.gameService.GetHistory(c.Request.Context(), &game.GetHistoryInput{
		ChannelID: c.Query("channel_id"),
		Limit:     limit,
	})
	if err != nil {
		s.logger.Error("failed to get history", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get history"})
		return
	}

	matches := make([]matchResponse, 0, len(out.Matches))
	for _, m := range out.Matches {
		matches = append(matches, matchResponse{
			ID:        m.ID,
			GuildID:   m.GuildID,
			ChannelID: m.ChannelID,
			Game:      m.GameKey,
			Status:    string(m.Status),
			Players:   m.PlayerIDs,
			Winners:   m.WinnerIDs,
			StartedAt: m.StartedAt,
			EndedAt:   m.EndedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"matches": matches})
}
