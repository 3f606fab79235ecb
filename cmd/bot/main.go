package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/KirkDiggler/tablebot/internal/config"
	"github.com/KirkDiggler/tablebot/internal/games/poker"
	"github.com/KirkDiggler/tablebot/internal/games/uno"
	"github.com/KirkDiggler/tablebot/internal/handlers/discord"
	"github.com/KirkDiggler/tablebot/internal/handlers/status"
	"github.com/KirkDiggler/tablebot/internal/logging"
	"github.com/KirkDiggler/tablebot/internal/registry"
	"github.com/KirkDiggler/tablebot/internal/repositories/history"
	"github.com/KirkDiggler/tablebot/internal/repositories/ledger"
	"github.com/KirkDiggler/tablebot/internal/repositories/player"
	"github.com/KirkDiggler/tablebot/internal/repositories/stats"
	"github.com/KirkDiggler/tablebot/internal/scheduler"
	gameService "github.com/KirkDiggler/tablebot/internal/services/game"
	"github.com/KirkDiggler/tablebot/internal/services/messaging"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "tablebot: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	// Initialize Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	// Test Redis connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	// Initialize repositories
	statsRepo, closeStats, err := newStatsRepository(cfg, redisClient)
	if err != nil {
		return err
	}
	defer closeStats()

	playerRepo, err := player.NewRedis(&player.Config{RedisClient: redisClient})
	if err != nil {
		return fmt.Errorf("failed to create player repository: %w", err)
	}

	ledgerRepo, err := ledger.NewRedis(&ledger.Config{RedisClient: redisClient})
	if err != nil {
		return fmt.Errorf("failed to create ledger repository: %w", err)
	}

	historyRepo, err := history.NewRedis(&history.Config{RedisClient: redisClient})
	if err != nil {
		return fmt.Errorf("failed to create history repository: %w", err)
	}

	sessions := registry.New(&registry.Config{
		Logger:       logger.Named("registry"),
		LobbyTimeout: cfg.Tables.LobbyTimeout,
		IdleTimeout:  cfg.Tables.IdleTimeout,
	})

	gameSvc, err := gameService.New(&gameService.Config{
		Registry:    sessions,
		StatsRepo:   statsRepo,
		PlayerRepo:  playerRepo,
		LedgerRepo:  ledgerRepo,
		HistoryRepo: historyRepo,
		Logger:      logger.Named("game"),
		Uno:         &uno.Config{HandSize: cfg.Tables.UnoHandSize},
		Poker: &poker.Config{
			StartingStack: cfg.Tables.PokerStartingStack,
			SmallBlind:    cfg.Tables.PokerSmallBlind,
			BigBlind:      cfg.Tables.PokerBigBlind,
		},
		Rewards: gameService.Rewards{
			UnoWin:        cfg.Rewards.UnoWin,
			Participation: cfg.Rewards.Participation,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create game service: %w", err)
	}

	messagingSvc, err := messaging.NewService(&messaging.ServiceConfig{})
	if err != nil {
		return fmt.Errorf("failed to create messaging service: %w", err)
	}

	bot, err := discord.New(&discord.Config{
		Token:            cfg.Discord.Token,
		ApplicationID:    cfg.Discord.ApplicationID,
		GuildID:          cfg.Discord.GuildID,
		GameService:      gameSvc,
		MessagingService: messagingSvc,
		Logger:           logger.Named("discord"),
	})
	if err != nil {
		return fmt.Errorf("failed to create Discord bot: %w", err)
	}

	// Timed-out tables are recorded first, then announced
	sessions.OnExpire(func(summary registry.Summary, reason registry.Reason) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		out, err := gameSvc.HandleExpired(ctx, &gameService.HandleExpiredInput{
			Summary: summary,
			Reason:  reason,
		})
		if err != nil {
			logger.Error("failed to record expired game",
				zap.String("session_id", summary.ID),
				zap.Error(err))
			return
		}
		bot.AnnounceExpired(ctx, summary, reason, out.Settlement)
	})

	jobs, err := scheduler.New(&scheduler.Config{
		GameService:    gameSvc,
		SeasonSchedule: cfg.SeasonSchedule,
		Logger:         logger.Named("scheduler"),
	})
	if err != nil {
		return err
	}
	jobs.Start()
	defer jobs.Stop()

	if cfg.StatusAddr != "" {
		statusServer, err := status.New(&status.Config{
			Addr:        cfg.StatusAddr,
			GameService: gameSvc,
			Logger:      logger.Named("status"),
		})
		if err != nil {
			return err
		}
		go func() {
			if err := statusServer.ListenAndServe(); err != nil {
				logger.Error("status server stopped", zap.Error(err))
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = statusServer.Shutdown(ctx)
		}()
	}

	if err := bot.Start(); err != nil {
		return fmt.Errorf("failed to start Discord bot: %w", err)
	}

	// Wait for interrupt signal to gracefully shutdown
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	if err := bot.Stop(); err != nil {
		logger.Warn("error stopping bot", zap.Error(err))
	}

	logger.Info("bot has been shut down", zap.Int("open_tables", sessions.Len()))
	return nil
}

func newStatsRepository(cfg *config.Config, redisClient *redis.Client) (stats.Repository, func(), error) {
	switch cfg.Stats.Backend {
	case config.StatsBackendSQLite:
		repo, err := stats.NewSQLite(&stats.SQLiteConfig{Path: cfg.Stats.SQLitePath})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create sqlite stats repository: %w", err)
		}
		return repo, func() { _ = repo.Close() }, nil
	default:
		repo, err := stats.NewRedis(&stats.Config{RedisClient: redisClient})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create stats repository: %w", err)
		}
		return repo, func() {}, nil
	}
}
