package game

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/KirkDiggler/tablebot/internal/games"
	"github.com/KirkDiggler/tablebot/internal/models"
	"github.com/KirkDiggler/tablebot/internal/registry"
	historyRepo "github.com/KirkDiggler/tablebot/internal/repositories/history"
	ledgerRepo "github.com/KirkDiggler/tablebot/internal/repositories/ledger"
	playerRepo "github.com/KirkDiggler/tablebot/internal/repositories/player"
	statsRepo "github.com/KirkDiggler/tablebot/internal/repositories/stats"
	"go.uber.org/zap"
)

// closing is what a session leaves behind, captured under its lock and
// persisted after the lock is released
type closing struct {
	match   *models.Match
	kind    games.Kind
	results []games.Result
}

// closeMatch captures the session for persistence. The caller is inside Do.
func (s *service) closeMatch(sess *registry.Session, status models.MatchStatus) *closing {
	e := sess.Engine()
	c := &closing{
		kind: e.Kind(),
		match: &models.Match{
			ID:        sess.ID,
			GuildID:   sess.GuildID,
			ChannelID: sess.ChannelID,
			GameKey:   string(e.Kind()),
			CreatorID: sess.CreatorID,
			PlayerIDs: e.Players(),
			Status:    status,
			StartedAt: sess.CreatedAt,
			EndedAt:   s.clock.Now(),
		},
	}
	if status == models.MatchStatusCompleted {
		c.results = e.Results()
		for _, r := range c.results {
			if r.Won {
				c.match.WinnerIDs = append(c.match.WinnerIDs, r.PlayerID)
			}
		}
	}
	return c
}

// settle persists a closed session. Only completed matches touch stats and
// coins; every match is written to history and its players are unseated.
// Failures are logged: the game itself is already over.
func (s *service) settle(ctx context.Context, c *closing) *Settlement {
	logger := s.logger.With(
		zap.String("session_id", c.match.ID),
		zap.String("channel_id", c.match.ChannelID))

	if c.match.Status == models.MatchStatusCompleted {
		if err := s.recordResults(ctx, c); err != nil {
			logger.Error("failed to record results", zap.Error(err))
		}
		if err := s.payRewards(ctx, c); err != nil {
			logger.Error("failed to pay rewards", zap.Error(err))
		}
	}

	if err := s.historyRepo.SaveMatch(ctx, &historyRepo.SaveMatchInput{Match: c.match}); err != nil {
		logger.Error("failed to save match", zap.Error(err))
	}

	s.unseatChannel(ctx, logger, c.match.ChannelID)

	logger.Info("game closed",
		zap.String("status", string(c.match.Status)),
		zap.Strings("winners", c.match.WinnerIDs))

	return &Settlement{
		Status:  c.match.Status,
		Winners: c.match.WinnerIDs,
		Results: c.results,
	}
}

func (s *service) recordResults(ctx context.Context, c *closing) error {
	var errs []error
	for _, r := range c.results {
		_, err := s.statsRepo.RecordResult(ctx, &statsRepo.RecordResultInput{
			MatchID:  c.match.ID,
			PlayerID: r.PlayerID,
			GameKey:  c.match.GameKey,
			Won:      r.Won,
			Score:    r.Score,
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("player %s: %w", r.PlayerID, err))
		}
	}
	return errors.Join(errs...)
}

// payRewards credits coins for a completed match. Games outside a guild earn
// nothing because there is no season to rank them in.
func (s *service) payRewards(ctx context.Context, c *closing) error {
	if c.match.GuildID == "" {
		return nil
	}

	season, err := s.currentSeason(ctx, c.match.GuildID)
	if err != nil {
		return err
	}

	var errs []error
	credit := func(playerID string, amount int64, reason models.LedgerReason) {
		if amount <= 0 {
			return
		}
		_, err := s.ledgerRepo.CreateEntry(ctx, &ledgerRepo.CreateEntryInput{
			SeasonID:  season.ID,
			PlayerID:  playerID,
			MatchID:   c.match.ID,
			Amount:    amount,
			Reason:    reason,
			Timestamp: c.match.EndedAt,
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("player %s %s: %w", playerID, reason, err))
		}
	}

	for _, r := range c.results {
		credit(r.PlayerID, s.rewards.Participation, models.LedgerReasonParticipation)
		switch c.kind {
		case games.KindUno:
			if r.Won {
				credit(r.PlayerID, s.rewards.UnoWin, models.LedgerReasonUnoWin)
			}
		case games.KindPoker:
			credit(r.PlayerID, r.Score, models.LedgerReasonPokerWinnings)
		}
	}
	return errors.Join(errs...)
}

// currentSeason returns the guild's active season, starting the first one
// when the guild has never had one
func (s *service) currentSeason(ctx context.Context, guildID string) (*models.Season, error) {
	out, err := s.ledgerRepo.EnsureSeason(ctx, &ledgerRepo.EnsureSeasonInput{GuildID: guildID})
	if err != nil {
		return nil, fmt.Errorf("failed to get current season: %w", err)
	}
	if out.Created {
		s.logger.Info("season started",
			zap.String("guild_id", guildID),
			zap.Int("season", out.Season.Number))
	}
	return out.Season, nil
}

// ensureAvailable rejects players still seated at a live game in another
// channel. A stale seat left behind by a crash is ignored.
func (s *service) ensureAvailable(ctx context.Context, playerID, channelID string) error {
	p, err := s.playerRepo.GetPlayer(ctx, &playerRepo.GetPlayerInput{PlayerID: playerID})
	if err != nil {
		if errors.Is(err, playerRepo.ErrPlayerNotFound) {
			return nil
		}
		return fmt.Errorf("failed to get player: %w", err)
	}
	if p.CurrentChannelID == "" || p.CurrentChannelID == channelID {
		return nil
	}

	seated := false
	_ = s.registry.View(p.CurrentChannelID, func(sess *registry.Session) {
		seated = slices.Contains(sess.Engine().Players(), playerID)
	})
	if seated {
		return ErrPlayerInOtherGame
	}
	return nil
}

func (s *service) seatPlayer(ctx context.Context, playerID, name, channelID string) {
	err := s.playerRepo.SeatPlayer(ctx, &playerRepo.SeatPlayerInput{
		Player: &models.Player{
			ID:               playerID,
			Name:             name,
			CurrentChannelID: channelID,
			LastSeen:         s.clock.Now(),
		},
	})
	if err != nil {
		s.logger.Warn("failed to seat player",
			zap.String("player_id", playerID),
			zap.Error(err))
	}
}

func (s *service) unseatPlayer(ctx context.Context, playerID, channelID string) {
	err := s.playerRepo.UnseatPlayer(ctx, &playerRepo.UnseatPlayerInput{
		PlayerID:  playerID,
		ChannelID: channelID,
	})
	if err != nil && !errors.Is(err, playerRepo.ErrPlayerNotFound) {
		s.logger.Warn("failed to unseat player",
			zap.String("player_id", playerID),
			zap.Error(err))
	}
}

// unseatChannel frees everyone still seated at a closed table, including
// players whose own release failed earlier
func (s *service) unseatChannel(ctx context.Context, logger *zap.Logger, channelID string) {
	out, err := s.playerRepo.UnseatChannel(ctx, &playerRepo.UnseatChannelInput{ChannelID: channelID})
	if err != nil {
		logger.Warn("failed to unseat players", zap.Error(err))
		return
	}
	logger.Debug("players unseated", zap.Strings("player_ids", out.PlayerIDs))
}

// HandleExpired records a timed-out session as abandoned. No results or coins
// are written for it.
func (s *service) HandleExpired(ctx context.Context, input *HandleExpiredInput) (*HandleExpiredOutput, error) {
	if input == nil || input.Summary.ID == "" {
		return nil, ErrInvalidInput
	}
	summary := input.Summary

	s.logger.Info("game timed out",
		zap.String("session_id", summary.ID),
		zap.String("channel_id", summary.ChannelID),
		zap.String("reason", string(input.Reason)))

	settlement := s.settle(ctx, &closing{
		kind: summary.Kind,
		match: &models.Match{
			ID:        summary.ID,
			GuildID:   summary.GuildID,
			ChannelID: summary.ChannelID,
			GameKey:   string(summary.Kind),
			CreatorID: summary.CreatorID,
			PlayerIDs: summary.Players,
			Status:    models.MatchStatusAbandoned,
			StartedAt: summary.CreatedAt,
			EndedAt:   s.clock.Now(),
		},
	})

	return &HandleExpiredOutput{Settlement: settlement}, nil
}
