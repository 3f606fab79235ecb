package game

import (
	"context"
	"errors"
	"fmt"
	"slices"

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

const (
	maxDice  = 20
	maxSides = 1000

	// recentEntries is how many payouts a balance lookup lists
	recentEntries = 5
)

// service implements the Service interface
type service struct {
	registry    *registry.Registry
	statsRepo   statsRepo.Repository
	playerRepo  playerRepo.Repository
	ledgerRepo  ledgerRepo.Repository
	historyRepo historyRepo.Repository
	clock       clock.Clock
	logger      *zap.Logger
	newEngine   EngineFactory
	dice        *rng.Roller
	rewards     Rewards
}

// New creates a new game service. Session timeouts reach it through
// HandleExpired; wire that to Registry.OnExpire.
func New(cfg *Config) (*service, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	if cfg.Registry == nil {
		return nil, ErrNilRegistry
	}
	if cfg.StatsRepo == nil {
		return nil, ErrNilStatsRepo
	}
	if cfg.PlayerRepo == nil {
		return nil, ErrNilPlayerRepo
	}
	if cfg.LedgerRepo == nil {
		return nil, ErrNilLedgerRepo
	}
	if cfg.HistoryRepo == nil {
		return nil, ErrNilHistoryRepo
	}

	s := &service{
		registry:    cfg.Registry,
		statsRepo:   cfg.StatsRepo,
		playerRepo:  cfg.PlayerRepo,
		ledgerRepo:  cfg.LedgerRepo,
		historyRepo: cfg.HistoryRepo,
		clock:       cfg.Clock,
		logger:      cfg.Logger,
		newEngine:   cfg.NewEngine,
		dice:        cfg.Dice,
		rewards:     cfg.Rewards,
	}
	if s.clock == nil {
		s.clock = &clock.DefaultClock{}
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.newEngine == nil {
		s.newEngine = DefaultEngines(cfg.Uno, cfg.Poker)
	}
	if s.dice == nil {
		s.dice = rng.New(nil)
	}

	return s, nil
}

// DefaultEngines builds Uno and Poker tables, each with its own time-seeded
// shuffle
func DefaultEngines(unoCfg *uno.Config, pokerCfg *poker.Config) EngineFactory {
	return func(kind games.Kind) (games.Engine, error) {
		switch kind {
		case games.KindUno:
			return uno.New(unoCfg, rng.New(nil)), nil
		case games.KindPoker:
			return poker.New(pokerCfg, rng.New(nil)), nil
		}
		return nil, ErrUnknownGame
	}
}

// CreateGame opens a lobby in a Discord channel and seats its creator
func (s *service) CreateGame(ctx context.Context, input *CreateGameInput) (*CreateGameOutput, error) {
	if input == nil || input.ChannelID == "" || input.CreatorID == "" {
		return nil, ErrInvalidInput
	}
	if !input.Kind.Valid() {
		return nil, ErrUnknownGame
	}

	if err := s.ensureAvailable(ctx, input.CreatorID, input.ChannelID); err != nil {
		return nil, err
	}

	engine, err := s.newEngine(input.Kind)
	if err != nil {
		return nil, err
	}
	if !engine.AddPlayer(input.CreatorID) {
		return nil, fmt.Errorf("failed to seat creator %s", input.CreatorID)
	}

	if _, err := s.registry.Create(input.GuildID, input.ChannelID, input.CreatorID, engine); err != nil {
		if errors.Is(err, registry.ErrChannelBusy) {
			return nil, ErrGameAlreadyExists
		}
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.seatPlayer(ctx, input.CreatorID, input.CreatorName, input.ChannelID)

	var game *Game
	if err := s.registry.View(input.ChannelID, func(sess *registry.Session) {
		game = view(sess)
	}); err != nil {
		return nil, mapRegistryError(err)
	}

	return &CreateGameOutput{Game: game}, nil
}

// JoinGame seats a player in a channel's lobby
func (s *service) JoinGame(ctx context.Context, input *JoinGameInput) (*JoinGameOutput, error) {
	if input == nil || input.ChannelID == "" || input.PlayerID == "" {
		return nil, ErrInvalidInput
	}

	if err := s.ensureAvailable(ctx, input.PlayerID, input.ChannelID); err != nil {
		return nil, err
	}

	var game *Game
	err := s.registry.Do(input.ChannelID, func(sess *registry.Session) error {
		e := sess.Engine()
		if e.Phase() != games.PhaseLobby {
			return ErrGameAlreadyStarted
		}
		if slices.Contains(e.Players(), input.PlayerID) {
			return ErrPlayerAlreadyInGame
		}
		if !e.AddPlayer(input.PlayerID) {
			return ErrGameFull
		}
		game = view(sess)
		return nil
	})
	if err != nil {
		return nil, mapRegistryError(err)
	}

	s.seatPlayer(ctx, input.PlayerID, input.PlayerName, input.ChannelID)

	return &JoinGameOutput{Game: game}, nil
}

// LeaveGame unseats a player from the lobby, or forfeits them from a running
// game. The creator leaving the lobby closes it.
func (s *service) LeaveGame(ctx context.Context, input *LeaveGameInput) (*LeaveGameOutput, error) {
	if input == nil || input.ChannelID == "" || input.PlayerID == "" {
		return nil, ErrInvalidInput
	}

	out := &LeaveGameOutput{}
	var done *closing
	err := s.registry.Do(input.ChannelID, func(sess *registry.Session) error {
		e := sess.Engine()
		if !slices.Contains(e.Players(), input.PlayerID) {
			return ErrPlayerNotInGame
		}

		switch e.Phase() {
		case games.PhaseLobby:
			e.RemovePlayer(input.PlayerID)
			if input.PlayerID == sess.CreatorID || len(e.Players()) == 0 {
				done = s.closeMatch(sess, models.MatchStatusAbandoned)
				sess.End()
				return nil
			}
			out.Game = view(sess)
			return nil

		case games.PhaseActive:
			outcome, err := e.Forfeit(input.PlayerID)
			if err != nil {
				return s.engineError(sess, err, &done)
			}
			out.Forfeited = true
			out.Game = view(sess)
			if outcome.Finished {
				done = s.closeMatch(sess, models.MatchStatusCompleted)
			}
			return nil
		}

		return games.ErrGameNotActive
	})
	if done != nil {
		out.Settlement = s.settle(ctx, done)
	}
	if err != nil {
		return nil, mapRegistryError(err)
	}

	s.unseatPlayer(ctx, input.PlayerID, input.ChannelID)

	return out, nil
}

// StartGame deals the cards. Only the creator may start.
func (s *service) StartGame(ctx context.Context, input *StartGameInput) (*StartGameOutput, error) {
	if input == nil || input.ChannelID == "" || input.PlayerID == "" {
		return nil, ErrInvalidInput
	}

	var game *Game
	var done *closing
	err := s.registry.Do(input.ChannelID, func(sess *registry.Session) error {
		if sess.CreatorID != input.PlayerID {
			return ErrNotCreator
		}
		e := sess.Engine()
		if e.Phase() != games.PhaseLobby {
			return ErrGameAlreadyStarted
		}
		if !e.Start() {
			return ErrNotEnoughPlayers
		}
		game = view(sess)
		if e.Phase().IsTerminal() {
			done = s.closeMatch(sess, models.MatchStatusCompleted)
		}
		return nil
	})
	if err != nil {
		return nil, mapRegistryError(err)
	}
	if done != nil {
		s.settle(ctx, done)
	}

	s.logger.Info("game started",
		zap.String("channel_id", input.ChannelID),
		zap.String("session_id", game.SessionID),
		zap.String("kind", string(game.Kind)),
		zap.Int("players", len(game.Players)))

	return &StartGameOutput{Game: game}, nil
}

// Act applies one player's move. A rejected move changes nothing and is
// returned as a games.Rejection.
func (s *service) Act(ctx context.Context, input *ActInput) (*ActOutput, error) {
	if input == nil || input.ChannelID == "" || input.PlayerID == "" || input.Move == nil {
		return nil, ErrInvalidInput
	}

	out := &ActOutput{}
	var done *closing
	act := func(sess *registry.Session) error {
		outcome, err := sess.Engine().Apply(input.PlayerID, input.Move)
		if err != nil {
			return s.engineError(sess, err, &done)
		}
		out.Action = outcome.Action
		out.Game = view(sess)
		if outcome.Finished {
			done = s.closeMatch(sess, models.MatchStatusCompleted)
		}
		return nil
	}

	var err error
	if input.Version != 0 {
		err = s.registry.DoAt(input.ChannelID, input.Version, act)
	} else {
		err = s.registry.Do(input.ChannelID, act)
	}
	if done != nil {
		out.Settlement = s.settle(ctx, done)
	}
	if err != nil {
		return nil, mapRegistryError(err)
	}

	return out, nil
}

// AbandonGame cancels a channel's game. Only the creator may abandon.
func (s *service) AbandonGame(ctx context.Context, input *AbandonGameInput) (*AbandonGameOutput, error) {
	if input == nil || input.ChannelID == "" || input.PlayerID == "" {
		return nil, ErrInvalidInput
	}

	var game *Game
	var done *closing
	err := s.registry.Do(input.ChannelID, func(sess *registry.Session) error {
		if sess.CreatorID != input.PlayerID {
			return ErrNotCreator
		}
		game = view(sess)
		done = s.closeMatch(sess, models.MatchStatusAbandoned)
		sess.End()
		return nil
	})
	if err != nil {
		return nil, mapRegistryError(err)
	}
	s.settle(ctx, done)

	return &AbandonGameOutput{Game: game}, nil
}

// GetGame returns the public view of a channel's game
func (s *service) GetGame(ctx context.Context, input *GetGameInput) (*GetGameOutput, error) {
	if input == nil || input.ChannelID == "" {
		return nil, ErrInvalidInput
	}

	var game *Game
	if err := s.registry.View(input.ChannelID, func(sess *registry.Session) {
		game = view(sess)
	}); err != nil {
		return nil, mapRegistryError(err)
	}

	return &GetGameOutput{Game: game}, nil
}

// GetHand returns one player's private cards
func (s *service) GetHand(ctx context.Context, input *GetHandInput) (*GetHandOutput, error) {
	if input == nil || input.ChannelID == "" || input.PlayerID == "" {
		return nil, ErrInvalidInput
	}

	var out *GetHandOutput
	err := s.registry.View(input.ChannelID, func(sess *registry.Session) {
		if !slices.Contains(sess.Engine().Players(), input.PlayerID) {
			return
		}
		out = &GetHandOutput{Game: view(sess)}
		switch e := sess.Engine().(type) {
		case *uno.Engine:
			out.UnoCards = e.Hand(input.PlayerID)
			out.UnoPlayable = e.LegalPlays(input.PlayerID)
			out.UnoDrewPlayable = e.MustDrawOrPass() && e.CurrentPlayer() == input.PlayerID
		case *poker.Engine:
			out.PokerCards = e.Hand(input.PlayerID)
			if opts, ok := e.Options(input.PlayerID); ok {
				out.PokerOptions = &opts
			}
			out.PokerHandName = e.HandName(input.PlayerID)
		}
	})
	if err != nil {
		return nil, mapRegistryError(err)
	}
	if out == nil {
		return nil, ErrPlayerNotInGame
	}

	return out, nil
}

// RollDice rolls Count dice with Sides faces; zero values mean one six-sided die
func (s *service) RollDice(ctx context.Context, input *RollDiceInput) (*RollDiceOutput, error) {
	count, sides := 1, 6
	if input != nil {
		if input.Count < 0 || input.Count > maxDice || input.Sides < 0 || input.Sides > maxSides {
			return nil, ErrInvalidInput
		}
		if input.Count > 0 {
			count = input.Count
		}
		if input.Sides > 0 {
			sides = input.Sides
		}
	}

	out := &RollDiceOutput{Rolls: make([]int, count)}
	for i := range out.Rolls {
		out.Rolls[i] = s.dice.Roll(sides)
		out.Total += out.Rolls[i]
	}
	return out, nil
}

// GetLeaderboard ranks players of one game type by wins
func (s *service) GetLeaderboard(ctx context.Context, input *GetLeaderboardInput) (*GetLeaderboardOutput, error) {
	if input == nil {
		return nil, ErrInvalidInput
	}
	if !input.Kind.Valid() {
		return nil, ErrUnknownGame
	}

	out, err := s.statsRepo.GetLeaderboard(ctx, &statsRepo.GetLeaderboardInput{
		GameKey: string(input.Kind),
		Limit:   input.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}

	return &GetLeaderboardOutput{Leaderboard: out.Leaderboard}, nil
}

// GetPlayerStats returns one player's record for every game type
func (s *service) GetPlayerStats(ctx context.Context, input *GetPlayerStatsInput) (*GetPlayerStatsOutput, error) {
	if input == nil || input.PlayerID == "" {
		return nil, ErrInvalidInput
	}

	out, err := s.statsRepo.GetPlayerStats(ctx, &statsRepo.GetPlayerStatsInput{
		PlayerID: input.PlayerID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get player stats: %w", err)
	}

	return &GetPlayerStatsOutput{Stats: out.Stats}, nil
}

// GetBalance returns a player's coins. Without a guild only the lifetime
// total is filled in.
func (s *service) GetBalance(ctx context.Context, input *GetBalanceInput) (*GetBalanceOutput, error) {
	if input == nil || input.PlayerID == "" {
		return nil, ErrInvalidInput
	}

	var season *models.Season
	if input.GuildID != "" {
		current, err := s.ledgerRepo.GetCurrentSeason(ctx, &ledgerRepo.GetCurrentSeasonInput{
			GuildID: input.GuildID,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to get current season: %w", err)
		}
		season = current.Season
	}

	balanceInput := &ledgerRepo.GetBalanceInput{PlayerID: input.PlayerID}
	if season != nil {
		balanceInput.SeasonID = season.ID
	}
	out, err := s.ledgerRepo.GetBalance(ctx, balanceInput)
	if err != nil {
		return nil, fmt.Errorf("failed to get balance: %w", err)
	}

	recent, err := s.ledgerRepo.GetEntriesForPlayer(ctx, &ledgerRepo.GetEntriesForPlayerInput{
		PlayerID: input.PlayerID,
		Limit:    recentEntries,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger entries: %w", err)
	}

	return &GetBalanceOutput{Balance: out.Balance, Season: season, Recent: recent.Entries}, nil
}

// GetStandings ranks the guild's current season by coins
func (s *service) GetStandings(ctx context.Context, input *GetStandingsInput) (*GetStandingsOutput, error) {
	if input == nil || input.GuildID == "" {
		return nil, ErrInvalidInput
	}

	current, err := s.ledgerRepo.GetCurrentSeason(ctx, &ledgerRepo.GetCurrentSeasonInput{
		GuildID: input.GuildID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get current season: %w", err)
	}
	if current.Season == nil {
		return &GetStandingsOutput{Balances: []*models.Balance{}}, nil
	}

	out, err := s.ledgerRepo.GetStandings(ctx, &ledgerRepo.GetStandingsInput{
		SeasonID: current.Season.ID,
		Limit:    input.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get standings: %w", err)
	}

	return &GetStandingsOutput{Season: current.Season, Balances: out.Balances}, nil
}

// GetHistory lists finished matches, for one channel or all channels
func (s *service) GetHistory(ctx context.Context, input *GetHistoryInput) (*GetHistoryOutput, error) {
	if input == nil {
		input = &GetHistoryInput{}
	}

	var (
		out *historyRepo.GetMatchesOutput
		err error
	)
	if input.ChannelID != "" {
		out, err = s.historyRepo.GetMatchesByChannel(ctx, &historyRepo.GetMatchesByChannelInput{
			ChannelID: input.ChannelID,
			Limit:     input.Limit,
		})
	} else {
		out, err = s.historyRepo.GetRecentMatches(ctx, &historyRepo.GetRecentMatchesInput{
			Limit: input.Limit,
		})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get match history: %w", err)
	}

	return &GetHistoryOutput{Matches: out.Matches}, nil
}

// ListGames summarises every live game
func (s *service) ListGames(ctx context.Context, input *ListGamesInput) (*ListGamesOutput, error) {
	return &ListGamesOutput{Games: s.registry.List()}, nil
}

// RolloverSeasons starts a new coin season in every guild that has one.
// A failing guild does not stop the others.
func (s *service) RolloverSeasons(ctx context.Context, input *RolloverSeasonsInput) (*RolloverSeasonsOutput, error) {
	guilds, err := s.ledgerRepo.ListGuilds(ctx, &ledgerRepo.ListGuildsInput{})
	if err != nil {
		return nil, fmt.Errorf("failed to list guilds: %w", err)
	}

	out := &RolloverSeasonsOutput{}
	var errs []error
	for _, guildID := range guilds.GuildIDs {
		created, err := s.ledgerRepo.CreateSeason(ctx, &ledgerRepo.CreateSeasonInput{GuildID: guildID})
		if err != nil {
			s.logger.Error("failed to roll over season",
				zap.String("guild_id", guildID),
				zap.Error(err))
			errs = append(errs, fmt.Errorf("guild %s: %w", guildID, err))
			continue
		}
		s.logger.Info("season rolled over",
			zap.String("guild_id", guildID),
			zap.Int("season", created.Season.Number))
		out.Seasons = append(out.Seasons, created.Season)
	}

	return out, errors.Join(errs...)
}

// view copies the public state of a session. The caller is inside Do or View.
func view(sess *registry.Session) *Game {
	e := sess.Engine()
	return &Game{
		SessionID: sess.ID,
		GuildID:   sess.GuildID,
		ChannelID: sess.ChannelID,
		CreatorID: sess.CreatorID,
		Kind:      e.Kind(),
		Phase:     e.Phase(),
		Players:   e.Players(),
		Turn:      e.CurrentPlayer(),
		Version:   sess.Version(),
		Snapshot:  e.Snapshot(),
	}
}

// engineError passes rejections through untouched. Anything else means the
// engine can no longer be trusted, so the session is closed as aborted.
func (s *service) engineError(sess *registry.Session, err error, done **closing) error {
	if games.IsRejection(err) {
		return err
	}

	s.logger.Error("aborting game",
		zap.String("channel_id", sess.ChannelID),
		zap.String("session_id", sess.ID),
		zap.Error(err))
	*done = s.closeMatch(sess, models.MatchStatusAborted)
	sess.End()
	return fmt.Errorf("%w: %w", ErrSessionAborted, err)
}

func mapRegistryError(err error) error {
	switch {
	case errors.Is(err, registry.ErrNoSession), errors.Is(err, registry.ErrSessionClosed):
		return ErrGameNotFound
	case errors.Is(err, registry.ErrStaleVersion):
		return ErrStaleAction
	}
	return err
}
