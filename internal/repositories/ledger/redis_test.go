package ledger

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/KirkDiggler/tablebot/internal/common/clock"
	"github.com/KirkDiggler/tablebot/internal/common/uuid"
	"github.com/KirkDiggler/tablebot/internal/models"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
)

type RedisRepositoryTestSuite struct {
	suite.Suite
	mr     *miniredis.Miniredis
	client *redis.Client
	clock  *clock.Fake
	repo   Repository
	ctx    context.Context
}

func (s *RedisRepositoryTestSuite) SetupTest() {
	mr, err := miniredis.Run()
	s.Require().NoError(err)
	s.mr = mr

	s.client = redis.NewClient(&redis.Options{
		Addr: s.mr.Addr(),
	})

	s.clock = clock.NewFake(time.Date(2025, 4, 5, 10, 0, 0, 0, time.UTC))
	repo, err := NewRedis(&Config{
		RedisClient: s.client,
		Clock:       s.clock,
		UUID:        uuid.New(),
	})
	s.Require().NoError(err)
	s.repo = repo
	s.ctx = context.Background()
}

func (s *RedisRepositoryTestSuite) TearDownTest() {
	s.client.Close()
	s.mr.Close()
}

func TestRedisRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RedisRepositoryTestSuite))
}

func (s *RedisRepositoryTestSuite) credit(seasonID, playerID, matchID string, amount int64, reason models.LedgerReason) *CreateEntryOutput {
	s.clock.Advance(time.Minute)
	out, err := s.repo.CreateEntry(s.ctx, &CreateEntryInput{
		SeasonID: seasonID,
		PlayerID: playerID,
		MatchID:  matchID,
		Amount:   amount,
		Reason:   reason,
	})
	s.Require().NoError(err)
	return out
}

func (s *RedisRepositoryTestSuite) TestCreateEntryUpdatesBalances() {
	out := s.credit("season-1", "alice", "match-1", 50, models.LedgerReasonUnoWin)
	s.True(out.Applied)
	s.NotEmpty(out.Entry.ID)
	s.Equal(s.clock.Now(), out.Entry.Timestamp)

	s.credit("season-1", "alice", "match-1", 5, models.LedgerReasonParticipation)
	s.credit("season-2", "alice", "match-2", 20, models.LedgerReasonPokerWinnings)

	balance, err := s.repo.GetBalance(s.ctx, &GetBalanceInput{PlayerID: "alice", SeasonID: "season-1"})
	s.Require().NoError(err)
	s.Equal(int64(55), balance.Balance.Season)
	s.Equal(int64(75), balance.Balance.Lifetime)
}

func (s *RedisRepositoryTestSuite) TestCreateEntryIsIdempotent() {
	first := s.credit("season-1", "alice", "match-1", 50, models.LedgerReasonUnoWin)
	second := s.credit("season-1", "alice", "match-1", 50, models.LedgerReasonUnoWin)

	s.False(second.Applied)
	s.Equal(first.Entry.ID, second.Entry.ID)

	balance, err := s.repo.GetBalance(s.ctx, &GetBalanceInput{PlayerID: "alice", SeasonID: "season-1"})
	s.Require().NoError(err)
	s.Equal(int64(50), balance.Balance.Season)
	s.Equal(int64(50), balance.Balance.Lifetime)
}

func (s *RedisRepositoryTestSuite) TestCreateEntryValidation() {
	_, err := s.repo.CreateEntry(s.ctx, nil)
	s.Error(err)

	_, err = s.repo.CreateEntry(s.ctx, &CreateEntryInput{SeasonID: "season-1", PlayerID: "alice"})
	s.Error(err)

	_, err = s.repo.CreateEntry(s.ctx, &CreateEntryInput{
		SeasonID: "season-1",
		PlayerID: "alice",
		MatchID:  "match-1",
		Amount:   0,
	})
	s.Error(err)
}

func (s *RedisRepositoryTestSuite) TestGetBalanceForUnknownPlayer() {
	balance, err := s.repo.GetBalance(s.ctx, &GetBalanceInput{PlayerID: "nobody", SeasonID: "season-1"})
	s.Require().NoError(err)
	s.Equal(int64(0), balance.Balance.Season)
	s.Equal(int64(0), balance.Balance.Lifetime)
}

func (s *RedisRepositoryTestSuite) TestGetEntriesForPlayerNewestFirst() {
	s.credit("season-1", "alice", "match-1", 10, models.LedgerReasonParticipation)
	s.credit("season-1", "alice", "match-2", 20, models.LedgerReasonParticipation)
	s.credit("season-1", "alice", "match-3", 30, models.LedgerReasonParticipation)

	out, err := s.repo.GetEntriesForPlayer(s.ctx, &GetEntriesForPlayerInput{PlayerID: "alice"})
	s.Require().NoError(err)
	s.Require().Len(out.Entries, 3)
	s.Equal("match-3", out.Entries[0].MatchID)
	s.Equal("match-1", out.Entries[2].MatchID)

	limited, err := s.repo.GetEntriesForPlayer(s.ctx, &GetEntriesForPlayerInput{PlayerID: "alice", Limit: 2})
	s.Require().NoError(err)
	s.Len(limited.Entries, 2)

	empty, err := s.repo.GetEntriesForPlayer(s.ctx, &GetEntriesForPlayerInput{PlayerID: "bob"})
	s.Require().NoError(err)
	s.Empty(empty.Entries)
}

func (s *RedisRepositoryTestSuite) TestGetStandings() {
	s.credit("season-1", "alice", "match-1", 10, models.LedgerReasonParticipation)
	s.credit("season-1", "bob", "match-1", 40, models.LedgerReasonUnoWin)
	s.credit("season-1", "carol", "match-1", 25, models.LedgerReasonPokerWinnings)
	s.credit("season-2", "alice", "match-2", 100, models.LedgerReasonUnoWin)

	out, err := s.repo.GetStandings(s.ctx, &GetStandingsInput{SeasonID: "season-1"})
	s.Require().NoError(err)
	s.Require().Len(out.Balances, 3)
	s.Equal("bob", out.Balances[0].PlayerID)
	s.Equal(int64(40), out.Balances[0].Season)
	s.Equal("carol", out.Balances[1].PlayerID)
	s.Equal("alice", out.Balances[2].PlayerID)

	top, err := s.repo.GetStandings(s.ctx, &GetStandingsInput{SeasonID: "season-1", Limit: 1})
	s.Require().NoError(err)
	s.Len(top.Balances, 1)
}

func (s *RedisRepositoryTestSuite) TestSeasonRollover() {
	current, err := s.repo.GetCurrentSeason(s.ctx, &GetCurrentSeasonInput{GuildID: "guild-1"})
	s.Require().NoError(err)
	s.Nil(current.Season)

	first, err := s.repo.CreateSeason(s.ctx, &CreateSeasonInput{GuildID: "guild-1"})
	s.Require().NoError(err)
	s.Nil(first.Previous)
	s.Equal(1, first.Season.Number)
	s.True(first.Season.Active)

	s.clock.Advance(7 * 24 * time.Hour)
	second, err := s.repo.CreateSeason(s.ctx, &CreateSeasonInput{GuildID: "guild-1"})
	s.Require().NoError(err)
	s.Equal(2, second.Season.Number)
	s.Require().NotNil(second.Previous)
	s.Equal(first.Season.ID, second.Previous.ID)
	s.False(second.Previous.Active)
	s.Equal(s.clock.Now(), second.Previous.EndedAt)

	current, err = s.repo.GetCurrentSeason(s.ctx, &GetCurrentSeasonInput{GuildID: "guild-1"})
	s.Require().NoError(err)
	s.Require().NotNil(current.Season)
	s.Equal(second.Season.ID, current.Season.ID)

	// Seasons are numbered per guild
	other, err := s.repo.CreateSeason(s.ctx, &CreateSeasonInput{GuildID: "guild-0"})
	s.Require().NoError(err)
	s.Equal(1, other.Season.Number)

	guilds, err := s.repo.ListGuilds(s.ctx, &ListGuildsInput{})
	s.Require().NoError(err)
	s.Equal([]string{"guild-0", "guild-1"}, guilds.GuildIDs)
}

func (s *RedisRepositoryTestSuite) TestCreateEntryFailedWriteCanBeRetried() {
	// A string where the player's entry index belongs makes the first write fail
	s.Require().NoError(s.mr.Set(playerEntriesKeyPrefix+"alice", "corrupt"))

	input := &CreateEntryInput{
		SeasonID: "season-1",
		PlayerID: "alice",
		MatchID:  "match-1",
		Amount:   50,
		Reason:   models.LedgerReasonUnoWin,
	}
	_, err := s.repo.CreateEntry(s.ctx, input)
	s.Require().Error(err)
	s.False(s.mr.Exists(entryAppliedKeyPrefix + "match-1:alice:uno_win"))

	s.mr.Del(playerEntriesKeyPrefix + "alice")

	out, err := s.repo.CreateEntry(s.ctx, input)
	s.Require().NoError(err)
	s.True(out.Applied)

	balance, err := s.repo.GetBalance(s.ctx, &GetBalanceInput{PlayerID: "alice", SeasonID: "season-1"})
	s.Require().NoError(err)
	s.Equal(int64(50), balance.Balance.Season)
	s.Equal(int64(50), balance.Balance.Lifetime)

	entries, err := s.repo.GetEntriesForPlayer(s.ctx, &GetEntriesForPlayerInput{PlayerID: "alice"})
	s.Require().NoError(err)
	s.Require().Len(entries.Entries, 1)
	s.Equal(out.Entry.ID, entries.Entries[0].ID)
}

func (s *RedisRepositoryTestSuite) TestEnsureSeasonStartsOnce() {
	first, err := s.repo.EnsureSeason(s.ctx, &EnsureSeasonInput{GuildID: "guild-1"})
	s.Require().NoError(err)
	s.True(first.Created)
	s.Equal(1, first.Season.Number)

	again, err := s.repo.EnsureSeason(s.ctx, &EnsureSeasonInput{GuildID: "guild-1"})
	s.Require().NoError(err)
	s.False(again.Created)
	s.Equal(first.Season.ID, again.Season.ID)

	rolled, err := s.repo.CreateSeason(s.ctx, &CreateSeasonInput{GuildID: "guild-1"})
	s.Require().NoError(err)
	s.Equal(2, rolled.Season.Number)

	current, err := s.repo.EnsureSeason(s.ctx, &EnsureSeasonInput{GuildID: "guild-1"})
	s.Require().NoError(err)
	s.False(current.Created)
	s.Equal(rolled.Season.ID, current.Season.ID)

	_, err = s.repo.EnsureSeason(s.ctx, &EnsureSeasonInput{})
	s.Error(err)
}

func (s *RedisRepositoryTestSuite) TestEnsureSeasonConcurrentCallersAgree() {
	const callers = 8
	ids := make([]string, callers)
	errs := make([]error, callers)

	var wg sync.WaitGroup
	for n := 0; n < callers; n++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			out, err := s.repo.EnsureSeason(s.ctx, &EnsureSeasonInput{GuildID: "guild-1"})
			errs[n] = err
			if err == nil {
				ids[n] = out.Season.ID
			}
		}(n)
	}
	wg.Wait()

	for n := 0; n < callers; n++ {
		s.Require().NoError(errs[n])
		s.Equal(ids[0], ids[n])
	}

	current, err := s.repo.GetCurrentSeason(s.ctx, &GetCurrentSeasonInput{GuildID: "guild-1"})
	s.Require().NoError(err)
	s.Require().NotNil(current.Season)
	s.Equal(ids[0], current.Season.ID)
	s.Equal(1, current.Season.Number)
}
