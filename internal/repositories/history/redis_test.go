package history

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/KirkDiggler/tablebot/internal/models"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
)

type RedisRepositoryTestSuite struct {
	suite.Suite
	mr      *miniredis.Miniredis
	client  *redis.Client
	repo    Repository
	ctx     context.Context
	testNow time.Time
}

func (s *RedisRepositoryTestSuite) SetupTest() {
	// Create a new miniredis server for each test
	mr, err := miniredis.Run()
	s.Require().NoError(err)
	s.mr = mr

	s.client = redis.NewClient(&redis.Options{
		Addr: s.mr.Addr(),
	})

	repo, err := NewRedis(&Config{
		RedisClient: s.client,
	})
	s.Require().NoError(err)
	s.repo = repo
	s.ctx = context.Background()

	s.testNow = time.Date(2025, 4, 5, 10, 0, 0, 0, time.UTC)
}

func (s *RedisRepositoryTestSuite) TearDownTest() {
	s.client.Close()
	s.mr.Close()
}

func TestRedisRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RedisRepositoryTestSuite))
}

func (s *RedisRepositoryTestSuite) match(id, channelID string, endedAfter time.Duration) *models.Match {
	return &models.Match{
		ID:        id,
		GuildID:   "guild-1",
		ChannelID: channelID,
		GameKey:   "uno",
		CreatorID: "alice",
		PlayerIDs: []string{"alice", "bob"},
		WinnerIDs: []string{"bob"},
		Status:    models.MatchStatusCompleted,
		StartedAt: s.testNow,
		EndedAt:   s.testNow.Add(endedAfter),
	}
}

func (s *RedisRepositoryTestSuite) TestSaveAndGetMatch() {
	m := s.match("match-1", "channel-1", 10*time.Minute)
	s.Require().NoError(s.repo.SaveMatch(s.ctx, &SaveMatchInput{Match: m}))

	got, err := s.repo.GetMatch(s.ctx, &GetMatchInput{MatchID: "match-1"})
	s.Require().NoError(err)
	s.Equal("channel-1", got.ChannelID)
	s.Equal([]string{"alice", "bob"}, got.PlayerIDs)
	s.Equal([]string{"bob"}, got.WinnerIDs)
	s.Equal(models.MatchStatusCompleted, got.Status)
	s.True(m.EndedAt.Equal(got.EndedAt))
}

func (s *RedisRepositoryTestSuite) TestGetMatchNotFound() {
	_, err := s.repo.GetMatch(s.ctx, &GetMatchInput{MatchID: "missing"})
	s.ErrorIs(err, ErrMatchNotFound)
}

func (s *RedisRepositoryTestSuite) TestSaveMatchValidation() {
	s.Error(s.repo.SaveMatch(s.ctx, nil))
	s.Error(s.repo.SaveMatch(s.ctx, &SaveMatchInput{}))
	s.Error(s.repo.SaveMatch(s.ctx, &SaveMatchInput{Match: &models.Match{}}))
}

func (s *RedisRepositoryTestSuite) TestSaveMatchTwiceOverwrites() {
	m := s.match("match-1", "channel-1", time.Minute)
	s.Require().NoError(s.repo.SaveMatch(s.ctx, &SaveMatchInput{Match: m}))

	m.Status = models.MatchStatusAborted
	m.WinnerIDs = nil
	s.Require().NoError(s.repo.SaveMatch(s.ctx, &SaveMatchInput{Match: m}))

	out, err := s.repo.GetMatchesByChannel(s.ctx, &GetMatchesByChannelInput{ChannelID: "channel-1"})
	s.Require().NoError(err)
	s.Require().Len(out.Matches, 1)
	s.Equal(models.MatchStatusAborted, out.Matches[0].Status)
	s.Empty(out.Matches[0].WinnerIDs)
}

func (s *RedisRepositoryTestSuite) TestGetMatchesByChannel() {
	s.Require().NoError(s.repo.SaveMatch(s.ctx, &SaveMatchInput{Match: s.match("match-1", "channel-1", time.Minute)}))
	s.Require().NoError(s.repo.SaveMatch(s.ctx, &SaveMatchInput{Match: s.match("match-2", "channel-2", 2*time.Minute)}))
	s.Require().NoError(s.repo.SaveMatch(s.ctx, &SaveMatchInput{Match: s.match("match-3", "channel-1", 3*time.Minute)}))

	out, err := s.repo.GetMatchesByChannel(s.ctx, &GetMatchesByChannelInput{ChannelID: "channel-1"})
	s.Require().NoError(err)
	s.Require().Len(out.Matches, 2)
	s.Equal("match-3", out.Matches[0].ID)
	s.Equal("match-1", out.Matches[1].ID)

	empty, err := s.repo.GetMatchesByChannel(s.ctx, &GetMatchesByChannelInput{ChannelID: "channel-9"})
	s.Require().NoError(err)
	s.Empty(empty.Matches)

	_, err = s.repo.GetMatchesByChannel(s.ctx, &GetMatchesByChannelInput{})
	s.Error(err)
}

func (s *RedisRepositoryTestSuite) TestGetRecentMatchesLimit() {
	for i := 0; i < 12; i++ {
		m := s.match(fmt.Sprintf("match-%02d", i), "channel-1", time.Duration(i)*time.Minute)
		s.Require().NoError(s.repo.SaveMatch(s.ctx, &SaveMatchInput{Match: m}))
	}

	out, err := s.repo.GetRecentMatches(s.ctx, &GetRecentMatchesInput{})
	s.Require().NoError(err)
	s.Require().Len(out.Matches, 10)
	s.Equal("match-11", out.Matches[0].ID)

	three, err := s.repo.GetRecentMatches(s.ctx, &GetRecentMatchesInput{Limit: 3})
	s.Require().NoError(err)
	s.Require().Len(three.Matches, 3)
	s.Equal("match-09", three.Matches[2].ID)
}

func (s *RedisRepositoryTestSuite) TestIndexSkipsMissingMatch() {
	s.Require().NoError(s.repo.SaveMatch(s.ctx, &SaveMatchInput{Match: s.match("match-1", "channel-1", time.Minute)}))
	s.Require().NoError(s.repo.SaveMatch(s.ctx, &SaveMatchInput{Match: s.match("match-2", "channel-1", 2*time.Minute)}))
	s.mr.Del(matchKeyPrefix + "match-2")

	out, err := s.repo.GetRecentMatches(s.ctx, &GetRecentMatchesInput{})
	s.Require().NoError(err)
	s.Require().Len(out.Matches, 1)
	s.Equal("match-1", out.Matches[0].ID)
}
