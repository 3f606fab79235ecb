package player

import (
	"context"
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

func (s *RedisRepositoryTestSuite) seat(id, name, channelID string) {
	err := s.repo.SeatPlayer(s.ctx, &SeatPlayerInput{
		Player: &models.Player{
			ID:               id,
			Name:             name,
			CurrentChannelID: channelID,
			LastSeen:         s.testNow,
		},
	})
	s.Require().NoError(err)
}

func (s *RedisRepositoryTestSuite) seated(channelID string) []string {
	if !s.mr.Exists(seatsKey(channelID)) {
		return nil
	}
	members, err := s.mr.Members(seatsKey(channelID))
	s.Require().NoError(err)
	return members
}

func (s *RedisRepositoryTestSuite) channelOf(playerID string) string {
	p, err := s.repo.GetPlayer(s.ctx, &GetPlayerInput{PlayerID: playerID})
	s.Require().NoError(err)
	return p.CurrentChannelID
}

func (s *RedisRepositoryTestSuite) TestSeatAndGetPlayer() {
	s.seat("player-1", "Alice", "channel-1")

	player, err := s.repo.GetPlayer(s.ctx, &GetPlayerInput{PlayerID: "player-1"})
	s.Require().NoError(err)
	s.Equal("player-1", player.ID)
	s.Equal("Alice", player.Name)
	s.Equal("channel-1", player.CurrentChannelID)
	s.True(s.testNow.Equal(player.LastSeen))
	s.Equal([]string{"player-1"}, s.seated("channel-1"))
}

func (s *RedisRepositoryTestSuite) TestGetPlayerNotFound() {
	_, err := s.repo.GetPlayer(s.ctx, &GetPlayerInput{PlayerID: "missing"})
	s.ErrorIs(err, ErrPlayerNotFound)
}

func (s *RedisRepositoryTestSuite) TestSeatPlayerValidation() {
	s.Error(s.repo.SeatPlayer(s.ctx, nil))
	s.Error(s.repo.SeatPlayer(s.ctx, &SeatPlayerInput{Player: &models.Player{}}))
}

func (s *RedisRepositoryTestSuite) TestSeatPlayerLeavesPreviousTable() {
	s.seat("player-1", "Alice", "channel-1")
	s.seat("player-2", "Bob", "channel-1")
	s.seat("player-1", "Alice", "channel-2")

	s.Equal([]string{"player-2"}, s.seated("channel-1"))
	s.Equal([]string{"player-1"}, s.seated("channel-2"))
	s.Equal("channel-2", s.channelOf("player-1"))
}

func (s *RedisRepositoryTestSuite) TestUnseatPlayer() {
	s.seat("player-1", "Alice", "channel-1")

	s.Require().NoError(s.repo.UnseatPlayer(s.ctx, &UnseatPlayerInput{PlayerID: "player-1", ChannelID: "channel-1"}))
	s.Empty(s.channelOf("player-1"))
	s.Empty(s.seated("channel-1"))
}

func (s *RedisRepositoryTestSuite) TestUnseatPlayerKeepsSeatElsewhere() {
	s.seat("player-1", "Alice", "channel-2")

	s.Require().NoError(s.repo.UnseatPlayer(s.ctx, &UnseatPlayerInput{PlayerID: "player-1", ChannelID: "channel-1"}))
	s.Equal("channel-2", s.channelOf("player-1"))
	s.Equal([]string{"player-1"}, s.seated("channel-2"))
}

func (s *RedisRepositoryTestSuite) TestUnseatPlayerUnknown() {
	err := s.repo.UnseatPlayer(s.ctx, &UnseatPlayerInput{PlayerID: "missing", ChannelID: "channel-1"})
	s.ErrorIs(err, ErrPlayerNotFound)

	s.Error(s.repo.UnseatPlayer(s.ctx, &UnseatPlayerInput{PlayerID: "player-1"}))
}

func (s *RedisRepositoryTestSuite) TestUnseatChannel() {
	s.seat("player-2", "Bob", "channel-1")
	s.seat("player-1", "Alice", "channel-1")
	s.seat("player-3", "Carol", "channel-2")

	out, err := s.repo.UnseatChannel(s.ctx, &UnseatChannelInput{ChannelID: "channel-1"})
	s.Require().NoError(err)
	s.Equal([]string{"player-1", "player-2"}, out.PlayerIDs)

	s.Empty(s.channelOf("player-1"))
	s.Empty(s.channelOf("player-2"))
	s.Equal("channel-2", s.channelOf("player-3"))
	s.False(s.mr.Exists(seatsKey("channel-1")))
}

func (s *RedisRepositoryTestSuite) TestUnseatChannelSkipsStaleMembers() {
	s.seat("player-1", "Alice", "channel-1")
	// A stale member whose record points at another table
	s.seat("player-2", "Bob", "channel-2")
	_, err := s.mr.SAdd(seatsKey("channel-1"), "player-2")
	s.Require().NoError(err)

	out, err := s.repo.UnseatChannel(s.ctx, &UnseatChannelInput{ChannelID: "channel-1"})
	s.Require().NoError(err)
	s.Equal([]string{"player-1"}, out.PlayerIDs)
	s.Equal("channel-2", s.channelOf("player-2"))

	empty, err := s.repo.UnseatChannel(s.ctx, &UnseatChannelInput{ChannelID: "channel-9"})
	s.Require().NoError(err)
	s.Empty(empty.PlayerIDs)
}
