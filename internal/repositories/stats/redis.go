package stats

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/KirkDiggler/tablebot/internal/models"
	"github.com/redis/go-redis/v9"
)

const (
	// Key prefixes for Redis
	statsKeyPrefix       = "stats:"
	playerGamesKeyPrefix = "player_games:"
	leaderboardKeyPrefix = "leaderboard:"
	appliedKeyPrefix     = "stats_applied:"

	appliedTTL = 30 * 24 * time.Hour
)

// Config holds configuration for the Redis stats repository
type Config struct {
	// Redis client
	RedisClient *redis.Client
}

// redisRepository implements the Repository interface using Redis
type redisRepository struct {
	client *redis.Client
}

// NewRedis creates a new Redis-backed stats repository
func NewRedis(cfg *Config) (*redisRepository, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.RedisClient == nil {
		return nil, errors.New("redis client cannot be nil")
	}

	if err := cfg.RedisClient.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &redisRepository{
		client: cfg.RedisClient,
	}, nil
}

func statsKey(playerID, gameKey string) string {
	return fmt.Sprintf("%s%s:%s", statsKeyPrefix, playerID, gameKey)
}

// recordResultScript applies one result. The applied marker is written last,
// in the same script as the counters, so a failed write leaves no marker
// behind.
//
// KEYS: applied marker, stats hash, leaderboard, player games set
// ARGV: game key, won (1 or 0), score, marker TTL seconds, player ID
var recordResultScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
	return 0
end
redis.call('HINCRBY', KEYS[2], 'played', 1)
if ARGV[2] == '1' then
	redis.call('HINCRBY', KEYS[2], 'wins', 1)
	redis.call('ZINCRBY', KEYS[3], 1, ARGV[5])
else
	redis.call('HINCRBY', KEYS[2], 'losses', 1)
	redis.call('ZADD', KEYS[3], 'NX', 0, ARGV[5])
end
local best = redis.call('HGET', KEYS[2], 'high_score')
if not best or tonumber(ARGV[3]) > tonumber(best) then
	redis.call('HSET', KEYS[2], 'high_score', ARGV[3])
end
redis.call('SADD', KEYS[4], ARGV[1])
redis.call('SET', KEYS[1], ARGV[1], 'EX', ARGV[4])
return 1
`)

// RecordResult applies the counters and claims the (match, player) marker in
// one script
func (r *redisRepository) RecordResult(ctx context.Context, input *RecordResultInput) (*RecordResultOutput, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	won := "0"
	if input.Won {
		won = "1"
	}
	keys := []string{
		fmt.Sprintf("%s%s:%s", appliedKeyPrefix, input.MatchID, input.PlayerID),
		statsKey(input.PlayerID, input.GameKey),
		leaderboardKeyPrefix + input.GameKey,
		playerGamesKeyPrefix + input.PlayerID,
	}
	applied, err := recordResultScript.Run(ctx, r.client, keys,
		input.GameKey,
		won,
		strconv.FormatInt(input.Score, 10),
		strconv.FormatInt(int64(appliedTTL/time.Second), 10),
		input.PlayerID,
	).Int()
	if err != nil {
		return nil, fmt.Errorf("failed to record result: %w", err)
	}

	stats, err := r.getStats(ctx, input.PlayerID, input.GameKey)
	if err != nil {
		return nil, err
	}
	return &RecordResultOutput{Applied: applied == 1, Stats: stats}, nil
}

// GetPlayerStats retrieves a player's stats for every game they played
func (r *redisRepository) GetPlayerStats(ctx context.Context, input *GetPlayerStatsInput) (*GetPlayerStatsOutput, error) {
	if input == nil || input.PlayerID == "" {
		return nil, errors.New("input and player ID cannot be empty")
	}

	gameKeys, err := r.client.SMembers(ctx, playerGamesKeyPrefix+input.PlayerID).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get games for player: %w", err)
	}
	sort.Strings(gameKeys)

	out := &GetPlayerStatsOutput{Stats: make([]*models.PlayerStats, 0, len(gameKeys))}
	for _, gameKey := range gameKeys {
		stats, err := r.getStats(ctx, input.PlayerID, gameKey)
		if err != nil {
			return nil, err
		}
		out.Stats = append(out.Stats, stats)
	}
	return out, nil
}

// GetLeaderboard ranks players by wins. Ties come back in reverse lexical
// order of player ID.
func (r *redisRepository) GetLeaderboard(ctx context.Context, input *GetLeaderboardInput) (*GetLeaderboardOutput, error) {
	if input == nil || input.GameKey == "" {
		return nil, errors.New("input and game key cannot be empty")
	}
	limit := limitOrDefault(input.Limit)

	members, err := r.client.ZRevRangeWithScores(ctx, leaderboardKeyPrefix+input.GameKey, 0, int64(limit)-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}

	// Fetch every entry's stats in one round trip
	pipe := r.client.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(members))
	for i, m := range members {
		cmds[i] = pipe.HGetAll(ctx, statsKey(m.Member.(string), input.GameKey))
	}
	if len(members) > 0 {
		if _, err := pipe.Exec(ctx); err != nil {
			return nil, fmt.Errorf("failed to get leaderboard stats: %w", err)
		}
	}

	board := &models.Leaderboard{GameKey: input.GameKey, Entries: make([]*models.PlayerStats, 0, len(members))}
	for i, m := range members {
		fields, err := cmds[i].Result()
		if err != nil {
			return nil, fmt.Errorf("failed to get stats for %v: %w", m.Member, err)
		}
		board.Entries = append(board.Entries, parseStats(m.Member.(string), input.GameKey, fields))
	}
	return &GetLeaderboardOutput{Leaderboard: board}, nil
}

func (r *redisRepository) getStats(ctx context.Context, playerID, gameKey string) (*models.PlayerStats, error) {
	fields, err := r.client.HGetAll(ctx, statsKey(playerID, gameKey)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}
	return parseStats(playerID, gameKey, fields), nil
}

func parseStats(playerID, gameKey string, fields map[string]string) *models.PlayerStats {
	n := func(name string) int64 {
		v, _ := strconv.ParseInt(fields[name], 10, 64)
		return v
	}
	return &models.PlayerStats{
		PlayerID:  playerID,
		GameKey:   gameKey,
		Played:    n("played"),
		Wins:      n("wins"),
		Losses:    n("losses"),
		HighScore: n("high_score"),
	}
}
