package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/KirkDiggler/tablebot/internal/models"
	"github.com/redis/go-redis/v9"
)

const (
	// Key prefixes for Redis
	matchKeyPrefix          = "match:"
	channelMatchesKeyPrefix = "channel_matches:"
	recentMatchesKey        = "recent_matches"
)

// ErrMatchNotFound is returned when a match is not found
var ErrMatchNotFound = errors.New("match not found")

// Config holds configuration for the Redis history repository
type Config struct {
	// Redis client
	RedisClient *redis.Client
}

// redisRepository implements the Repository interface using Redis
type redisRepository struct {
	client *redis.Client
}

// NewRedis creates a new Redis-backed history repository
func NewRedis(cfg *Config) (*redisRepository, error) {
	// Validate config
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.RedisClient == nil {
		return nil, errors.New("redis client cannot be nil")
	}

	// Test connection
	if err := cfg.RedisClient.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &redisRepository{
		client: cfg.RedisClient,
	}, nil
}

// SaveMatch persists a match and indexes it by channel and end time
func (r *redisRepository) SaveMatch(ctx context.Context, input *SaveMatchInput) error {
	if input == nil || input.Match == nil {
		return errors.New("input and match cannot be nil")
	}
	if input.Match.ID == "" {
		return errors.New("match ID cannot be empty")
	}

	matchJSON, err := json.Marshal(input.Match)
	if err != nil {
		return fmt.Errorf("failed to marshal match: %w", err)
	}

	score := float64(input.Match.EndedAt.UnixNano())

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, matchKeyPrefix+input.Match.ID, matchJSON, 0)
	if input.Match.ChannelID != "" {
		pipe.ZAdd(ctx, channelMatchesKeyPrefix+input.Match.ChannelID, redis.Z{
			Score:  score,
			Member: input.Match.ID,
		})
	}
	pipe.ZAdd(ctx, recentMatchesKey, redis.Z{
		Score:  score,
		Member: input.Match.ID,
	})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save match: %w", err)
	}

	return nil
}

// GetMatch retrieves a match by ID from Redis
func (r *redisRepository) GetMatch(ctx context.Context, input *GetMatchInput) (*models.Match, error) {
	if input == nil || input.MatchID == "" {
		return nil, errors.New("input and match ID cannot be empty")
	}

	matchJSON, err := r.client.Get(ctx, matchKeyPrefix+input.MatchID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match: %w", err)
	}

	var match models.Match
	if err := json.Unmarshal([]byte(matchJSON), &match); err != nil {
		return nil, fmt.Errorf("failed to unmarshal match: %w", err)
	}

	return &match, nil
}

// GetMatchesByChannel retrieves a channel's matches, most recently ended first
func (r *redisRepository) GetMatchesByChannel(ctx context.Context, input *GetMatchesByChannelInput) (*GetMatchesOutput, error) {
	if input == nil || input.ChannelID == "" {
		return nil, errors.New("input and channel ID cannot be empty")
	}

	return r.listIndex(ctx, channelMatchesKeyPrefix+input.ChannelID, limitOrDefault(input.Limit))
}

// GetRecentMatches retrieves matches across all channels, most recently ended first
func (r *redisRepository) GetRecentMatches(ctx context.Context, input *GetRecentMatchesInput) (*GetMatchesOutput, error) {
	limit := limitOrDefault(0)
	if input != nil {
		limit = limitOrDefault(input.Limit)
	}

	return r.listIndex(ctx, recentMatchesKey, limit)
}

func (r *redisRepository) listIndex(ctx context.Context, key string, limit int64) (*GetMatchesOutput, error) {
	matchIDs, err := r.client.ZRevRange(ctx, key, 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get match IDs: %w", err)
	}

	if len(matchIDs) == 0 {
		return &GetMatchesOutput{
			Matches: []*models.Match{},
		}, nil
	}

	// Get all matches in one round trip
	pipe := r.client.Pipeline()
	matchCommands := make([]*redis.StringCmd, len(matchIDs))
	for i, matchID := range matchIDs {
		matchCommands[i] = pipe.Get(ctx, matchKeyPrefix+matchID)
	}

	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to get matches: %w", err)
	}

	matches := make([]*models.Match, 0, len(matchIDs))
	for i, cmd := range matchCommands {
		matchJSON, err := cmd.Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				// Index entry outlived the match
				continue
			}
			return nil, fmt.Errorf("failed to get match %s: %w", matchIDs[i], err)
		}

		var match models.Match
		if err := json.Unmarshal([]byte(matchJSON), &match); err != nil {
			return nil, fmt.Errorf("failed to unmarshal match %s: %w", matchIDs[i], err)
		}

		matches = append(matches, &match)
	}

	return &GetMatchesOutput{
		Matches: matches,
	}, nil
}
