package player

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/KirkDiggler/tablebot/internal/models"
	"github.com/redis/go-redis/v9"
)

const (
	// Key prefixes for Redis
	playerKeyPrefix = "player:"
	seatsKeyPrefix  = "channel_seats:"

	// Player hash fields
	fieldName     = "name"
	fieldChannel  = "channel_id"
	fieldLastSeen = "last_seen"

	lastSeenLayout = time.RFC3339Nano
	maxTxAttempts  = 5
)

// ErrPlayerNotFound is returned when a player is not found
var ErrPlayerNotFound = errors.New("player not found")

// Config holds configuration for the Redis player repository
type Config struct {
	// Redis client
	RedisClient *redis.Client
}

// redisRepository keeps each player in a hash and each table's seated
// players in a set, so a table can be cleared without knowing who sat at it
type redisRepository struct {
	client *redis.Client
}

// NewRedis creates a new Redis-backed player repository
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

func playerKey(playerID string) string {
	return playerKeyPrefix + playerID
}

func seatsKey(channelID string) string {
	return seatsKeyPrefix + channelID
}

// GetPlayer retrieves a player by ID
func (r *redisRepository) GetPlayer(ctx context.Context, input *GetPlayerInput) (*models.Player, error) {
	if input == nil || input.PlayerID == "" {
		return nil, errors.New("input and player ID cannot be empty")
	}

	fields, err := r.client.HGetAll(ctx, playerKey(input.PlayerID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	if len(fields) == 0 {
		return nil, ErrPlayerNotFound
	}

	p := &models.Player{
		ID:               input.PlayerID,
		Name:             fields[fieldName],
		CurrentChannelID: fields[fieldChannel],
	}
	if raw := fields[fieldLastSeen]; raw != "" {
		if p.LastSeen, err = time.Parse(lastSeenLayout, raw); err != nil {
			return nil, fmt.Errorf("failed to parse last seen for %s: %w", input.PlayerID, err)
		}
	}
	return p, nil
}

// SeatPlayer writes the player and moves them between seat sets in one
// transaction, watching the player so a concurrent move is retried
func (r *redisRepository) SeatPlayer(ctx context.Context, input *SeatPlayerInput) error {
	if input == nil || input.Player == nil {
		return errors.New("input and player cannot be nil")
	}
	p := input.Player
	if p.ID == "" {
		return errors.New("player ID cannot be empty")
	}

	key := playerKey(p.ID)
	return r.watch(ctx, func(tx *redis.Tx) error {
		previous, err := tx.HGet(ctx, key, fieldChannel).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return fmt.Errorf("failed to get current seat: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if previous != "" && previous != p.CurrentChannelID {
				pipe.SRem(ctx, seatsKey(previous), p.ID)
			}
			pipe.HSet(ctx, key,
				fieldName, p.Name,
				fieldChannel, p.CurrentChannelID,
				fieldLastSeen, p.LastSeen.UTC().Format(lastSeenLayout))
			if p.CurrentChannelID != "" {
				pipe.SAdd(ctx, seatsKey(p.CurrentChannelID), p.ID)
			}
			return nil
		})
		return err
	}, key)
}

// UnseatPlayer leaves a player seated elsewhere untouched
func (r *redisRepository) UnseatPlayer(ctx context.Context, input *UnseatPlayerInput) error {
	if input == nil || input.PlayerID == "" || input.ChannelID == "" {
		return errors.New("input, player ID and channel ID cannot be empty")
	}

	key := playerKey(input.PlayerID)
	return r.watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.HGet(ctx, key, fieldChannel).Result()
		if errors.Is(err, redis.Nil) {
			exists, err := tx.Exists(ctx, key).Result()
			if err != nil {
				return fmt.Errorf("failed to check player: %w", err)
			}
			if exists == 0 {
				return ErrPlayerNotFound
			}
		} else if err != nil {
			return fmt.Errorf("failed to get current seat: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if current == input.ChannelID {
				pipe.HSet(ctx, key, fieldChannel, "")
			}
			pipe.SRem(ctx, seatsKey(input.ChannelID), input.PlayerID)
			return nil
		})
		return err
	}, key)
}

// UnseatChannel releases everyone in the channel's seat set. Players who have
// since sat down elsewhere keep their new seat.
func (r *redisRepository) UnseatChannel(ctx context.Context, input *UnseatChannelInput) (*UnseatChannelOutput, error) {
	if input == nil || input.ChannelID == "" {
		return nil, errors.New("input and channel ID cannot be empty")
	}

	setKey := seatsKey(input.ChannelID)
	var released []string
	err := r.watch(ctx, func(tx *redis.Tx) error {
		released = nil
		playerIDs, err := tx.SMembers(ctx, setKey).Result()
		if err != nil {
			return fmt.Errorf("failed to get seated players: %w", err)
		}
		sort.Strings(playerIDs)

		keys := make([]string, len(playerIDs))
		for i, id := range playerIDs {
			keys[i] = playerKey(id)
		}
		if len(keys) > 0 {
			if err := tx.Watch(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("failed to watch players: %w", err)
			}
		}

		for _, id := range playerIDs {
			current, err := tx.HGet(ctx, playerKey(id), fieldChannel).Result()
			if err != nil && !errors.Is(err, redis.Nil) {
				return fmt.Errorf("failed to get seat for %s: %w", id, err)
			}
			if current == input.ChannelID {
				released = append(released, id)
			}
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			for _, id := range released {
				pipe.HSet(ctx, playerKey(id), fieldChannel, "")
			}
			pipe.Del(ctx, setKey)
			return nil
		})
		return err
	}, setKey)
	if err != nil {
		return nil, err
	}

	return &UnseatChannelOutput{PlayerIDs: released}, nil
}

// watch runs fn under WATCH on keys, retrying when another client changed
// them before EXEC
func (r *redisRepository) watch(ctx context.Context, fn func(tx *redis.Tx) error, keys ...string) error {
	for attempt := 0; attempt < maxTxAttempts; attempt++ {
		err := r.client.Watch(ctx, fn, keys...)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("player seats changed concurrently: %w", redis.TxFailedErr)
}
