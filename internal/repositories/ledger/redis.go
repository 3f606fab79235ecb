package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/KirkDiggler/tablebot/internal/common/clock"
	"github.com/KirkDiggler/tablebot/internal/common/uuid"
	"github.com/KirkDiggler/tablebot/internal/models"
	"github.com/redis/go-redis/v9"
)

const (
	// Key prefixes for Redis
	entryKeyPrefix         = "ledger_entry:"
	entryAppliedKeyPrefix  = "ledger_applied:"
	playerEntriesKeyPrefix = "player_entries:"
	seasonBalancesPrefix   = "season_balances:"
	lifetimeBalancesKey    = "lifetime_balances"
	seasonKeyPrefix        = "season:"
	guildSeasonPrefix      = "guild_season:"
	guildSeasonCountPrefix = "guild_season_count:"
	guildsKey              = "season_guilds"

	// maxSeasonAttempts bounds retries when another writer moves the guild's
	// season between WATCH and EXEC
	maxSeasonAttempts = 5
)

// createEntryScript stores an entry and bumps its balances, or returns the ID
// of the entry already stored for the same match, player and reason. The
// applied marker is written last so a failed write leaves none behind.
//
// KEYS: applied marker, player entries, season balances, lifetime balances,
// entry
// ARGV: entry ID, entry JSON, timestamp score, amount, player ID
var createEntryScript = redis.NewScript(`
local existing = redis.call('GET', KEYS[1])
if existing then
	return existing
end
redis.call('ZADD', KEYS[2], ARGV[3], ARGV[1])
redis.call('ZINCRBY', KEYS[3], ARGV[4], ARGV[5])
redis.call('HINCRBY', KEYS[4], ARGV[5], ARGV[4])
redis.call('SET', KEYS[5], ARGV[2])
redis.call('SET', KEYS[1], ARGV[1])
return ARGV[1]
`)

// ErrSeasonNotFound is returned when a season is not found
var ErrSeasonNotFound = errors.New("season not found")

// Config holds configuration for the Redis ledger repository
type Config struct {
	// Redis client
	RedisClient *redis.Client

	// Clock stamps entries and seasons
	Clock clock.Clock

	// UUID generates entry and season IDs
	UUID uuid.Generator
}

// redisRepository implements the Repository interface using Redis
type redisRepository struct {
	client *redis.Client
	clock  clock.Clock
	uuid   uuid.Generator
}

// NewRedis creates a new Redis-backed ledger repository
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

	r := &redisRepository{
		client: cfg.RedisClient,
		clock:  cfg.Clock,
		uuid:   cfg.UUID,
	}
	if r.clock == nil {
		r.clock = &clock.DefaultClock{}
	}
	if r.uuid == nil {
		r.uuid = uuid.New()
	}
	return r, nil
}

// CreateEntry stores the entry and bumps the season and lifetime balances in
// one script
func (r *redisRepository) CreateEntry(ctx context.Context, input *CreateEntryInput) (*CreateEntryOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}
	if input.PlayerID == "" || input.SeasonID == "" || input.MatchID == "" {
		return nil, errors.New("player ID, season ID and match ID are required")
	}
	if input.Amount <= 0 {
		return nil, errors.New("amount must be positive")
	}

	entry := &models.LedgerEntry{
		ID:        r.uuid.NewID(),
		SeasonID:  input.SeasonID,
		PlayerID:  input.PlayerID,
		MatchID:   input.MatchID,
		Amount:    input.Amount,
		Reason:    input.Reason,
		Timestamp: input.Timestamp,
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = r.clock.Now()
	}

	entryJSON, err := json.Marshal(entry)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal ledger entry: %w", err)
	}

	keys := []string{
		fmt.Sprintf("%s%s:%s:%s", entryAppliedKeyPrefix, input.MatchID, input.PlayerID, input.Reason),
		playerEntriesKeyPrefix + entry.PlayerID,
		seasonBalancesPrefix + entry.SeasonID,
		lifetimeBalancesKey,
		entryKeyPrefix + entry.ID,
	}
	storedID, err := createEntryScript.Run(ctx, r.client, keys,
		entry.ID,
		entryJSON,
		strconv.FormatInt(entry.Timestamp.UnixNano(), 10),
		strconv.FormatInt(entry.Amount, 10),
		entry.PlayerID,
	).Text()
	if err != nil {
		return nil, fmt.Errorf("failed to add ledger entry: %w", err)
	}

	if storedID != entry.ID {
		existing, err := r.getEntry(ctx, storedID)
		if err != nil {
			return nil, err
		}
		return &CreateEntryOutput{Applied: false, Entry: existing}, nil
	}
	return &CreateEntryOutput{Applied: true, Entry: entry}, nil
}

// GetEntriesForPlayer retrieves a player's entries, newest first
func (r *redisRepository) GetEntriesForPlayer(ctx context.Context, input *GetEntriesForPlayerInput) (*GetEntriesForPlayerOutput, error) {
	if input == nil || input.PlayerID == "" {
		return nil, errors.New("input and player ID cannot be empty")
	}

	stop := int64(-1)
	if input.Limit > 0 {
		stop = int64(input.Limit) - 1
	}
	entryIDs, err := r.client.ZRevRange(ctx, playerEntriesKeyPrefix+input.PlayerID, 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get entry IDs for player: %w", err)
	}

	if len(entryIDs) == 0 {
		return &GetEntriesForPlayerOutput{
			Entries: []*models.LedgerEntry{},
		}, nil
	}

	pipe := r.client.Pipeline()
	entryCommands := make([]*redis.StringCmd, len(entryIDs))
	for i, entryID := range entryIDs {
		entryCommands[i] = pipe.Get(ctx, entryKeyPrefix+entryID)
	}

	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to get ledger entries: %w", err)
	}

	entries := make([]*models.LedgerEntry, 0, len(entryIDs))
	for i, cmd := range entryCommands {
		entryJSON, err := cmd.Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			return nil, fmt.Errorf("failed to get ledger entry %s: %w", entryIDs[i], err)
		}

		var entry models.LedgerEntry
		if err := json.Unmarshal([]byte(entryJSON), &entry); err != nil {
			return nil, fmt.Errorf("failed to unmarshal ledger entry %s: %w", entryIDs[i], err)
		}

		entries = append(entries, &entry)
	}

	return &GetEntriesForPlayerOutput{
		Entries: entries,
	}, nil
}

// GetBalance returns a player's season and lifetime totals
func (r *redisRepository) GetBalance(ctx context.Context, input *GetBalanceInput) (*GetBalanceOutput, error) {
	if input == nil || input.PlayerID == "" {
		return nil, errors.New("input and player ID cannot be empty")
	}

	pipe := r.client.Pipeline()
	var seasonCmd *redis.FloatCmd
	if input.SeasonID != "" {
		seasonCmd = pipe.ZScore(ctx, seasonBalancesPrefix+input.SeasonID, input.PlayerID)
	}
	lifetimeCmd := pipe.HGet(ctx, lifetimeBalancesKey, input.PlayerID)
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to get balance: %w", err)
	}

	balance := &models.Balance{PlayerID: input.PlayerID}
	if seasonCmd != nil {
		season, err := seasonCmd.Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("failed to get season balance: %w", err)
		}
		balance.Season = int64(season)
	}
	lifetime, err := lifetimeCmd.Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to get lifetime balance: %w", err)
	}
	balance.Lifetime = lifetime

	return &GetBalanceOutput{Balance: balance}, nil
}

// GetStandings ranks a season's players by balance
func (r *redisRepository) GetStandings(ctx context.Context, input *GetStandingsInput) (*GetStandingsOutput, error) {
	if input == nil || input.SeasonID == "" {
		return nil, errors.New("input and season ID cannot be empty")
	}

	stop := int64(-1)
	if input.Limit > 0 {
		stop = int64(input.Limit) - 1
	}
	members, err := r.client.ZRevRangeWithScores(ctx, seasonBalancesPrefix+input.SeasonID, 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get standings: %w", err)
	}

	balances := make([]*models.Balance, 0, len(members))
	for _, m := range members {
		balances = append(balances, &models.Balance{
			PlayerID: m.Member.(string),
			Season:   int64(m.Score),
		})
	}
	return &GetStandingsOutput{Balances: balances}, nil
}

// CreateSeason starts a new season for a guild and ends the current one
func (r *redisRepository) CreateSeason(ctx context.Context, input *CreateSeasonInput) (*CreateSeasonOutput, error) {
	if input == nil || input.GuildID == "" {
		return nil, errors.New("input and guild ID cannot be empty")
	}

	change, err := r.startSeason(ctx, input.GuildID, true)
	if err != nil {
		return nil, err
	}
	return &CreateSeasonOutput{Season: change.season, Previous: change.previous}, nil
}

// EnsureSeason returns the guild's active season, starting the first one when
// the guild has none
func (r *redisRepository) EnsureSeason(ctx context.Context, input *EnsureSeasonInput) (*EnsureSeasonOutput, error) {
	if input == nil || input.GuildID == "" {
		return nil, errors.New("input and guild ID cannot be empty")
	}

	change, err := r.startSeason(ctx, input.GuildID, false)
	if err != nil {
		return nil, err
	}
	return &EnsureSeasonOutput{Season: change.season, Created: change.created}, nil
}

type seasonChange struct {
	season   *models.Season
	previous *models.Season
	created  bool
}

// startSeason watches the guild's season pointer and counter so that two
// writers never both start a season from the same state. With replace unset
// an existing season is returned as is.
func (r *redisRepository) startSeason(ctx context.Context, guildID string, replace bool) (*seasonChange, error) {
	currentKey := guildSeasonPrefix + guildID
	countKey := guildSeasonCountPrefix + guildID

	for attempt := 0; attempt < maxSeasonAttempts; attempt++ {
		var change *seasonChange
		err := r.client.Watch(ctx, func(tx *redis.Tx) error {
			current, err := r.currentSeason(ctx, tx.Get, guildID)
			if err != nil {
				return err
			}
			if current != nil && !replace {
				change = &seasonChange{season: current}
				return nil
			}

			count, err := tx.Get(ctx, countKey).Int()
			if err != nil && !errors.Is(err, redis.Nil) {
				return fmt.Errorf("failed to number season: %w", err)
			}

			now := r.clock.Now()
			season := &models.Season{
				ID:        r.uuid.NewID(),
				GuildID:   guildID,
				Number:    count + 1,
				StartedAt: now,
				Active:    true,
			}
			seasonJSON, err := json.Marshal(season)
			if err != nil {
				return fmt.Errorf("failed to marshal season: %w", err)
			}

			var previousJSON []byte
			if current != nil {
				current.Active = false
				current.EndedAt = now
				previousJSON, err = json.Marshal(current)
				if err != nil {
					return fmt.Errorf("failed to marshal previous season: %w", err)
				}
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, countKey, season.Number, 0)
				pipe.Set(ctx, seasonKeyPrefix+season.ID, seasonJSON, 0)
				pipe.Set(ctx, currentKey, season.ID, 0)
				pipe.SAdd(ctx, guildsKey, guildID)
				if current != nil {
					pipe.Set(ctx, seasonKeyPrefix+current.ID, previousJSON, 0)
				}
				return nil
			})
			if err != nil {
				return err
			}

			change = &seasonChange{season: season, previous: current, created: true}
			return nil
		}, currentKey, countKey)

		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to start season: %w", err)
		}
		return change, nil
	}

	return nil, fmt.Errorf("failed to start season for guild %s: too many concurrent changes", guildID)
}

// GetCurrentSeason retrieves the guild's active season
func (r *redisRepository) GetCurrentSeason(ctx context.Context, input *GetCurrentSeasonInput) (*GetCurrentSeasonOutput, error) {
	if input == nil || input.GuildID == "" {
		return nil, errors.New("input and guild ID cannot be empty")
	}

	season, err := r.currentSeason(ctx, r.client.Get, input.GuildID)
	if err != nil {
		return nil, err
	}
	return &GetCurrentSeasonOutput{Season: season}, nil
}

type getFunc func(ctx context.Context, key string) *redis.StringCmd

// currentSeason follows the guild's season pointer; a dangling pointer reads
// as no season
func (r *redisRepository) currentSeason(ctx context.Context, get getFunc, guildID string) (*models.Season, error) {
	seasonID, err := get(ctx, guildSeasonPrefix+guildID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get current season ID: %w", err)
	}

	season, err := r.getSeason(ctx, get, seasonID)
	if err != nil {
		if errors.Is(err, ErrSeasonNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return season, nil
}

// ListGuilds returns every guild that has had a season
func (r *redisRepository) ListGuilds(ctx context.Context, _ *ListGuildsInput) (*ListGuildsOutput, error) {
	guildIDs, err := r.client.SMembers(ctx, guildsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list guilds: %w", err)
	}
	sort.Strings(guildIDs)
	return &ListGuildsOutput{GuildIDs: guildIDs}, nil
}

func (r *redisRepository) getSeason(ctx context.Context, get getFunc, seasonID string) (*models.Season, error) {
	seasonJSON, err := get(ctx, seasonKeyPrefix+seasonID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSeasonNotFound
		}
		return nil, fmt.Errorf("failed to get season: %w", err)
	}

	var season models.Season
	if err := json.Unmarshal([]byte(seasonJSON), &season); err != nil {
		return nil, fmt.Errorf("failed to unmarshal season: %w", err)
	}
	return &season, nil
}

func (r *redisRepository) getEntry(ctx context.Context, entryID string) (*models.LedgerEntry, error) {
	entryJSON, err := r.client.Get(ctx, entryKeyPrefix+entryID).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger entry %s: %w", entryID, err)
	}

	var entry models.LedgerEntry
	if err := json.Unmarshal([]byte(entryJSON), &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal ledger entry %s: %w", entryID, err)
	}
	return &entry, nil
}
