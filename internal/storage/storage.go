// /internal/storage/storage.go
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/redis/go-redis/v9"
)

const (
	commandHistoryLimit int64 = 20

	keyPrefix = "ttsbot"
)

var ErrNoSetupChannel = errors.New("guild has no setup channel")

// Storage keeps per-guild settings in Redis.
// Safe for concurrent use.
type Storage struct {
	rdb *redis.Client
}

type CommandHistoryRecord struct {
	ChannelID string    `json:"channel_id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Command   string    `json:"command"`
	Datetime  time.Time `json:"datetime"`
}

// New connects to Redis and verifies the connection.
func New(ctx context.Context, opts *redis.Options) (*Storage, error) {
	s := &Storage{rdb: redis.NewClient(opts)}
	if err := s.Ping(ctx); err != nil {
		_ = s.rdb.Close()
		return nil, fmt.Errorf("redis %s: %w", opts.Addr, err)
	}
	return s, nil
}

func (s *Storage) Close() error {
	return s.rdb.Close()
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func guildKey(guildID snowflake.ID) string {
	return fmt.Sprintf("%s:guild:%s", keyPrefix, guildID)
}

func historyKey(guildID snowflake.ID) string {
	return fmt.Sprintf("%s:guild:%s:cmd_history", keyPrefix, guildID)
}

// SetupChannel returns the text channel commands must be run in.
func (s *Storage) SetupChannel(ctx context.Context, guildID snowflake.ID) (snowflake.ID, error) {
	raw, err := s.rdb.HGet(ctx, guildKey(guildID), "setup_channel").Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrNoSetupChannel
	}
	if err != nil {
		return 0, fmt.Errorf("get setup channel: %w", err)
	}

	id, err := snowflake.Parse(raw)
	if err != nil {
		return 0, fmt.Errorf("parse setup channel %q: %w", raw, err)
	}
	return id, nil
}

func (s *Storage) SetSetupChannel(ctx context.Context, guildID, channelID snowflake.ID) error {
	if err := s.rdb.HSet(ctx, guildKey(guildID), "setup_channel", channelID.String()).Err(); err != nil {
		return fmt.Errorf("set setup channel: %w", err)
	}
	return nil
}

func (s *Storage) ClearSetupChannel(ctx context.Context, guildID snowflake.ID) error {
	return s.rdb.HDel(ctx, guildKey(guildID), "setup_channel").Err()
}

// AppendCommandToHistory appends a command history record for a guild,
// keeping only the most recent entries.
func (s *Storage) AppendCommandToHistory(ctx context.Context, guildID snowflake.ID, record CommandHistoryRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("error marshalling data: %w", err)
	}

	key := historyKey(guildID)
	_, err = s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.RPush(ctx, key, data)
		p.LTrim(ctx, key, -commandHistoryLimit, -1)
		return nil
	})
	return err
}

func (s *Storage) FetchCommandHistory(ctx context.Context, guildID snowflake.ID) ([]CommandHistoryRecord, error) {
	raw, err := s.rdb.LRange(ctx, historyKey(guildID), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	records := make([]CommandHistoryRecord, 0, len(raw))
	for _, r := range raw {
		var record CommandHistoryRecord
		if err := json.Unmarshal([]byte(r), &record); err != nil {
			return nil, fmt.Errorf("error unmarshalling command history: %w", err)
		}
		records = append(records, record)
	}
	return records, nil
}

func commandHashesKey(guildID snowflake.ID) string {
	return fmt.Sprintf("%s:guild:%s:cmd_hashes", keyPrefix, guildID)
}

// CommandHashes returns the definition hashes of the slash commands last
// registered in a guild, keyed by command name.
func (s *Storage) CommandHashes(ctx context.Context, guildID snowflake.ID) (map[string]string, error) {
	return s.rdb.HGetAll(ctx, commandHashesKey(guildID)).Result()
}

// SaveCommandHashes replaces the stored hashes for a guild.
func (s *Storage) SaveCommandHashes(ctx context.Context, guildID snowflake.ID, hashes map[string]string) error {
	key := commandHashesKey(guildID)
	_, err := s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, key)
		if len(hashes) > 0 {
			p.HSet(ctx, key, hashes)
		}
		return nil
	})
	return err
}
