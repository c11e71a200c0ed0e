// Package botlist reports the bot's guild and shard counts to public bot
// directories once an hour.
package botlist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/disgoorg/snowflake/v2"

	"github.com/keshon/tts-bot/pkg/ratelimit"
	"github.com/keshon/tts-bot/pkg/util"
)

const (
	Name     = "Bot List Updater"
	Interval = time.Hour

	maxErrorBody = 512
)

var ErrBotNotReady = errors.New("bot user is not known yet")

// StatsProvider reads live counters from the gateway state.
type StatsProvider interface {
	GuildCount() int
	ShardCount() int
	BotID() snowflake.ID
}

// Updater posts stats to every configured directory. It implements
// looper.Looper.
type Updater struct {
	stats   StatsProvider
	client  *http.Client
	targets []Target
}

// NewUpdater creates an Updater. client should carry a request timeout;
// the updater adds none of its own.
func NewUpdater(stats StatsProvider, client *http.Client, targets []Target) *Updater {
	return &Updater{
		stats:   stats,
		client:  client,
		targets: slices.Clone(targets),
	}
}

func (u *Updater) Name() string            { return Name }
func (u *Updater) Interval() time.Duration { return Interval }

// Targets returns the active directories.
func (u *Updater) Targets() []Target {
	return slices.Clone(u.targets)
}

// Loop runs one broadcast. Failed directories are logged and skipped until
// the next tick; only a missing bot identity fails the run.
func (u *Updater) Loop(ctx context.Context) error {
	err := u.Broadcast(ctx)
	if errors.Is(err, ErrBotNotReady) {
		return err
	}
	return nil
}

// Broadcast posts the current stats to every directory once. Each directory
// is independent of the others; the returned error joins their failures.
func (u *Updater) Broadcast(ctx context.Context) error {
	if len(u.targets) == 0 {
		return nil
	}

	stats := Stats{
		BotID:      u.stats.BotID(),
		GuildCount: u.stats.GuildCount(),
		ShardCount: u.stats.ShardCount(),
	}
	if stats.BotID == 0 {
		return ErrBotNotReady
	}

	return util.Parallel(ctx, u.targets, len(u.targets), func(ctx context.Context, t Target) error {
		if err := u.post(ctx, t, stats); err != nil {
			log.Printf("[ERR] %s: %s: %v", Name, t.Name(), err)
			return fmt.Errorf("%s: %w", t.Name(), err)
		}
		log.Printf("[DONE] %s: %s updated | guilds=%d shards=%d", Name, t.Name(), stats.GuildCount, stats.ShardCount)
		return nil
	})
}

func (u *Updater) post(ctx context.Context, t Target, stats Stats) error {
	body, err := json.Marshal(t.Kind.payload(stats))
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint(stats.BotID), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", t.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := u.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &ratelimit.StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
