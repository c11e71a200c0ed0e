package botlist

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keshon/tts-bot/pkg/ratelimit"
)

type staticStats struct {
	botID  snowflake.ID
	guilds int
	shards int
}

func (s staticStats) GuildCount() int     { return s.guilds }
func (s staticStats) ShardCount() int     { return s.shards }
func (s staticStats) BotID() snowflake.ID { return s.botID }

type captured struct {
	path        string
	auth        string
	contentType string
	body        string
}

// directory is a fake set of bot directories behind one test server.
type directory struct {
	mu       sync.Mutex
	requests map[string][]captured
	status   map[string]int
	srv      *httptest.Server
}

func newDirectory(t *testing.T) *directory {
	d := &directory{
		requests: make(map[string][]captured),
		status:   make(map[string]int),
	}
	d.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		key := r.URL.Path[:4]

		d.mu.Lock()
		d.requests[key] = append(d.requests[key], captured{
			path:        r.URL.Path,
			auth:        r.Header.Get("Authorization"),
			contentType: r.Header.Get("Content-Type"),
			body:        string(body),
		})
		code := d.status[key]
		d.mu.Unlock()

		if r.Method != http.MethodPost {
			code = http.StatusMethodNotAllowed
		}
		if code == 0 {
			code = http.StatusOK
		}
		w.WriteHeader(code)
		_, _ = w.Write([]byte(`{"message":"ok"}`))
	}))
	t.Cleanup(d.srv.Close)
	return d
}

func (d *directory) got(key string) []captured {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]captured(nil), d.requests[key]...)
}

func (d *directory) respond(key string, code int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.status[key] = code
}

func (d *directory) targets() []Target {
	return []Target{
		{Kind: TopGG, URL: d.srv.URL + "/top/{bot_id}/stats", Token: "top-token"},
		{Kind: DiscordBotsGG, URL: d.srv.URL + "/dbg/{bot_id}/stats", Token: "dbg-token"},
		{Kind: BotsOnDiscord, URL: d.srv.URL + "/bod/{bot_id}/guilds", Token: "bod-token"},
	}
}

var testStats = staticStats{botID: 1234567890, guilds: 12, shards: 2}

func TestUpdaterSchedule(t *testing.T) {
	u := NewUpdater(testStats, http.DefaultClient, nil)
	assert.Equal(t, "Bot List Updater", u.Name())
	assert.Equal(t, 3_600_000*time.Millisecond, u.Interval())
}

func TestBroadcastPayloads(t *testing.T) {
	dir := newDirectory(t)
	u := NewUpdater(testStats, &http.Client{Timeout: time.Second}, dir.targets())

	require.NoError(t, u.Loop(context.Background()))

	top := dir.got("/top")
	require.Len(t, top, 1)
	assert.Equal(t, "/top/1234567890/stats", top[0].path)
	assert.Equal(t, "top-token", top[0].auth)
	assert.Equal(t, "application/json", top[0].contentType)
	assert.JSONEq(t, `{"server_count":12,"shard_count":2}`, top[0].body)

	dbg := dir.got("/dbg")
	require.Len(t, dbg, 1)
	assert.Equal(t, "/dbg/1234567890/stats", dbg[0].path)
	assert.Equal(t, "dbg-token", dbg[0].auth)
	assert.JSONEq(t, `{"guildCount":12,"shardCount":2}`, dbg[0].body)

	bod := dir.got("/bod")
	require.Len(t, bod, 1)
	assert.Equal(t, "/bod/1234567890/guilds", bod[0].path)
	assert.Equal(t, "bod-token", bod[0].auth)
	assert.JSONEq(t, `{"guildCount":12}`, bod[0].body)
}

func TestBroadcastShardCountIsPositive(t *testing.T) {
	dir := newDirectory(t)
	stats := staticStats{botID: 1, guilds: 3, shards: 0}
	u := NewUpdater(stats, http.DefaultClient, dir.targets()[:1])

	require.NoError(t, u.Broadcast(context.Background()))
	top := dir.got("/top")
	require.Len(t, top, 1)
	assert.JSONEq(t, `{"server_count":3,"shard_count":1}`, top[0].body)
}

func TestBroadcastTransportFailureIsIsolated(t *testing.T) {
	dir := newDirectory(t)
	dead := httptest.NewServer(http.NotFoundHandler())
	deadURL := dead.URL
	dead.Close()

	targets := dir.targets()
	targets[1].URL = deadURL + "/dbg/{bot_id}/stats"
	u := NewUpdater(testStats, &http.Client{Timeout: time.Second}, targets)

	err := u.Broadcast(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "discord.bots.gg")

	assert.Len(t, dir.got("/top"), 1)
	assert.Len(t, dir.got("/bod"), 1)
	assert.Empty(t, dir.got("/dbg"))

	assert.NoError(t, u.Loop(context.Background()), "per-target failures never fail the loop")
	assert.Len(t, dir.got("/top"), 2)
	assert.Len(t, dir.got("/bod"), 2)
}

func TestBroadcastNonSuccessStatus(t *testing.T) {
	dir := newDirectory(t)
	dir.respond("/top", http.StatusUnauthorized)
	u := NewUpdater(testStats, http.DefaultClient, dir.targets())

	err := u.Broadcast(context.Background())
	require.Error(t, err)

	var se *ratelimit.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusUnauthorized, se.Code)
	assert.Equal(t, `{"message":"ok"}`, se.Body)

	assert.Len(t, dir.got("/dbg"), 1)
	assert.Len(t, dir.got("/bod"), 1)
}

func TestBroadcastWithoutTargets(t *testing.T) {
	dir := newDirectory(t)
	u := NewUpdater(testStats, http.DefaultClient, Targets(Tokens{}))

	assert.Empty(t, u.Targets())
	assert.NoError(t, u.Loop(context.Background()))
	assert.Empty(t, dir.got("/top"))
	assert.Empty(t, dir.got("/dbg"))
	assert.Empty(t, dir.got("/bod"))
}

func TestLoopFailsWhenBotUnknown(t *testing.T) {
	dir := newDirectory(t)
	u := NewUpdater(staticStats{guilds: 1, shards: 1}, http.DefaultClient, dir.targets())

	assert.ErrorIs(t, u.Loop(context.Background()), ErrBotNotReady)
	assert.Empty(t, dir.got("/top"))
}

func TestTargetsSkipsMissingTokens(t *testing.T) {
	targets := Targets(Tokens{TopGG: "a", BotsOnDiscord: "  "})
	require.Len(t, targets, 1)
	assert.Equal(t, TopGG, targets[0].Kind)
	assert.Equal(t, TopGGURL, targets[0].URL)
	assert.Equal(t, "top.gg", targets[0].Name())

	all := Targets(Tokens{TopGG: "a", DiscordBotsGG: "b", BotsOnDiscord: "c"})
	require.Len(t, all, 3)
	assert.Equal(t, []Kind{BotsOnDiscord, TopGG, DiscordBotsGG}, []Kind{all[0].Kind, all[1].Kind, all[2].Kind})
	assert.Equal(t, "https://discord.bots.gg/api/v1/bots/42/stats", all[2].endpoint(42))
}
