package botlist

import (
	"strings"

	"github.com/disgoorg/snowflake/v2"
)

// Kind identifies a bot directory and the payload shape it expects.
type Kind int

const (
	TopGG Kind = iota
	DiscordBotsGG
	BotsOnDiscord
)

func (k Kind) String() string {
	switch k {
	case TopGG:
		return "top.gg"
	case DiscordBotsGG:
		return "discord.bots.gg"
	case BotsOnDiscord:
		return "bots.ondiscord.xyz"
	default:
		return "unknown"
	}
}

// Default endpoints. {bot_id} is replaced with the bot's user ID.
const (
	TopGGURL         = "https://top.gg/api/bots/{bot_id}/stats"
	DiscordBotsGGURL = "https://discord.bots.gg/api/v1/bots/{bot_id}/stats"
	BotsOnDiscordURL = "https://bots.ondiscord.xyz/bot-api/bots/{bot_id}/guilds"
)

// Stats is one snapshot of the counters the directories want.
type Stats struct {
	BotID      snowflake.ID
	GuildCount int
	ShardCount int
}

type topGGPayload struct {
	ServerCount int `json:"server_count"`
	ShardCount  int `json:"shard_count"`
}

type discordBotsGGPayload struct {
	GuildCount int `json:"guildCount"`
	ShardCount int `json:"shardCount"`
}

type botsOnDiscordPayload struct {
	GuildCount int `json:"guildCount"`
}

// payload builds the JSON body for this kind.
func (k Kind) payload(s Stats) any {
	shards := max(1, s.ShardCount)
	switch k {
	case TopGG:
		return topGGPayload{ServerCount: s.GuildCount, ShardCount: shards}
	case DiscordBotsGG:
		return discordBotsGGPayload{GuildCount: s.GuildCount, ShardCount: shards}
	default:
		return botsOnDiscordPayload{GuildCount: s.GuildCount}
	}
}

// Target is one directory the bot reports to. Immutable once built.
type Target struct {
	Kind  Kind
	URL   string
	Token string
}

// Name identifies the target in logs.
func (t Target) Name() string {
	return t.Kind.String()
}

func (t Target) endpoint(botID snowflake.ID) string {
	return strings.ReplaceAll(t.URL, "{bot_id}", botID.String())
}

// Tokens holds the optional directory credentials. An empty token disables
// that directory.
type Tokens struct {
	TopGG         string
	DiscordBotsGG string
	BotsOnDiscord string
}

// Targets returns the directories that have a token, in a fixed order.
func Targets(tokens Tokens) []Target {
	candidates := []Target{
		{Kind: BotsOnDiscord, URL: BotsOnDiscordURL, Token: tokens.BotsOnDiscord},
		{Kind: TopGG, URL: TopGGURL, Token: tokens.TopGG},
		{Kind: DiscordBotsGG, URL: DiscordBotsGGURL, Token: tokens.DiscordBotsGG},
	}

	var out []Target
	for _, t := range candidates {
		if strings.TrimSpace(t.Token) == "" {
			continue
		}
		out = append(out, t)
	}
	return out
}
