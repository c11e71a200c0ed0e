package discord

import (
	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
)

// gatewayStats implements botlist.StatsProvider from the live gateway session.
type gatewayStats struct {
	dg *discordgo.Session
}

func (g gatewayStats) GuildCount() int {
	g.dg.State.RLock()
	defer g.dg.State.RUnlock()
	return len(g.dg.State.Guilds)
}

func (g gatewayStats) ShardCount() int {
	return max(1, g.dg.ShardCount)
}

func (g gatewayStats) BotID() snowflake.ID {
	g.dg.State.RLock()
	user := g.dg.State.User
	g.dg.State.RUnlock()

	if user == nil {
		return 0
	}
	id, err := snowflake.Parse(user.ID)
	if err != nil {
		return 0
	}
	return id
}
