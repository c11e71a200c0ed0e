package discord

import (
	"context"
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/tts-bot/internal/config"
)

// BroadcastStats opens a gateway session, waits for Ready and posts the
// bot's statistics to every configured directory once.
func BroadcastStats(ctx context.Context, cfg *config.Config) error {
	dg, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds

	ready := make(chan struct{})
	dg.AddHandlerOnce(func(_ *discordgo.Session, _ *discordgo.Ready) {
		close(ready)
	})

	if err := dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	defer dg.Close()

	select {
	case <-ready:
	case <-ctx.Done():
		return fmt.Errorf("waiting for ready: %w", ctx.Err())
	}

	updater := newUpdater(dg, cfg)
	if len(updater.Targets()) == 0 {
		log.Println("[WARN] No bot list tokens configured, nothing to post")
		return nil
	}
	return updater.Broadcast(ctx)
}
