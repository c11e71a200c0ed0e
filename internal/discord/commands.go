package discord

import (
	"context"
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"

	"github.com/keshon/tts-bot/pkg/cmd"
)

// registerCommands syncs the guild's slash commands with Discord. Nothing is
// sent when the stored definition hashes match the local ones.
func (b *Bot) registerCommands(ctx context.Context, guildID snowflake.ID) error {
	defs := commandDefinitions(b.commands)
	wanted := make(map[string]string, len(defs))
	for _, def := range defs {
		wanted[def.Name] = hashCommand(def)
	}

	cached, err := b.store.CommandHashes(ctx, guildID)
	if err != nil {
		log.Printf("[WARN] [%s] Failed to load command hashes: %v", guildID, err)
	}
	if !hashesChanged(cached, wanted) {
		log.Printf("[INFO] [%s] Slash commands up to date", guildID)
		return nil
	}

	appID := b.dg.State.User.ID
	err = paced(ctx, b.commandPacer, func() error {
		_, err := b.dg.ApplicationCommandBulkOverwrite(appID, guildID.String(), defs)
		return err
	})
	if err != nil {
		return fmt.Errorf("overwrite commands: %w", err)
	}
	log.Printf("[DONE] [%s] Registered %d slash commands", guildID, len(defs))

	if err := b.store.SaveCommandHashes(ctx, guildID, wanted); err != nil {
		log.Printf("[WARN] [%s] Failed to save command hashes: %v", guildID, err)
	}
	return nil
}

// commandDefinitions returns the slash definitions of every registered command.
func commandDefinitions(r *cmd.Registry) []*discordgo.ApplicationCommand {
	var defs []*discordgo.ApplicationCommand
	for _, c := range r.All() {
		if sc, ok := cmd.Root(c).(SlashCommand); ok {
			defs = append(defs, sc.Definition())
		}
	}
	return defs
}

func hashesChanged(cached, wanted map[string]string) bool {
	if len(cached) != len(wanted) {
		return true
	}
	for name, h := range wanted {
		if cached[name] != h {
			return true
		}
	}
	return false
}
