package discord

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/keshon/tts-bot/internal/storage"
	"github.com/keshon/tts-bot/pkg/cmd"
)

// WithGuildOnly drops invocations that did not come from a guild.
func WithGuildOnly() cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			it, err := interactionFrom(inv)
			if err != nil {
				return err
			}
			if it.GuildID == 0 {
				return it.ReplyEphemeral("This command can only be used in a server.")
			}
			return c.Run(ctx, inv)
		})
	}
}

// WithSetupChannel only lets a command run in the guild's setup channel or in
// the chat of the invoking user's voice channel.
func WithSetupChannel(store *storage.Storage, state guildState) cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			it, err := interactionFrom(inv)
			if err != nil {
				return err
			}

			setup, err := store.SetupChannel(ctx, it.GuildID)
			hasSetup := err == nil
			if err != nil && !errors.Is(err, storage.ErrNoSetupChannel) {
				return err
			}

			exists := hasSetup && state.ChannelExists(it.GuildID, setup)
			if ok, msg := channelCheck(setup, hasSetup, exists, it.ChannelID, it.VoiceChannel); !ok {
				return it.ReplyEphemeral(msg)
			}
			return c.Run(ctx, inv)
		})
	}
}

// WithCommandLogger records every guild invocation in the command history.
func WithCommandLogger(store *storage.Storage) cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			err := c.Run(ctx, inv)

			it, ierr := interactionFrom(inv)
			if ierr != nil || it.GuildID == 0 {
				return err
			}
			record := storage.CommandHistoryRecord{
				ChannelID: it.ChannelID.String(),
				UserID:    it.UserID.String(),
				Username:  it.Username,
				Command:   c.Name(),
				Datetime:  time.Now().UTC(),
			}
			if e := store.AppendCommandToHistory(ctx, it.GuildID, record); e != nil {
				log.Printf("[WARN] Failed to log command /%s: %v", c.Name(), e)
			}
			return err
		})
	}
}
