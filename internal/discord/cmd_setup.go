package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"

	"github.com/keshon/tts-bot/internal/storage"
	"github.com/keshon/tts-bot/pkg/cmd"
)

// SetupCommand stores the text channel the bot's commands are run in.
type SetupCommand struct {
	Store *storage.Storage
}

func (c *SetupCommand) Name() string { return "setup" }
func (c *SetupCommand) Description() string {
	return "Setup the bot to read messages from the given channel"
}

func (c *SetupCommand) Definition() *discordgo.ApplicationCommand {
	manageServer := int64(discordgo.PermissionManageServer)
	return &discordgo.ApplicationCommand{
		Type:                     discordgo.ChatApplicationCommand,
		Name:                     c.Name(),
		Description:              c.Description(),
		DefaultMemberPermissions: &manageServer,
		DMPermission:             new(bool),
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:         discordgo.ApplicationCommandOptionChannel,
				Name:         "channel",
				Description:  "The channel for the bot to read messages from",
				ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText},
			},
			{
				Type:        discordgo.ApplicationCommandOptionBoolean,
				Name:        "clear",
				Description: "Forget the setup channel",
			},
		},
	}
}

func (c *SetupCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	it, err := interactionFrom(inv)
	if err != nil {
		return err
	}

	if opt, ok := it.Options["clear"]; ok {
		if clear, _ := opt.Value.(bool); clear {
			if err := c.Store.ClearSetupChannel(ctx, it.GuildID); err != nil {
				return err
			}
			return it.Reply("Setup channel cleared, run /setup to choose a new one.")
		}
	}

	channel := it.ChannelID
	if opt, ok := it.Options["channel"]; ok {
		raw, _ := opt.Value.(string)
		if channel, err = snowflake.Parse(raw); err != nil {
			return fmt.Errorf("parse channel option %q: %w", raw, err)
		}
	}

	if err := c.Store.SetSetupChannel(ctx, it.GuildID, channel); err != nil {
		return err
	}

	return it.ReplyEmbed(&discordgo.MessageEmbed{
		Title:       "Setup complete!",
		Description: fmt.Sprintf("I will now read messages from <#%s>. Join a voice channel and run /join to begin.", channel),
		Color:       EmbedColor,
	})
}
