package discord

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/tts-bot/internal/voice"
	"github.com/keshon/tts-bot/pkg/cmd"
)

// JoinCommand connects the bot to the invoking user's voice channel.
type JoinCommand struct {
	Voice *voice.Coordinator
	State guildState
}

func (c *JoinCommand) Name() string        { return "join" }
func (c *JoinCommand) Description() string { return "Joins the voice channel you're in!" }

func (c *JoinCommand) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Type:         discordgo.ChatApplicationCommand,
		Name:         c.Name(),
		Description:  c.Description(),
		DMPermission: new(bool),
	}
}

func (c *JoinCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	it, err := interactionFrom(inv)
	if err != nil {
		return err
	}

	if it.VoiceChannel == 0 {
		return it.ReplyEphemeral("I cannot join your voice channel unless you are in one!")
	}
	if c.State.BotTimedOut(it.GuildID) {
		return it.ReplyEphemeral("I am timed out, please ask a moderator to remove the timeout")
	}

	perms, err := c.State.BotChannelPermissions(it.VoiceChannel)
	if err != nil {
		return fmt.Errorf("bot permissions in %s: %w", it.VoiceChannel, err)
	}
	if missing := missingVoicePermissions(perms); len(missing) > 0 {
		return it.ReplyEphemeral(missingPermissionsMessage(missing))
	}

	if current, ok := c.Voice.CurrentChannel(it.GuildID); ok {
		return it.Reply(alreadyConnectedMessage(current, it.VoiceChannel))
	}

	if err := it.Defer(); err != nil {
		return err
	}

	channel, err := c.Voice.Join(ctx, it.GuildID, it.VoiceChannel)
	switch {
	case errors.Is(err, voice.ErrJoinTimedOut):
		return it.EditReply("I failed to join your voice channel, please check I have the right permissions and try again!")
	case err != nil:
		if e := it.EditReply("Error: something went wrong while joining your voice channel."); e != nil {
			log.Printf("[WARN] Failed to edit /join response: %v", e)
		}
		return err
	}

	return it.EditReplyEmbed(&discordgo.MessageEmbed{
		Title:       "Joined your voice channel!",
		Description: fmt.Sprintf("Connected to <#%s>. Just type normally and I will say your messages!", channel),
		Color:       EmbedColor,
	})
}
