package discord

import (
	"context"
	"errors"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/tts-bot/internal/voice"
	"github.com/keshon/tts-bot/pkg/cmd"
)

const notInVoiceMessage = "Error: How do I leave a voice channel if I am not in one?"

// LeaveCommand disconnects the bot from the guild's voice channel.
type LeaveCommand struct {
	Voice *voice.Coordinator
}

func (c *LeaveCommand) Name() string        { return "leave" }
func (c *LeaveCommand) Description() string { return "Leaves the current voice channel!" }

func (c *LeaveCommand) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Type:         discordgo.ChatApplicationCommand,
		Name:         c.Name(),
		Description:  c.Description(),
		DMPermission: new(bool),
	}
}

func (c *LeaveCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	it, err := interactionFrom(inv)
	if err != nil {
		return err
	}

	current, ok := c.Voice.CurrentChannel(it.GuildID)
	if !ok {
		return it.Reply(notInVoiceMessage)
	}
	if it.VoiceChannel != current {
		return it.Reply("Error: You need to be in the same voice channel as me to make me leave!")
	}

	err = c.Voice.Leave(ctx, it.GuildID)
	if errors.Is(err, voice.ErrNotConnected) {
		return it.Reply(notInVoiceMessage)
	}
	if err != nil {
		return err
	}
	return it.Reply("Left voice channel!")
}
