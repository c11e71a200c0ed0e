package discord

import (
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"

	"github.com/keshon/tts-bot/pkg/cmd"
)

var errNotInteraction = errors.New("invocation does not carry a discord interaction")

// Interaction is the invocation payload of a slash command.
type Interaction struct {
	GuildID   snowflake.ID
	ChannelID snowflake.ID
	UserID    snowflake.ID
	Username  string

	// VoiceChannel is the invoking user's voice channel, 0 if they are in none.
	VoiceChannel snowflake.ID

	// Options holds the command options by name.
	Options map[string]*discordgo.ApplicationCommandInteractionDataOption

	Responder
}

// SlashCommand is a command that can be registered as a Discord slash command.
type SlashCommand interface {
	cmd.Command
	Definition() *discordgo.ApplicationCommand
}

// guildState is the part of the gateway state the commands read.
type guildState interface {
	// BotTimedOut reports whether the bot is communication disabled in the guild.
	BotTimedOut(guildID snowflake.ID) bool
	BotChannelPermissions(channelID snowflake.ID) (int64, error)
	// ChannelExists reports whether channelID is still a channel of the guild.
	ChannelExists(guildID, channelID snowflake.ID) bool
}

func interactionFrom(inv *cmd.Invocation) (*Interaction, error) {
	it, ok := inv.Data.(*Interaction)
	if !ok || it == nil {
		return nil, errNotInteraction
	}
	return it, nil
}

// newInteraction builds the payload for an application command interaction.
func newInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) (*Interaction, error) {
	it := &Interaction{
		Options:   make(map[string]*discordgo.ApplicationCommandInteractionDataOption),
		Responder: interactionResponder{s: s, i: i},
	}

	user := resolveUser(i)
	if user == nil {
		return nil, errors.New("interaction has no user")
	}
	it.Username = user.Username

	var err error
	if it.UserID, err = snowflake.Parse(user.ID); err != nil {
		return nil, fmt.Errorf("parse user id %q: %w", user.ID, err)
	}
	if it.ChannelID, err = snowflake.Parse(i.ChannelID); err != nil {
		return nil, fmt.Errorf("parse channel id %q: %w", i.ChannelID, err)
	}
	if i.GuildID != "" {
		if it.GuildID, err = snowflake.Parse(i.GuildID); err != nil {
			return nil, fmt.Errorf("parse guild id %q: %w", i.GuildID, err)
		}
		if vs, err := s.State.VoiceState(i.GuildID, user.ID); err == nil && vs.ChannelID != "" {
			it.VoiceChannel, _ = snowflake.Parse(vs.ChannelID)
		}
	}

	for _, opt := range i.ApplicationCommandData().Options {
		it.Options[opt.Name] = opt
	}
	return it, nil
}

// resolveUser returns the user behind an interaction in a guild or a DM.
func resolveUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}
