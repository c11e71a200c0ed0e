package discord

import (
	"github.com/bwmarrin/discordgo"
)

const EmbedColor = 0xb01e66

// Responder replies to the interaction that triggered a command. Commands use
// it instead of the session so they stay testable without a gateway.
type Responder interface {
	Reply(content string) error
	ReplyEphemeral(content string) error
	ReplyEmbed(embed *discordgo.MessageEmbed) error
	Defer() error
	EditReply(content string) error
	EditReplyEmbed(embed *discordgo.MessageEmbed) error
}

// interactionResponder implements Responder for a live interaction.
type interactionResponder struct {
	s *discordgo.Session
	i *discordgo.InteractionCreate
}

func (r interactionResponder) Reply(content string) error {
	return Respond(r.s, r.i, content)
}

func (r interactionResponder) ReplyEphemeral(content string) error {
	return RespondEphemeral(r.s, r.i, content)
}

func (r interactionResponder) ReplyEmbed(embed *discordgo.MessageEmbed) error {
	return RespondEmbed(r.s, r.i, embed)
}

func (r interactionResponder) Defer() error {
	return RespondDeferred(r.s, r.i)
}

func (r interactionResponder) EditReply(content string) error {
	return EditResponse(r.s, r.i, content)
}

func (r interactionResponder) EditReplyEmbed(embed *discordgo.MessageEmbed) error {
	return EditResponseEmbed(r.s, r.i, embed)
}

// --- Interaction responses ---

// Respond sends a public message response to an interaction.
func Respond(s *discordgo.Session, i *discordgo.InteractionCreate, content string) error {
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Content: content},
	})
}

// RespondEphemeral sends an ephemeral message response to an interaction.
func RespondEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, content string) error {
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}

// RespondEmbed sends a public embed response to an interaction.
func RespondEmbed(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) error {
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Embeds: []*discordgo.MessageEmbed{embed}},
	})
}

// RespondDeferred acknowledges an interaction that needs more than three
// seconds to answer. The answer is delivered with EditResponse.
func RespondDeferred(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})
}

// EditResponse replaces the content of a deferred or sent response.
func EditResponse(s *discordgo.Session, i *discordgo.InteractionCreate, content string) error {
	_, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{Content: &content})
	return err
}

func EditResponseEmbed(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) error {
	_, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Embeds: &[]*discordgo.MessageEmbed{embed},
	})
	return err
}
