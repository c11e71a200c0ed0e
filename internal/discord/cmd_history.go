package discord

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/tts-bot/internal/storage"
	"github.com/keshon/tts-bot/pkg/cmd"
)

const (
	discordMaxMessageLength = 2000
	codeLeftBlockWrapper    = "```md"
	codeRightBlockWrapper   = "```"
)

var maxHistoryLength = discordMaxMessageLength - len(codeLeftBlockWrapper) - len(codeRightBlockWrapper) - 2

// HistoryCommand shows the most recent commands run in the guild.
type HistoryCommand struct {
	Store *storage.Storage
}

func (c *HistoryCommand) Name() string        { return "history" }
func (c *HistoryCommand) Description() string { return "Review the commands recently run in this server" }

func (c *HistoryCommand) Definition() *discordgo.ApplicationCommand {
	manageServer := int64(discordgo.PermissionManageServer)
	return &discordgo.ApplicationCommand{
		Type:                     discordgo.ChatApplicationCommand,
		Name:                     c.Name(),
		Description:              c.Description(),
		DefaultMemberPermissions: &manageServer,
		DMPermission:             new(bool),
	}
}

func (c *HistoryCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	it, err := interactionFrom(inv)
	if err != nil {
		return err
	}

	records, err := c.Store.FetchCommandHistory(ctx, it.GuildID)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return it.ReplyEphemeral("No commands have been run yet.")
	}
	return it.ReplyEphemeral(formatHistory(records))
}

// formatHistory renders records latest first as a code block that fits in
// one Discord message.
func formatHistory(records []storage.CommandHistoryRecord) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%-19s\t%-15s\t%s\n", "# Datetime", "# Username", "# Command"))

	for i := len(records) - 1; i >= 0; i-- {
		r := records[i]
		line := fmt.Sprintf("%-19s\t%-15s\t/%s\n", r.Datetime.Format("2006-01-02 15:04:05"), r.Username, r.Command)
		if b.Len()+len(line) > maxHistoryLength {
			break
		}
		b.WriteString(line)
	}

	return codeLeftBlockWrapper + "\n" + b.String() + codeRightBlockWrapper
}
