package discord

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"

	"github.com/keshon/tts-bot/internal/voice"
)

// voiceSessions implements voice.SessionManager on top of discordgo's voice
// connections. The bot joins deafened since it only ever speaks.
type voiceSessions struct {
	dg *discordgo.Session
}

func (v *voiceSessions) connection(guildID snowflake.ID) *discordgo.VoiceConnection {
	v.dg.RLock()
	defer v.dg.RUnlock()
	return v.dg.VoiceConnections[guildID.String()]
}

// Connect joins channelID, moving the bot if it is in another channel of the
// guild. Connecting to the current channel of a ready connection is a no-op.
func (v *voiceSessions) Connect(ctx context.Context, guildID, channelID snowflake.ID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if vc := v.connection(guildID); vc != nil {
		vc.RLock()
		same := vc.Ready && vc.ChannelID == channelID.String()
		vc.RUnlock()
		if same {
			return nil
		}
	}

	_, err := v.dg.ChannelVoiceJoin(guildID.String(), channelID.String(), false, true)
	if err != nil && isVoiceTimeout(err) {
		return fmt.Errorf("%w: %v", voice.ErrJoinTimedOut, err)
	}
	return err
}

func (v *voiceSessions) CurrentChannel(guildID snowflake.ID) (snowflake.ID, bool) {
	vc := v.connection(guildID)
	if vc == nil {
		return 0, false
	}

	vc.RLock()
	raw := vc.ChannelID
	vc.RUnlock()

	id, err := snowflake.Parse(raw)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

func (v *voiceSessions) Disconnect(_ context.Context, guildID snowflake.ID) error {
	vc := v.connection(guildID)
	if vc == nil {
		return voice.ErrNotConnected
	}
	return vc.Disconnect()
}

// isVoiceTimeout matches discordgo's "timeout waiting for voice" handshake error.
func isVoiceTimeout(err error) bool {
	return strings.Contains(err.Error(), "timeout waiting for voice")
}

// stateView implements guildState on the session's state cache.
type stateView struct {
	dg *discordgo.Session
}

func (s stateView) BotTimedOut(guildID snowflake.ID) bool {
	member, err := s.dg.State.Member(guildID.String(), s.dg.State.User.ID)
	if err != nil || member.CommunicationDisabledUntil == nil {
		return false
	}
	return member.CommunicationDisabledUntil.After(time.Now())
}

func (s stateView) ChannelExists(guildID, channelID snowflake.ID) bool {
	ch, err := s.dg.State.Channel(channelID.String())
	return err == nil && ch.GuildID == guildID.String()
}

func (s stateView) BotChannelPermissions(channelID snowflake.ID) (int64, error) {
	return s.dg.State.UserChannelPermissions(s.dg.State.User.ID, channelID.String())
}
