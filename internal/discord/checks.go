package discord

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
)

// voicePermissions are the channel permissions the bot needs to speak.
var voicePermissions = []struct {
	bit  int64
	name string
}{
	{discordgo.PermissionViewChannel, "View Channel"},
	{discordgo.PermissionVoiceConnect, "Connect"},
	{discordgo.PermissionVoiceSpeak, "Speak"},
}

// channelCheck decides whether a command invoked in channel may run. It is
// allowed in the guild's setup channel and in the text chat of the user's
// voice channel. A stored setup channel that was since deleted counts as no
// setup at all.
func channelCheck(setup snowflake.ID, hasSetup, setupExists bool, channel, userVoice snowflake.ID) (bool, string) {
	if hasSetup && setup == channel {
		return true, ""
	}
	if userVoice != 0 && userVoice == channel {
		return true, ""
	}
	if hasSetup && setupExists {
		return false, fmt.Sprintf("You ran this command in the wrong channel, please move to <#%s>.", setup)
	}
	return false, "You haven't setup the bot, please run /setup!"
}

// missingVoicePermissions lists the names of the voice permissions absent from perms.
func missingVoicePermissions(perms int64) []string {
	if perms&discordgo.PermissionAdministrator != 0 {
		return nil
	}
	var missing []string
	for _, p := range voicePermissions {
		if perms&p.bit == 0 {
			missing = append(missing, p.name)
		}
	}
	return missing
}

func missingPermissionsMessage(missing []string) string {
	return "I do not have permission to TTS in your voice channel, please ask a server administrator to give me: " +
		strings.Join(missing, ", ")
}

// alreadyConnectedMessage is the reply to /join while the bot is already in a voice channel.
func alreadyConnectedMessage(current, userVoice snowflake.ID) string {
	if current == userVoice {
		return "I am already in your voice channel!"
	}
	return fmt.Sprintf("I am already in <#%s>!", current)
}
