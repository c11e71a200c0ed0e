package discord

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"sort"

	"github.com/bwmarrin/discordgo"
)

type hashedOption struct {
	Name         string                  `json:"name"`
	Description  string                  `json:"description"`
	Type         int                     `json:"type"`
	Required     bool                    `json:"required"`
	ChannelTypes []discordgo.ChannelType `json:"channel_types,omitempty"`
	Options      []hashedOption          `json:"options,omitempty"`
}

type hashedCommand struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Type        int            `json:"type"`
	Permissions *int64         `json:"permissions,omitempty"`
	DM          *bool          `json:"dm,omitempty"`
	Options     []hashedOption `json:"options,omitempty"`
}

// hashCommand returns a deterministic hash of the parts of a command
// definition Discord stores. IDs and versions are ignored.
func hashCommand(def *discordgo.ApplicationCommand) string {
	data, _ := json.Marshal(hashedCommand{
		Name:        def.Name,
		Description: def.Description,
		Type:        int(def.Type),
		Permissions: def.DefaultMemberPermissions,
		DM:          def.DMPermission,
		Options:     hashOptions(def.Options),
	})
	sum := sha1.Sum(data)
	return hex.EncodeToString(sum[:])
}

func hashOptions(opts []*discordgo.ApplicationCommandOption) []hashedOption {
	if len(opts) == 0 {
		return nil
	}
	out := make([]hashedOption, len(opts))
	for i, o := range opts {
		out[i] = hashedOption{
			Name:         o.Name,
			Description:  o.Description,
			Type:         int(o.Type),
			Required:     o.Required,
			ChannelTypes: o.ChannelTypes,
			Options:      hashOptions(o.Options),
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
