package voice

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/disgoorg/snowflake/v2"
)

var (
	// ErrJoinTimedOut means the voice server never confirmed the connection.
	// It is a retry hint for the user, not a fault.
	ErrJoinTimedOut = errors.New("timed out joining voice channel")
	ErrNotConnected = errors.New("not connected to a voice channel")
)

// SessionManager owns the actual voice connections. Connect to a channel in
// a guild that is already connected elsewhere is a move.
type SessionManager interface {
	Connect(ctx context.Context, guildID, channelID snowflake.ID) error
	CurrentChannel(guildID snowflake.ID) (snowflake.ID, bool)
	Disconnect(ctx context.Context, guildID snowflake.ID) error
}

// Coordinator serializes voice connection changes per guild.
type Coordinator struct {
	registry *Registry
	sessions SessionManager
}

// NewCoordinator creates a Coordinator delegating to sessions.
func NewCoordinator(sessions SessionManager) *Coordinator {
	return &Coordinator{
		registry: NewRegistry(),
		sessions: sessions,
	}
}

// Registry exposes the lock registry.
func (c *Coordinator) Registry() *Registry {
	return c.registry
}

// CurrentChannel reports the channel the bot is connected to in guildID.
func (c *Coordinator) CurrentChannel(guildID snowflake.ID) (snowflake.ID, bool) {
	return c.sessions.CurrentChannel(guildID)
}

// Join connects the bot to channelID and returns the channel it is now in.
// Concurrent calls for the same guild run one at a time; other guilds are
// never blocked. A timeout is reported as ErrJoinTimedOut.
func (c *Coordinator) Join(ctx context.Context, guildID, channelID snowflake.ID) (snowflake.ID, error) {
	lock := c.registry.Acquire(guildID)
	lock.Lock()
	defer lock.Unlock()

	err := c.sessions.Connect(ctx, guildID, channelID)
	switch {
	case err == nil:
	case errors.Is(err, ErrJoinTimedOut), errors.Is(err, context.DeadlineExceeded):
		log.Printf("[INFO] [Voice] Join timed out | guild=%s channel=%s", guildID, channelID)
		return 0, ErrJoinTimedOut
	default:
		return 0, fmt.Errorf("join channel %s in guild %s: %w", channelID, guildID, err)
	}

	if current, ok := c.sessions.CurrentChannel(guildID); ok {
		return current, nil
	}
	return channelID, nil
}

// Leave disconnects the bot from the guild's voice channel under the same
// lock Join uses.
func (c *Coordinator) Leave(ctx context.Context, guildID snowflake.ID) error {
	lock := c.registry.Acquire(guildID)
	lock.Lock()
	defer lock.Unlock()

	if _, ok := c.sessions.CurrentChannel(guildID); !ok {
		return ErrNotConnected
	}

	if err := c.sessions.Disconnect(ctx, guildID); err != nil {
		return fmt.Errorf("leave guild %s: %w", guildID, err)
	}
	return nil
}
