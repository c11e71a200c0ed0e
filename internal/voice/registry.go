package voice

import (
	"sync"

	"github.com/disgoorg/snowflake/v2"
)

// GuildJoinLock is the exclusive right to change one guild's voice connection.
type GuildJoinLock struct {
	GuildID snowflake.ID
	mu      sync.Mutex
}

// Lock blocks until no other transition for the guild is in progress.
func (l *GuildJoinLock) Lock() { l.mu.Lock() }

// Unlock releases the guild.
func (l *GuildJoinLock) Unlock() { l.mu.Unlock() }

// TryLock acquires the lock only if it is free right now.
func (l *GuildJoinLock) TryLock() bool { return l.mu.TryLock() }

// Registry maps guild IDs to their join lock. Entries live for the whole
// process; a guild the bot left may be joined again later.
type Registry struct {
	mu    sync.Mutex
	locks map[snowflake.ID]*GuildJoinLock
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		locks: make(map[snowflake.ID]*GuildJoinLock),
	}
}

// Acquire returns the single lock for guildID, creating it on first use.
// The returned lock is not held.
func (r *Registry) Acquire(guildID snowflake.ID) *GuildJoinLock {
	r.mu.Lock()
	defer r.mu.Unlock()

	if l, ok := r.locks[guildID]; ok {
		return l
	}

	l := &GuildJoinLock{GuildID: guildID}
	r.locks[guildID] = l
	return l
}
