// Package monitor implements the channel inactivity monitor: a persisted
// ledger of watched channels, an activity recorder fed by the message
// pipeline, and a polling evaluator that posts a conversation breaker when a
// channel has been quiet past its guild's timeout.
package monitor

import (
	"context"
	"time"
)

// MonitoredChannel is one ledger row. At most one active row exists per
// (guild_id, channel_id) pair. LastActive holds either the last observed
// message time or the last notification time; the two are unified so a
// notification resets the quiet clock and cannot re-fire every tick.
type MonitoredChannel struct {
	ID         string
	GuildID    string
	ChannelID  string
	Active     bool
	LastActive time.Time
}

// InactivityPolicy is a guild's configured timeout. Guilds without a row use
// DefaultTimeoutMinutes.
type InactivityPolicy struct {
	GuildID        string
	TimeoutMinutes int
}

// Ledger is the persistence contract the monitor consumes.
type Ledger interface {
	// ListActiveChannels returns a snapshot of all rows with active = true.
	ListActiveChannels(ctx context.Context) ([]MonitoredChannel, error)
	// GetPolicy returns nil (not an error) when the guild has no policy row.
	GetPolicy(ctx context.Context, guildID string) (*InactivityPolicy, error)
	// TouchActivity sets last_active to now for the matching active row.
	// A missing row is a silent no-op.
	TouchActivity(ctx context.Context, guildID, channelID string) error
	// RecordNotificationSent sets last_active to now for the given row id.
	RecordNotificationSent(ctx context.Context, id string) error
}

// Gateway is the chat-platform surface the evaluator consumes.
type Gateway interface {
	// ResolveGuild reports whether the guild still exists.
	ResolveGuild(guildID string) bool
	// ResolveChannel reports whether the channel still exists in the guild.
	ResolveChannel(guildID, channelID string) bool
	// SendPrompt delivers a conversation-breaker prompt to the channel.
	SendPrompt(channelID, prompt string) error
}
