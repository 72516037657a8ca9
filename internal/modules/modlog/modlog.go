// Package modlog persists moderation actions and mirrors them to a guild's
// configured mod-log channel.
package modlog

import (
	"context"
	"time"

	"auron-bot/internal/storage"

	"go.uber.org/zap"
)

const (
	SeverityMinor    = "minor"
	SeverityModerate = "moderate"
	SeveritySevere   = "severe"
)

type Logger struct {
	store  *storage.Store
	logger *zap.Logger
	notify func(context.Context, storage.ModerationLog)
}

func NewLogger(store *storage.Store, logger *zap.Logger) *Logger {
	return &Logger{store: store, logger: logger}
}

// SetNotifier installs the channel-embed callback. The bot wires this after
// the session exists.
func (l *Logger) SetNotifier(notify func(context.Context, storage.ModerationLog)) {
	l.notify = notify
}

func (l *Logger) Log(ctx context.Context, entry storage.ModerationLog) {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	if l.store != nil {
		if err := l.store.AddModerationLog(ctx, entry); err != nil {
			l.logger.Warn("moderation log write failed", zap.Error(err))
		}
	}
	if l.notify != nil {
		l.notify(ctx, entry)
	}
	l.logger.Info("moderation action",
		zap.String("guild_id", entry.GuildID),
		zap.String("user_id", entry.UserID),
		zap.String("action", entry.ActionType),
		zap.String("severity", entry.Severity),
		zap.String("reason", entry.Reason))
}
