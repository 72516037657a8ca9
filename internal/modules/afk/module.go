package afk

import (
	"context"
	"fmt"
	"time"

	"auron-bot/internal/storage"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// Module clears a user's AFK status when they speak and answers mentions of
// AFK users with their reason and how long they've been away.
type Module struct {
	store  *storage.Store
	logger *zap.Logger
}

func New(store *storage.Store, logger *zap.Logger) *Module {
	return &Module{store: store, logger: logger}
}

func (m *Module) HandleMessage(ctx context.Context, session *discordgo.Session, msg *discordgo.MessageCreate) {
	cleared, err := m.store.ClearAFK(ctx, msg.GuildID, msg.Author.ID)
	if err != nil {
		m.logger.Warn("afk clear failed", zap.String("user_id", msg.Author.ID), zap.Error(err))
	} else if cleared {
		content := fmt.Sprintf("Welcome back <@%s>! Your AFK status has been removed.", msg.Author.ID)
		if _, err := session.ChannelMessageSendReply(msg.ChannelID, content, msg.Reference()); err != nil {
			m.logger.Warn("afk welcome-back reply failed", zap.Error(err))
		}
	}

	for _, user := range msg.Mentions {
		status, err := m.store.GetAFK(ctx, msg.GuildID, user.ID)
		if err != nil {
			m.logger.Warn("afk lookup failed", zap.String("user_id", user.ID), zap.Error(err))
			continue
		}
		if status == nil {
			continue
		}
		minutes := int(time.Since(status.SetAt).Minutes())
		content := fmt.Sprintf("%s is currently AFK: %s (%d minutes ago)", user.Username, status.Reason, minutes)
		if _, err := session.ChannelMessageSendReply(msg.ChannelID, content, msg.Reference()); err != nil {
			m.logger.Warn("afk mention reply failed", zap.Error(err))
		}
	}
}
