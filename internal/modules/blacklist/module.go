package blacklist

import (
	"context"
	"fmt"
	"strings"
	"time"

	"auron-bot/internal/modules/modlog"
	"auron-bot/internal/storage"
	"auron-bot/internal/utils"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// Module removes messages containing blocked words or links to blocked
// domains. An entry containing a dot is treated as a domain and matched
// against normalized URL hosts, including subdomains; anything else is a
// plain substring match on the lowercased message.
type Module struct {
	store  *storage.Store
	modlog *modlog.Logger
	color  int
	logger *zap.Logger
}

func New(store *storage.Store, modLogger *modlog.Logger, color int, logger *zap.Logger) *Module {
	return &Module{store: store, modlog: modLogger, color: color, logger: logger}
}

func (m *Module) HandleMessage(ctx context.Context, session *discordgo.Session, msg *discordgo.MessageCreate) bool {
	entries, err := m.store.ListBlacklistEntries(ctx, msg.GuildID)
	if err != nil {
		m.logger.Warn("blacklist lookup failed", zap.String("guild_id", msg.GuildID), zap.Error(err))
		return false
	}
	if len(entries) == 0 {
		return false
	}

	entry, hit := Match(msg.Content, entries)
	if !hit {
		return false
	}

	if err := session.ChannelMessageDelete(msg.ChannelID, msg.ID); err != nil {
		m.logger.Warn("blacklisted message delete failed", zap.String("message_id", msg.ID), zap.Error(err))
	}

	m.modlog.Log(ctx, storage.ModerationLog{
		GuildID:     msg.GuildID,
		UserID:      msg.Author.ID,
		ModeratorID: botID(session),
		ActionType:  "warning",
		Reason:      "Blacklisted content detected: " + entry,
		Severity:    modlog.SeverityModerate,
	})

	embed := &discordgo.MessageEmbed{
		Title:       "Warning",
		Description: fmt.Sprintf("<@%s>, your message contained blacklisted content and has been removed.", msg.Author.ID),
		Color:       m.color,
		Timestamp:   time.Now().Format(time.RFC3339),
	}
	warning, err := session.ChannelMessageSendEmbed(msg.ChannelID, embed)
	if err == nil {
		// The warning cleans itself up after a few seconds.
		time.AfterFunc(5*time.Second, func() {
			_ = session.ChannelMessageDelete(msg.ChannelID, warning.ID)
		})
	}

	return true
}

// Match returns the first blacklist entry the content violates.
func Match(content string, entries []string) (string, bool) {
	lower := strings.ToLower(content)

	hasDomains := false
	for _, entry := range entries {
		if strings.Contains(entry, ".") {
			hasDomains = true
			continue
		}
		if strings.Contains(lower, entry) {
			return entry, true
		}
	}
	if !hasDomains {
		return "", false
	}

	for _, raw := range utils.ExtractURLs(content) {
		host, err := utils.NormalizeHost(raw)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if !strings.Contains(entry, ".") {
				continue
			}
			if host == entry || strings.HasSuffix(host, "."+entry) {
				return entry, true
			}
		}
	}
	return "", false
}

func botID(session *discordgo.Session) string {
	if session != nil && session.State != nil && session.State.User != nil {
		return session.State.User.ID
	}
	return ""
}
