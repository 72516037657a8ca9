package antispam

import (
	"context"
	"sync"
	"time"

	"auron-bot/internal/config"
	"auron-bot/internal/modules/modlog"
	"auron-bot/internal/storage"
	"auron-bot/internal/utils"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// Module flags users whose message rate exceeds the configured burst
// threshold. On a flag it deletes the burst, times the member out, and writes
// a moderation log entry; with enforcement disabled it only logs.
type Module struct {
	mu      sync.Mutex
	windows map[string]*utils.SlidingWindow
	config  config.Thresholds
	modlog  *modlog.Logger
	logger  *zap.Logger
}

func New(cfg config.Thresholds, modLogger *modlog.Logger, logger *zap.Logger) *Module {
	return &Module{
		windows: make(map[string]*utils.SlidingWindow),
		config:  cfg,
		modlog:  modLogger,
		logger:  logger,
	}
}

func (m *Module) HandleMessage(ctx context.Context, session *discordgo.Session, msg *discordgo.MessageCreate) bool {
	key := msg.GuildID + ":" + msg.Author.ID
	count := m.getWindow(key).Add(time.Now())
	if count <= m.config.SpamMessages {
		return false
	}

	if m.config.Enforce {
		m.punish(session, msg)
	}

	m.modlog.Log(ctx, storage.ModerationLog{
		GuildID:         msg.GuildID,
		UserID:          msg.Author.ID,
		ModeratorID:     botID(session),
		ActionType:      "timeout",
		Reason:          "Auto-mod: excessive spamming detected",
		Severity:        modlog.SeverityModerate,
		DurationMinutes: m.config.SpamTimeoutMinutes,
	})

	m.reset(key)
	return true
}

func (m *Module) punish(session *discordgo.Session, msg *discordgo.MessageCreate) {
	recent, err := session.ChannelMessages(msg.ChannelID, 10, "", "", "")
	if err == nil {
		var ids []string
		for _, message := range recent {
			if message.Author != nil && message.Author.ID == msg.Author.ID {
				ids = append(ids, message.ID)
			}
		}
		if len(ids) > 0 {
			if err := session.ChannelMessagesBulkDelete(msg.ChannelID, ids); err != nil {
				m.logger.Warn("spam burst delete failed", zap.String("channel_id", msg.ChannelID), zap.Error(err))
			}
		}
	}

	until := time.Now().Add(time.Duration(m.config.SpamTimeoutMinutes) * time.Minute)
	if err := session.GuildMemberTimeout(msg.GuildID, msg.Author.ID, &until); err != nil {
		m.logger.Warn("spam timeout failed", zap.String("user_id", msg.Author.ID), zap.Error(err))
	}
}

func (m *Module) getWindow(key string) *utils.SlidingWindow {
	m.mu.Lock()
	defer m.mu.Unlock()
	window := m.windows[key]
	if window == nil {
		window = utils.NewSlidingWindow(time.Duration(m.config.SpamWindowSeconds) * time.Second)
		m.windows[key] = window
	}
	return window
}

func (m *Module) reset(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.windows, key)
}

func botID(session *discordgo.Session) string {
	if session != nil && session.State != nil && session.State.User != nil {
		return session.State.User.ID
	}
	return ""
}
