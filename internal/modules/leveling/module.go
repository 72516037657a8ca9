package leveling

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"auron-bot/internal/storage"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// Module grants XP per message and announces level-ups. Each level requires
// level*100 XP; surplus XP carries into the next level.
type Module struct {
	store  *storage.Store
	color  int
	logger *zap.Logger
}

func New(store *storage.Store, color int, logger *zap.Logger) *Module {
	return &Module{store: store, color: color, logger: logger}
}

func (m *Module) HandleMessage(ctx context.Context, session *discordgo.Session, msg *discordgo.MessageCreate) {
	level, err := m.store.GetUserLevel(ctx, msg.GuildID, msg.Author.ID)
	if err != nil {
		m.logger.Warn("level lookup failed", zap.String("user_id", msg.Author.ID), zap.Error(err))
		return
	}

	gain := 10 + rand.IntN(15)
	newLevel, newXP, leveledUp := advance(level.Level, level.XP, gain)

	level.Level = newLevel
	level.XP = newXP
	level.TotalMessages++
	level.LastXPGain = time.Now()
	if err := m.store.UpsertUserLevel(ctx, level); err != nil {
		m.logger.Warn("level update failed", zap.String("user_id", msg.Author.ID), zap.Error(err))
		return
	}

	if leveledUp {
		embed := &discordgo.MessageEmbed{
			Title:       "Level Up!",
			Description: fmt.Sprintf("Congratulations <@%s>! You've reached **Level %d**!", msg.Author.ID, newLevel),
			Color:       m.color,
			Timestamp:   time.Now().Format(time.RFC3339),
		}
		if _, err := session.ChannelMessageSendEmbed(msg.ChannelID, embed); err != nil {
			m.logger.Warn("level-up announcement failed", zap.String("channel_id", msg.ChannelID), zap.Error(err))
		}
	}
}

func advance(level, xp, gain int) (int, int, bool) {
	xp += gain
	needed := level * 100
	if xp >= needed {
		return level + 1, xp - needed, true
	}
	return level, xp, false
}
