package bot

import (
	"context"
	"fmt"
	"time"

	"auron-bot/internal/config"
	"auron-bot/internal/modules/afk"
	"auron-bot/internal/modules/antispam"
	"auron-bot/internal/modules/blacklist"
	"auron-bot/internal/modules/economy"
	"auron-bot/internal/modules/leveling"
	"auron-bot/internal/modules/modlog"
	"auron-bot/internal/monitor"
	"auron-bot/internal/storage"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

type Bot struct {
	cfg       config.Config
	logger    *zap.Logger
	store     *storage.Store
	session   *discordgo.Session
	modlog    *modlog.Logger
	recorder  *monitor.Recorder
	evaluator *monitor.Evaluator
	afk       *afk.Module
	leveling  *leveling.Module
	economy   *economy.Module
	antispam  *antispam.Module
	blacklist *blacklist.Module
}

func New(cfg config.Config, logger *zap.Logger, store *storage.Store, modLogger *modlog.Logger) (*Bot, error) {
	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, err
	}

	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsMessageContent

	b := &Bot{
		cfg:     cfg,
		logger:  logger,
		store:   store,
		session: session,
		modlog:  modLogger,
	}

	b.afk = afk.New(store, logger)
	b.leveling = leveling.New(store, cfg.EmbedColors.Accent, logger)
	b.economy = economy.New(store, cfg.Economy, logger)
	b.antispam = antispam.New(cfg.Thresholds, modLogger, logger)
	b.blacklist = blacklist.New(store, modLogger, cfg.EmbedColors.Error, logger)

	b.recorder = monitor.NewRecorder(store, logger)
	gateway := &sessionGateway{session: session, color: cfg.EmbedColors.Accent}
	b.evaluator = monitor.NewEvaluator(store, gateway, logger)

	modLogger.SetNotifier(b.notifyModeration)

	return b, nil
}

func (b *Bot) Start() error {
	b.session.AddHandler(b.onReady)
	b.session.AddHandler(b.onMessageCreate)
	b.session.AddHandler(b.onInteractionCreate)

	if err := b.session.Open(); err != nil {
		return err
	}

	if err := b.registerCommands(); err != nil {
		return err
	}

	if err := b.evaluator.Start(b.cfg.Monitor.IntervalSeconds); err != nil {
		return err
	}

	return nil
}

func (b *Bot) Close(ctx context.Context) {
	_ = ctx
	b.evaluator.Stop()
	if b.session != nil {
		_ = b.session.Close()
	}
}

func (b *Bot) onReady(session *discordgo.Session, event *discordgo.Ready) {
	if err := session.UpdateGameStatus(0, b.cfg.Presence); err != nil {
		b.logger.Warn("presence update failed", zap.Error(err))
	}
	b.logger.Info("discord ready", zap.String("user", session.State.User.Username))
}

// onMessageCreate runs the per-message pipeline. Each step swallows its own
// failures, so a broken step never starves the ones after it, and the
// activity recorder runs for every message no matter what the moderation
// steps decided.
func (b *Bot) onMessageCreate(session *discordgo.Session, msg *discordgo.MessageCreate) {
	if msg.Author == nil || msg.Author.Bot {
		return
	}
	if msg.GuildID == "" {
		return
	}

	ctx := context.Background()

	b.afk.HandleMessage(ctx, session, msg)
	b.leveling.HandleMessage(ctx, session, msg)
	b.economy.HandleMessage(ctx, msg.GuildID, msg.Author.ID)

	if !b.antispam.HandleMessage(ctx, session, msg) {
		b.blacklist.HandleMessage(ctx, session, msg)
	}

	b.recorder.Record(ctx, msg.GuildID, msg.ChannelID)
}

func (b *Bot) notifyModeration(ctx context.Context, entry storage.ModerationLog) {
	settings := b.guildSettings(ctx, entry.GuildID)
	channelID := settings.ModLogChannel
	if channelID == "" {
		channelID = b.cfg.DefaultModLogChannel
	}
	if channelID == "" {
		return
	}

	description := fmt.Sprintf("**User:** <@%s>\n**Reason:** %s", entry.UserID, entry.Reason)
	if entry.DurationMinutes > 0 {
		description += fmt.Sprintf("\n**Action:** %s for %d minutes", entry.ActionType, entry.DurationMinutes)
	} else {
		description += "\n**Action:** " + entry.ActionType
	}

	embed := &discordgo.MessageEmbed{
		Title:       "Moderation Action",
		Description: description,
		Color:       b.cfg.EmbedColors.Warning,
		Timestamp:   time.Now().Format(time.RFC3339),
	}
	if _, err := b.session.ChannelMessageSendEmbed(channelID, embed); err != nil {
		b.logger.Warn("mod log notify failed", zap.String("channel_id", channelID), zap.Error(err))
	}
}

func (b *Bot) guildSettings(ctx context.Context, guildID string) storage.GuildSettings {
	defaults := storage.GuildSettings{
		GuildID:       guildID,
		ModLogChannel: b.cfg.DefaultModLogChannel,
	}
	settings, err := b.store.GetGuildSettings(ctx, guildID, defaults)
	if err != nil {
		b.logger.Warn("guild settings lookup failed", zap.String("guild_id", guildID), zap.Error(err))
		return defaults
	}
	return settings
}
