package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"auron-bot/internal/monitor"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

func (b *Bot) onInteractionCreate(session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	if interaction.Type != discordgo.InteractionApplicationCommand {
		return
	}

	ctx := context.Background()
	data := interaction.ApplicationCommandData()

	if interaction.GuildID == "" {
		b.respondEmbed(session, interaction, b.commandEmbed("Auron", "This command only works in a server.", b.cfg.EmbedColors.Error, nil), true)
		return
	}

	switch data.Name {
	case "monitor":
		b.handleMonitor(ctx, session, interaction, data.Options)
	case "monitor-stop":
		b.handleMonitorStop(ctx, session, interaction, data.Options)
	case "monitor-list":
		b.handleMonitorList(ctx, session, interaction)
	case "inactivity-timer":
		b.handleInactivityTimer(ctx, session, interaction, data.Options)
	case "afk":
		b.handleAFK(ctx, session, interaction, data.Options)
	case "level":
		b.handleLevel(ctx, session, interaction)
	case "balance":
		b.handleBalance(ctx, session, interaction)
	case "blacklist":
		b.handleBlacklist(ctx, session, interaction, data.Options)
	case "modlog-channel":
		b.handleModLogChannel(ctx, session, interaction, data.Options)
	}
}

func (b *Bot) handleMonitor(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	if len(options) == 0 {
		b.respondEmbed(session, interaction, b.commandEmbed("Auron Monitor System", "A channel is required.", b.cfg.EmbedColors.Error, nil), true)
		return
	}
	channel := options[0].ChannelValue(session)
	if channel == nil {
		b.respondEmbed(session, interaction, b.commandEmbed("Auron Monitor System", "Channel could not be resolved.", b.cfg.EmbedColors.Error, nil), true)
		return
	}
	if channel.Type != discordgo.ChannelTypeGuildText && channel.Type != discordgo.ChannelTypeGuildNews {
		b.respondEmbed(session, interaction, b.commandEmbed("Auron Monitor System", "Please select a text channel.", b.cfg.EmbedColors.Error, nil), true)
		return
	}

	if err := b.store.UpsertMonitoredChannel(ctx, interaction.GuildID, channel.ID); err != nil {
		b.logger.Warn("monitor start failed", zap.String("channel_id", channel.ID), zap.Error(err))
		b.respondEmbed(session, interaction, b.commandEmbed("Auron Monitor System", "Failed to start monitoring.", b.cfg.EmbedColors.Error, nil), true)
		return
	}

	timeout := monitor.DefaultTimeoutMinutes
	if policy, err := b.store.GetPolicy(ctx, interaction.GuildID); err == nil {
		timeout = monitor.ResolveTimeout(policy)
	}
	description := fmt.Sprintf("Now monitoring <#%s>.\nI'll send a random question if this chat stays silent for %d minutes.", channel.ID, timeout)
	b.logger.Info("monitoring started", zap.String("guild_id", interaction.GuildID), zap.String("channel_id", channel.ID))
	b.respondEmbed(session, interaction, b.commandEmbed("Auron Monitor System", description, b.cfg.EmbedColors.Accent, nil), false)
}

func (b *Bot) handleMonitorStop(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	if len(options) == 0 {
		b.respondEmbed(session, interaction, b.commandEmbed("Auron Monitor System", "A channel is required.", b.cfg.EmbedColors.Error, nil), true)
		return
	}
	channel := options[0].ChannelValue(session)
	if channel == nil {
		b.respondEmbed(session, interaction, b.commandEmbed("Auron Monitor System", "Channel could not be resolved.", b.cfg.EmbedColors.Error, nil), true)
		return
	}

	if err := b.store.DeactivateMonitoredChannel(ctx, interaction.GuildID, channel.ID); err != nil {
		b.logger.Warn("monitor stop failed", zap.String("channel_id", channel.ID), zap.Error(err))
		b.respondEmbed(session, interaction, b.commandEmbed("Auron Monitor System", "Failed to stop monitoring.", b.cfg.EmbedColors.Error, nil), true)
		return
	}

	b.logger.Info("monitoring stopped", zap.String("guild_id", interaction.GuildID), zap.String("channel_id", channel.ID))
	b.respondEmbed(session, interaction, b.commandEmbed("Auron Monitor System", fmt.Sprintf("Stopped monitoring <#%s>.", channel.ID), b.cfg.EmbedColors.Accent, nil), false)
}

func (b *Bot) handleMonitorList(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	channels, err := b.store.ListGuildChannels(ctx, interaction.GuildID)
	if err != nil {
		b.logger.Warn("monitor list failed", zap.String("guild_id", interaction.GuildID), zap.Error(err))
		b.respondEmbed(session, interaction, b.commandEmbed("Monitored Channels", "Failed to fetch monitored channels.", b.cfg.EmbedColors.Error, nil), true)
		return
	}

	if len(channels) == 0 {
		b.respondEmbed(session, interaction, b.commandEmbed("Monitored Channels", "No channels are currently being monitored.", b.cfg.EmbedColors.Accent, nil), false)
		return
	}

	var builder strings.Builder
	for i, channel := range channels {
		fmt.Fprintf(&builder, "%d. <#%s> • last active %s\n", i+1, channel.ChannelID, formatAgo(time.Since(channel.LastActive)))
	}
	b.respondEmbed(session, interaction, b.commandEmbed("Monitored Channels", builder.String(), b.cfg.EmbedColors.Accent, nil), false)
}

func (b *Bot) handleInactivityTimer(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	if len(options) == 0 || options[0].Name != "set" || len(options[0].Options) == 0 {
		b.respondEmbed(session, interaction, b.commandEmbed("Auron Monitor Settings", "Unknown subcommand.", b.cfg.EmbedColors.Error, nil), true)
		return
	}

	minutes := int(options[0].Options[0].IntValue())
	// Write-side validation is the only place the [5,120] bound is enforced.
	if minutes < 5 {
		b.respondEmbed(session, interaction, b.commandEmbed("Auron Monitor Settings", "Minimum time is 5 minutes.", b.cfg.EmbedColors.Error, nil), true)
		return
	}
	if minutes > 120 {
		b.respondEmbed(session, interaction, b.commandEmbed("Auron Monitor Settings", "Maximum time is 120 minutes.", b.cfg.EmbedColors.Error, nil), true)
		return
	}

	if err := b.store.UpsertInactivityPolicy(ctx, interaction.GuildID, minutes); err != nil {
		b.logger.Warn("inactivity timer update failed", zap.String("guild_id", interaction.GuildID), zap.Error(err))
		b.respondEmbed(session, interaction, b.commandEmbed("Auron Monitor Settings", "Failed to update timer.", b.cfg.EmbedColors.Error, nil), true)
		return
	}

	b.logger.Info("inactivity timer updated", zap.String("guild_id", interaction.GuildID), zap.Int("minutes", minutes))
	b.respondEmbed(session, interaction, b.commandEmbed("Auron Monitor Settings", fmt.Sprintf("Inactivity timer updated to **%d minutes** for this server.", minutes), b.cfg.EmbedColors.Accent, nil), false)
}

func (b *Bot) handleAFK(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	userID := interactionUserID(interaction)
	if userID == "" {
		b.respondEmbed(session, interaction, b.commandEmbed("AFK", "Could not resolve your user.", b.cfg.EmbedColors.Error, nil), true)
		return
	}

	reason := "AFK"
	if len(options) > 0 {
		reason = options[0].StringValue()
	}

	if err := b.store.SetAFK(ctx, interaction.GuildID, userID, reason); err != nil {
		b.logger.Warn("afk set failed", zap.String("user_id", userID), zap.Error(err))
		b.respondEmbed(session, interaction, b.commandEmbed("AFK", "Failed to set AFK status.", b.cfg.EmbedColors.Error, nil), true)
		return
	}
	b.respondEmbed(session, interaction, b.commandEmbed("AFK", fmt.Sprintf("You are now AFK: %s", reason), b.cfg.EmbedColors.Accent, nil), true)
}

func (b *Bot) handleLevel(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	userID := interactionUserID(interaction)
	level, err := b.store.GetUserLevel(ctx, interaction.GuildID, userID)
	if err != nil {
		b.logger.Warn("level lookup failed", zap.String("user_id", userID), zap.Error(err))
		b.respondEmbed(session, interaction, b.commandEmbed("Level", "Failed to fetch your level.", b.cfg.EmbedColors.Error, nil), true)
		return
	}

	fields := []*discordgo.MessageEmbedField{
		{Name: "Level", Value: fmt.Sprintf("%d", level.Level), Inline: true},
		{Name: "XP", Value: fmt.Sprintf("%d / %d", level.XP, level.Level*100), Inline: true},
		{Name: "Messages", Value: fmt.Sprintf("%d", level.TotalMessages), Inline: true},
	}
	b.respondEmbed(session, interaction, b.commandEmbed("Level", fmt.Sprintf("Stats for <@%s>", userID), b.cfg.EmbedColors.Accent, fields), true)
}

func (b *Bot) handleBalance(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	userID := interactionUserID(interaction)
	balance, err := b.store.GetBalance(ctx, interaction.GuildID, userID)
	if err != nil {
		b.logger.Warn("balance lookup failed", zap.String("user_id", userID), zap.Error(err))
		b.respondEmbed(session, interaction, b.commandEmbed("Balance", "Failed to fetch your balance.", b.cfg.EmbedColors.Error, nil), true)
		return
	}
	b.respondEmbed(session, interaction, b.commandEmbed("Balance", fmt.Sprintf("<@%s> has **%d coins**.", userID, balance), b.cfg.EmbedColors.Accent, nil), true)
}

func (b *Bot) handleBlacklist(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	if len(options) == 0 {
		b.respondEmbed(session, interaction, b.commandEmbed("Blacklist", "An action is required.", b.cfg.EmbedColors.Error, nil), true)
		return
	}
	action := options[0].StringValue()
	entry := ""
	if len(options) > 1 {
		entry = strings.ToLower(strings.TrimSpace(options[1].StringValue()))
	}

	switch action {
	case "add":
		if entry == "" {
			b.respondEmbed(session, interaction, b.commandEmbed("Blacklist", "An entry is required.", b.cfg.EmbedColors.Error, nil), true)
			return
		}
		if err := b.store.AddBlacklistEntry(ctx, interaction.GuildID, entry); err != nil {
			b.respondEmbed(session, interaction, b.commandEmbed("Blacklist", "Failed to add entry.", b.cfg.EmbedColors.Error, nil), true)
			return
		}
		b.respondEmbed(session, interaction, b.commandEmbed("Blacklist", fmt.Sprintf("Added `%s` to the blacklist.", entry), b.cfg.EmbedColors.Accent, nil), true)
	case "remove":
		if entry == "" {
			b.respondEmbed(session, interaction, b.commandEmbed("Blacklist", "An entry is required.", b.cfg.EmbedColors.Error, nil), true)
			return
		}
		if err := b.store.RemoveBlacklistEntry(ctx, interaction.GuildID, entry); err != nil {
			b.respondEmbed(session, interaction, b.commandEmbed("Blacklist", "Failed to remove entry.", b.cfg.EmbedColors.Error, nil), true)
			return
		}
		b.respondEmbed(session, interaction, b.commandEmbed("Blacklist", fmt.Sprintf("Removed `%s` from the blacklist.", entry), b.cfg.EmbedColors.Accent, nil), true)
	case "list":
		entries, err := b.store.ListBlacklistEntries(ctx, interaction.GuildID)
		if err != nil {
			b.respondEmbed(session, interaction, b.commandEmbed("Blacklist", "Failed to fetch the blacklist.", b.cfg.EmbedColors.Error, nil), true)
			return
		}
		if len(entries) == 0 {
			b.respondEmbed(session, interaction, b.commandEmbed("Blacklist", "The blacklist is empty.", b.cfg.EmbedColors.Warning, nil), true)
			return
		}
		b.respondEmbed(session, interaction, b.commandEmbed("Blacklist", strings.Join(entries, "\n"), b.cfg.EmbedColors.Accent, nil), true)
	default:
		b.respondEmbed(session, interaction, b.commandEmbed("Blacklist", "Unknown action.", b.cfg.EmbedColors.Error, nil), true)
	}
}

func (b *Bot) handleModLogChannel(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	if len(options) == 0 {
		b.respondEmbed(session, interaction, b.commandEmbed("Moderation Log", "A channel is required.", b.cfg.EmbedColors.Error, nil), true)
		return
	}
	channel := options[0].ChannelValue(session)
	if channel == nil {
		b.respondEmbed(session, interaction, b.commandEmbed("Moderation Log", "Channel could not be resolved.", b.cfg.EmbedColors.Error, nil), true)
		return
	}

	settings := b.guildSettings(ctx, interaction.GuildID)
	settings.ModLogChannel = channel.ID
	if err := b.store.UpsertGuildSettings(ctx, settings); err != nil {
		b.logger.Warn("mod log channel update failed", zap.String("guild_id", interaction.GuildID), zap.Error(err))
		b.respondEmbed(session, interaction, b.commandEmbed("Moderation Log", "Failed to update the channel.", b.cfg.EmbedColors.Error, nil), true)
		return
	}
	b.respondEmbed(session, interaction, b.commandEmbed("Moderation Log", fmt.Sprintf("Moderation actions will be posted in <#%s>.", channel.ID), b.cfg.EmbedColors.Accent, nil), true)
}

func (b *Bot) commandEmbed(title, description string, color int, fields []*discordgo.MessageEmbedField) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       title,
		Description: description,
		Color:       color,
		Timestamp:   time.Now().Format(time.RFC3339),
		Fields:      fields,
	}
}

func (b *Bot) respondEmbed(session *discordgo.Session, interaction *discordgo.InteractionCreate, embed *discordgo.MessageEmbed, ephemeral bool) {
	flags := discordgo.MessageFlags(0)
	if ephemeral {
		flags = discordgo.MessageFlagsEphemeral
	}
	err := session.InteractionRespond(interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
			Flags:  flags,
		},
	})
	if err != nil {
		b.logger.Warn("interaction respond failed", zap.Error(err))
	}
}

func interactionUserID(interaction *discordgo.InteractionCreate) string {
	if interaction.Member != nil && interaction.Member.User != nil {
		return interaction.Member.User.ID
	}
	if interaction.User != nil {
		return interaction.User.ID
	}
	return ""
}

func formatAgo(elapsed time.Duration) string {
	minutes := int(elapsed.Minutes())
	if minutes < 60 {
		return fmt.Sprintf("%dm ago", minutes)
	}
	return fmt.Sprintf("%dh ago", minutes/60)
}
