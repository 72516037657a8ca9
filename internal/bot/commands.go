package bot

import "github.com/bwmarrin/discordgo"

func (b *Bot) registerCommands() error {
	manageGuild := int64(discordgo.PermissionManageServer)
	minTimeout := float64(5)

	commands := []*discordgo.ApplicationCommand{
		{
			Name:                     "monitor",
			Description:              "Start monitoring a channel for inactivity",
			DefaultMemberPermissions: &manageGuild,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionChannel,
					Name:        "channel",
					Description: "The channel to monitor",
					Required:    true,
				},
			},
		},
		{
			Name:                     "monitor-stop",
			Description:              "Stop monitoring a channel",
			DefaultMemberPermissions: &manageGuild,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionChannel,
					Name:        "channel",
					Description: "The channel to stop monitoring",
					Required:    true,
				},
			},
		},
		{
			Name:        "monitor-list",
			Description: "List all monitored channels",
		},
		{
			Name:                     "inactivity-timer",
			Description:              "Manage inactivity timer settings",
			DefaultMemberPermissions: &manageGuild,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "set",
					Description: "Set the inactivity timer in minutes",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "minutes",
							Description: "Time in minutes (5-120)",
							Required:    true,
							MinValue:    &minTimeout,
							MaxValue:    120,
						},
					},
				},
			},
		},
		{
			Name:        "afk",
			Description: "Set your AFK status",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "reason",
					Description: "Why you are away",
					Required:    false,
				},
			},
		},
		{
			Name:        "level",
			Description: "Show your level and XP",
		},
		{
			Name:        "balance",
			Description: "Show your coin balance",
		},
		{
			Name:                     "blacklist",
			Description:              "Manage blacklisted words and domains",
			DefaultMemberPermissions: &manageGuild,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "action",
					Description: "add, remove, or list",
					Required:    true,
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "add", Value: "add"},
						{Name: "remove", Value: "remove"},
						{Name: "list", Value: "list"},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "entry",
					Description: "Word or domain",
					Required:    false,
				},
			},
		},
		{
			Name:                     "modlog-channel",
			Description:              "Set the moderation log channel",
			DefaultMemberPermissions: &manageGuild,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionChannel,
					Name:        "channel",
					Description: "Where moderation actions are posted",
					Required:    true,
				},
			},
		},
	}

	appID := b.session.State.User.ID
	for _, command := range commands {
		if _, err := b.session.ApplicationCommandCreate(appID, "", command); err != nil {
			return err
		}
	}
	return nil
}
