package bot

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
)

// sessionGateway adapts the discordgo session to the monitor's gateway
// contract. Resolution goes through the session state cache, matching how the
// rest of the bot looks up guilds and channels.
type sessionGateway struct {
	session *discordgo.Session
	color   int
}

func (g *sessionGateway) ResolveGuild(guildID string) bool {
	_, err := g.session.State.Guild(guildID)
	return err == nil
}

func (g *sessionGateway) ResolveChannel(guildID, channelID string) bool {
	channel, err := g.session.State.Channel(channelID)
	if err != nil {
		return false
	}
	return channel.GuildID == guildID
}

func (g *sessionGateway) SendPrompt(channelID, prompt string) error {
	embed := &discordgo.MessageEmbed{
		Title:       "Conversation Breaker",
		Description: fmt.Sprintf("It's been quiet for a while...\n\n**Question:** %s\n\nReply to restart the timer!", prompt),
		Color:       g.color,
		Footer:      &discordgo.MessageEmbedFooter{Text: "Auron Chat Monitor • Keeping the vibes alive"},
		Timestamp:   time.Now().Format(time.RFC3339),
	}
	_, err := g.session.ChannelMessageSendEmbed(channelID, embed)
	return err
}
