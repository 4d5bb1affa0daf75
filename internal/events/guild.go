// Package events provides event handlers for guild (server) events
package events

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/sumezulike/Referee/pkg/discord"
	"github.com/sumezulike/Referee/pkg/logger"
)

// RegisterGuildEvents registers all guild-related event handlers
func RegisterGuildEvents(client *discord.ExtendedClient) {
	client.Session.AddHandler(onGuildCreate)
	client.Session.AddHandler(onGuildDelete)
}

// onGuildCreate is called when the bot joins a server
func onGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	// GuildCreate also fires for every known guild on connect; only greet
	// guilds the bot actually just joined.
	if g.JoinedAt.Compare(time.Now().Add(-10*time.Second)) < 0 {
		return
	}

	logger.Info(fmt.Sprintf("➕ Joined guild: %s (ID: %s)", g.Name, g.ID), "Guild")
	logger.Debug(fmt.Sprintf("   Members: %d | Channels: %d", g.MemberCount, len(g.Channels)), "Guild")

	if g.SystemChannelID != "" {
		welcomeEmbed := &discordgo.MessageEmbed{
			Title:       "Thanks for adding me! 🎉",
			Description: "Hi, I'm **Referee**. I keep track of warnings and the Warned role.",
			Color:       0x00ff00,
			Fields: []*discordgo.MessageEmbedField{
				{
					Name:   "⚠️ Warnings",
					Value:  "Warn users with `/mod warn`",
					Inline: true,
				},
				{
					Name:   "🔖 History",
					Value:  "Look up warnings with `/mod warns`",
					Inline: true,
				},
				{
					Name:   "❓ Help",
					Value:  "Use `/utils help` for more",
					Inline: true,
				},
			},
			Timestamp: time.Now().Format(time.RFC3339),
		}

		_, err := s.ChannelMessageSendEmbed(g.SystemChannelID, welcomeEmbed)
		if err != nil {
			logger.Error(fmt.Sprintf("Failed to send welcome message: %v", err), "Guild")
		}
	}
}

// onGuildDelete is called when the bot is removed from a server
func onGuildDelete(s *discordgo.Session, g *discordgo.GuildDelete) {
	logger.Info(fmt.Sprintf("➖ Removed from guild ID: %s", g.ID), "Guild")
}
