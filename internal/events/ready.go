// Package events provides event handlers for the bot
package events

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/sumezulike/Referee/pkg/discord"
	"github.com/sumezulike/Referee/pkg/logger"
)

// RegisterReadyEvent registers the ready event handler
func RegisterReadyEvent(client *discord.ExtendedClient) {
	client.Session.AddHandler(onReady)
}

// onReady is called when the bot successfully connects to Discord
func onReady(s *discordgo.Session, r *discordgo.Ready) {
	logger.Success(fmt.Sprintf("✅ Connected as %s", r.User.Username), "Ready")
	logger.Info(fmt.Sprintf("📊 Serving %d guilds", len(r.Guilds)), "Ready")

	if err := s.UpdateWatchStatus(0, "your warnings"); err != nil {
		logger.Error(fmt.Sprintf("Failed to set presence: %v", err), "Ready")
	}
}
