package discord

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/sumezulike/Referee/pkg/logger"
	"github.com/sumezulike/Referee/pkg/warnings"
)

// ChannelNotifier posts engine output into the channel the triggering
// activity happened in.
type ChannelNotifier struct {
	client *ExtendedClient
}

// NewChannelNotifier creates a ChannelNotifier over the given client
func NewChannelNotifier(client *ExtendedClient) *ChannelNotifier {
	return &ChannelNotifier{client: client}
}

// Notify sends a plain message to a channel
func (n *ChannelNotifier) Notify(guildID, channelID, message string) {
	if channelID == "" {
		return
	}
	if _, err := n.client.Session.ChannelMessageSend(channelID, message); err != nil {
		logger.Warn(fmt.Sprintf("Failed to notify channel %s: %v", channelID, err), "Notifier")
	}
}

// RecommendPunishment posts the escalation recommendation as an embed. The
// punishment itself stays in moderator hands.
func (n *ChannelNotifier) RecommendPunishment(guildID, channelID, userID string, action warnings.Action, activeCount int) {
	if channelID == "" {
		return
	}

	embed := &discordgo.MessageEmbed{
		Title: "⚠️ Escalation",
		Color: 0xFFA500, // Orange
		Description: fmt.Sprintf(
			"<@%s> has %d active warnings.\n\n> **Recommended action:** %s",
			userID, activeCount, action,
		),
	}

	if _, err := n.client.Session.ChannelMessageSendEmbed(channelID, embed); err != nil {
		logger.Warn(fmt.Sprintf("Failed to post recommendation in channel %s: %v", channelID, err), "Notifier")
	}
}
