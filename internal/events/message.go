// Package events provides event handlers for message events
package events

import (
	"context"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/sumezulike/Referee/pkg/config"
	"github.com/sumezulike/Referee/pkg/discord"
	"github.com/sumezulike/Referee/pkg/errors"
)

// RegisterMessageEvents registers all message-related event handlers
func RegisterMessageEvents(client *discord.ExtendedClient) {
	client.Session.AddHandler(onMessageCreate)
}

// onMessageCreate feeds the warning engine from the message stream: the
// announcer bot's messages are parsed into warning records, and a moderator's
// prose "?warn" command is remembered for attribution, because the announcer
// never says who issued the warning.
func onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.GuildID == "" {
		return
	}

	cfg := config.Get()

	if m.Author.ID == cfg.AnnouncerID {
		go func() {
			defer errors.RecoverMiddleware()()
			engine.HandleAnnouncement(context.Background(), m.GuildID, m.ChannelID, m.Author.ID, m.Content)
		}()
		return
	}

	if m.Author.Bot {
		return
	}

	if strings.HasPrefix(m.Content, "?warn ") && isModerator(s, m) {
		engine.NoteModeratorWarn(m.GuildID, moderatorName(m))
	}
}

// isModerator reports whether the message author can issue warnings
func isModerator(s *discordgo.Session, m *discordgo.MessageCreate) bool {
	perms, err := s.UserChannelPermissions(m.Author.ID, m.ChannelID)
	if err != nil {
		return false
	}
	return perms&discordgo.PermissionKickMembers != 0
}

// moderatorName returns the name the moderator is known by in the guild
func moderatorName(m *discordgo.MessageCreate) string {
	if m.Member != nil && m.Member.Nick != "" {
		return m.Member.Nick
	}
	return m.Author.Username
}
