// Package events provides event handlers for member events
package events

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/sumezulike/Referee/pkg/discord"
	"github.com/sumezulike/Referee/pkg/errors"
	"github.com/sumezulike/Referee/pkg/logger"
)

// RegisterMemberEvents registers all member-related event handlers
func RegisterMemberEvents(client *discord.ExtendedClient) {
	client.Session.AddHandler(onGuildMemberAdd)
	client.Session.AddHandler(onGuildMemberRemove)
}

// onGuildMemberAdd is called when a member joins the server. Rejoining with
// active warnings must not shed the marker role, so the member is reconciled
// right away.
func onGuildMemberAdd(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
	logger.Info(fmt.Sprintf("👋 Member joined: %s in guild %s", m.User.Username, m.GuildID), "Member")

	go func() {
		defer errors.RecoverMiddleware()()
		engine.MemberJoined(context.Background(), m.GuildID, m.User.ID)
	}()
}

// onGuildMemberRemove is called when a member leaves the server
func onGuildMemberRemove(s *discordgo.Session, m *discordgo.GuildMemberRemove) {
	logger.Debug(fmt.Sprintf("👋 Member left: %s from guild %s", m.User.Username, m.GuildID), "Member")
}
