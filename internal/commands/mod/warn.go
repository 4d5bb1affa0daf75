// Package mod - /mod warn command
package mod

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/sumezulike/Referee/pkg/discord"
	"github.com/sumezulike/Referee/pkg/errors"
	"github.com/sumezulike/Referee/pkg/logger"
)

// createWarnCommand creates the /mod warn subcommand
func createWarnCommand() *discord.Command {
	return discord.NewCommand(
		"warn",
		"Warn a user",
		"mod",
		warnHandler,
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "user",
			Description: "User to warn",
			Required:    true,
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "reason",
			Description: "Reason for the warning",
			Required:    false,
		},
	).WithUserPermissions(discordgo.PermissionKickMembers)
}

// warnHandler handles the /mod warn command
func warnHandler(ctx *discord.CommandContext) error {
	user := ctx.GetUserOption("user")
	if user == nil {
		return ctx.ReplyEphemeral("❌ You must specify a user.")
	}
	reason := ctx.GetStringOption("reason")

	go func() {
		defer errors.RecoverMiddleware()()

		displayName := user.Username
		if member, err := ctx.Session.State.Member(ctx.Interaction.GuildID, user.ID); err == nil && member.Nick != "" {
			displayName = member.Nick
		}

		w, err := engine.Warn(
			context.Background(),
			ctx.Interaction.GuildID,
			ctx.Interaction.ChannelID,
			user.ID,
			displayName,
			reason,
			ctx.User().Username,
		)
		if err != nil {
			logger.Error(fmt.Sprintf("Failed to record warning: %v", err), "CMD-Warn")
			ctx.ReplyEphemeral("❌ Failed to record the warning.")
			return
		}

		msg := fmt.Sprintf("⚠️ **%s** has been warned.", displayName)
		if reason != "" {
			msg += fmt.Sprintf("\n**Reason:** %s", reason)
		}
		msg += fmt.Sprintf("\n**Expires:** %s", w.ExpirationString())
		ctx.Reply(msg)
	}()
	return nil
}
