// Package mod - /mod clear command
package mod

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/sumezulike/Referee/pkg/discord"
	"github.com/sumezulike/Referee/pkg/errors"
	"github.com/sumezulike/Referee/pkg/logger"
)

// createClearCommand creates the /mod clear subcommand
func createClearCommand() *discord.Command {
	return discord.NewCommand(
		"clear",
		"Expire all active warnings of a user",
		"mod",
		clearHandler,
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "user",
			Description: "User to forgive",
			Required:    true,
		},
	).WithUserPermissions(discordgo.PermissionKickMembers)
}

// clearHandler handles the /mod clear command
func clearHandler(ctx *discord.CommandContext) error {
	user := ctx.GetUserOption("user")
	if user == nil {
		return ctx.ReplyEphemeral("❌ You must specify a user.")
	}

	go func() {
		defer errors.RecoverMiddleware()()

		if err := engine.Clear(context.Background(), ctx.Interaction.GuildID, user.ID); err != nil {
			logger.Error(fmt.Sprintf("Failed to clear warnings: %v", err), "CMD-Clear")
			ctx.ReplyEphemeral("❌ Failed to clear the warnings.")
			return
		}

		ctx.Reply(fmt.Sprintf("🧹 All active warnings of **%s** have been cleared.", user.Username))
	}()
	return nil
}
