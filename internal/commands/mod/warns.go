// Package mod - /mod warns command
package mod

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/sumezulike/Referee/pkg/discord"
	"github.com/sumezulike/Referee/pkg/errors"
	"github.com/sumezulike/Referee/pkg/logger"
	"github.com/sumezulike/Referee/pkg/models"
)

// createWarnsCommand creates the /mod warns subcommand
func createWarnsCommand() *discord.Command {
	return discord.NewCommand(
		"warns",
		"List the warnings of a user",
		"mod",
		warnsHandler,
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "user",
			Description: "User to look up (defaults to yourself)",
			Required:    false,
		},
	)
}

func warnsHandler(ctx *discord.CommandContext) error {
	go func() {
		defer errors.RecoverMiddleware()()

		targetUser := ctx.GetUserOption("user")
		isSelf := false

		perms, err := ctx.Session.UserChannelPermissions(ctx.User().ID, ctx.Interaction.ChannelID)
		if err != nil {
			perms = 0
		}
		isModerator := (perms & discordgo.PermissionKickMembers) != 0

		if targetUser == nil {
			targetUser = ctx.User()
			isSelf = true
		}

		if !isSelf && !isModerator {
			ctx.ReplyEphemeral("❌ You are not allowed to view another user's warnings.")
			return
		}

		all, active, err := engine.Warnings(context.Background(), targetUser.ID)
		if err != nil {
			logger.Error(fmt.Sprintf("Failed to list warnings: %v", err), "CMD-Warns")
			ctx.ReplyEphemeral("❌ Failed to look up the warnings.")
			return
		}

		if len(all) == 0 {
			ctx.ReplyEphemeralEmbed(&discordgo.MessageEmbed{
				Title:       fmt.Sprintf("🔖 Warnings of %s", targetUser.Username),
				Color:       0x00FF00, // Green
				Description: fmt.Sprintf("No warnings on record.\n\n> 🕒 **Looked up:** <t:%d>", time.Now().Unix()),
			})
			return
		}

		activeIDs := make(map[string]bool, len(active))
		for _, w := range active {
			activeIDs[w.ID] = true
		}
		var expired []*models.Warning
		for _, w := range all {
			if !activeIDs[w.ID] {
				expired = append(expired, w)
			}
		}

		description := ""
		if len(active) > 0 {
			description += "**Active**\n"
			for _, w := range active {
				description += formatWarning(w, isModerator)
			}
		}
		if len(expired) > 0 {
			description += "**Expired**\n"
			for _, w := range expired {
				description += formatWarning(w, isModerator)
			}
		}
		description += fmt.Sprintf("> 💫 **Total:** %d (%d active)\n> 🕒 **Looked up:** <t:%d>",
			len(all), len(active), time.Now().Unix())

		ctx.ReplyEphemeralEmbed(&discordgo.MessageEmbed{
			Title:       fmt.Sprintf("🔖 Warnings of %s (%s)", targetUser.Username, targetUser.ID),
			Color:       0xFFA500, // Orange
			Description: description,
		})
	}()
	return nil
}

// formatWarning renders one warning as embed lines. Moderator names are only
// shown to moderators.
func formatWarning(w *models.Warning, isModerator bool) string {
	reason := w.Reason
	if reason == "" {
		reason = "No reason given"
	}

	line := fmt.Sprintf("> **Reason:** %s\n> **Issued:** %s\n> **Expires:** %s\n",
		reason, w.TimestampString(), w.ExpirationString())

	if isModerator {
		modName := w.ModName
		if modName == "" {
			modName = "Unknown"
		}
		line += fmt.Sprintf("> **Moderator:** %s\n", modName)
	}
	return line + "\n"
}
