// Package mod - /mod active command
package mod

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/sumezulike/Referee/pkg/discord"
	"github.com/sumezulike/Referee/pkg/errors"
	"github.com/sumezulike/Referee/pkg/logger"
)

// createActiveCommand creates the /mod active subcommand
func createActiveCommand() *discord.Command {
	return discord.NewCommand(
		"active",
		"List all users with active warnings",
		"mod",
		activeHandler,
	).WithUserPermissions(discordgo.PermissionKickMembers)
}

// formatActiveLine renders one user's entry in the active warnings list
func formatActiveLine(userID string, count int) string {
	return fmt.Sprintf("> <@%s>: %d active\n", userID, count)
}

func activeHandler(ctx *discord.CommandContext) error {
	go func() {
		defer errors.RecoverMiddleware()()

		active, err := engine.ActiveWarnings(context.Background())
		if err != nil {
			logger.Error(fmt.Sprintf("Failed to list active warnings: %v", err), "CMD-Active")
			ctx.ReplyEphemeral("❌ Failed to look up active warnings.")
			return
		}

		if len(active) == 0 {
			ctx.ReplyEphemeralEmbed(&discordgo.MessageEmbed{
				Title:       "🔖 Active warnings",
				Color:       0x00FF00, // Green
				Description: "Nobody has an active warning right now.",
			})
			return
		}

		userIDs := make([]string, 0, len(active))
		for userID := range active {
			userIDs = append(userIDs, userID)
		}
		// Worst offenders first
		sort.Slice(userIDs, func(i, j int) bool {
			if len(active[userIDs[i]]) != len(active[userIDs[j]]) {
				return len(active[userIDs[i]]) > len(active[userIDs[j]])
			}
			return userIDs[i] < userIDs[j]
		})

		description := ""
		for _, userID := range userIDs {
			description += formatActiveLine(userID, len(active[userID]))
		}
		description += fmt.Sprintf("\n> 🕒 **Looked up:** <t:%d>", time.Now().Unix())

		ctx.ReplyEphemeralEmbed(&discordgo.MessageEmbed{
			Title:       "🔖 Active warnings",
			Color:       0xFFA500, // Orange
			Description: description,
		})
	}()
	return nil
}
