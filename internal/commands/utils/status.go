package utils

import (
	"fmt"

	"github.com/sumezulike/Referee/pkg/database"
	"github.com/sumezulike/Referee/pkg/discord"
	"github.com/sumezulike/Referee/pkg/errors"
)

// createStatusCommand creates the /utils status subcommand
func createStatusCommand() *discord.Command {
	return discord.NewCommand(
		"status",
		"Show the bot's status",
		"utils",
		statusHandler,
	)
}

// statusHandler handles the /utils status command
func statusHandler(ctx *discord.CommandContext) error {
	go func() {
		defer errors.RecoverMiddleware()()

		dbStatus := "Not configured"
		if db := database.Get(); db != nil {
			dbStatus, _ = db.GetStatus()
		}

		ctx.Reply(fmt.Sprintf(
			"📊 **Bot status**\n"+
				"• Bot: 🟢 Online\n"+
				"• Database: %s\n"+
				"• Guilds: %d",
			dbStatus,
			ctx.Client.GuildCount(),
		))
	}()
	return nil
}
