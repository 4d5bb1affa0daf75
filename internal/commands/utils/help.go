package utils

import (
	"github.com/sumezulike/Referee/pkg/discord"
	"github.com/sumezulike/Referee/pkg/errors"
)

// createHelpCommand creates the /utils help subcommand
func createHelpCommand() *discord.Command {
	return discord.NewCommand(
		"help",
		"Show help information",
		"utils",
		helpHandler,
	)
}

// helpHandler handles the /utils help command
func helpHandler(ctx *discord.CommandContext) error {
	go func() {
		defer errors.RecoverMiddleware()()
		ctx.Reply(
			"📖 **Referee help**\n\n" +
				"**Moderation:**\n" +
				"• `/mod warn <user> [reason]` - Warn a user\n" +
				"• `/mod clear <user>` - Expire all active warnings of a user\n" +
				"• `/mod warns [user]` - List a user's warnings\n" +
				"• `/mod active` - List all users with active warnings\n" +
				"• `/mod mute <user> <duration>` - Time a user out\n\n" +
				"**Utility:**\n" +
				"• `/utils ping` - Check the latency\n" +
				"• `/utils status` - Bot status\n" +
				"• `/utils stats` - Warning statistics",
		)
	}()
	return nil
}
