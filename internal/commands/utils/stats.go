package utils

import (
	"context"
	"fmt"
	"time"

	"github.com/sumezulike/Referee/pkg/discord"
	"github.com/sumezulike/Referee/pkg/errors"
	"github.com/sumezulike/Referee/pkg/logger"
)

// createStatsCommand creates the /utils stats subcommand
func createStatsCommand() *discord.Command {
	return discord.NewCommand(
		"stats",
		"Show warning statistics",
		"utils",
		statsHandler,
	)
}

// statsHandler handles the /utils stats command
func statsHandler(ctx *discord.CommandContext) error {
	go func() {
		defer errors.RecoverMiddleware()()

		active, err := engine.ActiveWarnings(context.Background())
		if err != nil {
			logger.Error(fmt.Sprintf("Failed to gather stats: %v", err), "CMD-Stats")
			ctx.ReplyEphemeral("❌ Failed to gather statistics.")
			return
		}

		total := 0
		for _, list := range active {
			total += len(list)
		}

		uptime := time.Since(ctx.Client.StartTime).Round(time.Second)

		ctx.Reply(fmt.Sprintf(
			"📈 **Statistics**\n"+
				"• Uptime: %s\n"+
				"• Guilds: %d\n"+
				"• Users with active warnings: %d\n"+
				"• Active warnings: %d",
			uptime,
			ctx.Client.GuildCount(),
			len(active),
			total,
		))
	}()
	return nil
}
