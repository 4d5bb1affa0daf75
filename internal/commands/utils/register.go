package utils

import (
	"github.com/sumezulike/Referee/pkg/discord"
	"github.com/sumezulike/Referee/pkg/warnings"
)

// engine backs the stats command
var engine *warnings.Engine

// RegisterUtilsCommands registers all utility commands as /utils subcommands
func RegisterUtilsCommands(client *discord.ExtendedClient, eng *warnings.Engine) {
	engine = eng

	pingCmd := createPingCommand()
	statusCmd := createStatusCommand()
	helpCmd := createHelpCommand()
	statsCmd := createStatsCommand()

	utilsGroup := client.CommandHandler.BuildCommandGroup(
		"utils",
		"Utility commands",
		pingCmd,
		statusCmd,
		helpCmd,
		statsCmd,
	)

	client.CommandHandler.AddGlobalCommand(utilsGroup)
}
