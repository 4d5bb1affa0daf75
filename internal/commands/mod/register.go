// Package mod provides moderation commands organized as subcommands under /mod
// Each command is in its own file for better organization
package mod

import (
	"github.com/sumezulike/Referee/pkg/discord"
	"github.com/sumezulike/Referee/pkg/warnings"
)

// engine is the warning engine all moderation commands operate on
var engine *warnings.Engine

// RegisterModCommands registers all moderation commands as /mod subcommands
func RegisterModCommands(client *discord.ExtendedClient, eng *warnings.Engine) {
	engine = eng

	warnCmd := createWarnCommand()
	clearCmd := createClearCommand()
	warnsCmd := createWarnsCommand()
	activeCmd := createActiveCommand()
	muteCmd := createMuteCommand()

	modGroup := client.CommandHandler.BuildCommandGroup(
		"mod",
		"Moderation commands",
		warnCmd,
		clearCmd,
		warnsCmd,
		activeCmd,
		muteCmd,
	)

	client.CommandHandler.AddGlobalCommand(modGroup)
}
