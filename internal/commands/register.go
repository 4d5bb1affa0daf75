// Package commands provides a registry for organizing bot commands.
// Commands are organized in subdirectories by category (utils, mod, ...)
package commands

import (
	"github.com/sumezulike/Referee/internal/commands/mod"
	"github.com/sumezulike/Referee/internal/commands/utils"
	"github.com/sumezulike/Referee/pkg/discord"
	"github.com/sumezulike/Referee/pkg/warnings"
)

// RegisterAll registers all commands with the Discord client
func RegisterAll(client *discord.ExtendedClient, engine *warnings.Engine) {
	// Utility commands (/utils ping, /utils status, /utils stats, /utils help)
	utils.RegisterUtilsCommands(client, engine)

	// Moderation commands (/mod warn, /mod clear, /mod warns, /mod active, /mod mute)
	mod.RegisterModCommands(client, engine)
}
