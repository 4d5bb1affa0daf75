// Package events provides a registry for organizing bot events.
// Events are organized by category (guild, member, message, shard)
package events

import (
	"github.com/sumezulike/Referee/pkg/discord"
	"github.com/sumezulike/Referee/pkg/logger"
	"github.com/sumezulike/Referee/pkg/warnings"
)

// engine is the warning engine the event handlers feed
var engine *warnings.Engine

// RegisterAll registers all events with the Discord client
func RegisterAll(client *discord.ExtendedClient, eng *warnings.Engine) {
	engine = eng

	logger.System("📋 Registering bot events...", "Events")

	// Ready event (bot startup)
	RegisterReadyEvent(client)

	// Guild events (server join/leave)
	RegisterGuildEvents(client)

	// Member events (join/leave/update)
	RegisterMemberEvents(client)

	// Message events (announcer parsing, prose commands)
	RegisterMessageEvents(client)

	// Shard connection events
	RegisterShardEvents(client)

	logger.Success("✅ All events registered", "Events")
}
