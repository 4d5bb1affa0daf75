package events

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/sumezulike/Referee/pkg/discord"
	"github.com/sumezulike/Referee/pkg/logger"
)

func RegisterShardEvents(client *discord.ExtendedClient) {
	client.Session.AddHandler(onShardDisconnect)
	client.Session.AddHandler(onShardResumed)
}

func onShardDisconnect(s *discordgo.Session, event *discordgo.Disconnect) {
	logger.Info(fmt.Sprintf("🔌 Shard %d disconnected.", s.ShardID), "Shard")
}

func onShardResumed(s *discordgo.Session, event *discordgo.Resumed) {
	logger.Success(fmt.Sprintf("✅ Shard %d resumed.", s.ShardID), "Shard")
}
