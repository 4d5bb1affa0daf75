// Package mod - /mod mute command
package mod

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/sumezulike/Referee/pkg/discord"
)

// createMuteCommand creates the /mod mute subcommand. The warning engine only
// recommends mutes; this is the command moderators execute them with.
func createMuteCommand() *discord.Command {
	return discord.NewCommand(
		"mute",
		"Time a user out",
		"mod",
		muteHandler,
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "user",
			Description: "User to mute",
			Required:    true,
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "duration",
			Description: "Duration in minutes",
			Required:    true,
			MinValue:    func() *float64 { v := 1.0; return &v }(),
			MaxValue:    40320, // 28 days max
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "reason",
			Description: "Reason for the mute",
			Required:    false,
		},
	).WithUserPermissions(discordgo.PermissionModerateMembers).
		WithBotPermissions(discordgo.PermissionModerateMembers)
}

// muteHandler handles the /mod mute command
func muteHandler(ctx *discord.CommandContext) error {
	user := ctx.GetUserOption("user")
	if user == nil {
		return ctx.ReplyEphemeral("❌ You must specify a user.")
	}

	duration := ctx.GetIntOption("duration")
	if duration < 1 {
		return ctx.ReplyEphemeral("❌ The duration must be at least 1 minute.")
	}

	reason := ctx.GetStringOption("reason")
	if reason == "" {
		reason = "No reason given"
	}

	timeoutUntil := time.Now().Add(time.Duration(duration) * time.Minute)

	err := ctx.Session.GuildMemberTimeout(
		ctx.Interaction.GuildID,
		user.ID,
		&timeoutUntil,
	)
	if err != nil {
		return ctx.ReplyEphemeral(fmt.Sprintf("❌ Failed to mute: %v", err))
	}

	return ctx.Reply(fmt.Sprintf("🔇 **%s** has been muted for %d minutes.\n**Reason:** %s",
		user.Username,
		duration,
		reason,
	))
}
