// Package discord provides the adapters between the gateway session and the
// warning engine's collaborator interfaces.
package discord

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/sumezulike/Referee/pkg/warnings"
)

// Bridge adapts the Discord session to the interfaces the warning engine
// consumes: the role gateway, the member lister and the name resolver. Reads
// go through the session state cache where possible and fall back to REST.
type Bridge struct {
	client *ExtendedClient
}

// NewBridge creates a Bridge over the given client
func NewBridge(client *ExtendedClient) *Bridge {
	return &Bridge{client: client}
}

// GuildRoles returns all roles of a guild
func (b *Bridge) GuildRoles(guildID string) ([]*warnings.Role, error) {
	roles, err := b.guildRoles(guildID)
	if err != nil {
		return nil, err
	}

	out := make([]*warnings.Role, 0, len(roles))
	for _, role := range roles {
		out = append(out, &warnings.Role{
			ID:       role.ID,
			Name:     role.Name,
			Color:    role.Color,
			Position: role.Position,
		})
	}
	return out, nil
}

// Member returns a snapshot of a guild member's role situation
func (b *Bridge) Member(guildID, userID string) (*warnings.MemberState, error) {
	member, err := b.guildMember(guildID, userID)
	if err != nil {
		return nil, err
	}

	roles, err := b.guildRoles(guildID)
	if err != nil {
		return nil, err
	}

	state := &warnings.MemberState{
		UserID:      userID,
		DisplayName: displayName(member),
		RoleIDs:     append([]string(nil), member.Roles...),
	}

	byID := make(map[string]*discordgo.Role, len(roles))
	for _, role := range roles {
		byID[role.ID] = role
	}

	// Top position decides hierarchy; display color comes from the highest
	// colored role, which is how the client renders names.
	colorPos := -1
	for _, roleID := range member.Roles {
		role, ok := byID[roleID]
		if !ok {
			continue
		}
		if role.Position > state.TopRolePosition {
			state.TopRolePosition = role.Position
		}
		if role.Color != 0 && role.Position > colorPos {
			state.DisplayColor = role.Color
			colorPos = role.Position
		}
	}
	return state, nil
}

// BotTopPosition returns the position of the bot's highest role in a guild
func (b *Bridge) BotTopPosition(guildID string) (int, error) {
	botID := b.client.Session.State.User.ID
	me, err := b.Member(guildID, botID)
	if err != nil {
		return 0, fmt.Errorf("fetching own member state: %w", err)
	}
	return me.TopRolePosition, nil
}

// CreateRole creates a new role in a guild
func (b *Bridge) CreateRole(guildID, name string, color int) (*warnings.Role, error) {
	role, err := b.client.Session.GuildRoleCreate(guildID, &discordgo.RoleParams{
		Name:  name,
		Color: &color,
	})
	if err != nil {
		return nil, err
	}
	return &warnings.Role{
		ID:       role.ID,
		Name:     role.Name,
		Color:    role.Color,
		Position: role.Position,
	}, nil
}

// MoveRole moves a role to the given position in the guild hierarchy
func (b *Bridge) MoveRole(guildID, roleID string, position int) error {
	roles, err := b.client.Session.GuildRoles(guildID)
	if err != nil {
		return err
	}

	for _, role := range roles {
		if role.ID == roleID {
			role.Position = position
		}
	}

	_, err = b.client.Session.GuildRoleReorder(guildID, roles)
	return err
}

// AddRole grants a role to a member
func (b *Bridge) AddRole(guildID, userID, roleID string) error {
	return b.client.Session.GuildMemberRoleAdd(guildID, userID, roleID)
}

// RemoveRole removes a role from a member
func (b *Bridge) RemoveRole(guildID, userID, roleID string) error {
	return b.client.Session.GuildMemberRoleRemove(guildID, userID, roleID)
}

// GuildIDs returns the ids of all guilds the bot is connected to
func (b *Bridge) GuildIDs() []string {
	state := b.client.Session.State
	state.RLock()
	defer state.RUnlock()

	ids := make([]string, 0, len(state.Guilds))
	for _, guild := range state.Guilds {
		ids = append(ids, guild.ID)
	}
	return ids
}

// MemberIDs returns the ids of all members of a guild. The state cache is
// preferred; when member tracking has not filled it yet, the full list is
// paged in over REST.
func (b *Bridge) MemberIDs(guildID string) ([]string, error) {
	state := b.client.Session.State

	state.RLock()
	var ids []string
	if guild, err := state.Guild(guildID); err == nil && len(guild.Members) > 0 {
		ids = make([]string, 0, len(guild.Members))
		for _, member := range guild.Members {
			ids = append(ids, member.User.ID)
		}
	}
	state.RUnlock()

	if len(ids) > 0 {
		return ids, nil
	}

	after := ""
	for {
		members, err := b.client.Session.GuildMembers(guildID, after, 1000)
		if err != nil {
			return nil, err
		}
		if len(members) == 0 {
			break
		}
		for _, member := range members {
			ids = append(ids, member.User.ID)
		}
		after = members[len(members)-1].User.ID
		if len(members) < 1000 {
			break
		}
	}
	return ids, nil
}

// Resolve maps a display name to a member id. Nicknames, usernames and global
// display names all count; announcements quote whichever the issuing
// moderator typed.
func (b *Bridge) Resolve(guildID, name string) (string, error) {
	state := b.client.Session.State

	state.RLock()
	if guild, err := state.Guild(guildID); err == nil {
		for _, member := range guild.Members {
			if memberNamed(member, name) {
				state.RUnlock()
				return member.User.ID, nil
			}
		}
	}
	state.RUnlock()

	members, err := b.client.Session.GuildMembersSearch(guildID, name, 10)
	if err != nil {
		return "", fmt.Errorf("searching for member %q: %w", name, err)
	}
	for _, member := range members {
		if memberNamed(member, name) {
			return member.User.ID, nil
		}
	}
	return "", fmt.Errorf("no member named %q in guild %s", name, guildID)
}

// guildRoles reads roles from the state cache, falling back to REST
func (b *Bridge) guildRoles(guildID string) ([]*discordgo.Role, error) {
	state := b.client.Session.State
	state.RLock()
	if guild, err := state.Guild(guildID); err == nil && len(guild.Roles) > 0 {
		roles := append([]*discordgo.Role(nil), guild.Roles...)
		state.RUnlock()
		return roles, nil
	}
	state.RUnlock()

	return b.client.Session.GuildRoles(guildID)
}

// guildMember reads a member from the state cache, falling back to REST
func (b *Bridge) guildMember(guildID, userID string) (*discordgo.Member, error) {
	if member, err := b.client.Session.State.Member(guildID, userID); err == nil {
		return member, nil
	}
	return b.client.Session.GuildMember(guildID, userID)
}

// displayName returns the name a member is shown with in the guild
func displayName(member *discordgo.Member) string {
	if member.Nick != "" {
		return member.Nick
	}
	if member.User.GlobalName != "" {
		return member.User.GlobalName
	}
	return member.User.Username
}

// memberNamed reports whether a member goes by the given name
func memberNamed(member *discordgo.Member, name string) bool {
	return member.Nick == name ||
		member.User.Username == name ||
		member.User.GlobalName == name
}
