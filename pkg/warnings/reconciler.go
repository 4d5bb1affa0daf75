package warnings

import (
	"fmt"
	"sync"

	"github.com/sumezulike/Referee/pkg/logger"
)

// Role is a platform role as seen by the reconciler
type Role struct {
	ID       string
	Name     string
	Color    int
	Position int
}

// MemberState is a snapshot of a guild member's role situation
type MemberState struct {
	UserID          string
	DisplayName     string
	RoleIDs         []string
	TopRolePosition int
	DisplayColor    int
}

// RoleGateway abstracts the platform role operations the reconciler needs.
// All mutations are blocking calls against the platform API.
type RoleGateway interface {
	GuildRoles(guildID string) ([]*Role, error)
	Member(guildID, userID string) (*MemberState, error)
	BotTopPosition(guildID string) (int, error)
	CreateRole(guildID, name string, color int) (*Role, error)
	MoveRole(guildID, roleID string, position int) error
	AddRole(guildID, userID, roleID string) error
	RemoveRole(guildID, userID, roleID string) error
}

// Reconciler keeps the warned marker role in sync with the warning store.
// The store is the source of truth; the role is only a visible projection.
//
// Permission and hierarchy failures are deliberately non-fatal: the member is
// left as-is and the next sweep gets another chance.
type Reconciler struct {
	gateway       RoleGateway
	roleName      string
	fallbackColor int
	feed          EventFeed

	mu sync.Mutex
	// markerIDs remembers the marker role id per guild once it is known, so
	// grant and revoke agree on role identity. Name lookup is only the
	// bootstrap fallback for roles created before the id was tracked.
	markerIDs map[string]string
}

// NewReconciler creates a Reconciler granting and revoking the named role
func NewReconciler(gateway RoleGateway, roleName string, fallbackColor int) *Reconciler {
	return &Reconciler{
		gateway:       gateway,
		roleName:      roleName,
		fallbackColor: fallbackColor,
		markerIDs:     make(map[string]string),
	}
}

// SetFeed attaches an event feed reporting marker role changes. May be nil.
func (r *Reconciler) SetFeed(feed EventFeed) {
	r.feed = feed
}

// Reconcile compares a member's marker role against whether they have active
// warnings and performs the minimal corrective action.
func (r *Reconciler) Reconcile(guildID, userID string, hasActive bool) error {
	member, err := r.gateway.Member(guildID, userID)
	if err != nil {
		return fmt.Errorf("fetching member %s: %w", userID, err)
	}

	guildRoles, err := r.gateway.GuildRoles(guildID)
	if err != nil {
		return fmt.Errorf("fetching roles of guild %s: %w", guildID, err)
	}

	held := r.heldMarkerRoles(guildID, member, guildRoles)

	if hasActive {
		return r.assign(guildID, member, guildRoles, held)
	}
	return r.revoke(guildID, member, held)
}

// assign grants the marker role unless the member already holds one or the
// bot cannot touch them.
func (r *Reconciler) assign(guildID string, member *MemberState, guildRoles []*Role, held []*Role) error {
	// Defensive: never stack a second marker role
	if len(held) >= 1 {
		return nil
	}

	botTop, err := r.gateway.BotTopPosition(guildID)
	if err != nil {
		return fmt.Errorf("fetching bot position in guild %s: %w", guildID, err)
	}
	if member.TopRolePosition > botTop {
		// Role hierarchy puts the member above the bot; nothing we can do
		logger.Debug(fmt.Sprintf("Cannot mark %s: member outranks the bot", member.UserID), "Reconciler")
		return nil
	}

	marker := r.findMarkerRole(guildID, guildRoles)
	if marker == nil {
		color := WarnedColor(member.DisplayColor, r.fallbackColor)
		marker, err = r.gateway.CreateRole(guildID, r.roleName, color)
		if err != nil {
			logger.Error(fmt.Sprintf("Failed to create the %s role in guild %s: %v", r.roleName, guildID, err), "Reconciler")
			return nil
		}
		logger.Info(fmt.Sprintf("Created the %s role in guild %s", r.roleName, guildID), "Reconciler")
	}

	r.rememberMarker(guildID, marker.ID)

	// The role has to sit above the member's top role to render visibly
	if marker.Position <= member.TopRolePosition {
		position := member.TopRolePosition
		if position < 1 {
			position = 1
		}
		if err := r.gateway.MoveRole(guildID, marker.ID, position); err != nil {
			logger.Warn(fmt.Sprintf("Failed to move the %s role in guild %s: %v", r.roleName, guildID, err), "Reconciler")
		}
	}

	if err := r.gateway.AddRole(guildID, member.UserID, marker.ID); err != nil {
		logger.Warn(fmt.Sprintf("Failed to mark %s in guild %s: %v", member.UserID, guildID, err), "Reconciler")
		return nil
	}

	logger.Info(fmt.Sprintf("Marked %s as warned in guild %s", member.UserID, guildID), "Reconciler")
	r.publish("marked", guildID, member.UserID, marker.ID)
	return nil
}

// revoke removes every marker role the member holds. More than one can exist
// from historical duplication bugs, so all of them go.
func (r *Reconciler) revoke(guildID string, member *MemberState, held []*Role) error {
	if len(held) == 0 {
		return nil
	}

	removed := 0
	for _, role := range held {
		if err := r.gateway.RemoveRole(guildID, member.UserID, role.ID); err != nil {
			logger.Warn(fmt.Sprintf("Failed to unmark %s in guild %s: %v", member.UserID, guildID, err), "Reconciler")
			continue
		}
		removed++
	}

	if removed > 0 {
		logger.Info(fmt.Sprintf("Unmarked %s in guild %s", member.UserID, guildID), "Reconciler")
		r.publish("unmarked", guildID, member.UserID, "")
	}
	return nil
}

// publish reports a marker change to the feed if one is attached
func (r *Reconciler) publish(event, guildID, userID, roleID string) {
	if r.feed == nil {
		return
	}
	payload := map[string]string{"guildId": guildID, "userId": userID}
	if roleID != "" {
		payload["roleId"] = roleID
	}
	if err := r.feed.Publish(event, payload); err != nil {
		logger.Debug(fmt.Sprintf("Event feed publish failed: %v", err), "Reconciler")
	}
}

// isMarker is the single source of truth for marker role identity, shared by
// the grant and revoke paths.
func (r *Reconciler) isMarker(guildID string, role *Role) bool {
	r.mu.Lock()
	knownID := r.markerIDs[guildID]
	r.mu.Unlock()

	if knownID != "" && role.ID == knownID {
		return true
	}
	return role.Name == r.roleName
}

// heldMarkerRoles returns the marker roles among the member's roles
func (r *Reconciler) heldMarkerRoles(guildID string, member *MemberState, guildRoles []*Role) []*Role {
	byID := make(map[string]*Role, len(guildRoles))
	for _, role := range guildRoles {
		byID[role.ID] = role
	}

	var held []*Role
	for _, roleID := range member.RoleIDs {
		role, ok := byID[roleID]
		if !ok {
			continue
		}
		if r.isMarker(guildID, role) {
			held = append(held, role)
		}
	}
	return held
}

// findMarkerRole locates the guild's marker role, preferring the tracked id
func (r *Reconciler) findMarkerRole(guildID string, guildRoles []*Role) *Role {
	r.mu.Lock()
	knownID := r.markerIDs[guildID]
	r.mu.Unlock()

	if knownID != "" {
		for _, role := range guildRoles {
			if role.ID == knownID {
				return role
			}
		}
		// The tracked role was deleted out from under us; fall through to
		// the name lookup and forget the stale id.
		r.mu.Lock()
		delete(r.markerIDs, guildID)
		r.mu.Unlock()
	}

	for _, role := range guildRoles {
		if role.Name == r.roleName {
			return role
		}
	}
	return nil
}

// rememberMarker records the marker role id for a guild
func (r *Reconciler) rememberMarker(guildID, roleID string) {
	r.mu.Lock()
	r.markerIDs[guildID] = roleID
	r.mu.Unlock()
}
