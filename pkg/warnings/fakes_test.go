package warnings

import (
	"fmt"
	"strconv"
	"sync"
)

var errMissingPermission = fmt.Errorf("missing permission")

// fakeGateway is an in-memory RoleGateway recording every mutation
type fakeGateway struct {
	mu      sync.Mutex
	roles   map[string][]*Role        // guildID -> guild roles
	members map[string]*MemberState   // guildID:userID -> member
	botTop  map[string]int            // guildID -> bot top role position
	moved   map[string]int            // roleID -> last position
	nextID  int

	createErr error
	addErr    error
	removeErr error

	addCalls    int
	removeCalls int
	createCalls int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		roles:   make(map[string][]*Role),
		members: make(map[string]*MemberState),
		botTop:  make(map[string]int),
		moved:   make(map[string]int),
	}
}

func memberKey(guildID, userID string) string {
	return guildID + ":" + userID
}

func (g *fakeGateway) putMember(guildID string, m *MemberState) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.members[memberKey(guildID, m.UserID)] = m
}

func (g *fakeGateway) putRole(guildID string, r *Role) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.roles[guildID] = append(g.roles[guildID], r)
}

func (g *fakeGateway) GuildRoles(guildID string) ([]*Role, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]*Role, len(g.roles[guildID]))
	copy(out, g.roles[guildID])
	return out, nil
}

func (g *fakeGateway) Member(guildID, userID string) (*MemberState, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	m, ok := g.members[memberKey(guildID, userID)]
	if !ok {
		return nil, fmt.Errorf("no such member %s", userID)
	}
	cp := *m
	cp.RoleIDs = append([]string(nil), m.RoleIDs...)
	return &cp, nil
}

func (g *fakeGateway) BotTopPosition(guildID string) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.botTop[guildID], nil
}

func (g *fakeGateway) CreateRole(guildID, name string, color int) (*Role, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.createCalls++
	if g.createErr != nil {
		return nil, g.createErr
	}
	g.nextID++
	role := &Role{
		ID:       "role-" + strconv.Itoa(g.nextID),
		Name:     name,
		Color:    color,
		Position: 0,
	}
	g.roles[guildID] = append(g.roles[guildID], role)
	return role, nil
}

func (g *fakeGateway) MoveRole(guildID, roleID string, position int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.moved[roleID] = position
	for _, role := range g.roles[guildID] {
		if role.ID == roleID {
			role.Position = position
		}
	}
	return nil
}

func (g *fakeGateway) AddRole(guildID, userID, roleID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.addCalls++
	if g.addErr != nil {
		return g.addErr
	}
	m, ok := g.members[memberKey(guildID, userID)]
	if !ok {
		return fmt.Errorf("no such member %s", userID)
	}
	m.RoleIDs = append(m.RoleIDs, roleID)
	return nil
}

func (g *fakeGateway) RemoveRole(guildID, userID, roleID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.removeCalls++
	if g.removeErr != nil {
		return g.removeErr
	}
	m, ok := g.members[memberKey(guildID, userID)]
	if !ok {
		return fmt.Errorf("no such member %s", userID)
	}
	kept := m.RoleIDs[:0]
	for _, id := range m.RoleIDs {
		if id != roleID {
			kept = append(kept, id)
		}
	}
	m.RoleIDs = kept
	return nil
}

// markerCount returns how many marker roles a member currently holds
func (g *fakeGateway) markerCount(guildID, userID, roleName string) int {
	g.mu.Lock()
	defer g.mu.Unlock()

	byID := make(map[string]*Role)
	for _, role := range g.roles[guildID] {
		byID[role.ID] = role
	}

	count := 0
	m := g.members[memberKey(guildID, userID)]
	if m == nil {
		return 0
	}
	for _, id := range m.RoleIDs {
		if role, ok := byID[id]; ok && role.Name == roleName {
			count++
		}
	}
	return count
}

// fakeLister is a static MemberLister
type fakeLister struct {
	guilds  []string
	members map[string][]string
	err     error
}

func (l *fakeLister) GuildIDs() []string {
	return l.guilds
}

func (l *fakeLister) MemberIDs(guildID string) ([]string, error) {
	if l.err != nil {
		return nil, l.err
	}
	return l.members[guildID], nil
}

// fakeResolver maps names to ids from a static table
type fakeResolver struct {
	table map[string]string
}

func (r *fakeResolver) Resolve(_, name string) (string, error) {
	id, ok := r.table[name]
	if !ok {
		return "", fmt.Errorf("unknown member %q", name)
	}
	return id, nil
}

// fakeNotifier records notifications and recommendations
type fakeNotifier struct {
	mu              sync.Mutex
	notices         []string
	recommendations []Action
}

func (n *fakeNotifier) Notify(_, _, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, message)
}

func (n *fakeNotifier) RecommendPunishment(_, _, _ string, action Action, _ int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.recommendations = append(n.recommendations, action)
}

// fakeFeed records published events
type fakeFeed struct {
	mu     sync.Mutex
	events []string
}

func (f *fakeFeed) Publish(event string, _ interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}
