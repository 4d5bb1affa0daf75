package warnings

import "testing"

const (
	testGuild = "guild-1"
	roleName  = "Warned"
)

func newTestReconciler(g *fakeGateway) *Reconciler {
	return NewReconciler(g, roleName, RGB(120, 100, 100))
}

func TestReconcileCreatesAndGrantsMarker(t *testing.T) {
	g := newFakeGateway()
	g.botTop[testGuild] = 5
	g.putMember(testGuild, &MemberState{
		UserID:          "123",
		TopRolePosition: 0,
		DisplayColor:    RGB(200, 100, 240),
	})

	r := newTestReconciler(g)
	if err := r.Reconcile(testGuild, "123", true); err != nil {
		t.Fatalf("Reconcile() returned error: %v", err)
	}

	if g.createCalls != 1 {
		t.Errorf("createCalls = %d, want 1", g.createCalls)
	}
	if got := g.markerCount(testGuild, "123", roleName); got != 1 {
		t.Errorf("marker role count = %d, want 1", got)
	}

	roles, _ := g.GuildRoles(testGuild)
	if len(roles) != 1 {
		t.Fatalf("guild has %d roles, want 1", len(roles))
	}
	if want := WarnedColor(RGB(200, 100, 240), RGB(120, 100, 100)); roles[0].Color != want {
		t.Errorf("role color = %06x, want %06x", roles[0].Color, want)
	}
	// A freshly created role sits at the bottom and must be lifted to at
	// least position 1 so it renders above @everyone.
	if pos := g.moved[roles[0].ID]; pos != 1 {
		t.Errorf("role moved to position %d, want 1", pos)
	}
}

func TestReconcileGrantIsIdempotent(t *testing.T) {
	g := newFakeGateway()
	g.botTop[testGuild] = 5
	g.putMember(testGuild, &MemberState{UserID: "123"})

	r := newTestReconciler(g)
	for i := 0; i < 3; i++ {
		if err := r.Reconcile(testGuild, "123", true); err != nil {
			t.Fatalf("Reconcile() #%d returned error: %v", i+1, err)
		}
	}

	if got := g.markerCount(testGuild, "123", roleName); got != 1 {
		t.Errorf("marker role count after 3 reconciles = %d, want 1", got)
	}
	if g.addCalls != 1 {
		t.Errorf("addCalls = %d, want 1", g.addCalls)
	}
	if g.createCalls != 1 {
		t.Errorf("createCalls = %d, want 1", g.createCalls)
	}
}

func TestReconcileReusesExistingRole(t *testing.T) {
	g := newFakeGateway()
	g.botTop[testGuild] = 5
	g.putRole(testGuild, &Role{ID: "r-warned", Name: roleName, Position: 4})
	g.putMember(testGuild, &MemberState{UserID: "123", TopRolePosition: 2})

	r := newTestReconciler(g)
	if err := r.Reconcile(testGuild, "123", true); err != nil {
		t.Fatalf("Reconcile() returned error: %v", err)
	}

	if g.createCalls != 0 {
		t.Errorf("createCalls = %d, want 0 when the role already exists", g.createCalls)
	}
	if got := g.markerCount(testGuild, "123", roleName); got != 1 {
		t.Errorf("marker role count = %d, want 1", got)
	}
	// Position 4 already beats the member's top role at 2
	if _, ok := g.moved["r-warned"]; ok {
		t.Error("role was moved although it already sits above the member")
	}
}

func TestReconcileLiftsRoleAboveMemberTop(t *testing.T) {
	g := newFakeGateway()
	g.botTop[testGuild] = 10
	g.putRole(testGuild, &Role{ID: "r-warned", Name: roleName, Position: 2})
	g.putMember(testGuild, &MemberState{UserID: "123", TopRolePosition: 3})

	r := newTestReconciler(g)
	if err := r.Reconcile(testGuild, "123", true); err != nil {
		t.Fatalf("Reconcile() returned error: %v", err)
	}

	if pos := g.moved["r-warned"]; pos != 3 {
		t.Errorf("role moved to position %d, want 3", pos)
	}
}

func TestReconcileHierarchyGuard(t *testing.T) {
	g := newFakeGateway()
	g.botTop[testGuild] = 5
	g.putMember(testGuild, &MemberState{UserID: "admin", TopRolePosition: 10})

	r := newTestReconciler(g)
	if err := r.Reconcile(testGuild, "admin", true); err != nil {
		t.Fatalf("Reconcile() returned error: %v", err)
	}

	// Member outranks the bot: no role creation, no assignment, no error
	if g.createCalls != 0 || g.addCalls != 0 {
		t.Errorf("createCalls = %d, addCalls = %d, want 0 mutations", g.createCalls, g.addCalls)
	}
}

func TestReconcileRevokesAllDuplicateMarkers(t *testing.T) {
	g := newFakeGateway()
	g.putRole(testGuild, &Role{ID: "r-1", Name: roleName, Position: 1})
	g.putRole(testGuild, &Role{ID: "r-2", Name: roleName, Position: 2})
	g.putMember(testGuild, &MemberState{
		UserID:  "123",
		RoleIDs: []string{"r-1", "other", "r-2"},
	})

	r := newTestReconciler(g)
	if err := r.Reconcile(testGuild, "123", false); err != nil {
		t.Fatalf("Reconcile() returned error: %v", err)
	}

	if got := g.markerCount(testGuild, "123", roleName); got != 0 {
		t.Errorf("marker role count = %d, want 0", got)
	}
	if g.removeCalls != 2 {
		t.Errorf("removeCalls = %d, want 2", g.removeCalls)
	}

	m, _ := g.Member(testGuild, "123")
	if len(m.RoleIDs) != 1 || m.RoleIDs[0] != "other" {
		t.Errorf("RoleIDs = %v, want only the unrelated role to remain", m.RoleIDs)
	}
}

func TestReconcileCleanMemberIsNoop(t *testing.T) {
	g := newFakeGateway()
	g.putRole(testGuild, &Role{ID: "r-warned", Name: roleName, Position: 1})
	g.putMember(testGuild, &MemberState{UserID: "123", RoleIDs: []string{"other"}})

	r := newTestReconciler(g)
	if err := r.Reconcile(testGuild, "123", false); err != nil {
		t.Fatalf("Reconcile() returned error: %v", err)
	}

	if g.addCalls != 0 || g.removeCalls != 0 || g.createCalls != 0 {
		t.Errorf("mutations = add %d / remove %d / create %d, want none",
			g.addCalls, g.removeCalls, g.createCalls)
	}
}

func TestReconcileTrackedIDSurvivesRename(t *testing.T) {
	g := newFakeGateway()
	g.botTop[testGuild] = 5
	g.putMember(testGuild, &MemberState{UserID: "123"})

	r := newTestReconciler(g)
	if err := r.Reconcile(testGuild, "123", true); err != nil {
		t.Fatalf("Reconcile() returned error: %v", err)
	}

	// Someone renames the marker role behind our back. The reconciler still
	// recognizes it by the tracked id and revokes it.
	roles, _ := g.GuildRoles(testGuild)
	g.mu.Lock()
	for _, role := range g.roles[testGuild] {
		if role.ID == roles[0].ID {
			role.Name = "Naughty"
		}
	}
	g.mu.Unlock()

	if err := r.Reconcile(testGuild, "123", false); err != nil {
		t.Fatalf("Reconcile() returned error: %v", err)
	}

	m, _ := g.Member(testGuild, "123")
	if len(m.RoleIDs) != 0 {
		t.Errorf("RoleIDs = %v, want the renamed marker role revoked", m.RoleIDs)
	}
}

func TestReconcileFeedsMarkerEvents(t *testing.T) {
	g := newFakeGateway()
	g.botTop[testGuild] = 5
	g.putMember(testGuild, &MemberState{UserID: "123"})

	r := newTestReconciler(g)
	feed := &fakeFeed{}
	r.SetFeed(feed)

	if err := r.Reconcile(testGuild, "123", true); err != nil {
		t.Fatalf("Reconcile() returned error: %v", err)
	}
	if err := r.Reconcile(testGuild, "123", false); err != nil {
		t.Fatalf("Reconcile() returned error: %v", err)
	}

	want := []string{"marked", "unmarked"}
	if len(feed.events) != len(want) {
		t.Fatalf("events = %v, want %v", feed.events, want)
	}
	for i := range want {
		if feed.events[i] != want[i] {
			t.Errorf("events[%d] = %q, want %q", i, feed.events[i], want[i])
		}
	}
}

func TestReconcileAddFailureIsNonFatal(t *testing.T) {
	g := newFakeGateway()
	g.botTop[testGuild] = 5
	g.putMember(testGuild, &MemberState{UserID: "123"})
	g.addErr = errMissingPermission

	r := newTestReconciler(g)
	if err := r.Reconcile(testGuild, "123", true); err != nil {
		t.Errorf("Reconcile() = %v, want nil on a permission failure", err)
	}
}
