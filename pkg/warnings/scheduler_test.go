package warnings

import (
	"context"
	"testing"
	"time"

	"github.com/sumezulike/Referee/pkg/models"
)

func activeWarning(userID string, lifetime time.Duration) *models.Warning {
	now := time.Now()
	return &models.Warning{
		ID:             "w-" + userID,
		UserID:         userID,
		Timestamp:      now,
		ExpirationTime: now.Add(lifetime),
	}
}

func TestCheckMemberConverges(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	g := newFakeGateway()
	g.botTop[testGuild] = 5
	g.putMember(testGuild, &MemberState{UserID: "123"})

	s := NewScheduler(store, newTestReconciler(g), &fakeLister{}, time.Minute)

	if err := store.Put(ctx, activeWarning("123", time.Hour)); err != nil {
		t.Fatalf("Put() returned error: %v", err)
	}
	if err := s.CheckMember(ctx, testGuild, "123"); err != nil {
		t.Fatalf("CheckMember() returned error: %v", err)
	}
	if got := g.markerCount(testGuild, "123", roleName); got != 1 {
		t.Fatalf("marker role count = %d, want 1 after warning", got)
	}

	if err := store.Expire(ctx, "123"); err != nil {
		t.Fatalf("Expire() returned error: %v", err)
	}
	if err := s.CheckMember(ctx, testGuild, "123"); err != nil {
		t.Fatalf("CheckMember() returned error: %v", err)
	}
	if got := g.markerCount(testGuild, "123", roleName); got != 0 {
		t.Errorf("marker role count = %d, want 0 after expiry", got)
	}
}

func TestSweepCoversAllGuilds(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	g := newFakeGateway()
	g.botTop["g1"] = 5
	g.botTop["g2"] = 5
	g.putMember("g1", &MemberState{UserID: "111"})
	g.putMember("g1", &MemberState{UserID: "222"})
	g.putMember("g2", &MemberState{UserID: "333"})

	if err := store.Put(ctx, activeWarning("111", time.Hour)); err != nil {
		t.Fatalf("Put() returned error: %v", err)
	}
	if err := store.Put(ctx, activeWarning("333", time.Hour)); err != nil {
		t.Fatalf("Put() returned error: %v", err)
	}

	lister := &fakeLister{
		guilds: []string{"g1", "g2"},
		members: map[string][]string{
			"g1": {"111", "222"},
			"g2": {"333"},
		},
	}

	s := NewScheduler(store, newTestReconciler(g), lister, time.Minute)
	s.Sweep()

	if got := g.markerCount("g1", "111", roleName); got != 1 {
		t.Errorf("g1/111 marker count = %d, want 1", got)
	}
	if got := g.markerCount("g1", "222", roleName); got != 0 {
		t.Errorf("g1/222 marker count = %d, want 0", got)
	}
	if got := g.markerCount("g2", "333", roleName); got != 1 {
		t.Errorf("g2/333 marker count = %d, want 1", got)
	}
}

func TestSweepIsolatesMemberFailures(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	g := newFakeGateway()
	g.botTop[testGuild] = 5
	// "ghost" is in the member list but not fetchable; the sweep must still
	// reach "123" behind it.
	g.putMember(testGuild, &MemberState{UserID: "123"})

	if err := store.Put(ctx, activeWarning("123", time.Hour)); err != nil {
		t.Fatalf("Put() returned error: %v", err)
	}

	lister := &fakeLister{
		guilds:  []string{testGuild},
		members: map[string][]string{testGuild: {"ghost", "123"}},
	}

	s := NewScheduler(store, newTestReconciler(g), lister, time.Minute)
	s.Sweep()

	if got := g.markerCount(testGuild, "123", roleName); got != 1 {
		t.Errorf("marker count = %d, want 1 despite the failing member before it", got)
	}
}

func TestSweepLockMapBoundedByGuilds(t *testing.T) {
	store := NewMemoryStore()
	g := newFakeGateway()
	g.botTop["g1"] = 5
	g.botTop["g2"] = 5
	for _, id := range []string{"1", "2", "3"} {
		g.putMember("g1", &MemberState{UserID: id})
		g.putMember("g2", &MemberState{UserID: id})
	}

	lister := &fakeLister{
		guilds: []string{"g1", "g2"},
		members: map[string][]string{
			"g1": {"1", "2", "3"},
			"g2": {"1", "2", "3"},
		},
	}

	s := NewScheduler(store, newTestReconciler(g), lister, time.Minute)
	s.Sweep()

	// Locks are keyed per guild, so the map never grows with the member count
	s.locksMu.Lock()
	size := len(s.locks)
	s.locksMu.Unlock()
	if size != 2 {
		t.Errorf("lock map size after sweep = %d, want one entry per guild", size)
	}
}

func TestSchedulerStartStop(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	g := newFakeGateway()
	g.botTop[testGuild] = 5
	g.putMember(testGuild, &MemberState{UserID: "123"})

	if err := store.Put(ctx, activeWarning("123", time.Hour)); err != nil {
		t.Fatalf("Put() returned error: %v", err)
	}

	lister := &fakeLister{
		guilds:  []string{testGuild},
		members: map[string][]string{testGuild: {"123"}},
	}

	s := NewScheduler(store, newTestReconciler(g), lister, 5*time.Millisecond)
	s.Start()

	deadline := time.Now().Add(2 * time.Second)
	for g.markerCount(testGuild, "123", roleName) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("sweep loop never reconciled the member")
		}
		time.Sleep(time.Millisecond)
	}

	// Stop blocks until the loop exits; calling it twice must not hang
	s.Stop()
	s.Stop()
}
