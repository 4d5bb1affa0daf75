package warnings

import (
	"context"
	"strings"
	"testing"
	"time"
)

// testHarness wires a full engine around in-memory collaborators with an
// adjustable clock.
type testHarness struct {
	engine   *Engine
	store    *MemoryStore
	gateway  *fakeGateway
	notifier *fakeNotifier
	feed     *fakeFeed
	now      time.Time
}

func newTestHarness(t *testing.T) *testHarness {
	t.Helper()

	h := &testHarness{
		store:    NewMemoryStore(),
		gateway:  newFakeGateway(),
		notifier: &fakeNotifier{},
		feed:     &fakeFeed{},
		now:      time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return h.now }
	h.store.now = clock

	h.gateway.botTop[testGuild] = 5
	h.gateway.putMember(testGuild, &MemberState{UserID: "123", DisplayName: "Jane"})

	resolver := &fakeResolver{table: map[string]string{"Jane": "123"}}
	classifier := NewClassifier(announcerID, 24*time.Hour, resolver)
	classifier.now = clock

	policy, err := ParsePolicy("2=4h,3=24h")
	if err != nil {
		t.Fatalf("ParsePolicy() returned error: %v", err)
	}

	reconciler := newTestReconciler(h.gateway)
	scheduler := NewScheduler(h.store, reconciler, &fakeLister{}, time.Minute)

	h.engine = NewEngine(h.store, classifier, policy, scheduler, h.notifier, h.feed, 24*time.Hour)
	h.engine.now = clock
	return h
}

func (h *testHarness) advance(d time.Duration) {
	h.now = h.now.Add(d)
}

func TestWarnLifecycle(t *testing.T) {
	ctx := context.Background()
	h := newTestHarness(t)

	w, err := h.engine.Warn(ctx, testGuild, "chan", "123", "Jane", "spam", "Mod#0001")
	if err != nil {
		t.Fatalf("Warn() returned error: %v", err)
	}
	if !w.ExpirationTime.Equal(h.now.Add(24 * time.Hour)) {
		t.Errorf("ExpirationTime = %v, want issue time + 24h", w.ExpirationTime)
	}
	if got := h.gateway.markerCount(testGuild, "123", roleName); got != 1 {
		t.Fatalf("marker count = %d, want 1 right after the warning", got)
	}

	// An hour later the warning is still active
	h.advance(time.Hour)
	_, active, err := h.engine.Warnings(ctx, "123")
	if err != nil {
		t.Fatalf("Warnings() returned error: %v", err)
	}
	if len(active) != 1 {
		t.Errorf("active warnings after 1h = %d, want 1", len(active))
	}

	// Past the lifetime the warning has expired; the next sweep-style check
	// removes the marker without touching the stored record.
	h.advance(24 * time.Hour)
	h.engine.MemberJoined(ctx, testGuild, "123")

	if got := h.gateway.markerCount(testGuild, "123", roleName); got != 0 {
		t.Errorf("marker count = %d, want 0 after expiry", got)
	}
	all, active, err := h.engine.Warnings(ctx, "123")
	if err != nil {
		t.Fatalf("Warnings() returned error: %v", err)
	}
	if len(all) != 1 || len(active) != 0 {
		t.Errorf("history = %d all / %d active, want 1 / 0", len(all), len(active))
	}
}

func TestWarnEscalation(t *testing.T) {
	ctx := context.Background()
	h := newTestHarness(t)

	warn := func() {
		t.Helper()
		if _, err := h.engine.Warn(ctx, testGuild, "chan", "123", "Jane", "", "Mod#0001"); err != nil {
			t.Fatalf("Warn() returned error: %v", err)
		}
	}

	warn() // 1 active: below every table entry
	if n := len(h.notifier.recommendations); n != 0 {
		t.Fatalf("recommendations after 1st warning = %d, want 0", n)
	}

	warn() // 2 active: 4h mute
	if n := len(h.notifier.recommendations); n != 1 {
		t.Fatalf("recommendations after 2nd warning = %d, want 1", n)
	}
	if d := h.notifier.recommendations[0].Duration; d != 4*time.Hour {
		t.Errorf("recommended duration = %v, want 4h", d)
	}

	warn() // 3 active: 24h mute
	if n := len(h.notifier.recommendations); n != 2 {
		t.Fatalf("recommendations after 3rd warning = %d, want 2", n)
	}
	if d := h.notifier.recommendations[1].Duration; d != 24*time.Hour {
		t.Errorf("recommended duration = %v, want 24h", d)
	}

	warn() // 4 active: past the table, exact-count lookup finds nothing
	if n := len(h.notifier.recommendations); n != 2 {
		t.Errorf("recommendations after 4th warning = %d, want still 2", n)
	}
}

func TestWarnRepeatNotice(t *testing.T) {
	ctx := context.Background()
	h := newTestHarness(t)

	if _, err := h.engine.Warn(ctx, testGuild, "chan", "123", "Jane", "", "Mod#0001"); err != nil {
		t.Fatalf("Warn() returned error: %v", err)
	}
	if n := len(h.notifier.notices); n != 0 {
		t.Fatalf("notices after 1st warning = %d, want 0", n)
	}

	if _, err := h.engine.Warn(ctx, testGuild, "chan", "123", "Jane", "", "Mod#0001"); err != nil {
		t.Fatalf("Warn() returned error: %v", err)
	}
	if n := len(h.notifier.notices); n != 1 {
		t.Fatalf("notices after 2nd warning = %d, want 1", n)
	}
	notice := h.notifier.notices[0]
	if !strings.Contains(notice, "Jane") || !strings.Contains(notice, "2 times") {
		t.Errorf("notice = %q, want the display name and the count", notice)
	}
}

func TestClearRevokesMarker(t *testing.T) {
	ctx := context.Background()
	h := newTestHarness(t)

	if _, err := h.engine.Warn(ctx, testGuild, "chan", "123", "Jane", "", "Mod#0001"); err != nil {
		t.Fatalf("Warn() returned error: %v", err)
	}
	if err := h.engine.Clear(ctx, testGuild, "123"); err != nil {
		t.Fatalf("Clear() returned error: %v", err)
	}

	if got := h.gateway.markerCount(testGuild, "123", roleName); got != 0 {
		t.Errorf("marker count = %d, want 0 after clear", got)
	}
	all, active, err := h.engine.Warnings(ctx, "123")
	if err != nil {
		t.Fatalf("Warnings() returned error: %v", err)
	}
	if len(all) != 1 || len(active) != 0 {
		t.Errorf("history = %d all / %d active, want 1 / 0", len(all), len(active))
	}
}

func TestHandleAnnouncementRecordsWarning(t *testing.T) {
	ctx := context.Background()
	h := newTestHarness(t)

	h.engine.NoteModeratorWarn(testGuild, "Mod#0001")
	h.engine.HandleAnnouncement(ctx, testGuild, "chan", announcerID, "<@123> has been warned. spamming")

	all, active, err := h.engine.Warnings(ctx, "123")
	if err != nil {
		t.Fatalf("Warnings() returned error: %v", err)
	}
	if len(all) != 1 || len(active) != 1 {
		t.Fatalf("history = %d all / %d active, want 1 / 1", len(all), len(active))
	}
	if all[0].Reason != "spamming" {
		t.Errorf("Reason = %q, want %q", all[0].Reason, "spamming")
	}
	if all[0].ModName != "Mod#0001" {
		t.Errorf("ModName = %q, want attribution from the prose command", all[0].ModName)
	}
	if got := h.gateway.markerCount(testGuild, "123", roleName); got != 1 {
		t.Errorf("marker count = %d, want 1", got)
	}
}

func TestAnnouncementRepeatNoticeMentionsUser(t *testing.T) {
	ctx := context.Background()
	h := newTestHarness(t)

	h.engine.HandleAnnouncement(ctx, testGuild, "chan", announcerID, "<@123> has been warned. spamming")
	h.engine.HandleAnnouncement(ctx, testGuild, "chan", announcerID, "<@123> has been warned. again")

	if n := len(h.notifier.notices); n != 1 {
		t.Fatalf("notices after 2nd announcement = %d, want 1", n)
	}
	// Announcements carry no display name, so the notice must mention the
	// user instead of printing a bare id.
	notice := h.notifier.notices[0]
	if !strings.Contains(notice, "<@123>") {
		t.Errorf("notice = %q, want a <@123> mention", notice)
	}
	if strings.HasPrefix(notice, "123 ") {
		t.Errorf("notice = %q, starts with a raw id", notice)
	}
}

func TestHandleAnnouncementClear(t *testing.T) {
	ctx := context.Background()
	h := newTestHarness(t)

	if _, err := h.engine.Warn(ctx, testGuild, "chan", "123", "Jane", "", "Mod#0001"); err != nil {
		t.Fatalf("Warn() returned error: %v", err)
	}
	h.engine.HandleAnnouncement(ctx, testGuild, "chan", announcerID, "Cleared 1 warnings for Jane.")

	_, active, err := h.engine.Warnings(ctx, "123")
	if err != nil {
		t.Fatalf("Warnings() returned error: %v", err)
	}
	if len(active) != 0 {
		t.Errorf("active warnings = %d, want 0 after announced clear", len(active))
	}
	if got := h.gateway.markerCount(testGuild, "123", roleName); got != 0 {
		t.Errorf("marker count = %d, want 0", got)
	}
}

func TestHandleAnnouncementIgnoresNoise(t *testing.T) {
	ctx := context.Background()
	h := newTestHarness(t)

	h.engine.HandleAnnouncement(ctx, testGuild, "chan", announcerID, "good morning")
	h.engine.HandleAnnouncement(ctx, testGuild, "chan", "999", "<@123> has been warned.")
	h.engine.HandleAnnouncement(ctx, testGuild, "chan", announcerID, "Warning logged for Stranger. They were not warned.")

	all, _, err := h.engine.Warnings(ctx, "123")
	if err != nil {
		t.Fatalf("Warnings() returned error: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("history = %d, want 0 records from noise", len(all))
	}
}

func TestEngineEventFeed(t *testing.T) {
	ctx := context.Background()
	h := newTestHarness(t)

	if _, err := h.engine.Warn(ctx, testGuild, "chan", "123", "Jane", "", "Mod#0001"); err != nil {
		t.Fatalf("Warn() returned error: %v", err)
	}
	if _, err := h.engine.Warn(ctx, testGuild, "chan", "123", "Jane", "", "Mod#0001"); err != nil {
		t.Fatalf("Warn() returned error: %v", err)
	}
	if err := h.engine.Clear(ctx, testGuild, "123"); err != nil {
		t.Fatalf("Clear() returned error: %v", err)
	}

	want := []string{"warned", "warned", "punishment_recommended", "cleared"}
	if len(h.feed.events) != len(want) {
		t.Fatalf("events = %v, want %v", h.feed.events, want)
	}
	for i, event := range want {
		if h.feed.events[i] != event {
			t.Errorf("events[%d] = %q, want %q", i, h.feed.events[i], event)
		}
	}
}

func TestEngineNilFeed(t *testing.T) {
	ctx := context.Background()
	h := newTestHarness(t)
	h.engine.feed = nil

	if _, err := h.engine.Warn(ctx, testGuild, "chan", "123", "Jane", "", "Mod#0001"); err != nil {
		t.Fatalf("Warn() returned error: %v", err)
	}
}

func TestActiveWarningsGrouping(t *testing.T) {
	ctx := context.Background()
	h := newTestHarness(t)
	h.gateway.putMember(testGuild, &MemberState{UserID: "456"})

	if _, err := h.engine.Warn(ctx, testGuild, "chan", "123", "Jane", "", "Mod#0001"); err != nil {
		t.Fatalf("Warn() returned error: %v", err)
	}
	if _, err := h.engine.Warn(ctx, testGuild, "chan", "456", "Bob", "", "Mod#0001"); err != nil {
		t.Fatalf("Warn() returned error: %v", err)
	}

	// Expire the first user's warning, then only the second shows up
	h.advance(25 * time.Hour)
	if _, err := h.engine.Warn(ctx, testGuild, "chan", "456", "Bob", "", "Mod#0001"); err != nil {
		t.Fatalf("Warn() returned error: %v", err)
	}

	active, err := h.engine.ActiveWarnings(ctx)
	if err != nil {
		t.Fatalf("ActiveWarnings() returned error: %v", err)
	}
	if len(active) != 1 {
		t.Fatalf("active users = %d, want 1", len(active))
	}
	if len(active["456"]) != 1 {
		t.Errorf("active warnings of 456 = %d, want 1", len(active["456"]))
	}
}
