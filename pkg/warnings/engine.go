package warnings

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sumezulike/Referee/pkg/logger"
	"github.com/sumezulike/Referee/pkg/models"
)

// Notifier delivers engine output back into the chat. The engine never
// executes punishments itself; it only reports what the policy recommends.
type Notifier interface {
	Notify(guildID, channelID, message string)
	RecommendPunishment(guildID, channelID, userID string, action Action, activeCount int)
}

// EventFeed receives warning lifecycle events for external automation
type EventFeed interface {
	Publish(event string, payload interface{}) error
}

// Engine ties the classifier, store, policy, reconciler and scheduler
// together. One Engine serves one community; all of its mutable state lives
// on the instance, so several engines can run side by side.
type Engine struct {
	store      Store
	classifier *Classifier
	policy     *Policy
	scheduler  *Scheduler
	notifier   Notifier
	feed       EventFeed
	lifetime   time.Duration

	mu sync.Mutex
	// latestMods remembers, per guild, the display name of the moderator
	// last seen issuing a prose "?warn" command. Announcer messages carry
	// no issuer, so this is the best attribution available.
	latestMods map[string]string

	now func() time.Time
}

// NewEngine assembles the warning engine. The feed may be nil.
func NewEngine(store Store, classifier *Classifier, policy *Policy, scheduler *Scheduler, notifier Notifier, feed EventFeed, lifetime time.Duration) *Engine {
	return &Engine{
		store:      store,
		classifier: classifier,
		policy:     policy,
		scheduler:  scheduler,
		notifier:   notifier,
		feed:       feed,
		lifetime:   lifetime,
		latestMods: make(map[string]string),
		now:        time.Now,
	}
}

// Warn records a warning issued through an explicit moderator command and
// runs the follow-up: point reconciliation, escalation check, notification.
func (e *Engine) Warn(ctx context.Context, guildID, channelID, userID, displayName, reason, modName string) (*models.Warning, error) {
	w := e.classifier.FromCommand(userID, reason, modName)

	if err := e.store.Put(ctx, w); err != nil {
		return nil, fmt.Errorf("persisting warning: %w", err)
	}

	e.publish("warned", w)
	e.afterWarning(ctx, guildID, channelID, userID, displayName)
	return w, nil
}

// Clear expires all of a user's active warnings and removes the marker role
func (e *Engine) Clear(ctx context.Context, guildID, userID string) error {
	if err := e.store.Expire(ctx, userID); err != nil {
		return fmt.Errorf("expiring warnings of %s: %w", userID, err)
	}

	e.publish("cleared", map[string]string{"userId": userID, "guildId": guildID})

	if err := e.scheduler.CheckMember(ctx, guildID, userID); err != nil {
		logger.Warn(fmt.Sprintf("Reconciliation after clear failed for %s: %v", userID, err), "Engine")
	}
	return nil
}

// Warnings returns a user's full history and the active subset
func (e *Engine) Warnings(ctx context.Context, userID string) (all, active []*models.Warning, err error) {
	all, err = e.store.List(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	active, err = e.store.ListActive(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	return all, active, nil
}

// ActiveWarnings returns all users with at least one active warning
func (e *Engine) ActiveWarnings(ctx context.Context) (map[string][]*models.Warning, error) {
	return e.store.ListAllActive(ctx)
}

// NoteModeratorWarn records that a moderator just issued a prose "?warn"
// command, so the next announcer message can be attributed to them.
func (e *Engine) NoteModeratorWarn(guildID, modName string) {
	e.mu.Lock()
	e.latestMods[guildID] = modName
	e.mu.Unlock()
}

// HandleAnnouncement processes a message from the announcer bot. Messages
// that are not recognizable announcements are silently ignored; unresolvable
// names are logged and dropped.
func (e *Engine) HandleAnnouncement(ctx context.Context, guildID, channelID, authorID, content string) {
	cls, err := e.classifier.Classify(guildID, authorID, content)
	if err != nil {
		logger.Warn(fmt.Sprintf("Ignoring announcement: %v", err), "Engine")
		return
	}
	if cls == nil {
		return
	}

	switch cls.Kind {
	case KindWarning:
		w := cls.Warning
		w.ModName = e.latestMod(guildID)
		logger.Info(fmt.Sprintf("Recording warning against %s: %q", w.UserID, w.Reason), "Engine")

		if err := e.store.Put(ctx, w); err != nil {
			logger.Error(fmt.Sprintf("Failed to persist announcer warning for %s: %v", w.UserID, err), "Engine")
			return
		}
		e.publish("warned", w)
		// Announcements carry no display name, so the notice mentions the id
		e.afterWarning(ctx, guildID, channelID, w.UserID, fmt.Sprintf("<@%s>", w.UserID))

	case KindClear:
		logger.Info(fmt.Sprintf("Recording clear for %s", cls.UserID), "Engine")
		if err := e.Clear(ctx, guildID, cls.UserID); err != nil {
			logger.Error(fmt.Sprintf("Failed to clear warnings of %s: %v", cls.UserID, err), "Engine")
		}
	}
}

// MemberJoined re-checks a member right after they join, so rejoining does
// not shed the marker role.
func (e *Engine) MemberJoined(ctx context.Context, guildID, userID string) {
	if err := e.scheduler.CheckMember(ctx, guildID, userID); err != nil {
		logger.Warn(fmt.Sprintf("Join reconciliation failed for %s: %v", userID, err), "Engine")
	}
}

// afterWarning runs the common follow-up once a warning has been persisted
func (e *Engine) afterWarning(ctx context.Context, guildID, channelID, userID, displayName string) {
	if err := e.scheduler.CheckMember(ctx, guildID, userID); err != nil {
		logger.Warn(fmt.Sprintf("Point reconciliation failed for %s: %v", userID, err), "Engine")
	}

	active, err := e.store.ListActive(ctx, userID)
	if err != nil {
		logger.Warn(fmt.Sprintf("Could not count active warnings of %s: %v", userID, err), "Engine")
		return
	}
	count := len(active)

	if count > 1 && e.notifier != nil {
		e.notifier.Notify(guildID, channelID, fmt.Sprintf(
			"%s has been warned %d times in the last %d hours",
			displayName, count, int(e.lifetime.Hours()),
		))
	}

	if action, ok := e.policy.Escalate(count); ok {
		if e.notifier != nil {
			e.notifier.RecommendPunishment(guildID, channelID, userID, action, count)
		}
		e.publish("punishment_recommended", map[string]interface{}{
			"userId":      userID,
			"guildId":     guildID,
			"action":      string(action.Kind),
			"duration":    action.Duration.String(),
			"activeCount": count,
		})
	}
}

// latestMod returns the best-known issuer attribution for a guild
func (e *Engine) latestMod(guildID string) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.latestMods[guildID]
}

// publish sends an event to the feed if one is configured
func (e *Engine) publish(event string, payload interface{}) {
	if e.feed == nil {
		return
	}
	if err := e.feed.Publish(event, payload); err != nil {
		logger.Debug(fmt.Sprintf("Event feed publish failed: %v", err), "Engine")
	}
}
