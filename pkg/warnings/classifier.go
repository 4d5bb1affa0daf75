package warnings

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sumezulike/Referee/pkg/models"
)

// Kind classifies what an announcement message turned out to be
type Kind int

const (
	// KindNone means the message is not warning-related
	KindNone Kind = iota
	// KindWarning means a new warning should be recorded
	KindWarning
	// KindClear means all of a user's warnings should be expired
	KindClear
)

// Classification is the result of parsing an announcement message
type Classification struct {
	Kind    Kind
	UserID  string
	Warning *models.Warning // set when Kind is KindWarning
}

// NameResolver maps a display name from an announcement to a platform user id.
// It is a collaborator of the classifier; resolution failures are expected
// (users leave, change names) and only cause the message to be ignored.
type NameResolver interface {
	Resolve(guildID, name string) (userID string, err error)
}

// mentionPattern extracts the user id from a raw mention
var mentionPattern = regexp.MustCompile(`<@!?(\d+)>`)

// announcementPattern pairs a message shape with its extractor. Patterns are
// tried in order; the first match wins. New upstream message formats get a
// new entry here and nothing else changes.
type announcementPattern struct {
	re      *regexp.Regexp
	extract func(c *Classifier, guildID string, match []string) (*Classification, error)
}

// Classifier turns raw chat input into warning classifications. It only
// considers messages authored by the configured announcer bot; everything
// else is KindNone.
type Classifier struct {
	announcerID string
	lifetime    time.Duration
	resolver    NameResolver
	patterns    []announcementPattern
	now         func() time.Time
}

// NewClassifier creates a Classifier for the given announcer bot
func NewClassifier(announcerID string, lifetime time.Duration, resolver NameResolver) *Classifier {
	c := &Classifier{
		announcerID: announcerID,
		lifetime:    lifetime,
		resolver:    resolver,
		now:         time.Now,
	}

	c.patterns = []announcementPattern{
		{
			// "<name> has been warned. <reason>"
			re: regexp.MustCompile(`^(.+?) has been warned\.(.*)$`),
			extract: func(c *Classifier, guildID string, match []string) (*Classification, error) {
				userID, err := c.resolveSubject(guildID, match[1])
				if err != nil {
					return nil, err
				}
				return c.warningFor(userID, match[2]), nil
			},
		},
		{
			// "Warning logged for <name>. They were not warned." logs intent
			// without enforcement but still counts as a warning.
			re: regexp.MustCompile(`^Warning logged for (.+?)\. They were not warned\.(.*)$`),
			extract: func(c *Classifier, guildID string, match []string) (*Classification, error) {
				userID, err := c.resolveSubject(guildID, match[1])
				if err != nil {
					return nil, err
				}
				return c.warningFor(userID, match[2]), nil
			},
		},
		{
			// "Cleared N warnings for <name>" forgives all current warnings
			re: regexp.MustCompile(`Cleared .*warnings for (.+?)\.?$`),
			extract: func(c *Classifier, guildID string, match []string) (*Classification, error) {
				userID, err := c.resolveSubject(guildID, match[1])
				if err != nil {
					return nil, err
				}
				return &Classification{Kind: KindClear, UserID: userID}, nil
			},
		},
	}

	return c
}

// Classify parses a message from the event stream. It returns nil when the
// message is not a recognized announcement, and an error when a recognized
// announcement names a user that cannot be resolved.
func (c *Classifier) Classify(guildID, authorID, content string) (*Classification, error) {
	if authorID != c.announcerID {
		return nil, nil
	}

	content = CleanContent(content)

	for _, p := range c.patterns {
		match := p.re.FindStringSubmatch(content)
		if match == nil {
			continue
		}
		return p.extract(c, guildID, match)
	}
	return nil, nil
}

// FromCommand builds a warning for an explicit moderator command, where the
// subject is already resolved and no parsing is needed.
func (c *Classifier) FromCommand(userID, reason, modName string) *models.Warning {
	now := c.now()
	return &models.Warning{
		ID:             uuid.New().String(),
		UserID:         userID,
		Timestamp:      now,
		ExpirationTime: now.Add(c.lifetime),
		Reason:         reason,
		ModName:        modName,
	}
}

// warningFor assembles a KindWarning classification
func (c *Classifier) warningFor(userID, rawReason string) *Classification {
	now := c.now()
	return &Classification{
		Kind:   KindWarning,
		UserID: userID,
		Warning: &models.Warning{
			ID:             uuid.New().String(),
			UserID:         userID,
			Timestamp:      now,
			ExpirationTime: now.Add(c.lifetime),
			Reason:         cleanReason(rawReason),
		},
	}
}

// resolveSubject maps the name portion of an announcement to a user id.
// Raw mentions carry the id directly; anything else goes through the resolver.
func (c *Classifier) resolveSubject(guildID, name string) (string, error) {
	if m := mentionPattern.FindStringSubmatch(name); m != nil {
		return m[1], nil
	}

	// Announcements may prefix the name with an emoji like "<:success:123> Jane"
	if idx := strings.LastIndex(name, "> "); idx >= 0 {
		name = name[idx+2:]
	}

	// Strip a trailing discriminator ("Jane#7566")
	if idx := strings.Index(name, "#"); idx >= 0 {
		name = name[:idx]
	}
	name = strings.TrimSpace(name)

	if c.resolver == nil {
		return "", fmt.Errorf("no resolver configured for name %q", name)
	}

	userID, err := c.resolver.Resolve(guildID, name)
	if err != nil {
		return "", fmt.Errorf("could not resolve %q to a member: %w", name, err)
	}
	return userID, nil
}

// CleanContent normalizes markdown punctuation the chat client injects before
// the patterns run.
func CleanContent(content string) string {
	content = strings.ReplaceAll(content, "***", "")
	content = strings.ReplaceAll(content, "\\_", "_")
	content = strings.ReplaceAll(content, "\\*", "*")
	content = strings.ReplaceAll(content, "\\\\", "\\")
	return content
}

// cleanReason strips the single leading ", " separator the announcer puts
// between the sentence and the reason.
func cleanReason(reason string) string {
	reason = strings.TrimSpace(reason)
	reason = strings.TrimPrefix(reason, ", ")
	return strings.TrimSpace(reason)
}
