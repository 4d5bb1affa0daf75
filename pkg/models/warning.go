// Package models contains the data structures persisted by the bot.
package models

import "time"

// Never is the sentinel expiration for warnings that do not expire.
// Only present in old records; new warnings always get a computed lifetime.
var Never = time.Date(9999, time.January, 1, 0, 0, 0, 0, time.UTC)

// Warning represents a single disciplinary action against a user.
// Warnings are immutable once created; the only later mutation is the
// bulk expire operation, which rewrites ExpirationTime to "now".
type Warning struct {
	ID             string    `bson:"id" json:"id"`
	UserID         string    `bson:"user_id" json:"userId"`
	Timestamp      time.Time `bson:"timestamp" json:"timestamp"`
	ExpirationTime time.Time `bson:"expiration_time" json:"expirationTime"`
	Reason         string    `bson:"reason,omitempty" json:"reason,omitempty"`
	// ModName is the display name of whoever issued the warning. Older
	// schema versions did not store it, so it may be empty.
	ModName string `bson:"mod_name,omitempty" json:"modName,omitempty"`
}

// Active reports whether the warning has not yet expired at the given time.
func (w *Warning) Active(now time.Time) bool {
	return w.ExpirationTime.After(now)
}

// Expired is the complement of Active.
func (w *Warning) Expired(now time.Time) bool {
	return !w.Active(now)
}

// DateString formats the issue date for embeds.
func (w *Warning) DateString() string {
	return w.Timestamp.Format("Jan-02-2006")
}

// TimestampString formats the issue time for embeds.
func (w *Warning) TimestampString() string {
	return w.Timestamp.Format("Jan-02-2006 15:04")
}

// ExpirationString formats the expiration time for embeds.
func (w *Warning) ExpirationString() string {
	return w.ExpirationTime.Format("Jan-02-2006 15:04")
}

// Equal compares two warnings field for field.
func (w *Warning) Equal(other *Warning) bool {
	if other == nil {
		return false
	}
	return w.ID == other.ID &&
		w.UserID == other.UserID &&
		w.Timestamp.Equal(other.Timestamp) &&
		w.ExpirationTime.Equal(other.ExpirationTime) &&
		w.Reason == other.Reason &&
		w.ModName == other.ModName
}
