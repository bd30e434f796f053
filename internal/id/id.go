package id

import (
	"strings"

	"github.com/google/uuid"
)

// NotificationPrefix prefixes every notification record key in the store.
const NotificationPrefix = "notification_"

// shortLen is the number of characters shown for IDs in terminal output.
const shortLen = 8

// New returns a fresh random identifier.
func New() string {
	return uuid.NewString()
}

// NotificationKey returns the store key for a notification body.
// "3f2a..." -> "notification_3f2a..."
func NotificationKey(notificationID string) string {
	return NotificationPrefix + notificationID
}

// Short returns the leading characters of an ID for display.
func Short(full string) string {
	if len(full) <= shortLen {
		return full
	}
	return full[:shortLen]
}

// MatchesPrefix reports whether full starts with a user-typed prefix.
// An empty prefix never matches.
func MatchesPrefix(full, prefix string) bool {
	return prefix != "" && strings.HasPrefix(strings.ToLower(full), strings.ToLower(prefix))
}
