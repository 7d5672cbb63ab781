package services

import "encoding/json"

// Notification is the closed set of payloads pushed to a user's live
// sessions. Serialization happens at the transport boundary — the engines
// only deal in typed values.
type Notification interface {
	notificationType() string
}

// MissionCompletedNotice is pushed when a mission's completed flag first flips.
type MissionCompletedNotice struct {
	Title  string `json:"title"`
	XP     int64  `json:"xp"`
	Points int64  `json:"points"`
}

func (MissionCompletedNotice) notificationType() string { return "mission_completed" }

// BadgeUnlockedNotice is pushed on the first grant of a badge.
type BadgeUnlockedNotice struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

func (BadgeUnlockedNotice) notificationType() string { return "badge_unlocked" }

// EncodeNotification marshals a notification with its type discriminator.
func EncodeNotification(n Notification) ([]byte, error) {
	inner, err := json.Marshal(n)
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(inner, &fields); err != nil {
		return nil, err
	}
	typeTag, _ := json.Marshal(n.notificationType())
	fields["type"] = typeTag
	return json.Marshal(fields)
}

// Dispatcher delivers notifications to a user's currently-connected sessions.
// Delivery is best-effort: no sessions means the payload is dropped, and a
// send must never block the caller's business transaction.
type Dispatcher interface {
	Notify(externalUserID string, n Notification)
}

// NopDispatcher drops everything. Used when no transport is wired (and in tests).
type NopDispatcher struct{}

func (NopDispatcher) Notify(string, Notification) {}
