package model

import (
	"fmt"
	"time"
)

// NotificationType classifies a widget notification. The set is closed.
type NotificationType string

const (
	NotificationMessage      NotificationType = "message"
	NotificationMention      NotificationType = "mention"
	NotificationAnnouncement NotificationType = "announcement"
	NotificationAchievement  NotificationType = "achievement"
)

// NotificationTypes lists every valid NotificationType in display order.
var NotificationTypes = []NotificationType{
	NotificationMessage,
	NotificationMention,
	NotificationAnnouncement,
	NotificationAchievement,
}

// Valid reports whether t is one of the known notification types.
func (t NotificationType) Valid() bool {
	switch t {
	case NotificationMessage, NotificationMention,
		NotificationAnnouncement, NotificationAchievement:
		return true
	}
	return false
}

// ParseNotificationType converts a raw string into a NotificationType.
func ParseNotificationType(s string) (NotificationType, error) {
	t := NotificationType(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown notification type %q", s)
	}
	return t, nil
}

// WidgetNotification is a single notification surfaced to the widget.
// Field names match the remote API and the persisted cache payload.
type WidgetNotification struct {
	// ID is the opaque unique identifier assigned by the remote source.
	ID string `json:"id"`

	Title   string `json:"title"`
	Message string `json:"message"`

	Type NotificationType `json:"type"`

	// Timestamp is when the notification was generated, in ISO-8601.
	Timestamp string `json:"timestamp"`

	// Read is only changed by an explicit mark-as-read.
	Read bool `json:"read"`

	// UserID and UserName identify the originating actor, if any.
	UserID   string `json:"userId,omitempty"`
	UserName string `json:"userName,omitempty"`
}

// Time parses Timestamp. The zero time is returned when it is empty or
// not a valid RFC 3339 value.
func (n WidgetNotification) Time() time.Time {
	if n.Timestamp == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, n.Timestamp)
	if err != nil {
		return time.Time{}
	}
	return t
}

// CountUnread returns how many notifications in the list are unread.
func CountUnread(list []WidgetNotification) int {
	n := 0
	for _, item := range list {
		if !item.Read {
			n++
		}
	}
	return n
}
