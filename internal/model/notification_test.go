package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNotificationType(t *testing.T) {
	for _, typ := range NotificationTypes {
		got, err := ParseNotificationType(string(typ))
		require.NoError(t, err)
		assert.Equal(t, typ, got)
	}

	_, err := ParseNotificationType("Mention")
	assert.Error(t, err)
	_, err = ParseNotificationType("")
	assert.Error(t, err)
}

func TestWidgetNotification_JSONFieldNames(t *testing.T) {
	n := WidgetNotification{
		ID:        "n1",
		Title:     "Hi",
		Message:   "there",
		Type:      NotificationAchievement,
		Timestamp: "2026-01-02T03:04:05Z",
		Read:      true,
		UserID:    "u2",
		UserName:  "Ada",
	}

	data, err := json.Marshal(n)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id":"n1","title":"Hi","message":"there","type":"achievement",
		"timestamp":"2026-01-02T03:04:05Z","read":true,"userId":"u2","userName":"Ada"
	}`, string(data))

	data, err = json.Marshal(WidgetNotification{ID: "n2", Type: NotificationMessage})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "userId")
	assert.NotContains(t, string(data), "userName")
}

func TestWidgetNotification_Time(t *testing.T) {
	n := WidgetNotification{Timestamp: "2026-01-02T03:04:05.123Z"}
	assert.True(t, n.Time().Equal(time.Date(2026, 1, 2, 3, 4, 5, 123_000_000, time.UTC)))

	assert.True(t, WidgetNotification{}.Time().IsZero())
	assert.True(t, WidgetNotification{Timestamp: "yesterday"}.Time().IsZero())
}

func TestCountUnread(t *testing.T) {
	list := []WidgetNotification{{Read: true}, {}, {}}
	assert.Equal(t, 2, CountUnread(list))
	assert.Zero(t, CountUnread(nil))
}
