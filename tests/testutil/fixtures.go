package testutil

import (
	"fmt"
	"time"

	"github.com/nhle/widgetfeed/internal/model"
)

// fixtureEpoch anchors fixture timestamps so tests are deterministic.
var fixtureEpoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// Notifications returns n unread notifications with IDs n1..nN, newest
// first, cycling through every notification type.
func Notifications(n int) []model.WidgetNotification {
	out := make([]model.WidgetNotification, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, model.WidgetNotification{
			ID:        fmt.Sprintf("n%d", i),
			Title:     fmt.Sprintf("Notification %d", i),
			Message:   fmt.Sprintf("Body of notification %d", i),
			Type:      model.NotificationTypes[(i-1)%len(model.NotificationTypes)],
			Timestamp: fixtureEpoch.Add(-time.Duration(i) * time.Minute).Format(time.RFC3339),
			UserID:    fmt.Sprintf("actor%d", i),
			UserName:  fmt.Sprintf("Actor %d", i),
		})
	}
	return out
}
