package widget

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nhle/widgetfeed/internal/model"
	"github.com/nhle/widgetfeed/internal/store"
)

// Store keys shared with the main application.
const (
	KeyNotifications = "widget:notifications"
	KeyLastUpdate    = "widget:last_update"
	KeyCurrentUser   = "widget:current_user"
)

// entry is a decoded cache entry.
type entry struct {
	notifications []model.WidgetNotification
	lastUpdate    time.Time
}

// fresh reports whether the entry is younger than ttl at now.
func (e entry) fresh(now time.Time, ttl time.Duration) bool {
	return now.Sub(e.lastUpdate) < ttl
}

// errNoCache means the cache is absent or only half written.
var errNoCache = errors.New("no cached notifications")

// readEntry loads both cache keys. A missing key on either side yields
// errNoCache; anything else is a storage or decoding failure.
func readEntry(ctx context.Context, kv store.KV) (entry, error) {
	rawList, err := kv.Get(ctx, KeyNotifications)
	if errors.Is(err, store.ErrNotFound) {
		return entry{}, errNoCache
	}
	if err != nil {
		return entry{}, err
	}

	rawTime, err := kv.Get(ctx, KeyLastUpdate)
	if errors.Is(err, store.ErrNotFound) {
		return entry{}, errNoCache
	}
	if err != nil {
		return entry{}, err
	}

	var e entry
	if err := json.Unmarshal([]byte(rawList), &e.notifications); err != nil {
		return entry{}, fmt.Errorf("decoding cached notifications: %w", err)
	}
	e.lastUpdate, err = time.Parse(time.RFC3339Nano, rawTime)
	if err != nil {
		return entry{}, fmt.Errorf("decoding cache timestamp: %w", err)
	}
	if e.notifications == nil {
		e.notifications = []model.WidgetNotification{}
	}

	return e, nil
}

// writeEntry stores the list and its timestamp in one call.
func writeEntry(ctx context.Context, kv store.KV, list []model.WidgetNotification, at time.Time) error {
	if list == nil {
		list = []model.WidgetNotification{}
	}

	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("encoding notifications: %w", err)
	}

	return kv.SetMany(ctx, map[string]string{
		KeyNotifications: string(data),
		KeyLastUpdate:    at.UTC().Format(time.RFC3339Nano),
	})
}
