package community

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/nhle/widgetfeed/internal/logging"
	"github.com/nhle/widgetfeed/internal/model"
	"github.com/nhle/widgetfeed/internal/source"
)

// Adapter implements source.Source for the community notification API.
type Adapter struct {
	client *Client
	log    zerolog.Logger
}

var _ source.Source = (*Adapter)(nil)

// NewAdapter creates a new community source adapter.
func NewAdapter(baseURL, token string, opts ...ClientOption) *Adapter {
	return &Adapter{
		client: NewClient(baseURL, token, opts...),
		log:    logging.Component("community"),
	}
}

// FetchNotifications calls GET /notifications?userId=&limit=&widget=true.
// Items with an unknown type are logged and dropped.
func (a *Adapter) FetchNotifications(
	ctx context.Context,
	userID string,
	limit int,
) ([]model.WidgetNotification, error) {
	q := url.Values{}
	q.Set("userId", userID)
	q.Set("limit", strconv.Itoa(limit))
	q.Set("widget", "true")

	var resp NotificationsResponse
	if err := a.client.Get(ctx, "/notifications?"+q.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("fetching notifications: %w", err)
	}

	out := make([]model.WidgetNotification, 0, len(resp.Notifications))
	for _, n := range resp.Notifications {
		wn, err := toWidgetNotification(n)
		if err != nil {
			a.log.Warn().Err(err).Str("notification_id", n.ID).Msg("dropping notification")
			continue
		}
		out = append(out, wn)
	}

	return out, nil
}

// UnreadCount calls GET /notifications/unread-count/{userId}.
func (a *Adapter) UnreadCount(ctx context.Context, userID string) (int, error) {
	var resp UnreadCountResponse
	path := "/notifications/unread-count/" + url.PathEscape(userID)
	if err := a.client.Get(ctx, path, &resp); err != nil {
		return 0, fmt.Errorf("fetching unread count: %w", err)
	}
	return resp.Count, nil
}

// MarkRead calls PUT /notifications/{id}/read.
func (a *Adapter) MarkRead(ctx context.Context, notificationID, userID string) error {
	path := "/notifications/" + url.PathEscape(notificationID) + "/read"
	if err := a.client.Put(ctx, path, MarkReadRequest{UserID: userID}, nil); err != nil {
		return fmt.Errorf("marking notification %s read: %w", notificationID, err)
	}
	return nil
}

func toWidgetNotification(n Notification) (model.WidgetNotification, error) {
	if n.ID == "" {
		return model.WidgetNotification{}, fmt.Errorf("notification has no id")
	}

	typ, err := model.ParseNotificationType(n.Type)
	if err != nil {
		return model.WidgetNotification{}, err
	}

	return model.WidgetNotification{
		ID:        n.ID,
		Title:     n.Title,
		Message:   n.Message,
		Type:      typ,
		Timestamp: n.Timestamp,
		Read:      n.Read,
		UserID:    n.UserID,
		UserName:  n.UserName,
	}, nil
}
