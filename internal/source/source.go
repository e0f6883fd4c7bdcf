package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/nhle/widgetfeed/internal/model"
)

// AuthError indicates that authentication has failed or expired.
// It is returned by source clients when a 401 response is received.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth error: %s", e.Message)
}

// IsAuthError reports whether err (or any error in its chain) is an AuthError.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// StatusError is returned for any other non-2xx response.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d on %s %s: %s", e.StatusCode, e.Method, e.Path, e.Body)
}

// Source is the remote system of record for widget notifications.
type Source interface {
	// FetchNotifications returns up to limit notifications for the user,
	// newest first.
	FetchNotifications(ctx context.Context, userID string, limit int) ([]model.WidgetNotification, error)

	// UnreadCount returns the number of unread notifications for the user.
	UnreadCount(ctx context.Context, userID string) (int, error)

	// MarkRead flags a single notification as read.
	MarkRead(ctx context.Context, notificationID, userID string) error
}
