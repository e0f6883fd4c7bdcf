// Package widget serves the notification widget from a short-lived
// persistent cache in front of the remote notification source.
//
// Every operation degrades instead of failing: remote and storage errors
// are logged and replaced with the best data available (a stale cache
// entry, an empty list, a zero count, or false).
package widget

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/nhle/widgetfeed/internal/logging"
	"github.com/nhle/widgetfeed/internal/model"
	"github.com/nhle/widgetfeed/internal/source"
	"github.com/nhle/widgetfeed/internal/store"
	appsync "github.com/nhle/widgetfeed/internal/sync"
)

// Defaults applied by New.
const (
	DefaultTTL          = 5 * time.Minute
	DefaultPollInterval = 30 * time.Second
	DefaultLimit        = 5
)

// Service is the widget notification cache. It is safe for concurrent use.
type Service struct {
	src source.Source
	kv  store.KV

	ttl          time.Duration
	pollInterval time.Duration
	limit        int
	now          func() time.Time
	log          zerolog.Logger
}

// Option customizes a Service.
type Option func(*Service)

// WithTTL sets the freshness window of the cache.
func WithTTL(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.ttl = d
		}
	}
}

// WithPollInterval sets the period used by Subscribe.
func WithPollInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.pollInterval = d
		}
	}
}

// WithLimit sets the default number of notifications requested.
func WithLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.limit = n
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLogger replaces the component logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) { s.log = l }
}

// New creates a Service reading from src and caching into kv.
func New(src source.Source, kv store.KV, opts ...Option) *Service {
	s := &Service{
		src:          src,
		kv:           kv,
		ttl:          DefaultTTL,
		pollInterval: DefaultPollInterval,
		limit:        DefaultLimit,
		now:          time.Now,
		log:          logging.Component("widget"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Limit returns the default number of notifications requested.
func (s *Service) Limit() int {
	return s.limit
}

// FetchNotifications returns the cached notifications while the cache is
// fresh. Otherwise it asks the remote for up to limit notifications and
// caches the result. If the remote fails, any cached entry is returned
// regardless of age; with no cache the result is empty. A limit <= 0 uses
// the service default. The result never holds more than limit items, even
// when the cache was filled by a call with a larger limit.
func (s *Service) FetchNotifications(ctx context.Context, userID string, limit int) []model.WidgetNotification {
	if userID == "" {
		s.log.Warn().Msg("fetch notifications: no user id")
		return []model.WidgetNotification{}
	}
	if limit <= 0 {
		limit = s.limit
	}

	cached, cacheErr := readEntry(ctx, s.kv)
	switch {
	case cacheErr == nil && cached.fresh(s.now(), s.ttl):
		s.log.Debug().
			Str("user_id", userID).
			Time("last_update", cached.lastUpdate).
			Msg("widget cache hit")
		return truncate(cached.notifications, limit)
	case cacheErr != nil && !errors.Is(cacheErr, errNoCache):
		s.log.Error().Err(cacheErr).Msg("reading widget cache")
	}

	list, err := s.src.FetchNotifications(ctx, userID, limit)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("fetching notifications from remote")
		if cacheErr == nil {
			return truncate(cached.notifications, limit)
		}
		return []model.WidgetNotification{}
	}
	if list == nil {
		list = []model.WidgetNotification{}
	}

	if err := writeEntry(ctx, s.kv, list, s.now()); err != nil {
		s.log.Error().Err(err).Msg("writing widget cache")
	}

	s.log.Debug().Str("user_id", userID).Int("count", len(list)).Msg("widget cache refreshed")
	return truncate(list, limit)
}

func truncate(list []model.WidgetNotification, limit int) []model.WidgetNotification {
	return list[:min(limit, len(list))]
}

// UnreadCount asks the remote for the user's unread count. It never
// touches the cache and returns 0 on any failure.
func (s *Service) UnreadCount(ctx context.Context, userID string) int {
	if userID == "" {
		s.log.Warn().Msg("unread count: no user id")
		return 0
	}

	n, err := s.src.UnreadCount(ctx, userID)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("fetching unread count")
		return 0
	}
	if n < 0 {
		return 0
	}
	return n
}

// MarkAsRead marks a notification read on the remote. The cache is left
// untouched; callers that want the next fetch to reflect the change must
// call ClearCache after a successful mark.
func (s *Service) MarkAsRead(ctx context.Context, notificationID, userID string) bool {
	if notificationID == "" || userID == "" {
		s.log.Warn().
			Str("notification_id", notificationID).
			Str("user_id", userID).
			Msg("mark as read: missing id")
		return false
	}

	if err := s.src.MarkRead(ctx, notificationID, userID); err != nil {
		s.log.Warn().Err(err).Str("notification_id", notificationID).Msg("marking notification read")
		return false
	}
	return true
}

// ClearCache removes the cached list and its timestamp.
func (s *Service) ClearCache(ctx context.Context) {
	if err := s.kv.Delete(ctx, KeyNotifications, KeyLastUpdate); err != nil {
		s.log.Error().Err(err).Msg("clearing widget cache")
	}
}

// Refresh is a user-initiated refresh: the cache is cleared and the
// notifications fetched again.
func (s *Service) Refresh(ctx context.Context, userID string, limit int) []model.WidgetNotification {
	s.ClearCache(ctx)
	return s.FetchNotifications(ctx, userID, limit)
}

// Snapshot is everything the widget renders in one refresh.
type Snapshot struct {
	Notifications []model.WidgetNotification
	UnreadCount   int
	FetchedAt     time.Time
}

// Snapshot fetches the notifications and the unread count concurrently.
func (s *Service) Snapshot(ctx context.Context, userID string, limit int) Snapshot {
	var (
		g      errgroup.Group
		list   []model.WidgetNotification
		unread int
	)

	g.Go(func() error {
		list = s.FetchNotifications(ctx, userID, limit)
		return nil
	})
	g.Go(func() error {
		unread = s.UnreadCount(ctx, userID)
		return nil
	})
	_ = g.Wait()

	return Snapshot{
		Notifications: list,
		UnreadCount:   unread,
		FetchedAt:     s.now(),
	}
}

// Subscribe polls the notifications every poll interval and passes each
// result to onUpdate. The first update arrives one interval after the
// call. The returned function stops polling; it may be called any number
// of times. A fetch already in flight when it is called still completes
// and updates the cache, but onUpdate is not invoked for it. Once
// unsubscribe returns, onUpdate is never called again; it waits for a
// running onUpdate to return, so onUpdate must not call unsubscribe.
func (s *Service) Subscribe(userID string, onUpdate func([]model.WidgetNotification)) (unsubscribe func()) {
	var (
		mu      sync.Mutex
		stopped bool
	)

	job := appsync.Every(s.pollInterval, func(ctx context.Context) {
		list := s.FetchNotifications(ctx, userID, s.limit)

		mu.Lock()
		defer mu.Unlock()
		if stopped {
			return
		}
		onUpdate(list)
	})

	s.log.Debug().Str("user_id", userID).Dur("interval", s.pollInterval).Msg("widget subscription started")

	return func() {
		mu.Lock()
		already := stopped
		stopped = true
		mu.Unlock()
		if already {
			return
		}

		job.Stop()
		s.log.Debug().Str("user_id", userID).Msg("widget subscription stopped")
	}
}

// CurrentUser returns the user id the widget was bootstrapped with.
func (s *Service) CurrentUser(ctx context.Context) (string, bool) {
	id, err := s.kv.Get(ctx, KeyCurrentUser)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.log.Error().Err(err).Msg("reading current user")
		}
		return "", false
	}
	return id, id != ""
}

// SetCurrentUser records the signed-in user for widget bootstrap.
func (s *Service) SetCurrentUser(ctx context.Context, userID string) error {
	if userID == "" {
		return s.kv.Delete(ctx, KeyCurrentUser)
	}
	return store.Set(ctx, s.kv, KeyCurrentUser, userID)
}
