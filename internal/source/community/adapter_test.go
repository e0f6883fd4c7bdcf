package community

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/widgetfeed/internal/model"
	"github.com/nhle/widgetfeed/internal/source"
	"github.com/nhle/widgetfeed/tests/testutil"
)

func TestAdapter_FetchNotifications(t *testing.T) {
	remote := testutil.NewFakeRemote(t)
	remote.SetNotifications("u1", testutil.Notifications(7))

	a := NewAdapter(remote.URL(), "secret")

	got, err := a.FetchNotifications(context.Background(), "u1", 5)
	require.NoError(t, err)

	assert.Len(t, got, 5)
	assert.Equal(t, "n1", got[0].ID)
	assert.Equal(t, "u1", remote.LastQuery("userId"))
	assert.Equal(t, "5", remote.LastQuery("limit"))
	assert.Equal(t, "true", remote.LastQuery("widget"))
	assert.Equal(t, []string{"Bearer secret"}, remote.AuthHeaders())
}

func TestAdapter_FetchNotificationsWithoutToken(t *testing.T) {
	remote := testutil.NewFakeRemote(t)
	a := NewAdapter(remote.URL(), "")

	got, err := a.FetchNotifications(context.Background(), "u1", 5)
	require.NoError(t, err)

	assert.Empty(t, got)
	assert.Equal(t, []string{""}, remote.AuthHeaders())
}

func TestAdapter_FetchDropsUnknownTypes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"notifications":[
			{"id":"a","title":"ok","type":"mention","timestamp":"2026-01-01T00:00:00Z"},
			{"id":"b","title":"weird","type":"poke","timestamp":"2026-01-01T00:00:00Z"},
			{"id":"","title":"no id","type":"message"}
		]}`))
	}))
	t.Cleanup(srv.Close)

	got, err := NewAdapter(srv.URL, "").FetchNotifications(context.Background(), "u1", 5)
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, model.NotificationMention, got[0].Type)
}

func TestAdapter_UnreadCount(t *testing.T) {
	remote := testutil.NewFakeRemote(t)
	list := testutil.Notifications(4)
	list[1].Read = true
	remote.SetNotifications("u 1", list)

	count, err := NewAdapter(remote.URL(), "").UnreadCount(context.Background(), "u 1")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestAdapter_MarkRead(t *testing.T) {
	ctx := context.Background()
	remote := testutil.NewFakeRemote(t)
	remote.SetNotifications("u1", testutil.Notifications(2))

	a := NewAdapter(remote.URL(), "")
	require.NoError(t, a.MarkRead(ctx, "n1", "u1"))

	count, err := a.UnreadCount(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestAdapter_MarkReadNotFound(t *testing.T) {
	remote := testutil.NewFakeRemote(t)

	err := NewAdapter(remote.URL(), "").MarkRead(context.Background(), "missing", "u1")

	var statusErr *source.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	assert.Equal(t, "notification not found", statusErr.Body)
}

func TestAdapter_Unauthorized(t *testing.T) {
	remote := testutil.NewFakeRemote(t)
	remote.Fail(http.StatusUnauthorized)

	_, err := NewAdapter(remote.URL(), "bad").UnreadCount(context.Background(), "u1")
	assert.True(t, source.IsAuthError(err))
}

func TestAdapter_ServerError(t *testing.T) {
	remote := testutil.NewFakeRemote(t)
	remote.Fail(http.StatusServiceUnavailable)

	_, err := NewAdapter(remote.URL(), "").FetchNotifications(context.Background(), "u1", 5)

	var statusErr *source.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.StatusCode)
	assert.Equal(t, 1, remote.Calls(testutil.RouteList))
}

func TestClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)

	a := NewAdapter(srv.URL, "", WithTimeout(50*time.Millisecond))
	_, err := a.UnreadCount(context.Background(), "u1")
	assert.Error(t, err)
}

func TestClient_SetsRequestID(t *testing.T) {
	var (
		mu  sync.Mutex
		ids []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		ids = append(ids, r.Header.Get("X-Request-ID"))
		mu.Unlock()
		_, _ = w.Write([]byte(`{"count":0}`))
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL+"/", "")
	var resp UnreadCountResponse
	require.NoError(t, c.Get(context.Background(), "/x", &resp))
	require.NoError(t, c.Get(context.Background(), "/x", &resp))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, ids, 2)
	assert.NotEmpty(t, ids[0])
	assert.NotEqual(t, ids[0], ids[1])
}
