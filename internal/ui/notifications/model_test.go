package notifications

import (
	"context"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/widgetfeed/internal/keys"
	"github.com/nhle/widgetfeed/internal/model"
	"github.com/nhle/widgetfeed/internal/widget"
	"github.com/nhle/widgetfeed/tests/testutil"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type stubFeed struct {
	mu sync.Mutex

	snapshot widget.Snapshot
	unread   int
	markOK   bool

	snapshots    int
	clears       int
	marked       []string
	unsubscribes int
	onUpdate     func([]model.WidgetNotification)
}

func (f *stubFeed) Snapshot(context.Context, string, int) widget.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snapshots++
	return f.snapshot
}

func (f *stubFeed) UnreadCount(context.Context, string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.unread
}

func (f *stubFeed) MarkAsRead(_ context.Context, id, _ string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.marked = append(f.marked, id)
	return f.markOK
}

func (f *stubFeed) ClearCache(context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clears++
}

func (f *stubFeed) Subscribe(_ string, onUpdate func([]model.WidgetNotification)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onUpdate = onUpdate
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.unsubscribes++
	}
}

func newLoadedModel(t *testing.T, feed *stubFeed) Model {
	t.Helper()
	feed.snapshot = widget.Snapshot{
		Notifications: testutil.Notifications(3),
		UnreadCount:   3,
		FetchedAt:     testNow,
	}

	m := New(feed, keys.DefaultKeyMap(), "u1", 5, WithClock(func() time.Time { return testNow }))
	t.Cleanup(m.Close)

	next, _ := m.Update(m.load()())
	return next.(Model)
}

func press(t *testing.T, m Model, msg tea.KeyMsg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestModel_LoadsSnapshot(t *testing.T) {
	feed := &stubFeed{}
	m := newLoadedModel(t, feed)

	assert.Equal(t, 1, feed.snapshots)
	assert.Len(t, m.Notifications(), 3)
	assert.Equal(t, 3, m.Unread())

	view := m.View()
	assert.Contains(t, view, "Notifications")
	assert.Contains(t, view, "Notification 1")
	assert.Contains(t, view, "updated just now")
}

func TestModel_EmptyState(t *testing.T) {
	feed := &stubFeed{}
	m := New(feed, keys.DefaultKeyMap(), "u1", 5)
	t.Cleanup(m.Close)

	assert.Contains(t, m.View(), "loading")

	next, _ := m.Update(SnapshotMsg{Snapshot: widget.Snapshot{FetchedAt: testNow}})
	assert.Contains(t, next.(Model).View(), "No notifications")
}

func TestModel_MarkReadIsOptimistic(t *testing.T) {
	feed := &stubFeed{markOK: true}
	m := newLoadedModel(t, feed)

	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.True(t, m.Notifications()[0].Read)
	assert.Equal(t, 2, m.Unread())

	msg := m.markRead("n1")()
	assert.Equal(t, MarkedMsg{ID: "n1", OK: true}, msg)
	assert.Equal(t, []string{"n1"}, feed.marked)
	assert.Equal(t, 1, feed.clears)

	next, _ := m.Update(msg)
	m = next.(Model)
	assert.True(t, m.Notifications()[0].Read)
	assert.Empty(t, m.Status())
}

func TestModel_MarkReadFailureReverts(t *testing.T) {
	feed := &stubFeed{markOK: false}
	m := newLoadedModel(t, feed)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, 2, m.Unread())

	msg := m.markRead("n1")()
	assert.Equal(t, MarkedMsg{ID: "n1", OK: false}, msg)
	assert.Zero(t, feed.clears)

	next, _ := m.Update(msg)
	m = next.(Model)
	assert.False(t, m.Notifications()[0].Read)
	assert.Equal(t, 3, m.Unread())
	assert.Contains(t, m.Status(), "could not mark")
}

func TestModel_MarkReadSkipsReadItems(t *testing.T) {
	feed := &stubFeed{markOK: true}
	m := newLoadedModel(t, feed)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	_, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Equal(t, 2, m.Unread())
}

func TestModel_NavigateThenMarkRead(t *testing.T) {
	feed := &stubFeed{markOK: true}
	m := newLoadedModel(t, feed)

	m, _ = press(t, m, runeKey('j'))
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	got := m.Notifications()
	assert.False(t, got[0].Read)
	assert.True(t, got[1].Read)
}

func TestModel_RefreshClearsCache(t *testing.T) {
	feed := &stubFeed{}
	m := newLoadedModel(t, feed)

	m, cmd := press(t, m, runeKey('r'))
	require.NotNil(t, cmd)
	assert.Contains(t, m.Status(), "refreshing")

	msg := cmd()
	assert.IsType(t, SnapshotMsg{}, msg)
	assert.Equal(t, 1, feed.clears)
	assert.Equal(t, 2, feed.snapshots)

	next, _ := m.Update(msg)
	assert.Empty(t, next.(Model).Status())
}

func TestModel_Quit(t *testing.T) {
	m := newLoadedModel(t, &stubFeed{})

	_, cmd := press(t, m, runeKey('q'))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestModel_SubscriptionUpdates(t *testing.T) {
	feed := &stubFeed{unread: 1}
	m := newLoadedModel(t, feed)

	updated := testutil.Notifications(1)
	feed.mu.Lock()
	onUpdate := feed.onUpdate
	feed.mu.Unlock()
	require.NotNil(t, onUpdate)

	onUpdate(testutil.Notifications(2))
	onUpdate(updated)

	msg := m.waitForUpdate()()
	require.Equal(t, UpdateMsg{Notifications: updated}, msg)

	next, _ := m.Update(msg)
	m = next.(Model)
	assert.Len(t, m.Notifications(), 1)

	next, _ = m.Update(m.loadUnread()())
	assert.Equal(t, 1, next.(Model).Unread())
}

func TestModel_CloseUnsubscribes(t *testing.T) {
	feed := &stubFeed{}
	m := New(feed, keys.DefaultKeyMap(), "u1", 5)

	m.Close()
	m.Close()
	assert.Equal(t, 2, feed.unsubscribes)
}

func TestModel_CloseReleasesPendingUpdateWait(t *testing.T) {
	feed := &stubFeed{}
	m := New(feed, keys.DefaultKeyMap(), "u1", 5)

	got := make(chan tea.Msg, 1)
	go func() { got <- m.waitForUpdate()() }()

	m.Close()

	select {
	case msg := <-got:
		assert.Nil(t, msg)
	case <-time.After(time.Second):
		t.Fatal("update wait still blocked after Close")
	}
}

func TestRelativeTime(t *testing.T) {
	tests := []struct {
		ago  time.Duration
		want string
	}{
		{30 * time.Second, "just now"},
		{5 * time.Minute, "5m ago"},
		{3 * time.Hour, "3h ago"},
		{2 * 24 * time.Hour, "2d ago"},
		{21 * 24 * time.Hour, "3w ago"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, relativeTime(testNow.Add(-tt.ago), testNow))
		})
	}
	assert.Empty(t, relativeTime(time.Time{}, testNow))
}
