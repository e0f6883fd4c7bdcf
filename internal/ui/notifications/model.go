// Package notifications is the terminal rendering of the notification
// widget: a short list of recent notifications with an unread badge,
// refreshed in the background while it is open.
package notifications

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/widgetfeed/internal/keys"
	"github.com/nhle/widgetfeed/internal/model"
	"github.com/nhle/widgetfeed/internal/theme"
	"github.com/nhle/widgetfeed/internal/widget"
)

// Feed is the part of widget.Service the view depends on.
type Feed interface {
	Snapshot(ctx context.Context, userID string, limit int) widget.Snapshot
	UnreadCount(ctx context.Context, userID string) int
	MarkAsRead(ctx context.Context, notificationID, userID string) bool
	ClearCache(ctx context.Context)
	Subscribe(userID string, onUpdate func([]model.WidgetNotification)) func()
}

// SnapshotMsg carries a full reload of the widget.
type SnapshotMsg struct {
	Snapshot widget.Snapshot
}

// UpdateMsg carries a list delivered by the background subscription.
type UpdateMsg struct {
	Notifications []model.WidgetNotification
}

// UnreadMsg carries a fresh unread count.
type UnreadMsg struct {
	Count int
}

// MarkedMsg reports the outcome of a mark-as-read request.
type MarkedMsg struct {
	ID string
	OK bool
}

// Model is the notification widget view.
type Model struct {
	feed   Feed
	keys   *keys.KeyMap
	list   list.Model
	help   help.Model
	userID string
	limit  int
	now    func() time.Time

	updates     chan []model.WidgetNotification
	unsubscribe func()
	done        chan struct{}
	closeOnce   *sync.Once

	unread    int
	loaded    bool
	updatedAt time.Time
	status    string
	failed    bool
	width     int
	height    int
}

// Option customizes a Model.
type Option func(*Model)

// WithClock replaces time.Now for relative ages.
func WithClock(now func() time.Time) Option {
	return func(m *Model) { m.now = now }
}

// New creates the widget view and starts the background subscription.
// Close must be called once the program exits.
func New(feed Feed, k *keys.KeyMap, userID string, limit int, opts ...Option) Model {
	m := Model{
		feed:      feed,
		keys:      k,
		help:      help.New(),
		userID:    userID,
		limit:     limit,
		now:       time.Now,
		updates:   make(chan []model.WidgetNotification, 1),
		done:      make(chan struct{}),
		closeOnce: &sync.Once{},
		width:     60,
		height:    limit + 6,
	}
	for _, opt := range opts {
		opt(&m)
	}

	l := list.New([]list.Item{}, ItemDelegate{now: m.now}, m.width, m.listHeight())
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.SetShowPagination(false)
	m.list = l

	updates := m.updates
	m.unsubscribe = feed.Subscribe(userID, func(ns []model.WidgetNotification) {
		// Keep only the newest pending update.
		select {
		case <-updates:
		default:
		}
		select {
		case updates <- ns:
		default:
		}
	})

	return m
}

// Close stops the background subscription and releases a pending
// waitForUpdate command. It is safe to call more than once.
func (m Model) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
	if m.closeOnce != nil {
		m.closeOnce.Do(func() { close(m.done) })
	}
}

// Init loads the first snapshot and starts listening for updates.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.load(), m.waitForUpdate())
}

// Update handles messages for the widget view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case SnapshotMsg:
		m.loaded = true
		m.unread = msg.Snapshot.UnreadCount
		m.updatedAt = msg.Snapshot.FetchedAt
		m.status, m.failed = "", false
		return m, m.setNotifications(msg.Snapshot.Notifications)

	case UpdateMsg:
		m.updatedAt = m.now()
		cmd := m.setNotifications(msg.Notifications)
		return m, tea.Batch(cmd, m.loadUnread(), m.waitForUpdate())

	case UnreadMsg:
		m.unread = msg.Count
		return m, nil

	case MarkedMsg:
		if msg.OK {
			m.status, m.failed = "", false
			return m, nil
		}
		m.status, m.failed = "could not mark notification as read", true
		return m, m.setRead(msg.ID, false)

	case tea.KeyMsg:
		return m.handleKeys(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		m.status, m.failed = "refreshing…", false
		return m, m.refresh()

	case key.Matches(msg, m.keys.MarkRead):
		item, ok := m.list.SelectedItem().(NotificationItem)
		if !ok || item.Notification.Read {
			return m, nil
		}
		cmd := m.setRead(item.Notification.ID, true)
		return m, tea.Batch(cmd, m.markRead(item.Notification.ID))
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// setRead flips the read flag of one notification locally and keeps the
// unread badge in step.
func (m *Model) setRead(id string, read bool) tea.Cmd {
	for i, it := range m.list.Items() {
		ni, ok := it.(NotificationItem)
		if !ok || ni.Notification.ID != id || ni.Notification.Read == read {
			continue
		}
		ni.Notification.Read = read
		if read {
			m.unread = max(0, m.unread-1)
		} else {
			m.unread++
		}
		return m.list.SetItem(i, ni)
	}
	return nil
}

func (m *Model) setNotifications(ns []model.WidgetNotification) tea.Cmd {
	items := make([]list.Item, len(ns))
	for i, n := range ns {
		items[i] = NotificationItem{Notification: n}
	}
	return m.list.SetItems(items)
}

// Notifications returns the notifications currently shown.
func (m Model) Notifications() []model.WidgetNotification {
	items := m.list.Items()
	out := make([]model.WidgetNotification, 0, len(items))
	for _, it := range items {
		if ni, ok := it.(NotificationItem); ok {
			out = append(out, ni.Notification)
		}
	}
	return out
}

// Unread returns the unread count shown in the badge.
func (m Model) Unread() int { return m.unread }

// Status returns the transient status line.
func (m Model) Status() string { return m.status }

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width-4, m.listHeight())
	m.help.Width = width - 4
}

func (m Model) listHeight() int {
	return max(1, min(m.limit, m.height-6))
}

// View renders the widget.
func (m Model) View() string {
	header := theme.HeaderStyle.Render("Notifications")
	if m.unread > 0 {
		header = lipgloss.JoinHorizontal(lipgloss.Top, header, " ", theme.BadgeStyle.Render(strconv.Itoa(m.unread)))
	}

	var body string
	switch {
	case !m.loaded:
		body = theme.HelpStyle.Render("loading…")
	case len(m.list.Items()) == 0:
		body = theme.HelpStyle.Render("No notifications")
	default:
		body = m.list.View()
	}

	var status string
	switch {
	case m.failed:
		status = theme.ErrorStyle.Render(m.status)
	case m.status != "":
		status = theme.AgeStyle.Render(m.status)
	case !m.updatedAt.IsZero():
		status = theme.AgeStyle.Render(fmt.Sprintf("updated %s", relativeTime(m.updatedAt, m.now())))
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		header,
		"",
		body,
		"",
		status,
		m.help.View(m.keys),
	)
	return theme.WidgetFrameStyle.Width(max(m.width-2, 0)).Render(content)
}

// Commands

func (m Model) load() tea.Cmd {
	feed, userID, limit := m.feed, m.userID, m.limit
	return func() tea.Msg {
		return SnapshotMsg{Snapshot: feed.Snapshot(context.Background(), userID, limit)}
	}
}

func (m Model) refresh() tea.Cmd {
	feed, userID, limit := m.feed, m.userID, m.limit
	return func() tea.Msg {
		ctx := context.Background()
		feed.ClearCache(ctx)
		return SnapshotMsg{Snapshot: feed.Snapshot(ctx, userID, limit)}
	}
}

func (m Model) loadUnread() tea.Cmd {
	feed, userID := m.feed, m.userID
	return func() tea.Msg {
		return UnreadMsg{Count: feed.UnreadCount(context.Background(), userID)}
	}
}

// markRead asks the remote to mark a notification read and, on success,
// drops the cache so the next fetch reflects it.
func (m Model) markRead(id string) tea.Cmd {
	feed, userID := m.feed, m.userID
	return func() tea.Msg {
		ctx := context.Background()
		ok := feed.MarkAsRead(ctx, id, userID)
		if ok {
			feed.ClearCache(ctx)
		}
		return MarkedMsg{ID: id, OK: ok}
	}
}

func (m Model) waitForUpdate() tea.Cmd {
	updates, done := m.updates, m.done
	return func() tea.Msg {
		select {
		case ns := <-updates:
			return UpdateMsg{Notifications: ns}
		case <-done:
			return nil
		}
	}
}
