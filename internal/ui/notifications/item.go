package notifications

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/widgetfeed/internal/model"
	"github.com/nhle/widgetfeed/internal/theme"
)

// NotificationItem wraps a model.WidgetNotification so it can be used in a
// bubbles/list.
type NotificationItem struct {
	Notification model.WidgetNotification
}

// FilterValue returns the string used for fuzzy filtering.
func (i NotificationItem) FilterValue() string { return i.Notification.Title }

// Title returns the notification title for the list.
func (i NotificationItem) Title() string { return i.Notification.Title }

// Description returns the notification body.
func (i NotificationItem) Description() string { return i.Notification.Message }

// ItemDelegate implements list.ItemDelegate for rendering notifications.
type ItemDelegate struct {
	now func() time.Time
}

// Height returns the number of lines each item takes.
func (d ItemDelegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d ItemDelegate) Spacing() int { return 0 }

// Update handles per-item messages (unused).
func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single notification line.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ni, ok := item.(NotificationItem)
	if !ok {
		return
	}
	fmt.Fprint(w, d.renderLine(ni.Notification, index == m.Index()))
}

func (d ItemDelegate) renderLine(n model.WidgetNotification, isSelected bool) string {
	marker := " "
	if !n.Read {
		marker = theme.UnreadDotStyle.Render("●")
	}

	badge := theme.TypeStyle(n.Type).Render(theme.TypeLabel(n.Type))
	age := theme.AgeStyle.Render(relativeTime(n.Time(), d.clock()))

	title := n.Title
	if n.UserName != "" {
		title = fmt.Sprintf("%s · %s", title, n.UserName)
	}

	line := fmt.Sprintf("%s %s %s  %s", marker, badge, title, age)
	if n.Read {
		line = theme.DimmedStyle.Render(line)
	}

	if isSelected {
		return theme.SelectedItemStyle.Render(line)
	}
	return theme.ListItemStyle.Render(line)
}

func (d ItemDelegate) clock() time.Time {
	if d.now == nil {
		return time.Now()
	}
	return d.now()
}

// relativeTime returns a human-friendly age of t relative to now.
func relativeTime(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}

	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return fmt.Sprintf("%dw ago", int(d.Hours()/24/7))
	}
}
