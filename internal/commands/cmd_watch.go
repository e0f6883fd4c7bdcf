package commands

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/nhle/widgetfeed/internal/keys"
	"github.com/nhle/widgetfeed/internal/ui/notifications"
)

type WatchCmd struct {
	flags *Flags
	app   *App

	// flags
	user string
}

// NewWatchCmd creates a new watch command
func NewWatchCmd(flags *Flags, app *App) *WatchCmd {
	return &WatchCmd{flags: flags, app: app}
}

// Register adds the watch command to the application
func (cmd *WatchCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "watch",
		Usage:     "Open the notification widget in the terminal",
		UsageText: "widgetfeed watch [--user ID]",
		Description: `Shows the most recent notifications with an unread badge and polls for new
ones in the background.

Keys: j/k move, enter marks read, r refreshes, q quits.`,
		Flags:  []cli.Flag{userFlag(&cmd.user)},
		Action: cmd.run,
	})

	return app
}

func (cmd *WatchCmd) run(ctx context.Context, _ *cli.Command) error {
	if err := cmd.app.Config.RequireAPI(); err != nil {
		return err
	}

	userID, err := cmd.app.resolveUser(ctx, cmd.user)
	if err != nil {
		return err
	}

	m := notifications.New(cmd.app.Widget, keys.DefaultKeyMap(), userID, cmd.app.Widget.Limit())
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run widget: %w", err)
	}
	return nil
}
