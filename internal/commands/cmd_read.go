package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

type ReadCmd struct {
	flags *Flags
	app   *App

	// flags
	user string
}

// NewReadCmd creates a new read command
func NewReadCmd(flags *Flags, app *App) *ReadCmd {
	return &ReadCmd{flags: flags, app: app}
}

// Register adds the read command to the application
func (cmd *ReadCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "read",
		Usage:     "Mark a notification as read",
		UsageText: "widgetfeed read <notification-id> [--user ID]",
		Description: `Marks the notification read on the community API, then clears the widget
cache so the next fetch shows the change.`,
		Flags:  []cli.Flag{userFlag(&cmd.user)},
		Action: cmd.run,
	})

	return app
}

func (cmd *ReadCmd) run(ctx context.Context, c *cli.Command) error {
	if err := cmd.app.Config.RequireAPI(); err != nil {
		return err
	}

	id := c.Args().First()
	if id == "" {
		return fmt.Errorf("notification id is required")
	}

	userID, err := cmd.app.resolveUser(ctx, cmd.user)
	if err != nil {
		return err
	}

	if !cmd.app.Widget.MarkAsRead(ctx, id, userID) {
		return fmt.Errorf("could not mark %s as read", id)
	}
	cmd.app.Widget.ClearCache(ctx)

	_, err = fmt.Fprintf(c.Root().Writer, "marked %s as read\n", id)
	return err
}
