package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

type UnreadCmd struct {
	flags *Flags
	app   *App

	// flags
	user string
}

// NewUnreadCmd creates a new unread command
func NewUnreadCmd(flags *Flags, app *App) *UnreadCmd {
	return &UnreadCmd{flags: flags, app: app}
}

// Register adds the unread command to the application
func (cmd *UnreadCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "unread",
		Usage:     "Print the unread notification count",
		UsageText: "widgetfeed unread [--user ID]",
		Description: `Asks the community API for the unread count. The count is never cached;
0 is printed when the API cannot be reached.`,
		Flags:  []cli.Flag{userFlag(&cmd.user)},
		Action: cmd.run,
	})

	return app
}

func (cmd *UnreadCmd) run(ctx context.Context, c *cli.Command) error {
	if err := cmd.app.Config.RequireAPI(); err != nil {
		return err
	}

	userID, err := cmd.app.resolveUser(ctx, cmd.user)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(c.Root().Writer, cmd.app.Widget.UnreadCount(ctx, userID))
	return err
}
