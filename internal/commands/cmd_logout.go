package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/nhle/widgetfeed/internal/credential"
)

type LogoutCmd struct {
	flags *Flags
	app   *App

	deleteToken func() error
}

// NewLogoutCmd creates a new logout command
func NewLogoutCmd(flags *Flags, app *App) *LogoutCmd {
	return &LogoutCmd{
		flags: flags,
		app:   app,
		deleteToken: func() error {
			return credential.Delete(credential.APITokenKey)
		},
	}
}

// Register adds the logout command to the application
func (cmd *LogoutCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "logout",
		Usage:     "Forget the API token, the widget user and the cached list",
		UsageText: "widgetfeed logout",
		Action:    cmd.run,
	})

	return app
}

func (cmd *LogoutCmd) run(ctx context.Context, _ *cli.Command) error {
	if err := cmd.deleteToken(); err != nil {
		return fmt.Errorf("delete token: %w", err)
	}
	if err := cmd.app.Widget.SetCurrentUser(ctx, ""); err != nil {
		return fmt.Errorf("forget user: %w", err)
	}
	cmd.app.Widget.ClearCache(ctx)
	return nil
}
