package commands

import (
	"context"

	"github.com/urfave/cli/v3"
)

type ClearCmd struct {
	flags *Flags
	app   *App
}

// NewClearCmd creates a new clear command
func NewClearCmd(flags *Flags, app *App) *ClearCmd {
	return &ClearCmd{flags: flags, app: app}
}

// Register adds the clear command to the application
func (cmd *ClearCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "clear",
		Usage:     "Clear the cached notification list",
		UsageText: "widgetfeed clear",
		Action:    cmd.run,
	})

	return app
}

func (cmd *ClearCmd) run(ctx context.Context, _ *cli.Command) error {
	cmd.app.Widget.ClearCache(ctx)
	return nil
}
