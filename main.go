package main

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/nhle/widgetfeed/internal/commands"
	"github.com/nhle/widgetfeed/internal/credential"
	"github.com/nhle/widgetfeed/internal/logging"
	"github.com/nhle/widgetfeed/internal/model"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	version = "dev"
	commit  = "HEAD"
)

func build() string {
	v, c := version, commit
	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if mv := info.Main.Version; mv != "" && mv != "(devel)" {
				v = mv
			}
			for _, s := range info.Settings {
				if s.Key == "vcs.revision" {
					c = s.Value
				}
			}
		}
	}
	if len(c) > 7 {
		c = c[:7]
	}
	return fmt.Sprintf("%s (%s)", v, c)
}

func main() {
	ctx := context.Background()

	var logCloser func()

	flags := &commands.Flags{}
	widgetApp := &commands.App{}

	app := &cli.Command{
		Name:      "widgetfeed",
		Usage:     "Community notification widget backed by a short-lived local cache",
		UsageText: "widgetfeed [global options] command [command options]",
		Description: `widgetfeed shows the most recent community notifications for a user.

Fetched lists are cached for a few minutes in a local SQLite database (or
Redis) so the widget stays fast and keeps showing the last known list when
the community API is unreachable.

Run 'widgetfeed login' first, then 'widgetfeed watch'.`,
		Version: build(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error)",
				Sources:     cli.EnvVars("WIDGETFEED_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file",
				Sources:     cli.EnvVars("WIDGETFEED_LOG_FILE"),
				Value:       commands.DefaultLogFile(),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("WIDGETFEED_CONFIG"),
				Value:       commands.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "data-dir",
				Usage:       "path to data directory",
				Sources:     cli.EnvVars("WIDGETFEED_DATA_DIR"),
				Value:       commands.DefaultDataDir(),
				Destination: &flags.DataDir,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			logger, closer, err := logging.New(flags.LogLevel, flags.LogFile)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = logger
			logCloser = closer

			cfg, err := model.LoadConfig(flags.ConfigPath)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}
			if err := cfg.Validate(); err != nil {
				return ctx, fmt.Errorf("invalid config %s: %w", flags.ConfigPath, err)
			}

			token, err := credential.APIToken()
			if err != nil {
				// Requests go out unauthenticated and surface as 401s.
				log.Warn().Err(err).Msg("reading API token")
			}

			opened, err := commands.OpenApp(cfg, flags.DataDir, token)
			if err != nil {
				return ctx, err
			}
			*widgetApp = *opened

			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if err := widgetApp.Close(); err != nil {
				log.Error().Err(err).Msg("failed to close store")
				return err
			}

			if logCloser != nil {
				logCloser()
			}
			return nil
		},
	}

	app = commands.NewLoginCmd(flags, widgetApp).Register(app)
	app = commands.NewLogoutCmd(flags, widgetApp).Register(app)
	app = commands.NewFetchCmd(flags, widgetApp).Register(app)
	app = commands.NewRefreshCmd(flags, widgetApp).Register(app)
	app = commands.NewUnreadCmd(flags, widgetApp).Register(app)
	app = commands.NewReadCmd(flags, widgetApp).Register(app)
	app = commands.NewClearCmd(flags, widgetApp).Register(app)
	app = commands.NewWatchCmd(flags, widgetApp).Register(app)

	exitCode := 0
	if err := app.Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		exitCode = 1
	}

	os.Exit(exitCode)
}
