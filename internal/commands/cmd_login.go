package commands

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/nhle/widgetfeed/internal/credential"
	"github.com/nhle/widgetfeed/internal/model"
)

type LoginCmd struct {
	flags *Flags
	app   *App

	// flags
	baseURL string
	user    string
	token   string

	saveToken   func(string) error
	interactive func() bool
}

// NewLoginCmd creates a new login command
func NewLoginCmd(flags *Flags, app *App) *LoginCmd {
	return &LoginCmd{
		flags: flags,
		app:   app,
		saveToken: func(tok string) error {
			return credential.Set(credential.APITokenKey, tok)
		},
		interactive: func() bool {
			return term.IsTerminal(int(os.Stdin.Fd()))
		},
	}
}

// Register adds the login command to the application
func (cmd *LoginCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "login",
		Usage:     "Configure the community API and the widget user",
		UsageText: "widgetfeed login [--base-url URL] [--user ID] [--token TOKEN]",
		Description: `Saves the API base URL to the config file, stores the API token in the
system keyring and records the user the widget shows notifications for.

Missing values are prompted for when running in a terminal.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "base-url",
				Usage:       "community API base URL",
				Destination: &cmd.baseURL,
			},
			&cli.StringFlag{
				Name:        "user",
				Aliases:     []string{"u"},
				Usage:       "user id to show notifications for",
				Destination: &cmd.user,
			},
			&cli.StringFlag{
				Name:        "token",
				Usage:       "API bearer token (stored in the system keyring)",
				Destination: &cmd.token,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *LoginCmd) run(ctx context.Context, c *cli.Command) error {
	if cmd.baseURL == "" {
		cmd.baseURL = cmd.app.Config.API.BaseURL
	}
	if cmd.user == "" {
		cmd.user, _ = cmd.app.Widget.CurrentUser(ctx)
	}

	if cmd.baseURL == "" || cmd.user == "" {
		if !cmd.interactive() {
			return fmt.Errorf("--base-url and --user are required when not running in a terminal")
		}
		if err := cmd.prompt(); err != nil {
			return err
		}
	}

	if err := validateURL(cmd.baseURL); err != nil {
		return err
	}

	cfg := *cmd.app.Config
	cfg.API.BaseURL = strings.TrimRight(strings.TrimSpace(cmd.baseURL), "/")
	if err := model.SaveConfig(cmd.flags.ConfigPath, &cfg); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	cmd.app.Config = &cfg

	if cmd.token != "" {
		if err := cmd.saveToken(cmd.token); err != nil {
			return fmt.Errorf("store token: %w", err)
		}
	}

	cmd.user = strings.TrimSpace(cmd.user)
	if err := cmd.app.Widget.SetCurrentUser(ctx, cmd.user); err != nil {
		return fmt.Errorf("record user: %w", err)
	}
	// A list cached for another user must not be shown.
	cmd.app.Widget.ClearCache(ctx)

	log.Info().Str("user_id", cmd.user).Str("base_url", cfg.API.BaseURL).Msg("logged in")
	_, err := fmt.Fprintf(c.Root().Writer, "logged in as %s\n", cmd.user)
	return err
}

func (cmd *LoginCmd) prompt() error {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Base URL").
				Description("Community API URL (e.g., https://community.example.com/api)").
				Placeholder("https://community.example.com/api").
				Value(&cmd.baseURL).
				Validate(validateURL),
			huh.NewInput().
				Title("User ID").
				Description("The user whose notifications the widget shows").
				Value(&cmd.user).
				Validate(validateRequired("User ID")),
			huh.NewInput().
				Title("API Token").
				Description("Bearer token, leave empty to keep the stored one").
				EchoMode(huh.EchoModePassword).
				Value(&cmd.token),
		),
	)

	if err := form.Run(); err != nil {
		return fmt.Errorf("login form: %w", err)
	}
	return nil
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}

func validateURL(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("URL is required")
	}
	parsed, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("URL must include scheme and host (e.g., https://community.example.com)")
	}
	return nil
}
