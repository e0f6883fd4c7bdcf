package commands

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"

	"github.com/nhle/widgetfeed/internal/model"
	"github.com/nhle/widgetfeed/internal/store"
	"github.com/nhle/widgetfeed/internal/widget"
)

// Flags holds the global flags shared by every command.
type Flags struct {
	LogLevel   string
	LogFile    string
	ConfigPath string
	DataDir    string
}

// App is populated by the root Before hook; commands hold a pointer to it.
type App struct {
	Config *model.AppConfig
	Store  store.Store
	Widget *widget.Service
}

// ErrNoUser is returned when neither --user nor a bootstrapped user is set.
var ErrNoUser = errors.New("no user: pass --user or run 'widgetfeed login'")

// resolveUser returns the explicit user when set, or the user recorded by
// login.
func (a *App) resolveUser(ctx context.Context, explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if id, ok := a.Widget.CurrentUser(ctx); ok {
		return id, nil
	}
	return "", ErrNoUser
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	return model.DefaultConfigPath()
}

// DefaultDataDir returns the default data directory using XDG_DATA_HOME.
func DefaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "widgetfeed")
}

// DefaultLogFile returns the default log file path using the system's state directory.
// On macOS: ~/Library/Logs/widgetfeed/widgetfeed.log
// On Linux: $XDG_STATE_HOME/widgetfeed/widgetfeed.log
func DefaultLogFile() string {
	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome != "" {
		return filepath.Join(stateHome, "widgetfeed", "widgetfeed.log")
	}

	home, _ := os.UserHomeDir()

	if runtime.GOOS == "darwin" {
		return filepath.Join(home, "Library", "Logs", "widgetfeed", "widgetfeed.log")
	}

	return filepath.Join(home, ".local", "state", "widgetfeed", "widgetfeed.log")
}
