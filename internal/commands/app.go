package commands

import (
	"fmt"

	"github.com/nhle/widgetfeed/internal/logging"
	"github.com/nhle/widgetfeed/internal/model"
	"github.com/nhle/widgetfeed/internal/source/community"
	"github.com/nhle/widgetfeed/internal/store"
	"github.com/nhle/widgetfeed/internal/widget"
)

// OpenApp opens the configured store and builds the widget service on top
// of the community API.
func OpenApp(cfg *model.AppConfig, dataDir, token string) (*App, error) {
	kv, err := store.Open(cfg.Store, dataDir)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	src := community.NewAdapter(cfg.API.BaseURL, token,
		community.WithTimeout(cfg.API.Timeout()),
	)

	svc := widget.New(src, kv,
		widget.WithTTL(cfg.Widget.CacheTTL()),
		widget.WithPollInterval(cfg.Widget.PollInterval()),
		widget.WithLimit(cfg.Widget.Limit),
		widget.WithLogger(logging.Component("widget")),
	)

	return &App{Config: cfg, Store: kv, Widget: svc}, nil
}

// Close releases the store.
func (a *App) Close() error {
	if a == nil || a.Store == nil {
		return nil
	}
	return a.Store.Close()
}
