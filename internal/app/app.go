package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/pianopractice/practice-tracker/internal/auth"
	"github.com/pianopractice/practice-tracker/internal/config"
	"github.com/pianopractice/practice-tracker/internal/logging"
	"github.com/pianopractice/practice-tracker/internal/practice"
	"github.com/pianopractice/practice-tracker/internal/prefs"
	"github.com/pianopractice/practice-tracker/internal/state"
	"github.com/pianopractice/practice-tracker/internal/ui"
)

// Runtime bundles the long-lived pieces every command needs.
type Runtime struct {
	Config      config.Config
	Logger      *slog.Logger
	Client      *practice.Client
	Coordinator *state.Coordinator

	logCloser io.Closer
}

// Open opens the log file, reads stored credentials and builds the API
// client and coordinator.
func Open(cfg config.Config) (*Runtime, error) {
	logger, closer, err := logging.Open(cfg.LogPath, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}
	creds, err := auth.Load(cfg.CredentialsPath)
	if err != nil {
		_ = closer.Close()
		return nil, fmt.Errorf("load credentials: %w", err)
	}
	rt, err := NewRuntime(cfg, logger, creds.Cookie)
	if err != nil {
		_ = closer.Close()
		return nil, err
	}
	rt.logCloser = closer
	return rt, nil
}

// NewRuntime builds a runtime around an existing logger and session cookie.
func NewRuntime(cfg config.Config, logger *slog.Logger, cookie string) (*Runtime, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	client, err := practice.NewClient(practice.Options{
		BaseURL:       cfg.BaseURL,
		CookieName:    cfg.CookieName,
		SessionCookie: cookie,
		Timeout:       cfg.RequestTimeout,
		Logger:        logger,
	})
	if err != nil {
		return nil, fmt.Errorf("init practice client: %w", err)
	}
	return &Runtime{
		Config:      cfg,
		Logger:      logger,
		Client:      client,
		Coordinator: state.NewCoordinator(client, nil, logger),
	}, nil
}

// Close releases the log file.
func (rt *Runtime) Close() error {
	if rt == nil || rt.logCloser == nil {
		return nil
	}
	err := rt.logCloser.Close()
	rt.logCloser = nil
	return err
}

// Options configure the interactive client.
type Options struct {
	ThemeName string             // empty uses the saved preference
	Clipboard func(string) error // nil uses the system clipboard
}

// Run starts the TUI and blocks until the user quits or ctx is cancelled.
// The initial load happens when the UI mounts.
func Run(ctx context.Context, rt *Runtime, opts Options) error {
	if rt == nil {
		return fmt.Errorf("runtime is nil")
	}
	cfg := rt.Config

	themeName := opts.ThemeName
	if themeName == "" {
		themeName = prefs.Load(cfg.PrefsPath).Theme
	}

	if cfg.PollEvery > 0 {
		StartPoller(ctx, rt.Coordinator, cfg.PollEvery, rt.Logger)
	}

	rt.Logger.Info("starting ui", "base_url", rt.Client.BaseURL(), "poll", cfg.PollEvery)
	return ui.Run(ui.Options{
		Context:     ctx,
		Coordinator: rt.Coordinator,
		API:         rt.Client,
		LoginURL:    rt.Client.LoginURL(),
		ThemeName:   themeName,
		PrefsPath:   cfg.PrefsPath,
		Logger:      rt.Logger,
		Clipboard:   opts.Clipboard,
	})
}
