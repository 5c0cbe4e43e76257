// Package host assembles a runnable switcher session from an AppConfig:
// logger, settings loader, user settings database, component registry,
// engine and switcher.
package host

import (
	"fmt"
	"os"
	"os/user"
	"sync"
	"time"

	"imeswitch/internal/component"
	"imeswitch/internal/config"
	"imeswitch/internal/engine"
	"imeswitch/internal/keyevent"
	"imeswitch/internal/logging"
	"imeswitch/internal/metrics"
	"imeswitch/internal/processors"
	"imeswitch/internal/schema"
	"imeswitch/internal/store"
	"imeswitch/internal/switcher"
)

// NewLogger builds a logger from the logging section of an AppConfig.
func NewLogger(cfg config.LoggingConfig) (*logging.Logger, error) {
	level, err := logging.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	format, err := logging.ParseFormat(cfg.Format)
	if err != nil {
		return nil, err
	}
	lc := logging.DefaultConfig()
	lc.Level = level
	lc.Format = format
	lc.Output = cfg.Output
	lc.FilePath = cfg.FilePath
	return logging.New(lc)
}

// Host owns the resources of one session.
type Host struct {
	Config   *config.AppConfig
	Logger   *logging.Logger
	Loader   *config.Loader
	Store    *store.Store
	User     *store.UserSettings
	Engine   *engine.Engine
	Switcher *switcher.Switcher
	Metrics  *metrics.SessionMetrics
	Registry *metrics.Registry

	// Serialize runs fn exclusively with key handling. It defaults to an
	// internal mutex; hosts that already serialize key events elsewhere
	// replace it before calling Watch.
	Serialize func(fn func())

	mu   sync.Mutex
	done chan struct{}
}

// Open builds a session. The switcher is attached to the engine and the
// engine starts on the schema chosen by Switcher.CreateSchema.
func Open(cfg *config.AppConfig, logger *logging.Logger) (*Host, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}

	loader := config.NewLoader(cfg.SchemaConfig)
	src, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", cfg.SchemaConfig, err)
	}
	if _, statErr := os.Stat(cfg.SchemaConfig); os.IsNotExist(statErr) {
		logger.Warn("switcher settings not found, using defaults", "path", cfg.SchemaConfig)
	}
	logIssues(logger, src)

	db, err := store.Open(cfg.UserDB)
	if err != nil {
		loader.Close()
		return nil, fmt.Errorf("open user settings: %w", err)
	}
	db.SetLogger(logger.WithComponent("store").Logger)

	reg := component.NewRegistry()
	processors.Register(reg)
	switcher.RegisterDefaults(reg)

	username, err := currentUser()
	if err != nil {
		db.Close()
		loader.Close()
		return nil, err
	}

	userSettings := db.Scope(username)
	eng := engine.New(logger.WithComponent("engine").Logger)
	sw := switcher.New(switcher.Config{
		Settings:     src,
		UserSettings: userSettings,
		Registry:     reg,
		Logger:       logger.WithComponent("switcher").Logger,
	})
	sw.Attach(eng)
	if sc := sw.CreateSchema(); sc != nil {
		eng.ApplySchema(sc)
	}

	mreg := metrics.NewRegistry("imeswitch")
	m := metrics.NewSessionMetrics(mreg)
	eng.OnSchemaChange(func(*schema.Schema) { m.SchemaChanges.Inc() })
	eng.OnOptionUpdate(func(string, bool) { m.OptionChanges.Inc() })

	h := &Host{
		Config:   cfg,
		Logger:   logger,
		Loader:   loader,
		Store:    db,
		User:     userSettings,
		Engine:   eng,
		Switcher: sw,
		Metrics:  m,
		Registry: mreg,
		done:     make(chan struct{}),
	}
	h.Serialize = h.lock
	return h, nil
}

func (h *Host) lock(fn func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	fn()
}

// ProcessKeyEvent feeds ev to the switcher and records it in the session
// metrics. Callers serialize it with Serialize.
func (h *Host) ProcessKeyEvent(ev keyevent.KeyEvent) bool {
	start := time.Now()
	wasActive := h.Switcher.Active()
	handled := h.Switcher.ProcessKeyEvent(ev)
	h.Metrics.ObserveKey(handled, wasActive, h.Switcher.Active(), time.Since(start))
	return handled
}

// Watch reloads the switcher settings whenever the settings file changes.
// It is a no-op when watching is disabled in the AppConfig.
func (h *Host) Watch() error {
	if !h.Config.Watch {
		return nil
	}
	h.Loader.OnChange(func(src *config.Source) {
		logIssues(h.Logger, src)
		h.Serialize(func() {
			h.Switcher.LoadSettings()
			h.Logger.Info("switcher settings reloaded", "path", h.Config.SchemaConfig)
		})
	})
	if err := h.Loader.Watch(); err != nil {
		return err
	}
	go func() {
		for {
			select {
			case err := <-h.Loader.Errors():
				h.Logger.Warn("settings watcher", "error", err)
			case <-h.done:
				return
			}
		}
	}()
	return nil
}

// Close releases the loader, the database and the logger.
func (h *Host) Close() error {
	close(h.done)
	h.Loader.Close()
	err := h.Store.Close()
	h.Logger.Close()
	return err
}

// logIssues reports settings entries that do not match the switcher schema.
// They stay in the tree; each reader skips what it cannot use.
func logIssues(logger *logging.Logger, src *config.Source) {
	for _, issue := range src.Issues() {
		logger.Warn("invalid switcher setting", "path", src.Path(), "field", issue.Field, "error", issue.Message)
	}
}

// currentUser names the settings scope of the running user.
func currentUser() (string, error) {
	u, err := user.Current()
	if err != nil {
		return "", fmt.Errorf("determine user: %w", err)
	}
	return u.Username, nil
}
