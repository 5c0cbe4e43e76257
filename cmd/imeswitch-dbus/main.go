// imeswitch-dbus serves a schema switcher on the D-Bus session bus.
//
// An input method front end forwards key events with
//
//	org.imeswitch.Switcher.ProcessKeyEvent(keyval, keycode, state) -> handled
//
// and listens for the SchemaChanged and OptionChanged signals. The process
// runs until SIGINT or SIGTERM.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"imeswitch/internal/config"
	"imeswitch/internal/dbusapi"
	"imeswitch/internal/host"
	"imeswitch/internal/logging"
	"imeswitch/internal/switcher"
)

var (
	configPath = flag.String("config", "", "path to app config file")
	busName    = flag.String("bus-name", "", "well-known bus name, overrides the app config")
)

func main() {
	flag.Parse()

	cfg, err := config.LoadAppConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *busName != "" {
		cfg.DBus.BusName = *busName
	}

	logger, err := host.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	logging.SetDefault(logger)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	if err := run(cfg, logger, sigChan); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run serves the switcher until stop delivers. Everything it opens,
// including logger, is closed before it returns.
func run(cfg *config.AppConfig, logger *logging.Logger, stop <-chan os.Signal) error {
	h, err := host.Open(cfg, logger)
	if err != nil {
		logger.Close()
		return fmt.Errorf("open session: %w", err)
	}
	defer h.Close()

	svc := dbusapi.New(h.Switcher, h.Engine, cfg.DBus.BusName, logger.WithComponent("dbus").Logger)
	svc.Observer = h.Metrics
	h.Serialize = func(fn func()) {
		svc.Do(func(*switcher.Switcher) { fn() })
	}
	if err := h.Watch(); err != nil {
		logger.Warn("settings watch unavailable", "error", err)
	}

	if err := svc.Start(); err != nil {
		return fmt.Errorf("start dbus service: %w", err)
	}
	defer svc.Stop()

	<-stop
	logger.Info("shutting down")
	return nil
}
