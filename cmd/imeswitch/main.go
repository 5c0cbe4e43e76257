// imeswitch drives a schema switcher from the terminal.
//
// Each input line is a key chord (F4, Return, Control+grave, ...) or one of
// the commands below; after every line the switcher state is printed.
//
//	:next     switch to the next schema without opening the menu
//	:menu     print the open menu
//	:options  print the option values
//	:saved    print the persisted user settings
//	:forget   drop the saved value of an option (:forget ascii_mode)
//	:stats    print session metrics in the Prometheus text format
//	:reload   re-read the switcher settings
//	:quit     exit
package main

import (
	"flag"
	"fmt"
	"os"

	"imeswitch/internal/config"
	"imeswitch/internal/host"
	"imeswitch/internal/logging"
)

var (
	configPath       = flag.String("config", "", "path to app config file")
	schemaConfigPath = flag.String("schema-config", "", "path to switcher settings, overrides the app config")
	userDBPath       = flag.String("user-db", "", "path to user settings database, overrides the app config")
)

func main() {
	flag.Usage = usage
	flag.Parse()

	cfg, err := config.LoadAppConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *schemaConfigPath != "" {
		cfg.SchemaConfig = *schemaConfigPath
	}
	if *userDBPath != "" {
		cfg.UserDB = *userDBPath
	}

	logger, err := host.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	logging.SetDefault(logger)

	h, err := host.Open(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		logger.Close()
		os.Exit(1)
	}

	if err := h.Watch(); err != nil {
		logger.Warn("settings watch unavailable", "error", err)
	}

	runErr := newREPL(h, os.Stdout).run(os.Stdin)
	if err := h.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Error closing session: %v\n", err)
	}
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", runErr)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `imeswitch - interactive schema switcher

Usage: imeswitch [options] < keys.txt

Input lines are key chords such as F4, Return, Escape, Control+grave,
or commands: :next :menu :options :saved :forget <option> :stats :reload :quit

Options:`)
	flag.PrintDefaults()
}
