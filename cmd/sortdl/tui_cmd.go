package main

import (
	"context"
	"flag"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"sortdl/internal/config"
	"sortdl/internal/lockfile"
	"sortdl/internal/logging"
	"sortdl/internal/state"
	ui "sortdl/internal/tui"
)

func handleTUI(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("tui", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "Path to YAML config file")
	logLevel := fs.String("log-level", "info", "log level")
	jsonOut := fs.Bool("json", false, "json logs (not used in TUI)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	return stateOp(rebuild(cfgPath, logLevel, jsonOut), func(c *config.Config, db *state.DB, log *logging.Logger) error {
		lock, err := lockfile.Acquire(filepath.Join(c.General.DataRoot, "sortdl.lock"))
		if err != nil {
			return err
		}
		defer lock.Release()
		p := tea.NewProgram(ui.New(c, db), tea.WithAltScreen())
		_, err = p.Run()
		return err
	})
}
