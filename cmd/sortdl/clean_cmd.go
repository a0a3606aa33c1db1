package main

import (
	"context"
	"flag"
	"time"

	"sortdl/internal/config"
	"sortdl/internal/logging"
	"sortdl/internal/state"
)

// handleClean removes ephemeral records whose downloads never reached a
// terminal event: stale suggestions and proposal records nobody answered.
func handleClean(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("clean", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "Path to YAML config file")
	logLevel := fs.String("log-level", "info", "log level")
	jsonOut := fs.Bool("json", false, "json logs")
	age := fs.Duration("age", 24*time.Hour, "remove records older than this (0 = remove all)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	return stateOp(rebuild(cfgPath, logLevel, jsonOut), func(c *config.Config, db *state.DB, log *logging.Logger) error {
		total := int64(0)
		for _, prefix := range []string{state.SuggestionPrefix, state.NewRulePrefix, state.UpdateRulePrefix} {
			n, err := db.RemoveOlderThan(state.Local, prefix, *age)
			if err != nil {
				return err
			}
			if n > 0 {
				log.Debugf("clean: %s removed %d", prefix, n)
			}
			total += n
		}
		log.Infof("clean: removed %d stale records", total)
		return nil
	})
}
