package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path"
	"time"

	"github.com/dustin/go-humanize"

	"sortdl/internal/config"
	"sortdl/internal/logging"
	"sortdl/internal/state"
)

func handleHistory(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "Path to YAML config file")
	logLevel := fs.String("log-level", "info", "log level")
	jsonOut := fs.Bool("json", false, "json output")
	limit := fs.Int("limit", 50, "max entries to show")
	if err := fs.Parse(args); err != nil {
		return err
	}
	return stateOp(rebuild(cfgPath, logLevel, jsonOut), func(c *config.Config, db *state.DB, log *logging.Logger) error {
		items, err := db.ListActivity(*limit)
		if err != nil {
			return err
		}
		if *jsonOut {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(items)
		}
		if len(items) == 0 {
			fmt.Println("no activity yet")
			return nil
		}
		fmt.Printf("%-14s %-30s %-22s %-18s %-10s\n", "WHEN", "FILE", "WEBSITE", "FOLDER", "SIZE")
		for _, a := range items {
			when := humanize.Time(time.Unix(a.CompletedAt, 0))
			folder := a.Folder
			if !a.Routed {
				folder = "(unsorted)"
			}
			size := ""
			if a.Size > 0 {
				size = humanize.Bytes(uint64(a.Size))
			}
			fmt.Printf("%-14s %-30s %-22s %-18s %-10s\n",
				when, clip(path.Base(a.Filename), 30), clip(a.Website, 22), clip(folder, 18), size)
		}
		return nil
	})
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
