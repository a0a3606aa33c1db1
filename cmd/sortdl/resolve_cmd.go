package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"

	"sortdl/internal/config"
	"sortdl/internal/logging"
	"sortdl/internal/resolver"
	"sortdl/internal/state"
	"sortdl/internal/util"
)

// handleResolve prints the routing decision for a URL and filename without
// touching suggestion records. Dry-run sibling of the engine's determining
// handler.
func handleResolve(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("resolve", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "Path to YAML config file")
	logLevel := fs.String("log-level", "info", "log level")
	jsonOut := fs.Bool("json", false, "json output")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 2 {
		return errors.New("usage: sortdl resolve [flags] <url> <filename>")
	}
	rawURL := fs.Arg(0)
	filename := fs.Arg(1)
	return stateOp(rebuild(cfgPath, logLevel, jsonOut), func(c *config.Config, db *state.DB, log *logging.Logger) error {
		snap, err := db.LoadSnapshot()
		if err != nil {
			return err
		}
		website := util.WebsiteFromURL(rawURL)
		ext := util.FileExtension(filename)
		dec := resolver.Resolve(snap, website, ext)
		out := struct {
			Website        string `json:"website"`
			Extension      string `json:"extension"`
			Matched        bool   `json:"matched"`
			MatchedWebsite string `json:"matchedWebsite,omitempty"`
			Folder         string `json:"folder,omitempty"`
			SuggestedPath  string `json:"suggestedPath,omitempty"`
		}{Website: website, Extension: ext, Matched: dec.Matched}
		if dec.Matched {
			out.MatchedWebsite = dec.MatchedWebsite
			out.Folder = dec.Folder
			out.SuggestedPath = resolver.TargetPath(c.General.RootFolder, dec.Folder, filename)
		}
		if *jsonOut {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		}
		if !dec.Matched {
			fmt.Printf("%s (.%s): no route, browser default applies\n", website, ext)
			return nil
		}
		fmt.Printf("%s (.%s) -> %s\n", website, ext, out.SuggestedPath)
		return nil
	})
}
