package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"sortdl/internal/config"
	"sortdl/internal/logging"
	"sortdl/internal/rules"
	"sortdl/internal/state"
)

func handleRules(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("rules subcommand required: list | add | remove | export | import")
	}
	sub := args[0]
	switch sub {
	case "list":
		return handleRulesList(ctx, args[1:])
	case "add":
		return handleRulesAdd(ctx, args[1:])
	case "remove":
		return handleRulesRemove(ctx, args[1:])
	case "export":
		return handleRulesExport(ctx, args[1:])
	case "import":
		return handleRulesImport(ctx, args[1:])
	default:
		return fmt.Errorf("unknown rules subcommand: %s", sub)
	}
}

func handleRulesList(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("rules list", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "Path to YAML config file")
	logLevel := fs.String("log-level", "info", "log level")
	jsonOut := fs.Bool("json", false, "json output")
	site := fs.String("site", "", "only show rules for this website")
	if err := fs.Parse(args); err != nil {
		return err
	}
	return stateOp(rebuild(cfgPath, logLevel, jsonOut), func(c *config.Config, db *state.DB, log *logging.Logger) error {
		snap, err := db.LoadSnapshot()
		if err != nil {
			return err
		}
		sites := snap.Sites
		if *site != "" {
			want := rules.NormalizeWebsite(*site)
			filtered := rules.SiteRules{}
			if m, ok := sites[want]; ok {
				filtered[want] = m
			}
			sites = filtered
		}
		if *jsonOut {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(sites)
		}
		names := make([]string, 0, len(sites))
		for s := range sites {
			names = append(names, s)
		}
		sort.Strings(names)
		fmt.Printf("%-28s %-10s %s\n", "WEBSITE", "EXT", "FOLDER")
		for _, s := range names {
			exts := make([]string, 0, len(sites[s]))
			for e := range sites[s] {
				exts = append(exts, e)
			}
			sort.Strings(exts)
			for _, e := range exts {
				fmt.Printf("%-28s %-10s %s\n", s, e, sites[s][e])
			}
		}
		return nil
	})
}

func handleRulesAdd(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("rules add", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "Path to YAML config file")
	logLevel := fs.String("log-level", "info", "log level")
	jsonOut := fs.Bool("json", false, "json logs")
	site := fs.String("site", "", "website (e.g. dafont.com)")
	ext := fs.String("ext", "", "file extension (e.g. zip)")
	folder := fs.String("folder", "", "destination folder")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *site == "" || *ext == "" || *folder == "" {
		return errors.New("--site, --ext, and --folder are required")
	}
	if strings.ContainsAny(*folder, `\:`) {
		return fmt.Errorf("folder must use forward slashes and no drive letters: %s", *folder)
	}
	return stateOp(rebuild(cfgPath, logLevel, jsonOut), func(c *config.Config, db *state.DB, log *logging.Logger) error {
		if err := db.MutateSiteRules(func(r rules.SiteRules) {
			r.Set(*site, *ext, *folder)
		}); err != nil {
			return err
		}
		log.Infof("rule saved: %s .%s -> %s", rules.NormalizeWebsite(*site), rules.NormalizeExtension(*ext), *folder)
		return nil
	})
}

func handleRulesRemove(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("rules remove", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "Path to YAML config file")
	logLevel := fs.String("log-level", "info", "log level")
	jsonOut := fs.Bool("json", false, "json logs")
	site := fs.String("site", "", "website")
	ext := fs.String("ext", "", "file extension")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *site == "" || *ext == "" {
		return errors.New("--site and --ext are required")
	}
	return stateOp(rebuild(cfgPath, logLevel, jsonOut), func(c *config.Config, db *state.DB, log *logging.Logger) error {
		if err := db.MutateSiteRules(func(r rules.SiteRules) {
			r.Remove(*site, *ext)
		}); err != nil {
			return err
		}
		log.Infof("rule removed: %s .%s", rules.NormalizeWebsite(*site), rules.NormalizeExtension(*ext))
		return nil
	})
}

// exportFile is the interchange document for `rules export` and
// `rules import`. Field names match the persisted record names so a dump is
// readable next to the database.
type exportFile struct {
	SiteRules      rules.SiteRules  `json:"siteRules"`
	FileCategories []rules.Category `json:"fileCategories"`
	Declined       rules.Declined   `json:"declinedSuggestions"`
}

func handleRulesExport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("rules export", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "Path to YAML config file")
	logLevel := fs.String("log-level", "info", "log level")
	jsonOut := fs.Bool("json", false, "json logs")
	outPath := fs.String("output", "", "output file (default: stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	return stateOp(rebuild(cfgPath, logLevel, jsonOut), func(c *config.Config, db *state.DB, log *logging.Logger) error {
		snap, err := db.LoadSnapshot()
		if err != nil {
			return err
		}
		doc := exportFile{SiteRules: snap.Sites, FileCategories: snap.Categories, Declined: snap.Declined}
		b, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return err
		}
		b = append(b, '\n')
		if *outPath == "" {
			_, err = os.Stdout.Write(b)
			return err
		}
		if err := os.WriteFile(*outPath, b, 0o644); err != nil {
			return err
		}
		log.Infof("exported to %s", *outPath)
		return nil
	})
}

func handleRulesImport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("rules import", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "Path to YAML config file")
	logLevel := fs.String("log-level", "info", "log level")
	jsonOut := fs.Bool("json", false, "json logs")
	inPath := fs.String("input", "", "exported JSON file to import")
	merge := fs.Bool("merge", false, "merge into existing rules instead of replacing")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *inPath == "" {
		return errors.New("--input is required")
	}
	b, err := os.ReadFile(*inPath)
	if err != nil {
		return err
	}
	var doc exportFile
	if err := json.Unmarshal(b, &doc); err != nil {
		return fmt.Errorf("parse %s: %w", *inPath, err)
	}
	return stateOp(rebuild(cfgPath, logLevel, jsonOut), func(c *config.Config, db *state.DB, log *logging.Logger) error {
		if *merge {
			if doc.SiteRules != nil {
				if err := db.MutateSiteRules(func(r rules.SiteRules) {
					for site, m := range doc.SiteRules {
						for ext, folder := range m {
							r.Set(site, ext, folder)
						}
					}
				}); err != nil {
					return err
				}
			}
			if doc.Declined != nil {
				if err := db.MutateDeclined(func(d rules.Declined) {
					for k, v := range doc.Declined {
						d[k] = v
					}
				}); err != nil {
					return err
				}
			}
		} else {
			if doc.SiteRules != nil {
				if err := db.SaveSiteRules(doc.SiteRules); err != nil {
					return err
				}
			}
			if doc.Declined != nil {
				if err := db.SaveDeclined(doc.Declined); err != nil {
					return err
				}
			}
		}
		if len(doc.FileCategories) > 0 {
			if err := db.SaveCategories(doc.FileCategories); err != nil {
				return err
			}
		}
		log.Infof("imported %s", *inPath)
		return nil
	})
}

func handleCategories(ctx context.Context, args []string) error {
	if len(args) == 0 || args[0] != "list" {
		return errors.New("categories subcommand required: list")
	}
	fs := flag.NewFlagSet("categories list", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "Path to YAML config file")
	logLevel := fs.String("log-level", "info", "log level")
	jsonOut := fs.Bool("json", false, "json output")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	return stateOp(rebuild(cfgPath, logLevel, jsonOut), func(c *config.Config, db *state.DB, log *logging.Logger) error {
		snap, err := db.LoadSnapshot()
		if err != nil {
			return err
		}
		if *jsonOut {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(snap.Categories)
		}
		for _, cat := range snap.Categories {
			fmt.Printf("%-12s %s\n", cat.Name, strings.Join(cat.Extensions, " "))
		}
		return nil
	})
}

// rebuild reconstructs the flag slice consumed by configOp/stateOp from
// already-parsed common flags, so each subcommand can define extras of its
// own without a second parse fighting over os.Args.
func rebuild(cfgPath, logLevel *string, jsonOut *bool) []string {
	out := []string{"--log-level", *logLevel}
	if *cfgPath != "" {
		out = append(out, "--config", *cfgPath)
	}
	if *jsonOut {
		out = append(out, "--json")
	}
	return out
}
