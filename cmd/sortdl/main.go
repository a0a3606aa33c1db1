package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"gopkg.in/yaml.v3"

	"sortdl/internal/config"
	"sortdl/internal/logging"
	"sortdl/internal/state"
)

var version = "dev"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if err := run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		usage()
		return errors.New("no command provided")
	}
	cmd := args[0]
	switch cmd {
	case "config":
		return handleConfig(ctx, args[1:])
	case "rules":
		return handleRules(ctx, args[1:])
	case "categories":
		return handleCategories(ctx, args[1:])
	case "resolve":
		return handleResolve(ctx, args[1:])
	case "simulate":
		return handleSimulate(ctx, args[1:])
	case "history":
		return handleHistory(ctx, args[1:])
	case "tui":
		return handleTUI(ctx, args[1:])
	case "clean":
		return handleClean(ctx, args[1:])
	case "completion":
		return handleCompletion(ctx, args[1:])
	case "version":
		fmt.Println(version)
		return nil
	case "help", "-h", "--help":
		usage()
		return nil
	default:
		usage()
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

func usage() {
	fmt.Println(strings.TrimSpace(`sortdl - rule-based download organizer

Usage:
  sortdl <command> [flags]

Commands:
  config validate   Validate a YAML config file
  config print      Print the loaded config as JSON
  config init       Write a default config file
  rules list        List site rules (table or JSON)
  rules add         Add or update a site rule
  rules remove      Remove a site rule
  rules export      Export rules, categories and declines as JSON
  rules import      Import a previously exported JSON file
  categories list   List file-type categories
  resolve           Show the routing decision for a URL and filename
  simulate          Run a scenario file through the sorting engine
  history           Show recent sorting activity
  tui               Open the interactive terminal dashboard
  clean             Remove expired suggestion and proposal records
  completion        Output shell completion (bash, zsh, fish)
  version           Print version
  help              Show this help`))
}

func handleConfig(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("config subcommand required: validate | print | init")
	}
	sub := args[0]
	switch sub {
	case "validate":
		return configOp(args[1:], func(c *config.Config, log *logging.Logger) error {
			log.Infof("config: valid")
			return nil
		})
	case "print":
		return configOp(args[1:], func(c *config.Config, log *logging.Logger) error {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(c)
		})
	case "init":
		return handleConfigInit(ctx, args[1:])
	default:
		return fmt.Errorf("unknown config subcommand: %s", sub)
	}
}

func handleConfigInit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("config init", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "Path to write the YAML config file")
	force := fs.Bool("force", false, "overwrite an existing file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	p, err := resolveConfigPath(*cfgPath)
	if err != nil {
		return err
	}
	if _, err := os.Stat(p); err == nil && !*force {
		return fmt.Errorf("config file already exists: %s (use --force to overwrite)", p)
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	b, err := yaml.Marshal(config.Default())
	if err != nil {
		return err
	}
	if err := os.WriteFile(p, b, 0o644); err != nil {
		return err
	}
	fmt.Println("wrote", p)
	return nil
}

// resolveConfigPath applies the --config flag, the SORTDL_CONFIG env var,
// and the default location, in that order.
func resolveConfigPath(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if env := os.Getenv("SORTDL_CONFIG"); env != "" {
		return env, nil
	}
	h, err := os.UserHomeDir()
	if err != nil || h == "" {
		return "", errors.New("--config is required or set SORTDL_CONFIG")
	}
	return filepath.Join(h, ".config", "sortdl", "config.yml"), nil
}

func configOp(args []string, fn func(*config.Config, *logging.Logger) error) error {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "Path to YAML config file")
	logLevel := fs.String("log-level", "info", "log level")
	jsonOut := fs.Bool("json", false, "json logs")
	if err := fs.Parse(args); err != nil {
		return err
	}
	p, err := resolveConfigPath(*cfgPath)
	if err != nil {
		return err
	}
	if _, err := os.Stat(p); err != nil {
		return fmt.Errorf("config file not found: %s", p)
	}
	c, err := config.Load(p)
	if err != nil {
		return err
	}
	log := logging.New(*logLevel, *jsonOut)
	return fn(c, log)
}

// stateOp is configOp plus an open state database with defaults installed.
// Commands that read or write rules, activity, or ephemerals go through it.
func stateOp(args []string, fn func(*config.Config, *state.DB, *logging.Logger) error) error {
	return configOp(args, func(c *config.Config, log *logging.Logger) error {
		db, err := state.Open(c)
		if err != nil {
			return err
		}
		defer db.Close()
		bootstrap := state.Settings{
			ExtensionEnabled: c.Engine.Enabled,
			LearningEnabled:  c.Engine.LearningEnabled,
		}
		if err := db.EnsureDefaults(bootstrap); err != nil {
			return err
		}
		return fn(c, db, log)
	})
}
