package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config mirrors the YAML schema. All values should be supplied via YAML;
// Default() provides a usable starting point for `config init`.
type Config struct {
	Version int       `yaml:"version"`
	General General   `yaml:"general"`
	Engine  Engine    `yaml:"engine"`
	Logging Logging   `yaml:"logging"`
	Metrics Metrics   `yaml:"metrics"`
	UI      UIOptions `yaml:"ui"`
}

type General struct {
	DataRoot     string `yaml:"data_root"`
	DownloadRoot string `yaml:"download_root"`
	// RootFolder is the managed subfolder under download_root that all
	// routed files land in. It doubles as the marker segment stripped when
	// recovering a folder name from a saved path.
	RootFolder string `yaml:"root_folder"`
	// ConflictAction is passed back to the download subsystem with every
	// routed path: uniquify | overwrite | prompt
	ConflictAction string `yaml:"conflict_action"`
}

type Engine struct {
	// Bootstrap values only; the live flags are stored in the synced tier
	// so external surfaces can flip them at runtime.
	Enabled         bool `yaml:"enabled"`
	LearningEnabled bool `yaml:"learning_enabled"`
	// ActivityLimit bounds the retained activity log (0 = default 200).
	ActivityLimit int `yaml:"activity_limit"`
}

type Logging struct {
	Level  string `yaml:"level"`  // debug|info|warn|error
	Format string `yaml:"format"` // human|json
}

type Metrics struct {
	Textfile Textfile `yaml:"textfile"`
}

type Textfile struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

type UIOptions struct {
	Theme   string `yaml:"theme"` // dark | light
	Compact bool   `yaml:"compact"`
}

// Default returns a config suitable for `sortdl config init`.
func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		Version: 1,
		General: General{
			DataRoot:       filepath.Join(home, ".local", "share", "sortdl"),
			DownloadRoot:   filepath.Join(home, "Downloads"),
			RootFolder:     "Sorted",
			ConflictAction: "uniquify",
		},
		Engine: Engine{
			Enabled:         true,
			LearningEnabled: true,
		},
		Logging: Logging{Level: "info", Format: "human"},
	}
}

// Load reads, parses, expands, and validates a YAML config file.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}
	expanded, err := expandTilde(path)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(expanded)
	if err != nil {
		return nil, err
	}
	// Expand ${ENV} placeholders before unmarshalling
	b = []byte(os.ExpandEnv(string(b)))
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	if err := c.expandPaths(); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) expandPaths() error {
	var err error
	if c.General.DataRoot, err = expandTilde(c.General.DataRoot); err != nil {
		return err
	}
	if c.General.DownloadRoot, err = expandTilde(c.General.DownloadRoot); err != nil {
		return err
	}
	if c.Metrics.Textfile.Path, err = expandTilde(c.Metrics.Textfile.Path); err != nil {
		return err
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Version != 1 {
		return fmt.Errorf("unsupported config version: %d", c.Version)
	}
	if c.General.DataRoot == "" {
		return errors.New("general.data_root is required")
	}
	if c.General.RootFolder == "" {
		return errors.New("general.root_folder is required")
	}
	if strings.ContainsAny(c.General.RootFolder, `/\`) {
		return fmt.Errorf("general.root_folder must be a single path segment: %s", c.General.RootFolder)
	}
	switch strings.ToLower(c.General.ConflictAction) {
	case "", "uniquify", "overwrite", "prompt":
		// ok
	default:
		return fmt.Errorf("general.conflict_action invalid: %s", c.General.ConflictAction)
	}
	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "error":
		// ok
	default:
		return fmt.Errorf("logging.level invalid: %s", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "human", "json":
		// ok
	default:
		return fmt.Errorf("logging.format invalid: %s", c.Logging.Format)
	}
	if c.Metrics.Textfile.Enabled && c.Metrics.Textfile.Path == "" {
		return errors.New("metrics.textfile.path required when enabled")
	}
	if c.Engine.ActivityLimit < 0 {
		return errors.New("engine.activity_limit must be >= 0")
	}
	switch strings.ToLower(c.UI.Theme) {
	case "", "dark", "light":
		// ok
	default:
		return fmt.Errorf("ui.theme invalid: %s", c.UI.Theme)
	}
	return nil
}

func expandTilde(p string) (string, error) {
	if p == "" {
		return "", nil
	}
	if p[0] != '~' {
		return p, nil
	}
	h, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	if p == "~" {
		return h, nil
	}
	return filepath.Join(h, p[2:]), nil
}

// EnsureDir creates path (and parents) when it does not exist.
func EnsureDir(path string, perm fs.FileMode) error {
	if path == "" {
		return nil
	}
	return os.MkdirAll(path, perm)
}
