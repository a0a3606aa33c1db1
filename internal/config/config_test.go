package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	p := filepath.Join(dir, "config.yml")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return p
}

func TestLoadMinimalConfig(t *testing.T) {
	p := writeConfig(t, `
version: 1
general:
  data_root: /tmp/sortdl-test
  download_root: /tmp/Downloads
  root_folder: Sorted
engine:
  enabled: true
  learning_enabled: true
`)
	c, err := Load(p)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if c.Version != 1 {
		t.Fatalf("expected version 1, got %d", c.Version)
	}
	if c.General.RootFolder != "Sorted" {
		t.Fatalf("expected root_folder Sorted, got %s", c.General.RootFolder)
	}
	if !c.Engine.LearningEnabled {
		t.Fatalf("expected learning enabled")
	}
}

func TestLoadRejectsBadVersion(t *testing.T) {
	p := writeConfig(t, "version: 7\ngeneral:\n  data_root: /tmp/x\n  root_folder: Sorted\n")
	if _, err := Load(p); err == nil {
		t.Fatalf("expected error for unsupported version")
	}
}

func TestValidateRejectsSeparatorInRootFolder(t *testing.T) {
	c := Default()
	c.General.RootFolder = "a/b"
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for separator in root_folder")
	}
}

func TestValidateDetailedFlagsMetricsPath(t *testing.T) {
	c := Default()
	c.Metrics.Textfile.Enabled = true
	errs := c.ValidateDetailed()
	found := false
	for _, e := range errs {
		if e.Field == "metrics.textfile.path" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected metrics.textfile.path validation error, got %v", errs)
	}
}

func TestDefaultValidates(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}
