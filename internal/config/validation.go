package config

import (
	"fmt"
	"strings"

	friendlyerrors "sortdl/internal/errors"
)

// ValidationError represents a detailed config validation error
type ValidationError struct {
	Field      string
	Value      interface{}
	Message    string
	Suggestion string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("Config validation error in '%s': %s", e.Field, e.Message)
}

// ValidateDetailed performs comprehensive validation with friendly error messages
func (c *Config) ValidateDetailed() []ValidationError {
	var errs []ValidationError

	if c.Version != 1 {
		errs = append(errs, ValidationError{
			Field:      "version",
			Value:      c.Version,
			Message:    fmt.Sprintf("Unsupported version: %d", c.Version),
			Suggestion: "Use version: 1",
		})
	}

	if c.General.DataRoot == "" {
		errs = append(errs, ValidationError{
			Field:      "general.data_root",
			Message:    "Required field missing",
			Suggestion: "Set to a directory for sortdl state:\n  data_root: ~/.local/share/sortdl",
		})
	}

	if c.General.RootFolder == "" {
		errs = append(errs, ValidationError{
			Field:      "general.root_folder",
			Message:    "Required field missing",
			Suggestion: "Set the managed subfolder routed downloads land in:\n  root_folder: Sorted",
		})
	} else if strings.ContainsAny(c.General.RootFolder, `/\`) {
		errs = append(errs, ValidationError{
			Field:      "general.root_folder",
			Value:      c.General.RootFolder,
			Message:    "Must be a single path segment",
			Suggestion: "Remove path separators, e.g. root_folder: Sorted",
		})
	}

	if c.General.ConflictAction != "" {
		validActions := []string{"uniquify", "overwrite", "prompt"}
		found := false
		for _, a := range validActions {
			if strings.EqualFold(c.General.ConflictAction, a) {
				found = true
				break
			}
		}
		if !found {
			errs = append(errs, ValidationError{
				Field:      "general.conflict_action",
				Value:      c.General.ConflictAction,
				Message:    "Invalid conflict action",
				Suggestion: "Use one of: uniquify, overwrite, prompt",
			})
		}
	}

	if c.Engine.ActivityLimit < 0 {
		errs = append(errs, ValidationError{
			Field:      "engine.activity_limit",
			Value:      c.Engine.ActivityLimit,
			Message:    "Must be >= 0",
			Suggestion: "Recommended: 100-500 entries (0 uses the default)",
		})
	}

	lvl := strings.ToLower(c.Logging.Level)
	validLevels := []string{"", "debug", "info", "warn", "error"}
	found := false
	for _, valid := range validLevels {
		if lvl == valid {
			found = true
			break
		}
	}
	if !found {
		errs = append(errs, ValidationError{
			Field:      "logging.level",
			Value:      c.Logging.Level,
			Message:    "Invalid log level",
			Suggestion: "Use one of: debug, info, warn, error",
		})
	}

	if c.Metrics.Textfile.Enabled && c.Metrics.Textfile.Path == "" {
		errs = append(errs, ValidationError{
			Field:      "metrics.textfile.path",
			Message:    "Required when metrics.textfile.enabled is true",
			Suggestion: "Point at a node_exporter textfile directory:\n  path: /var/lib/node_exporter/sortdl.prom",
		})
	}

	return errs
}

// ValidateWithFriendlyErrors returns a user-friendly validation error
func (c *Config) ValidateWithFriendlyErrors() error {
	errs := c.ValidateDetailed()
	if len(errs) == 0 {
		return nil
	}

	var msg strings.Builder
	msg.WriteString("Configuration validation failed:\n\n")

	for i, err := range errs {
		msg.WriteString(fmt.Sprintf("%d. %s\n", i+1, err.Error()))
		if err.Value != nil {
			msg.WriteString(fmt.Sprintf("   Current value: %v\n", err.Value))
		}
		if err.Suggestion != "" {
			lines := strings.Split(err.Suggestion, "\n")
			for _, line := range lines {
				msg.WriteString(fmt.Sprintf("   → %s\n", line))
			}
		}
		msg.WriteString("\n")
	}

	return friendlyerrors.NewFriendlyError(
		"Config validation failed",
		msg.String(),
	)
}
