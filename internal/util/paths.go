package util

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SafeFileName returns a conservative, cross-platform-safe filename.
// It trims spaces, preserves the extension, and replaces any rune not in
// [A-Za-z0-9._-] with '-'. It also collapses duplicate '-' and trims leading/trailing
// separators. Falls back to "download" when empty after cleaning.
func SafeFileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "download"
	}
	// Preserve extension while cleaning base
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	var b strings.Builder
	prevDash := false
	for _, r := range base {
		ok := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '-' || r == '.'
		if ok {
			b.WriteRune(r)
			prevDash = false
		} else {
			if !prevDash {
				b.WriteByte('-')
				prevDash = true
			}
		}
	}
	clean := b.String()
	clean = strings.Trim(clean, "-.")
	if clean == "" {
		clean = "download"
	}
	return clean + ext
}

// UniquePath returns a unique path inside dir for the given base filename,
// trying numeric suffixes " (2)", " (3)", etc., before the extension. This
// backs the "uniquify" conflict action in the simulator.
func UniquePath(dir, base string) (string, error) {
	base = SafeFileName(base)
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext)
	path := filepath.Join(dir, base)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return path, nil
		}
		return "", err
	}
	for i := 2; ; i++ {
		cand := filepath.Join(dir, fmt.Sprintf("%s (%d)%s", name, i, ext))
		if _, err := os.Stat(cand); os.IsNotExist(err) {
			return cand, nil
		}
	}
}

// FolderFromPath returns the directory portion of a saved file path with
// separators normalized to '/', including the trailing separator.
// Returns "" when the path has no directory component.
func FolderFromPath(p string) string {
	if p == "" {
		return ""
	}
	normalized := strings.ReplaceAll(p, "\\", "/")
	i := strings.LastIndex(normalized, "/")
	if i == -1 {
		return ""
	}
	return normalized[:i+1]
}

// FolderName extracts the human-readable folder name from a directory path.
// It strips everything up through the first case-insensitive occurrence of
// the managed root marker segment, then any OS download-folder prefix, and
// the trailing separator. A path that lands directly in the managed root
// yields "Root".
func FolderName(root, dir string) string {
	if dir == "" {
		return ""
	}
	s := strings.ReplaceAll(dir, "\\", "/")

	if root != "" {
		marker := "/" + strings.ToLower(root) + "/"
		lower := strings.ToLower(s)
		if i := strings.Index(lower, marker); i >= 0 {
			s = s[i+len(marker):]
		} else if strings.HasPrefix(lower, strings.ToLower(root)+"/") {
			s = s[len(root)+1:]
		}
	}

	lower := strings.ToLower(s)
	if i := strings.Index(lower, "/downloads/"); i >= 0 {
		s = s[i+len("/downloads/"):]
	} else if strings.HasPrefix(lower, "downloads/") {
		s = s[len("downloads/"):]
	}

	s = strings.TrimSuffix(s, "/")
	if s == "" {
		return "Root"
	}
	return s
}
