package rules

import (
	"fmt"
	"strings"
)

// SiteRules maps website → extension → destination folder. Website keys are
// canonical: lowercase, no scheme, no leading "www.". Extension keys are
// lowercase without the dot.
type SiteRules map[string]map[string]string

// Category names a folder and the extensions that default into it. Categories
// are kept as an ordered slice so fallback iteration is deterministic: the
// first category containing an extension wins.
type Category struct {
	Name       string   `json:"name" yaml:"name"`
	Extensions []string `json:"extensions" yaml:"extensions"`
}

// Declined marks (website, extension) pairs the user never wants proposals
// for again, keyed by Key.Encode().
type Declined map[string]bool

// Snapshot is the rule state a single resolution or evaluation runs against.
// Callers load it from the store, pass it by value, and persist any mutation
// explicitly; there is no shared mutable table.
type Snapshot struct {
	Sites      SiteRules
	Categories []Category
	Declined   Declined
}

// Key identifies a (website, extension) pair. The encoded form uses a
// double-underscore separator, matching the persisted declined-set keys.
type Key struct {
	Website   string
	Extension string
}

const keySep = "__"

func (k Key) Encode() string {
	return k.Website + keySep + k.Extension
}

// ParseKey splits an encoded key back into its parts. The website portion of
// a canonical key cannot contain "__" (hostnames never do), so the first
// separator wins.
func ParseKey(s string) (Key, error) {
	i := strings.Index(s, keySep)
	if i < 0 {
		return Key{}, fmt.Errorf("malformed pair key: %s", s)
	}
	return Key{Website: s[:i], Extension: s[i+len(keySep):]}, nil
}

// NormalizeWebsite canonicalizes a website key for storage and lookup.
func NormalizeWebsite(site string) string {
	s := strings.ToLower(strings.TrimSpace(site))
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")
	s = strings.TrimPrefix(s, "www.")
	return strings.TrimSuffix(s, "/")
}

// NormalizeExtension canonicalizes an extension key (lowercase, no dot).
func NormalizeExtension(ext string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(ext)), ".")
}

// Folder returns the rule folder for (website, extension), if any.
func (r SiteRules) Folder(website, ext string) (string, bool) {
	exts, ok := r[website]
	if !ok {
		return "", false
	}
	folder, ok := exts[ext]
	return folder, ok
}

// Set adds or replaces a rule, creating the site map when needed.
func (r SiteRules) Set(website, ext, folder string) {
	website = NormalizeWebsite(website)
	ext = NormalizeExtension(ext)
	if r[website] == nil {
		r[website] = map[string]string{}
	}
	r[website][ext] = strings.TrimSpace(folder)
}

// Remove deletes a single rule, dropping the site entry once empty.
func (r SiteRules) Remove(website, ext string) {
	website = NormalizeWebsite(website)
	ext = NormalizeExtension(ext)
	if exts, ok := r[website]; ok {
		delete(exts, ext)
		if len(exts) == 0 {
			delete(r, website)
		}
	}
}

// Clone returns a deep copy; snapshots handed to concurrent readers must not
// alias the store's maps.
func (r SiteRules) Clone() SiteRules {
	out := make(SiteRules, len(r))
	for site, exts := range r {
		m := make(map[string]string, len(exts))
		for e, f := range exts {
			m[e] = f
		}
		out[site] = m
	}
	return out
}

// CategoryFor returns the first category containing ext, in slice order.
func CategoryFor(cats []Category, ext string) (string, bool) {
	for _, c := range cats {
		for _, e := range c.Extensions {
			if e == ext {
				return c.Name, true
			}
		}
	}
	return "", false
}

// MergeDefaults adds default sites and categories missing from the current
// tables without touching user entries. Returns true when anything changed.
// This is the install/upgrade path: user rules always survive.
func MergeDefaults(snap *Snapshot) bool {
	changed := false
	if snap.Sites == nil {
		snap.Sites = SiteRules{}
		changed = true
	}
	for site, exts := range DefaultSiteRules() {
		if _, ok := snap.Sites[site]; !ok {
			snap.Sites[site] = exts
			changed = true
		}
	}
	have := make(map[string]bool, len(snap.Categories))
	for _, c := range snap.Categories {
		have[c.Name] = true
	}
	for _, c := range DefaultCategories() {
		if !have[c.Name] {
			snap.Categories = append(snap.Categories, c)
			changed = true
		}
	}
	if snap.Declined == nil {
		snap.Declined = Declined{}
	}
	return changed
}
