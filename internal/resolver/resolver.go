package resolver

import (
	"path"
	"sort"
	"strings"

	"sortdl/internal/rules"
)

// Decision is the outcome of routing one download. Matched is false when no
// site rule or category applies; the caller then leaves the save path alone.
type Decision struct {
	Folder         string
	MatchedWebsite string
	Matched        bool
}

// Resolve computes the destination folder for a (website, extension) pair
// against a rule snapshot. Priority, first match wins:
//
//  1. exact site rule for website+extension
//  2. ancestor-domain rule: website equals or is a subdomain of a rule key
//     that has the extension; the longest rule key wins
//  3. first category containing the extension
//  4. no route
func Resolve(snap rules.Snapshot, website, ext string) Decision {
	if website != "" && ext != "" {
		if folder, ok := snap.Sites.Folder(website, ext); ok {
			return Decision{Folder: folder, MatchedWebsite: website, Matched: true}
		}
		if d, ok := ancestorMatch(snap.Sites, website, ext); ok {
			return d
		}
	}
	if ext != "" {
		if name, ok := rules.CategoryFor(snap.Categories, ext); ok {
			return Decision{Folder: name, Matched: true}
		}
	}
	return Decision{}
}

// ancestorMatch finds rule keys that website equals or is a subdomain of.
// When several qualify (rules for both b.com and a.b.com, download from
// x.a.b.com), the longest key wins; length ties fall back to lexicographic
// order so one resolution never flips between runs.
func ancestorMatch(sites rules.SiteRules, website, ext string) (Decision, bool) {
	var keys []string
	for ruleSite, exts := range sites {
		if _, ok := exts[ext]; !ok {
			continue
		}
		if website == ruleSite || strings.HasSuffix(website, "."+ruleSite) {
			keys = append(keys, ruleSite)
		}
	}
	if len(keys) == 0 {
		return Decision{}, false
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	best := keys[0]
	return Decision{Folder: sites[best][ext], MatchedWebsite: best, Matched: true}, true
}

// TargetPath builds the suggested relative save path for a routed download,
// always using forward slashes (the download subsystem's path convention).
func TargetPath(rootFolder, folder, filename string) string {
	return path.Join(rootFolder, folder, filename)
}
