// Package learning decides whether a completed download should produce a
// rule proposal, and applies the user's answer to the rule store.
package learning

import (
	"strings"

	"sortdl/internal/rules"
	"sortdl/internal/state"
	"sortdl/internal/util"
)

// Download carries the observed facts about one completed download.
type Download struct {
	ID        string
	SourceURL string
	SavedPath string
}

type Action int

const (
	NoAction Action = iota
	ProposeNew
	ProposeUpdate
)

// Result is the evaluator's decision. When Action is NoAction, Reason says
// why (for logs); otherwise Proposal is ready to present.
type Result struct {
	Action   Action
	Proposal state.Proposal
	Reason   string
}

// Evaluate inspects a completed download against the current rule snapshot
// and the suggestion recorded at routing time, if any. It is a pure
// decision: callers persist the proposal and delete the consumed suggestion.
//
// Reasons, in the order they short-circuit:
//   - "no-website" / "no-extension": nothing derivable, nothing to learn
//   - "followed-suggestion": the saved path contains the suggested folder
//   - "declined": the user opted out of proposals for this pair
//   - "rule-matches": an existing rule already names the observed folder
func Evaluate(rootFolder string, snap rules.Snapshot, dl Download, sug *state.Suggestion) Result {
	website := util.WebsiteFromURL(dl.SourceURL)
	if website == "" {
		return Result{Reason: "no-website"}
	}
	ext := util.FileExtension(dl.SavedPath)
	if ext == "" {
		return Result{Reason: "no-extension"}
	}
	folder := util.FolderName(rootFolder, util.FolderFromPath(dl.SavedPath))

	// A raw containment check on the folder name, as saved. A folder named
	// "Documents" inside "/My Documents Archive/" would false-positive; the
	// resolver-side folder names are short enough that this has not been a
	// problem in practice.
	if sug != nil {
		actual := strings.ReplaceAll(dl.SavedPath, "\\", "/")
		if sug.Folder != "" && strings.Contains(actual, sug.Folder) {
			return Result{Reason: "followed-suggestion"}
		}
	}

	key := rules.Key{Website: website, Extension: ext}.Encode()
	if snap.Declined[key] {
		return Result{Reason: "declined"}
	}

	proposal := state.Proposal{
		Website:     website,
		Extension:   ext,
		Folder:      folder,
		DeclinedKey: key,
	}
	if existing, ok := snap.Sites.Folder(website, ext); ok {
		if strings.EqualFold(existing, folder) {
			return Result{Reason: "rule-matches"}
		}
		proposal.IsUpdate = true
		return Result{Action: ProposeUpdate, Proposal: proposal}
	}
	return Result{Action: ProposeNew, Proposal: proposal}
}
