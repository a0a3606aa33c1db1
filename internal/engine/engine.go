// Package engine wires the routing resolver and the learning evaluator to
// the outside world: the download subsystem, the active-tab lookup, and the
// notification presenter. It owns no UI; collaborators are interfaces.
package engine

import (
	"context"
	"path"
	"strings"
	"time"

	"sortdl/internal/config"
	"sortdl/internal/learning"
	"sortdl/internal/logging"
	"sortdl/internal/metrics"
	"sortdl/internal/resolver"
	"sortdl/internal/state"
	"sortdl/internal/util"
)

// Item is a download as reported by the download subsystem. Filename is the
// suggested base name while the download is being determined, and the full
// saved path once it completes.
type Item struct {
	ID       string
	URL      string
	FinalURL string
	Referrer string
	Filename string
	FileSize int64
	State    string // in_progress | complete | interrupted
}

// Downloads is the download subsystem the engine queries by id.
type Downloads interface {
	Search(ctx context.Context, id string) (Item, bool, error)
}

// TabLookup recovers a source URL from the focused browser tab, used only
// when a download's own URL is opaque (blob:/data:).
type TabLookup interface {
	ActiveTabURL(ctx context.Context) (string, error)
}

// Notification is a three-button prompt presented to the user.
type Notification struct {
	ID      string
	Title   string
	Message string
	Buttons []string
}

// Notifier presents notifications. Failures are never fatal to the engine.
type Notifier interface {
	Show(ctx context.Context, n Notification) error
	Clear(ctx context.Context, id string) error
}

// Response tells the download subsystem where to save a routed file.
// A nil *Response means pass through to the platform default.
type Response struct {
	Filename       string
	ConflictAction string
}

// RuleListener is told when the rule table changes, so open management
// surfaces can refresh. Notification is best-effort.
type RuleListener interface {
	RulesChanged()
}

type Engine struct {
	cfg      *config.Config
	db       *state.DB
	log      *logging.Logger
	met      *metrics.Manager
	dls      Downloads
	tabs     TabLookup
	notif    Notifier
	listener RuleListener
	now      func() time.Time
}

func New(cfg *config.Config, db *state.DB, log *logging.Logger, met *metrics.Manager,
	dls Downloads, tabs TabLookup, notif Notifier) *Engine {
	return &Engine{
		cfg:   cfg,
		db:    db,
		log:   log,
		met:   met,
		dls:   dls,
		tabs:  tabs,
		notif: notif,
		now:   time.Now,
	}
}

// SetRuleListener registers the presentation-layer refresh hook.
func (e *Engine) SetRuleListener(l RuleListener) { e.listener = l }

func (e *Engine) rulesChanged() {
	if e.listener != nil {
		e.listener.RulesChanged()
	}
}

// SourceURL recovers the URL a download came from. The final URL wins; for
// opaque schemes it falls back to the referrer, then the active tab.
func (e *Engine) SourceURL(ctx context.Context, item Item) string {
	u := item.FinalURL
	if u == "" {
		u = item.URL
	}
	if strings.HasPrefix(u, "blob:") || strings.HasPrefix(u, "data:") {
		if item.Referrer != "" {
			return item.Referrer
		}
		if e.tabs != nil {
			if tab, err := e.tabs.ActiveTabURL(ctx); err == nil && tab != "" {
				e.log.Debugf("using active tab url for download %s: %s", item.ID, logging.SanitizeURL(tab))
				return tab
			}
		}
	}
	return u
}

// HandleDetermining routes a pending download. It returns nil (pass through)
// when the engine is disabled, nothing matches, or storage is unavailable;
// a failed route is never an error to the download subsystem. When a route
// is found the pending suggestion is persisted before the response is
// returned, so the completion event always sees a fully written record.
func (e *Engine) HandleDetermining(ctx context.Context, item Item) *Response {
	settings, err := e.db.LoadSettings()
	if err != nil {
		e.log.Errorf("load settings: %v", err)
		return nil
	}
	if !settings.ExtensionEnabled {
		return nil
	}

	src := e.SourceURL(ctx, item)
	website := util.WebsiteFromURL(src)
	ext := util.FileExtension(item.Filename)
	e.log.Debugf("download %s: %s from %q (.%s)", item.ID, item.Filename, website, ext)

	snap, err := e.db.LoadSnapshot()
	if err != nil {
		e.log.Errorf("load rules: %v", err)
		return nil
	}
	d := resolver.Resolve(snap, website, ext)
	if !d.Matched {
		e.log.Debugf("download %s: no rule, default location", item.ID)
		e.met.IncUnrouted()
		return nil
	}

	target := resolver.TargetPath(e.cfg.General.RootFolder, d.Folder, item.Filename)
	sug := state.Suggestion{
		SuggestedPath:  target,
		Website:        website,
		Extension:      ext,
		Folder:         d.Folder,
		MatchedWebsite: d.MatchedWebsite,
	}
	if err := e.db.PutSuggestion(item.ID, sug); err != nil {
		// Without the recorded suggestion the learning pass would misread
		// this download, so degrade to the default location instead.
		e.log.Errorf("record suggestion for %s: %v", item.ID, err)
		return nil
	}
	e.log.Infof("routing %s to %s", item.Filename, target)
	e.met.IncRouted()
	return &Response{Filename: target, ConflictAction: e.conflictAction()}
}

func (e *Engine) conflictAction() string {
	if a := e.cfg.General.ConflictAction; a != "" {
		return strings.ToLower(a)
	}
	return "uniquify"
}

// HandleCompleted runs the learning evaluation for a finished download and
// records it in the activity log. Every outcome, including the aborts,
// consumes the pending suggestion: no orphaned records survive a decision.
func (e *Engine) HandleCompleted(ctx context.Context, id string) {
	item, ok, err := e.dls.Search(ctx, id)
	if err != nil {
		e.log.Errorf("search download %s: %v", id, err)
		return
	}
	if !ok || item.State != "complete" {
		return
	}

	src := e.learningSourceURL(item)
	website := util.WebsiteFromURL(src)
	folder := util.FolderName(e.cfg.General.RootFolder, util.FolderFromPath(item.Filename))
	e.appendActivity(item, website, folder)

	settings, err := e.db.LoadSettings()
	if err != nil {
		e.log.Errorf("load settings: %v", err)
		return
	}
	if !settings.LearningEnabled {
		_ = e.db.RemoveSuggestion(id)
		return
	}

	snap, err := e.db.LoadSnapshot()
	if err != nil {
		e.log.Errorf("load rules: %v", err)
		_ = e.db.RemoveSuggestion(id)
		return
	}
	var sug *state.Suggestion
	if s, ok, err := e.db.GetSuggestion(id); err != nil {
		e.log.Errorf("read suggestion for %s: %v", id, err)
	} else if ok {
		sug = &s
	}

	result := learning.Evaluate(e.cfg.General.RootFolder, snap, learning.Download{
		ID:        id,
		SourceURL: src,
		SavedPath: item.Filename,
	}, sug)
	if err := e.db.RemoveSuggestion(id); err != nil {
		e.log.Warnf("remove suggestion for %s: %v", id, err)
	}

	if result.Action == learning.NoAction {
		e.log.Debugf("download %s: no learning (%s)", id, result.Reason)
		return
	}
	e.propose(ctx, result.Proposal)
}

// learningSourceURL mirrors the completion-side preference: the referrer
// names the page the user downloaded from, which is what a rule should key
// on; the download URL is often a CDN host.
func (e *Engine) learningSourceURL(item Item) string {
	if item.Referrer != "" {
		return item.Referrer
	}
	if item.FinalURL != "" {
		return item.FinalURL
	}
	return item.URL
}

func (e *Engine) appendActivity(item Item, website, folder string) {
	a := state.Activity{
		DownloadID: item.ID,
		Filename:   path.Base(strings.ReplaceAll(item.Filename, "\\", "/")),
		Website:    website,
		Folder:     folder,
		Size:       item.FileSize,
		Routed:     folder != "" && folder != "Root",
	}
	if err := e.db.AppendActivity(a); err != nil {
		e.log.Warnf("append activity: %v", err)
		return
	}
	limit := e.cfg.Engine.ActivityLimit
	if err := e.db.PruneActivity(limit); err != nil {
		e.log.Warnf("prune activity: %v", err)
	}
}

// propose persists a proposal record and presents its notification. A failed
// presentation removes the record again: a proposal the user can never see
// must not linger.
func (e *Engine) propose(ctx context.Context, p state.Proposal) {
	id := state.ProposalID(p.IsUpdate, e.now())
	if err := e.db.PutProposal(id, p); err != nil {
		e.log.Errorf("store proposal: %v", err)
		return
	}
	n := proposalNotification(id, p)
	if err := e.notif.Show(ctx, n); err != nil {
		e.log.Warnf("show proposal notification: %v", err)
		_ = e.db.RemoveProposal(id)
		return
	}
	e.log.Infof("proposal %s: %s .%s -> %s (update=%v)", id, p.Website, p.Extension, p.Folder, p.IsUpdate)
	e.met.IncProposals()
}

// HandleButton applies the user's answer to a proposal notification.
// Deleting the record and dismissing the notification happens
// unconditionally as the terminal step.
func (e *Engine) HandleButton(ctx context.Context, notificationID string, buttonIndex int) {
	if !state.IsProposalID(notificationID) {
		return
	}
	p, ok, err := e.db.GetProposal(notificationID)
	if err != nil {
		e.log.Errorf("read proposal %s: %v", notificationID, err)
		return
	}
	if !ok {
		return
	}
	defer func() {
		_ = e.db.RemoveProposal(notificationID)
		_ = e.notif.Clear(ctx, notificationID)
	}()

	resp := learning.ResponseFromButton(buttonIndex)
	if err := learning.Apply(e.db, p, resp); err != nil {
		e.log.Errorf("apply proposal %s: %v", notificationID, err)
		return
	}
	switch resp {
	case learning.Accept:
		e.log.Infof("rule saved: %s .%s -> %s", p.Website, p.Extension, p.Folder)
		e.met.IncRulesLearned()
		e.rulesChanged()
		_ = e.notif.Show(ctx, confirmationNotification(p))
	case learning.DeclineForever:
		e.met.IncDeclined()
	}
}

// HandleClicked reacts to a click on a proposal notification body: the
// proposal is surfaced to the rule-management UI as pending input, and the
// notification is dismissed.
func (e *Engine) HandleClicked(ctx context.Context, notificationID string) {
	if !state.IsProposalID(notificationID) {
		return
	}
	p, ok, err := e.db.GetProposal(notificationID)
	if err != nil {
		e.log.Errorf("read proposal %s: %v", notificationID, err)
	}
	if ok {
		pending := map[string]string{
			"website":   p.Website,
			"extension": p.Extension,
			"folder":    p.Folder,
		}
		if err := e.db.Set(state.Local, "pendingLearning", pending); err != nil {
			e.log.Warnf("stash pending learning: %v", err)
		}
		_ = e.db.Set(state.Local, "pendingTab", "sorting-rules")
	}
	_ = e.db.RemoveProposal(notificationID)
	_ = e.notif.Clear(ctx, notificationID)
}
