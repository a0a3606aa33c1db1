package engine_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"sortdl/internal/engine"
	"sortdl/internal/logging"
	"sortdl/internal/state"
	"sortdl/internal/testutil"
)

type ruleListener struct{ changes int }

func (l *ruleListener) RulesChanged() { l.changes++ }

type fixture struct {
	eng   *engine.Engine
	db    *state.DB
	dls   *testutil.FakeDownloads
	tabs  *testutil.FakeTabs
	notif *testutil.FakeNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg, db := testutil.OpenState(t)
	if err := db.EnsureDefaults(state.Settings{ExtensionEnabled: true, LearningEnabled: true}); err != nil {
		t.Fatalf("ensure defaults: %v", err)
	}
	dls := testutil.NewFakeDownloads()
	tabs := &testutil.FakeTabs{}
	notif := &testutil.FakeNotifier{}
	log := logging.New("error", false)
	eng := engine.New(cfg, db, log, nil, dls, tabs, notif)
	return &fixture{eng: eng, db: db, dls: dls, tabs: tabs, notif: notif}
}

func TestRoutingWritesSuggestionBeforeResponding(t *testing.T) {
	f := newFixture(t)
	resp := f.eng.HandleDetermining(context.Background(), engine.Item{
		ID:       "1",
		URL:      "https://www.dafont.com/fancy-font.font",
		Filename: "fancy.zip",
	})
	if resp == nil {
		t.Fatal("expected a routing response")
	}
	if resp.Filename != "Sorted/Fonts/fancy.zip" {
		t.Fatalf("routed to %q", resp.Filename)
	}
	if resp.ConflictAction != "uniquify" {
		t.Fatalf("conflict action %q", resp.ConflictAction)
	}
	sug, ok, err := f.db.GetSuggestion("1")
	if err != nil || !ok {
		t.Fatalf("suggestion not recorded: ok=%v err=%v", ok, err)
	}
	if sug.Folder != "Fonts" || sug.Website != "dafont.com" || sug.MatchedWebsite != "dafont.com" {
		t.Fatalf("suggestion %+v", sug)
	}
}

func TestRoutingSubdomainRecordsRuleKey(t *testing.T) {
	f := newFixture(t)
	resp := f.eng.HandleDetermining(context.Background(), engine.Item{
		ID:       "2",
		URL:      "https://sub.dafont.com/x",
		Filename: "a.zip",
	})
	if resp == nil || resp.Filename != "Sorted/Fonts/a.zip" {
		t.Fatalf("resp %+v", resp)
	}
	sug, _, _ := f.db.GetSuggestion("2")
	if sug.Website != "sub.dafont.com" || sug.MatchedWebsite != "dafont.com" {
		t.Fatalf("suggestion %+v", sug)
	}
}

func TestRoutingCategoryFallback(t *testing.T) {
	f := newFixture(t)
	resp := f.eng.HandleDetermining(context.Background(), engine.Item{
		ID:       "3",
		URL:      "https://example.org/track",
		Filename: "song.mp3",
	})
	if resp == nil || resp.Filename != "Sorted/Audio/song.mp3" {
		t.Fatalf("resp %+v", resp)
	}
}

func TestRoutingNoMatchPassesThrough(t *testing.T) {
	f := newFixture(t)
	resp := f.eng.HandleDetermining(context.Background(), engine.Item{
		ID:       "4",
		URL:      "https://example.org/blob",
		Filename: "mystery.xyz",
	})
	if resp != nil {
		t.Fatalf("expected pass-through, got %+v", resp)
	}
	if _, ok, _ := f.db.GetSuggestion("4"); ok {
		t.Fatal("no suggestion should be recorded without a route")
	}
}

func TestRoutingDisabledEngine(t *testing.T) {
	f := newFixture(t)
	if err := f.db.SaveSettings(state.Settings{ExtensionEnabled: false, LearningEnabled: true}); err != nil {
		t.Fatal(err)
	}
	resp := f.eng.HandleDetermining(context.Background(), engine.Item{
		ID:       "5",
		URL:      "https://dafont.com/x",
		Filename: "a.zip",
	})
	if resp != nil {
		t.Fatalf("disabled engine must pass through, got %+v", resp)
	}
}

func TestSourceURLBlobFallsBackToReferrer(t *testing.T) {
	f := newFixture(t)
	got := f.eng.SourceURL(context.Background(), engine.Item{
		ID:       "6",
		URL:      "blob:https://app.example.com/xyz",
		Referrer: "https://www.flaticon.com/icons",
	})
	if got != "https://www.flaticon.com/icons" {
		t.Fatalf("got %q", got)
	}
}

func TestSourceURLBlobFallsBackToActiveTab(t *testing.T) {
	f := newFixture(t)
	f.tabs.URL = "https://unsplash.com/photos"
	got := f.eng.SourceURL(context.Background(), engine.Item{
		ID:  "7",
		URL: "blob:https://app.example.com/xyz",
	})
	if got != "https://unsplash.com/photos" {
		t.Fatalf("got %q", got)
	}
	// when the tab lookup fails too, the opaque URL is all we have
	f.tabs.URL = ""
	f.tabs.Err = errors.New("no window")
	got = f.eng.SourceURL(context.Background(), engine.Item{
		ID:  "8",
		URL: "blob:https://app.example.com/xyz",
	})
	if got != "blob:https://app.example.com/xyz" {
		t.Fatalf("got %q", got)
	}
}

func completedItem(id, referrer, savedPath string) engine.Item {
	return engine.Item{
		ID:       id,
		URL:      "https://cdn.example.net/pkg",
		Referrer: referrer,
		Filename: savedPath,
		FileSize: 2048,
		State:    "complete",
	}
}

func TestCompletedFollowedSuggestionNoProposal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.eng.HandleDetermining(ctx, engine.Item{ID: "10", URL: "https://dafont.com/x", Filename: "a.zip"})
	f.dls.Put(completedItem("10", "https://dafont.com/x", "/home/u/Downloads/Sorted/Fonts/a.zip"))

	f.eng.HandleCompleted(ctx, "10")

	if len(f.notif.Shown) != 0 {
		t.Fatalf("no proposal expected, got %+v", f.notif.Shown)
	}
	if _, ok, _ := f.db.GetSuggestion("10"); ok {
		t.Fatal("suggestion not consumed")
	}
}

func TestCompletedDivergenceEmitsNewRuleProposal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	// unmatched site, user saves into Icons by hand
	f.dls.Put(completedItem("11", "https://newsite.com/page", "/home/u/Downloads/Sorted/Icons/pic.webp"))

	f.eng.HandleCompleted(ctx, "11")

	n, ok := f.notif.LastShown()
	if !ok {
		t.Fatal("expected a proposal notification")
	}
	if !strings.HasPrefix(n.ID, state.NewRulePrefix) {
		t.Fatalf("notification id %q", n.ID)
	}
	if len(n.Buttons) != 3 {
		t.Fatalf("buttons %v", n.Buttons)
	}
	p, ok, err := f.db.GetProposal(n.ID)
	if err != nil || !ok {
		t.Fatalf("proposal record missing: %v", err)
	}
	if p.Website != "newsite.com" || p.Extension != "webp" || p.Folder != "Icons" || p.IsUpdate {
		t.Fatalf("proposal %+v", p)
	}
}

func TestCompletedDivergenceEmitsUpdateProposal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	// dafont.com zip -> Fonts exists; user saved to Icons instead
	f.eng.HandleDetermining(ctx, engine.Item{ID: "12", URL: "https://dafont.com/x", Filename: "a.zip"})
	f.dls.Put(completedItem("12", "https://dafont.com/x", "/home/u/Downloads/Sorted/Icons/a.zip"))

	f.eng.HandleCompleted(ctx, "12")

	n, ok := f.notif.LastShown()
	if !ok {
		t.Fatal("expected an update proposal")
	}
	if !strings.HasPrefix(n.ID, state.UpdateRulePrefix) {
		t.Fatalf("notification id %q", n.ID)
	}
	p, _, _ := f.db.GetProposal(n.ID)
	if !p.IsUpdate || p.Folder != "Icons" {
		t.Fatalf("proposal %+v", p)
	}
	if _, ok, _ := f.db.GetSuggestion("12"); ok {
		t.Fatal("suggestion not consumed")
	}
}

func TestCompletedLearningDisabledConsumesSuggestion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if err := f.db.SaveSettings(state.Settings{ExtensionEnabled: true, LearningEnabled: false}); err != nil {
		t.Fatal(err)
	}
	f.eng.HandleDetermining(ctx, engine.Item{ID: "13", URL: "https://dafont.com/x", Filename: "a.zip"})
	f.dls.Put(completedItem("13", "https://dafont.com/x", "/home/u/Downloads/Sorted/Icons/a.zip"))

	f.eng.HandleCompleted(ctx, "13")

	if len(f.notif.Shown) != 0 {
		t.Fatal("learning disabled must not propose")
	}
	if _, ok, _ := f.db.GetSuggestion("13"); ok {
		t.Fatal("suggestion orphaned")
	}
}

func TestCompletedNotificationFailureRemovesProposal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.notif.ShowErr = errors.New("no surface")
	f.dls.Put(completedItem("14", "https://newsite.com/page", "/home/u/Downloads/Sorted/Icons/pic.png"))

	f.eng.HandleCompleted(ctx, "14")

	keys, err := f.db.Keys(state.Local, state.NewRulePrefix)
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 0 {
		t.Fatalf("orphaned proposal records: %v", keys)
	}
}

func TestCompletedRecordsActivity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.dls.Put(completedItem("15", "https://dafont.com/x", "/home/u/Downloads/Sorted/Fonts/a.zip"))
	f.eng.HandleCompleted(ctx, "15")

	acts, err := f.db.ListActivity(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(acts) != 1 {
		t.Fatalf("activity entries: %d", len(acts))
	}
	a := acts[0]
	if a.Filename != "a.zip" || a.Website != "dafont.com" || a.Folder != "Fonts" || !a.Routed || a.Size != 2048 {
		t.Fatalf("activity %+v", a)
	}
}

func proposalFor(t *testing.T, f *fixture, id, referrer, savedPath string) string {
	t.Helper()
	f.dls.Put(completedItem(id, referrer, savedPath))
	f.eng.HandleCompleted(context.Background(), id)
	n, ok := f.notif.LastShown()
	if !ok {
		t.Fatal("expected a proposal notification")
	}
	return n.ID
}

func TestButtonAcceptWritesRule(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	listener := &ruleListener{}
	f.eng.SetRuleListener(listener)
	nid := proposalFor(t, f, "20", "https://newsite.com/p", "/home/u/Downloads/Sorted/Icons/x.png")

	f.eng.HandleButton(ctx, nid, 0)

	snap, _ := f.db.LoadSnapshot()
	if folder, ok := snap.Sites.Folder("newsite.com", "png"); !ok || folder != "Icons" {
		t.Fatalf("rule not learned: %q %v", folder, ok)
	}
	if _, ok, _ := f.db.GetProposal(nid); ok {
		t.Fatal("proposal record not deleted")
	}
	if len(f.notif.Cleared) == 0 || f.notif.Cleared[0] != nid {
		t.Fatalf("notification not cleared: %v", f.notif.Cleared)
	}
	if listener.changes != 1 {
		t.Fatalf("rule listener called %d times", listener.changes)
	}
	// a confirmation notification follows an accept
	last, _ := f.notif.LastShown()
	if last.Title != "Rule Saved" {
		t.Fatalf("confirmation missing, last=%+v", last)
	}
}

func TestButtonRejectLeavesRulesAlone(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	nid := proposalFor(t, f, "21", "https://newsite.com/p", "/home/u/Downloads/Sorted/Icons/x.png")

	f.eng.HandleButton(ctx, nid, 1)

	snap, _ := f.db.LoadSnapshot()
	if _, ok := snap.Sites.Folder("newsite.com", "png"); ok {
		t.Fatal("reject must not write a rule")
	}
	if _, ok, _ := f.db.GetProposal(nid); ok {
		t.Fatal("proposal record not deleted")
	}
}

func TestButtonDeclineForeverSuppressesFutureProposals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	nid := proposalFor(t, f, "22", "https://newsite.com/p", "/home/u/Downloads/Sorted/Icons/x.png")

	f.eng.HandleButton(ctx, nid, 2)

	snap, _ := f.db.LoadSnapshot()
	if !snap.Declined["newsite.com__png"] {
		t.Fatal("declined key not persisted")
	}
	// same pair, different folder: still no proposal
	shown := len(f.notif.Shown)
	f.dls.Put(completedItem("23", "https://newsite.com/p", "/home/u/Downloads/Sorted/Other/y.png"))
	f.eng.HandleCompleted(ctx, "23")
	if len(f.notif.Shown) != shown {
		t.Fatal("declined pair proposed again")
	}
}

func TestButtonIgnoresForeignNotifications(t *testing.T) {
	f := newFixture(t)
	f.eng.HandleButton(context.Background(), "some_other_notification", 0)
	if len(f.notif.Cleared) != 0 {
		t.Fatal("foreign notification must be ignored")
	}
}

func TestBodyClickStashesPendingLearning(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	nid := proposalFor(t, f, "24", "https://newsite.com/p", "/home/u/Downloads/Sorted/Icons/x.png")

	f.eng.HandleClicked(ctx, nid)

	var pending map[string]string
	ok, err := f.db.Get(state.Local, "pendingLearning", &pending)
	if err != nil || !ok {
		t.Fatalf("pendingLearning missing: %v", err)
	}
	if pending["website"] != "newsite.com" || pending["folder"] != "Icons" {
		t.Fatalf("pending %+v", pending)
	}
	if _, ok, _ := f.db.GetProposal(nid); ok {
		t.Fatal("proposal record not deleted")
	}
}

func TestDispatcherProcessesInOrder(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	disp := engine.NewDispatcher(f.eng, 8)
	go disp.Run(ctx)

	got := make(chan *engine.Response, 1)
	err := disp.Submit(ctx, engine.Determining{
		Item:    engine.Item{ID: "30", URL: "https://dafont.com/x", Filename: "a.zip"},
		Respond: func(r *engine.Response) { got <- r },
	})
	if err != nil {
		t.Fatal(err)
	}
	resp := <-got
	if resp == nil || resp.Filename != "Sorted/Fonts/a.zip" {
		t.Fatalf("resp %+v", resp)
	}

	f.dls.Put(completedItem("30", "https://dafont.com/x", "/home/u/Downloads/Sorted/Fonts/a.zip"))
	if err := disp.Submit(ctx, engine.Completed{ID: "30"}); err != nil {
		t.Fatal(err)
	}
	// drain with a follow-up event whose response tells us the queue is empty
	done := make(chan *engine.Response, 1)
	_ = disp.Submit(ctx, engine.Determining{
		Item:    engine.Item{ID: "31", URL: "https://example.org/x", Filename: "y.xyz"},
		Respond: func(r *engine.Response) { done <- r },
	})
	<-done
	if _, ok, _ := f.db.GetSuggestion("30"); ok {
		t.Fatal("suggestion not consumed by completion event")
	}
}
