package learning

import (
	"testing"

	"sortdl/internal/config"
	"sortdl/internal/state"
)

func openTestDB(t *testing.T) *state.DB {
	t.Helper()
	cfg := config.Default()
	cfg.General.DataRoot = t.TempDir()
	db, err := state.Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestApplyAccept(t *testing.T) {
	db := openTestDB(t)
	p := state.Proposal{
		Website:     "NewSite.com",
		Extension:   ".ZIP",
		Folder:      " Icons ",
		DeclinedKey: "newsite.com__zip",
	}
	if err := Apply(db, p, Accept); err != nil {
		t.Fatal(err)
	}
	snap, _ := db.LoadSnapshot()
	// accept normalizes website/extension/folder
	if f, ok := snap.Sites.Folder("newsite.com", "zip"); !ok || f != "Icons" {
		t.Fatalf("rule not written: %q %v", f, ok)
	}
}

func TestApplyAcceptIdempotent(t *testing.T) {
	db := openTestDB(t)
	p := state.Proposal{Website: "a.com", Extension: "zip", Folder: "X", DeclinedKey: "a.com__zip"}
	if err := Apply(db, p, Accept); err != nil {
		t.Fatal(err)
	}
	if err := Apply(db, p, Accept); err != nil {
		t.Fatal(err)
	}
	snap, _ := db.LoadSnapshot()
	if len(snap.Sites["a.com"]) != 1 {
		t.Fatalf("duplicate entries: %+v", snap.Sites["a.com"])
	}
}

func TestApplyReject(t *testing.T) {
	db := openTestDB(t)
	p := state.Proposal{Website: "a.com", Extension: "zip", Folder: "X", DeclinedKey: "a.com__zip"}
	if err := Apply(db, p, Reject); err != nil {
		t.Fatal(err)
	}
	snap, _ := db.LoadSnapshot()
	if len(snap.Sites) != 0 || len(snap.Declined) != 0 {
		t.Fatalf("reject mutated state: %+v", snap)
	}
}

func TestApplyDeclineForever(t *testing.T) {
	db := openTestDB(t)
	p := state.Proposal{Website: "a.com", Extension: "zip", Folder: "X", DeclinedKey: "a.com__zip"}
	if err := Apply(db, p, DeclineForever); err != nil {
		t.Fatal(err)
	}
	snap, _ := db.LoadSnapshot()
	if !snap.Declined["a.com__zip"] {
		t.Fatal("declined key not persisted")
	}
	// future evaluations for that pair never propose again
	r := Evaluate("Sorted", snap, Download{
		ID:        "9",
		SourceURL: "https://a.com/f",
		SavedPath: "/home/u/Downloads/Sorted/Other/a.zip",
	}, nil)
	if r.Action != NoAction || r.Reason != "declined" {
		t.Fatalf("got %+v", r)
	}
}
