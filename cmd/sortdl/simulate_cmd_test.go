package main

import (
	"context"
	"testing"

	"sortdl/internal/engine"
)

func TestAnswerIndex(t *testing.T) {
	cases := []struct {
		answer string
		idx    int
		ok     bool
	}{
		{"accept", 0, true},
		{"reject", 1, true},
		{"decline", 2, true},
		{"none", 0, false},
		{"", 0, false},
	}
	for _, c := range cases {
		idx, ok := answerIndex(c.answer)
		if idx != c.idx || ok != c.ok {
			t.Errorf("answerIndex(%q) = (%d, %v), want (%d, %v)", c.answer, idx, ok, c.idx, c.ok)
		}
	}
}

func TestScriptedDownloadsSearch(t *testing.T) {
	s := &scriptedDownloads{items: map[string]engine.Item{}}
	s.put(engine.Item{ID: "d1", Filename: "a.zip", State: "in_progress"})

	item, ok, err := s.Search(context.Background(), "d1")
	if err != nil || !ok {
		t.Fatalf("Search(d1) = %v, %v", ok, err)
	}
	if item.Filename != "a.zip" {
		t.Errorf("filename = %q", item.Filename)
	}

	s.put(engine.Item{ID: "d1", Filename: "/dl/a.zip", State: "complete"})
	item, _, _ = s.Search(context.Background(), "d1")
	if item.State != "complete" || item.Filename != "/dl/a.zip" {
		t.Errorf("updated item = %+v", item)
	}

	if _, ok, _ := s.Search(context.Background(), "missing"); ok {
		t.Error("Search(missing) found an item")
	}
}

func TestConsoleNotifierTakeProposal(t *testing.T) {
	n := &consoleNotifier{}
	if err := n.Show(context.Background(), engine.Notification{ID: "rule_saved_x", Title: "Rule Saved"}); err != nil {
		t.Fatal(err)
	}
	if id, _ := n.takeProposal(); id != "" {
		t.Errorf("confirmation notification recorded as proposal: %q", id)
	}

	note := engine.Notification{ID: "new_rule_123", Title: "Save?", Buttons: []string{"Yes, Save Rule", "No", "Don't Ask Again"}}
	if err := n.Show(context.Background(), note); err != nil {
		t.Fatal(err)
	}
	id, buttons := n.takeProposal()
	if id != "new_rule_123" || len(buttons) != 3 {
		t.Errorf("takeProposal = %q, %v", id, buttons)
	}
	if id, _ := n.takeProposal(); id != "" {
		t.Errorf("takeProposal not cleared: %q", id)
	}
}

func TestRebuildCommonFlags(t *testing.T) {
	cfg, level, jsonOut := "c.yml", "debug", true
	got := rebuild(&cfg, &level, &jsonOut)
	want := []string{"--log-level", "debug", "--config", "c.yml", "--json"}
	if len(got) != len(want) {
		t.Fatalf("rebuild = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("rebuild = %v, want %v", got, want)
		}
	}
}
