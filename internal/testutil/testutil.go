// Package testutil provides fixtures and fake collaborators for engine
// tests: a temp-dir state store and recording implementations of the
// download, tab, and notification interfaces.
package testutil

import (
	"context"
	"sync"
	"testing"

	"sortdl/internal/config"
	"sortdl/internal/engine"
	"sortdl/internal/state"
)

// OpenState returns a config rooted in a temp dir and an open state DB,
// closed automatically when the test ends.
func OpenState(t *testing.T) (*config.Config, *state.DB) {
	t.Helper()
	cfg := config.Default()
	cfg.General.DataRoot = t.TempDir()
	db, err := state.Open(cfg)
	if err != nil {
		t.Fatalf("open state: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return cfg, db
}

// FakeDownloads serves canned download items by id.
type FakeDownloads struct {
	mu    sync.Mutex
	Items map[string]engine.Item
	Err   error
}

func NewFakeDownloads() *FakeDownloads {
	return &FakeDownloads{Items: map[string]engine.Item{}}
}

func (f *FakeDownloads) Put(item engine.Item) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Items[item.ID] = item
}

func (f *FakeDownloads) Search(_ context.Context, id string) (engine.Item, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return engine.Item{}, false, f.Err
	}
	item, ok := f.Items[id]
	return item, ok, nil
}

// FakeTabs returns a fixed active-tab URL.
type FakeTabs struct {
	URL string
	Err error
}

func (f *FakeTabs) ActiveTabURL(context.Context) (string, error) {
	return f.URL, f.Err
}

// FakeNotifier records every notification shown and cleared.
type FakeNotifier struct {
	mu      sync.Mutex
	Shown   []engine.Notification
	Cleared []string
	ShowErr error
}

func (f *FakeNotifier) Show(_ context.Context, n engine.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ShowErr != nil {
		return f.ShowErr
	}
	f.Shown = append(f.Shown, n)
	return nil
}

func (f *FakeNotifier) Clear(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Cleared = append(f.Cleared, id)
	return nil
}

// LastShown returns the most recent notification, if any.
func (f *FakeNotifier) LastShown() (engine.Notification, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Shown) == 0 {
		return engine.Notification{}, false
	}
	return f.Shown[len(f.Shown)-1], true
}
