package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"sortdl/internal/batch"
	"sortdl/internal/config"
	"sortdl/internal/engine"
	"sortdl/internal/lockfile"
	"sortdl/internal/logging"
	"sortdl/internal/metrics"
	"sortdl/internal/state"
)

// handleSimulate replays a scenario file through the engine: each download
// raises a determining event, then a completion, and any learning
// notification is answered from the scenario (or the --answer override).
func handleSimulate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("simulate", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "Path to YAML config file")
	logLevel := fs.String("log-level", "info", "log level")
	jsonOut := fs.Bool("json", false, "json logs")
	answer := fs.String("answer", "", "override every respond: accept | reject | decline | none")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return errors.New("usage: sortdl simulate [flags] <scenario.yaml>")
	}
	switch *answer {
	case "", "accept", "reject", "decline", "none":
	default:
		return fmt.Errorf("invalid --answer: %s", *answer)
	}
	scn, err := batch.Load(fs.Arg(0))
	if err != nil {
		return err
	}
	return stateOp(rebuild(cfgPath, logLevel, jsonOut), func(c *config.Config, db *state.DB, log *logging.Logger) error {
		lock, err := lockfile.Acquire(filepath.Join(c.General.DataRoot, "sortdl.lock"))
		if err != nil {
			return err
		}
		defer lock.Release()

		met := metrics.New(c)
		store := &scriptedDownloads{items: map[string]engine.Item{}}
		notif := &consoleNotifier{}
		eng := engine.New(c, db, log, met, store, noTabs{}, notif)
		disp := engine.NewDispatcher(eng, len(scn.Downloads)*4)

		runCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		done := make(chan struct{})
		go func() {
			disp.Run(runCtx)
			close(done)
		}()

		for i, d := range scn.Downloads {
			id := d.ID
			if id == "" {
				id = fmt.Sprintf("sim-%d", i+1)
			}
			item := engine.Item{
				ID:       id,
				URL:      d.URL,
				FinalURL: d.FinalURL,
				Referrer: d.Referrer,
				Filename: d.Filename,
				FileSize: d.Size,
				State:    "in_progress",
			}
			store.put(item)

			respCh := make(chan *engine.Response, 1)
			ev := engine.Determining{Item: item, Respond: func(r *engine.Response) { respCh <- r }}
			if err := disp.Submit(runCtx, ev); err != nil {
				return err
			}
			var resp *engine.Response
			select {
			case resp = <-respCh:
			case <-runCtx.Done():
				return runCtx.Err()
			}

			rel := d.Filename
			if resp != nil {
				rel = resp.Filename
				fmt.Printf("%s: routed -> %s\n", d.Filename, resp.Filename)
			} else {
				fmt.Printf("%s: pass-through\n", d.Filename)
			}
			saved := d.SavedTo
			if saved == "" {
				saved = filepath.Join(c.General.DownloadRoot, filepath.FromSlash(rel))
			}
			item.State = "complete"
			item.Filename = saved
			store.put(item)

			if err := disp.Submit(runCtx, engine.Completed{ID: id}); err != nil {
				return err
			}
			if err := flush(runCtx, disp); err != nil {
				return err
			}

			nid, buttons := notif.takeProposal()
			if nid == "" {
				continue
			}
			want := d.Respond
			if *answer != "" {
				want = *answer
			}
			idx, ok := answerIndex(want)
			if !ok {
				fmt.Printf("%s: proposal %s left unanswered\n", d.Filename, nid)
				continue
			}
			fmt.Printf("%s: answering %q (%s)\n", d.Filename, buttons[idx], want)
			if err := disp.Submit(runCtx, engine.ButtonClicked{ID: nid, Index: idx}); err != nil {
				return err
			}
			if err := flush(runCtx, disp); err != nil {
				return err
			}
		}

		cancel()
		<-done
		if err := met.Write(); err != nil {
			log.Warnf("write metrics: %v", err)
		}
		return nil
	})
}

func flush(ctx context.Context, disp *engine.Dispatcher) error {
	doneCh := make(chan struct{})
	if err := disp.Submit(ctx, engine.Flush{Done: doneCh}); err != nil {
		return err
	}
	select {
	case <-doneCh:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// answerIndex maps a scenario answer to the proposal's button layout.
func answerIndex(answer string) (int, bool) {
	switch answer {
	case "accept":
		return 0, true
	case "reject":
		return 1, true
	case "decline":
		return 2, true
	default:
		return 0, false
	}
}

// scriptedDownloads is the scenario-backed download subsystem.
type scriptedDownloads struct {
	mu    sync.Mutex
	items map[string]engine.Item
}

func (s *scriptedDownloads) put(item engine.Item) {
	s.mu.Lock()
	s.items[item.ID] = item
	s.mu.Unlock()
}

func (s *scriptedDownloads) Search(ctx context.Context, id string) (engine.Item, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	return item, ok, nil
}

// noTabs is the tab lookup of a headless run: there is no focused tab.
type noTabs struct{}

func (noTabs) ActiveTabURL(ctx context.Context) (string, error) {
	return "", errors.New("no active tab in simulation")
}

// consoleNotifier prints notifications and remembers the latest proposal so
// the scenario loop can answer it.
type consoleNotifier struct {
	mu      sync.Mutex
	id      string
	buttons []string
}

func (n *consoleNotifier) Show(ctx context.Context, note engine.Notification) error {
	if len(note.Buttons) > 0 {
		fmt.Printf("  [?] %s\n      %s\n      buttons: %s\n", note.Title, note.Message, strings.Join(note.Buttons, " | "))
	} else {
		fmt.Printf("  [i] %s: %s\n", note.Title, note.Message)
	}
	if state.IsProposalID(note.ID) {
		n.mu.Lock()
		n.id = note.ID
		n.buttons = note.Buttons
		n.mu.Unlock()
	}
	return nil
}

func (n *consoleNotifier) Clear(ctx context.Context, id string) error {
	n.mu.Lock()
	if n.id == id {
		n.id = ""
		n.buttons = nil
	}
	n.mu.Unlock()
	return nil
}

// takeProposal returns and forgets the pending proposal notification.
func (n *consoleNotifier) takeProposal() (string, []string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	id, buttons := n.id, n.buttons
	n.id = ""
	n.buttons = nil
	return id, buttons
}
