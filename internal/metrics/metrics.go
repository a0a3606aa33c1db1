package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"sortdl/internal/config"
)

// Manager accumulates engine counters and writes them in Prometheus
// textfile format. A nil Manager is a no-op, so callers never guard.
type Manager struct {
	path string
	mu   sync.Mutex
	// counters
	routed       int64
	unrouted     int64
	proposals    int64
	rulesLearned int64
	declined     int64
}

func New(cfg *config.Config) *Manager {
	if cfg == nil || !cfg.Metrics.Textfile.Enabled || cfg.Metrics.Textfile.Path == "" {
		return nil
	}
	p := cfg.Metrics.Textfile.Path
	_ = os.MkdirAll(filepath.Dir(p), 0o755)
	return &Manager{path: p}
}

func (m *Manager) IncRouted() {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.routed++
	m.mu.Unlock()
}

func (m *Manager) IncUnrouted() {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.unrouted++
	m.mu.Unlock()
}

func (m *Manager) IncProposals() {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.proposals++
	m.mu.Unlock()
}

func (m *Manager) IncRulesLearned() {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.rulesLearned++
	m.mu.Unlock()
}

func (m *Manager) IncDeclined() {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.declined++
	m.mu.Unlock()
}

func (m *Manager) Write() error {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	f, err := os.CreateTemp(filepath.Dir(m.path), ".metrics.tmp.*")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name())

	fmt.Fprintf(f, "# HELP sortdl_routed_total Downloads routed to a managed folder.\n")
	fmt.Fprintf(f, "# TYPE sortdl_routed_total counter\n")
	fmt.Fprintf(f, "sortdl_routed_total %d\n", m.routed)

	fmt.Fprintf(f, "# HELP sortdl_unrouted_total Downloads passed through to the default location.\n")
	fmt.Fprintf(f, "# TYPE sortdl_unrouted_total counter\n")
	fmt.Fprintf(f, "sortdl_unrouted_total %d\n", m.unrouted)

	fmt.Fprintf(f, "# HELP sortdl_proposals_total Learning proposals presented.\n")
	fmt.Fprintf(f, "# TYPE sortdl_proposals_total counter\n")
	fmt.Fprintf(f, "sortdl_proposals_total %d\n", m.proposals)

	fmt.Fprintf(f, "# HELP sortdl_rules_learned_total Proposals accepted into the rule table.\n")
	fmt.Fprintf(f, "# TYPE sortdl_rules_learned_total counter\n")
	fmt.Fprintf(f, "sortdl_rules_learned_total %d\n", m.rulesLearned)

	fmt.Fprintf(f, "# HELP sortdl_declined_total Proposals permanently declined.\n")
	fmt.Fprintf(f, "# TYPE sortdl_declined_total counter\n")
	fmt.Fprintf(f, "sortdl_declined_total %d\n", m.declined)

	fmt.Fprintf(f, "# HELP sortdl_metrics_timestamp_seconds UNIX timestamp when this file was written.\n")
	fmt.Fprintf(f, "# TYPE sortdl_metrics_timestamp_seconds gauge\n")
	fmt.Fprintf(f, "sortdl_metrics_timestamp_seconds %d\n", time.Now().Unix())

	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), m.path)
}
