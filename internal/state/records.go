package state

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"sortdl/internal/rules"
)

// Synced-tier keys shared with the rule-management surfaces. These names are
// the persisted schema; external editors read and write the same records.
const (
	KeyExtensionEnabled = "extensionEnabled"
	KeyLearningEnabled  = "learningEnabled"
	KeySiteRules        = "siteRules"
	KeyFileCategories   = "fileCategories"
	KeyDeclined         = "declinedSuggestions"
)

// Local-tier key prefixes for ephemeral records.
const (
	SuggestionPrefix = "suggested_"
	NewRulePrefix    = "new_rule_"
	UpdateRulePrefix = "update_rule_"
)

// Settings are the runtime on/off switches, stored in the synced tier so
// external surfaces can flip them.
type Settings struct {
	ExtensionEnabled bool
	LearningEnabled  bool
}

// Suggestion is the ephemeral record written when a download is routed,
// consumed when that download completes.
type Suggestion struct {
	SuggestedPath  string `json:"suggestedPath"`
	Website        string `json:"website"`
	Extension      string `json:"extension"`
	Folder         string `json:"folder"`
	MatchedWebsite string `json:"matchedWebsite"`
}

// Proposal is the ephemeral record behind a learning notification, consumed
// on the user's response.
type Proposal struct {
	Website     string `json:"website"`
	Extension   string `json:"extension"`
	Folder      string `json:"folder"`
	DeclinedKey string `json:"declinedKey"`
	IsUpdate    bool   `json:"isUpdate"`
}

// ProposalID generates the notification/record identifier for a proposal.
func ProposalID(isUpdate bool, now time.Time) string {
	prefix := NewRulePrefix
	if isUpdate {
		prefix = UpdateRulePrefix
	}
	return fmt.Sprintf("%s%d", prefix, now.UnixMilli())
}

// IsProposalID reports whether id names one of our learning records.
func IsProposalID(id string) bool {
	return strings.HasPrefix(id, NewRulePrefix) || strings.HasPrefix(id, UpdateRulePrefix)
}

func (db *DB) LoadSettings() (Settings, error) {
	s := Settings{}
	if _, err := db.Get(Synced, KeyExtensionEnabled, &s.ExtensionEnabled); err != nil {
		return s, err
	}
	if _, err := db.Get(Synced, KeyLearningEnabled, &s.LearningEnabled); err != nil {
		return s, err
	}
	return s, nil
}

func (db *DB) SaveSettings(s Settings) error {
	if err := db.Set(Synced, KeyExtensionEnabled, s.ExtensionEnabled); err != nil {
		return err
	}
	return db.Set(Synced, KeyLearningEnabled, s.LearningEnabled)
}

// LoadSnapshot reads the full rule state for one resolution or evaluation.
func (db *DB) LoadSnapshot() (rules.Snapshot, error) {
	snap := rules.Snapshot{
		Sites:    rules.SiteRules{},
		Declined: rules.Declined{},
	}
	if _, err := db.Get(Synced, KeySiteRules, &snap.Sites); err != nil {
		return snap, err
	}
	if _, err := db.Get(Synced, KeyFileCategories, &snap.Categories); err != nil {
		return snap, err
	}
	if _, err := db.Get(Synced, KeyDeclined, &snap.Declined); err != nil {
		return snap, err
	}
	return snap, nil
}

func (db *DB) SaveSiteRules(r rules.SiteRules) error {
	return db.Set(Synced, KeySiteRules, r)
}

func (db *DB) SaveCategories(cats []rules.Category) error {
	return db.Set(Synced, KeyFileCategories, cats)
}

func (db *DB) SaveDeclined(d rules.Declined) error {
	return db.Set(Synced, KeyDeclined, d)
}

// EnsureDefaults bootstraps settings and merges in default rules/categories
// missing from the store. User entries are never overwritten. Runs on every
// startup; a populated store is a no-op.
func (db *DB) EnsureDefaults(bootstrap Settings) error {
	if ok, err := db.Get(Synced, KeyExtensionEnabled, nil); err != nil {
		return err
	} else if !ok {
		if err := db.Set(Synced, KeyExtensionEnabled, bootstrap.ExtensionEnabled); err != nil {
			return err
		}
	}
	if ok, err := db.Get(Synced, KeyLearningEnabled, nil); err != nil {
		return err
	} else if !ok {
		if err := db.Set(Synced, KeyLearningEnabled, bootstrap.LearningEnabled); err != nil {
			return err
		}
	}
	snap, err := db.LoadSnapshot()
	if err != nil {
		return err
	}
	if rules.MergeDefaults(&snap) {
		if err := db.SaveSiteRules(snap.Sites); err != nil {
			return err
		}
		if err := db.SaveCategories(snap.Categories); err != nil {
			return err
		}
	}
	if ok, err := db.Get(Synced, KeyDeclined, nil); err != nil {
		return err
	} else if !ok {
		if err := db.SaveDeclined(rules.Declined{}); err != nil {
			return err
		}
	}
	return nil
}

// MutateSiteRules applies fn to the current site-rule table inside a single
// transaction, so two near-simultaneous accepts cannot lose each other's
// rule.
func (db *DB) MutateSiteRules(fn func(rules.SiteRules)) error {
	return db.mutateJSON(KeySiteRules, func(raw []byte) ([]byte, error) {
		r := rules.SiteRules{}
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &r); err != nil {
				return nil, err
			}
		}
		fn(r)
		return json.Marshal(r)
	})
}

// MutateDeclined applies fn to the declined set inside a transaction.
func (db *DB) MutateDeclined(fn func(rules.Declined)) error {
	return db.mutateJSON(KeyDeclined, func(raw []byte) ([]byte, error) {
		d := rules.Declined{}
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &d); err != nil {
				return nil, err
			}
		}
		fn(d)
		return json.Marshal(d)
	})
}

func (db *DB) mutateJSON(key string, fn func([]byte) ([]byte, error)) error {
	tx, err := db.SQL.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var raw string
	err = tx.QueryRow(`SELECT value FROM sync_store WHERE key=?`, key).Scan(&raw)
	if err != nil && err != sql.ErrNoRows {
		return err
	}
	out, err := fn([]byte(raw))
	if err != nil {
		return err
	}
	_, err = tx.Exec(`INSERT INTO sync_store(key, value, updated_at) VALUES(?,?,?)
		ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at`,
		key, string(out), time.Now().Unix())
	if err != nil {
		return err
	}
	return tx.Commit()
}

func suggestionKey(downloadID string) string {
	return SuggestionPrefix + downloadID
}

func (db *DB) PutSuggestion(downloadID string, s Suggestion) error {
	return db.Set(Local, suggestionKey(downloadID), s)
}

func (db *DB) GetSuggestion(downloadID string) (Suggestion, bool, error) {
	var s Suggestion
	ok, err := db.Get(Local, suggestionKey(downloadID), &s)
	return s, ok, err
}

func (db *DB) RemoveSuggestion(downloadID string) error {
	return db.Remove(Local, suggestionKey(downloadID))
}

func (db *DB) PutProposal(id string, p Proposal) error {
	return db.Set(Local, id, p)
}

func (db *DB) GetProposal(id string) (Proposal, bool, error) {
	var p Proposal
	ok, err := db.Get(Local, id, &p)
	return p, ok, err
}

func (db *DB) RemoveProposal(id string) error {
	return db.Remove(Local, id)
}
