package state

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/glebarez/sqlite"
	"sortdl/internal/config"
)

// Tier selects one of the two key-value stores: a small synced tier for
// rules and settings, and a larger local tier for ephemeral per-download
// and per-proposal records.
type Tier int

const (
	Synced Tier = iota
	Local
)

func (t Tier) table() string {
	if t == Synced {
		return "sync_store"
	}
	return "local_store"
}

type DB struct {
	SQL  *sql.DB
	Path string
}

func Open(cfg *config.Config) (*DB, error) {
	if cfg == nil {
		return nil, errors.New("nil config")
	}
	if cfg.General.DataRoot == "" {
		return nil, errors.New("general.data_root required")
	}
	if err := os.MkdirAll(cfg.General.DataRoot, 0o755); err != nil {
		return nil, err
	}
	path := filepath.Join(cfg.General.DataRoot, "state.db")
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout=5000&_pragma=journal_mode(WAL)", path)
	sqldb, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := initSchema(sqldb); err != nil {
		return nil, err
	}
	db := &DB{SQL: sqldb, Path: path}
	if err := db.InitActivityTable(); err != nil {
		return nil, err
	}
	return db, nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sync_store (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS local_store (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (db *DB) Close() error {
	return db.SQL.Close()
}

// Get unmarshals the JSON value stored under key into out. The second return
// reports whether the key existed.
func (db *DB) Get(tier Tier, key string, out any) (bool, error) {
	var raw string
	err := db.SQL.QueryRow(
		fmt.Sprintf(`SELECT value FROM %s WHERE key=?`, tier.table()), key,
	).Scan(&raw)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if out == nil {
		return true, nil
	}
	return true, json.Unmarshal([]byte(raw), out)
}

// Set stores v as JSON under key, replacing any previous value.
func (db *DB) Set(tier Tier, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = db.SQL.Exec(
		fmt.Sprintf(`INSERT INTO %s(key, value, updated_at) VALUES(?,?,?)
			ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at`, tier.table()),
		key, string(raw), time.Now().Unix())
	return err
}

// Remove deletes the given keys. Missing keys are not an error.
func (db *DB) Remove(tier Tier, keys ...string) error {
	for _, k := range keys {
		if _, err := db.SQL.Exec(
			fmt.Sprintf(`DELETE FROM %s WHERE key=?`, tier.table()), k); err != nil {
			return err
		}
	}
	return nil
}

// Keys lists keys in a tier matching prefix, oldest first.
func (db *DB) Keys(tier Tier, prefix string) ([]string, error) {
	rows, err := db.SQL.Query(
		fmt.Sprintf(`SELECT key FROM %s WHERE key LIKE ? ORDER BY updated_at ASC`, tier.table()),
		prefix+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, rows.Err()
}

// RemoveOlderThan deletes keys under prefix whose last write predates the
// cutoff. Used by `sortdl clean` to drop orphaned ephemeral records.
func (db *DB) RemoveOlderThan(tier Tier, prefix string, age time.Duration) (int64, error) {
	cutoff := time.Now().Add(-age).Unix()
	res, err := db.SQL.Exec(
		fmt.Sprintf(`DELETE FROM %s WHERE key LIKE ? AND updated_at < ?`, tier.table()),
		prefix+"%", cutoff)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return n, nil
}
