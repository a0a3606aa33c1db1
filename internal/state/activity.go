package state

import "time"

// Activity is one completed download in the local history log, backing the
// history command and the TUI activity tab.
type Activity struct {
	ID          int64
	DownloadID  string
	Filename    string
	Website     string
	Folder      string
	Size        int64
	Routed      bool
	CompletedAt int64
}

func (db *DB) InitActivityTable() error {
	_, err := db.SQL.Exec(`CREATE TABLE IF NOT EXISTS activity (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		download_id TEXT NOT NULL,
		filename TEXT NOT NULL,
		website TEXT,
		folder TEXT,
		size INTEGER DEFAULT 0,
		routed INTEGER DEFAULT 0,
		completed_at INTEGER NOT NULL
	);`)
	return err
}

func (db *DB) AppendActivity(a Activity) error {
	if a.CompletedAt == 0 {
		a.CompletedAt = time.Now().Unix()
	}
	routed := 0
	if a.Routed {
		routed = 1
	}
	_, err := db.SQL.Exec(
		`INSERT INTO activity(download_id, filename, website, folder, size, routed, completed_at)
		 VALUES(?,?,?,?,?,?,?)`,
		a.DownloadID, a.Filename, a.Website, a.Folder, a.Size, routed, a.CompletedAt)
	return err
}

// ListActivity returns the most recent entries, newest first.
func (db *DB) ListActivity(limit int) ([]Activity, error) {
	if limit <= 0 {
		limit = 200
	}
	rows, err := db.SQL.Query(
		`SELECT id, download_id, filename, COALESCE(website,''), COALESCE(folder,''),
		        COALESCE(size,0), COALESCE(routed,0), completed_at
		 FROM activity ORDER BY completed_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Activity
	for rows.Next() {
		var a Activity
		var routed int
		if err := rows.Scan(&a.ID, &a.DownloadID, &a.Filename, &a.Website, &a.Folder,
			&a.Size, &routed, &a.CompletedAt); err != nil {
			return nil, err
		}
		a.Routed = routed != 0
		out = append(out, a)
	}
	return out, rows.Err()
}

// PruneActivity keeps only the newest limit entries.
func (db *DB) PruneActivity(limit int) error {
	if limit <= 0 {
		limit = 200
	}
	_, err := db.SQL.Exec(
		`DELETE FROM activity WHERE id NOT IN (
			SELECT id FROM activity ORDER BY completed_at DESC, id DESC LIMIT ?)`, limit)
	return err
}
