package db

import "time"

// Run is one recorded sync run
type Run struct {
	ID         int64     `db:"id"`
	StartedAt  time.Time `db:"started_at"`
	FinishedAt time.Time `db:"finished_at"`
	Total      int       `db:"total"`
	Created    int       `db:"created"`
	Updated    int       `db:"updated"`
	Failed     int       `db:"failed"`
	Error      string    `db:"error"`
}

// SyncedEntry is the last known sync state of one wallabag entry
type SyncedEntry struct {
	ID       int64     `db:"id"`
	Title    string    `db:"title"`
	URL      string    `db:"url"`
	Path     string    `db:"path"`
	Status   string    `db:"status"`
	Error    string    `db:"error"`
	SyncedAt time.Time `db:"synced_at"`
}
