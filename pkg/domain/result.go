package domain

import "time"

// SyncStatus is the outcome of reconciling a single entry's file
type SyncStatus string

const (
	StatusCreated SyncStatus = "created"
	StatusUpdated SyncStatus = "updated"
	StatusFailed  SyncStatus = "failed"
)

// EntryOutcome records what happened to one entry during a run
type EntryOutcome struct {
	EntryID int64
	Title   string
	URL     string
	Path    string
	Status  SyncStatus
	Err     error
}

// RunResult aggregates the outcomes of one complete sync run
type RunResult struct {
	StartedAt  time.Time
	FinishedAt time.Time
	Total      int
	Created    int
	Updated    int
	Failed     int
	Outcomes   []EntryOutcome
}

// Add records an outcome and bumps the matching counter
func (r *RunResult) Add(o EntryOutcome) {
	r.Outcomes = append(r.Outcomes, o)
	switch o.Status {
	case StatusCreated:
		r.Created++
	case StatusUpdated:
		r.Updated++
	case StatusFailed:
		r.Failed++
	}
}
