package database

import "time"

// Run is one folder pass.
type Run struct {
	ID          string
	Folder      string
	PhotoTarget string
	VideoTarget string
	StartedAt   time.Time
	FinishedAt  *time.Time
	Totals      RunTotals
}

// RunTotals are the aggregate counters stored when a run finishes.
type RunTotals struct {
	FilesTotal    int
	FilesDone     int
	OriginalBytes int64
	NewBytes      int64
	Cancelled     bool
}

// SavedBytes returns how much smaller the folder became.
func (t RunTotals) SavedBytes() int64 {
	return t.OriginalBytes - t.NewBytes
}

// OutcomeRecord is the journal entry for one processed file.
type OutcomeRecord struct {
	RunID         string
	Path          string
	Kind          string
	Strategy      string
	Status        string
	Reason        string
	OriginalBytes int64
	NewBytes      int64
	// Target is the resolution key the file was processed against, e.g. "1280x720".
	Target string
	// ContentHash is the hash of the file left at Path after processing.
	ContentHash string
	RecordedAt  time.Time
}
