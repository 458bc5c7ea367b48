package resizer

import "fmt"

// bytesPerMB converts byte counters to the megabytes shown to users.
const bytesPerMB = 1024 * 1024

// EventType distinguishes log lines from progress updates.
type EventType int

const (
	// EventLog carries a human-readable line in Event.Line.
	EventLog EventType = iota
	// EventProgress carries the running totals in Event.Progress.
	EventProgress
)

func (t EventType) String() string {
	switch t {
	case EventLog:
		return "log"
	case EventProgress:
		return "progress"
	default:
		return fmt.Sprintf("unknown(%d)", int(t))
	}
}

// Event is one message published by ProcessFolder.
type Event struct {
	Type     EventType
	Line     string
	Progress Progress
}

// Progress is the running total of a folder run. Counters never decrease
// during a run.
type Progress struct {
	FilesDone     int   `json:"filesDone"`
	FilesTotal    int   `json:"filesTotal"`
	OriginalBytes int64 `json:"originalBytes"`
	NewBytes      int64 `json:"newBytes"`
	Cancelled     bool  `json:"cancelled"`
}

// OriginalMB is the size of the processed originals in megabytes.
func (p Progress) OriginalMB() float64 {
	return float64(p.OriginalBytes) / bytesPerMB
}

// NewMB is the size of the files left on disk in megabytes.
func (p Progress) NewMB() float64 {
	return float64(p.NewBytes) / bytesPerMB
}

// SavedMB is how many megabytes the run has freed so far.
func (p Progress) SavedMB() float64 {
	return float64(p.OriginalBytes-p.NewBytes) / bytesPerMB
}

// Fraction is FilesDone/FilesTotal, or 1 for an empty folder.
func (p Progress) Fraction() float64 {
	if p.FilesTotal == 0 {
		return 1
	}
	return float64(p.FilesDone) / float64(p.FilesTotal)
}

func (p Progress) String() string {
	s := fmt.Sprintf("%d/%d files, saved %.2f MB", p.FilesDone, p.FilesTotal, p.SavedMB())
	if p.Cancelled {
		s += " (cancelled)"
	}
	return s
}

func logEvent(format string, args ...any) Event {
	return Event{Type: EventLog, Line: fmt.Sprintf(format, args...)}
}

func progressEvent(p Progress) Event {
	return Event{Type: EventProgress, Progress: p}
}
