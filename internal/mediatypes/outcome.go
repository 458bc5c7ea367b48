package mediatypes

import "fmt"

// Status is the terminal state of processing one file.
type Status int

const (
	// StatusFinished means the resized file replaced the original.
	StatusFinished Status = iota
	// StatusSkipped means the original was left untouched.
	StatusSkipped
	// StatusErrorIgnored means a failure was swallowed under the lenient
	// animation error policy.
	StatusErrorIgnored
)

// Skip reasons shared by the strategies.
const (
	ReasonResizedLarger     = "resized larger"
	ReasonInvalidResolution = "invalid resolution"
	ReasonCantOpenVideo     = "can't open video"
	ReasonAlreadyProcessed  = "already processed"
)

func (s Status) String() string {
	switch s {
	case StatusFinished:
		return "finished"
	case StatusSkipped:
		return "skipped"
	case StatusErrorIgnored:
		return "error_ignored"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// Outcome is the result of running one strategy on one file.
type Outcome struct {
	Status        Status
	Reason        string
	OriginalBytes int64
	NewBytes      int64
}

// Finished builds a successful outcome.
func Finished(originalBytes, newBytes int64) Outcome {
	return Outcome{Status: StatusFinished, OriginalBytes: originalBytes, NewBytes: newBytes}
}

// Skipped builds a skipped outcome that contributes nothing to the totals.
func Skipped(reason string) Outcome {
	return Outcome{Status: StatusSkipped, Reason: reason}
}

// SkippedUnchanged builds a skipped outcome for a file that was measured but left
// as is; the reported new size equals the original size.
func SkippedUnchanged(reason string, originalBytes int64) Outcome {
	return Outcome{Status: StatusSkipped, Reason: reason, OriginalBytes: originalBytes, NewBytes: originalBytes}
}

// SkippedError builds a skipped outcome for a failed file.
func SkippedError(err error) Outcome {
	return Skipped("error: " + err.Error())
}

// ErrorIgnored builds the lenient-mode outcome for a swallowed failure.
func ErrorIgnored(err error) Outcome {
	return Outcome{Status: StatusErrorIgnored, Reason: err.Error()}
}

// Label renders the outcome the way it appears in per-file log lines.
func (o Outcome) Label() string {
	switch o.Status {
	case StatusFinished:
		return "Finished"
	case StatusSkipped:
		if o.Reason == "" {
			return "Skipped"
		}
		return "Skipped (" + o.Reason + ")"
	case StatusErrorIgnored:
		return "Finished (error ignored: " + o.Reason + ")"
	default:
		return o.Status.String()
	}
}

// SavedBytes is the size reduction achieved for this file.
func (o Outcome) SavedBytes() int64 {
	return o.OriginalBytes - o.NewBytes
}
