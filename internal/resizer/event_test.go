package resizer

import (
	"math"
	"testing"
)

func TestProgressViews(t *testing.T) {
	p := Progress{FilesDone: 1, FilesTotal: 4, OriginalBytes: 3 * bytesPerMB, NewBytes: bytesPerMB / 2}

	if p.OriginalMB() != 3 {
		t.Errorf("OriginalMB() = %v, want 3", p.OriginalMB())
	}
	if p.NewMB() != 0.5 {
		t.Errorf("NewMB() = %v, want 0.5", p.NewMB())
	}
	if math.Abs(p.SavedMB()-2.5) > 1e-9 {
		t.Errorf("SavedMB() = %v, want 2.5", p.SavedMB())
	}
	if p.Fraction() != 0.25 {
		t.Errorf("Fraction() = %v, want 0.25", p.Fraction())
	}
	if (Progress{}).Fraction() != 1 {
		t.Error("empty run should report full progress")
	}
}

func TestProgressString(t *testing.T) {
	tests := []struct {
		p    Progress
		want string
	}{
		{Progress{FilesDone: 2, FilesTotal: 3, OriginalBytes: 2 * bytesPerMB, NewBytes: bytesPerMB}, "2/3 files, saved 1.00 MB"},
		{Progress{FilesDone: 1, FilesTotal: 3, Cancelled: true}, "1/3 files, saved 0.00 MB (cancelled)"},
	}
	for _, tt := range tests {
		if got := tt.p.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestEventTypeString(t *testing.T) {
	if EventLog.String() != "log" || EventProgress.String() != "progress" {
		t.Errorf("unexpected names %q %q", EventLog, EventProgress)
	}
}
