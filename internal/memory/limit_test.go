package memory

import (
	"runtime/debug"
	"testing"
)

func restoreMemoryLimit(t *testing.T) {
	t.Helper()
	prev := debug.SetMemoryLimit(-1)
	t.Cleanup(func() { debug.SetMemoryLimit(prev) })
}

func TestParseBytes(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"1048576", 1 << 20, false},
		{"512Mi", 512 << 20, false},
		{"2Gi", 2 << 30, false},
		{"64Ki", 64 << 10, false},
		{"2G", 2_000_000_000, false},
		{"500M", 500_000_000, false},
		{" 1Ti ", 1 << 40, false},
		{"", 0, true},
		{"lots", 0, true},
		{"0", 0, true},
		{"-5Mi", 0, true},
		{"9999999999Ti", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseBytes(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseBytes(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseBytes(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{512, "512 B"},
		{1536, "1.5 KiB"},
		{512 << 20, "512.0 MiB"},
		{3 << 30, "3.0 GiB"},
	}
	for _, tt := range tests {
		if got := FormatBytes(tt.in); got != tt.want {
			t.Errorf("FormatBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestConfigureLimit(t *testing.T) {
	defaultRatio := DefaultMemoryRatio
	tests := []struct {
		name       string
		limit      string
		ratio      string
		wantSource string
		wantLimit  int64
		wantRatio  float64
	}{
		{"unset", "", "", "none", 0, 0},
		{"garbage", "big", "", "none", 0, 0},
		{"default ratio", "1000000000", "", "MEMORY_LIMIT", 850_000_000, DefaultMemoryRatio},
		{"custom ratio", "1Gi", "0.5", "MEMORY_LIMIT", 512 << 20, 0.5},
		{"ratio out of range", "1Gi", "1.5", "MEMORY_LIMIT", int64(float64(1<<30) * defaultRatio), DefaultMemoryRatio},
		{"ratio garbage", "1Gi", "half", "MEMORY_LIMIT", int64(float64(1<<30) * defaultRatio), DefaultMemoryRatio},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			restoreMemoryLimit(t)
			t.Setenv("GOMEMLIMIT", "")
			t.Setenv("MEMORY_LIMIT", tt.limit)
			t.Setenv("MEMORY_RATIO", tt.ratio)

			got := ConfigureLimit()
			if got.Source != tt.wantSource || got.GoMemLimit != tt.wantLimit || got.Ratio != tt.wantRatio {
				t.Errorf("ConfigureLimit() = %+v", got)
			}
			if got.Configured {
				if applied := debug.SetMemoryLimit(-1); applied != tt.wantLimit {
					t.Errorf("runtime limit = %d, want %d", applied, tt.wantLimit)
				}
			}
		})
	}
}

func TestConfigureLimitRespectsGOMEMLIMIT(t *testing.T) {
	restoreMemoryLimit(t)
	t.Setenv("GOMEMLIMIT", "256MiB")
	t.Setenv("MEMORY_LIMIT", "1Gi")
	debug.SetMemoryLimit(256 << 20)

	got := ConfigureLimit()
	if got.Source != "GOMEMLIMIT" || got.GoMemLimit != 256<<20 {
		t.Errorf("ConfigureLimit() = %+v", got)
	}
	if got.ContainerLimit != 0 {
		t.Error("MEMORY_LIMIT must be ignored when GOMEMLIMIT is set")
	}
}
