package logging

import (
	"log/slog"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want slog.Level
		ok   bool
	}{
		{"DEBUG", slog.LevelDebug, true},
		{"info", slog.LevelInfo, true},
		{"", slog.LevelInfo, true},
		{" Warning ", slog.LevelWarn, true},
		{"warn", slog.LevelWarn, true},
		{"ERROR", slog.LevelError, true},
		{"critical", LevelCritical, true},
		{"fatal", LevelCritical, true},
		{"verbose", slog.LevelInfo, false},
	}
	for _, tc := range cases {
		got, ok := ParseLevel(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Errorf("ParseLevel(%q) = (%v, %v), want (%v, %v)", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestNormalizeLevelName(t *testing.T) {
	if got := NormalizeLevelName("warn"); got != "WARNING" {
		t.Fatalf("NormalizeLevelName(warn) = %q", got)
	}
	if got := NormalizeLevelName("verbose"); got != "VERBOSE" {
		t.Fatalf("NormalizeLevelName(verbose) = %q", got)
	}
}
