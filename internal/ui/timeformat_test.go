package ui

import (
	"testing"
	"time"
)

func TestFormatRelativeTime(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	orig := timeNow
	timeNow = func() time.Time { return now }
	t.Cleanup(func() { timeNow = orig })

	cases := []struct {
		name string
		in   time.Time
		want string
	}{
		{"zero", time.Time{}, ""},
		{"just now", now.Add(-10 * time.Second), "now"},
		{"minutes", now.Add(-5 * time.Minute), "5 minutes ago"},
		{"hours", now.Add(-3 * time.Hour), "3 hours ago"},
		{"future", now.Add(48 * time.Hour), "Jun 17"},
		{"old same year", time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC), "Jan 2"},
		{"old other year", time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), "Mar '24"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := FormatRelativeTime(tc.in); got != tc.want {
				t.Fatalf("FormatRelativeTime(%v) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
