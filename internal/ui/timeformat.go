package ui

import (
	"time"

	"github.com/dustin/go-humanize"
)

var timeNow = time.Now

// FormatRelativeTime describes t relative to now ("3 minutes ago"). Times
// older than 100 days or in the future fall back to a short absolute date.
func FormatRelativeTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	now := timeNow()
	if t.After(now) || now.Sub(t) > 100*24*time.Hour {
		local := t.In(now.Location())
		if local.Year() == now.Year() {
			return local.Format("Jan 2")
		}
		return local.Format("Jan '06")
	}
	if now.Sub(t) < time.Minute {
		return "now"
	}
	return humanize.RelTime(t, now, "ago", "from now")
}
