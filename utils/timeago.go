package utils

import (
	"fmt"
	"time"
)

// TimeAgo formats t relative to now: hours under a day, days under a week,
// then a calendar date.
func TimeAgo(t, now time.Time) string {
	diff := now.Sub(t)
	if diff < 0 {
		diff = 0
	}
	hours := int(diff.Hours())
	if hours < 24 {
		return fmt.Sprintf("%dh ago", hours)
	}
	days := hours / 24
	if days < 7 {
		return fmt.Sprintf("%dd ago", days)
	}
	return t.Format("2006-01-02")
}
