// internal/app/status.go
package app

import (
	"fmt"
	"time"

	"medication_reminder/internal/domain/settings"
)

// StatusSnapshot is the last status line drawn by the controller.
type StatusSnapshot struct {
	Time      string            `json:"time"`
	Synced    bool              `json:"synced"`
	NextAlarm string            `json:"next_alarm"`
	Volume    uint8             `json:"volume"`
	TimeMode  settings.TimeMode `json:"time_mode"`
}

func formatClock(t time.Time, mode settings.TimeMode) string {
	if mode == settings.TimeMode12h {
		return t.Format("03:04:05 PM")
	}
	return t.Format("15:04:05")
}

func formatAlarm(t time.Time, mode settings.TimeMode) string {
	if mode == settings.TimeMode12h {
		return t.Format("3:04 PM")
	}
	return t.Format("15:04")
}

func syncIndicator(synced bool) string {
	if synced {
		return "*"
	}
	return "?"
}

// nextAlarmSummary renders the second status line.
func nextAlarmSummary(now, next time.Time, ok bool, mode settings.TimeMode) string {
	if !ok {
		return "No alarms"
	}
	y1, m1, d1 := now.Date()
	y2, m2, d2 := next.Date()
	if y1 == y2 && m1 == m2 && d1 == d2 {
		return "Next " + formatAlarm(next, mode)
	}
	return fmt.Sprintf("Next %s +1d", formatAlarm(next, mode))
}
