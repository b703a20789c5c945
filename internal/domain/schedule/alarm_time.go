// internal/domain/schedule/alarm_time.go
package schedule

import (
	"fmt"
	"strconv"
	"strings"
)

// AlarmTime is a daily time of day with minute precision.
type AlarmTime struct {
	Hour   int // 0-23
	Minute int // 0-59
}

// ParseAlarmTime parses a single "HH:MM" token. Surrounding whitespace is ignored.
func ParseAlarmTime(token string) (AlarmTime, bool) {
	hourStr, minuteStr, found := strings.Cut(strings.TrimSpace(token), ":")
	if !found {
		return AlarmTime{}, false
	}
	hour, err := strconv.Atoi(strings.TrimSpace(hourStr))
	if err != nil || hour < 0 || hour > 23 {
		return AlarmTime{}, false
	}
	minute, err := strconv.Atoi(strings.TrimSpace(minuteStr))
	if err != nil || minute < 0 || minute > 59 {
		return AlarmTime{}, false
	}
	return AlarmTime{Hour: hour, Minute: minute}, true
}

// Before reports whether a sorts strictly before b.
func (a AlarmTime) Before(b AlarmTime) bool {
	return a.minuteOfDay() < b.minuteOfDay()
}

// minuteOfDay returns the number of minutes since midnight.
func (a AlarmTime) minuteOfDay() int {
	return a.Hour*60 + a.Minute
}

func (a AlarmTime) String() string {
	return fmt.Sprintf("%02d:%02d", a.Hour, a.Minute)
}
