// internal/domain/schedule/schedule.go
package schedule

import (
	"sort"
	"strings"
	"time"
)

// Schedule is the ordered list of daily alarm times. Duplicates are kept.
// It is not safe for concurrent use; the controller loop owns it.
type Schedule struct {
	times []AlarmTime
}

// New builds a schedule from its textual form (see Replace).
func New(text string) *Schedule {
	s := &Schedule{}
	s.Replace(text)
	return s
}

// Replace parses a comma-separated list of "HH:MM" tokens and replaces the
// whole collection with it. Malformed tokens are skipped.
func (s *Schedule) Replace(text string) {
	parsed := make([]AlarmTime, 0, strings.Count(text, ",")+1)
	for _, token := range strings.Split(text, ",") {
		if at, ok := ParseAlarmTime(token); ok {
			parsed = append(parsed, at)
		}
	}
	sort.SliceStable(parsed, func(i, j int) bool {
		return parsed[i].Before(parsed[j])
	})
	s.times = parsed
}

// Times returns a copy of the sorted alarm times.
func (s *Schedule) Times() []AlarmTime {
	out := make([]AlarmTime, len(s.times))
	copy(out, s.times)
	return out
}

// Len returns the number of alarm times, duplicates included.
func (s *Schedule) Len() int {
	return len(s.times)
}

// NextOccurrence returns the earliest alarm strictly later than now (compared
// at minute precision) on now's calendar day, or the earliest alarm of the
// following day when every alarm of today has passed. ok is false for an
// empty schedule. The returned time is in now's location with zero seconds.
func (s *Schedule) NextOccurrence(now time.Time) (next time.Time, ok bool) {
	if len(s.times) == 0 {
		return time.Time{}, false
	}
	current := AlarmTime{Hour: now.Hour(), Minute: now.Minute()}
	for _, at := range s.times {
		if current.Before(at) {
			return on(now, 0, at), true
		}
	}
	return on(now, 1, s.times[0]), true
}

// on returns the wall time of at on the day offset by days from ref.
// time.Date normalises across month/year boundaries and DST changes.
func on(ref time.Time, days int, at AlarmTime) time.Time {
	return time.Date(ref.Year(), ref.Month(), ref.Day()+days, at.Hour, at.Minute, 0, 0, ref.Location())
}

// String renders the schedule in the form accepted by Replace.
func (s *Schedule) String() string {
	parts := make([]string, len(s.times))
	for i, at := range s.times {
		parts[i] = at.String()
	}
	return strings.Join(parts, ",")
}
