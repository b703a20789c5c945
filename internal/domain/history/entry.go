// internal/domain/history/entry.go
package history

import "time"

// Outcome is the terminal result of an alarm session.
type Outcome string

const (
	OutcomeTaken  Outcome = "TAKEN"
	OutcomeMissed Outcome = "MISSED"
)

// TimestampLayout is the format used for Entry.Timestamp.
const TimestampLayout = "2006-01-02 15:04"

// Entry records the outcome of one session.
type Entry struct {
	ID        string    // Session ID (UUID)
	Timestamp string    // Session entry time, formatted with TimestampLayout
	Outcome   Outcome   // TAKEN or MISSED
	CreatedAt time.Time // Set by the repository
}

func (e Entry) String() string {
	return e.Timestamp + " " + string(e.Outcome)
}
