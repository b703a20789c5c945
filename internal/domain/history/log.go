// internal/domain/history/log.go
package history

import "strings"

// MaxEntries is the capacity of a Log.
const MaxEntries = 20

const renderHeader = "Log History:\n"

// Log is a bounded, append-only list of session outcomes. When full, the
// oldest entry is evicted.
type Log struct {
	entries []Entry
}

func NewLog() *Log {
	return &Log{entries: make([]Entry, 0, MaxEntries+1)}
}

// Append adds e at the tail and evicts the head once the log is over capacity.
func (l *Log) Append(e Entry) {
	l.entries = append(l.entries, e)
	if len(l.entries) > MaxEntries {
		copy(l.entries, l.entries[1:])
		l.entries[len(l.entries)-1] = Entry{}
		l.entries = l.entries[:len(l.entries)-1]
	}
}

// Entries returns a copy of the entries, oldest first.
func (l *Log) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *Log) Len() int {
	return len(l.entries)
}

// Render returns the header followed by one "<timestamp> <outcome>" line per entry.
func (l *Log) Render() string {
	var b strings.Builder
	b.WriteString(renderHeader)
	for i, e := range l.entries {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(e.String())
	}
	return b.String()
}
