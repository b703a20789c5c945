// internal/app/trigger.go
package app

import "sync/atomic"

// Trigger is the pending-alarm flag. Fire may be called from any goroutine
// (the alarm interrupt, a simulated ring); only the controller consumes it.
type Trigger struct {
	pending atomic.Bool
}

func NewTrigger() *Trigger {
	return &Trigger{}
}

// Fire marks an alarm as pending. Repeated fires before consumption collapse into one.
func (t *Trigger) Fire() {
	t.pending.Store(true)
}

// Pending reports whether an alarm is waiting, without consuming it.
func (t *Trigger) Pending() bool {
	return t.pending.Load()
}

func (t *Trigger) take() bool {
	return t.pending.Swap(false)
}
