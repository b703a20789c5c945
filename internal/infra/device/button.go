package device

import (
	"sync/atomic"
	"time"

	"medication_reminder/internal/domain/device"
)

// Button simulates the confirmation sensor: after Press it reads active for
// the hold duration.
type Button struct {
	clock     device.Clock
	hold      time.Duration
	pressedAt atomic.Pointer[time.Time]
}

func NewButton(clock device.Clock, hold time.Duration) *Button {
	return &Button{clock: clock, hold: hold}
}

var _ device.ConfirmationSensor = (*Button)(nil)

// Press may be called from any goroutine.
func (b *Button) Press() {
	now := b.clock.Now()
	b.pressedAt.Store(&now)
}

func (b *Button) Active() bool {
	at := b.pressedAt.Load()
	if at == nil {
		return false
	}
	elapsed := b.clock.Now().Sub(*at)
	return elapsed >= 0 && elapsed < b.hold
}
