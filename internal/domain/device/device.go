// internal/domain/device/device.go
package device

import (
	"context"
	"errors"
	"time"

	"medication_reminder/internal/domain/settings"
)

// ErrClockUnavailable is returned when the real-time clock does not respond.
var ErrClockUnavailable = errors.New("real-time clock not responding")

// Clock is the real-time clock. Now must carry a monotonic reading so that
// elapsed durations are immune to wall-clock adjustments.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

// AlarmTrigger is the hardware alarm of the real-time clock.
type AlarmTrigger interface {
	Arm(at time.Time) error
	Clear()
}

// Buzzer drives the audible output. Level 0 is silence.
type Buzzer interface {
	Drive(level uint8)
}

// Light drives the visual indicator.
type Light interface {
	Set(on bool)
}

// Display is the two-line status surface.
type Display interface {
	Show(line1, line2 string)
}

// ConfirmationSensor reports whether the user has performed the confirming action.
type ConfirmationSensor interface {
	Active() bool
}

// TimeSyncer joins the network with the given credentials and sets the clock
// from network time. It makes a single attempt.
type TimeSyncer interface {
	Sync(ctx context.Context, creds settings.Credentials) error
}
