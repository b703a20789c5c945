package device

import (
	"sync/atomic"
	"time"

	"medication_reminder/internal/domain/device"
)

// RTC simulates the real-time clock on top of the host clock. Network time
// sync adjusts an offset; elapsed-time comparisons keep using the host's
// monotonic reading.
type RTC struct {
	loc    *time.Location
	offset atomic.Int64 // nanoseconds
}

func NewRTC(loc *time.Location) *RTC {
	return &RTC{loc: loc}
}

var _ device.Clock = (*RTC)(nil)

// Begin probes the clock hardware.
func (r *RTC) Begin() error {
	if r.loc == nil {
		return device.ErrClockUnavailable
	}
	return nil
}

func (r *RTC) Now() time.Time {
	return time.Now().Add(time.Duration(r.offset.Load())).In(r.loc)
}

func (r *RTC) Sleep(d time.Duration) {
	time.Sleep(d)
}

// SetTime adjusts the clock so that Now reads t.
func (r *RTC) SetTime(t time.Time) {
	r.offset.Store(int64(time.Until(t)))
}
