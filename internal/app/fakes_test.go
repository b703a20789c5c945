package app

import (
	"context"
	"io"
	"time"

	"medication_reminder/internal/domain/settings"

	"github.com/sirupsen/logrus"
)

var refStart = time.Date(2026, 10, 16, 8, 0, 0, 0, time.UTC)

// fakeClock advances only when slept on.
type fakeClock struct {
	now    time.Time
	onTick func(now time.Time)
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Sleep(d time.Duration) {
	c.now = c.now.Add(d)
	if c.onTick != nil {
		c.onTick(c.now)
	}
}

// fakeSensor reads active from confirmAt onwards; a zero confirmAt never confirms.
type fakeSensor struct {
	clock     *fakeClock
	confirmAt time.Time
}

func (s *fakeSensor) Active() bool {
	return !s.confirmAt.IsZero() && !s.clock.Now().Before(s.confirmAt)
}

type levelChange struct {
	at    time.Time
	level uint8
}

type fakeBuzzer struct {
	clock   *fakeClock
	changes []levelChange
}

func (b *fakeBuzzer) Drive(level uint8) {
	b.changes = append(b.changes, levelChange{at: b.clock.Now(), level: level})
}

func (b *fakeBuzzer) last() uint8 {
	if len(b.changes) == 0 {
		return 0
	}
	return b.changes[len(b.changes)-1].level
}

type fakeLight struct{ on bool }

func (l *fakeLight) Set(on bool) { l.on = on }

type fakeDisplay struct {
	shown [][2]string
}

func (d *fakeDisplay) Show(line1, line2 string) {
	d.shown = append(d.shown, [2]string{line1, line2})
}

func (d *fakeDisplay) last() [2]string {
	if len(d.shown) == 0 {
		return [2]string{}
	}
	return d.shown[len(d.shown)-1]
}

func (d *fakeDisplay) contains(line1 string) bool {
	for _, s := range d.shown {
		if s[0] == line1 {
			return true
		}
	}
	return false
}

type fakeAlarm struct {
	armed   time.Time
	cleared int
}

func (a *fakeAlarm) Arm(at time.Time) error {
	a.armed = at
	return nil
}

func (a *fakeAlarm) Clear() {
	a.armed = time.Time{}
	a.cleared++
}

// fakeSyncer moves clock by shift on every successful sync.
type fakeSyncer struct {
	err   error
	calls []settings.Credentials
	clock *fakeClock
	shift time.Duration
}

func (s *fakeSyncer) Sync(_ context.Context, creds settings.Credentials) error {
	s.calls = append(s.calls, creds)
	if s.err != nil {
		return s.err
	}
	if s.clock != nil {
		s.clock.now = s.clock.now.Add(s.shift)
	}
	return nil
}

type fakeNotifier struct {
	results []SessionResult
}

func (n *fakeNotifier) SessionResolved(_ context.Context, r SessionResult) {
	n.results = append(n.results, r)
}

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}
