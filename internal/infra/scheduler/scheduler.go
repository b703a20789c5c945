package scheduler

import (
	"fmt"
	"sync"
	"time"

	"medication_reminder/internal/domain/device"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// CronAlarm emulates the real-time clock's single alarm register with a cron
// engine: arming adds a one-shot entry, and the entry removes itself after
// firing once.
//
// Alarm times are read on the device clock while the engine runs on the host
// clock, so every Arm translates through the offset between the two.
type CronAlarm struct {
	cronEngine *cron.Cron
	loc        *time.Location
	clock      device.Clock
	hostNow    func() time.Time
	onFire     func()
	logger     *logrus.Entry

	mu      sync.Mutex
	entryID cron.EntryID
	gen     uint64 // incremented on every Arm
	at      time.Time
	hostAt  time.Time
}

func NewCronAlarm(loc *time.Location, clock device.Clock, onFire func(), logger *logrus.Entry) *CronAlarm {
	return &CronAlarm{
		cronEngine: cron.New(cron.WithLocation(loc)),
		loc:        loc,
		clock:      clock,
		hostNow:    time.Now,
		onFire:     onFire,
		logger:     logger,
	}
}

// onceSchedule activates exactly once, at a fixed host time.
type onceSchedule struct {
	at time.Time
}

func (s onceSchedule) Next(t time.Time) time.Time {
	if s.at.After(t) {
		return s.at
	}
	return time.Time{}
}

var _ device.AlarmTrigger = (*CronAlarm)(nil)

// Start runs the cron engine in its own goroutine.
func (a *CronAlarm) Start() {
	a.logger.Info("Starting alarm scheduler")
	a.cronEngine.Start()
}

// Stop halts the engine and waits for a running job to return.
func (a *CronAlarm) Stop() {
	a.logger.Info("Stopping alarm scheduler")
	ctx := a.cronEngine.Stop()
	<-ctx.Done()
	a.logger.Info("Alarm scheduler stopped")
}

// Arm replaces any armed alarm with one firing when the device clock reads at.
func (a *CronAlarm) Arm(at time.Time) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.clearLocked()

	hostNow := a.hostNow()
	hostAt := at.Add(hostNow.Sub(a.clock.Now())).In(a.loc)
	if !hostAt.After(hostNow) {
		return fmt.Errorf("failed to arm alarm for %s: already passed", at.Format(time.RFC3339))
	}

	a.gen++
	gen := a.gen
	a.entryID = a.cronEngine.Schedule(onceSchedule{at: hostAt}, cron.FuncJob(func() { a.fire(gen) }))
	a.at, a.hostAt = at, hostAt
	a.logger.WithFields(logrus.Fields{
		"alarm_at": at.Format(time.RFC3339),
		"host_at":  hostAt.Format(time.RFC3339),
	}).Debug("Alarm scheduled")
	return nil
}

// Clear disarms the alarm. Clearing a disarmed alarm is a no-op.
func (a *CronAlarm) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.clearLocked()
}

// Armed returns the armed time, if any.
func (a *CronAlarm) Armed() (time.Time, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.at, a.entryID != 0
}

func (a *CronAlarm) clearLocked() {
	if a.entryID != 0 {
		a.cronEngine.Remove(a.entryID)
	}
	a.entryID, a.at, a.hostAt = 0, time.Time{}, time.Time{}
}

func (a *CronAlarm) fire(gen uint64) {
	a.mu.Lock()
	if a.entryID == 0 || a.gen != gen {
		// Re-armed or cleared while the job was being dispatched.
		a.mu.Unlock()
		return
	}
	at := a.at
	a.clearLocked()
	a.mu.Unlock()

	a.logger.WithField("alarm_at", at.Format(time.RFC3339)).Info("Alarm fired")
	a.onFire()
}
