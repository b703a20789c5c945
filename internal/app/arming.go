// internal/app/arming.go
package app

import (
	"time"

	"medication_reminder/internal/domain/device"
	"medication_reminder/internal/domain/schedule"

	"github.com/sirupsen/logrus"
)

// AlarmArmer keeps the hardware alarm pointed at the next scheduled dose.
// Used only from the controller goroutine.
type AlarmArmer struct {
	clock   device.Clock
	trigger device.AlarmTrigger
	logger  *logrus.Entry

	next  time.Time
	armed bool
}

func NewAlarmArmer(clock device.Clock, trigger device.AlarmTrigger, logger *logrus.Entry) *AlarmArmer {
	return &AlarmArmer{
		clock:   clock,
		trigger: trigger,
		logger:  logger,
	}
}

// ArmNext clears any armed alarm and arms the next occurrence of sched.
// Nothing is armed for an empty schedule, or when the computed occurrence is
// not strictly after the clock's current reading.
func (a *AlarmArmer) ArmNext(sched *schedule.Schedule) (time.Time, bool) {
	a.trigger.Clear()
	a.next, a.armed = time.Time{}, false

	now := a.clock.Now()
	next, ok := sched.NextOccurrence(now)
	if !ok {
		a.logger.Info("Schedule is empty, alarm left disarmed")
		return time.Time{}, false
	}
	if !next.After(now) {
		a.logger.WithFields(logrus.Fields{
			"next": next.Format(time.RFC3339),
			"now":  now.Format(time.RFC3339),
		}).Warn("Next occurrence is not in the future, alarm left disarmed")
		return time.Time{}, false
	}
	if err := a.trigger.Arm(next); err != nil {
		a.logger.WithError(err).WithField("next", next.Format(time.RFC3339)).Error("Failed to arm alarm")
		return time.Time{}, false
	}

	a.next, a.armed = next, true
	a.logger.WithField("next", next.Format(time.RFC3339)).Info("Alarm armed")
	return next, true
}

// Next returns the currently armed occurrence.
func (a *AlarmArmer) Next() (time.Time, bool) {
	return a.next, a.armed
}
