// internal/app/controller.go
package app

import (
	"context"
	"sync"
	"time"

	"medication_reminder/internal/domain/device"
	"medication_reminder/internal/domain/history"
	"medication_reminder/internal/domain/schedule"
	"medication_reminder/internal/domain/settings"

	"github.com/sirupsen/logrus"
)

// ControllerDeps groups the collaborators of a Controller.
type ControllerDeps struct {
	Clock   device.Clock
	Alarm   device.AlarmTrigger
	Display device.Display
	Syncer  device.TimeSyncer
	Trigger *Trigger
	Channel *ConfigChannel
	Engine  *SessionEngine
	Armer   *AlarmArmer
	Log     *history.Log
	Logger  *logrus.Entry

	Settings     settings.Settings
	PollInterval time.Duration // status refresh cadence
	// MessageHold is how long a transient message (sync result) stays on the display.
	MessageHold time.Duration
}

// Controller is the single-threaded driver of the appliance. Settings and
// Schedule are owned by its goroutine; other goroutines reach it only through
// the Trigger flag and the ConfigChannel slots.
type Controller struct {
	ControllerDeps

	settings settings.Settings
	schedule *schedule.Schedule

	synced         bool
	lastShown      int64
	forceRedraw    bool
	transientUntil time.Time

	statusMu sync.RWMutex
	status   StatusSnapshot
}

func NewController(deps ControllerDeps) *Controller {
	return &Controller{
		ControllerDeps: deps,
		settings:       deps.Settings,
		schedule:       schedule.New(deps.Settings.ScheduleText),
		forceRedraw:    true,
	}
}

// Start performs the boot-time work: a network time sync with the stored
// credentials, which arms the first alarm, and publishing the persisted history.
func (c *Controller) Start(ctx context.Context) {
	c.syncTime(ctx)
	c.Channel.PublishHistory(c.Log.Render())
	c.Logger.WithFields(logrus.Fields{
		"schedule":  c.schedule.String(),
		"volume":    c.settings.Volume,
		"time_mode": c.settings.TimeMode,
	}).Info("Controller started")
}

// Run starts the controller and polls until ctx is cancelled. A session in
// progress always runs to its outcome before cancellation is observed.
func (c *Controller) Run(ctx context.Context) error {
	c.Start(ctx)
	for {
		if err := ctx.Err(); err != nil {
			c.Logger.Info("Controller stopped")
			return nil
		}
		c.Poll(ctx)
		c.Clock.Sleep(c.PollInterval)
	}
}

// Poll performs one pass of the loop: run a pending session, apply pending
// configuration, redraw the status line when the second changed.
func (c *Controller) Poll(ctx context.Context) {
	if c.Trigger.take() {
		c.Alarm.Clear()
		result := c.Engine.Run(ctx, c.settings, c.schedule)
		c.Channel.PublishHistory(c.Log.Render())
		c.forceRedraw = true
		c.Logger.WithFields(logrus.Fields{
			"session_id": result.ID,
			"outcome":    result.Outcome,
		}).Info("Session finished")
	}

	c.applyPending(ctx, c.Channel.TakePending())

	now := c.Clock.Now()
	if now.Before(c.transientUntil) {
		return
	}
	if sec := now.Unix(); sec != c.lastShown || c.forceRedraw {
		c.lastShown = sec
		c.forceRedraw = false
		c.redraw(now)
	}
}

func (c *Controller) applyPending(ctx context.Context, p PendingUpdates) {
	if p.Empty() {
		return
	}
	if p.Volume != nil {
		c.settings.Volume = *p.Volume
	}
	if p.TimeMode != nil {
		c.settings.TimeMode = *p.TimeMode
	}
	if p.ScheduleText != nil {
		c.settings.ScheduleText = *p.ScheduleText
		c.schedule.Replace(*p.ScheduleText)
		c.Armer.ArmNext(c.schedule)
	}
	if p.Credentials != nil {
		c.settings.Credentials = *p.Credentials
		c.syncTime(ctx)
	}
	c.forceRedraw = true
}

// syncTime makes a single network time attempt and shows its result briefly.
// The alarm is re-armed afterwards since a sync may have moved the clock.
func (c *Controller) syncTime(ctx context.Context) {
	defer c.Armer.ArmNext(c.schedule)

	logger := c.Logger.WithField("ssid", c.settings.Credentials.SSID)
	if err := c.Syncer.Sync(ctx, c.settings.Credentials); err != nil {
		c.synced = false
		logger.WithError(err).Warn("Network time sync failed")
		c.showTransient("Time sync failed", "Clock not synced")
		return
	}
	c.synced = true
	logger.Info("Network time synced")
	c.showTransient("Time synced", c.settings.Credentials.SSID)
}

func (c *Controller) showTransient(line1, line2 string) {
	c.Display.Show(line1, line2)
	c.transientUntil = c.Clock.Now().Add(c.MessageHold)
	c.forceRedraw = true
}

func (c *Controller) redraw(now time.Time) {
	next, ok := c.Armer.Next()
	snapshot := StatusSnapshot{
		Time:      formatClock(now, c.settings.TimeMode),
		Synced:    c.synced,
		NextAlarm: nextAlarmSummary(now, next, ok, c.settings.TimeMode),
		Volume:    c.settings.Volume,
		TimeMode:  c.settings.TimeMode,
	}
	c.Display.Show(snapshot.Time+" "+syncIndicator(snapshot.Synced), snapshot.NextAlarm)

	c.statusMu.Lock()
	c.status = snapshot
	c.statusMu.Unlock()
}

// Status returns the last drawn status. Safe for concurrent use.
func (c *Controller) Status() StatusSnapshot {
	c.statusMu.RLock()
	defer c.statusMu.RUnlock()
	return c.status
}
