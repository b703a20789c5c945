package app

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"medication_reminder/internal/domain/history"
	"medication_reminder/internal/domain/settings"
	"medication_reminder/internal/infra/mem"
)

type controllerFixture struct {
	*sessionFixture
	syncer     *fakeSyncer
	trigger    *Trigger
	channel    *ConfigChannel
	controller *Controller
}

func newControllerFixture(t *testing.T) *controllerFixture {
	t.Helper()
	f := &controllerFixture{
		sessionFixture: newSessionFixture(),
		syncer:         &fakeSyncer{},
		trigger:        NewTrigger(),
	}
	store := settings.NewStore(mem.NewStore())
	initial, err := store.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	initial.ScheduleText = "08:00,12:00,18:00"
	f.channel = NewConfigChannel(store, initial, testLogger())
	f.controller = NewController(ControllerDeps{
		Clock:        f.clock,
		Alarm:        f.alarm,
		Display:      f.display,
		Syncer:       f.syncer,
		Trigger:      f.trigger,
		Channel:      f.channel,
		Engine:       f.engine,
		Armer:        f.engine.Armer,
		Log:          f.log,
		Logger:       testLogger(),
		Settings:     initial,
		PollInterval: 100 * time.Millisecond,
		MessageHold:  2 * time.Second,
	})
	return f
}

func TestControllerStart(t *testing.T) {
	f := newControllerFixture(t)
	f.clock.now = refStart.Add(90 * time.Minute) // 09:30
	f.controller.Start(context.Background())

	if got, want := f.alarm.armed, refStart.Add(4*time.Hour); !got.Equal(want) {
		t.Errorf("wrong armed alarm\ngot:  %v\nwant: %v", got, want)
	}
	if len(f.syncer.calls) != 1 {
		t.Errorf("expected one sync attempt, got %d", len(f.syncer.calls))
	}
	if got := f.display.last(); got[0] != "Time synced" {
		t.Errorf("sync result not shown: %v", got)
	}

	// Status is held back while the transient message shows.
	f.controller.Poll(context.Background())
	if f.controller.Status().Time != "" {
		t.Error("status drawn over transient message")
	}
	f.clock.Sleep(2 * time.Second)
	f.controller.Poll(context.Background())
	got := f.controller.Status()
	want := StatusSnapshot{
		Time:      "09:30:02",
		Synced:    true,
		NextAlarm: "Next 12:00",
		Volume:    settings.DefaultVolume,
		TimeMode:  settings.TimeMode24h,
	}
	if got != want {
		t.Errorf("wrong status\ngot:  %+v\nwant: %+v", got, want)
	}
	if line := f.display.last(); line != [2]string{"09:30:02 *", "Next 12:00"} {
		t.Errorf("wrong display %v", line)
	}
}

func TestControllerRunsPendingSession(t *testing.T) {
	f := newControllerFixture(t)
	ctx := context.Background()
	f.controller.Start(ctx)
	clearedBefore := f.alarm.cleared

	f.trigger.Fire()
	f.trigger.Fire()
	f.controller.Poll(ctx)

	if f.trigger.Pending() {
		t.Error("trigger still pending after the session")
	}
	if f.alarm.cleared <= clearedBefore {
		t.Error("hardware alarm not cleared")
	}
	if f.log.Len() != 1 {
		t.Fatalf("expected one history entry, got %d", f.log.Len())
	}
	blob, err := f.channel.Read(TargetHistory)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(blob, "Log History:\n2026-10-16 08:00 ") || !strings.HasSuffix(blob, string(history.OutcomeMissed)) {
		t.Errorf("wrong history blob %q", blob)
	}
	// 08:00 session ends at 08:15, so the next dose is at noon.
	if got, want := f.alarm.armed, refStart.Add(4*time.Hour); !got.Equal(want) {
		t.Errorf("wrong armed alarm\ngot:  %v\nwant: %v", got, want)
	}

	// A second poll does not start another session.
	f.controller.Poll(ctx)
	if f.log.Len() != 1 {
		t.Error("session ran twice for one trigger")
	}
}

func TestControllerAppliesConfiguration(t *testing.T) {
	f := newControllerFixture(t)
	ctx := context.Background()
	f.controller.Start(ctx)
	f.clock.Sleep(3 * time.Second)

	_ = f.channel.Write(ctx, TargetVolume, "300")
	_ = f.channel.Write(ctx, TargetTimeMode, "12h")
	_ = f.channel.Write(ctx, TargetSchedule, "21:45")

	// Nothing changes before the controller polls.
	if f.controller.settings.Volume != settings.DefaultVolume {
		t.Fatal("settings mutated outside the controller")
	}
	f.controller.Poll(ctx)

	got := f.controller.Status()
	if got.Volume != 255 || got.TimeMode != settings.TimeMode12h {
		t.Errorf("configuration not applied: %+v", got)
	}
	if got.NextAlarm != "Next 9:45 PM" {
		t.Errorf("wrong next alarm summary %q", got.NextAlarm)
	}
	if got.Time != "08:00:03 AM" {
		t.Errorf("wrong 12h clock %q", got.Time)
	}
	if want := refStart.Add(13*time.Hour + 45*time.Minute); !f.alarm.armed.Equal(want) {
		t.Errorf("wrong armed alarm\ngot:  %v\nwant: %v", f.alarm.armed, want)
	}

	// The new volume drives the next session.
	f.sensor.confirmAt = f.clock.Now().Add(time.Second)
	f.trigger.Fire()
	f.controller.Poll(ctx)
	var max uint8
	for _, c := range f.buzzer.changes {
		if c.level > max {
			max = c.level
		}
	}
	if max != 255 {
		t.Errorf("session ran at volume %d, want 255", max)
	}
}

func TestControllerCredentialsResync(t *testing.T) {
	f := newControllerFixture(t)
	ctx := context.Background()
	f.controller.Start(ctx)

	f.syncer.err = errors.New("association failed")
	_ = f.channel.Write(ctx, TargetCredentials, "home,secret")
	f.controller.Poll(ctx)

	if got := len(f.syncer.calls); got != 2 {
		t.Fatalf("expected a second sync attempt, got %d", got)
	}
	if got, want := f.syncer.calls[1], (settings.Credentials{SSID: "home", Password: "secret"}); got != want {
		t.Errorf("wrong credentials\ngot:  %+v\nwant: %+v", got, want)
	}
	if got := f.display.last(); got[0] != "Time sync failed" {
		t.Errorf("failure not shown: %v", got)
	}
	f.clock.Sleep(3 * time.Second)
	f.controller.Poll(ctx)
	if f.controller.Status().Synced {
		t.Error("still reported as synced")
	}
	if line := f.display.last(); !strings.HasSuffix(line[0], " ?") {
		t.Errorf("missing unsynced indicator: %v", line)
	}
}

func TestControllerEmptySchedule(t *testing.T) {
	f := newControllerFixture(t)
	ctx := context.Background()
	f.controller.Start(ctx)
	f.clock.Sleep(3 * time.Second)

	_ = f.channel.Write(ctx, TargetSchedule, "nonsense")
	f.controller.Poll(ctx)

	if !f.alarm.armed.IsZero() {
		t.Errorf("alarm armed for empty schedule: %v", f.alarm.armed)
	}
	if got := f.controller.Status().NextAlarm; got != "No alarms" {
		t.Errorf("wrong summary %q", got)
	}
}

func TestControllerRunStopsOnCancel(t *testing.T) {
	f := newControllerFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	polls := 0
	f.clock.onTick = func(time.Time) {
		polls++
		if polls == 5 {
			cancel()
		}
	}
	if err := f.controller.Run(ctx); err != nil {
		t.Fatal(err)
	}
	if polls != 5 {
		t.Errorf("expected 5 passes, got %d", polls)
	}
}

func TestControllerRearmsAfterClockSync(t *testing.T) {
	f := newControllerFixture(t)
	ctx := context.Background()
	f.clock.now = refStart.Add(90 * time.Minute) // 09:30
	f.controller.Start(ctx)
	if got, want := f.alarm.armed, refStart.Add(4*time.Hour); !got.Equal(want) {
		t.Fatalf("wrong armed alarm\ngot:  %v\nwant: %v", got, want)
	}

	// The next sync finds the clock three hours slow.
	f.syncer.clock, f.syncer.shift = f.clock, 3*time.Hour
	_ = f.channel.Write(ctx, TargetCredentials, "home,secret")
	f.controller.Poll(ctx)

	if f.clock.now != refStart.Add(4*time.Hour+30*time.Minute) {
		t.Fatalf("sync did not move the clock: %v", f.clock.now)
	}
	if got, want := f.alarm.armed, refStart.Add(10*time.Hour); !got.Equal(want) {
		t.Errorf("alarm not re-armed after sync\ngot:  %v\nwant: %v", got, want)
	}
}

func TestControllerDefersWritesDuringSession(t *testing.T) {
	f := newControllerFixture(t)
	ctx := context.Background()
	f.controller.Start(ctx)

	written := false
	var leaked []uint8
	f.clock.onTick = func(now time.Time) {
		if !written && !now.Before(refStart.Add(5*time.Second)) {
			if err := f.channel.Write(ctx, TargetVolume, "10"); err != nil {
				t.Errorf("write during session: %v", err)
			}
			written = true
			return
		}
		if written && f.controller.settings.Volume != settings.DefaultVolume {
			leaked = append(leaked, f.controller.settings.Volume)
		}
	}
	f.sensor.confirmAt = refStart.Add(10 * time.Second)
	f.trigger.Fire()
	f.controller.Poll(ctx)

	if !written {
		t.Fatal("write never happened during the session")
	}
	if len(leaked) > 0 {
		t.Errorf("settings changed while the session ran: %v", leaked)
	}
	for _, c := range f.buzzer.changes {
		if c.level != 0 && c.level != settings.DefaultVolume {
			t.Errorf("buzzer driven at %d at %v, want %d", c.level, c.at, settings.DefaultVolume)
		}
	}
	if f.log.Len() != 1 || f.log.Entries()[0].Outcome != history.OutcomeTaken {
		t.Fatalf("session did not resolve as taken: %v", f.log.Entries())
	}

	// Applied by the same poll, once the session returned.
	if got := f.controller.settings.Volume; got != 10 {
		t.Errorf("got: volume %d, want: 10", got)
	}
	if got := f.controller.Status().Volume; got != 10 {
		t.Errorf("got: status volume %d, want: 10", got)
	}
	if !f.channel.TakePending().Empty() {
		t.Error("write still pending after the poll")
	}
}
