// internal/app/session.go
package app

import (
	"context"
	"time"

	"medication_reminder/internal/domain/device"
	"medication_reminder/internal/domain/history"
	"medication_reminder/internal/domain/schedule"
	"medication_reminder/internal/domain/settings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Phase is a state of the alarm session machine.
type Phase int

const (
	PhaseAlerting Phase = iota + 1
	PhaseMonitoring
	PhaseResolved
)

func (p Phase) String() string {
	switch p {
	case PhaseAlerting:
		return "ALERTING"
	case PhaseMonitoring:
		return "MONITORING_SILENT"
	case PhaseResolved:
		return "RESOLVED"
	default:
		return "UNKNOWN"
	}
}

// SessionTiming holds the durations that shape a session.
type SessionTiming struct {
	AlertDuration  time.Duration // length of one ALERTING phase
	SilentDuration time.Duration // length of one MONITORING_SILENT phase
	TotalBudget    time.Duration // hard ceiling for the whole session

	AlertPoll  time.Duration // sensor poll while alerting
	SilentPoll time.Duration // sensor poll while monitoring

	AlertRefresh  time.Duration // clock redraw while alerting
	SilentRefresh time.Duration // clock redraw while monitoring

	// Burst pattern, repeated every BurstPeriod while alerting: output is on
	// during [0, FirstBurst) and [SecondBurstStart, SecondBurstEnd).
	BurstPeriod      time.Duration
	FirstBurst       time.Duration
	SecondBurstStart time.Duration
	SecondBurstEnd   time.Duration

	// ResultHold is how long the outcome message stays on the display.
	ResultHold time.Duration
}

func DefaultSessionTiming() SessionTiming {
	return SessionTiming{
		AlertDuration:    60 * time.Second,
		SilentDuration:   300 * time.Second,
		TotalBudget:      900 * time.Second,
		AlertPoll:        10 * time.Millisecond,
		SilentPoll:       100 * time.Millisecond,
		AlertRefresh:     500 * time.Millisecond,
		SilentRefresh:    time.Second,
		BurstPeriod:      time.Second,
		FirstBurst:       100 * time.Millisecond,
		SecondBurstStart: 200 * time.Millisecond,
		SecondBurstEnd:   300 * time.Millisecond,
		ResultHold:       3 * time.Second,
	}
}

func (t SessionTiming) pollFor(p Phase) time.Duration {
	if p == PhaseAlerting {
		return t.AlertPoll
	}
	return t.SilentPoll
}

func (t SessionTiming) refreshFor(p Phase) time.Duration {
	if p == PhaseAlerting {
		return t.AlertRefresh
	}
	return t.SilentRefresh
}

// burstOn reports whether the alert output is on at the given offset into
// the current ALERTING phase.
func (t SessionTiming) burstOn(inPhase time.Duration) bool {
	if t.BurstPeriod <= 0 {
		return true
	}
	offset := inPhase % t.BurstPeriod
	return offset < t.FirstBurst || (offset >= t.SecondBurstStart && offset < t.SecondBurstEnd)
}

type sessionState struct {
	phase        Phase
	started      time.Time
	phaseStarted time.Time
	cycle        int
	outcome      history.Outcome
}

type observation struct {
	now       time.Time
	confirmed bool
}

type sessionEffect int

const (
	effectNone sessionEffect = iota
	effectStartAlerting
	effectStartMonitoring
	effectResolve
)

// transition is the single transition function of the session machine.
// A confirmation wins over every timer; the total budget wins over phase timers.
func (t SessionTiming) transition(s sessionState, obs observation) (sessionState, sessionEffect) {
	if s.phase != PhaseAlerting && s.phase != PhaseMonitoring {
		return s, effectNone
	}
	if obs.confirmed {
		s.phase, s.outcome = PhaseResolved, history.OutcomeTaken
		return s, effectResolve
	}
	if obs.now.Sub(s.started) >= t.TotalBudget {
		s.phase, s.outcome = PhaseResolved, history.OutcomeMissed
		return s, effectResolve
	}

	inPhase := obs.now.Sub(s.phaseStarted)
	switch s.phase {
	case PhaseAlerting:
		if inPhase >= t.AlertDuration {
			s.phase, s.phaseStarted = PhaseMonitoring, obs.now
			return s, effectStartMonitoring
		}
	case PhaseMonitoring:
		if inPhase >= t.SilentDuration {
			s.phase, s.phaseStarted = PhaseAlerting, obs.now
			s.cycle++
			return s, effectStartAlerting
		}
	}
	return s, effectNone
}

// SessionResult is the outcome of one completed session.
type SessionResult struct {
	ID         string
	EnteredAt  time.Time
	ResolvedAt time.Time
	Outcome    history.Outcome
	Cycles     int
}

// Entry converts the result into a history entry.
func (r SessionResult) Entry() history.Entry {
	return history.Entry{
		ID:        r.ID,
		Timestamp: r.EnteredAt.Format(history.TimestampLayout),
		Outcome:   r.Outcome,
	}
}

// SessionNotifier is told about every resolved session.
type SessionNotifier interface {
	SessionResolved(ctx context.Context, result SessionResult)
}

// SessionEngineDeps groups the collaborators of a SessionEngine.
type SessionEngineDeps struct {
	Clock       device.Clock
	Sensor      device.ConfirmationSensor
	Buzzer      device.Buzzer
	Light       device.Light
	Display     device.Display
	Log         *history.Log
	HistoryRepo history.Repository // optional
	Armer       *AlarmArmer
	Notifier    SessionNotifier // optional
	Timing      SessionTiming
	Logger      *logrus.Entry
}

// SessionEngine runs alarm sessions. A session blocks its caller until it
// resolves; it cannot be cancelled.
type SessionEngine struct {
	SessionEngineDeps
}

func NewSessionEngine(deps SessionEngineDeps) *SessionEngine {
	return &SessionEngine{SessionEngineDeps: deps}
}

// session carries per-run output state so repeated polls only touch the
// hardware on change.
type session struct {
	*SessionEngine
	cfg         settings.Settings
	logger      *logrus.Entry
	outputOn    bool
	lastRefresh time.Time
}

// Run executes one session to completion: it alternates ALERTING and
// MONITORING_SILENT phases until the sensor confirms or the total budget is
// spent, then records the outcome and arms the next alarm of sched.
// ctx is used for persistence and notification only.
func (e *SessionEngine) Run(ctx context.Context, cfg settings.Settings, sched *schedule.Schedule) SessionResult {
	entered := e.Clock.Now()
	id := uuid.NewString()
	s := &session{
		SessionEngine: e,
		cfg:           cfg,
		logger: e.Logger.WithFields(logrus.Fields{
			"session_id": id,
			"entered_at": entered.Format(history.TimestampLayout),
		}),
	}
	s.logger.WithField("volume", cfg.Volume).Info("Alarm session started")

	state := sessionState{
		phase:        PhaseAlerting,
		started:      entered,
		phaseStarted: entered,
		cycle:        1,
	}
	s.enterAlerting(state)

	for {
		now := e.Clock.Now()
		next, effect := e.Timing.transition(state, observation{now: now, confirmed: e.Sensor.Active()})
		state = next

		switch effect {
		case effectStartAlerting:
			s.enterAlerting(state)
		case effectStartMonitoring:
			s.enterMonitoring(state)
		}
		if state.phase == PhaseResolved {
			break
		}

		s.drive(state, now)
		e.Clock.Sleep(e.Timing.pollFor(state.phase))
	}

	result := SessionResult{
		ID:         id,
		EnteredAt:  entered,
		ResolvedAt: e.Clock.Now(),
		Outcome:    state.outcome,
		Cycles:     state.cycle,
	}
	s.resolve(ctx, result, sched)
	return result
}

func (s *session) enterAlerting(state sessionState) {
	s.logger.WithFields(logrus.Fields{
		"phase": PhaseAlerting.String(),
		"cycle": state.cycle,
	}).Info("Ringing")
	s.lastRefresh = time.Time{}
}

func (s *session) enterMonitoring(state sessionState) {
	s.setOutput(false)
	s.logger.WithFields(logrus.Fields{
		"phase": PhaseMonitoring.String(),
		"cycle": state.cycle,
	}).Info("No confirmation, snoozing")
	s.lastRefresh = time.Time{}
}

// drive updates outputs for the current poll.
func (s *session) drive(state sessionState, now time.Time) {
	if state.phase == PhaseAlerting {
		s.setOutput(s.Timing.burstOn(now.Sub(state.phaseStarted)))
	}

	if !s.lastRefresh.IsZero() && now.Sub(s.lastRefresh) < s.Timing.refreshFor(state.phase) {
		return
	}
	s.lastRefresh = now
	clock := formatClock(now, s.cfg.TimeMode)
	if state.phase == PhaseAlerting {
		s.Display.Show("TAKE MEDICATION", clock)
	} else {
		s.Display.Show("Snoozing...", clock)
	}
}

func (s *session) setOutput(on bool) {
	if on == s.outputOn {
		return
	}
	s.outputOn = on
	level := uint8(0)
	if on {
		level = s.cfg.Volume
	}
	s.Buzzer.Drive(level)
	s.Light.Set(on)
}

func (s *session) resolve(ctx context.Context, result SessionResult, sched *schedule.Schedule) {
	// Force outputs off regardless of the cached state.
	s.outputOn = false
	s.Buzzer.Drive(0)
	s.Light.Set(false)

	logger := s.logger.WithFields(logrus.Fields{
		"outcome":  result.Outcome,
		"cycles":   result.Cycles,
		"duration": result.ResolvedAt.Sub(result.EnteredAt).String(),
	})
	if result.Outcome == history.OutcomeTaken {
		logger.Info("Dose confirmed")
		s.Display.Show("Medication taken", "Well done!")
	} else {
		logger.Warn("Dose missed")
		s.Display.Show("Dose MISSED", result.EnteredAt.Format(history.TimestampLayout))
	}
	s.Clock.Sleep(s.Timing.ResultHold)

	entry := result.Entry()
	s.Log.Append(entry)
	if s.HistoryRepo != nil {
		if err := s.HistoryRepo.Append(ctx, &entry); err != nil {
			logger.WithError(err).Error("Failed to persist history entry")
		}
	}

	s.Armer.ArmNext(sched)

	if s.Notifier != nil {
		s.Notifier.SessionResolved(ctx, result)
	}
}
