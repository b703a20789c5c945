// internal/app/config_channel.go
package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"medication_reminder/internal/domain/history"
	"medication_reminder/internal/domain/schedule"
	"medication_reminder/internal/domain/settings"

	"github.com/sirupsen/logrus"
)

// Target identifies an endpoint of the wireless control surface.
type Target string

const (
	TargetCredentials Target = "credentials"
	TargetSchedule    Target = "schedule"
	TargetVolume      Target = "volume"
	TargetTimeMode    Target = "time_mode"
	TargetHistory     Target = "history"
)

var (
	ErrUnknownTarget = errors.New("unknown configuration target")
	ErrNotWritable   = errors.New("configuration target is read-only")
	ErrNotReadable   = errors.New("configuration target is write-only")
)

// PendingUpdates are accepted writes not yet applied by the controller.
// A nil field means no write arrived for that target.
type PendingUpdates struct {
	Credentials  *settings.Credentials
	ScheduleText *string
	Volume       *uint8
	TimeMode     *settings.TimeMode
}

func (p PendingUpdates) Empty() bool {
	return p.Credentials == nil && p.ScheduleText == nil && p.Volume == nil && p.TimeMode == nil
}

type writer func(ctx context.Context, payload string) error

// ConfigChannel receives writes from the control surface. A write is
// validated and normalised, persisted and mirrored at once, then parked in a
// per-target slot for the controller loop to apply; the in-memory Settings
// and Schedule are never touched from the caller's goroutine.
type ConfigChannel struct {
	store  *settings.Store
	logger *logrus.Entry

	// writeMu serialises writes so that the persisted value, the mirror and
	// the pending slot of a target always agree.
	writeMu sync.Mutex

	mu     sync.RWMutex
	mirror map[Target]string

	pendingCredentials atomic.Pointer[settings.Credentials]
	pendingSchedule    atomic.Pointer[string]
	pendingVolume      atomic.Pointer[uint8]
	pendingTimeMode    atomic.Pointer[settings.TimeMode]

	writers map[Target]writer
}

// NewConfigChannel seeds the read-back mirror from the loaded settings.
func NewConfigChannel(store *settings.Store, initial settings.Settings, logger *logrus.Entry) *ConfigChannel {
	c := &ConfigChannel{
		store:  store,
		logger: logger,
		mirror: map[Target]string{
			TargetSchedule: schedule.New(initial.ScheduleText).String(),
			TargetVolume:   strconv.Itoa(int(initial.Volume)),
			TargetTimeMode: string(initial.TimeMode),
			TargetHistory:  history.NewLog().Render(),
		},
	}
	c.writers = map[Target]writer{
		TargetCredentials: c.writeCredentials,
		TargetSchedule:    c.writeSchedule,
		TargetVolume:      c.writeVolume,
		TargetTimeMode:    c.writeTimeMode,
	}
	return c
}

// Write applies payload to target. Empty payloads and malformed values are
// ignored without error; an error is returned only for an unknown or
// read-only target, or when persisting the accepted value failed.
func (c *ConfigChannel) Write(ctx context.Context, target Target, payload string) error {
	logger := c.logger.WithField("target", target)
	w, ok := c.writers[target]
	if !ok {
		if target == TargetHistory {
			return ErrNotWritable
		}
		logger.Warn("Write to unknown target ignored")
		return ErrUnknownTarget
	}
	if payload == "" {
		logger.Debug("Empty write ignored")
		return nil
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return w(ctx, payload)
}

// Read returns the normalised value last accepted for target.
func (c *ConfigChannel) Read(target Target) (string, error) {
	if target == TargetCredentials {
		return "", ErrNotReadable
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.mirror[target]
	if !ok {
		return "", ErrUnknownTarget
	}
	return v, nil
}

// PublishHistory replaces the readable history blob.
func (c *ConfigChannel) PublishHistory(rendered string) {
	c.setMirror(TargetHistory, rendered)
}

// TakePending hands every parked write to the caller exactly once.
func (c *ConfigChannel) TakePending() PendingUpdates {
	return PendingUpdates{
		Credentials:  c.pendingCredentials.Swap(nil),
		ScheduleText: c.pendingSchedule.Swap(nil),
		Volume:       c.pendingVolume.Swap(nil),
		TimeMode:     c.pendingTimeMode.Swap(nil),
	}
}

func (c *ConfigChannel) setMirror(target Target, value string) {
	c.mu.Lock()
	c.mirror[target] = value
	c.mu.Unlock()
}

func (c *ConfigChannel) writeCredentials(ctx context.Context, payload string) error {
	ssid, password, found := strings.Cut(payload, ",")
	if !found {
		c.logger.WithField("target", TargetCredentials).Warn("Credentials without separator ignored")
		return nil
	}
	creds := settings.Credentials{SSID: ssid, Password: password}

	err := errors.Join(
		c.store.SetString(ctx, settings.KeySSID, creds.SSID),
		c.store.SetString(ctx, settings.KeyPassword, creds.Password),
	)
	c.pendingCredentials.Store(&creds)
	c.logger.WithFields(logrus.Fields{
		"target": TargetCredentials,
		"ssid":   creds.SSID,
	}).Info("Network credentials accepted")
	return c.persisted(TargetCredentials, err)
}

func (c *ConfigChannel) writeSchedule(ctx context.Context, payload string) error {
	normalized := schedule.New(payload).String()

	err := c.store.SetString(ctx, settings.KeySchedule, normalized)
	c.setMirror(TargetSchedule, normalized)
	c.pendingSchedule.Store(&normalized)
	c.logger.WithFields(logrus.Fields{
		"target":   TargetSchedule,
		"schedule": normalized,
	}).Info("Schedule accepted")
	return c.persisted(TargetSchedule, err)
}

func (c *ConfigChannel) writeVolume(ctx context.Context, payload string) error {
	n, err := strconv.ParseInt(strings.TrimSpace(payload), 10, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		// ParseInt saturates on ErrRange, which clamps like any other overflow.
		c.logger.WithField("target", TargetVolume).WithField("payload", payload).Warn("Non-numeric volume ignored")
		return nil
	}
	volume := settings.ClampVolume(n)

	err = c.store.SetInt(ctx, settings.KeyVolume, int(volume))
	c.setMirror(TargetVolume, strconv.Itoa(int(volume)))
	c.pendingVolume.Store(&volume)
	c.logger.WithFields(logrus.Fields{
		"target": TargetVolume,
		"volume": volume,
	}).Info("Volume accepted")
	return c.persisted(TargetVolume, err)
}

func (c *ConfigChannel) writeTimeMode(ctx context.Context, payload string) error {
	mode, ok := settings.ParseTimeMode(payload)
	if !ok {
		c.logger.WithField("target", TargetTimeMode).WithField("payload", payload).Warn("Unknown time mode ignored")
		return nil
	}

	err := c.store.SetBool(ctx, settings.KeyUse24h, mode == settings.TimeMode24h)
	c.setMirror(TargetTimeMode, string(mode))
	c.pendingTimeMode.Store(&mode)
	c.logger.WithFields(logrus.Fields{
		"target":    TargetTimeMode,
		"time_mode": mode,
	}).Info("Time mode accepted")
	return c.persisted(TargetTimeMode, err)
}

func (c *ConfigChannel) persisted(target Target, err error) error {
	if err == nil {
		return nil
	}
	c.logger.WithField("target", target).WithError(err).Error("Failed to persist setting")
	return fmt.Errorf("persist %s: %w", target, err)
}
