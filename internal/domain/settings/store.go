// internal/domain/settings/store.go
package settings

import (
	"context"
	"errors"
	"fmt"
	"strconv"
)

// ErrNotFound is returned by a KV when a key was never written.
var ErrNotFound = errors.New("setting not found")

// KV is the persistent key-value storage collaborator.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// Store reads and writes typed settings on top of a KV.
type Store struct {
	kv KV
}

func NewStore(kv KV) *Store {
	return &Store{kv: kv}
}

// StringWithFallback returns the stored value, or fallback if the key is absent.
func (s *Store) StringWithFallback(ctx context.Context, key, fallback string) (string, error) {
	v, err := s.kv.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return fallback, nil
	}
	if err != nil {
		return fallback, fmt.Errorf("failed to read setting %q: %w", key, err)
	}
	return v, nil
}

// IntWithFallback returns the stored integer. An unparsable value yields fallback.
func (s *Store) IntWithFallback(ctx context.Context, key string, fallback int) (int, error) {
	v, err := s.StringWithFallback(ctx, key, strconv.Itoa(fallback))
	if err != nil {
		return fallback, err
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback, nil
	}
	return n, nil
}

// BoolWithFallback returns the stored boolean. An unparsable value yields fallback.
func (s *Store) BoolWithFallback(ctx context.Context, key string, fallback bool) (bool, error) {
	v, err := s.StringWithFallback(ctx, key, strconv.FormatBool(fallback))
	if err != nil {
		return fallback, err
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback, nil
	}
	return b, nil
}

func (s *Store) SetString(ctx context.Context, key, value string) error {
	if err := s.kv.Set(ctx, key, value); err != nil {
		return fmt.Errorf("failed to write setting %q: %w", key, err)
	}
	return nil
}

func (s *Store) SetInt(ctx context.Context, key string, value int) error {
	return s.SetString(ctx, key, strconv.Itoa(value))
}

func (s *Store) SetBool(ctx context.Context, key string, value bool) error {
	return s.SetString(ctx, key, strconv.FormatBool(value))
}

// Load reads every setting, applying defaults for absent keys. Storage errors
// are joined and returned along with whatever could be loaded.
func (s *Store) Load(ctx context.Context) (Settings, error) {
	var errs []error
	collect := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	ssid, err := s.StringWithFallback(ctx, KeySSID, "")
	collect(err)
	password, err := s.StringWithFallback(ctx, KeyPassword, "")
	collect(err)
	scheduleText, err := s.StringWithFallback(ctx, KeySchedule, DefaultScheduleText)
	collect(err)
	volume, err := s.IntWithFallback(ctx, KeyVolume, DefaultVolume)
	collect(err)
	use24h, err := s.BoolWithFallback(ctx, KeyUse24h, DefaultUse24h)
	collect(err)

	mode := TimeMode12h
	if use24h {
		mode = TimeMode24h
	}
	loaded := Settings{
		Credentials:  Credentials{SSID: ssid, Password: password},
		ScheduleText: scheduleText,
		Volume:       ClampVolume(int64(volume)),
		TimeMode:     mode,
	}
	return loaded, errors.Join(errs...)
}

// ClampVolume clamps v into the 0-255 buzzer range.
func ClampVolume(v int64) uint8 {
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	default:
		return uint8(v)
	}
}
