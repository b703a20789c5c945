package device

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"medication_reminder/internal/domain/device"
	"medication_reminder/internal/domain/settings"
)

// ErrNoNetwork is returned when no network can be joined with the credentials.
var ErrNoNetwork = errors.New("network association failed")

// HTTPTimeSync reads network time from the Date header of an HTTP server.
type HTTPTimeSync struct {
	client  *http.Client
	url     string
	timeout time.Duration
	rtc     *RTC
}

func NewHTTPTimeSync(url string, timeout time.Duration, rtc *RTC) *HTTPTimeSync {
	return &HTTPTimeSync{
		client:  &http.Client{},
		url:     url,
		timeout: timeout,
		rtc:     rtc,
	}
}

var _ device.TimeSyncer = (*HTTPTimeSync)(nil)

// Sync makes exactly one request; the caller decides when to try again.
func (s *HTTPTimeSync) Sync(ctx context.Context, creds settings.Credentials) error {
	if creds.SSID == "" {
		return ErrNoNetwork
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, s.url, nil)
	if err != nil {
		return fmt.Errorf("failed to build time request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("time fetch failed: %w", err)
	}
	resp.Body.Close()

	date := resp.Header.Get("Date")
	if date == "" {
		return fmt.Errorf("time fetch failed: no Date header from %s", s.url)
	}
	t, err := http.ParseTime(date)
	if err != nil {
		return fmt.Errorf("time fetch failed: %w", err)
	}
	s.rtc.SetTime(t)
	return nil
}
