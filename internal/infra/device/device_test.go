package device

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"medication_reminder/internal/domain/settings"
)

type stepClock struct{ now time.Time }

func (c *stepClock) Now() time.Time        { return c.now }
func (c *stepClock) Sleep(d time.Duration) { c.now = c.now.Add(d) }

func TestButtonHold(t *testing.T) {
	clock := &stepClock{now: time.Date(2026, 10, 16, 8, 0, 0, 0, time.UTC)}
	b := NewButton(clock, 2*time.Second)
	if b.Active() {
		t.Fatal("active before any press")
	}
	b.Press()
	if !b.Active() {
		t.Error("inactive right after press")
	}
	clock.Sleep(1999 * time.Millisecond)
	if !b.Active() {
		t.Error("inactive within hold")
	}
	clock.Sleep(time.Millisecond)
	if b.Active() {
		t.Error("still active after hold")
	}
}

func TestRTCSetTime(t *testing.T) {
	rtc := NewRTC(time.UTC)
	if err := rtc.Begin(); err != nil {
		t.Fatal(err)
	}
	want := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	rtc.SetTime(want)
	if got := rtc.Now(); got.Sub(want) < 0 || got.Sub(want) > time.Second {
		t.Errorf("clock reads %v after setting %v", got, want)
	}
}

func TestRTCWithoutLocationFails(t *testing.T) {
	if err := NewRTC(nil).Begin(); err == nil {
		t.Error("expected clock failure")
	}
}

func TestHTTPTimeSync(t *testing.T) {
	want := time.Date(2031, 6, 7, 8, 9, 10, 0, time.UTC)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("unexpected method %s", r.Method)
		}
		w.Header().Set("Date", want.Format(http.TimeFormat))
	}))
	defer srv.Close()

	rtc := NewRTC(time.UTC)
	sync := NewHTTPTimeSync(srv.URL, time.Second, rtc)
	if err := sync.Sync(context.Background(), settings.Credentials{SSID: "home"}); err != nil {
		t.Fatal(err)
	}
	if got := rtc.Now(); got.Sub(want) < 0 || got.Sub(want) > 2*time.Second {
		t.Errorf("clock reads %v, want about %v", got, want)
	}
}

func TestHTTPTimeSyncFailures(t *testing.T) {
	rtc := NewRTC(time.UTC)
	if err := NewHTTPTimeSync("http://unused", time.Second, rtc).Sync(context.Background(), settings.Credentials{}); !errors.Is(err, ErrNoNetwork) {
		t.Errorf("expected ErrNoNetwork, got %v", err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header()["Date"] = nil
	}))
	defer srv.Close()
	if err := NewHTTPTimeSync(srv.URL, time.Second, rtc).Sync(context.Background(), settings.Credentials{SSID: "x"}); err == nil {
		t.Error("expected error without Date header")
	}
}
