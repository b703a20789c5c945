package schedule_test

import (
	"reflect"
	"testing"
	"time"

	"medication_reminder/internal/domain/schedule"
)

func TestReplace(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{{
		name: "sorted on parse",
		text: "18:00,08:00,12:00",
		want: "08:00,12:00,18:00",
	}, {
		name: "duplicates kept",
		text: "12:00,08:00,12:00",
		want: "08:00,12:00,12:00",
	}, {
		name: "token without separator dropped",
		text: "0800,12:00",
		want: "12:00",
	}, {
		name: "out of range and garbage dropped",
		text: "24:00,12:60,ab:cd,07:05",
		want: "07:05",
	}, {
		name: "whitespace tolerated",
		text: " 9:5 , 21:30 ",
		want: "09:05,21:30",
	}, {
		name: "empty text",
		text: "",
		want: "",
	}}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			s := schedule.New("23:59")
			s.Replace(tt.text)
			if got := s.String(); got != tt.want {
				t.Errorf("wrong schedule\ngot:  %q\nwant: %q", got, tt.want)
			}
		})
	}
}

func TestReplaceWithOwnTextIsIdempotent(t *testing.T) {
	s := schedule.New("21:00,07:30,bad,07:30,12:15")
	again := schedule.New(s.String())
	if got, want := again.Times(), s.Times(); !reflect.DeepEqual(got, want) {
		t.Errorf("round trip changed schedule\ngot:  %v\nwant: %v", got, want)
	}
}

func at(hour, minute, second int) time.Time {
	return time.Date(2026, 10, 16, hour, minute, second, 0, time.UTC)
}

func TestNextOccurrence(t *testing.T) {
	tests := []struct {
		name string
		text string
		now  time.Time
		want time.Time
	}{{
		name: "later the same day",
		text: "08:00,12:00,18:00",
		now:  at(9, 30, 0),
		want: at(12, 0, 0),
	}, {
		name: "wraps to tomorrow",
		text: "08:00,12:00,18:00",
		now:  at(19, 0, 0),
		want: at(8, 0, 0).AddDate(0, 0, 1),
	}, {
		name: "same minute is not upcoming",
		text: "08:00,12:00",
		now:  at(12, 0, 30),
		want: at(8, 0, 0).AddDate(0, 0, 1),
	}, {
		name: "one minute before",
		text: "08:00,12:00",
		now:  at(11, 59, 59),
		want: at(12, 0, 0),
	}, {
		name: "single alarm already passed",
		text: "06:15",
		now:  at(6, 16, 0),
		want: at(6, 15, 0).AddDate(0, 0, 1),
	}, {
		name: "month boundary",
		text: "07:00",
		now:  time.Date(2026, 10, 31, 22, 0, 0, 0, time.UTC),
		want: time.Date(2026, 11, 1, 7, 0, 0, 0, time.UTC),
	}}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got, ok := schedule.New(tt.text).NextOccurrence(tt.now)
			if !ok {
				t.Fatal("expected an occurrence")
			}
			if !got.Equal(tt.want) {
				t.Errorf("wrong next occurrence\ngot:  %v\nwant: %v", got, tt.want)
			}
		})
	}
}

func TestNextOccurrenceEmpty(t *testing.T) {
	if got, ok := schedule.New("").NextOccurrence(at(10, 0, 0)); ok {
		t.Errorf("expected none, got %v", got)
	}
}

func TestNextOccurrenceIsEarliestFutureAlarm(t *testing.T) {
	s := schedule.New("00:00,06:30,06:30,12:00,23:59")
	for minute := 0; minute < 24*60; minute += 7 {
		now := at(0, 0, 0).Add(time.Duration(minute)*time.Minute + 42*time.Second)
		got, ok := s.NextOccurrence(now)
		if !ok {
			t.Fatal("expected an occurrence")
		}
		if !got.After(now) {
			t.Fatalf("next occurrence %v is not after %v", got, now)
		}
		// Brute force over today and tomorrow.
		var want time.Time
		for _, day := range []int{0, 1} {
			for _, a := range s.Times() {
				candidate := time.Date(now.Year(), now.Month(), now.Day()+day, a.Hour, a.Minute, 0, 0, now.Location())
				if candidate.After(now) && (want.IsZero() || candidate.Before(want)) {
					want = candidate
				}
			}
		}
		if !got.Equal(want) {
			t.Fatalf("at %v got %v, want %v", now, got, want)
		}
	}
}
