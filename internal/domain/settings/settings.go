// internal/domain/settings/settings.go
package settings

// TimeMode selects how the clock is rendered on the display.
type TimeMode string

const (
	TimeMode12h TimeMode = "12h"
	TimeMode24h TimeMode = "24h"
)

// ParseTimeMode accepts exactly the two literal mode tokens.
func ParseTimeMode(token string) (TimeMode, bool) {
	switch TimeMode(token) {
	case TimeMode12h, TimeMode24h:
		return TimeMode(token), true
	default:
		return "", false
	}
}

// Credentials are the network credentials used for time synchronisation.
type Credentials struct {
	SSID     string
	Password string
}

// Settings is the process-wide device configuration.
type Settings struct {
	Credentials  Credentials
	ScheduleText string
	Volume       uint8 // 0-255, buzzer PWM duty
	TimeMode     TimeMode
}

// Persisted keys.
const (
	KeySSID     = "ssid"
	KeyPassword = "password"
	KeySchedule = "schedule"
	KeyVolume   = "volume"
	KeyUse24h   = "use24h"
)

// Defaults applied when a key was never persisted.
const (
	DefaultScheduleText = "08:00,20:00"
	DefaultVolume       = 128
	DefaultUse24h       = true
)
