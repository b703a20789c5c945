package device

import (
	"medication_reminder/internal/domain/device"

	"github.com/sirupsen/logrus"
)

// LogBuzzer stands in for the PWM buzzer and logs duty changes.
type LogBuzzer struct {
	logger *logrus.Entry
}

func NewLogBuzzer(logger *logrus.Entry) *LogBuzzer {
	return &LogBuzzer{logger: logger}
}

var _ device.Buzzer = (*LogBuzzer)(nil)

func (b *LogBuzzer) Drive(level uint8) {
	b.logger.WithField("level", level).Debug("Buzzer")
}

// LogLight stands in for the indicator LED.
type LogLight struct {
	logger *logrus.Entry
}

func NewLogLight(logger *logrus.Entry) *LogLight {
	return &LogLight{logger: logger}
}

var _ device.Light = (*LogLight)(nil)

func (l *LogLight) Set(on bool) {
	l.logger.WithField("on", on).Debug("LED")
}

// ConsoleDisplay writes the two display lines to the log, skipping repeats.
type ConsoleDisplay struct {
	logger       *logrus.Entry
	line1, line2 string
}

func NewConsoleDisplay(logger *logrus.Entry) *ConsoleDisplay {
	return &ConsoleDisplay{logger: logger}
}

var _ device.Display = (*ConsoleDisplay)(nil)

func (d *ConsoleDisplay) Show(line1, line2 string) {
	if line1 == d.line1 && line2 == d.line2 {
		return
	}
	d.line1, d.line2 = line1, line2
	d.logger.WithFields(logrus.Fields{
		"line1": line1,
		"line2": line2,
	}).Debug("Display")
}
