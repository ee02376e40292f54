// Package feedback drives the appliance's local output: a 16x2 character
// display and a buzzer. Without the hardware both are written to the log.
package feedback

import (
	"fmt"
	"time"

	cache "github.com/go-pkgz/expirable-cache/v3"
	"go.uber.org/zap"
)

const lcdWidth = 16

// Notifier reports scan outcomes to the person standing at the camera.
type Notifier interface {
	Success(name string, confidence float64)
	Duplicate(name string)
	Unknown()
	Message(line1, line2 string)
}

// Display is the low level output device.
type Display interface {
	Show(line1, line2 string)
	Beep(times int)
}

// LogDisplay prints display and buzzer output through zap.
type LogDisplay struct {
	logger *zap.Logger
}

func NewLogDisplay(logger *zap.Logger) *LogDisplay {
	return &LogDisplay{logger: logger}
}

func (d *LogDisplay) Show(line1, line2 string) {
	d.logger.Info("lcd", zap.String("line1", line1), zap.String("line2", line2))
}

func (d *LogDisplay) Beep(times int) {
	d.logger.Info("buzzer", zap.Int("beeps", times))
}

type Cooldowns struct {
	Success   time.Duration
	Duplicate time.Duration
	Unknown   time.Duration
}

// Panel is the Notifier used by the appliance. Repeated outcomes for the same
// person are swallowed until their cooldown expires.
type Panel struct {
	display   Display
	cooldowns Cooldowns
	recent    cache.Cache[string, struct{}]
	logger    *zap.Logger
}

func NewPanel(display Display, cooldowns Cooldowns, logger *zap.Logger) *Panel {
	return &Panel{
		display:   display,
		cooldowns: cooldowns,
		recent:    cache.NewCache[string, struct{}]().WithMaxKeys(256),
		logger:    logger,
	}
}

// cooling reports whether key fired within ttl, and arms it otherwise.
func (p *Panel) cooling(key string, ttl time.Duration) bool {
	if ttl <= 0 {
		return false
	}
	if _, ok := p.recent.Get(key); ok {
		return true
	}
	p.recent.Set(key, struct{}{}, ttl)
	return false
}

func (p *Panel) Success(name string, confidence float64) {
	if p.cooling("success:"+name, p.cooldowns.Success) {
		return
	}
	p.display.Show(fit(name), "Attendance OK")
	p.display.Beep(1)
	p.logger.Info("attendance success", zap.String("name", name), zap.Float64("confidence", confidence))
}

func (p *Panel) Duplicate(name string) {
	if p.cooling("duplicate:"+name, p.cooldowns.Duplicate) {
		return
	}
	p.display.Show(fit(name), "Already Marked")
	p.display.Beep(2)
	p.logger.Info("attendance duplicate", zap.String("name", name))
}

func (p *Panel) Unknown() {
	if p.cooling("unknown", p.cooldowns.Unknown) {
		return
	}
	p.display.Show("Unknown Face", "")
	p.display.Beep(3)
}

func (p *Panel) Message(line1, line2 string) {
	p.display.Show(fit(line1), fit(line2))
}

// Countdown shows the remaining alignment time.
func (p *Panel) Countdown(remaining time.Duration) {
	p.display.Show("Look at camera", fmt.Sprintf("%ds", int(remaining.Round(time.Second)/time.Second)))
}

func fit(s string) string {
	r := []rune(s)
	if len(r) > lcdWidth {
		return string(r[:lcdWidth])
	}
	return s
}
