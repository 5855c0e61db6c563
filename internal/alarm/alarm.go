// Package alarm drives the piezo buzzer that announces a new weather alert.
package alarm

import (
	"fmt"
	"log/slog"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
)

// Alarm plays the alert sound to completion. It is called while the render gate
// is held, so Sound blocks the display for its whole duration.
type Alarm interface {
	Sound() error
}

type Options struct {
	Count int
	Pulse time.Duration
	High  physic.Frequency
	Low   physic.Frequency
	Duty  gpio.Duty
}

// DefaultOptions is eight high/low cycles of half a second each.
func DefaultOptions() Options {
	return Options{
		Count: 8,
		Pulse: 500 * time.Millisecond,
		High:  6 * physic.KiloHertz,
		Low:   4 * physic.KiloHertz,
		Duty:  gpio.DutyHalf,
	}
}

type Buzzer struct {
	pin    gpio.PinOut
	opts   Options
	logger *slog.Logger
	sleep  func(time.Duration)
}

func NewBuzzer(pin gpio.PinOut, opts Options, logger *slog.Logger) *Buzzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Buzzer{pin: pin, opts: opts, logger: logger, sleep: time.Sleep}
}

// Sound starts the tone at the high frequency, alternates low/high Count
// times and then silences and releases the pin.
func (b *Buzzer) Sound() error {
	b.logger.Info("sounding alarm", "pin", b.pin.String(), "cycles", b.opts.Count)

	if err := b.pin.PWM(b.opts.Duty, b.opts.High); err != nil {
		return fmt.Errorf("buzzer pwm: %w", err)
	}
	var err error
	for i := 0; i < b.opts.Count && err == nil; i++ {
		b.sleep(b.opts.Pulse)
		if err = b.pin.PWM(b.opts.Duty, b.opts.Low); err != nil {
			break
		}
		b.sleep(b.opts.Pulse)
		err = b.pin.PWM(b.opts.Duty, b.opts.High)
	}

	if outErr := b.pin.Out(gpio.Low); outErr != nil && err == nil {
		err = outErr
	}
	if haltErr := b.pin.Halt(); haltErr != nil && err == nil {
		err = haltErr
	}
	if err != nil {
		return fmt.Errorf("buzzer: %w", err)
	}
	return nil
}

// Silent stands in for the buzzer when no pin is configured.
type Silent struct {
	Logger *slog.Logger
}

func (s Silent) Sound() error {
	l := s.Logger
	if l == nil {
		l = slog.Default()
	}
	l.Warn("weather alert raised, no buzzer configured")
	return nil
}
