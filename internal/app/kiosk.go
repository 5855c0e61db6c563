package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"cloudpico-kiosk/internal/alarm"
	"cloudpico-kiosk/internal/display"
	"cloudpico-kiosk/internal/gate"
	"cloudpico-kiosk/internal/screen"
	"cloudpico-kiosk/internal/sensor"
	"cloudpico-kiosk/internal/weather"
)

// Fetcher returns the latest weather payload.
type Fetcher interface {
	Fetch(ctx context.Context) (weather.OneCall, error)
}

// SensorFeed exposes the last air-quality record.
type SensorFeed interface {
	Latest() (sensor.Record, bool)
}

type Options struct {
	WeatherRefresh time.Duration
	ScreenRefresh  time.Duration
	// RefreshDelay holds back the first display refresh so the first fetch
	// lands before it.
	RefreshDelay time.Duration
	AMPM         bool
	Start        screen.State
	HasSensor    bool
}

// Task is a long-running activity started with the kiosk loops.
type Task struct {
	Name  string
	Delay time.Duration
	Run   func(ctx context.Context) error
}

// Kiosk owns the display and everything drawn on it. Screen, model and panel
// are only touched with the gate held; the clock text and the sensor record
// are published outside it.
type Kiosk struct {
	opts     Options
	gate     *gate.Gate
	machine  *screen.Machine
	model    *weather.Model
	renderer *display.Renderer
	fetcher  Fetcher
	alarm    alarm.Alarm
	sensor   SensorFeed
	logger   *slog.Logger

	clock atomic.Pointer[string]
	now   func() time.Time
}

type Deps struct {
	Model    *weather.Model
	Renderer *display.Renderer
	Fetcher  Fetcher
	Alarm    alarm.Alarm
	Sensor   SensorFeed
	Logger   *slog.Logger
}

func NewKiosk(opts Options, deps Deps) *Kiosk {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Alarm == nil {
		deps.Alarm = alarm.Silent{Logger: deps.Logger}
	}
	if opts.WeatherRefresh <= 0 {
		opts.WeatherRefresh = 30 * time.Minute
	}
	if opts.ScreenRefresh <= 0 {
		opts.ScreenRefresh = opts.WeatherRefresh / 2
	}
	k := &Kiosk{
		opts:     opts,
		gate:     gate.New(),
		machine:  screen.NewMachine(opts.Start, opts.HasSensor),
		model:    deps.Model,
		renderer: deps.Renderer,
		fetcher:  deps.Fetcher,
		alarm:    deps.Alarm,
		sensor:   deps.Sensor,
		logger:   deps.Logger,
		now:      time.Now,
	}
	k.updateClock()
	return k
}

// Run starts the weather and display loops plus tasks and blocks until ctx is
// done or one of them fails.
func (k *Kiosk) Run(ctx context.Context, tasks ...Task) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { return k.WeatherLoop(ctx) })
	g.Go(func() error {
		if err := sleep(ctx, k.opts.RefreshDelay); err != nil {
			return nil
		}
		return k.RefreshLoop(ctx)
	})
	for _, t := range tasks {
		g.Go(func() error {
			if err := sleep(ctx, t.Delay); err != nil {
				return nil
			}
			k.logger.Debug("task started", "task", t.Name)
			if err := t.Run(ctx); err != nil {
				return fmt.Errorf("%s: %w", t.Name, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// WeatherLoop fetches immediately, then every WeatherRefresh.
func (k *Kiosk) WeatherLoop(ctx context.Context) error {
	for {
		if err := k.UpdateWeather(ctx); err != nil {
			return nil
		}
		if err := sleep(ctx, k.opts.WeatherRefresh); err != nil {
			return nil
		}
	}
}

// UpdateWeather runs one fetch with the gate held. Fetch and ingest failures
// are logged and keep the previous snapshot; only a cancelled ctx is returned.
// A newly raised alert sounds the alarm before the gate is released.
func (k *Kiosk) UpdateWeather(ctx context.Context) error {
	return k.gate.Do(ctx, func() error {
		k.logger.Info("updating weather")
		p, err := k.fetcher.Fetch(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			k.logger.Error("weather fetch failed", "error", err)
			return nil
		}
		raised, err := k.model.Ingest(p, k.now())
		if err != nil {
			k.logger.Error("weather payload rejected", "error", err)
			return nil
		}
		k.updateClock()
		snap, _ := k.model.Snapshot()
		k.logger.Info("weather updated", "summary", snap.Summary, "temperature", snap.Temperature)

		if raised {
			a, _ := k.model.Alert()
			k.logger.Warn("new weather alert", "event", a.Event)
			if err := k.alarm.Sound(); err != nil {
				k.logger.Error("alarm failed", "error", err)
			}
		}
		return nil
	})
}

// RefreshLoop redraws the current screen every ScreenRefresh.
func (k *Kiosk) RefreshLoop(ctx context.Context) error {
	for {
		if err := k.Refresh(ctx); err != nil {
			return nil
		}
		if err := sleep(ctx, k.opts.ScreenRefresh); err != nil {
			return nil
		}
	}
}

// Refresh updates the clock text, applies the refresh event and draws.
func (k *Kiosk) Refresh(ctx context.Context) error {
	k.updateClock()
	return k.gate.Do(ctx, func() error {
		next, _ := k.machine.Apply(screen.Refresh, k.model.HasAlert())
		k.logger.Info("refreshing display", "screen", next.String(), "clock", k.Clock())
		k.draw(next)
		return nil
	})
}

// HandleButton applies a button event and draws the destination screen.
func (k *Kiosk) HandleButton(ctx context.Context, ev screen.Event) error {
	return k.gate.Do(ctx, func() error {
		next, render := k.machine.Apply(ev, k.model.HasAlert())
		if !render {
			return nil
		}
		k.logger.Info("switching screen", "event", ev.String(), "screen", next.String())
		k.draw(next)
		return nil
	})
}

// Screen returns the current screen. The gate must be held or the loops
// stopped.
func (k *Kiosk) Screen() screen.State { return k.machine.Current() }

// Clock returns the text shown as the current time.
func (k *Kiosk) Clock() string {
	if p := k.clock.Load(); p != nil {
		return *p
	}
	return ""
}

func (k *Kiosk) updateClock() {
	s := k.now().In(k.model.Loc()).Format(weather.ClockFormat(k.opts.AMPM))
	k.clock.Store(&s)
}

// draw renders s. Render failures are logged; the next refresh tries again.
func (k *Kiosk) draw(s screen.State) {
	if err := k.renderer.Render(func(c *display.Canvas) error {
		k.paint(c, s)
		return nil
	}); err != nil {
		k.logger.Error("render failed", "screen", s.String(), "error", err)
	}
}

func (k *Kiosk) paint(c *display.Canvas, s screen.State) {
	if s == screen.AirQuality {
		k.paintAirQuality(c)
		return
	}

	snap, ok := k.model.Snapshot()
	if !ok {
		display.DrawMessage(c, k.model.Locality(), "Waiting for weather data")
		return
	}
	switch s {
	case screen.Forecast:
		display.DrawForecast(c, snap.Forecast)
	case screen.Alert:
		if a, ok := k.model.Alert(); ok {
			display.DrawAlert(c, a)
			return
		}
		fallthrough
	default:
		v := display.WeatherView{Locality: k.model.Locality(), Clock: k.Clock(), Snapshot: snap}
		if a, ok := k.model.Alert(); ok {
			v.Alert = &a
		}
		display.DrawWeather(c, v)
	}
}

func (k *Kiosk) paintAirQuality(c *display.Canvas) {
	var (
		rec sensor.Record
		ok  bool
	)
	if k.sensor != nil {
		rec, ok = k.sensor.Latest()
	}
	if !ok {
		display.DrawMessage(c, "Air quality", "Waiting for the first sensor reading")
		return
	}
	display.DrawAirQuality(c, display.AirQualityView{
		Clock:       rec.CapturedAt.In(k.model.Loc()).Format(weather.ClockFormat(k.opts.AMPM)),
		IAQ:         rec.AirQuality,
		Humidity:    strings.TrimSuffix(rec.Humidity, "%"),
		Temperature: k.model.Units().FormatTemperature(rec.Celsius()),
	})
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
