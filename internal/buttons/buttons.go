// Package buttons polls the two active-low front buttons.
package buttons

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"periph.io/x/conn/v3/gpio"

	"cloudpico-kiosk/internal/screen"
)

type Options struct {
	Interval time.Duration
	Debounce time.Duration
	// HasSensor gates the up button; without a sensor an up press is ignored
	// and down handling proceeds.
	HasSensor bool
}

// Poller samples both pins every Interval and emits at most one event per
// cycle.
type Poller struct {
	up, down gpio.PinIn
	opts     Options
	logger   *slog.Logger

	sleep func(ctx context.Context, d time.Duration) error
}

// New configures both pins as pulled-up inputs. Either pin may be nil, in
// which case it never reads as pressed.
func New(up, down gpio.PinIn, opts Options, logger *slog.Logger) (*Poller, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Interval <= 0 {
		opts.Interval = 100 * time.Millisecond
	}
	for _, p := range []gpio.PinIn{up, down} {
		if p == nil {
			continue
		}
		if err := p.In(gpio.PullUp, gpio.NoEdge); err != nil {
			return nil, fmt.Errorf("configure button %s: %w", p, err)
		}
	}
	return &Poller{up: up, down: down, opts: opts, logger: logger, sleep: sleepCtx}, nil
}

func pressed(p gpio.PinIn) bool {
	return p != nil && p.Read() == gpio.Low
}

// Poll samples the pins once. On any press it waits the debounce and returns
// the event decided from the sample taken before the wait.
func (p *Poller) Poll(ctx context.Context) (screen.Event, error) {
	up := pressed(p.up)
	down := pressed(p.down)
	if !up && !down {
		return screen.None, nil
	}

	if err := p.sleep(ctx, p.opts.Debounce); err != nil {
		return screen.None, err
	}

	switch {
	case up && p.opts.HasSensor:
		return screen.UpPressed, nil
	case down:
		return screen.DownPressed, nil
	default:
		return screen.None, nil
	}
}

// Run polls until ctx is done and passes every non-None event to handle.
func (p *Poller) Run(ctx context.Context, handle func(context.Context, screen.Event) error) error {
	for {
		ev, err := p.Poll(ctx)
		if err != nil {
			return nil
		}
		if ev != screen.None {
			p.logger.Debug("button event", "event", ev.String())
			if err := handle(ctx, ev); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				p.logger.Error("button handler failed", "event", ev.String(), "error", err)
			}
		}
		if err := p.sleep(ctx, p.opts.Interval); err != nil {
			return nil
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
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
