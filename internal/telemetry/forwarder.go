package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Forwarder drains the sample queue into a sink. Channels are ensured before
// the first send; if that fails it is retried with the next sample.
type Forwarder struct {
	sink    Sink
	group   string
	timeout time.Duration
	logger  *slog.Logger

	ensured bool
}

func NewForwarder(sink Sink, group string, timeout time.Duration, logger *slog.Logger) *Forwarder {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Forwarder{
		sink:    sink,
		group:   group,
		timeout: timeout,
		logger:  logger.With("sink", sink.Name(), "group", group),
	}
}

// Run forwards samples until ctx is done or in is closed. Send failures are
// logged and the sample is dropped.
func (f *Forwarder) Run(ctx context.Context, in <-chan Sample) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case s, ok := <-in:
			if !ok {
				return nil
			}
			if err := f.Forward(ctx, s); err != nil {
				f.logger.Error("telemetry send failed", "error", err)
			}
		}
	}
}

func (f *Forwarder) Forward(ctx context.Context, s Sample) error {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	if !f.ensured {
		if err := f.sink.EnsureChannels(ctx, f.group, Channels); err != nil {
			return fmt.Errorf("ensure channels: %w", err)
		}
		f.ensured = true
		f.logger.Info("telemetry channels ready", "channels", Channels)
	}

	if err := f.sink.Send(ctx, f.group, s); err != nil {
		return err
	}
	f.logger.Debug("telemetry sent", "captured_at", s.CapturedAt, "iaq", s.IAQ)
	return nil
}
