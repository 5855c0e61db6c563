package telemetry

import (
	"context"
	"errors"
	"fmt"
)

// Sink stores samples under a named group of named channels.
type Sink interface {
	Name() string
	// EnsureChannels creates the group and its channels if they are missing.
	// It must be safe to call more than once.
	EnsureChannels(ctx context.Context, group string, channels []string) error
	Send(ctx context.Context, group string, s Sample) error
	Close() error
}

// Multi fans every call out to all sinks and joins their errors. A failing
// sink never stops the others from receiving the sample.
type Multi []Sink

func (m Multi) Name() string { return "multi" }

func (m Multi) EnsureChannels(ctx context.Context, group string, channels []string) error {
	var errs []error
	for _, s := range m {
		if err := s.EnsureChannels(ctx, group, channels); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}

func (m Multi) Send(ctx context.Context, group string, sample Sample) error {
	var errs []error
	for _, s := range m {
		if err := s.Send(ctx, group, sample); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}

func (m Multi) Close() error {
	var errs []error
	for _, s := range m {
		if err := s.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}
