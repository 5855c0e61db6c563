package sensor

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"
)

// maxLineLen is the longest line handed to the reader; longer lines are noise.
const maxLineLen = 64 * 1024

type Options struct {
	Path string
	Args []string
	// WaitDelay bounds how long Wait blocks for output after the process is
	// killed on shutdown.
	WaitDelay time.Duration
	// RetryDelay is the pause before spawning again after a failed start.
	RetryDelay time.Duration
}

// Supervisor runs the reader binary, forwards its lines and restarts it as soon
// as it exits.
type Supervisor struct {
	opts   Options
	handle func(line string)
	logger *slog.Logger
}

func NewSupervisor(opts Options, handle func(line string), logger *slog.Logger) *Supervisor {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.WaitDelay <= 0 {
		opts.WaitDelay = 2 * time.Second
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = time.Second
	}
	return &Supervisor{opts: opts, handle: handle, logger: logger}
}

// Available reports whether the reader binary exists and is executable.
func (s *Supervisor) Available() bool {
	if s.opts.Path == "" {
		return false
	}
	_, err := exec.LookPath(s.opts.Path)
	return err == nil
}

// Run supervises the reader until ctx is done. A missing binary is logged once
// and Run returns nil immediately.
func (s *Supervisor) Run(ctx context.Context) error {
	if !s.Available() {
		s.logger.Warn("sensor reader not found, air quality disabled", "path", s.opts.Path)
		return nil
	}

	for {
		s.logger.Info("starting sensor reader", "path", s.opts.Path)
		err := s.runOnce(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if errors.Is(err, errStart) {
			s.logger.Error("sensor reader could not be started, retrying", "path", s.opts.Path, "error", err)
			if err := sleep(ctx, s.opts.RetryDelay); err != nil {
				return nil
			}
			continue
		}
		if err != nil {
			s.logger.Warn("sensor reader exited", "error", err)
		} else {
			s.logger.Info("sensor reader exited")
		}
	}
}

var errStart = errors.New("start sensor reader")

// runOnce returns only after the process output reached EOF, so every line a
// run printed is handled before the next run starts.
func (s *Supervisor) runOnce(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, s.opts.Path, s.opts.Args...)
	cmd.Stderr = os.Stderr
	cmd.WaitDelay = s.opts.WaitDelay

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("%w: %v", errStart, err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: %v", errStart, err)
	}

	br := bufio.NewReaderSize(stdout, maxLineLen)
	header := true
	var readErr error
	for {
		line, tooLong, err := readLine(br)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				readErr = err
			}
			break
		}
		if header {
			header = false
			continue
		}
		if tooLong {
			continue
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		s.handle(line)
	}
	// Keep the pipe empty until the process closes it, whatever stopped the
	// loop above.
	if _, err := io.Copy(io.Discard, stdout); err != nil && readErr == nil {
		readErr = err
	}

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("wait: %w", err)
	}
	if readErr != nil {
		return fmt.Errorf("read output: %w", readErr)
	}
	return nil
}

// readLine returns the next line without its terminator. A line that does not
// fit the reader's buffer is consumed and reported as tooLong.
func readLine(br *bufio.Reader) (line string, tooLong bool, err error) {
	b, isPrefix, err := br.ReadLine()
	if err != nil {
		return "", false, err
	}
	if !isPrefix {
		return string(b), false, nil
	}
	for isPrefix {
		if _, isPrefix, err = br.ReadLine(); err != nil {
			return "", true, err
		}
	}
	return "", true, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
