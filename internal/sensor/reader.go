package sensor

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"cloudpico-kiosk/internal/telemetry"
)

// Reader turns reader lines into the latest Record and forwards a throttled
// copy to telemetry. Record updates do not take the render gate; Latest is safe
// to call from any goroutine.
type Reader struct {
	logger   *slog.Logger
	interval time.Duration
	out      chan<- telemetry.Sample

	mu         sync.RWMutex
	latest     Record
	has        bool
	lastLogged time.Time
}

// NewReader returns a Reader that forwards at most one sample per interval to
// out. A nil out disables forwarding.
func NewReader(interval time.Duration, out chan<- telemetry.Sample, logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{logger: logger, interval: interval, out: out}
}

// HandleLine applies one line of reader output. Malformed lines are dropped.
func (r *Reader) HandleLine(line string) {
	rec, err := ParseLine(line)
	if err != nil {
		return
	}

	r.mu.Lock()
	r.latest = rec
	r.has = true
	due := r.out != nil && rec.CapturedAt.Sub(r.lastLogged) >= r.interval
	r.mu.Unlock()

	if !due {
		return
	}

	sample := telemetry.Sample{
		CapturedAt:  rec.CapturedAt,
		Temperature: rec.TemperatureText(),
		Humidity:    strings.TrimSuffix(rec.Humidity, "%"),
		Pressure:    rec.Pressure,
		IAQ:         rec.AirQuality,
	}
	select {
	case r.out <- sample:
		r.mu.Lock()
		r.lastLogged = rec.CapturedAt
		r.mu.Unlock()
	default:
		r.logger.Warn("telemetry queue full, dropping sample", "captured_at", rec.CapturedAt)
	}
}

// Latest returns the most recent valid record.
func (r *Reader) Latest() (Record, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.latest, r.has
}
