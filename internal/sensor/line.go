// Package sensor reads the air-quality reader's line protocol and keeps the
// reader process alive.
package sensor

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"periph.io/x/conn/v3/physic"
)

const (
	separator  = "|"
	fieldCount = 6
)

var (
	ErrNoSeparator = errors.New("sensor: line has no separator")
	ErrFieldCount  = errors.New("sensor: unexpected field count")
	ErrBadField    = errors.New("sensor: malformed field")
)

// Record is the last sample printed by the reader. Pressure, humidity and the
// air quality index are kept verbatim; gas resistance is discarded.
type Record struct {
	CapturedAt  time.Time
	Temperature physic.Temperature
	Pressure    string
	Humidity    string
	AirQuality  string

	temperatureText string
}

// Celsius returns the temperature as reported by the sensor.
func (r Record) Celsius() float64 {
	return r.Temperature.Celsius()
}

// TemperatureText is the temperature exactly as the sensor printed it. A
// Record built without ParseLine falls back to one decimal place.
func (r Record) TemperatureText() string {
	if r.temperatureText != "" {
		return r.temperatureText
	}
	return strconv.FormatFloat(r.Celsius(), 'f', 1, 64)
}

// ParseLine parses "timestamp|temperature|pressure|humidity|gas|iaq".
func ParseLine(line string) (Record, error) {
	line = strings.TrimSpace(line)
	if !strings.Contains(line, separator) {
		return Record{}, ErrNoSeparator
	}
	fields := strings.Split(line, separator)
	if len(fields) != fieldCount {
		return Record{}, fmt.Errorf("%w: got %d, want %d", ErrFieldCount, len(fields), fieldCount)
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	ts, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return Record{}, fmt.Errorf("%w: timestamp %q", ErrBadField, fields[0])
	}
	sec, frac := math.Modf(ts)

	var temp physic.Temperature
	if err := temp.Set(fields[1] + "C"); err != nil {
		return Record{}, fmt.Errorf("%w: temperature %q: %v", ErrBadField, fields[1], err)
	}

	return Record{
		CapturedAt:  time.Unix(int64(sec), int64(frac*1e9)),
		Temperature: temp,
		Pressure:    fields[2],
		Humidity:    fields[3],
		AirQuality:  fields[5],

		temperatureText: fields[1],
	}, nil
}
