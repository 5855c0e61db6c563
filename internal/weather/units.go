package weather

import (
	"fmt"
	"strconv"
	"strings"
)

const rangeDash = "–"

// Units formats temperatures given in Celsius for display.
type Units struct {
	Celsius bool
}

func (u Units) Symbol() string {
	if u.Celsius {
		return "°C"
	}
	return "°F"
}

func (u Units) convert(c float64) int {
	if !u.Celsius {
		c = c*9/5 + 32
	}
	return int(c)
}

// FormatTemperature renders a Celsius value as "21°C" or "69°F". Fractions are
// truncated.
func (u Units) FormatTemperature(c float64) string {
	return fmt.Sprintf("%d%s", u.convert(c), u.Symbol())
}

// FormatTempRange renders a Celsius min/max as "12–19°C".
func (u Units) FormatTempRange(minC, maxC float64) string {
	return u.RangeText(u.convert(minC), u.convert(maxC))
}

// RangeText renders values already in the display unit.
func (u Units) RangeText(lo, hi int) string {
	return fmt.Sprintf("%d%s%d%s", lo, rangeDash, hi, u.Symbol())
}

// ParseTempRange is the inverse of RangeText for this unit system.
func (u Units) ParseTempRange(s string) (lo, hi int, err error) {
	body, ok := strings.CutSuffix(s, u.Symbol())
	if !ok {
		return 0, 0, fmt.Errorf("temperature range %q: missing %s suffix", s, u.Symbol())
	}
	a, b, ok := strings.Cut(body, rangeDash)
	if !ok {
		return 0, 0, fmt.Errorf("temperature range %q: missing separator", s)
	}
	if lo, err = strconv.Atoi(a); err != nil {
		return 0, 0, fmt.Errorf("temperature range %q: %w", s, err)
	}
	if hi, err = strconv.Atoi(b); err != nil {
		return 0, 0, fmt.Errorf("temperature range %q: %w", s, err)
	}
	return lo, hi, nil
}

// ClockFormat returns the Go layout for 12 or 24 hour clock text.
func ClockFormat(amPM bool) string {
	if amPM {
		return "03:04 PM"
	}
	return "15:04"
}
