// Package screen holds the kiosk's screen selection state machine.
package screen

import (
	"fmt"
	"strings"
)

// State is the screen currently shown on the panel.
type State int

const (
	Weather State = iota
	AirQuality
	Forecast
	Alert
)

func (s State) String() string {
	switch s {
	case Weather:
		return "weather"
	case AirQuality:
		return "iaq"
	case Forecast:
		return "forecast"
	case Alert:
		return "alert"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Parse accepts the names used in settings files: weather, iaq, forecast, alert.
func Parse(s string) (State, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "weather":
		return Weather, nil
	case "iaq", "airquality", "air_quality":
		return AirQuality, nil
	case "forecast":
		return Forecast, nil
	case "alert":
		return Alert, nil
	default:
		return Weather, fmt.Errorf("invalid screen %q (allowed: weather, iaq, forecast, alert)", s)
	}
}

// Event drives a transition.
type Event int

const (
	None Event = iota
	UpPressed
	DownPressed
	// Refresh is the periodic display tick.
	Refresh
)

func (e Event) String() string {
	switch e {
	case None:
		return "none"
	case UpPressed:
		return "up"
	case DownPressed:
		return "down"
	case Refresh:
		return "refresh"
	default:
		return fmt.Sprintf("Event(%d)", int(e))
	}
}

// Next is the pure transition function. The second result reports whether the
// destination must be rendered.
func Next(cur State, ev Event, hasSensor, hasAlert bool) (State, bool) {
	switch ev {
	case UpPressed:
		if hasSensor {
			return AirQuality, true
		}
		return cur, false
	case DownPressed:
		switch {
		case cur == Weather && hasAlert:
			return Alert, true
		case cur == Weather || cur == Alert:
			return Forecast, true
		default:
			return Weather, true
		}
	case Refresh:
		switch cur {
		case Weather, Forecast:
			return cur, true
		case AirQuality:
			if hasSensor {
				return AirQuality, true
			}
			return Weather, true
		default:
			// alert expires on every refresh; anything unknown falls back too
			return Weather, true
		}
	default:
		return cur, false
	}
}

// Machine holds the current screen. It is not synchronized: callers hold the
// render gate around every call.
type Machine struct {
	current   State
	hasSensor bool
}

func NewMachine(start State, hasSensor bool) *Machine {
	return &Machine{current: start, hasSensor: hasSensor}
}

func (m *Machine) Current() State { return m.current }

func (m *Machine) HasSensor() bool { return m.hasSensor }

// Apply advances the machine and reports whether the new screen must be drawn.
func (m *Machine) Apply(ev Event, hasAlert bool) (State, bool) {
	next, render := Next(m.current, ev, m.hasSensor, hasAlert)
	m.current = next
	return next, render
}
