package weather

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

type Forecast struct {
	Date      time.Time
	Weekday   string
	TempRange string
	Text      string
	Icon      Icon
	Pop       string
}

// Snapshot is the display-ready view of one successful fetch.
type Snapshot struct {
	FetchedAt   time.Time
	Icon        Icon
	Summary     string
	Description string
	Temperature string
	Forecast    []Forecast
}

type AlertState struct {
	Event       string
	Description string
}

// Model holds the latest snapshot and alert. It is not synchronized: every
// call happens with the render gate held.
type Model struct {
	units    Units
	loc      *time.Location
	locality string

	snapshot Snapshot
	has      bool
	alert    *AlertState
}

func NewModel(units Units, locality string, loc *time.Location) *Model {
	if loc == nil {
		loc = time.Local
	}
	return &Model{units: units, locality: locality, loc: loc}
}

func (m *Model) Units() Units       { return m.units }
func (m *Model) Locality() string   { return m.locality }
func (m *Model) Loc() *time.Location { return m.loc }

func (m *Model) Snapshot() (Snapshot, bool) { return m.snapshot, m.has }

func (m *Model) HasAlert() bool { return m.alert != nil }

func (m *Model) Alert() (AlertState, bool) {
	if m.alert == nil {
		return AlertState{}, false
	}
	return *m.alert, true
}

// Ingest replaces the snapshot and alert with the contents of p. On error the
// model is left untouched. raised is true only when no alert was active before
// and p carries one.
func (m *Model) Ingest(p OneCall, now time.Time) (raised bool, err error) {
	snap, err := m.build(p, now)
	if err != nil {
		return false, err
	}

	var next *AlertState
	if len(p.Alerts) > 0 {
		next = &AlertState{
			Event:       strings.TrimSpace(p.Alerts[0].Event),
			Description: strings.TrimSpace(p.Alerts[0].Description),
		}
	}

	raised = m.alert == nil && next != nil
	m.snapshot = snap
	m.has = true
	m.alert = next
	return raised, nil
}

func (m *Model) build(p OneCall, now time.Time) (Snapshot, error) {
	if len(p.Current.Weather) == 0 {
		return Snapshot{}, errors.New("weather: payload has no current conditions")
	}
	cur := p.Current.Weather[0]
	icon, err := LookupIcon(cur.Icon)
	if err != nil {
		return Snapshot{}, fmt.Errorf("current: %w", err)
	}

	forecast := make([]Forecast, 0, len(p.Daily))
	for i, d := range p.Daily {
		if len(d.Weather) == 0 {
			return Snapshot{}, fmt.Errorf("weather: daily[%d] has no conditions", i)
		}
		dic, err := LookupIcon(d.Weather[0].Icon)
		if err != nil {
			return Snapshot{}, fmt.Errorf("daily[%d]: %w", i, err)
		}
		date := time.Unix(d.Dt, 0).In(m.loc)
		text := d.Weather[0].Main
		if strings.EqualFold(text, "thunderstorm") {
			text = "Storm"
		}
		forecast = append(forecast, Forecast{
			Date:      date,
			Weekday:   date.Format("Mon"),
			TempRange: m.units.FormatTempRange(d.Temp.Min, d.Temp.Max),
			Text:      text,
			Icon:      dic,
			Pop:       fmt.Sprintf("%d%%", int(math.Round(d.Pop*100))),
		})
	}
	// Today's entry is stale in the afternoon.
	if now.In(m.loc).Hour() > 12 && len(forecast) > 0 {
		forecast = forecast[1:]
	}

	return Snapshot{
		FetchedAt:   now,
		Icon:        icon,
		Summary:     cur.Main,
		Description: sentenceCase(cur.Description),
		Temperature: m.units.FormatTemperature(p.Current.Temp),
		Forecast:    forecast,
	}, nil
}

func sentenceCase(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}
