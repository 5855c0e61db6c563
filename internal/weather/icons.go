package weather

import (
	"errors"
	"fmt"
)

var ErrUnknownIcon = errors.New("weather: unknown icon code")

// Kind is the pictogram family drawn for an icon.
type Kind int

const (
	Clear Kind = iota
	FewClouds
	Clouds
	Overcast
	Showers
	Rain
	Thunderstorm
	Snow
	Mist
)

// Icon is a resolved OpenWeather icon code. Glyph is the Meteocons character
// for the code.
type Icon struct {
	Code  string
	Glyph string
	Kind  Kind
	Night bool
}

// Wet reports whether a precipitation probability is worth showing.
func (i Icon) Wet() bool {
	switch i.Kind {
	case Showers, Rain, Thunderstorm, Snow:
		return true
	}
	return false
}

var icons = map[string]Icon{
	"01d": {Glyph: "B", Kind: Clear},
	"01n": {Glyph: "C", Kind: Clear, Night: true},
	"02d": {Glyph: "H", Kind: FewClouds},
	"02n": {Glyph: "I", Kind: FewClouds, Night: true},
	"03d": {Glyph: "N", Kind: Clouds},
	"03n": {Glyph: "5", Kind: Clouds, Night: true},
	"04d": {Glyph: "Y", Kind: Overcast},
	"04n": {Glyph: "%", Kind: Overcast, Night: true},
	"09d": {Glyph: "Q", Kind: Showers},
	"09n": {Glyph: "7", Kind: Showers, Night: true},
	"10d": {Glyph: "R", Kind: Rain},
	"10n": {Glyph: "8", Kind: Rain, Night: true},
	"11d": {Glyph: "Z", Kind: Thunderstorm},
	"11n": {Glyph: "&", Kind: Thunderstorm, Night: true},
	"13d": {Glyph: "W", Kind: Snow},
	"13n": {Glyph: "#", Kind: Snow, Night: true},
	"50d": {Glyph: "J", Kind: Mist},
	"50n": {Glyph: "K", Kind: Mist, Night: true},
}

// IconCodes lists every code in the table.
func IconCodes() []string {
	out := make([]string, 0, len(icons))
	for code := range icons {
		out = append(out, code)
	}
	return out
}

func LookupIcon(code string) (Icon, error) {
	ic, ok := icons[code]
	if !ok {
		return Icon{}, fmt.Errorf("%w %q", ErrUnknownIcon, code)
	}
	ic.Code = code
	return ic, nil
}
