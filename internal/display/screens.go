package display

import (
	"strings"

	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/freesans"
	"tinygo.org/x/tinyfont/proggy"

	"cloudpico-kiosk/internal/weather"
)

var (
	tinyFont   tinyfont.Fonter = &proggy.TinySZ8pt7b
	smallFont  tinyfont.Fonter = &freesans.Bold9pt7b
	mediumFont tinyfont.Fonter = &freesans.Regular12pt7b
	boldFont   tinyfont.Fonter = &freesans.Bold12pt7b
	largeFont  tinyfont.Fonter = &freesans.Bold18pt7b
)

const margin = 5

type WeatherView struct {
	Locality string
	Clock    string
	Snapshot weather.Snapshot
	Alert    *weather.AlertState
}

// DrawWeather lays out the current conditions screen.
func DrawWeather(c *Canvas, v WeatherView) {
	w, h := c.Width(), c.Height()
	s := v.Snapshot

	c.DrawIcon(s.Icon, w/2, h/2-4, 22)

	c.Text(mediumFont, margin, margin+LineHeight(mediumFont)-10, Left, v.Locality, Black)
	c.Text(mediumFont, margin, margin+2*LineHeight(mediumFont)-8, Left, v.Clock, Black)

	c.Text(boldFont, margin, h-margin-LineHeight(smallFont)-2, Left, s.Summary, Black)
	c.Text(smallFont, margin, h-margin, Left, s.Description, Black)
	c.Text(largeFont, w-margin, h-margin, Right, s.Temperature, Black)

	if v.Alert != nil {
		const mark = 18
		c.AlertMark(w-margin, 1, mark)
		y := mark + 2 + LineHeight(smallFont) - 4
		for _, word := range strings.Fields(v.Alert.Event) {
			c.Text(smallFont, w-margin, y, Right, word, Black)
			y += LineHeight(smallFont) - 4
		}
	}
}

// DrawForecast draws up to three daily columns.
func DrawForecast(c *Canvas, days []weather.Forecast) {
	w := c.Width()
	columns := []int{40, w / 2, w - 40}
	for i, day := range days {
		if i >= len(columns) {
			break
		}
		x := columns[i]
		c.Text(mediumFont, x, 20, Center, day.Weekday, Black)
		c.Text(smallFont, x, 38, Center, day.TempRange, Black)
		c.Text(boldFont, x, 58, Center, day.Text, Black)
		c.DrawIcon(day.Icon, x, 84, 16)
		if day.Icon.Wet() && day.Pop != "" {
			c.Text(tinyFont, x, 116, Center, day.Pop, Black)
		}
	}
}

// DrawAlert shows the event title and as much of the description as fits.
func DrawAlert(c *Canvas, a weather.AlertState) {
	w, h := c.Width(), c.Height()
	c.Text(boldFont, margin, 20, Left, a.Event, Black)
	c.AlertMark(w-margin, 1, 18)

	lh := LineHeight(tinyFont) + 3
	y := 28 + lh
	lines := Wrap(tinyFont, a.Description, w-2*margin)
	for i, line := range lines {
		if y+lh > h && i < len(lines)-1 {
			c.Text(tinyFont, margin, y, Left, line+" ...", Black)
			return
		}
		c.Text(tinyFont, margin, y, Left, line, Black)
		y += lh
	}
}

type AirQualityView struct {
	Clock       string
	IAQ         string
	Humidity    string
	Temperature string
}

func DrawAirQuality(c *Canvas, v AirQualityView) {
	w, h := c.Width(), c.Height()
	c.Text(smallFont, margin, h-3, Left, "Internal Air Quality Monitor", Black)
	c.Text(smallFont, w-3, 18, Right, v.Clock, Black)

	const labelY, dataY = 46, 80
	c.Text(mediumFont, 3, labelY, Left, "IAQ", Black)
	c.Text(mediumFont, w/2, labelY, Center, "RH%", Black)
	c.Text(mediumFont, w-3, labelY, Right, "TEMP", Black)

	c.Text(largeFont, 3, dataY, Left, v.IAQ, Black)
	c.Text(largeFont, w/2, dataY, Center, v.Humidity, Black)
	c.Text(largeFont, w-3, dataY, Right, v.Temperature, Black)
}

// DrawMessage fills the screen with a title and a wrapped detail line, for
// screens whose data has not arrived yet.
func DrawMessage(c *Canvas, title, detail string) {
	w := c.Width()
	c.Text(boldFont, w/2, 40, Center, title, Black)
	y := 40 + LineHeight(smallFont)
	for _, line := range Wrap(smallFont, detail, w-2*margin) {
		c.Text(smallFont, w/2, y, Center, line, Black)
		y += LineHeight(smallFont)
	}
}
