package display

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"testing"

	"cloudpico-kiosk/internal/weather"
)

// fakePanel records the last frame it was given.
type fakePanel struct {
	bounds image.Rectangle
	last   image.Image
	draws  int
	err    error
}

func (p *fakePanel) String() string            { return "fake" }
func (p *fakePanel) Halt() error               { return nil }
func (p *fakePanel) ColorModel() color.Model   { return color.GrayModel }
func (p *fakePanel) Bounds() image.Rectangle   { return p.bounds }
func (p *fakePanel) Draw(_ image.Rectangle, src image.Image, _ image.Point) error {
	if p.err != nil {
		return p.err
	}
	p.last = src
	p.draws++
	return nil
}

func isBlack(img image.Image, x, y int) bool {
	g := color.GrayModel.Convert(img.At(x, y)).(color.Gray)
	return g.Y < 0x80
}

func TestCanvas_StartsWhite(t *testing.T) {
	c := NewCanvas(Width, Height)
	if c.Ink() != 0 {
		t.Fatalf("new canvas has %d black pixels", c.Ink())
	}
	if w, h := c.Size(); w != Width || h != Height {
		t.Fatalf("Size() = %d, %d", w, h)
	}
}

func TestCanvas_SetPixelThreshold(t *testing.T) {
	c := NewCanvas(4, 4)
	c.SetPixel(1, 1, Black)
	c.SetPixel(2, 2, color.RGBA{R: 0xc0, G: 0xc0, B: 0xc0, A: 0xff})
	c.SetPixel(9, 9, Black) // out of bounds, ignored
	if !isBlack(c.Image(), 1, 1) || isBlack(c.Image(), 2, 2) {
		t.Fatal("threshold not applied")
	}
	if c.Ink() != 1 {
		t.Fatalf("Ink() = %d, want 1", c.Ink())
	}
}

func TestCanvas_TextDrawsInk(t *testing.T) {
	c := NewCanvas(Width, Height)
	c.Text(mediumFont, 5, 30, Left, "21°C", Black)
	if c.Ink() == 0 {
		t.Fatal("text produced no ink")
	}
	if TextWidth(mediumFont, "21°C") <= TextWidth(mediumFont, "21C") {
		t.Fatal("degree sign has no width")
	}
}

func TestCanvas_TextAnchors(t *testing.T) {
	left := NewCanvas(Width, Height)
	left.Text(smallFont, 0, 20, Left, "IAQ", Black)
	right := NewCanvas(Width, Height)
	right.Text(smallFont, Width, 20, Right, "IAQ", Black)

	leftmost := func(c *Canvas) int {
		for x := 0; x < Width; x++ {
			for y := 0; y < Height; y++ {
				if isBlack(c.Image(), x, y) {
					return x
				}
			}
		}
		return -1
	}
	if l, r := leftmost(left), leftmost(right); l < 0 || r <= Width/2 {
		t.Fatalf("left anchored ink at %d, right anchored ink at %d", l, r)
	}
}

func TestWrap(t *testing.T) {
	lines := Wrap(tinyFont, "a river flood warning is in effect until further notice for the county", 80)
	if len(lines) < 2 {
		t.Fatalf("Wrap produced %d lines", len(lines))
	}
	for _, l := range lines {
		if containsSpace(l) && TextWidth(tinyFont, l) > 80 {
			t.Fatalf("line %q wider than 80px", l)
		}
	}
}

func containsSpace(s string) bool {
	for _, r := range s {
		if r == ' ' {
			return true
		}
	}
	return false
}

func TestRenderer_RotatesForPortraitPanel(t *testing.T) {
	p := &fakePanel{bounds: image.Rect(0, 0, Height, Width)}
	r := NewRenderer(p)

	err := r.Render(func(c *Canvas) error {
		c.SetPixel(0, 0, Black)
		c.SetPixel(Width-1, 10, Black)
		return nil
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	got := p.last.Bounds()
	if got.Dx() != Height || got.Dy() != Width {
		t.Fatalf("frame bounds = %v, want %dx%d", got, Height, Width)
	}
	if !isBlack(p.last, Height-1, 0) {
		t.Error("canvas (0,0) not at panel top-right")
	}
	if !isBlack(p.last, Height-1-10, Width-1) {
		t.Error("canvas (w-1,10) not rotated")
	}
}

func TestRenderer_LandscapePanelUnrotated(t *testing.T) {
	p := &fakePanel{bounds: image.Rect(0, 0, Width, Height)}
	r := NewRenderer(p)
	if err := r.Render(func(c *Canvas) error { c.SetPixel(3, 4, Black); return nil }); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !isBlack(p.last, 3, 4) {
		t.Fatal("pixel moved on landscape panel")
	}
}

func TestRenderer_DrawErrorSkipsPanel(t *testing.T) {
	p := &fakePanel{bounds: image.Rect(0, 0, Width, Height)}
	r := NewRenderer(p)
	boom := errors.New("boom")
	if err := r.Render(func(*Canvas) error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("Render error = %v, want boom", err)
	}
	if p.draws != 0 {
		t.Fatal("panel drawn after draw error")
	}
}

func TestPNGPanel(t *testing.T) {
	dir := t.TempDir()
	p, err := NewPNGPanel(dir, image.Rect(0, 0, Width, Height))
	if err != nil {
		t.Fatalf("NewPNGPanel: %v", err)
	}
	r := NewRenderer(p)
	if err := r.Render(func(c *Canvas) error {
		DrawAirQuality(c, AirQualityView{Clock: "15:04", IAQ: "Good", Humidity: "45.0%", Temperature: "21°C"})
		return nil
	}); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if p.Frames() != 1 {
		t.Fatalf("Frames() = %d", p.Frames())
	}

	f, err := os.Open(p.Path())
	if err != nil {
		t.Fatalf("open frame: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode frame: %v", err)
	}
	if img.Bounds() != image.Rect(0, 0, Width, Height) {
		t.Fatalf("frame bounds = %v", img.Bounds())
	}
}

func sampleSnapshot(t *testing.T) weather.Snapshot {
	t.Helper()
	icon := func(code string) weather.Icon {
		ic, err := weather.LookupIcon(code)
		if err != nil {
			t.Fatalf("LookupIcon(%q): %v", code, err)
		}
		return ic
	}
	return weather.Snapshot{
		Icon:        icon("10d"),
		Summary:     "Rain",
		Description: "Light rain",
		Temperature: "12°C",
		Forecast: []weather.Forecast{
			{Weekday: "Tue", TempRange: "11–19°C", Text: "Storm", Icon: icon("11d"), Pop: "29%"},
			{Weekday: "Wed", TempRange: "9–15°C", Text: "Clouds", Icon: icon("03n"), Pop: "0%"},
			{Weekday: "Thu", TempRange: "-3–2°C", Text: "Snow", Icon: icon("13d"), Pop: "100%"},
		},
	}
}

func TestScreens_DrawInk(t *testing.T) {
	snap := sampleSnapshot(t)
	alert := &weather.AlertState{Event: "Flood Warning", Description: "River levels are rising quickly along the valley. Move to higher ground and avoid driving through flooded roads."}

	tests := []struct {
		name string
		draw func(*Canvas)
	}{
		{"weather", func(c *Canvas) { DrawWeather(c, WeatherView{Locality: "Springfield", Clock: "09:41", Snapshot: snap}) }},
		{"weather with alert", func(c *Canvas) {
			DrawWeather(c, WeatherView{Locality: "Springfield", Clock: "09:41", Snapshot: snap, Alert: alert})
		}},
		{"forecast", func(c *Canvas) { DrawForecast(c, snap.Forecast) }},
		{"forecast short", func(c *Canvas) { DrawForecast(c, snap.Forecast[:1]) }},
		{"alert", func(c *Canvas) { DrawAlert(c, *alert) }},
		{"iaq", func(c *Canvas) {
			DrawAirQuality(c, AirQualityView{Clock: "09:41", IAQ: "Good", Humidity: "45.0%", Temperature: "21°C"})
		}},
		{"message", func(c *Canvas) { DrawMessage(c, "Air quality", "Waiting for the first sensor reading") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCanvas(Width, Height)
			tt.draw(c)
			if c.Ink() == 0 {
				t.Fatal("screen drew nothing")
			}
		})
	}
}

func TestDrawWeather_AlertAddsMarker(t *testing.T) {
	snap := sampleSnapshot(t)
	plain := NewCanvas(Width, Height)
	DrawWeather(plain, WeatherView{Snapshot: snap})
	marked := NewCanvas(Width, Height)
	DrawWeather(marked, WeatherView{Snapshot: snap, Alert: &weather.AlertState{Event: "Heat"}})
	if marked.Ink() <= plain.Ink() {
		t.Fatal("alert marker not drawn")
	}
}

func TestDrawIcon_AllKinds(t *testing.T) {
	for _, code := range weather.IconCodes() {
		ic, err := weather.LookupIcon(code)
		if err != nil {
			t.Fatalf("LookupIcon(%q): %v", code, err)
		}
		c := NewCanvas(60, 60)
		c.DrawIcon(ic, 30, 30, 22)
		if c.Ink() == 0 {
			t.Errorf("icon %s drew nothing", code)
		}
	}
}
