// Package display draws the kiosk screens and pushes frames to a panel.
package display

import (
	"image"
	"image/color"
	"strings"

	"tinygo.org/x/tinyfont"
)

var (
	Black = color.RGBA{A: 0xff}
	White = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
)

// Anchor is the horizontal alignment of text relative to its x coordinate.
type Anchor int

const (
	Left Anchor = iota
	Center
	Right
)

// Canvas is a monochrome frame in landscape orientation. It implements
// drivers.Displayer so tinyfont can draw on it directly.
type Canvas struct {
	img *image.Gray
}

func NewCanvas(width, height int) *Canvas {
	c := &Canvas{img: image.NewGray(image.Rect(0, 0, width, height))}
	c.Clear()
	return c
}

func (c *Canvas) Image() *image.Gray { return c.img }

func (c *Canvas) Width() int  { return c.img.Rect.Dx() }
func (c *Canvas) Height() int { return c.img.Rect.Dy() }

func (c *Canvas) Size() (x, y int16) {
	return int16(c.Width()), int16(c.Height())
}

func (c *Canvas) SetPixel(x, y int16, col color.RGBA) {
	c.img.SetGray(int(x), int(y), mono(col))
}

// Display is a no-op: frames reach the panel through Renderer.
func (c *Canvas) Display() error { return nil }

// Clear paints the whole canvas white.
func (c *Canvas) Clear() {
	for i := range c.img.Pix {
		c.img.Pix[i] = 0xff
	}
}

func mono(col color.RGBA) color.Gray {
	g := color.GrayModel.Convert(col).(color.Gray)
	if g.Y < 0x80 {
		return color.Gray{Y: 0}
	}
	return color.Gray{Y: 0xff}
}

// Ink counts black pixels.
func (c *Canvas) Ink() int {
	n := 0
	for _, p := range c.img.Pix {
		if p < 0x80 {
			n++
		}
	}
	return n
}

func (c *Canvas) FillRect(r image.Rectangle, col color.RGBA) {
	r = r.Intersect(c.img.Rect)
	g := mono(col)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			c.img.SetGray(x, y, g)
		}
	}
}

func (c *Canvas) HLine(x0, x1, y int, col color.RGBA) {
	c.FillRect(image.Rect(x0, y, x1+1, y+1), col)
}

func (c *Canvas) VLine(x, y0, y1 int, col color.RGBA) {
	c.FillRect(image.Rect(x, y0, x+1, y1+1), col)
}

// Disc fills a circle; a positive hole leaves a ring of that inner radius.
func (c *Canvas) Disc(cx, cy, r, hole int, col color.RGBA) {
	g := mono(col)
	for y := -r; y <= r; y++ {
		for x := -r; x <= r; x++ {
			d := x*x + y*y
			if d > r*r || (hole > 0 && d < hole*hole) {
				continue
			}
			c.img.SetGray(cx+x, cy+y, g)
		}
	}
}

// Line draws a one pixel Bresenham line.
func (c *Canvas) Line(x0, y0, x1, y1 int, col color.RGBA) {
	g := mono(col)
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		c.img.SetGray(x0, y0, g)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Bitmap fonts only cover ASCII; the degree sign is drawn as a small ring.
const degree = '°'

func panelText(s string) string {
	return strings.NewReplacer("–", "-", "—", "-", "’", "'").Replace(s)
}

// TextWidth returns the advance width of s in pixels.
func TextWidth(f tinyfont.Fonter, s string) int {
	s = panelText(s)
	w := 0
	for _, part := range strings.Split(s, string(degree)) {
		_, outbox := tinyfont.LineWidth(f, part)
		w += int(outbox)
	}
	return w + strings.Count(s, string(degree))*degreeWidth(f)
}

func degreeWidth(f tinyfont.Fonter) int {
	return max(4, int(f.GetYAdvance())/4)
}

// LineHeight is the font's line advance.
func LineHeight(f tinyfont.Fonter) int {
	return int(f.GetYAdvance())
}

// Text draws s with its baseline at y, aligned to x by anchor.
func (c *Canvas) Text(f tinyfont.Fonter, x, y int, anchor Anchor, s string, col color.RGBA) {
	s = panelText(s)
	switch anchor {
	case Center:
		x -= TextWidth(f, s) / 2
	case Right:
		x -= TextWidth(f, s)
	}

	parts := strings.Split(s, string(degree))
	dw := degreeWidth(f)
	for i, part := range parts {
		if part != "" {
			tinyfont.WriteLine(c, f, int16(x), int16(y), part, col)
			_, outbox := tinyfont.LineWidth(f, part)
			x += int(outbox)
		}
		if i < len(parts)-1 {
			r := dw/2 - 1
			top := y - int(f.GetYAdvance())*2/3
			c.Disc(x+r, top+r, r, r-1, col)
			x += dw
		}
	}
}

// Wrap splits s into lines no wider than width, breaking on spaces.
func Wrap(f tinyfont.Fonter, s string, width int) []string {
	var out []string
	for _, para := range strings.Split(s, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}
		line := words[0]
		for _, w := range words[1:] {
			if TextWidth(f, line+" "+w) > width {
				out = append(out, line)
				line = w
				continue
			}
			line += " " + w
		}
		out = append(out, line)
	}
	return out
}
