package display

import (
	"image/color"

	"cloudpico-kiosk/internal/weather"
)

// DrawIcon draws a pictogram for ic centred on (cx, cy) inside a box of
// roughly 2r x 2r.
func (c *Canvas) DrawIcon(ic weather.Icon, cx, cy, r int) {
	switch ic.Kind {
	case weather.Clear:
		c.celestial(ic.Night, cx, cy, r*2/3)
	case weather.FewClouds:
		c.celestial(ic.Night, cx+r/3, cy-r/3, r/2)
		c.cloud(cx-r/6, cy+r/6, r*3/4, false)
	case weather.Clouds:
		c.cloud(cx, cy, r, false)
	case weather.Overcast:
		c.cloud(cx+r/4, cy-r/4, r*2/3, false)
		c.cloud(cx-r/8, cy+r/8, r, true)
	case weather.Showers, weather.Rain:
		c.cloud(cx, cy-r/3, r*3/4, ic.Kind == weather.Rain)
		step := r / 3
		for i := -1; i <= 1; i++ {
			x := cx + i*step
			c.Line(x, cy+r/4, x-step/2, cy+r*3/4, Black)
		}
	case weather.Thunderstorm:
		c.cloud(cx, cy-r/3, r*3/4, true)
		c.Line(cx+r/6, cy+r/6, cx-r/8, cy+r/2, Black)
		c.Line(cx-r/8, cy+r/2, cx+r/8, cy+r/2, Black)
		c.Line(cx+r/8, cy+r/2, cx-r/6, cy+r, Black)
	case weather.Snow:
		c.cloud(cx, cy-r/3, r*3/4, false)
		step := r / 3
		for i := -1; i <= 1; i++ {
			c.Disc(cx+i*step, cy+r/2+abs(i)*step/2, 2, 0, Black)
		}
	case weather.Mist:
		step := r / 3
		for i := -1; i <= 1; i++ {
			off := (i + 1) % 2 * step / 2
			c.HLine(cx-r+off, cx+r-step/2+off, cy+i*step, Black)
		}
	}
}

func (c *Canvas) celestial(night bool, cx, cy, r int) {
	if night {
		c.Disc(cx, cy, r, 0, Black)
		c.Disc(cx+r/2, cy-r/3, r*3/4, 0, White)
		return
	}
	c.Disc(cx, cy, r*2/3, r*2/3-2, Black)
	for _, d := range [][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}, {1, 1}, {1, -1}, {-1, 1}, {-1, -1}} {
		in, out := r*5/6, r+r/4
		if d[0] != 0 && d[1] != 0 {
			in, out = in*7/10, out*7/10
		}
		c.Line(cx+d[0]*in, cy+d[1]*in, cx+d[0]*out, cy+d[1]*out, Black)
	}
}

// cloud draws three overlapping lobes on a flat base, outlined or filled.
func (c *Canvas) cloud(cx, cy, r int, filled bool) {
	lobes := [][3]int{
		{cx - r/2, cy + r/6, r / 3},
		{cx, cy - r/6, r / 2},
		{cx + r/2, cy + r/6, r / 3},
	}
	for _, l := range lobes {
		c.Disc(l[0], l[1], l[2], 0, Black)
	}
	c.FillRectXY(cx-r/2, cy+r/6, cx+r/2, cy+r/2, Black)
	if filled {
		return
	}
	for _, l := range lobes {
		c.Disc(l[0], l[1], l[2]-2, 0, White)
	}
	c.FillRectXY(cx-r/2, cy+r/6, cx+r/2, cy+r/2-2, White)
}

// FillRectXY fills the inclusive box (x0, y0)-(x1, y1).
func (c *Canvas) FillRectXY(x0, y0, x1, y1 int, col color.RGBA) {
	for y := y0; y <= y1; y++ {
		c.HLine(x0, x1, y, col)
	}
}

// AlertMark draws a warning triangle with its top-right corner at (x, y).
func (c *Canvas) AlertMark(x, y, size int) {
	left := x - size
	apex := left + size/2
	for row := 0; row < size; row++ {
		half := row / 2
		c.HLine(apex-half, apex+half, y+row, Black)
	}
	c.VLine(apex, y+size/3, y+size*2/3, White)
	c.VLine(apex, y+size*5/6-1, y+size*5/6, White)
}
