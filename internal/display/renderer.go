package display

import (
	"fmt"
	"image"

	"periph.io/x/conn/v3/display"
)

// Canvas size in landscape orientation.
const (
	Width  = 250
	Height = 122
)

// Renderer owns the panel. Callers must hold the render gate around Render.
type Renderer struct {
	panel  display.Drawer
	width  int
	height int
}

func NewRenderer(panel display.Drawer) *Renderer {
	return &Renderer{panel: panel, width: Width, height: Height}
}

func (r *Renderer) Panel() display.Drawer { return r.panel }

// Render hands draw a blank canvas, then pushes the result to the panel. A
// portrait panel receives the frame rotated a quarter turn clockwise.
func (r *Renderer) Render(draw func(c *Canvas) error) error {
	c := NewCanvas(r.width, r.height)
	if err := draw(c); err != nil {
		return fmt.Errorf("draw: %w", err)
	}

	var frame image.Image = c.Image()
	b := r.panel.Bounds()
	if b.Dx() < b.Dy() {
		frame = rotateCW(c.Image())
	}
	if err := r.panel.Draw(b, frame, image.Point{}); err != nil {
		return fmt.Errorf("panel %s: %w", r.panel, err)
	}
	return nil
}

// rotateCW maps canvas (x, y) to (h-1-y, x).
func rotateCW(src *image.Gray) *image.Gray {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	dst := image.NewGray(image.Rect(0, 0, h, w))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dst.SetGray(h-1-y, x, src.GrayAt(x, y))
		}
	}
	return dst
}
