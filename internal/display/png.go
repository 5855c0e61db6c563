package display

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"sync"
)

// PNGPanel stands in for the e-paper panel off-device. Every frame replaces
// frame.png in Dir.
type PNGPanel struct {
	Dir    string
	bounds image.Rectangle

	mu     sync.Mutex
	frames int
}

func NewPNGPanel(dir string, bounds image.Rectangle) (*PNGPanel, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return &PNGPanel{Dir: dir, bounds: bounds}, nil
}

func (p *PNGPanel) String() string { return "png:" + p.Dir }

func (p *PNGPanel) Halt() error { return nil }

func (p *PNGPanel) ColorModel() color.Model { return color.GrayModel }

func (p *PNGPanel) Bounds() image.Rectangle { return p.bounds }

func (p *PNGPanel) Path() string { return filepath.Join(p.Dir, "frame.png") }

// Frames returns how many frames were written.
func (p *PNGPanel) Frames() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.frames
}

func (p *PNGPanel) Draw(dstRect image.Rectangle, src image.Image, sp image.Point) error {
	frame := image.NewGray(p.bounds)
	draw.Draw(frame, dstRect.Intersect(p.bounds), src, sp, draw.Src)

	p.mu.Lock()
	defer p.mu.Unlock()

	tmp, err := os.CreateTemp(p.Dir, "frame-*.png")
	if err != nil {
		return fmt.Errorf("create frame: %w", err)
	}
	if err := png.Encode(tmp, frame); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("encode frame: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close frame: %w", err)
	}
	if err := os.Rename(tmp.Name(), p.Path()); err != nil {
		return fmt.Errorf("publish frame: %w", err)
	}
	p.frames++
	return nil
}
