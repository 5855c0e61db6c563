// Package hardware opens the kiosk's pins and panel through periph.io.
package hardware

import (
	"errors"
	"fmt"
	"image"
	"log/slog"

	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/waveshare2in13v2"
	"periph.io/x/host/v3"

	kdisplay "cloudpico-kiosk/internal/display"
)

const (
	PanelEPD = "epd"
	PanelPNG = "png"
)

type Options struct {
	Panel   string
	PNGDir  string
	SPIPort string // "" selects the first registered port

	// Empty pin names leave the device out.
	UpPin     string
	DownPin   string
	BuzzerPin string
}

type Devices struct {
	Panel  display.Drawer
	Up     gpio.PinIO
	Down   gpio.PinIO
	Buzzer gpio.PinIO

	port spi.PortCloser
}

func Open(opts Options, logger *slog.Logger) (*Devices, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("host.Init: %w", err)
	}

	d := &Devices{}
	var err error
	if d.Up, err = pin(opts.UpPin); err != nil {
		return nil, err
	}
	if d.Down, err = pin(opts.DownPin); err != nil {
		return nil, err
	}
	if d.Buzzer, err = pin(opts.BuzzerPin); err != nil {
		return nil, err
	}

	switch opts.Panel {
	case PanelPNG:
		panel, err := kdisplay.NewPNGPanel(opts.PNGDir, image.Rect(0, 0, kdisplay.Width, kdisplay.Height))
		if err != nil {
			return nil, err
		}
		d.Panel = panel
	case PanelEPD, "":
		port, err := spireg.Open(opts.SPIPort)
		if err != nil {
			return nil, fmt.Errorf("spireg.Open: %w", err)
		}
		dev, err := waveshare2in13v2.NewHat(port, &waveshare2in13v2.EPD2in13v2)
		if err != nil {
			_ = port.Close()
			return nil, fmt.Errorf("waveshare2in13v2.NewHat: %w", err)
		}
		d.port = port
		d.Panel = dev
	default:
		return nil, fmt.Errorf("unknown panel %q", opts.Panel)
	}

	logger.Info("hardware ready",
		"panel", d.Panel.String(),
		"bounds", d.Panel.Bounds().Size().String(),
		"up", pinName(d.Up),
		"down", pinName(d.Down),
		"buzzer", pinName(d.Buzzer),
	)
	return d, nil
}

// Close halts the panel and releases the SPI port.
func (d *Devices) Close() error {
	var errs []error
	if d.Panel != nil {
		errs = append(errs, d.Panel.Halt())
	}
	if d.Buzzer != nil {
		errs = append(errs, d.Buzzer.Out(gpio.Low))
	}
	if d.port != nil {
		errs = append(errs, d.port.Close())
	}
	return errors.Join(errs...)
}

func pin(name string) (gpio.PinIO, error) {
	if name == "" {
		return nil, nil
	}
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("gpio pin %q not found", name)
	}
	return p, nil
}

func pinName(p gpio.PinIO) string {
	if p == nil {
		return "disabled"
	}
	return p.Name()
}
