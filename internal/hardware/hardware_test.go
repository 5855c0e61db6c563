package hardware

import (
	"io"
	"log/slog"
	"testing"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/gpio/gpiotest"

	kdisplay "cloudpico-kiosk/internal/display"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOpen_HeadlessWithoutPins(t *testing.T) {
	d, err := Open(Options{Panel: PanelPNG, PNGDir: t.TempDir()}, quietLogger())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = d.Close() }()

	if d.Up != nil || d.Down != nil || d.Buzzer != nil {
		t.Error("empty pin names should leave devices nil")
	}
	if _, ok := d.Panel.(*kdisplay.PNGPanel); !ok {
		t.Fatalf("panel = %T, want *display.PNGPanel", d.Panel)
	}
	if b := d.Panel.Bounds(); b.Dx() != kdisplay.Width || b.Dy() != kdisplay.Height {
		t.Errorf("bounds = %v", b)
	}
}

func TestOpen_RegisteredPins(t *testing.T) {
	up := &gpiotest.Pin{N: "KIOSK_TEST_UP", Num: 906}
	buzzer := &gpiotest.Pin{N: "KIOSK_TEST_BUZZER", Num: 914}
	for _, p := range []gpio.PinIO{up, buzzer} {
		if err := gpioreg.Register(p); err != nil {
			t.Fatalf("register %s: %v", p, err)
		}
	}
	t.Cleanup(func() {
		_ = gpioreg.Unregister(up.N)
		_ = gpioreg.Unregister(buzzer.N)
	})

	d, err := Open(Options{Panel: PanelPNG, PNGDir: t.TempDir(), UpPin: up.N, BuzzerPin: buzzer.N}, quietLogger())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if d.Up.Name() != up.N || d.Buzzer.Name() != buzzer.N || d.Down != nil {
		t.Errorf("pins = %v %v %v", d.Up, d.Down, d.Buzzer)
	}

	if err := d.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if buzzer.L != gpio.Low {
		t.Error("Close left the buzzer pin high")
	}
}

func TestOpen_Errors(t *testing.T) {
	if _, err := Open(Options{Panel: PanelPNG, PNGDir: t.TempDir(), DownPin: "NO_SUCH_PIN"}, quietLogger()); err == nil {
		t.Error("unknown pin accepted")
	}
	if _, err := Open(Options{Panel: "hdmi"}, quietLogger()); err == nil {
		t.Error("unknown panel accepted")
	}
}
