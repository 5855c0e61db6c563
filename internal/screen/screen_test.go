package screen

import "testing"

func TestNext(t *testing.T) {
	tests := []struct {
		name       string
		cur        State
		ev         Event
		hasSensor  bool
		hasAlert   bool
		want       State
		wantRender bool
	}{
		{name: "up with sensor from weather", cur: Weather, ev: UpPressed, hasSensor: true, want: AirQuality, wantRender: true},
		{name: "up with sensor from forecast", cur: Forecast, ev: UpPressed, hasSensor: true, want: AirQuality, wantRender: true},
		{name: "up with sensor from alert", cur: Alert, ev: UpPressed, hasSensor: true, hasAlert: true, want: AirQuality, wantRender: true},
		{name: "up with sensor from iaq rerenders", cur: AirQuality, ev: UpPressed, hasSensor: true, want: AirQuality, wantRender: true},
		{name: "up without sensor is a no-op", cur: AirQuality, ev: UpPressed, want: AirQuality},
		{name: "up without sensor from weather", cur: Weather, ev: UpPressed, hasAlert: true, want: Weather},

		{name: "down from weather with alert", cur: Weather, ev: DownPressed, hasAlert: true, want: Alert, wantRender: true},
		{name: "down from weather with alert and sensor", cur: Weather, ev: DownPressed, hasSensor: true, hasAlert: true, want: Alert, wantRender: true},
		{name: "down from weather without alert", cur: Weather, ev: DownPressed, want: Forecast, wantRender: true},
		{name: "down from alert", cur: Alert, ev: DownPressed, want: Forecast, wantRender: true},
		{name: "down from alert with alert", cur: Alert, ev: DownPressed, hasAlert: true, want: Forecast, wantRender: true},
		{name: "down from forecast", cur: Forecast, ev: DownPressed, hasAlert: true, want: Weather, wantRender: true},
		{name: "down from iaq", cur: AirQuality, ev: DownPressed, hasSensor: true, want: Weather, wantRender: true},

		{name: "refresh weather", cur: Weather, ev: Refresh, want: Weather, wantRender: true},
		{name: "refresh forecast", cur: Forecast, ev: Refresh, want: Forecast, wantRender: true},
		{name: "refresh iaq with sensor", cur: AirQuality, ev: Refresh, hasSensor: true, want: AirQuality, wantRender: true},
		{name: "refresh iaq without sensor", cur: AirQuality, ev: Refresh, want: Weather, wantRender: true},
		{name: "refresh alert expires", cur: Alert, ev: Refresh, hasAlert: true, want: Weather, wantRender: true},
		{name: "refresh unknown state", cur: State(42), ev: Refresh, want: Weather, wantRender: true},

		{name: "none keeps state", cur: Forecast, ev: None, hasSensor: true, hasAlert: true, want: Forecast},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, render := Next(tt.cur, tt.ev, tt.hasSensor, tt.hasAlert)
			if got != tt.want {
				t.Errorf("Next(%v, %v, %v, %v) = %v, want %v", tt.cur, tt.ev, tt.hasSensor, tt.hasAlert, got, tt.want)
			}
			if render != tt.wantRender {
				t.Errorf("Next(%v, %v, %v, %v) render = %v, want %v", tt.cur, tt.ev, tt.hasSensor, tt.hasAlert, render, tt.wantRender)
			}
		})
	}
}

func TestNext_Deterministic(t *testing.T) {
	states := []State{Weather, AirQuality, Forecast, Alert}
	events := []Event{None, UpPressed, DownPressed, Refresh}
	for _, s := range states {
		for _, e := range events {
			for _, sensor := range []bool{false, true} {
				for _, alert := range []bool{false, true} {
					a, ra := Next(s, e, sensor, alert)
					b, rb := Next(s, e, sensor, alert)
					if a != b || ra != rb {
						t.Fatalf("Next(%v, %v, %v, %v) not deterministic", s, e, sensor, alert)
					}
				}
			}
		}
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want State
	}{
		{in: "weather", want: Weather},
		{in: "iaq", want: AirQuality},
		{in: " Forecast ", want: Forecast},
		{in: "ALERT", want: Alert},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}

	if _, err := Parse("radar"); err == nil {
		t.Error("Parse(\"radar\") error = nil, want non-nil")
	}
}

func TestState_StringRoundTrip(t *testing.T) {
	for _, s := range []State{Weather, AirQuality, Forecast, Alert} {
		got, err := Parse(s.String())
		if err != nil || got != s {
			t.Errorf("Parse(%q) = %v, %v; want %v", s.String(), got, err, s)
		}
	}
}

func TestMachine_Apply(t *testing.T) {
	m := NewMachine(Weather, false)

	if s, render := m.Apply(DownPressed, true); s != Alert || !render {
		t.Fatalf("Apply(down, alert) = %v, %v; want alert, true", s, render)
	}
	if s, _ := m.Apply(Refresh, true); s != Weather {
		t.Fatalf("Apply(refresh) from alert = %v, want weather", s)
	}
	if s, render := m.Apply(UpPressed, false); s != Weather || render {
		t.Fatalf("Apply(up) without sensor = %v, %v; want weather, false", s, render)
	}
	if m.Current() != Weather {
		t.Errorf("Current() = %v, want weather", m.Current())
	}
}
