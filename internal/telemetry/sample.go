package telemetry

import (
	"strconv"
	"strings"
	"time"
)

// Channel names used by every sink. The group defaults to "iaq_stats".
const (
	ChannelTemperature = "temperature"
	ChannelHumidity    = "humidity"
	ChannelPressure    = "pressure"
	ChannelIAQ         = "iaq"
)

// Channels lists the four channels in send order.
var Channels = []string{ChannelTemperature, ChannelHumidity, ChannelPressure, ChannelIAQ}

// Sample is one throttled air-quality reading. Values are kept as the text the
// sensor printed; sinks that store numbers parse them with Value.Float.
type Sample struct {
	CapturedAt  time.Time
	Temperature string
	Humidity    string
	Pressure    string
	IAQ         string
}

type Value struct {
	Channel string
	Text    string
}

// Float parses the value, ignoring a trailing percent sign.
func (v Value) Float() (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(v.Text), "%"), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Values returns the sample as channel/value pairs in Channels order.
func (s Sample) Values() []Value {
	return []Value{
		{Channel: ChannelTemperature, Text: s.Temperature},
		{Channel: ChannelHumidity, Text: s.Humidity},
		{Channel: ChannelPressure, Text: s.Pressure},
		{Channel: ChannelIAQ, Text: s.IAQ},
	}
}
