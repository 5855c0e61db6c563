package telemetry

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Publisher is the part of the mqtt client the sink needs.
type Publisher interface {
	Publish(topic string, retained bool, payload []byte) error
	PublishJSON(topic string, retained bool, v any) error
	Disconnect()
}

// MQTTSink publishes every channel on <prefix>/<group>/<channel> and the whole
// sample as JSON on <prefix>/<group>/sample. The channel list is kept as a
// retained message on <prefix>/<group>/channels.
type MQTTSink struct {
	pub    Publisher
	prefix string
}

func NewMQTTSink(pub Publisher, prefix string) *MQTTSink {
	return &MQTTSink{pub: pub, prefix: strings.Trim(prefix, "/")}
}

type channelsMessage struct {
	Group    string   `json:"group"`
	Channels []string `json:"channels"`
}

type sampleMessage struct {
	Group       string `json:"group"`
	CapturedAt  int64  `json:"captured_at"`
	Temperature string `json:"temperature"`
	Humidity    string `json:"humidity"`
	Pressure    string `json:"pressure"`
	IAQ         string `json:"iaq"`
}

func (s *MQTTSink) Name() string { return "mqtt" }

func (s *MQTTSink) Topic(group, leaf string) string {
	if s.prefix == "" {
		return group + "/" + leaf
	}
	return s.prefix + "/" + group + "/" + leaf
}

func (s *MQTTSink) EnsureChannels(_ context.Context, group string, channels []string) error {
	return s.pub.PublishJSON(s.Topic(group, "channels"), true, channelsMessage{Group: group, Channels: channels})
}

func (s *MQTTSink) Send(ctx context.Context, group string, sample Sample) error {
	for _, v := range sample.Values() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.pub.Publish(s.Topic(group, v.Channel), false, []byte(v.Text)); err != nil {
			return fmt.Errorf("channel %s: %w", v.Channel, err)
		}
	}
	return s.pub.PublishJSON(s.Topic(group, "sample"), false, sampleMessage{
		Group:       group,
		CapturedAt:  sample.CapturedAt.Truncate(time.Second).Unix(),
		Temperature: sample.Temperature,
		Humidity:    sample.Humidity,
		Pressure:    sample.Pressure,
		IAQ:         sample.IAQ,
	})
}

func (s *MQTTSink) Close() error {
	s.pub.Disconnect()
	return nil
}
