package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strconv"

	"github.com/segmentio/kafka-go"
)

type KafkaOptions struct {
	Brokers           []string
	Partitions        int
	ReplicationFactor int
}

// KafkaSink writes one message per channel to the group topic, keyed by
// channel so a channel always lands on the same partition.
type KafkaSink struct {
	writer *kafka.Writer
	opts   KafkaOptions
}

type kafkaValue struct {
	Group      string `json:"group"`
	Channel    string `json:"channel"`
	CapturedAt int64  `json:"captured_at"`
	Value      string `json:"value"`
}

func NewKafkaSink(opts KafkaOptions) (*KafkaSink, error) {
	if len(opts.Brokers) == 0 {
		return nil, errors.New("kafka: no brokers")
	}
	if opts.Partitions <= 0 {
		opts.Partitions = 1
	}
	if opts.ReplicationFactor <= 0 {
		opts.ReplicationFactor = 1
	}
	return &KafkaSink{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(opts.Brokers...),
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
		},
		opts: opts,
	}, nil
}

func (s *KafkaSink) Name() string { return "kafka" }

// EnsureChannels creates the group topic through the cluster controller.
// Channels are message keys and need no setup.
func (s *KafkaSink) EnsureChannels(ctx context.Context, group string, _ []string) error {
	var d kafka.Dialer
	conn, err := d.DialContext(ctx, "tcp", s.opts.Brokers[0])
	if err != nil {
		return fmt.Errorf("dial broker: %w", err)
	}
	defer conn.Close()

	controller, err := conn.Controller()
	if err != nil {
		return fmt.Errorf("get controller: %w", err)
	}
	ctrl, err := d.DialContext(ctx, "tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	if err != nil {
		return fmt.Errorf("dial controller: %w", err)
	}
	defer ctrl.Close()

	err = ctrl.CreateTopics(kafka.TopicConfig{
		Topic:             group,
		NumPartitions:     s.opts.Partitions,
		ReplicationFactor: s.opts.ReplicationFactor,
	})
	if err != nil && !errors.Is(err, kafka.TopicAlreadyExists) {
		return fmt.Errorf("create topic %s: %w", group, err)
	}
	return nil
}

func (s *KafkaSink) Send(ctx context.Context, group string, sample Sample) error {
	msgs, err := kafkaMessages(group, sample)
	if err != nil {
		return err
	}
	if err := s.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write messages: %w", err)
	}
	return nil
}

func (s *KafkaSink) Close() error {
	return s.writer.Close()
}

func kafkaMessages(group string, sample Sample) ([]kafka.Message, error) {
	values := sample.Values()
	msgs := make([]kafka.Message, 0, len(values))
	for _, v := range values {
		body, err := json.Marshal(kafkaValue{
			Group:      group,
			Channel:    v.Channel,
			CapturedAt: sample.CapturedAt.UnixMilli(),
			Value:      v.Text,
		})
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, kafka.Message{
			Topic: group,
			Key:   []byte(v.Channel),
			Value: body,
			Time:  sample.CapturedAt,
		})
	}
	return msgs, nil
}
