package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	// Prefix namespaces every key. Default "kiosk".
	Prefix string
	// StreamMaxLen caps each channel stream (approximate trim). Default 10000.
	StreamMaxLen int64
}

// RedisSink keeps the group in a set, the channels in a per-group set, one
// stream per channel and a hash with the latest value of each channel.
type RedisSink struct {
	client *redis.Client
	prefix string
	maxLen int64
}

// DialRedis connects and pings.
func DialRedis(ctx context.Context, opts RedisOptions) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", opts.Addr, err)
	}
	return client, nil
}

func NewRedisSink(client *redis.Client, opts RedisOptions) *RedisSink {
	if opts.Prefix == "" {
		opts.Prefix = "kiosk"
	}
	if opts.StreamMaxLen <= 0 {
		opts.StreamMaxLen = 10000
	}
	return &RedisSink{client: client, prefix: opts.Prefix, maxLen: opts.StreamMaxLen}
}

func (s *RedisSink) Name() string { return "redis" }

func (s *RedisSink) groupsKey() string { return s.prefix + ":groups" }

func (s *RedisSink) channelsKey(group string) string {
	return fmt.Sprintf("%s:%s:channels", s.prefix, group)
}

func (s *RedisSink) streamKey(group, channel string) string {
	return fmt.Sprintf("%s:%s:%s", s.prefix, group, channel)
}

func (s *RedisSink) latestKey(group string) string {
	return fmt.Sprintf("%s:%s:latest", s.prefix, group)
}

func (s *RedisSink) EnsureChannels(ctx context.Context, group string, channels []string) error {
	members := make([]any, len(channels))
	for i, ch := range channels {
		members[i] = ch
	}
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SAdd(ctx, s.groupsKey(), group)
		pipe.SAdd(ctx, s.channelsKey(group), members...)
		return nil
	})
	if err != nil {
		return fmt.Errorf("register group %s: %w", group, err)
	}
	return nil
}

func (s *RedisSink) Send(ctx context.Context, group string, sample Sample) error {
	at := sample.CapturedAt.UnixMilli()
	latest := map[string]any{"captured_at": at}

	_, err := s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, v := range sample.Values() {
			pipe.XAdd(ctx, &redis.XAddArgs{
				Stream: s.streamKey(group, v.Channel),
				MaxLen: s.maxLen,
				Approx: true,
				Values: map[string]any{"captured_at": at, "value": v.Text},
			})
			latest[v.Channel] = v.Text
		}
		pipe.HSet(ctx, s.latestKey(group), latest)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis send: %w", err)
	}
	return nil
}

func (s *RedisSink) Close() error {
	return s.client.Close()
}
