package telemetry

import (
	"context"
	"fmt"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
)

// Measurement is the influx measurement every sample is written to.
const Measurement = "air_quality"

// InfluxSink maps a group to a bucket and channels to fields of one point.
type InfluxSink struct {
	client influxdb2.Client
	org    string
}

func NewInfluxSink(client influxdb2.Client, org string) *InfluxSink {
	return &InfluxSink{client: client, org: org}
}

// DialInflux creates a client and checks the server is healthy.
func DialInflux(ctx context.Context, url, token string) (influxdb2.Client, error) {
	client := influxdb2.NewClient(url, token)
	health, err := client.Health(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("influx health: %w", err)
	}
	if health.Status != "pass" {
		client.Close()
		return nil, fmt.Errorf("influx health: status %s", health.Status)
	}
	return client, nil
}

func (s *InfluxSink) Name() string { return "influx" }

// EnsureChannels creates the group bucket. Fields need no setup.
func (s *InfluxSink) EnsureChannels(ctx context.Context, group string, _ []string) error {
	if _, err := s.client.BucketsAPI().FindBucketByName(ctx, group); err == nil {
		return nil
	}
	org, err := s.client.OrganizationsAPI().FindOrganizationByName(ctx, s.org)
	if err != nil {
		return fmt.Errorf("find organization %q: %w", s.org, err)
	}
	if _, err := s.client.BucketsAPI().CreateBucketWithName(ctx, org, group); err != nil {
		return fmt.Errorf("create bucket %q: %w", group, err)
	}
	return nil
}

func (s *InfluxSink) Send(ctx context.Context, group string, sample Sample) error {
	p := influxdb2.NewPoint(Measurement, map[string]string{"group": group}, fields(sample), sample.CapturedAt)
	if err := s.client.WriteAPIBlocking(s.org, group).WritePoint(ctx, p); err != nil {
		return fmt.Errorf("write point: %w", err)
	}
	return nil
}

func (s *InfluxSink) Close() error {
	s.client.Close()
	return nil
}

// fields stores numeric readings as floats and anything else (the IAQ
// rating, for one) as a string field.
func fields(sample Sample) map[string]any {
	out := make(map[string]any, len(Channels))
	for _, v := range sample.Values() {
		if f, ok := v.Float(); ok {
			out[v.Channel] = f
		} else {
			out[v.Channel] = v.Text
		}
	}
	return out
}
