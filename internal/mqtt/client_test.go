package mqtt

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"testing"
	"time"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// closedPort returns a local port nothing listens on.
func closedPort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	port := l.Addr().(*net.TCPAddr).Port
	_ = l.Close()
	return port
}

func TestPublish_NotConnected(t *testing.T) {
	c := NewClient(Options{Broker: "127.0.0.1", Port: closedPort(t), ClientID: "test"}, quietLogger())
	if c.IsConnected() {
		t.Fatal("new client reports connected")
	}
	if err := c.Publish("kiosk/iaq_stats/iaq", false, []byte("Good")); err == nil {
		t.Fatal("Publish on disconnected client succeeded")
	}
}

func TestConnect_HonoursContext(t *testing.T) {
	c := NewClient(Options{Broker: "127.0.0.1", Port: closedPort(t), ClientID: "test"}, quietLogger())
	defer c.Disconnect()

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	err := c.Connect(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Connect error = %v, want deadline exceeded", err)
	}
}

func TestDisconnect_Idempotent(t *testing.T) {
	c := NewClient(Options{Broker: "127.0.0.1", Port: closedPort(t), ClientID: "test"}, quietLogger())
	c.Disconnect()
	c.Disconnect()

	if err := c.Connect(context.Background()); !errors.Is(err, ErrStopped) {
		t.Fatalf("Connect after Disconnect = %v, want ErrStopped", err)
	}
}

func TestPublishJSON_MarshalError(t *testing.T) {
	c := NewClient(Options{Broker: "127.0.0.1", Port: closedPort(t)}, quietLogger())
	if err := c.PublishJSON("t", false, make(chan int)); err == nil {
		t.Fatal("PublishJSON accepted an unmarshalable value")
	}
}
