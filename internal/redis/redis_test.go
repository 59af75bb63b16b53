package redis

import (
	"context"
	"errors"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"maumcare/internal/config"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	host, portStr, err := net.SplitHostPort(mr.Addr())
	if err != nil {
		t.Fatalf("split host port: %v", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		t.Fatalf("atoi port: %v", err)
	}
	client, err := NewRedisClient(config.RedisConfig{Host: host, Port: port})
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client, mr
}

func TestSetGetDel(t *testing.T) {
	client, mr := newTestClient(t)
	ctx := context.Background()

	if err := client.Set(ctx, "k", "v", time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := client.Get(ctx, "k")
	if err != nil || got != "v" {
		t.Fatalf("get: %q %v", got, err)
	}
	ttl, err := client.TTL(ctx, "k")
	if err != nil || ttl <= 0 {
		t.Fatalf("ttl: %s %v", ttl, err)
	}

	mr.FastForward(2 * time.Minute)
	if _, err := client.Get(ctx, "k"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected cache miss after expiry, got %v", err)
	}

	if err := client.Set(ctx, "k2", "v", 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := client.Del(ctx, "k2"); err != nil {
		t.Fatalf("del: %v", err)
	}
	if _, err := client.Get(ctx, "k2"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected cache miss after delete, got %v", err)
	}
}

func TestIncr(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()
	for want := int64(1); want <= 2; want++ {
		got, err := client.Incr(ctx, "counter")
		if err != nil || got != want {
			t.Fatalf("incr: %d %v, want %d", got, err, want)
		}
	}
	if got, _ := client.Get(ctx, "counter"); got != "2" {
		t.Fatalf("expected stored counter 2, got %q", got)
	}
}

func TestPubSub(t *testing.T) {
	client, _ := newTestClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan string, 1)
	if err := client.Subscribe(ctx, "events", func(payload string) { got <- payload }); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if err := client.Publish(ctx, "events", "hello"); err != nil {
		t.Fatalf("publish: %v", err)
	}
	select {
	case msg := <-got:
		if msg != "hello" {
			t.Fatalf("unexpected payload %q", msg)
		}
	case <-time.After(time.Second):
		t.Fatalf("did not receive pubsub message")
	}
}

func TestNilClient(t *testing.T) {
	var c *Client
	if err := c.Set(context.Background(), "k", "v", 0); err == nil {
		t.Fatalf("expected error on nil client")
	}
	if err := c.Close(); err != nil {
		t.Fatalf("close nil client: %v", err)
	}
}

func TestUnreachable(t *testing.T) {
	if _, err := NewRedisClient(config.RedisConfig{Host: "127.0.0.1", Port: 1}); err == nil {
		t.Fatalf("expected ping failure")
	}
}
