package testutil

import (
	"context"
	"os"
	"testing"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient returns a client for the server named by TEST_REDIS_URL
// (e.g. redis://localhost:6379/15), skipping the test when it is not set.
// The client is closed when the test finishes.
func NewRedisClient(t *testing.T) *redis.Client {
	t.Helper()

	raw := os.Getenv("TEST_REDIS_URL")
	if raw == "" {
		t.Skip("TEST_REDIS_URL not set; skipping integration test")
	}

	opt, err := redis.ParseURL(raw)
	if err != nil {
		t.Fatalf("testutil.NewRedisClient: parse url: %v", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		t.Fatalf("testutil.NewRedisClient: ping: %v", err)
	}

	t.Cleanup(func() { client.Close() })
	return client
}
