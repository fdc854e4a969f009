//go:build integration

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/redis"
)

func setupRedisContainer(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := redis.Run(ctx, "redis:7-alpine")
	if err != nil {
		t.Fatalf("failed to start redis container: %v", err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	endpoint, err := container.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("failed to get redis endpoint: %v", err)
	}
	addr := endpoint
	if len(endpoint) > 8 && endpoint[:8] == "redis://" {
		addr = endpoint[8:]
	}
	return addr
}

func TestRedisCachePutGet(t *testing.T) {
	addr := setupRedisContainer(t)

	c, err := NewRedisCache(addr, "", 0, time.Minute, nil)
	if err != nil {
		t.Fatalf("new redis cache: %v", err)
	}
	defer c.Close()

	ctx := context.Background()
	if err := c.Put(ctx, "acf:series-1", Entry{Values: []float64{1, 0.5, 0.2}}); err != nil {
		t.Fatalf("put: %v", err)
	}
	entry, ok, err := c.Get(ctx, "acf:series-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok || len(entry.Values) != 3 {
		t.Fatalf("unexpected entry: %+v ok=%v", entry, ok)
	}
}

func TestRedisCacheMissReturnsFalse(t *testing.T) {
	addr := setupRedisContainer(t)

	c, err := NewRedisCache(addr, "", 0, time.Minute, nil)
	if err != nil {
		t.Fatalf("new redis cache: %v", err)
	}
	defer c.Close()

	_, ok, err := c.Get(context.Background(), "missing")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ok {
		t.Fatalf("expected cache miss")
	}
}

func TestNewRedisCacheRejectsEmptyAddr(t *testing.T) {
	if _, err := NewRedisCache("", "", 0, time.Minute, nil); err == nil {
		t.Fatalf("expected error for empty address")
	}
}
