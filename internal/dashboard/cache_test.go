package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	mini := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute)
}

func TestVersionInitialises(t *testing.T) {
	cache := newTestCache(t)
	ver, err := cache.Version(context.Background())
	if err != nil {
		t.Fatalf("version error: %v", err)
	}
	if ver != 1 {
		t.Fatalf("expected initial version 1, got %d", ver)
	}
}

func TestFetchJSONLoadsOnce(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()
	loads := 0
	loader := func(context.Context) (any, error) {
		loads++
		return map[string]float64{"cash": 120}, nil
	}

	var first, second map[string]float64
	if err := cache.FetchJSON(ctx, "dashboard:test", &first, loader); err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	if err := cache.FetchJSON(ctx, "dashboard:test", &second, loader); err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	if loads != 1 {
		t.Fatalf("expected single load, got %d", loads)
	}
	if second["cash"] != 120 {
		t.Fatalf("cached value lost: %v", second)
	}
}

func TestBumpRotatesVersionedKeys(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	before, err := cache.VersionedKey(ctx, "dashboard", "snapshot")
	if err != nil {
		t.Fatalf("key error: %v", err)
	}
	if err := cache.Bump(ctx); err != nil {
		t.Fatalf("bump error: %v", err)
	}
	after, err := cache.VersionedKey(ctx, "dashboard", "snapshot")
	if err != nil {
		t.Fatalf("key error: %v", err)
	}
	if before == after {
		t.Fatalf("bump must change the key, got %q twice", before)
	}
}
