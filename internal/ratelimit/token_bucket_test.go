package ratelimit

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newBucket(t *testing.T, capacity int, refill float64) (*TokenBucket, *time.Time) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	bucket := NewTokenBucket(client, capacity, refill)
	bucket.now = func() time.Time { return clock }
	return bucket, &clock
}

func TestTokenBucket(t *testing.T) {
	ctx := context.Background()
	bucket, _ := newBucket(t, 2, 1)

	for i := 0; i < 2; i++ {
		allowed, err := bucket.Allow(ctx, "10.0.0.1")
		if err != nil || !allowed {
			t.Fatalf("request %d: expected allowed got allowed=%v err=%v", i+1, allowed, err)
		}
	}
	if allowed, _ := bucket.Allow(ctx, "10.0.0.1"); allowed {
		t.Fatalf("expected third request to be rejected")
	}
	if allowed, _ := bucket.Allow(ctx, "10.0.0.2"); !allowed {
		t.Fatalf("expected separate key to have its own bucket")
	}
}

func TestTokenBucketRefill(t *testing.T) {
	ctx := context.Background()
	bucket, clock := newBucket(t, 1, 0.5)

	if allowed, _ := bucket.Allow(ctx, "ip"); !allowed {
		t.Fatalf("expected first request allowed")
	}
	if allowed, _ := bucket.Allow(ctx, "ip"); allowed {
		t.Fatalf("expected empty bucket to reject")
	}

	*clock = clock.Add(2 * time.Second)
	if allowed, _ := bucket.Allow(ctx, "ip"); !allowed {
		t.Fatalf("expected a token after refill")
	}
}
