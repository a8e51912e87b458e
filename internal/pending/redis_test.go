package pending

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Runs against a live server when MEMO_TEST_REDIS_ADDR is set.
func newTestRedis(t *testing.T) *Redis {
	t.Helper()
	addr := os.Getenv("MEMO_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("MEMO_TEST_REDIS_ADDR not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis unavailable: %v", err)
	}
	t.Cleanup(func() { rdb.Close() })
	return NewRedis(rdb, time.Minute, zap.NewNop())
}

func TestRedisPutTake(t *testing.T) {
	ctx := context.Background()
	r := newTestRedis(t)

	token, err := r.Put(ctx, sample(5))
	if err != nil {
		t.Fatal(err)
	}
	got, err := r.Take(ctx, 5, token)
	if err != nil {
		t.Fatal(err)
	}
	if !got.StartTime.Equal(sample(5).StartTime) || *got.Keyword != "会议" {
		t.Errorf("Take = %+v", got)
	}
	if _, err := r.Take(ctx, 5, token); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Take err = %v", err)
	}
}

func TestRedisForeignUser(t *testing.T) {
	ctx := context.Background()
	r := newTestRedis(t)

	token, _ := r.Put(ctx, sample(5))
	if _, err := r.Take(ctx, 6, token); !errors.Is(err, ErrNotFound) {
		t.Errorf("foreign Take err = %v", err)
	}
}
