package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRedis implements the two commands the idempotency store issues.
type fakeRedis struct {
	redis.Cmdable
	keys map[string]time.Duration
	err  error
}

func (f *fakeRedis) Exists(ctx context.Context, keys ...string) *redis.IntCmd {
	if f.err != nil {
		return redis.NewIntResult(0, f.err)
	}
	var n int64
	for _, k := range keys {
		if _, ok := f.keys[k]; ok {
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func (f *fakeRedis) Set(ctx context.Context, key string, _ any, ttl time.Duration) *redis.StatusCmd {
	if f.err != nil {
		return redis.NewStatusResult("", f.err)
	}
	f.keys[key] = ttl
	return redis.NewStatusResult("OK", nil)
}

func TestRedisIdempotencyStore(t *testing.T) {
	fake := &fakeRedis{keys: map[string]time.Duration{}}
	store := NewRedisIdempotencyStore(fake, "easyshops:events", time.Hour)
	ctx := context.Background()

	seen, err := store.Contains(ctx, "evt-1")
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, store.Add(ctx, "evt-1"))
	assert.Equal(t, time.Hour, fake.keys["easyshops:events:evt-1"])

	seen, err = store.Contains(ctx, "evt-1")
	require.NoError(t, err)
	assert.True(t, seen)
}

func TestRedisIdempotencyStore_Error(t *testing.T) {
	store := NewRedisIdempotencyStore(&fakeRedis{err: errors.New("connection refused")}, "p", time.Hour)

	_, err := store.Contains(context.Background(), "evt-1")
	assert.ErrorContains(t, err, "connection refused")
	assert.Error(t, store.Add(context.Background(), "evt-1"))
}

func TestMemoryIdempotencyStore_Expiry(t *testing.T) {
	store := NewMemoryIdempotencyStore(10 * time.Millisecond)
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, "evt-1"))
	seen, _ := store.Contains(ctx, "evt-1")
	assert.True(t, seen)

	time.Sleep(20 * time.Millisecond)
	seen, _ = store.Contains(ctx, "evt-1")
	assert.False(t, seen)
}

func TestIdempotentHandler_SkipsDuplicates(t *testing.T) {
	store := NewMemoryIdempotencyStore(time.Minute)
	calls := 0
	h := IdempotentHandler(store, "t", "g", func(context.Context, *Event) error {
		calls++
		return nil
	}, testLogger())

	event := &Event{EventID: "evt-1"}
	require.NoError(t, h(context.Background(), event))
	require.NoError(t, h(context.Background(), event))
	assert.Equal(t, 1, calls)
}

func TestIdempotentHandler_FailureNotRecorded(t *testing.T) {
	store := NewMemoryIdempotencyStore(time.Minute)
	h := IdempotentHandler(store, "t", "g", func(context.Context, *Event) error {
		return errHandler
	}, testLogger())

	require.ErrorIs(t, h(context.Background(), &Event{EventID: "evt-2"}), errHandler)
	seen, _ := store.Contains(context.Background(), "evt-2")
	assert.False(t, seen)
}

func TestIdempotentHandler_StoreErrorStillProcesses(t *testing.T) {
	store := NewRedisIdempotencyStore(&fakeRedis{err: errors.New("down")}, "p", time.Hour)
	calls := 0
	h := IdempotentHandler(store, "t", "g", func(context.Context, *Event) error {
		calls++
		return nil
	}, testLogger())

	require.NoError(t, h(context.Background(), &Event{EventID: "evt-3"}))
	assert.Equal(t, 1, calls)
}
