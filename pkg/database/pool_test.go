package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackoff_ExponentialWithJitter(t *testing.T) {
	for attempt := 0; attempt < startupAttempts; attempt++ {
		base := retryBaseWait << attempt
		lo := time.Duration(float64(base) * (1 - retryJitter))
		hi := time.Duration(float64(base) * (1 + retryJitter))

		for i := 0; i < 20; i++ {
			d := backoff(attempt)
			assert.GreaterOrEqual(t, d, lo)
			assert.LessOrEqual(t, d, hi)
		}
	}
}

func TestDSN(t *testing.T) {
	cfg := PostgresConfig{Host: "db", Port: 5432, User: "shop", Password: "p@ss", DBName: "easyshops", SSLMode: "disable"}
	assert.Equal(t, "postgres://shop:p%40ss@db:5432/easyshops?sslmode=disable", cfg.DSN())
}

func TestRetry_StopsOnSuccess(t *testing.T) {
	calls := 0
	err := retry(context.Background(), nil, "op", func(error) bool { return true }, func() error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetry_NonRetryableReturnsImmediately(t *testing.T) {
	calls := 0
	boom := errors.New("syntax error")
	err := retry(context.Background(), nil, "op", func(error) bool { return false }, func() error {
		calls++
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestRetry_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := retry(ctx, nil, "connect", func(error) bool { return true }, func() error {
		return errors.New("connection refused")
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Contains(t, err.Error(), "connect: canceled during retry")
}
