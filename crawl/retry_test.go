package crawl_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fwojciec/sitechat"
	"github.com/fwojciec/sitechat/crawl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchWithRetry(t *testing.T) {
	t.Parallel()

	delays := []time.Duration{time.Millisecond, time.Millisecond}

	t.Run("returns content on first success", func(t *testing.T) {
		t.Parallel()

		calls := 0
		html, err := crawl.FetchWithRetry(context.Background(), "https://x.com/", func(context.Context, string) (string, error) {
			calls++
			return "<html></html>", nil
		}, nil, delays)

		require.NoError(t, err)
		assert.Equal(t, "<html></html>", html)
		assert.Equal(t, 1, calls)
	})

	t.Run("retries transient failures", func(t *testing.T) {
		t.Parallel()

		calls := 0
		var attempts []int
		html, err := crawl.FetchWithRetry(context.Background(), "https://x.com/", func(context.Context, string) (string, error) {
			calls++
			if calls < 3 {
				return "", errors.New("connection reset")
			}
			return "ok", nil
		}, func(_ string, attempt int, _ error) {
			attempts = append(attempts, attempt)
		}, delays)

		require.NoError(t, err)
		assert.Equal(t, "ok", html)
		assert.Equal(t, []int{2, 3}, attempts)
	})

	t.Run("returns last error when attempts run out", func(t *testing.T) {
		t.Parallel()

		calls := 0
		_, err := crawl.FetchWithRetry(context.Background(), "https://x.com/", func(context.Context, string) (string, error) {
			calls++
			return "", errors.New("connection reset")
		}, nil, delays)

		require.Error(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("does not retry missing pages", func(t *testing.T) {
		t.Parallel()

		calls := 0
		_, err := crawl.FetchWithRetry(context.Background(), "https://x.com/gone", func(context.Context, string) (string, error) {
			calls++
			return "", sitechat.Errorf(sitechat.ENOTFOUND, "HTTP 404")
		}, nil, delays)

		assert.Equal(t, sitechat.ENOTFOUND, sitechat.ErrorCode(err))
		assert.Equal(t, 1, calls)
	})

	t.Run("stops when the context is canceled", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		_, err := crawl.FetchWithRetry(ctx, "https://x.com/", func(context.Context, string) (string, error) {
			cancel()
			return "", errors.New("connection reset")
		}, nil, []time.Duration{time.Hour})

		assert.ErrorIs(t, err, context.Canceled)
	})
}
