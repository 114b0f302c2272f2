package resilience

import (
	"context"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoVal_SucceedsFirstTry(t *testing.T) {
	calls := 0
	v, err := DoVal(context.Background(), RetryConfig{MaxAttempts: 3, Delay: time.Millisecond}, func(ctx context.Context) (int, error) {
		calls++
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, 1, calls)
}

func TestDoVal_RetriesTransientThenSucceeds(t *testing.T) {
	calls := 0
	v, err := DoVal(context.Background(), RetryConfig{
		MaxAttempts: 3,
		Delay:       time.Millisecond,
		ShouldRetry: func(error) bool { return true },
	}, func(ctx context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", eris.New("boom")
		}
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
	assert.Equal(t, 3, calls)
}

func TestDoVal_ExhaustsAttempts(t *testing.T) {
	calls := 0
	_, err := DoVal(context.Background(), RetryConfig{
		MaxAttempts: 3,
		Delay:       time.Millisecond,
		ShouldRetry: func(error) bool { return true },
	}, func(ctx context.Context) (int, error) {
		calls++
		return 0, eris.New("always fails")
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoVal_NonTransientNotRetried(t *testing.T) {
	calls := 0
	_, err := DoVal(context.Background(), RetryConfig{MaxAttempts: 5, Delay: time.Millisecond}, func(ctx context.Context) (int, error) {
		calls++
		return 0, eris.New("bad config")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoVal_ContextCancelStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	_, err := DoVal(ctx, RetryConfig{
		MaxAttempts: 10,
		Delay:       50 * time.Millisecond,
		ShouldRetry: func(error) bool { return true },
	}, func(ctx context.Context) (int, error) {
		calls++
		cancel()
		return 0, eris.New("boom")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_WrapsDoVal(t *testing.T) {
	calls := 0
	err := Do(context.Background(), RetryConfig{
		MaxAttempts: 2,
		Delay:       time.Millisecond,
		ShouldRetry: func(error) bool { return true },
		OnRetry:     RetryLogger("test", "op"),
	}, func(ctx context.Context) error {
		calls++
		if calls == 1 {
			return eris.New("transient")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestIsTransient(t *testing.T) {
	assert.False(t, IsTransient(nil))
	assert.True(t, IsTransient(NewTransientError(eris.New("503"), 503)))
	assert.True(t, IsTransient(eris.New("read tcp: i/o timeout")))
	assert.True(t, IsTransient(eris.New("api error: Overloaded")))
	assert.False(t, IsTransient(eris.New("invalid api key")))
}

func TestIsTransientHTTPStatus(t *testing.T) {
	for _, code := range []int{408, 429, 500, 502, 503, 504} {
		assert.True(t, IsTransientHTTPStatus(code), "code %d", code)
	}
	for _, code := range []int{200, 301, 400, 401, 403, 404} {
		assert.False(t, IsTransientHTTPStatus(code), "code %d", code)
	}
}
