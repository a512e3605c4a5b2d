package ai

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlus-labs/atlus/internal/core/domain"
	"github.com/atlus-labs/atlus/internal/core/ports/driven"
)

type flakyLLM struct {
	failures int
	calls    int
}

func (f *flakyLLM) Chat(context.Context, []driven.ChatMessage, driven.ChatOptions) (string, error) {
	f.calls++
	if f.calls <= f.failures {
		return "", fmt.Errorf("openai: %w", domain.ErrRateLimited)
	}
	return "ok", nil
}
func (f *flakyLLM) ModelName() string          { return "flaky" }
func (f *flakyLLM) Ping(context.Context) error { return nil }
func (f *flakyLLM) Close() error               { return nil }

func fastLimit(retries int) RateLimit {
	return RateLimit{MaxRetries: retries, Backoff: time.Millisecond, BurstSize: 1}
}

func TestRateLimitedLLM_RetriesOnRateLimit(t *testing.T) {
	inner := &flakyLLM{failures: 2}
	llm := NewRateLimitedLLM(inner, fastLimit(3))

	reply, err := llm.Chat(context.Background(), nil, driven.ChatOptions{})
	require.NoError(t, err)
	assert.Equal(t, "ok", reply)
	assert.Equal(t, 3, inner.calls)
	assert.Equal(t, "flaky", llm.ModelName())
}

func TestRateLimitedLLM_GivesUp(t *testing.T) {
	inner := &flakyLLM{failures: 10}
	llm := NewRateLimitedLLM(inner, fastLimit(1))

	_, err := llm.Chat(context.Background(), nil, driven.ChatOptions{})
	assert.ErrorIs(t, err, domain.ErrRateLimited)
	assert.Equal(t, 2, inner.calls)
}

func TestRateLimiter_DoesNotRetryOtherErrors(t *testing.T) {
	limiter := NewRateLimiter(fastLimit(3))
	calls := 0
	boom := errors.New("boom")

	err := limiter.Do(context.Background(), "x", func(context.Context) error {
		calls++
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestRateLimiter_WaitHonoursContext(t *testing.T) {
	limiter := NewRateLimiter(fastLimit(0))
	limiter.RecordRateLimitError(time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, limiter.Wait(ctx), context.Canceled)
}
