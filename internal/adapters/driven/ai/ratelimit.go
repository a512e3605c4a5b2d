package ai

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/atlus-labs/atlus/internal/core/domain"
	"github.com/atlus-labs/atlus/internal/core/ports/driven"
	"github.com/atlus-labs/atlus/internal/logger"
)

// Ensure the decorators implement the interfaces.
var (
	_ driven.LLMService       = (*RateLimitedLLM)(nil)
	_ driven.EmbeddingService = (*RateLimitedEmbedder)(nil)
)

// RateLimit configures request pacing for capability calls.
type RateLimit struct {
	// RequestsPerSecond is the sustained rate. Zero disables pacing.
	RequestsPerSecond float64

	// BurstSize is the maximum burst size.
	BurstSize int

	// MaxRetries is how often a rate-limited call is retried.
	MaxRetries int

	// Backoff is the pause after a 429 before the first retry; it doubles
	// on every further retry.
	Backoff time.Duration
}

// DefaultRateLimit is conservative enough for free-tier API keys.
var DefaultRateLimit = RateLimit{
	RequestsPerSecond: 5,
	BurstSize:         10,
	MaxRetries:        3,
	Backoff:           2 * time.Second,
}

// RateLimiter is a token bucket with a shared backoff window that opens
// after a rate-limit response.
type RateLimiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	retryAt time.Time
	cfg     RateLimit
}

// NewRateLimiter creates a rate limiter. Missing fields take their
// DefaultRateLimit values.
func NewRateLimiter(cfg RateLimit) *RateLimiter {
	if cfg.BurstSize <= 0 {
		cfg.BurstSize = DefaultRateLimit.BurstSize
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = DefaultRateLimit.Backoff
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	return &RateLimiter{
		limiter: rate.NewLimiter(limit, cfg.BurstSize),
		cfg:     cfg,
	}
}

// Wait blocks until a request can be made, honouring any open backoff.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	retryAt := r.retryAt
	r.mu.Unlock()

	if d := time.Until(retryAt); d > 0 {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	return r.limiter.Wait(ctx)
}

// RecordRateLimitError opens a backoff window of d.
func (r *RateLimiter) RecordRateLimitError(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if until := time.Now().Add(d); until.After(r.retryAt) {
		r.retryAt = until
	}
}

// Do runs call under the limiter, retrying on domain.ErrRateLimited with
// exponential backoff.
func (r *RateLimiter) Do(ctx context.Context, op string, call func(context.Context) error) error {
	backoff := r.cfg.Backoff
	for attempt := 0; ; attempt++ {
		if err := r.Wait(ctx); err != nil {
			return err
		}

		err := call(ctx)
		if err == nil || !errors.Is(err, domain.ErrRateLimited) || attempt >= r.cfg.MaxRetries {
			return err
		}

		logger.Debug("rate limited, backing off", "op", op, "attempt", attempt+1, "backoff", backoff)
		r.RecordRateLimitError(backoff)
		backoff *= 2
	}
}

// RateLimitedLLM paces calls to an LLM service.
type RateLimitedLLM struct {
	driven.LLMService
	limiter *RateLimiter
}

// NewRateLimitedLLM wraps svc.
func NewRateLimitedLLM(svc driven.LLMService, cfg RateLimit) *RateLimitedLLM {
	return &RateLimitedLLM{LLMService: svc, limiter: NewRateLimiter(cfg)}
}

// Chat forwards to the wrapped service under the limiter.
func (l *RateLimitedLLM) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	var reply string
	err := l.limiter.Do(ctx, "chat", func(ctx context.Context) error {
		var err error
		reply, err = l.LLMService.Chat(ctx, messages, opts)
		return err
	})
	return reply, err
}

// RateLimitedEmbedder paces calls to an embedding service.
type RateLimitedEmbedder struct {
	driven.EmbeddingService
	limiter *RateLimiter
}

// NewRateLimitedEmbedder wraps svc.
func NewRateLimitedEmbedder(svc driven.EmbeddingService, cfg RateLimit) *RateLimitedEmbedder {
	return &RateLimitedEmbedder{EmbeddingService: svc, limiter: NewRateLimiter(cfg)}
}

// Embed forwards to the wrapped service under the limiter.
func (e *RateLimitedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	var vec []float32
	err := e.limiter.Do(ctx, "embed", func(ctx context.Context) error {
		var err error
		vec, err = e.EmbeddingService.Embed(ctx, text)
		return err
	})
	return vec, err
}

// EmbedBatch forwards to the wrapped service under the limiter.
func (e *RateLimitedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	var vecs [][]float32
	err := e.limiter.Do(ctx, "embed_batch", func(ctx context.Context) error {
		var err error
		vecs, err = e.EmbeddingService.EmbedBatch(ctx, texts)
		return err
	})
	return vecs, err
}
