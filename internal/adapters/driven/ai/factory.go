// Package ai selects the capability strategies (live or degraded) for
// embedding, text generation and vector indexing at construction time.
package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	ollamaembed "github.com/atlus-labs/atlus/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/atlus-labs/atlus/internal/adapters/driven/embedding/openai"
	"github.com/atlus-labs/atlus/internal/adapters/driven/embedding/zero"
	anthropicllm "github.com/atlus-labs/atlus/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/atlus-labs/atlus/internal/adapters/driven/llm/ollama"
	openaillm "github.com/atlus-labs/atlus/internal/adapters/driven/llm/openai"
	"github.com/atlus-labs/atlus/internal/adapters/driven/vector/memory"
	"github.com/atlus-labs/atlus/internal/adapters/driven/vector/nop"
	"github.com/atlus-labs/atlus/internal/adapters/driven/vector/qdrant"
	"github.com/atlus-labs/atlus/internal/core/domain"
	"github.com/atlus-labs/atlus/internal/core/ports/driven"
	llmgen "github.com/atlus-labs/atlus/internal/generators/llm"
	"github.com/atlus-labs/atlus/internal/generators/local"
	"github.com/atlus-labs/atlus/internal/logger"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// Settings is everything needed to pick the capability strategies.
type Settings struct {
	Embedding domain.EmbeddingSettings
	LLM       domain.LLMSettings
	Vector    domain.VectorSettings
	RateLimit RateLimit

	// PromptStore, when set, is handed to the LLM generator.
	PromptStore driven.PromptStore

	// SkipPing disables connectivity checks of live services.
	SkipPing bool
}

// Strategies holds one implementation per capability. Degraded
// implementations are used for every capability that is not configured
// or failed validation.
type Strategies struct {
	Embedder  driven.EmbeddingService
	LLM       driven.LLMService // nil in local mode
	Generator driven.NodeGenerator
	Vector    driven.VectorIndex

	// VectorName is the vector backend in use, "none" when disabled.
	VectorName string

	// Warnings lists non-fatal issues that caused a fallback.
	Warnings []string
}

// Degraded reports whether any capability runs its fallback.
func (s *Strategies) Degraded() bool {
	return s.LLM == nil || s.Embedder.ModelName() == "zero" || isNop(s.Vector)
}

// Close releases all resources held by the strategies.
func (s *Strategies) Close() error {
	var errs []error
	if s.Embedder != nil {
		errs = append(errs, s.Embedder.Close())
	}
	if s.LLM != nil {
		errs = append(errs, s.LLM.Close())
	}
	if s.Vector != nil {
		errs = append(errs, s.Vector.Close())
	}
	return errors.Join(errs...)
}

// Build constructs the strategies. It never fails: any configured
// capability that cannot be created or reached is replaced by its
// degraded implementation and a warning is recorded.
func Build(ctx context.Context, settings Settings) *Strategies {
	s := &Strategies{}

	embedder, err := createAndValidateEmbedding(ctx, &settings.Embedding, settings.SkipPing)
	switch {
	case err != nil:
		s.Warnings = append(s.Warnings, err.Error())
		fallthrough
	case embedder == nil:
		s.Embedder = zero.New(settings.Embedding.Dimensions)
	default:
		s.Embedder = NewRateLimitedEmbedder(embedder, settings.RateLimit)
	}

	llm, err := createAndValidateLLM(ctx, &settings.LLM, settings.SkipPing)
	if err != nil {
		s.Warnings = append(s.Warnings, err.Error())
	}
	if llm != nil {
		s.LLM = NewRateLimitedLLM(llm, settings.RateLimit)
		gen := llmgen.New(s.LLM, llmgen.WithTemperature(settings.LLM.Temperature))
		if settings.PromptStore != nil {
			gen.SetPromptStore(settings.PromptStore)
		}
		s.Generator = gen
	} else {
		s.Generator = local.New()
	}

	vector, err := CreateVectorIndex(&settings.Vector, s.Embedder.Dimensions())
	if err != nil {
		s.Warnings = append(s.Warnings, err.Error())
		vector = nop.New()
	}
	s.Vector = vector
	s.VectorName = "none"
	if !isNop(vector) {
		s.VectorName = string(settings.Vector.Provider)
	}

	for _, w := range s.Warnings {
		logger.Warn("capability degraded", "reason", w)
	}
	logger.Debug("capabilities ready",
		"generator", s.Generator.Mode(),
		"embedder", s.Embedder.ModelName(),
		"vector", s.VectorName)
	return s
}

// ValidateEmbeddingConfig creates an embedding service and pings it.
func ValidateEmbeddingConfig(ctx context.Context, settings *domain.EmbeddingSettings) error {
	svc, err := createAndValidateEmbedding(ctx, settings, false)
	if svc != nil {
		_ = svc.Close()
	}
	return err
}

// ValidateLLMConfig creates an LLM service and pings it.
func ValidateLLMConfig(ctx context.Context, settings *domain.LLMSettings) error {
	svc, err := createAndValidateLLM(ctx, settings, false)
	if svc != nil {
		_ = svc.Close()
	}
	return err
}

func createAndValidateEmbedding(ctx context.Context, settings *domain.EmbeddingSettings, skipPing bool) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	if svc == nil || skipPing {
		return svc, nil
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := svc.Ping(pingCtx); err != nil {
		_ = svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w)", domain.ErrEmbeddingUnavailable, err)
	}
	return svc, nil
}

func createAndValidateLLM(ctx context.Context, settings *domain.LLMSettings, skipPing bool) (driven.LLMService, error) {
	svc, err := CreateLLMService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
	}
	if svc == nil || skipPing {
		return svc, nil
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := svc.Ping(pingCtx); err != nil {
		_ = svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w)", domain.ErrLLMUnavailable, err)
	}
	return svc, nil
}

// CreateEmbeddingService creates the live embedding service for the
// settings. Returns nil if no provider is configured.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil {
		return nil, nil
	}
	if settings.Provider == domain.AIProviderAnthropic {
		return nil, fmt.Errorf("anthropic does not support embeddings, use ollama or openai")
	}
	if !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: settings.Dimensions,
		}), nil

	case domain.AIProviderOpenAI:
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: settings.Dimensions,
		})

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
}

// CreateLLMService creates the live LLM service for the settings.
// Returns nil if no provider is configured.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamallm.NewLLMService(ollamallm.LLMConfig{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}), nil

	case domain.AIProviderOpenAI:
		return openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderAnthropic:
		return anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
}

// CreateVectorIndex creates the vector index for the settings. An
// unconfigured backend yields the no-op index.
func CreateVectorIndex(settings *domain.VectorSettings, dimensions int) (driven.VectorIndex, error) {
	if settings == nil || !settings.IsConfigured() {
		return nop.New(), nil
	}

	switch settings.Provider {
	case domain.VectorProviderMemory:
		return memory.New(), nil

	case domain.VectorProviderQdrant:
		idx, err := qdrant.New(qdrant.Config{
			URL:        settings.URL,
			APIKey:     settings.APIKey,
			Collection: settings.Collection,
			Dimensions: dimensions,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrVectorIndexUnavailable, err)
		}
		return idx, nil

	default:
		return nil, fmt.Errorf("%w: unsupported vector provider: %s", domain.ErrVectorIndexUnavailable, settings.Provider)
	}
}

func isNop(v driven.VectorIndex) bool {
	_, ok := v.(*nop.Index)
	return ok
}
