package config

import (
	"time"

	"github.com/spf13/viper"

	"github.com/atlus-labs/atlus/internal/core/domain"
)

// Pipeline defaults.
const (
	DefaultChunkSize   = 2000
	DefaultOverlap     = 100
	DefaultDimensions  = 1536
	DefaultCollection  = "atlus_nodes"
	DefaultTemperature = 0.3
	DefaultFileTimeout = 5 * time.Minute
	DefaultMCPListen   = "localhost:8765"
)

// NewDefaultConfig returns the configuration used when nothing is set.
// Every AI capability starts in its local fallback.
func NewDefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{Backend: BackendSQLite},
		Embedding: EmbeddingConfig{
			Provider:   string(domain.AIProviderNone),
			Dimensions: DefaultDimensions,
		},
		LLM: LLMConfig{
			Provider:    string(domain.AIProviderNone),
			Temperature: DefaultTemperature,
		},
		Vector: VectorConfig{
			Provider:   string(domain.VectorProviderNone),
			Collection: DefaultCollection,
		},
		Ingest: IngestConfig{
			ChunkSize:   DefaultChunkSize,
			Overlap:     DefaultOverlap,
			Concurrency: 1,
			FileTimeout: DefaultFileTimeout,
		},
		Linker: LinkerConfig{
			TopK:      domain.DefaultLinkTopK,
			Threshold: domain.DefaultLinkThreshold,
			Adjacency: string(domain.AdjacencyEdges),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 5,
			Burst:             10,
			MaxRetries:        3,
			Backoff:           2 * time.Second,
		},
		Log: LogConfig{Format: "auto"},
		MCP: MCPConfig{Transport: "stdio", Listen: DefaultMCPListen},
	}
}

// setDefaults registers NewDefaultConfig in viper using dotted keys so
// every key is visible to AutomaticEnv.
func setDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("storage.backend", d.Storage.Backend)
	v.SetDefault("storage.data_dir", d.Storage.DataDir)
	v.SetDefault("storage.dsn", d.Storage.DSN)

	v.SetDefault("embedding.provider", d.Embedding.Provider)
	v.SetDefault("embedding.model", d.Embedding.Model)
	v.SetDefault("embedding.base_url", d.Embedding.BaseURL)
	v.SetDefault("embedding.api_key", d.Embedding.APIKey)
	v.SetDefault("embedding.dimensions", d.Embedding.Dimensions)

	v.SetDefault("llm.provider", d.LLM.Provider)
	v.SetDefault("llm.model", d.LLM.Model)
	v.SetDefault("llm.base_url", d.LLM.BaseURL)
	v.SetDefault("llm.api_key", d.LLM.APIKey)
	v.SetDefault("llm.temperature", d.LLM.Temperature)

	v.SetDefault("vector.provider", d.Vector.Provider)
	v.SetDefault("vector.url", d.Vector.URL)
	v.SetDefault("vector.api_key", d.Vector.APIKey)
	v.SetDefault("vector.collection", d.Vector.Collection)

	v.SetDefault("ingest.chunk_size", d.Ingest.ChunkSize)
	v.SetDefault("ingest.overlap", d.Ingest.Overlap)
	v.SetDefault("ingest.concurrency", d.Ingest.Concurrency)
	v.SetDefault("ingest.file_timeout", d.Ingest.FileTimeout)

	v.SetDefault("linker.top_k", d.Linker.TopK)
	v.SetDefault("linker.threshold", d.Linker.Threshold)
	v.SetDefault("linker.adjacency", d.Linker.Adjacency)

	v.SetDefault("ratelimit.requests_per_second", d.RateLimit.RequestsPerSecond)
	v.SetDefault("ratelimit.burst", d.RateLimit.Burst)
	v.SetDefault("ratelimit.max_retries", d.RateLimit.MaxRetries)
	v.SetDefault("ratelimit.backoff", d.RateLimit.Backoff)

	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.verbose", d.Log.Verbose)

	v.SetDefault("mcp.transport", d.MCP.Transport)
	v.SetDefault("mcp.listen", d.MCP.Listen)

	v.SetDefault("prompts.dir", d.Prompts.Dir)
}

// Keys lists every supported config key in file order.
func Keys() []string {
	return []string{
		"storage.backend", "storage.data_dir", "storage.dsn",
		"embedding.provider", "embedding.model", "embedding.base_url", "embedding.api_key", "embedding.dimensions",
		"llm.provider", "llm.model", "llm.base_url", "llm.api_key", "llm.temperature",
		"vector.provider", "vector.url", "vector.api_key", "vector.collection",
		"ingest.chunk_size", "ingest.overlap", "ingest.concurrency", "ingest.file_timeout",
		"linker.top_k", "linker.threshold", "linker.adjacency",
		"ratelimit.requests_per_second", "ratelimit.burst", "ratelimit.max_retries", "ratelimit.backoff",
		"log.format", "log.verbose",
		"mcp.transport", "mcp.listen",
		"prompts.dir",
	}
}

// IsKnownKey reports whether key is a supported config key.
func IsKnownKey(key string) bool {
	for _, k := range Keys() {
		if k == key {
			return true
		}
	}
	return false
}
