// Package config loads the typed application configuration from
// ~/.atlus/config.toml, a .env file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/atlus-labs/atlus/internal/core/domain"
)

// EnvPrefix is prepended to every config key when read from the
// environment, e.g. ATLUS_LLM_PROVIDER.
const EnvPrefix = "ATLUS"

// Storage backends.
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Config is the full application configuration.
type Config struct {
	Storage   StorageConfig   `mapstructure:"storage"`
	Embedding EmbeddingConfig `mapstructure:"embedding"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Vector    VectorConfig    `mapstructure:"vector"`
	Ingest    IngestConfig    `mapstructure:"ingest"`
	Linker    LinkerConfig    `mapstructure:"linker"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Log       LogConfig       `mapstructure:"log"`
	MCP       MCPConfig       `mapstructure:"mcp"`
	Prompts   PromptsConfig   `mapstructure:"prompts"`
}

// StorageConfig selects the relational backend.
type StorageConfig struct {
	// Backend is "sqlite", "postgres" or "memory".
	Backend string `mapstructure:"backend"`

	// DataDir holds the SQLite database. Empty means ~/.atlus/data.
	DataDir string `mapstructure:"data_dir"`

	// DSN is the Postgres connection string.
	DSN string `mapstructure:"dsn"`
}

// EmbeddingConfig configures the embedding provider.
type EmbeddingConfig struct {
	Provider   string `mapstructure:"provider"`
	Model      string `mapstructure:"model"`
	BaseURL    string `mapstructure:"base_url"`
	APIKey     string `mapstructure:"api_key"`
	Dimensions int    `mapstructure:"dimensions"`
}

// LLMConfig configures the text-understanding provider.
type LLMConfig struct {
	Provider    string  `mapstructure:"provider"`
	Model       string  `mapstructure:"model"`
	BaseURL     string  `mapstructure:"base_url"`
	APIKey      string  `mapstructure:"api_key"`
	Temperature float64 `mapstructure:"temperature"`
}

// VectorConfig configures the vector index.
type VectorConfig struct {
	Provider   string `mapstructure:"provider"`
	URL        string `mapstructure:"url"`
	APIKey     string `mapstructure:"api_key"`
	Collection string `mapstructure:"collection"`
}

// IngestConfig tunes the ingestion pipeline.
type IngestConfig struct {
	ChunkSize   int           `mapstructure:"chunk_size"`
	Overlap     int           `mapstructure:"overlap"`
	Concurrency int           `mapstructure:"concurrency"`
	FileTimeout time.Duration `mapstructure:"file_timeout"`
}

// LinkerConfig is the similarity linking policy.
type LinkerConfig struct {
	TopK      int     `mapstructure:"top_k"`
	Threshold float64 `mapstructure:"threshold"`
	Adjacency string  `mapstructure:"adjacency"`
}

// RateLimitConfig bounds calls to remote AI providers.
type RateLimitConfig struct {
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
	MaxRetries        int           `mapstructure:"max_retries"`
	Backoff           time.Duration `mapstructure:"backoff"`
}

// LogConfig controls logger output.
type LogConfig struct {
	// Format is "auto", "text", "logfmt" or "json".
	Format  string `mapstructure:"format"`
	Verbose bool   `mapstructure:"verbose"`
}

// MCPConfig configures the MCP server.
type MCPConfig struct {
	// Transport is "stdio" or "http".
	Transport string `mapstructure:"transport"`
	Listen    string `mapstructure:"listen"`
}

// PromptsConfig locates user prompt overrides.
type PromptsConfig struct {
	// Dir holds *.txt prompt files. Empty means ~/.atlus/prompts.
	Dir string `mapstructure:"dir"`
}

// Dir returns the default configuration directory, ~/.atlus.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".atlus"), nil
}

// Load reads configuration. Precedence from highest to lowest:
// environment (ATLUS_*, then provider variables such as OPENAI_API_KEY),
// the config file, defaults. A .env file in the working directory is
// loaded into the environment first. configFile may be empty to use
// ~/.atlus/config.toml.
func Load(configFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	v, err := InitViper(configFile)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	cfg.applyProviderEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// InitViper creates a viper instance with defaults, the config file and
// ATLUS_ environment bindings.
func InitViper(configFile string) (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		if dir, err := Dir(); err == nil {
			v.AddConfigPath(dir)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !(configFile != "" && errors.Is(err, os.ErrNotExist)) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v, nil
}

// applyProviderEnv fills credentials from the conventional provider
// variables when the config leaves them empty.
func (c *Config) applyProviderEnv() {
	fill := func(dst *string, env string) {
		if *dst == "" {
			*dst = os.Getenv(env)
		}
	}

	switch domain.AIProvider(c.Embedding.Provider) {
	case domain.AIProviderOpenAI:
		fill(&c.Embedding.APIKey, "OPENAI_API_KEY")
	case domain.AIProviderOllama:
		fill(&c.Embedding.BaseURL, "OLLAMA_HOST")
	}
	switch domain.AIProvider(c.LLM.Provider) {
	case domain.AIProviderOpenAI:
		fill(&c.LLM.APIKey, "OPENAI_API_KEY")
	case domain.AIProviderAnthropic:
		fill(&c.LLM.APIKey, "ANTHROPIC_API_KEY")
	case domain.AIProviderOllama:
		fill(&c.LLM.BaseURL, "OLLAMA_HOST")
	}
	if domain.VectorProvider(c.Vector.Provider) == domain.VectorProviderQdrant {
		fill(&c.Vector.URL, "QDRANT_URL")
		fill(&c.Vector.APIKey, "QDRANT_API_KEY")
	}
	if c.Storage.Backend == BackendPostgres {
		fill(&c.Storage.DSN, "DATABASE_URL")
	}
}

// Validate checks enumerated values and numeric ranges.
func (c *Config) Validate() error {
	var errs []error
	switch c.Storage.Backend {
	case BackendSQLite, BackendMemory:
	case BackendPostgres:
		if c.Storage.DSN == "" {
			errs = append(errs, errors.New("storage.dsn is required for the postgres backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.backend: unknown backend %q", c.Storage.Backend))
	}
	if !domain.AIProvider(c.Embedding.Provider).IsValid() {
		errs = append(errs, fmt.Errorf("embedding.provider: unknown provider %q", c.Embedding.Provider))
	}
	if !domain.AIProvider(c.LLM.Provider).IsValid() {
		errs = append(errs, fmt.Errorf("llm.provider: unknown provider %q", c.LLM.Provider))
	}
	if !domain.VectorProvider(c.Vector.Provider).IsValid() {
		errs = append(errs, fmt.Errorf("vector.provider: unknown provider %q", c.Vector.Provider))
	}
	if !domain.AdjacencyMode(c.Linker.Adjacency).IsValid() {
		errs = append(errs, fmt.Errorf("linker.adjacency: must be %q or %q", domain.AdjacencyList, domain.AdjacencyEdges))
	}
	if c.Linker.TopK < 0 {
		errs = append(errs, errors.New("linker.top_k must not be negative"))
	}
	if c.Linker.Threshold < -1 || c.Linker.Threshold > 1 {
		errs = append(errs, errors.New("linker.threshold must be between -1 and 1"))
	}
	if c.Ingest.Concurrency < 1 {
		errs = append(errs, errors.New("ingest.concurrency must be at least 1"))
	}
	if c.Embedding.Dimensions <= 0 {
		errs = append(errs, errors.New("embedding.dimensions must be positive"))
	}
	return errors.Join(errs...)
}

// EmbeddingSettings converts the embedding section to domain settings.
func (c *Config) EmbeddingSettings() domain.EmbeddingSettings {
	return domain.EmbeddingSettings{
		Provider:   domain.AIProvider(c.Embedding.Provider),
		Model:      c.Embedding.Model,
		BaseURL:    c.Embedding.BaseURL,
		APIKey:     c.Embedding.APIKey,
		Dimensions: c.Embedding.Dimensions,
	}
}

// LLMSettings converts the llm section to domain settings.
func (c *Config) LLMSettings() domain.LLMSettings {
	return domain.LLMSettings{
		Provider:    domain.AIProvider(c.LLM.Provider),
		Model:       c.LLM.Model,
		BaseURL:     c.LLM.BaseURL,
		APIKey:      c.LLM.APIKey,
		Temperature: c.LLM.Temperature,
	}
}

// VectorSettings converts the vector section to domain settings.
func (c *Config) VectorSettings() domain.VectorSettings {
	return domain.VectorSettings{
		Provider:   domain.VectorProvider(c.Vector.Provider),
		URL:        c.Vector.URL,
		APIKey:     c.Vector.APIKey,
		Collection: c.Vector.Collection,
	}
}

// LinkerSettings converts the linker section to domain settings.
func (c *Config) LinkerSettings() domain.LinkerSettings {
	return domain.LinkerSettings{
		TopK:      c.Linker.TopK,
		Threshold: c.Linker.Threshold,
		Adjacency: domain.AdjacencyMode(c.Linker.Adjacency),
	}
}
