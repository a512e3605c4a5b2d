package domain

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderNone selects the local, network-free fallback.
	AIProviderNone AIProvider = "none"

	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderNone, AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderNone:
		return "None (local fallback)"
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// VectorProvider identifies a vector index backend.
type VectorProvider string

// Available vector providers.
const (
	VectorProviderNone   VectorProvider = "none"
	VectorProviderMemory VectorProvider = "memory"
	VectorProviderQdrant VectorProvider = "qdrant"
)

// IsValid returns true if the vector provider is recognised.
func (p VectorProvider) IsValid() bool {
	switch p {
	case VectorProviderNone, VectorProviderMemory, VectorProviderQdrant:
		return true
	default:
		return false
	}
}

// AdjacencyMode selects how similarity links are stored.
type AdjacencyMode string

// Available adjacency modes.
const (
	// AdjacencyList stores links only in Node.RelatedNodeIDs.
	AdjacencyList AdjacencyMode = "list"

	// AdjacencyEdges stores links as Relationship rows and keeps
	// Node.RelatedNodeIDs in step within the same transaction.
	AdjacencyEdges AdjacencyMode = "edges"
)

// IsValid returns true if the adjacency mode is recognised.
func (m AdjacencyMode) IsValid() bool {
	return m == AdjacencyList || m == AdjacencyEdges
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint.
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// Dimensions is the vector size used by the zero-vector fallback
	// and when creating vector collections.
	Dimensions int
}

// IsConfigured returns true if a live embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() || e.Provider == AIProviderNone || e.Provider == AIProviderAnthropic {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint.
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string

	// Temperature is used for node generation.
	Temperature float64
}

// IsConfigured returns true if a live LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() || l.Provider == AIProviderNone {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// VectorSettings holds vector index configuration.
type VectorSettings struct {
	Provider VectorProvider

	// URL is the backend address, e.g. "localhost:6334" for Qdrant gRPC.
	URL string

	APIKey string

	// Collection is the single collection holding every graph's vectors.
	Collection string
}

// IsConfigured returns true if a live vector backend is set up.
func (v VectorSettings) IsConfigured() bool {
	switch v.Provider {
	case VectorProviderMemory:
		return true
	case VectorProviderQdrant:
		return v.URL != ""
	default:
		return false
	}
}

// LinkerSettings holds similarity linking policy.
type LinkerSettings struct {
	TopK      int
	Threshold float64
	Adjacency AdjacencyMode
}

// Default linking policy.
const (
	DefaultLinkTopK      = 4
	DefaultLinkThreshold = 0.78
)

// DefaultLinkerSettings returns the default linking policy.
func DefaultLinkerSettings() LinkerSettings {
	return LinkerSettings{
		TopK:      DefaultLinkTopK,
		Threshold: DefaultLinkThreshold,
		Adjacency: AdjacencyEdges,
	}
}
