package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderGemini is Google Gemini cloud API.
	AIProviderGemini AIProvider = "gemini"

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
	case AIProviderGemini, AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderGemini || p == AIProviderOpenAI || p == AIProviderAnthropic
}

// SupportsEmbeddings returns true if the provider offers an embedding API.
func (p AIProvider) SupportsEmbeddings() bool {
	return p != AIProviderAnthropic
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderGemini:
		return "Google Gemini (cloud)"
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

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama or compatible APIs).
	BaseURL string

	// APIKey is the API key for cloud providers.
	APIKey string
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() || !e.Provider.SupportsEmbeddings() {
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

	// BaseURL is the API endpoint (for Ollama or compatible APIs).
	BaseURL string

	// APIKey is the API key for cloud providers.
	APIKey string
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// VectorBackend selects the vector store implementation.
type VectorBackend string

// Available vector backends.
const (
	// VectorBackendMemory is an in-process store.
	VectorBackendMemory VectorBackend = "memory"

	// VectorBackendPinecone is a hosted Pinecone index.
	VectorBackendPinecone VectorBackend = "pinecone"
)

// IsValid returns true if the backend is recognised.
func (b VectorBackend) IsValid() bool {
	return b == VectorBackendMemory || b == VectorBackendPinecone
}

// VectorSettings holds vector store configuration.
type VectorSettings struct {
	// Backend selects the store.
	Backend VectorBackend

	// Namespace is the shared partition all documents are written to.
	Namespace string

	// Host is the Pinecone index host URL.
	Host string

	// APIKey is the Pinecone API key.
	APIKey string

	// BatchSize is the number of records per upsert call.
	BatchSize int
}

// CachePolicyKind names a cache eviction policy.
type CachePolicyKind string

// Available cache policies.
const (
	// CachePolicyUnbounded keeps every entry for the process lifetime.
	CachePolicyUnbounded CachePolicyKind = "unbounded"

	// CachePolicyLRU evicts the least recently used entry past Capacity
	// and, when TTL is set, entries older than TTL.
	CachePolicyLRU CachePolicyKind = "lru"
)

// CachePolicy describes how a cache bounds its entries.
type CachePolicy struct {
	// Kind is the eviction policy.
	Kind CachePolicyKind

	// Capacity is the maximum entry count for LRU.
	Capacity int

	// TTL expires entries after this long. Zero means no expiry.
	TTL time.Duration
}

// IsValid returns true if the policy can be built.
func (p CachePolicy) IsValid() bool {
	switch p.Kind {
	case CachePolicyUnbounded:
		return true
	case CachePolicyLRU:
		return p.Capacity > 0 && p.TTL >= 0
	default:
		return false
	}
}

// CacheSettings holds policies for the document cache and session store.
type CacheSettings struct {
	// Documents bounds the content-level cache.
	Documents CachePolicy

	// Sessions bounds the session store.
	Sessions CachePolicy
}

// RetrievalSettings controls how segments are gathered for synthesis.
type RetrievalSettings struct {
	// QueryLimit is the number of matches requested from the index per query.
	QueryLimit int

	// PerQuestion is how many top matches each question contributes.
	PerQuestion int

	// MaxContext caps the union of segments passed to the model.
	MaxContext int

	// QueryExpansion adds key-term variations of each question.
	QueryExpansion bool

	// EmbeddingCacheSize is the number of query embeddings kept in memory.
	// Zero disables the cache.
	EmbeddingCacheSize int
}

// SynthesisSettings controls the batch model operations.
type SynthesisSettings struct {
	// CallDelay is the minimum gap between throttled model calls.
	CallDelay time.Duration

	// SummaryGroupSize is the number of chunks summarised per map call.
	SummaryGroupSize int

	// RiskPrefixChars caps the document prefix sent per risk category.
	RiskPrefixChars int
}

// DownloadSettings controls URL fetching.
type DownloadSettings struct {
	// Timeout bounds a single download.
	Timeout time.Duration

	// UserAgent is sent with every request.
	UserAgent string
}

// ServerSettings holds HTTP server configuration.
type ServerSettings struct {
	// Addr is the listen address.
	Addr string

	// BearerToken authenticates API requests. Empty disables auth.
	BearerToken string
}

// Settings holds all application settings.
type Settings struct {
	Embedding EmbeddingSettings
	LLM       LLMSettings
	Vector    VectorSettings
	Cache     CacheSettings
	Retrieval RetrievalSettings
	Synthesis SynthesisSettings
	Download  DownloadSettings
	Server    ServerSettings
	Pipeline  PipelineConfig
}

// DefaultUserAgent is sent when downloading documents.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) " +
	"Chrome/91.0.4472.124 Safari/537.36"

// DefaultSettings returns settings with sensible defaults.
// API keys are left empty and must come from config or environment.
func DefaultSettings() Settings {
	return Settings{
		Embedding: EmbeddingSettings{
			Provider: AIProviderGemini,
			Model:    DefaultEmbeddingModels()[AIProviderGemini],
		},
		LLM: LLMSettings{
			Provider: AIProviderGemini,
			Model:    DefaultLLMModels()[AIProviderGemini],
		},
		Vector: VectorSettings{
			Backend:   VectorBackendMemory,
			Namespace: "insurance_docs",
			BatchSize: 20,
		},
		Cache: CacheSettings{
			Documents: CachePolicy{Kind: CachePolicyUnbounded},
			Sessions:  CachePolicy{Kind: CachePolicyUnbounded},
		},
		Retrieval: RetrievalSettings{
			QueryLimit:         15,
			PerQuestion:        5,
			MaxContext:         20,
			EmbeddingCacheSize: 256,
		},
		Synthesis: SynthesisSettings{
			CallDelay:        2 * time.Second,
			SummaryGroupSize: 5,
			RiskPrefixChars:  30000,
		},
		Download: DownloadSettings{
			Timeout:   60 * time.Second,
			UserAgent: DefaultUserAgent,
		},
		Server: ServerSettings{
			Addr: ":8000",
		},
		Pipeline: DefaultPipelineConfig(),
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderGemini: "text-embedding-004",
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderGemini:    "gemini-2.0-flash",
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		"text-embedding-004":     768,
		"nomic-embed-text":       768,
		"mxbai-embed-large":      1024,
		"all-minilm":             384,
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
	}
}

// PipelineConfig holds post-processor pipeline configuration.
// Uses generic map-based config so new processors need no struct changes.
type PipelineConfig struct {
	// Processors is the ordered list of processor names to run.
	Processors []string

	// ProcessorConfigs holds per-processor configuration as generic maps.
	ProcessorConfigs map[string]map[string]any
}

// GetProcessorConfig returns config for a specific processor, or nil if not set.
func (c *PipelineConfig) GetProcessorConfig(name string) map[string]any {
	if c.ProcessorConfigs == nil {
		return nil
	}
	return c.ProcessorConfigs[name]
}

// DefaultPipelineConfig returns the default chunking pipeline.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Processors: []string{"chunker", "whitespace"},
		ProcessorConfigs: map[string]map[string]any{
			"chunker": {
				"chunk_size": 1000,
				"overlap":    200,
			},
		},
	}
}
