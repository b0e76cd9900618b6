package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider      = "embedding.provider"
	keyEmbedModel         = "embedding.model"
	keyEmbedBaseURL       = "embedding.base_url"
	keyEmbedAPIKey        = "embedding.api_key"
	keyLLMProvider        = "llm.provider"
	keyLLMModel           = "llm.model"
	keyLLMBaseURL         = "llm.base_url"
	keyLLMAPIKey          = "llm.api_key"
	keyVectorBackend      = "vector.backend"
	keyVectorNamespace    = "vector.namespace"
	keyVectorHost         = "vector.host"
	keyVectorAPIKey       = "vector.api_key"
	keyVectorBatchSize    = "vector.batch_size"
	keyRetrievalLimit     = "retrieval.query_limit"
	keyRetrievalPerQ      = "retrieval.per_question"
	keyRetrievalMax       = "retrieval.max_context"
	keyRetrievalExpansion = "retrieval.query_expansion"
	keyRetrievalEmbCache  = "retrieval.embedding_cache_size"
	keySynthDelay         = "synthesis.call_delay"
	keySynthGroup         = "synthesis.summary_group_size"
	keySynthPrefix        = "synthesis.risk_prefix_chars"
	keyDownloadTimeout    = "download.timeout"
	keyDownloadUserAgent  = "download.user_agent"
	keyServerAddr         = "server.addr"
	keyServerToken        = "server.bearer_token"
	keyPipelineProcessors = "pipeline.processors"
)

// SettingsService reads typed settings from a ConfigStore.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current application settings.
// Invalid values fall back to defaults.
func (s *SettingsService) Get() (*domain.Settings, error) {
	d := domain.DefaultSettings()

	embedProvider := s.getProvider(keyEmbedProvider, d.Embedding.Provider)
	llmProvider := s.getProvider(keyLLMProvider, d.LLM.Provider)

	settings := &domain.Settings{
		Embedding: domain.EmbeddingSettings{
			Provider: embedProvider,
			Model:    s.getString(keyEmbedModel, domain.DefaultEmbeddingModels()[embedProvider]),
			BaseURL:  s.configStore.GetString(keyEmbedBaseURL),
			APIKey:   s.configStore.GetString(keyEmbedAPIKey),
		},
		LLM: domain.LLMSettings{
			Provider: llmProvider,
			Model:    s.getString(keyLLMModel, domain.DefaultLLMModels()[llmProvider]),
			BaseURL:  s.configStore.GetString(keyLLMBaseURL),
			APIKey:   s.configStore.GetString(keyLLMAPIKey),
		},
		Vector: domain.VectorSettings{
			Backend:   s.getBackend(d.Vector.Backend),
			Namespace: s.getString(keyVectorNamespace, d.Vector.Namespace),
			Host:      s.configStore.GetString(keyVectorHost),
			APIKey:    s.configStore.GetString(keyVectorAPIKey),
			BatchSize: s.getInt(keyVectorBatchSize, d.Vector.BatchSize),
		},
		Cache: domain.CacheSettings{
			Documents: s.getCachePolicy("cache.documents.", d.Cache.Documents),
			Sessions:  s.getCachePolicy("cache.sessions.", d.Cache.Sessions),
		},
		Retrieval: domain.RetrievalSettings{
			QueryLimit:         s.getInt(keyRetrievalLimit, d.Retrieval.QueryLimit),
			PerQuestion:        s.getInt(keyRetrievalPerQ, d.Retrieval.PerQuestion),
			MaxContext:         s.getInt(keyRetrievalMax, d.Retrieval.MaxContext),
			QueryExpansion:     s.getBool(keyRetrievalExpansion, d.Retrieval.QueryExpansion),
			EmbeddingCacheSize: s.getNonNegativeInt(keyRetrievalEmbCache, d.Retrieval.EmbeddingCacheSize),
		},
		Synthesis: domain.SynthesisSettings{
			CallDelay:        s.getDuration(keySynthDelay, d.Synthesis.CallDelay),
			SummaryGroupSize: s.getInt(keySynthGroup, d.Synthesis.SummaryGroupSize),
			RiskPrefixChars:  s.getInt(keySynthPrefix, d.Synthesis.RiskPrefixChars),
		},
		Download: domain.DownloadSettings{
			Timeout:   s.getDuration(keyDownloadTimeout, d.Download.Timeout),
			UserAgent: s.getString(keyDownloadUserAgent, d.Download.UserAgent),
		},
		Server: domain.ServerSettings{
			Addr:        s.getString(keyServerAddr, d.Server.Addr),
			BearerToken: s.configStore.GetString(keyServerToken),
		},
		Pipeline: s.GetPipelineConfig(),
	}

	return settings, nil
}

// Validate checks settings are usable.
// All problems are reported together.
func (s *SettingsService) Validate(settings *domain.Settings) error {
	if settings == nil {
		return fmt.Errorf("%w: settings are nil", domain.ErrInvalidInput)
	}

	var errs []error
	if !settings.Embedding.Provider.SupportsEmbeddings() {
		errs = append(errs, fmt.Errorf("%s does not support embeddings", settings.Embedding.Provider))
	} else if !settings.Embedding.IsConfigured() {
		errs = append(errs, fmt.Errorf("embedding provider %s is not configured (API key?)", settings.Embedding.Provider))
	}
	if !settings.LLM.IsConfigured() {
		errs = append(errs, fmt.Errorf("llm provider %s is not configured (API key?)", settings.LLM.Provider))
	}
	if settings.Vector.Backend == domain.VectorBackendPinecone &&
		(settings.Vector.Host == "" || settings.Vector.APIKey == "") {
		errs = append(errs, errors.New("pinecone backend needs vector.host and vector.api_key"))
	}
	if settings.Vector.BatchSize <= 0 {
		errs = append(errs, errors.New("vector.batch_size must be positive"))
	}
	if !settings.Cache.Documents.IsValid() {
		errs = append(errs, errors.New("cache.documents policy is invalid"))
	}
	if !settings.Cache.Sessions.IsValid() {
		errs = append(errs, errors.New("cache.sessions policy is invalid"))
	}
	r := settings.Retrieval
	if r.QueryLimit <= 0 || r.PerQuestion <= 0 || r.MaxContext <= 0 {
		errs = append(errs, errors.New("retrieval limits must be positive"))
	}
	if settings.Synthesis.SummaryGroupSize <= 0 {
		errs = append(errs, errors.New("synthesis.summary_group_size must be positive"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", domain.ErrInvalidInput, errors.Join(errs...))
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.Settings {
	return domain.DefaultSettings()
}

// GetPipelineConfig returns the post-processor pipeline configuration.
// Returns default configuration if nothing is configured.
func (s *SettingsService) GetPipelineConfig() domain.PipelineConfig {
	defaults := domain.DefaultPipelineConfig()

	if processors := s.configStore.GetStringSlice(keyPipelineProcessors); len(processors) > 0 {
		defaults.Processors = processors
	}

	for _, name := range defaults.Processors {
		cfg := s.loadProcessorConfig("pipeline." + name + ".")
		if len(cfg) == 0 {
			continue
		}
		if defaults.ProcessorConfigs == nil {
			defaults.ProcessorConfigs = make(map[string]map[string]any)
		}
		existing := defaults.ProcessorConfigs[name]
		if existing == nil {
			existing = make(map[string]any)
		}
		for k, v := range cfg {
			existing[k] = v
		}
		defaults.ProcessorConfigs[name] = existing
	}

	return defaults
}

// loadProcessorConfig reads the known integer processor keys under prefix.
func (s *SettingsService) loadProcessorConfig(prefix string) map[string]any {
	cfg := make(map[string]any)
	for _, key := range []string{"chunk_size", "overlap"} {
		if _, exists := s.configStore.Get(prefix + key); exists {
			cfg[key] = s.configStore.GetInt(prefix + key)
		}
	}
	return cfg
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getNonNegativeInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	if val := s.configStore.GetInt(key); val >= 0 {
		return val
	}
	return defaultVal
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

// getDuration accepts a duration string ("2s", "1m30s") or a number of seconds.
func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	if str := s.configStore.GetString(key); str != "" {
		if d, err := time.ParseDuration(str); err == nil && d >= 0 {
			return d
		}
		return defaultVal
	}
	if _, exists := s.configStore.Get(key); exists {
		if n := s.configStore.GetInt(key); n >= 0 {
			return time.Duration(n) * time.Second
		}
	}
	return defaultVal
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	provider := domain.AIProvider(s.configStore.GetString(key))
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getBackend(defaultVal domain.VectorBackend) domain.VectorBackend {
	backend := domain.VectorBackend(s.configStore.GetString(keyVectorBackend))
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}

func (s *SettingsService) getCachePolicy(prefix string, defaultVal domain.CachePolicy) domain.CachePolicy {
	kind := domain.CachePolicyKind(s.configStore.GetString(prefix + "policy"))
	if kind == "" {
		return defaultVal
	}
	policy := domain.CachePolicy{
		Kind:     kind,
		Capacity: s.configStore.GetInt(prefix + "capacity"),
		TTL:      s.getDuration(prefix+"ttl", 0),
	}
	if !policy.IsValid() {
		return defaultVal
	}
	return policy
}
