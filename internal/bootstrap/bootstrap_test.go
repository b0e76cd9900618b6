package bootstrap

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/adapters/driven/ai"
	"github.com/custodia-labs/docqa/internal/adapters/driven/vector/chromem"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func lookupFrom(vars map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func TestLoadSettings_LocalProviders(t *testing.T) {
	path := writeConfig(t, `
[embedding]
provider = "ollama"

[llm]
provider = "ollama"
`)

	settings, err := LoadSettings(Options{ConfigPath: path, Lookup: lookupFrom(nil)})

	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOllama, settings.LLM.Provider)
	assert.Equal(t, domain.AIProviderOllama, settings.Embedding.Provider)
	assert.Equal(t, domain.VectorBackendMemory, settings.Vector.Backend)
}

func TestLoadSettings_MissingAPIKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.toml")

	_, err := LoadSettings(Options{ConfigPath: path, Lookup: lookupFrom(nil)})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLoadSettings_EnvironmentKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.toml")
	lookup := lookupFrom(map[string]string{
		"GEMINI_API_KEY":    "g-key",
		"DOCQA_SERVER_ADDR": ":9090",
	})

	settings, err := LoadSettings(Options{ConfigPath: path, Lookup: lookup})

	require.NoError(t, err)
	assert.Equal(t, "g-key", settings.LLM.APIKey)
	assert.Equal(t, "g-key", settings.Embedding.APIKey)
	assert.Equal(t, ":9090", settings.Server.Addr)
}

func TestLoadSettings_InvalidTOML(t *testing.T) {
	path := writeConfig(t, "not = [valid")

	_, err := LoadSettings(Options{ConfigPath: path, Lookup: lookupFrom(nil)})

	assert.Error(t, err)
}

// letterEmbedder embeds text as letter frequencies.
type letterEmbedder struct{}

func (letterEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	v := make([]float32, 26)
	for _, r := range strings.ToLower(text) {
		if r >= 'a' && r <= 'z' {
			v[r-'a']++
		}
	}
	v[0] += 0.01
	return v, nil
}

func (e letterEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i], _ = e.Embed(ctx, text)
	}
	return out, nil
}

func (letterEmbedder) Dimensions() int              { return 26 }
func (letterEmbedder) ModelName() string            { return "letters" }
func (letterEmbedder) Ping(_ context.Context) error { return nil }
func (letterEmbedder) Close() error                 { return nil }

// cannedLLM answers every prompt with the same text.
type cannedLLM struct {
	response string
}

func (l cannedLLM) Generate(_ context.Context, _ string, _ driven.GenerateOptions) (string, error) {
	return l.response, nil
}

func (l cannedLLM) Chat(_ context.Context, _ []driven.ChatMessage, _ driven.ChatOptions) (string, error) {
	return l.response, nil
}

func (cannedLLM) ModelName() string            { return "canned" }
func (cannedLLM) Ping(_ context.Context) error { return nil }
func (cannedLLM) Close() error                 { return nil }

type staticFetcher struct {
	text string
}

func (f staticFetcher) Fetch(_ context.Context, url string) (*domain.RawContent, error) {
	return &domain.RawContent{Source: url, MIMEType: "text/plain", Content: []byte(f.text)}, nil
}

func TestAssemble_AnswersEndToEnd(t *testing.T) {
	settings := domain.DefaultSettings()
	settings.Synthesis.CallDelay = 0
	models := &ai.InitResult{
		EmbeddingService: letterEmbedder{},
		LLMService:       cannedLLM{response: "```json\n{\"answers\": [\"Thirty days.\"]}\n```"},
		VectorStore:      chromem.New(),
	}
	fetcher := staticFetcher{text: "The grace period for premium payment is thirty days."}

	app, err := Assemble(&settings, models, fetcher)
	require.NoError(t, err)
	defer app.Close()

	answers, err := app.QA.Ask(context.Background(), "https://example.com/policy.txt",
		[]string{"What is the grace period?"})

	require.NoError(t, err)
	assert.Equal(t, []string{"Thirty days."}, answers)

	stats := app.QA.CacheStats(context.Background())
	assert.Equal(t, 1, stats.CachedDocuments)
}

func TestAssemble_InvalidPipeline(t *testing.T) {
	settings := domain.DefaultSettings()
	settings.Pipeline.Processors = []string{"missing"}
	models := &ai.InitResult{
		EmbeddingService: letterEmbedder{},
		LLMService:       cannedLLM{},
		VectorStore:      chromem.New(),
	}

	_, err := Assemble(&settings, models, staticFetcher{})

	assert.Error(t, err)
}

func TestAssemble_InvalidCachePolicy(t *testing.T) {
	settings := domain.DefaultSettings()
	settings.Cache.Sessions = domain.CachePolicy{Kind: domain.CachePolicyLRU}
	models := &ai.InitResult{
		EmbeddingService: letterEmbedder{},
		LLMService:       cannedLLM{},
		VectorStore:      chromem.New(),
	}

	_, err := Assemble(&settings, models, staticFetcher{})

	assert.Error(t, err)
}

func TestApp_CloseNil(t *testing.T) {
	var app *App
	assert.NotPanics(t, app.Close)
}
