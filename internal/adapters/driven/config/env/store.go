// Package env layers environment variables over another ConfigStore.
package env

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.ConfigStore = (*Store)(nil)

// Prefix marks generic overrides: DOCQA_LLM_MODEL overrides llm.model.
const Prefix = "DOCQA_"

// aliases maps conventional variable names onto config keys.
// They rank below the DOCQA_ form of the same key.
var aliases = map[string][]string{
	"vector.api_key":      {"PINECONE_API_KEY"},
	"vector.host":         {"PINECONE_HOST"},
	"server.bearer_token": {"BEARER_TOKEN"},
}

// providerKeys names the API key variable for each provider.
var providerKeys = map[string]string{
	"gemini":    "GEMINI_API_KEY",
	"openai":    "OPENAI_API_KEY",
	"anthropic": "ANTHROPIC_API_KEY",
}

// LookupFunc reads one environment variable.
type LookupFunc func(key string) (string, bool)

// Store answers from the environment first and falls back to base.
type Store struct {
	driven.ConfigStore
	lookup LookupFunc
}

// New wraps base. A nil lookup reads the process environment.
func New(base driven.ConfigStore, lookup LookupFunc) *Store {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	return &Store{ConfigStore: base, lookup: lookup}
}

// LoadDotEnv loads variables from a .env file without overriding ones already set.
// A missing file is ignored.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// VarName returns the DOCQA_ variable that overrides key.
func VarName(key string) string {
	return Prefix + strings.ToUpper(strings.NewReplacer(".", "_", "-", "_").Replace(key))
}

func (s *Store) fromEnv(key string) (string, bool) {
	if v, ok := s.lookup(VarName(key)); ok && v != "" {
		return v, true
	}
	for _, name := range aliases[key] {
		if v, ok := s.lookup(name); ok && v != "" {
			return v, true
		}
	}
	if section, field, ok := strings.Cut(key, "."); ok && field == "api_key" &&
		(section == "llm" || section == "embedding") {
		provider := s.GetString(section + ".provider")
		if provider == "" {
			provider = defaultProvider(section)
		}
		if name, ok := providerKeys[provider]; ok {
			if v, ok := s.lookup(name); ok && v != "" {
				return v, true
			}
		}
	}
	return "", false
}

func defaultProvider(section string) string {
	defaults := domain.DefaultSettings()
	if section == "llm" {
		return defaults.LLM.Provider.String()
	}
	return defaults.Embedding.Provider.String()
}

// Get returns the environment value for key, or the base value.
// An API key in the base file wins over a provider-named variable.
func (s *Store) Get(key string) (any, bool) {
	if strings.HasSuffix(key, ".api_key") {
		if v, ok := s.lookup(VarName(key)); ok && v != "" {
			return v, true
		}
		if v, ok := s.ConfigStore.Get(key); ok {
			if str, isStr := v.(string); !isStr || str != "" {
				return v, true
			}
		}
	}
	if v, ok := s.fromEnv(key); ok {
		return v, true
	}
	return s.ConfigStore.Get(key)
}

// GetString retrieves a string value.
func (s *Store) GetString(key string) string {
	v, ok := s.Get(key)
	if !ok {
		return ""
	}
	str, _ := v.(string)
	return str
}

// GetInt retrieves an integer value, parsing environment strings.
func (s *Store) GetInt(key string) int {
	if v, ok := s.fromEnv(key); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0
		}
		return n
	}
	return s.ConfigStore.GetInt(key)
}

// GetBool retrieves a boolean value, parsing environment strings.
func (s *Store) GetBool(key string) bool {
	if v, ok := s.fromEnv(key); ok {
		b, _ := strconv.ParseBool(v)
		return b
	}
	return s.ConfigStore.GetBool(key)
}

// GetStringSlice retrieves a slice; environment values are comma separated.
func (s *Store) GetStringSlice(key string) []string {
	if v, ok := s.fromEnv(key); ok {
		var out []string
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out
	}
	return s.ConfigStore.GetStringSlice(key)
}
