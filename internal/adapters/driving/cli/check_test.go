package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestCheckCmd_ValidConfig(t *testing.T) {
	path := writeConfig(t, `
[embedding]
provider = "ollama"

[llm]
provider = "ollama"
api_key = "sk-1234567890abcdef"

[server]
bearer_token = "secret"
`)

	out, err := execute(t, "check", "--config", path, "--env-file", filepath.Join(t.TempDir(), "none.env"))

	require.NoError(t, err)
	assert.Contains(t, out, "Embedding: ollama / nomic-embed-text")
	assert.Contains(t, out, "(key sk-1...cdef)")
	assert.Contains(t, out, "auth enabled")
	assert.Contains(t, out, "Configuration OK.")
	assert.NotContains(t, out, "1234567890")
}

func TestCheckCmd_InvalidConfig(t *testing.T) {
	path := writeConfig(t, `
[embedding]
provider = "ollama"

[llm]
provider = "ollama"

[vector]
backend = "pinecone"
host = ""
`)
	t.Setenv("PINECONE_HOST", "")
	t.Setenv("DOCQA_VECTOR_HOST", "")

	_, err := execute(t, "check", "--config", path, "--env-file", filepath.Join(t.TempDir(), "none.env"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "Short key", input: "abc123", expected: "****"},
		{name: "Exactly 8 chars", input: "12345678", expected: "****"},
		{name: "Long key", input: "sk-1234567890abcdef", expected: "sk-1...cdef"},
		{name: "Empty key", input: "", expected: "****"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, maskAPIKey(tt.input))
		})
	}
}

func TestKeySuffix(t *testing.T) {
	assert.Empty(t, keySuffix(""))
	assert.Equal(t, " (key ****)", keySuffix("short"))
}
