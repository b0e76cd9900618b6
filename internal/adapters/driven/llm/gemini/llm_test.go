package gemini

import (
	"context"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

func TestNewLLMService_RequiresAPIKey(t *testing.T) {
	_, err := NewLLMService(context.Background(), Config{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestResponseText(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []genai.Part{genai.Text("first"), genai.Text("second")}}},
			{Content: nil},
		},
	}
	text, err := responseText(resp)
	require.NoError(t, err)
	assert.Equal(t, "first\nsecond", text)
}

func TestResponseText_Empty(t *testing.T) {
	_, err := responseText(nil)
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)

	_, err = responseText(&genai.GenerateContentResponse{})
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

func TestSplitMessages(t *testing.T) {
	system, history := splitMessages([]driven.ChatMessage{
		{Role: "system", Content: "be brief"},
		{Role: "user", Content: "hi"},
		{Role: "assistant", Content: "hello"},
		{Role: "user", Content: "what is covered?"},
	})

	assert.Equal(t, "be brief", system)
	require.Len(t, history, 3)
	assert.Equal(t, "user", history[0].Role)
	assert.Equal(t, "model", history[1].Role)
	assert.Equal(t, genai.Text("what is covered?"), history[2].Parts[0])
}
