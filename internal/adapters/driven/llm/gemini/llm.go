// Package gemini provides an LLM service adapter using the Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/custodia-labs/docqa/internal/adapters/driven/apierr"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.0-flash"

// Config holds configuration for the Gemini LLM service.
type Config struct {
	// APIKey is the Gemini API key (required).
	APIKey string

	// Model is the generative model (default: gemini-2.0-flash).
	Model string
}

// LLMService generates text with a Gemini model.
type LLMService struct {
	client *genai.Client
	model  string
}

// NewLLMService creates a new Gemini LLM service.
func NewLLMService(ctx context.Context, cfg Config) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: gemini: API key is required", domain.ErrInvalidInput)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("%w: gemini: create client: %w", domain.ErrLLMUnavailable, err)
	}

	return &LLMService{client: client, model: cfg.Model}, nil
}

// configure returns a fresh model handle so per-call options never leak between calls.
func (s *LLMService) configure(maxTokens int, temperature float64, stop []string) *genai.GenerativeModel {
	m := s.client.GenerativeModel(s.model)
	if maxTokens > 0 {
		m.SetMaxOutputTokens(int32(maxTokens))
	}
	if temperature > 0 {
		m.SetTemperature(float32(temperature))
	}
	if len(stop) > 0 {
		m.StopSequences = stop
	}
	return m
}

// Generate produces text completion from a prompt.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	m := s.configure(opts.MaxTokens, opts.Temperature, opts.StopWords)
	resp, err := m.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", apierr.Google("gemini", domain.ErrLLMUnavailable, err)
	}
	return responseText(resp)
}

// Chat conducts a multi-turn conversation.
// System messages become the model's system instruction and the final
// message is sent against the preceding history.
func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	m := s.configure(opts.MaxTokens, opts.Temperature, nil)

	system, history := splitMessages(messages)
	if system != "" {
		m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}
	if len(history) == 0 {
		return "", fmt.Errorf("%w: gemini: chat needs at least one user message", domain.ErrInvalidInput)
	}

	session := m.StartChat()
	session.History = history[:len(history)-1]
	last := history[len(history)-1]

	resp, err := session.SendMessage(ctx, last.Parts...)
	if err != nil {
		return "", apierr.Google("gemini", domain.ErrLLMUnavailable, err)
	}
	return responseText(resp)
}

// ModelName returns the name of the LLM model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping lists one model to validate the key without running inference.
func (s *LLMService) Ping(ctx context.Context) error {
	_, err := s.client.ListModels(ctx).Next()
	if err != nil && !errors.Is(err, iterator.Done) {
		return apierr.Google("gemini", domain.ErrLLMUnavailable, err)
	}
	return nil
}

// Close releases the underlying client.
func (s *LLMService) Close() error {
	return s.client.Close()
}

// splitMessages separates system prompts from turns and maps roles
// onto Gemini's user/model pair.
func splitMessages(messages []driven.ChatMessage) (string, []*genai.Content) {
	var system []string
	var history []*genai.Content
	for _, msg := range messages {
		switch msg.Role {
		case "system":
			system = append(system, msg.Content)
		case "assistant", "model":
			history = append(history, &genai.Content{Role: "model", Parts: []genai.Part{genai.Text(msg.Content)}})
		default:
			history = append(history, &genai.Content{Role: "user", Parts: []genai.Part{genai.Text(msg.Content)}})
		}
	}
	return strings.Join(system, "\n\n"), history
}

// responseText concatenates the text parts of every candidate.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", fmt.Errorf("%w: gemini: empty response", domain.ErrLLMUnavailable)
	}
	var parts []string
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				parts = append(parts, string(text))
			}
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("%w: gemini: no text in response", domain.ErrLLMUnavailable)
	}
	return strings.Join(parts, "\n"), nil
}
