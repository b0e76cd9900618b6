package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/adapters/driven/ai"
	"github.com/custodia-labs/docqa/internal/bootstrap"
	"github.com/custodia-labs/docqa/internal/core/domain"
)

var checkPing bool

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate configuration",
	Long: `Load the configuration from file and environment, validate it and print
the effective settings. API keys are masked.

Use --ping to also contact the embedding and LLM providers.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().BoolVar(&checkPing, "ping", false, "contact the configured providers")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, _ []string) error {
	settings, err := bootstrap.LoadSettings(options())
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	printSettings(cmd, settings)

	if checkPing {
		ctx := commandContext(cmd)
		if err := ai.ValidateEmbeddingConfig(ctx, &settings.Embedding); err != nil {
			return fmt.Errorf("embedding provider: %w", err)
		}
		if err := ai.ValidateLLMConfig(ctx, &settings.LLM); err != nil {
			return fmt.Errorf("llm provider: %w", err)
		}
		cmd.Println("Providers reachable.")
	}

	cmd.Println("Configuration OK.")
	return nil
}

func printSettings(cmd *cobra.Command, s *domain.Settings) {
	cmd.Printf("Embedding: %s / %s%s\n", s.Embedding.Provider, s.Embedding.Model, keySuffix(s.Embedding.APIKey))
	cmd.Printf("LLM:       %s / %s%s\n", s.LLM.Provider, s.LLM.Model, keySuffix(s.LLM.APIKey))
	cmd.Printf("Vector:    %s (namespace %s)\n", s.Vector.Backend, s.Vector.Namespace)
	cmd.Printf("Caches:    documents=%s sessions=%s\n", s.Cache.Documents.Kind, s.Cache.Sessions.Kind)
	cmd.Printf("Retrieval: %d per query, %d per question, %d max\n",
		s.Retrieval.QueryLimit, s.Retrieval.PerQuestion, s.Retrieval.MaxContext)

	auth := "disabled"
	if s.Server.BearerToken != "" {
		auth = "enabled"
	}
	cmd.Printf("Server:    %s (auth %s)\n", s.Server.Addr, auth)
}

func keySuffix(key string) string {
	if key == "" {
		return ""
	}
	return " (key " + maskAPIKey(key) + ")"
}

// maskAPIKey masks an API key for display.
func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
