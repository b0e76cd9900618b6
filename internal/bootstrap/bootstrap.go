// Package bootstrap wires configuration, adapters and services into a running application.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/custodia-labs/docqa/internal/adapters/driven/ai"
	"github.com/custodia-labs/docqa/internal/adapters/driven/config/env"
	"github.com/custodia-labs/docqa/internal/adapters/driven/config/file"
	"github.com/custodia-labs/docqa/internal/adapters/driven/storage"
	"github.com/custodia-labs/docqa/internal/adapters/driven/throttle"
	"github.com/custodia-labs/docqa/internal/connectors/web"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/services"
	"github.com/custodia-labs/docqa/internal/logger"
	"github.com/custodia-labs/docqa/internal/normalisers"
	"github.com/custodia-labs/docqa/internal/normalisers/pdf"
	"github.com/custodia-labs/docqa/internal/normalisers/plaintext"
	"github.com/custodia-labs/docqa/internal/postprocessors"
)

// Options locate the configuration sources.
type Options struct {
	// ConfigPath is the TOML file. Empty means ~/.docqa/config.toml.
	ConfigPath string

	// EnvFile is the dotenv file. Empty means ./.env.
	EnvFile string

	// Lookup reads environment variables. Nil reads the process environment.
	Lookup env.LookupFunc
}

// App holds the assembled services.
type App struct {
	Settings *domain.Settings
	QA       *services.QAService

	models *ai.InitResult
}

// Close releases model and vector store clients.
func (a *App) Close() {
	if a != nil && a.models != nil {
		a.models.Close()
	}
}

// LoadSettings reads dotenv, the config file and the environment, then validates the result.
func LoadSettings(opts Options) (*domain.Settings, error) {
	if opts.Lookup == nil {
		if err := env.LoadDotEnv(opts.EnvFile); err != nil {
			return nil, err
		}
	}

	fileStore, err := file.NewConfigStore(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	settingsService := services.NewSettingsService(env.New(fileStore, opts.Lookup))
	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("reading settings: %w", err)
	}
	if err := settingsService.Validate(settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// New loads settings and builds the application.
func New(ctx context.Context, opts Options) (*App, error) {
	settings, err := LoadSettings(opts)
	if err != nil {
		return nil, err
	}

	models, err := ai.Initialise(ctx, settings)
	if err != nil {
		return nil, err
	}

	fetcher := web.New(web.Config{
		Timeout:   settings.Download.Timeout,
		UserAgent: settings.Download.UserAgent,
	})

	app, err := Assemble(settings, models, fetcher)
	if err != nil {
		models.Close()
		return nil, err
	}
	return app, nil
}

// Assemble builds the services over already created model clients.
func Assemble(settings *domain.Settings, models *ai.InitResult, fetcher driven.Fetcher) (*App, error) {
	logger.Section("Bootstrap")

	pipeline, err := postprocessors.Build(postprocessors.NewDefaultRegistry(), settings.Pipeline)
	if err != nil {
		return nil, fmt.Errorf("building pipeline: %w", err)
	}

	documentStore, err := storage.NewStore[domain.CacheEntry](settings.Cache.Documents)
	if err != nil {
		return nil, fmt.Errorf("document cache: %w", err)
	}
	sessionStore, err := storage.NewStore[domain.SessionEntry](settings.Cache.Sessions)
	if err != nil {
		return nil, fmt.Errorf("session store: %w", err)
	}

	extractor := services.NewExtractorService(fetcher, normalisers.NewRegistry(plaintext.New(), pdf.New()))

	index := services.NewIndexService(models.EmbeddingService, models.VectorStore,
		services.WithNamespace(settings.Vector.Namespace),
		services.WithBatchSize(settings.Vector.BatchSize),
		services.WithQueryExpansion(settings.Retrieval.QueryExpansion),
	)

	throttler := throttle.New(throttle.Config{Delay: settings.Synthesis.CallDelay})
	synthesizer := services.NewSynthesizerService(models.LLMService, throttler, pipeline,
		services.WithSummaryGroupSize(settings.Synthesis.SummaryGroupSize),
		services.WithRiskPrefixChars(settings.Synthesis.RiskPrefixChars),
	)

	qa := services.NewQAService(
		extractor,
		pipeline,
		index,
		synthesizer,
		services.NewDocumentCache(documentStore),
		services.NewSessionStore(sessionStore),
		services.WithRetrieval(settings.Retrieval),
	)

	logger.Debug("bootstrap: namespace=%s documents=%s sessions=%s",
		settings.Vector.Namespace, settings.Cache.Documents.Kind, settings.Cache.Sessions.Kind)

	return &App{Settings: settings, QA: qa, models: models}, nil
}
