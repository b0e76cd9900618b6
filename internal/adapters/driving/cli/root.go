// Package cli provides the cobra command tree for docqa.
package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/bootstrap"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/logger"
)

// version is set at build time via SetVersion.
var version = "dev"

// Global flags.
var (
	verbose    bool
	logJSON    bool
	configPath string
	envFile    string
)

// errNoAnalysis is returned when a command needs the analysis service and none was built.
var errNoAnalysis = errors.New("analysis service not configured")

// Services are the driving ports the commands call.
type Services struct {
	QA       driving.QAService
	Analysis driving.AnalysisService
	Settings *domain.Settings

	// Close releases model clients. May be nil.
	Close func()
}

func (s *Services) close() {
	if s != nil && s.Close != nil {
		s.Close()
	}
}

// Factory builds Services from the configuration options.
type Factory func(ctx context.Context, opts bootstrap.Options) (*Services, error)

// newServices is replaced in tests.
var newServices Factory = defaultServices

func defaultServices(ctx context.Context, opts bootstrap.Options) (*Services, error) {
	app, err := bootstrap.New(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &Services{
		QA:       app.QA,
		Analysis: app.QA,
		Settings: app.Settings,
		Close:    app.Close,
	}, nil
}

// SetFactory overrides how commands build their services. Nil restores the default.
func SetFactory(f Factory) {
	if f == nil {
		f = defaultServices
	}
	newServices = f
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

var rootCmd = &cobra.Command{
	Use:   "docqa",
	Short: "Answer questions about documents",
	Long: `docqa downloads PDF and plain text documents, indexes them for semantic
retrieval and answers questions using only their content.

It runs as a one-shot CLI, an HTTP API, an MCP server or an interactive chat.
Configuration is read from ~/.docqa/config.toml, a .env file and DOCQA_*
environment variables.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
		logger.SetJSON(logJSON)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "write logs as JSON")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.docqa/config.toml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "dotenv file (default ./.env)")
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func options() bootstrap.Options {
	return bootstrap.Options{ConfigPath: configPath, EnvFile: envFile}
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// loadServices builds the services for one command run.
func loadServices(cmd *cobra.Command) (*Services, error) {
	return newServices(commandContext(cmd), options())
}

// settingsOf returns the loaded settings or the defaults.
func settingsOf(svc *Services) *domain.Settings {
	if svc.Settings != nil {
		return svc.Settings
	}
	defaults := domain.DefaultSettings()
	return &defaults
}
