package driving

import "github.com/custodia-labs/docqa/internal/core/domain"

// SettingsService resolves application settings.
type SettingsService interface {
	// Get returns settings from configuration layered over defaults.
	Get() (*domain.Settings, error)

	// Validate checks settings are usable.
	Validate(settings *domain.Settings) error

	// GetDefaults returns default settings.
	GetDefaults() domain.Settings
}
