package cli

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/bootstrap"
	"github.com/custodia-labs/docqa/internal/core/domain"
)

func TestRootCmd_Use(t *testing.T) {
	assert.Equal(t, "docqa", rootCmd.Use)
}

func TestRootCmd_Subcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, want := range []string{"ask", "summarize", "risks", "serve", "chat", "mcp", "check", "version"} {
		assert.True(t, names[want], "missing command %s", want)
	}
}

func TestRootCmd_PersistentFlags(t *testing.T) {
	for _, name := range []string{"verbose", "log-json", "config", "env-file"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name), "missing flag %s", name)
	}
	assert.Equal(t, "v", rootCmd.PersistentFlags().Lookup("verbose").Shorthand)
}

func TestLoadServices_PassesOptions(t *testing.T) {
	var got bootstrap.Options
	SetFactory(func(_ context.Context, opts bootstrap.Options) (*Services, error) {
		got = opts
		return nil, errors.New("stop")
	})
	t.Cleanup(func() { SetFactory(nil) })

	_, err := execute(t, "--config", "/tmp/docqa.toml", "--env-file", "/tmp/.env", "summarize", "u")

	require.EqualError(t, err, "stop")
	assert.Equal(t, "/tmp/docqa.toml", got.ConfigPath)
	assert.Equal(t, "/tmp/.env", got.EnvFile)
}

func TestSettingsOf_DefaultsWhenMissing(t *testing.T) {
	settings := settingsOf(&Services{})

	assert.Equal(t, domain.DefaultSettings().Server.Addr, settings.Server.Addr)
}

func TestServices_CloseNil(t *testing.T) {
	var svc *Services
	assert.NotPanics(t, svc.close)
	assert.NotPanics(t, (&Services{}).close)
}
