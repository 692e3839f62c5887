package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
tenant = "contoso.onmicrosoft.com"
default_scope = "https://graph.microsoft.com/.default"
catalog_path = "/data/apps.csv"

[[apps]]
name = "Internal Tool"
client_id = "abc-123"
scope = "api://internal/.default"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, "contoso.onmicrosoft.com", cfg.Tenant)
	assert.Equal(t, "https://graph.microsoft.com/.default", cfg.DefaultScope)
	assert.Equal(t, "/data/apps.csv", cfg.CatalogPath)
	require.Len(t, cfg.Apps, 1)
	assert.Equal(t, "Internal Tool", cfg.Apps[0].Name)
	assert.Equal(t, "abc-123", cfg.Apps[0].ClientID)
}

func TestLoadFromMissingFile(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, Config{}, cfg)
}

func TestLoadFromInvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("tenant = [broken"), 0o600))

	_, err := LoadFrom(path)
	require.Error(t, err)
}
