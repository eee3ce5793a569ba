package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/retrievald/internal/contenttype"
)

// setupHome points HOME at a temp dir so the loader's path allowlist and
// default locations stay inside the test sandbox.
func setupHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func writeConfig(t *testing.T, home, content string, perm os.FileMode) string {
	t.Helper()
	dir := filepath.Join(home, ".config", "retrievald")
	require.NoError(t, os.MkdirAll(dir, 0700))
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), perm))
	return path
}

func TestLoadDefaults(t *testing.T) {
	home := setupHome(t)

	cfg, err := LoadWithFile("")
	require.NoError(t, err)

	assert.Equal(t, "chromem", cfg.VectorStore.Provider)
	assert.Equal(t, "http://localhost:8080", cfg.Embeddings.BaseURL)
	assert.NotNil(t, cfg.Logging)
	assert.NotNil(t, cfg.Telemetry)
	assert.False(t, cfg.Telemetry.Enabled)
	assert.Contains(t, cfg.Metadata.Path, home)
	assert.Contains(t, cfg.VectorStore.Chromem.Path, home)

	require.NoError(t, cfg.Registry().Validate())
}

func TestLoadFromYAML(t *testing.T) {
	home := setupHome(t)
	path := writeConfig(t, home, `
vectorstore:
  provider: qdrant
  qdrant:
    host: qdrant.internal
    port: 7443
embeddings:
  base_url: http://tei:8080
search:
  workers: 16
`, 0600)

	cfg, err := LoadWithFile(path)
	require.NoError(t, err)

	assert.Equal(t, "qdrant", cfg.VectorStore.Provider)
	assert.Equal(t, "qdrant.internal", cfg.VectorStore.Qdrant.Host)
	assert.Equal(t, 7443, cfg.VectorStore.Qdrant.Port)
	assert.Equal(t, "http://tei:8080", cfg.Embeddings.BaseURL)
	assert.Equal(t, 16, cfg.Search.Workers)
}

func TestLoadEnvOverridesYAML(t *testing.T) {
	home := setupHome(t)
	path := writeConfig(t, home, `
embeddings:
  base_url: http://from-yaml:8080
`, 0600)

	t.Setenv("EMBEDDINGS_BASE_URL", "http://from-env:8080")

	cfg, err := LoadWithFile(path)
	require.NoError(t, err)
	assert.Equal(t, "http://from-env:8080", cfg.Embeddings.BaseURL)
}

func TestLoadRejectsInsecurePermissions(t *testing.T) {
	home := setupHome(t)
	path := writeConfig(t, home, "embeddings:\n  base_url: http://x\n", 0644)

	_, err := LoadWithFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "permissions")
}

func TestLoadRejectsPathOutsideAllowlist(t *testing.T) {
	setupHome(t)
	outside := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(outside, []byte("{}"), 0600))

	_, err := LoadWithFile(outside)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be in")
}

func TestContentTypeOverrides(t *testing.T) {
	home := setupHome(t)
	path := writeConfig(t, home, `
content_types:
  documents:
    model: custom-model
    dimension: 768
`, 0600)

	cfg, err := LoadWithFile(path)
	require.NoError(t, err)

	registry := cfg.Registry()
	spec, err := registry.Spec(contenttype.Documents)
	require.NoError(t, err)
	assert.Equal(t, "custom-model", spec.Model)
	assert.Equal(t, 768, spec.Dimension)

	// Overrides replace the registry wholesale; the default extra types are
	// gone.
	assert.False(t, registry.Contains(contenttype.Code))
}

func TestLoadRejectsInvalidContentTypes(t *testing.T) {
	home := setupHome(t)
	// code alone is invalid: the documents entry is mandatory.
	path := writeConfig(t, home, `
content_types:
  code:
    model: m
    dimension: 8
`, 0600)

	_, err := LoadWithFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "content_types")
}
