package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, BackendLocal, cfg.Embedding.Backend)
	assert.Equal(t, "faq_semantic", cfg.Index.Collection)
	assert.Equal(t, "cosine", cfg.Index.Distance)
	assert.Equal(t, 30*time.Second, cfg.Embedding.Remote.Timeout)
	assert.Equal(t, 6334, cfg.Qdrant.Port)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yamlContent := `
embedding:
  backend: remote
  remote:
    base_url: http://embedder:11434
    model: bge-m3
    timeout: 5s
index:
  collection: from_yaml
  batch_size: 16
`
	require.NoError(t, os.WriteFile(path, []byte(yamlContent), 0o644))

	t.Setenv("COLLECTION_NAME", "from_env")
	t.Setenv("EMBEDDING_CONCURRENCY", "8")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, BackendRemote, cfg.Embedding.Backend)
	assert.Equal(t, "http://embedder:11434", cfg.Embedding.Remote.BaseURL)
	assert.Equal(t, "bge-m3", cfg.Embedding.Remote.Model)
	assert.Equal(t, 5*time.Second, cfg.Embedding.Remote.Timeout)
	assert.Equal(t, 8, cfg.Embedding.Remote.Concurrency)
	assert.Equal(t, "from_env", cfg.Index.Collection, "environment should override the file")
	assert.Equal(t, 16, cfg.Index.BatchSize)
}

func TestLoad_NoFile(t *testing.T) {
	t.Setenv("QDRANT_PORT", "7000")
	t.Setenv("QDRANT_USE_TLS", "true")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Qdrant.Port)
	assert.True(t, cfg.Qdrant.UseTLS)
}

func TestLoad_InvalidEnv(t *testing.T) {
	t.Setenv("BATCH_SIZE", "many")

	_, err := Load("")
	assert.ErrorContains(t, err, "BATCH_SIZE")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"unknown backend", func(c *Config) { c.Embedding.Backend = "gpu" }, "unknown embedding backend"},
		{"openai without key", func(c *Config) { c.Embedding.Backend = BackendOpenAI }, "OPENAI_API_KEY"},
		{"remote without url", func(c *Config) {
			c.Embedding.Backend = BackendRemote
			c.Embedding.Remote.BaseURL = ""
		}, "base_url"},
		{"zero dimension", func(c *Config) { c.Embedding.Local.Dimension = 0 }, "dimension"},
		{"empty collection", func(c *Config) { c.Index.Collection = "" }, "collection"},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, "log level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.wantErr)
		})
	}
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)

	level, err = ParseLevel(" WARN ")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)
}
