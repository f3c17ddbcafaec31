// Package config loads settings for the indexer CLI and the embedding server.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Embedding backend names accepted by Embedding.Backend.
const (
	BackendLocal  = "local"
	BackendRemote = "remote"
	BackendOpenAI = "openai"
)

// Config holds all configuration for the pipeline and the embedding server.
type Config struct {
	Embedding EmbeddingConfig `yaml:"embedding"`
	Qdrant    QdrantConfig    `yaml:"qdrant"`
	Index     IndexConfig     `yaml:"index"`
	Server    ServerConfig    `yaml:"server"`
	LogLevel  string          `yaml:"log_level"`
}

// EmbeddingConfig selects and configures the embedding backend.
type EmbeddingConfig struct {
	Backend string       `yaml:"backend"` // "local", "remote", "openai"
	Local   LocalConfig  `yaml:"local"`
	Remote  RemoteConfig `yaml:"remote"`
	OpenAI  OpenAIConfig `yaml:"openai"`
}

// LocalConfig configures the in-process hashing model.
type LocalConfig struct {
	Dimension int `yaml:"dimension"`
}

// RemoteConfig configures an Ollama-style /api/embeddings endpoint.
type RemoteConfig struct {
	BaseURL           string        `yaml:"base_url"`
	Model             string        `yaml:"model"`
	Timeout           time.Duration `yaml:"timeout"`
	Concurrency       int           `yaml:"concurrency"`
	RequestsPerSecond float64       `yaml:"requests_per_second"` // 0 disables the limiter
}

// OpenAIConfig configures an OpenAI-compatible embeddings API.
type OpenAIConfig struct {
	APIKey    string `yaml:"api_key"`
	BaseURL   string `yaml:"base_url"`
	Model     string `yaml:"model"`
	BatchSize int    `yaml:"batch_size"`
}

// QdrantConfig holds the vector store connection settings.
type QdrantConfig struct {
	Host   string `yaml:"host"`
	Port   int    `yaml:"port"` // gRPC port
	APIKey string `yaml:"api_key"`
	UseTLS bool   `yaml:"use_tls"`
}

// IndexConfig holds indexing settings.
type IndexConfig struct {
	Collection string `yaml:"collection"`
	Distance   string `yaml:"distance"`
	FAQPath    string `yaml:"faq_path"`
	BatchSize  int    `yaml:"batch_size"`
}

// ServerConfig holds embedding server settings.
type ServerConfig struct {
	Port       string `yaml:"port"`
	StoreTools bool   `yaml:"store_tools"` // connect to Qdrant for health and MCP collection_info
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Embedding: EmbeddingConfig{
			Backend: BackendLocal,
			Local: LocalConfig{
				Dimension: 384,
			},
			Remote: RemoteConfig{
				BaseURL:     "http://localhost:11434",
				Model:       "nomic-embed-text",
				Timeout:     30 * time.Second,
				Concurrency: 4,
			},
			OpenAI: OpenAIConfig{
				Model:     "text-embedding-3-small",
				BatchSize: 500,
			},
		},
		Qdrant: QdrantConfig{
			Host: "localhost",
			Port: 6334,
		},
		Index: IndexConfig{
			Collection: "faq_semantic",
			Distance:   "cosine",
			FAQPath:    "data/faq.json",
			BatchSize:  64,
		},
		Server: ServerConfig{
			Port: "5001",
		},
		LogLevel: "info",
	}
}

// Load builds a configuration from defaults, an optional YAML file and the environment,
// in that order of precedence (environment wins). An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	var errs []error

	setString(&c.Embedding.Backend, "EMBEDDING_BACKEND")
	setString(&c.Embedding.Remote.BaseURL, "EMBEDDING_URL")
	setString(&c.Embedding.Remote.Model, "EMBEDDING_MODEL")
	errs = append(errs,
		setDuration(&c.Embedding.Remote.Timeout, "EMBEDDING_TIMEOUT"),
		setInt(&c.Embedding.Remote.Concurrency, "EMBEDDING_CONCURRENCY"),
		setFloat(&c.Embedding.Remote.RequestsPerSecond, "EMBEDDING_RPS"),
		setInt(&c.Embedding.Local.Dimension, "LOCAL_DIMENSION"),
	)
	setString(&c.Embedding.OpenAI.APIKey, "OPENAI_API_KEY")
	setString(&c.Embedding.OpenAI.BaseURL, "OPENAI_BASE_URL")
	setString(&c.Embedding.OpenAI.Model, "OPENAI_MODEL")

	setString(&c.Qdrant.Host, "QDRANT_HOST")
	setString(&c.Qdrant.APIKey, "QDRANT_API_KEY")
	errs = append(errs,
		setInt(&c.Qdrant.Port, "QDRANT_PORT"),
		setBool(&c.Qdrant.UseTLS, "QDRANT_USE_TLS"),
	)

	setString(&c.Index.Collection, "COLLECTION_NAME")
	setString(&c.Index.Distance, "DISTANCE")
	setString(&c.Index.FAQPath, "FAQ_PATH")
	errs = append(errs, setInt(&c.Index.BatchSize, "BATCH_SIZE"))

	setString(&c.Server.Port, "PORT")
	errs = append(errs, setBool(&c.Server.StoreTools, "SERVER_STORE_TOOLS"))

	setString(&c.LogLevel, "LOG_LEVEL")

	return errors.Join(errs...)
}

// Validate checks the configuration for values the components cannot work with.
func (c *Config) Validate() error {
	switch c.Embedding.Backend {
	case BackendLocal:
		if c.Embedding.Local.Dimension <= 0 {
			return fmt.Errorf("embedding.local.dimension must be positive, got %d", c.Embedding.Local.Dimension)
		}
	case BackendRemote:
		if c.Embedding.Remote.BaseURL == "" {
			return errors.New("embedding.remote.base_url is required for the remote backend")
		}
		if c.Embedding.Remote.Model == "" {
			return errors.New("embedding.remote.model is required for the remote backend")
		}
	case BackendOpenAI:
		if c.Embedding.OpenAI.APIKey == "" {
			return errors.New("OPENAI_API_KEY is required for the openai backend")
		}
	default:
		return fmt.Errorf("unknown embedding backend %q (want %s, %s or %s)",
			c.Embedding.Backend, BackendLocal, BackendRemote, BackendOpenAI)
	}

	if c.Index.Collection == "" {
		return errors.New("index.collection must not be empty")
	}
	if c.Index.BatchSize <= 0 {
		return fmt.Errorf("index.batch_size must be positive, got %d", c.Index.BatchSize)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Logger returns a text logger writing to stderr at the configured level.
func (c *Config) Logger() *slog.Logger {
	level, _ := ParseLevel(c.LogLevel)
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(strings.TrimSpace(s)))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = i
	return nil
}

func setFloat(dst *float64, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = f
	return nil
}

func setBool(dst *bool, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = b
	return nil
}

func setDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}
