// Package config provides environment-sourced configuration for docchat.
//
// Configuration is loaded from environment variables via koanf and validated
// at startup. Missing required settings are fatal.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// ErrMissingSetting indicates a required configuration value is absent.
var ErrMissingSetting = errors.New("missing required setting")

// Config holds the complete docchat configuration.
type Config struct {
	// OpenAIAPIKey authenticates the embedding, captioning and completion
	// service calls. Required.
	OpenAIAPIKey string `koanf:"openai_api_key"`

	// OpenAIBaseURL overrides the API endpoint, for OpenAI-compatible
	// providers. Optional.
	OpenAIBaseURL string `koanf:"openai_base_url"`

	// EmbeddingModel selects the embedding model. Required.
	EmbeddingModel string `koanf:"embedding_model"`

	// CompletionModel selects the chat completion model. Required.
	CompletionModel string `koanf:"completion_model"`

	// CaptionModel selects the vision model used for image captions.
	// Defaults to CompletionModel.
	CaptionModel string `koanf:"caption_model"`

	// ChunkSize is the character width of a text chunk. Required, positive.
	ChunkSize int `koanf:"chunk_size"`

	// ChunkOverlap is the character overlap between adjacent chunks.
	// Required, non-negative and smaller than ChunkSize.
	ChunkOverlap int `koanf:"chunk_overlap"`

	// RetrievalK is the retrieval width passed to the vector index.
	// Required, positive.
	RetrievalK int `koanf:"retrieval_k"`

	// MaxTokens is the conversation memory budget in estimated tokens.
	// Required, positive.
	MaxTokens int `koanf:"max_tokens"`

	// ServerPort is the HTTP listen port. Default: 8080.
	ServerPort int `koanf:"server_port"`

	// ShutdownTimeout bounds graceful HTTP shutdown. Default: 10s.
	ShutdownTimeout time.Duration `koanf:"server_shutdown_timeout"`

	// StorePath is the directory backing the vector index.
	// Default: "~/.config/docchat/index".
	StorePath string `koanf:"store_path"`

	// StoreCollection is the vector collection name.
	// Default: "knowledge_base".
	StoreCollection string `koanf:"store_collection"`

	// ImageDir is where extracted images are persisted. Defaults to the
	// directory of the ingested PDF.
	ImageDir string `koanf:"image_dir"`

	// LogLevel is the zap level name. Default: "info".
	LogLevel string `koanf:"log_level"`

	// LogFormat is "json" or "console". Default: "json".
	LogFormat string `koanf:"log_format"`
}

// Load reads configuration from environment variables.
//
// Environment variables map directly to lowercased koanf keys, e.g.
// CHUNK_SIZE -> chunk_size, OPENAI_API_KEY -> openai_api_key.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(env.Provider("", ".", strings.ToLower), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.ApplyDefaults()
	return cfg, nil
}

// ApplyDefaults sets default values for unset optional fields.
func (c *Config) ApplyDefaults() {
	if c.CaptionModel == "" {
		c.CaptionModel = c.CompletionModel
	}
	if c.ServerPort == 0 {
		c.ServerPort = 8080
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = 10 * time.Second
	}
	if c.StorePath == "" {
		c.StorePath = "~/.config/docchat/index"
	}
	if c.StoreCollection == "" {
		c.StoreCollection = "knowledge_base"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "json"
	}
}

// Validate validates the configuration.
//
// Returns an error if a required setting is missing or a numeric setting is
// out of range. The caller is expected to treat any error as fatal.
func (c *Config) Validate() error {
	if c.OpenAIAPIKey == "" {
		return fmt.Errorf("%w: OPENAI_API_KEY", ErrMissingSetting)
	}
	if c.EmbeddingModel == "" {
		return fmt.Errorf("%w: EMBEDDING_MODEL", ErrMissingSetting)
	}
	if c.CompletionModel == "" {
		return fmt.Errorf("%w: COMPLETION_MODEL", ErrMissingSetting)
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("%w: CHUNK_SIZE must be a positive integer", ErrMissingSetting)
	}
	if c.ChunkOverlap < 0 {
		return errors.New("CHUNK_OVERLAP must be non-negative")
	}
	if c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("CHUNK_OVERLAP (%d) must be smaller than CHUNK_SIZE (%d)", c.ChunkOverlap, c.ChunkSize)
	}
	if c.RetrievalK <= 0 {
		return fmt.Errorf("%w: RETRIEVAL_K must be a positive integer", ErrMissingSetting)
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("%w: MAX_TOKENS must be a positive integer", ErrMissingSetting)
	}
	if c.ServerPort < 1 || c.ServerPort > 65535 {
		return fmt.Errorf("invalid server port: %d (must be 1-65535)", c.ServerPort)
	}
	if c.LogFormat != "json" && c.LogFormat != "console" {
		return fmt.Errorf("invalid log format: %q (must be json or console)", c.LogFormat)
	}
	return nil
}
