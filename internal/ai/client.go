// Package ai wraps the external model services behind narrow interfaces:
// embedding, image captioning, chat completion and dialogue summarization.
//
// All calls go through an OpenAI-compatible API via go-openai. Failures
// propagate to the caller; nothing here retries or fabricates results.
package ai

import (
	"errors"

	"github.com/sashabaranov/go-openai"
)

// ErrEmptyResult indicates the service returned no usable content.
var ErrEmptyResult = errors.New("empty result from model service")

// Config holds model service configuration.
type Config struct {
	// APIKey authenticates all calls.
	APIKey string

	// BaseURL overrides the API endpoint for OpenAI-compatible providers.
	BaseURL string

	// EmbeddingModel selects the embedding model.
	EmbeddingModel string

	// CompletionModel selects the chat model used for answers and
	// dialogue summarization.
	CompletionModel string

	// CaptionModel selects the vision model used for image captions.
	CaptionModel string
}

// Client provides the model service adapters.
type Client struct {
	client *openai.Client
	config Config
}

// NewClient creates a Client for the given configuration.
func NewClient(cfg Config) *Client {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &Client{
		client: openai.NewClientWithConfig(clientConfig),
		config: cfg,
	}
}
