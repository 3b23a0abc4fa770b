package openai

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joseph-ayodele/cardscan/internal/common"
)

const (
	DefaultBaseURL   = "https://api.openai.com/v1"
	DefaultModel     = "gpt-4"
	DefaultMaxTokens = 500
)

// Config for the OpenAI client.
type Config struct {
	APIKey    string        // if empty, falls back to env OPENAI_API_KEY
	BaseURL   string        // default https://api.openai.com/v1
	Model     string        // default gpt-4
	MaxTokens int           // default 500
	Timeout   time.Duration // http client timeout
}

// FromAppConfig copies the LLM section of the application config.
func FromAppConfig(c common.LLMConfig) Config {
	return Config{
		APIKey:    c.APIKey,
		BaseURL:   c.BaseURL,
		Model:     c.Model,
		MaxTokens: c.MaxTokens,
		Timeout:   c.Timeout,
	}
}

type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 45 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

// Model reports the model the client sends requests to.
func (c *Client) Model() string { return c.cfg.Model }
