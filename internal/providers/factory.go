package providers

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotConfigured is returned by NewClient when the endpoint or the API key
// is missing. The server still starts; schedule requests answer with a
// configuration error until the process is restarted with credentials.
var ErrNotConfigured = errors.New("completion provider not configured")

// ClientConfig selects and configures the completion provider.
type ClientConfig struct {
	Type       string // "azure" (default) or "openai"
	Endpoint   string // Azure resource endpoint, or base URL for "openai"
	APIKey     string
	APIVersion string // Azure only

	// RequestsPerMinute throttles calls on a token bucket; 0 disables it.
	RequestsPerMinute int
}

// NewClient creates an LLM client based on provider type.
func NewClient(cfg ClientConfig) (LLMClient, error) {
	typ := strings.ToLower(strings.TrimSpace(cfg.Type))
	if typ == "" {
		typ = AzureName
	}

	var client LLMClient
	switch typ {
	case AzureName:
		if cfg.Endpoint == "" || cfg.APIKey == "" {
			return nil, ErrNotConfigured
		}
		c, err := NewAzureClient(AzureConfig{
			Endpoint:   cfg.Endpoint,
			APIKey:     cfg.APIKey,
			APIVersion: cfg.APIVersion,
		})
		if err != nil {
			return nil, err
		}
		client = c
	case OpenAIName:
		if cfg.APIKey == "" {
			return nil, ErrNotConfigured
		}
		c, err := NewOpenAIClient(OpenAIConfig{
			BaseURL: cfg.Endpoint,
			APIKey:  cfg.APIKey,
		})
		if err != nil {
			return nil, err
		}
		client = c
	default:
		return nil, fmt.Errorf("unknown provider type: %s", cfg.Type)
	}

	if cfg.RequestsPerMinute > 0 {
		client = NewRateLimitedClient(client, cfg.RequestsPerMinute)
	}
	return client, nil
}
