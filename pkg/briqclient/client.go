package briqclient

import (
	"fmt"
	"strings"

	"github.com/elusion/briq-go/internal/client"
	"github.com/elusion/briq-go/internal/constants"
	"github.com/elusion/briq-go/pkg/briq"
)

// New creates an unopened Briq API client. Call Open before use, or use
// Session to scope the client's lifetime. config is not modified.
func New(config *briq.Config) (briq.Client, error) {
	normalized, err := normalize(config)
	if err != nil {
		return nil, err
	}

	c, err := client.New(normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return c, nil
}

// NewFromEnv creates an unopened client from the environment, an optional
// .env file and an optional config file. See LoadConfig.
func NewFromEnv(opts ...LoadOption) (briq.Client, error) {
	config, err := LoadConfig(opts...)
	if err != nil {
		return nil, err
	}

	return New(config)
}

// normalize validates config and returns a copy with defaults applied.
func normalize(config *briq.Config) (*briq.Config, error) {
	if config == nil {
		return nil, briq.ErrConfigRequired
	}

	if strings.TrimSpace(config.APIKey) == "" {
		return nil, briq.ErrAPIKeyRequired
	}

	normalized := *config

	// Normalize base URL
	baseURL := strings.TrimSuffix(strings.TrimSpace(normalized.BaseURL), "/")
	if baseURL == "" {
		baseURL = constants.DefaultBaseURL
	}

	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "https://" + baseURL
	}

	normalized.BaseURL = baseURL

	if normalized.Timeout <= 0 {
		normalized.Timeout = constants.DefaultHTTPTimeout
	}

	if normalized.MaxConnections <= 0 {
		normalized.MaxConnections = constants.DefaultMaxConnections
	}

	if normalized.UserAgent == "" {
		normalized.UserAgent = constants.DefaultUserAgent
	}

	return &normalized, nil
}
