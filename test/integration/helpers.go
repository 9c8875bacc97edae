//go:build integration

package integration

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/elusion/briq-go/pkg/briq"
	"github.com/elusion/briq-go/pkg/briqclient"
)

// TestConfig holds configuration for integration tests.
type TestConfig struct {
	APIKey    string
	BaseURL   string
	Recipient string
	SenderID  string
}

// LoadTestConfig loads configuration from environment variables.
func LoadTestConfig() *TestConfig {
	senderID := os.Getenv("BRIQ_TEST_SENDER_ID")
	if senderID == "" {
		senderID = "BRIQ"
	}

	return &TestConfig{
		APIKey:    os.Getenv("BRIQ_API_KEY"),
		BaseURL:   os.Getenv("BRIQ_BASE_URL"),
		Recipient: os.Getenv("BRIQ_TEST_RECIPIENT"),
		SenderID:  senderID,
	}
}

// SkipIfMissingConfig skips test if required config is missing.
func (config *TestConfig) SkipIfMissingConfig(t *testing.T) {
	t.Helper()

	if config.APIKey == "" {
		t.Skip("BRIQ_API_KEY not set, skipping integration test")
	}
}

// OpenClient opens a client against the live API and closes it when the
// test ends.
func (config *TestConfig) OpenClient(t *testing.T) briq.Client {
	t.Helper()

	client, err := briqclient.New(&briq.Config{
		APIKey:  config.APIKey,
		BaseURL: config.BaseURL,
		Timeout: 30 * time.Second,
	})
	require.NoError(t, err)
	require.NoError(t, client.Open(context.Background()))

	t.Cleanup(func() {
		_ = client.Close()
	})

	return client
}

// GenerateTestName generates a unique name for test resources.
func GenerateTestName(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}
