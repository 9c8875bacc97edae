package client_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/elusion/briq-go/internal/briqtest"
	. "github.com/elusion/briq-go/internal/client"
	briqhttp "github.com/elusion/briq-go/internal/http"
	"github.com/elusion/briq-go/pkg/briq"
)

const testAPIKey = "test-key"

// Test static errors.
var (
	ErrTestStreamReset = errors.New("stream reset")
)

func strPtr(s string) *string {
	return &s
}

// newTestServer starts a fake API that is closed when the test ends.
func newTestServer(t *testing.T) *briqtest.Server {
	t.Helper()

	server := briqtest.NewServer(testAPIKey)
	t.Cleanup(server.Close)

	return server
}

// newOpenClient creates an open client against baseURL that is closed when
// the test ends.
func newOpenClient(t *testing.T, baseURL string, opts ...briqhttp.Option) *Client {
	t.Helper()

	client, err := New(&briq.Config{APIKey: testAPIKey, BaseURL: baseURL}, opts...)
	require.NoError(t, err)
	require.NoError(t, client.Open(context.Background()))

	t.Cleanup(func() {
		_ = client.Close()
	})

	return client
}

// countingTransport counts requests and idle-connection releases.
type countingTransport struct {
	next     http.RoundTripper
	requests atomic.Int32
	releases atomic.Int32
}

func newCountingTransport() *countingTransport {
	return &countingTransport{next: http.DefaultTransport.(*http.Transport).Clone()}
}

func (c *countingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	c.requests.Add(1)

	return c.next.RoundTrip(req)
}

func (c *countingTransport) CloseIdleConnections() {
	c.releases.Add(1)

	if closer, ok := c.next.(interface{ CloseIdleConnections() }); ok {
		closer.CloseIdleConnections()
	}
}

// brokenBodyTransport answers 200 with a body that fails mid-read.
type brokenBodyTransport struct {
	countingTransport
}

func (b *brokenBodyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	b.requests.Add(1)

	return &http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{"Content-Type": {"application/json"}},
		Body:       io.NopCloser(io.MultiReader(strings.NewReader(`{"success":tr`), errReader{})),
		Request:    req,
	}, nil
}

type errReader struct{}

func (errReader) Read([]byte) (int, error) {
	return 0, ErrTestStreamReset
}
