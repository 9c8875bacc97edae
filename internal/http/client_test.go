package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	briqhttp "github.com/elusion/briq-go/internal/http"
	"github.com/elusion/briq-go/internal/metrics"
	"github.com/elusion/briq-go/pkg/briq"
)

// MockLogger for testing.
type MockLogger struct {
	mu   sync.Mutex
	logs []map[string]interface{}
}

func (l *MockLogger) record(level, msg string, fields map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.logs = append(l.logs, map[string]interface{}{"level": level, "msg": msg, "fields": fields})
}

func (l *MockLogger) Debug(msg string, fields map[string]interface{}) { l.record("debug", msg, fields) }
func (l *MockLogger) Info(msg string, fields map[string]interface{}) { l.record("info", msg, fields) }
func (l *MockLogger) Warn(msg string, fields map[string]interface{}) { l.record("warn", msg, fields) }
func (l *MockLogger) Error(msg string, fields map[string]interface{}) { l.record("error", msg, fields) }

func (l *MockLogger) messages() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]string, 0, len(l.logs))
	for _, entry := range l.logs {
		out = append(out, entry["msg"].(string))
	}

	return out
}

func writeJSON(t *testing.T, writer http.ResponseWriter, status int, body interface{}) {
	t.Helper()

	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)
	_ = json.NewEncoder(writer).Encode(body)
}

func newOpenClient(t *testing.T, serverURL string, opts ...briqhttp.Option) *briqhttp.Client {
	t.Helper()

	client, err := briqhttp.NewClient(serverURL, "test-key", opts...)
	require.NoError(t, err)
	require.NoError(t, client.Open())

	t.Cleanup(func() {
		_ = client.Close()
	})

	return client
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_Do(t *testing.T) {
	t.Parallel()

	t.Run("sends auth and standard headers and decodes data", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "/v1/workspaces/ws-1", request.URL.Path)
			assert.Equal(t, http.MethodGet, request.Method)
			assert.Equal(t, "Bearer test-key", request.Header.Get("Authorization"))
			assert.Equal(t, "application/json", request.Header.Get("Accept"))
			assert.Equal(t, "application/json", request.Header.Get("Content-Type"))
			assert.Equal(t, "briq-go/0.3.0", request.Header.Get("User-Agent"))
			assert.NotEmpty(t, request.Header.Get("X-Request-ID"))

			writeJSON(t, writer, http.StatusOK, map[string]interface{}{
				"success": true,
				"message": "ok",
				"data":    map[string]interface{}{"id": "ws-1", "name": "Marketing"},
			})
		}))
		defer server.Close()

		client := newOpenClient(t, server.URL+"/v1/")

		resp, err := client.Get(context.Background(), "/workspaces/ws-1", nil)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "ok", resp.Envelope.Message)

		workspace, err := briqhttp.Decode[briq.Workspace](resp)
		require.NoError(t, err)
		assert.Equal(t, "ws-1", workspace.ID)
		assert.Equal(t, "Marketing", workspace.Name)
	})

	t.Run("omits empty query values", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "page=2", request.URL.RawQuery)
			writeJSON(t, writer, http.StatusOK, map[string]interface{}{"success": true, "data": map[string]interface{}{}})
		}))
		defer server.Close()

		client := newOpenClient(t, server.URL)

		_, err := client.Get(context.Background(), "/workspaces", url.Values{"page": {"2"}, "search": {""}})
		require.NoError(t, err)
	})

	t.Run("sends JSON body on POST", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			body, err := io.ReadAll(request.Body)
			assert.NoError(t, err)
			assert.JSONEq(t, `{"name":"Marketing"}`, string(body))

			writeJSON(t, writer, http.StatusCreated, map[string]interface{}{
				"success": true,
				"data":    map[string]interface{}{"id": "ws-1", "name": "Marketing"},
			})
		}))
		defer server.Close()

		client := newOpenClient(t, server.URL)

		resp, err := client.Post(context.Background(), "/workspaces", &briq.WorkspaceCreate{Name: "Marketing"})
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
	})

	t.Run("rejects body rule violations without a network call", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			calls.Add(1)
		}))
		defer server.Close()

		client := newOpenClient(t, server.URL)

		_, err := client.Do(context.Background(), &briqhttp.Request{Method: http.MethodGet, Path: "/x", Body: map[string]string{"a": "b"}})
		require.ErrorIs(t, err, briq.ErrInvalidArgument)

		_, err = client.Do(context.Background(), &briqhttp.Request{Method: http.MethodPost, Path: "/x"})
		require.ErrorIs(t, err, briq.ErrInvalidArgument)

		_, err = client.Do(context.Background(), &briqhttp.Request{Method: http.MethodPatch, Path: "/x", Body: map[string]string{}})
		require.ErrorIs(t, err, briq.ErrInvalidArgument)
		assert.Contains(t, err.Error(), "PATCH")

		assert.Equal(t, int32(0), calls.Load())
	})

	t.Run("treats 204 as success without data", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusNoContent)
		}))
		defer server.Close()

		client := newOpenClient(t, server.URL)

		resp, err := client.Delete(context.Background(), "/workspaces/ws-1")
		require.NoError(t, err)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		assert.True(t, resp.Envelope.Success)
	})

	t.Run("makes exactly one attempt on server errors", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			calls.Add(1)
			writeJSON(t, writer, http.StatusServiceUnavailable, map[string]interface{}{"success": false, "message": "maintenance"})
		}))
		defer server.Close()

		client := newOpenClient(t, server.URL)

		_, err := client.Get(context.Background(), "/workspaces", nil)

		var serverErr *briq.ServerError
		require.ErrorAs(t, err, &serverErr)
		assert.Equal(t, http.StatusServiceUnavailable, serverErr.StatusCode)
		assert.Equal(t, "maintenance", serverErr.Message)
		assert.Equal(t, int32(1), calls.Load())
	})
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_StatusMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "401 is authentication",
			status: http.StatusUnauthorized,
			body:   `{"success":false,"message":"bad key"}`,
			check: func(t *testing.T, err error) {
				t.Helper()

				var authErr *briq.AuthenticationError
				require.ErrorAs(t, err, &authErr)
				assert.Equal(t, http.StatusUnauthorized, authErr.StatusCode)
				assert.Equal(t, "bad key", authErr.Message)
			},
		},
		{
			name:   "403 is authentication",
			status: http.StatusForbidden,
			body:   `{"success":false,"message":"forbidden"}`,
			check: func(t *testing.T, err error) {
				t.Helper()
				assert.True(t, briq.IsUnauthorized(err))
			},
		},
		{
			name:   "404 is not found",
			status: http.StatusNotFound,
			body:   `{"success":false,"message":"workspace not found"}`,
			check: func(t *testing.T, err error) {
				t.Helper()

				var notFound *briq.NotFoundError
				require.ErrorAs(t, err, &notFound)
				assert.Equal(t, "workspace not found", notFound.Message)
			},
		},
		{
			name:   "422 is validation with details",
			status: http.StatusUnprocessableEntity,
			body:   `{"success":false,"message":"invalid","errors":[{"field":"name","message":"is required","code":"required"}]}`,
			check: func(t *testing.T, err error) {
				t.Helper()

				var validationErr *briq.ValidationError
				require.ErrorAs(t, err, &validationErr)
				assert.False(t, validationErr.Local())

				detail, ok := validationErr.Field("name")
				require.True(t, ok)
				assert.Equal(t, "required", detail.Code)
			},
		},
		{
			name:   "200 with errors is validation",
			status: http.StatusOK,
			body:   `{"success":false,"message":"invalid","errors":[{"message":"recipient blocked"}]}`,
			check: func(t *testing.T, err error) {
				t.Helper()

				var validationErr *briq.ValidationError
				require.ErrorAs(t, err, &validationErr)
				assert.Equal(t, http.StatusOK, validationErr.StatusCode)
				assert.Equal(t, "recipient blocked", validationErr.Errors[0].Message)
			},
		},
		{
			name:   "500 with errors stays a server error",
			status: http.StatusInternalServerError,
			body:   `{"success":false,"errors":[{"field":"content","message":"too long"}]}`,
			check: func(t *testing.T, err error) {
				t.Helper()

				var serverErr *briq.ServerError
				require.ErrorAs(t, err, &serverErr)
				assert.False(t, briq.IsValidation(err))
				assert.True(t, briq.IsRetryable(err))
			},
		},
		{
			name:   "200 with success false and no errors is an API error",
			status: http.StatusOK,
			body:   `{"success":false,"message":"quota exceeded"}`,
			check: func(t *testing.T, err error) {
				t.Helper()

				var apiErr *briq.APIError
				require.ErrorAs(t, err, &apiErr)
				assert.Equal(t, http.StatusOK, apiErr.StatusCode)
				assert.Equal(t, "quota exceeded", apiErr.Message)
			},
		},
		{
			name:   "502 with non-JSON body is a server error",
			status: http.StatusBadGateway,
			body:   `<html>bad gateway</html>`,
			check: func(t *testing.T, err error) {
				t.Helper()

				var serverErr *briq.ServerError
				require.ErrorAs(t, err, &serverErr)
				assert.Equal(t, "Bad Gateway", serverErr.Message)
			},
		},
		{
			name:   "409 is a generic API error",
			status: http.StatusConflict,
			body:   `{"success":false,"message":"duplicate"}`,
			check: func(t *testing.T, err error) {
				t.Helper()

				var apiErr *briq.APIError
				require.ErrorAs(t, err, &apiErr)
				assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
			},
		},
		{
			name:   "200 with unparseable body is malformed",
			status: http.StatusOK,
			body:   `not json`,
			check: func(t *testing.T, err error) {
				t.Helper()

				var malformed *briq.MalformedResponseError
				require.ErrorAs(t, err, &malformed)
				assert.Equal(t, http.StatusOK, malformed.StatusCode)
				assert.Equal(t, "not json", string(malformed.RawBody))
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
				writer.WriteHeader(tt.status)
				_, _ = writer.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := newOpenClient(t, server.URL)

			resp, err := client.Get(context.Background(), "/workspaces", nil)
			require.Error(t, err)
			assert.Nil(t, resp)
			assert.Equal(t, tt.status, briqhttp.StatusCode(err))
			tt.check(t, err)
		})
	}
}

func TestClient_RateLimit(t *testing.T) {
	t.Parallel()

	t.Run("parses delta seconds", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.Header().Set("Retry-After", "5")
			writeJSON(t, writer, http.StatusTooManyRequests, map[string]interface{}{"success": false, "message": "slow down"})
		}))
		defer server.Close()

		client := newOpenClient(t, server.URL)

		_, err := client.Get(context.Background(), "/workspaces", nil)

		var rateErr *briq.RateLimitError
		require.ErrorAs(t, err, &rateErr)
		require.NotNil(t, rateErr.RetryAfter)
		assert.Equal(t, 5*time.Second, *rateErr.RetryAfter)
		assert.True(t, briq.IsRetryable(err))
	})

	t.Run("envelope errors do not hide the rate limit", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.Header().Set("Retry-After", "5")
			writeJSON(t, writer, http.StatusTooManyRequests, map[string]interface{}{
				"success": false,
				"message": "slow down",
				"errors":  []map[string]string{{"message": "quota exceeded", "code": "rate_limited"}},
			})
		}))
		defer server.Close()

		client := newOpenClient(t, server.URL)

		_, err := client.Get(context.Background(), "/workspaces", nil)

		var rateErr *briq.RateLimitError
		require.ErrorAs(t, err, &rateErr)
		require.NotNil(t, rateErr.RetryAfter)
		assert.Equal(t, 5*time.Second, *rateErr.RetryAfter)
		assert.False(t, briq.IsValidation(err))
		assert.True(t, briq.IsRetryable(err))
	})

	t.Run("parses HTTP date", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.Header().Set("Retry-After", time.Now().Add(time.Hour).UTC().Format(http.TimeFormat))
			writer.WriteHeader(http.StatusTooManyRequests)
		}))
		defer server.Close()

		client := newOpenClient(t, server.URL)

		_, err := client.Get(context.Background(), "/workspaces", nil)

		var rateErr *briq.RateLimitError
		require.ErrorAs(t, err, &rateErr)
		require.NotNil(t, rateErr.RetryAfter)
		assert.Greater(t, *rateErr.RetryAfter, 58*time.Minute)
	})

	t.Run("missing header leaves retry after unset", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.Header().Set("Retry-After", "soon")
			writer.WriteHeader(http.StatusTooManyRequests)
		}))
		defer server.Close()

		client := newOpenClient(t, server.URL)

		_, err := client.Get(context.Background(), "/workspaces", nil)

		var rateErr *briq.RateLimitError
		require.ErrorAs(t, err, &rateErr)
		assert.Nil(t, rateErr.RetryAfter)
	})
}

func TestClient_TransportFailures(t *testing.T) {
	t.Parallel()

	t.Run("timeout", func(t *testing.T) {
		t.Parallel()

		release := make(chan struct{})
		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			select {
			case <-request.Context().Done():
			case <-release:
			}
		}))
		defer server.Close()
		defer close(release)

		client := newOpenClient(t, server.URL, briqhttp.WithTimeout(50*time.Millisecond))

		_, err := client.Get(context.Background(), "/workspaces", nil)

		var timeoutErr *briq.TimeoutError
		require.ErrorAs(t, err, &timeoutErr)
		assert.Equal(t, 50*time.Millisecond, timeoutErr.Timeout)
		assert.True(t, briq.IsRetryable(err))
	})

	t.Run("caller deadline is not reported as the configured timeout", func(t *testing.T) {
		t.Parallel()

		release := make(chan struct{})
		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			select {
			case <-request.Context().Done():
			case <-release:
			}
		}))
		defer server.Close()
		defer close(release)

		client := newOpenClient(t, server.URL, briqhttp.WithTimeout(30*time.Second))

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		_, err := client.Get(ctx, "/workspaces", nil)

		var timeoutErr *briq.TimeoutError
		require.ErrorAs(t, err, &timeoutErr)
		assert.Zero(t, timeoutErr.Timeout)
		assert.Equal(t, "briq: request timed out", timeoutErr.Error())
	})

	t.Run("connection refused", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {}))
		serverURL := server.URL
		server.Close()

		client := newOpenClient(t, serverURL)

		_, err := client.Get(context.Background(), "/workspaces", nil)

		var connErr *briq.ConnectionError
		require.ErrorAs(t, err, &connErr)
		assert.True(t, briq.IsRetryable(err))
	})

	t.Run("caller cancellation is a connection error", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			<-request.Context().Done()
		}))
		defer server.Close()

		client := newOpenClient(t, server.URL)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := client.Get(ctx, "/workspaces", nil)

		var connErr *briq.ConnectionError
		require.ErrorAs(t, err, &connErr)
		require.ErrorIs(t, err, context.Canceled)
		assert.False(t, briq.IsRetryable(err))
	})
}

func TestClient_Lifecycle(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writeJSON(t, writer, http.StatusOK, map[string]interface{}{"success": true, "data": map[string]interface{}{}})
	}))
	defer server.Close()

	client, err := briqhttp.NewClient(server.URL, "test-key")
	require.NoError(t, err)
	assert.Equal(t, briq.SessionUnopened, client.State())

	_, err = client.Get(context.Background(), "/workspaces", nil)
	require.ErrorIs(t, err, briq.ErrSessionClosed)

	require.NoError(t, client.Open())
	require.NoError(t, client.Open())
	assert.Equal(t, briq.SessionOpen, client.State())

	_, err = client.Get(context.Background(), "/workspaces", nil)
	require.NoError(t, err)

	require.NoError(t, client.Close())
	require.NoError(t, client.Close())
	assert.Equal(t, briq.SessionClosed, client.State())

	_, err = client.Get(context.Background(), "/workspaces", nil)
	require.ErrorIs(t, err, briq.ErrSessionClosed)

	require.ErrorIs(t, client.Open(), briq.ErrSessionClosed)
}

func TestNewClient_InvalidBaseURL(t *testing.T) {
	t.Parallel()

	for _, baseURL := range []string{"", "karibu.briq.tz", "ftp://karibu.briq.tz", "://bad"} {
		_, err := briqhttp.NewClient(baseURL, "test-key")
		require.ErrorIs(t, err, briq.ErrInvalidArgument, baseURL)
	}
}

func TestClient_Interceptors(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "campaign-42", request.Header.Get("X-Trace-Tag"))
		writeJSON(t, writer, http.StatusOK, map[string]interface{}{"success": true, "data": map[string]interface{}{}})
	}))
	defer server.Close()

	chain := briq.NewInterceptorChain()
	chain.AddRequestInterceptor(briq.HeaderInterceptor(map[string]string{"X-Trace-Tag": "campaign-42"}))

	var seen []string

	chain.AddResponseInterceptor(func(ctx context.Context, req *briq.Request, resp *briq.Response) error {
		seen = append(seen, req.Operation)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.NoError(t, resp.Error)

		return nil
	})

	client := newOpenClient(t, server.URL, briqhttp.WithInterceptors(chain))

	_, err := client.Do(context.Background(), &briqhttp.Request{Method: http.MethodGet, Path: "/workspaces", Operation: "workspaces.list"})
	require.NoError(t, err)
	assert.Equal(t, []string{"workspaces.list"}, seen)
}

func TestClient_DebugLogging(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writeJSON(t, writer, http.StatusOK, map[string]interface{}{"success": true, "data": map[string]interface{}{}})
	}))
	defer server.Close()

	logger := &MockLogger{}
	client := newOpenClient(t, server.URL, briqhttp.WithLogger(logger), briqhttp.WithDebug(true))

	_, err := client.Get(context.Background(), "/workspaces", nil)
	require.NoError(t, err)

	messages := logger.messages()
	assert.Contains(t, messages, "HTTP Request")
	assert.Contains(t, messages, "HTTP Response")
}

func TestClient_Metrics(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if request.URL.Path == "/missing" {
			writeJSON(t, writer, http.StatusNotFound, map[string]interface{}{"success": false})

			return
		}

		writeJSON(t, writer, http.StatusOK, map[string]interface{}{"success": true, "data": map[string]interface{}{}})
	}))
	defer server.Close()

	registry := prometheus.NewRegistry()
	collectors := metrics.New(registry)
	client := newOpenClient(t, server.URL, briqhttp.WithMetrics(collectors))

	_, err := client.Do(context.Background(), &briqhttp.Request{Method: http.MethodGet, Path: "/ok", Operation: "workspaces.list"})
	require.NoError(t, err)

	_, err = client.Do(context.Background(), &briqhttp.Request{Method: http.MethodGet, Path: "/missing", Operation: "workspaces.get"})
	require.Error(t, err)

	assert.InDelta(t, 1, testutil.ToFloat64(collectors.RequestTotal.WithLabelValues("workspaces.list", "GET", "200")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(collectors.RequestTotal.WithLabelValues("workspaces.get", "GET", "404")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(collectors.RequestErrors.WithLabelValues("workspaces.get", "not_found")), 0)

	// A second set of collectors on the same registry shares the counters.
	again := metrics.New(registry)
	assert.InDelta(t, 1, testutil.ToFloat64(again.RequestTotal.WithLabelValues("workspaces.list", "GET", "200")), 0)
}

func TestClient_Tracing(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writeJSON(t, writer, http.StatusInternalServerError, map[string]interface{}{"success": false, "message": "boom"})
	}))
	defer server.Close()

	exporter := tracetest.NewInMemoryExporter()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	client := newOpenClient(t, server.URL, briqhttp.WithTracerProvider(provider))

	_, err := client.Do(context.Background(), &briqhttp.Request{Method: http.MethodGet, Path: "/campaigns", Operation: "campaigns.list"})
	require.Error(t, err)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "briq.campaigns.list", spans[0].Name)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assert.Contains(t, spans[0].Attributes, attribute.Int("http.response.status_code", http.StatusInternalServerError))
	assert.Contains(t, spans[0].Attributes, attribute.String("http.request.method", http.MethodGet))
}

func TestDecode(t *testing.T) {
	t.Parallel()

	decode := func(body string) error {
		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			_, _ = writer.Write([]byte(body))
		}))
		defer server.Close()

		client := newOpenClient(t, server.URL)

		resp, err := client.Get(context.Background(), "/workspaces/ws-1", nil)
		if err != nil {
			return err
		}

		_, err = briqhttp.Decode[briq.Workspace](resp)

		return err
	}

	var malformed *briq.MalformedResponseError

	require.ErrorAs(t, decode(`{"success":true,"data":null}`), &malformed)
	require.ErrorIs(t, malformed, briqhttp.ErrEmptyData)

	require.ErrorAs(t, decode(`{"success":true,"data":{"name":"no id"}}`), &malformed)
	require.ErrorIs(t, malformed, briqhttp.ErrInvalidShape)

	require.ErrorAs(t, decode(`{"success":true,"data":["not","an","object"]}`), &malformed)
	require.ErrorIs(t, malformed, briqhttp.ErrInvalidShape)

	require.NoError(t, decode(`{"success":true,"data":{"id":"ws-1","name":"ok"}}`))
}

func TestClient_Ping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		status    int
		body      string
		connected bool
	}{
		{name: "envelope", status: http.StatusOK, body: `{"success":true,"message":"healthy","data":{"status":"ok"}}`, connected: true},
		{name: "plain text", status: http.StatusOK, body: "OK", connected: true},
		{name: "unavailable", status: http.StatusServiceUnavailable, body: `{"success":false}`, connected: false},
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"success":false}`, connected: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
				assert.Equal(t, "/health", request.URL.Path)
				writer.WriteHeader(tt.status)
				_, _ = writer.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := newOpenClient(t, server.URL)

			status, err := client.Ping(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.connected, status.Connected)
			assert.Equal(t, tt.status, status.StatusCode)
		})
	}

	t.Run("unreachable", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {}))
		serverURL := server.URL
		server.Close()

		client := newOpenClient(t, serverURL)

		status, err := client.Ping(context.Background())
		require.NoError(t, err)
		assert.False(t, status.Connected)
		assert.Zero(t, status.StatusCode)
		assert.NotEmpty(t, status.Message)
	})

	t.Run("slow health endpoint is bounded by the ping timeout", func(t *testing.T) {
		t.Parallel()

		release := make(chan struct{})
		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			select {
			case <-request.Context().Done():
			case <-release:
			}
		}))
		defer server.Close()
		defer close(release)

		client := newOpenClient(t, server.URL, briqhttp.WithTimeout(30*time.Second), briqhttp.WithPingTimeout(50*time.Millisecond))

		start := time.Now()

		status, err := client.Ping(context.Background())
		require.NoError(t, err)
		assert.False(t, status.Connected)
		assert.Contains(t, status.Message, "timed out")
		assert.Less(t, time.Since(start), 5*time.Second)
	})

	t.Run("closed client returns error", func(t *testing.T) {
		t.Parallel()

		client, err := briqhttp.NewClient("https://karibu.briq.tz/v1", "test-key")
		require.NoError(t, err)
		require.NoError(t, client.Close())

		_, err = client.Ping(context.Background())
		require.True(t, errors.Is(err, briq.ErrSessionClosed))
	})
}
