// Package http implements the transport shared by every resource client: one
// pooled connection set, bearer authentication, envelope decoding, and the
// mapping of responses onto the briq error taxonomy.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/elusion/briq-go/internal/constants"
	"github.com/elusion/briq-go/internal/metrics"
	"github.com/elusion/briq-go/pkg/briq"
)

// Logger is the logging surface used by the transport.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Request describes one API call.
type Request struct {
	Method string
	// Path is relative to the base URL and must start with "/".
	Path  string
	Query url.Values
	// Body is marshalled to JSON. Required for POST and PUT, forbidden for
	// GET and DELETE.
	Body    interface{}
	Headers map[string]string
	// Operation names the call for logs, metrics and spans, e.g.
	// "workspaces.get". Defaults to the method.
	Operation string
}

// Response is a successful (2xx, success=true) API response.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	Envelope   briq.Envelope[json.RawMessage]
}

// Client is the transport core. It is safe for concurrent use once open.
type Client struct {
	baseURL        string
	apiKey         string
	userAgent      string
	timeout        time.Duration
	pingTimeout    time.Duration
	maxConnections int
	debug          bool
	logger         Logger
	interceptors   *briq.InterceptorChain
	metrics        *metrics.Metrics
	tracer         trace.Tracer
	transport      http.RoundTripper

	mu         sync.RWMutex
	state      briq.SessionState
	httpClient *retryablehttp.Client
	pool       http.RoundTripper
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(logger Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables request/response logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		if userAgent != "" {
			c.userAgent = userAgent
		}
	}
}

// WithTimeout sets the per-request timeout. Zero disables it.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithPingTimeout bounds the health probe.
func WithPingTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.pingTimeout = timeout
		}
	}
}

// WithMaxConnections sizes the connection pool.
func WithMaxConnections(maxConnections int) Option {
	return func(c *Client) {
		if maxConnections > 0 {
			c.maxConnections = maxConnections
		}
	}
}

// WithTransport replaces the pooled transport created on Open.
func WithTransport(transport http.RoundTripper) Option {
	return func(c *Client) {
		c.transport = transport
	}
}

// WithInterceptors installs request/response interceptors.
func WithInterceptors(chain *briq.InterceptorChain) Option {
	return func(c *Client) {
		c.interceptors = chain
	}
}

// WithMetrics records Prometheus request metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithTracerProvider sets the provider used for request spans.
func WithTracerProvider(provider trace.TracerProvider) Option {
	return func(c *Client) {
		if provider != nil {
			c.tracer = provider.Tracer(constants.TracerName)
		}
	}
}

// NewClient creates an unopened transport. baseURL must be an absolute
// http(s) URL.
func NewClient(baseURL, apiKey string, opts ...Option) (*Client, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, &briq.InvalidArgumentError{Argument: "base_url", Message: fmt.Sprintf("%v: %q", briq.ErrBaseURLInvalid, baseURL)}
	}

	client := &Client{
		baseURL:        strings.TrimSuffix(baseURL, "/"),
		apiKey:         apiKey,
		userAgent:      constants.DefaultUserAgent,
		timeout:        constants.DefaultHTTPTimeout,
		pingTimeout:    constants.ShortHTTPTimeout,
		maxConnections: constants.DefaultMaxConnections,
		tracer:         otel.GetTracerProvider().Tracer(constants.TracerName),
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// Open creates the connection pool. Opening an open client is a no-op;
// opening a closed client fails with briq.ErrSessionClosed.
func (c *Client) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case briq.SessionOpen:
		return nil
	case briq.SessionClosed:
		return fmt.Errorf("%w: client was closed and cannot be reopened", briq.ErrSessionClosed)
	}

	transport := c.transport
	if transport == nil {
		pooled := cleanhttp.DefaultPooledTransport()
		pooled.MaxIdleConns = c.maxConnections
		pooled.MaxIdleConnsPerHost = c.maxConnections
		pooled.MaxConnsPerHost = c.maxConnections
		pooled.IdleConnTimeout = constants.IdleConnTimeout
		pooled.DialContext = (&net.Dialer{
			Timeout:   constants.DialTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext
		transport = pooled
	}

	c.pool = transport
	c.httpClient = &retryablehttp.Client{
		// retryablehttp closes idle connections after a failed attempt; the
		// pool must only be released by Close.
		HTTPClient: &http.Client{Transport: roundTripperOnly{transport}},
		RetryMax:   0,
		CheckRetry: neverRetry,
		Backoff:    retryablehttp.DefaultBackoff,
	}

	if c.logger != nil {
		c.httpClient.Logger = &leveledLogger{logger: c.logger}
	}

	c.state = briq.SessionOpen

	return nil
}

// Close releases the connection pool. Only the first call releases; later
// calls return nil.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == briq.SessionClosed {
		return nil
	}

	wasOpen := c.state == briq.SessionOpen
	c.state = briq.SessionClosed

	if closer, ok := c.pool.(interface{ CloseIdleConnections() }); ok && wasOpen {
		closer.CloseIdleConnections()
	}

	c.pool = nil
	c.httpClient = nil

	return nil
}

// State reports the lifecycle state.
func (c *Client) State() briq.SessionState {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.state
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// roundTripperOnly hides CloseIdleConnections from the wrapped transport.
type roundTripperOnly struct {
	http.RoundTripper
}

// neverRetry keeps the transport at exactly one attempt per call.
func neverRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	return false, nil
}

// Do performs the request and decodes the envelope. Every returned error is
// one of the briq error types.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	c.mu.RLock()
	httpClient := c.httpClient
	c.mu.RUnlock()

	if httpClient == nil {
		return nil, briq.ErrSessionClosed
	}

	body, err := encodeBody(req)
	if err != nil {
		return nil, err
	}

	operation := req.Operation
	if operation == "" {
		operation = req.Method
	}

	// timeout is reported on expiry only when our own deadline is the one
	// that fires.
	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < c.timeout {
		timeout = 0
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	ctx, span := c.tracer.Start(ctx, "briq."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", req.Method),
			attribute.String("url.path", req.Path),
		),
	)
	defer span.End()

	start := time.Now()
	statusCode, resp, err := c.do(ctx, httpClient, req, operation, body, timeout)

	if statusCode > 0 {
		span.SetAttributes(attribute.Int("http.response.status_code", statusCode))
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	c.metrics.Observe(operation, req.Method, statusCode, time.Since(start), errorKind(err))

	return resp, err
}

func (c *Client) do(
	ctx context.Context,
	httpClient *retryablehttp.Client,
	req *Request,
	operation string,
	body []byte,
	timeout time.Duration,
) (int, *Response, error) {
	intercepted := &briq.Request{
		Method:    req.Method,
		Path:      req.Path,
		Operation: operation,
		Headers:   c.baseHeaders(req, body != nil),
		Body:      body,
	}

	err := c.interceptors.ExecuteRequestInterceptors(ctx, intercepted)
	if err != nil {
		return 0, nil, classifyTransportError(err, timeout)
	}

	var reqBody interface{}
	if body != nil {
		reqBody = body
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, c.buildURL(req.Path, req.Query), reqBody)
	if err != nil {
		return 0, nil, &briq.InvalidArgumentError{Argument: "request", Message: err.Error()}
	}

	httpReq.Header = intercepted.Headers

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Request", map[string]interface{}{
			"method":     req.Method,
			"url":        httpReq.URL.String(),
			"operation":  operation,
			"request_id": intercepted.Headers.Get(constants.HeaderRequestID),
		})
	}

	httpResp, err := httpClient.Do(httpReq)
	if err != nil {
		mapped := classifyTransportError(err, timeout)
		c.runResponseInterceptors(ctx, intercepted, &briq.Response{Error: mapped})

		return 0, nil, mapped
	}

	defer func() {
		_ = httpResp.Body.Close()
	}()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		mapped := classifyTransportError(err, timeout)
		c.runResponseInterceptors(ctx, intercepted, &briq.Response{StatusCode: httpResp.StatusCode, Error: mapped})

		return httpResp.StatusCode, nil, mapped
	}

	resp, mapped := mapResponse(httpResp.StatusCode, httpResp.Header, respBody)

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Response", map[string]interface{}{
			"status_code": httpResp.StatusCode,
			"operation":   operation,
			"bytes":       len(respBody),
		})
	}

	err = c.interceptors.ExecuteResponseInterceptors(ctx, intercepted, &briq.Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       respBody,
		Error:      mapped,
	})
	if err != nil && mapped == nil {
		return httpResp.StatusCode, nil, &briq.APIError{StatusCode: httpResp.StatusCode, Message: err.Error()}
	}

	return httpResp.StatusCode, resp, mapped
}

func (c *Client) runResponseInterceptors(ctx context.Context, req *briq.Request, resp *briq.Response) {
	// The call already failed; interceptor errors cannot change the outcome.
	_ = c.interceptors.ExecuteResponseInterceptors(ctx, req, resp)
}

func (c *Client) baseHeaders(req *Request, hasBody bool) http.Header {
	headers := make(http.Header)
	headers.Set(constants.HeaderAuthorization, "Bearer "+c.apiKey)
	headers.Set(constants.HeaderContentType, constants.ContentTypeJSON)
	headers.Set(constants.HeaderAccept, constants.ContentTypeJSON)
	headers.Set(constants.HeaderUserAgent, c.userAgent)
	headers.Set(constants.HeaderRequestID, uuid.NewString())

	for key, value := range req.Headers {
		headers.Set(key, value)
	}

	return headers
}

func (c *Client) buildURL(path string, query url.Values) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	target := c.baseURL + path

	filtered := url.Values{}

	for key, values := range query {
		for _, value := range values {
			if value != "" {
				filtered.Add(key, value)
			}
		}
	}

	if len(filtered) > 0 {
		target += "?" + filtered.Encode()
	}

	return target
}

func encodeBody(req *Request) ([]byte, error) {
	switch req.Method {
	case http.MethodGet, http.MethodDelete:
		if req.Body != nil {
			return nil, &briq.InvalidArgumentError{Argument: "body", Message: req.Method + " requests must not carry a body"}
		}

		return nil, nil
	case http.MethodPost, http.MethodPut:
		if req.Body == nil {
			return nil, &briq.InvalidArgumentError{Argument: "body", Message: req.Method + " requests require a body"}
		}

		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, &briq.InvalidArgumentError{Argument: "body", Message: fmt.Sprintf("encoding body: %v", err)}
		}

		return data, nil
	default:
		return nil, &briq.InvalidArgumentError{Argument: "method", Message: fmt.Sprintf("%v: %s", briq.ErrUnsupportedMethod, req.Method)}
	}
}

// classifyTransportError maps a failure that produced no usable response.
func classifyTransportError(err error, timeout time.Duration) error {
	var netErr net.Error

	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		return &briq.TimeoutError{Timeout: timeout, Err: err}
	default:
		return &briq.ConnectionError{Err: err}
	}
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodGet, Path: path, Query: query})
}

// Post performs a POST request.
func (c *Client) Post(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPost, Path: path, Body: body})
}

// Put performs a PUT request.
func (c *Client) Put(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPut, Path: path, Body: body})
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodDelete, Path: path})
}

// Ping probes the health endpoint within the ping timeout. Transport and
// HTTP failures are reported as a negative status; lifecycle and
// request-construction errors are returned.
func (c *Client) Ping(ctx context.Context) (*briq.ConnectionStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, c.pingTimeout)
	defer cancel()

	start := time.Now()

	resp, err := c.Do(ctx, &Request{Method: http.MethodGet, Path: constants.HealthPath, Operation: "health"})
	status := &briq.ConnectionStatus{Latency: time.Since(start)}

	if err != nil {
		if errors.Is(err, briq.ErrSessionClosed) || errors.Is(err, briq.ErrInvalidArgument) {
			return nil, err
		}

		status.StatusCode = StatusCode(err)
		status.Message = err.Error()

		// A healthy endpoint is not required to answer with an envelope.
		var malformed *briq.MalformedResponseError
		if errors.As(err, &malformed) && malformed.StatusCode >= 200 && malformed.StatusCode < 300 {
			status.Connected = true
			status.Message = strings.TrimSpace(string(malformed.RawBody))
		}

		return status, nil
	}

	status.Connected = true
	status.StatusCode = resp.StatusCode
	status.Message = resp.Envelope.Message

	return status, nil
}

// leveledLogger adapts Logger to retryablehttp.LeveledLogger.
type leveledLogger struct {
	logger Logger
}

func (l *leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, fieldsOf(keysAndValues))
}

func (l *leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Info(msg, fieldsOf(keysAndValues))
}

func (l *leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, fieldsOf(keysAndValues))
}

func (l *leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn(msg, fieldsOf(keysAndValues))
}

func fieldsOf(keysAndValues []interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(keysAndValues)/2)

	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}

	return fields
}
