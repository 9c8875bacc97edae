package client

import (
	"context"
	"fmt"

	"github.com/elusion/briq-go/internal/constants"
	briqhttp "github.com/elusion/briq-go/internal/http"
	"github.com/elusion/briq-go/internal/metrics"
	"github.com/elusion/briq-go/pkg/briq"
)

// Client implements the briq.Client interface.
type Client struct {
	httpClient *briqhttp.Client
	logger     briq.Logger

	// Resource clients
	workspaces briq.WorkspacesClient
	campaigns  briq.CampaignsClient
	messages   briq.MessagesClient
}

// createHTTPClientOptions builds HTTP client options from config.
func createHTTPClientOptions(config *briq.Config) []briqhttp.Option {
	httpOpts := []briqhttp.Option{
		briqhttp.WithMaxConnections(config.MaxConnections),
	}

	if config.Timeout > 0 {
		httpOpts = append(httpOpts, briqhttp.WithTimeout(config.Timeout))
	}

	if config.Logger != nil {
		httpOpts = append(httpOpts, briqhttp.WithLogger(&loggerAdapter{logger: config.Logger}))
	}

	if config.Debug {
		httpOpts = append(httpOpts, briqhttp.WithDebug(true))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, briqhttp.WithUserAgent(config.UserAgent))
	}

	if len(config.RequestInterceptors) > 0 || len(config.ResponseInterceptors) > 0 {
		chain := briq.NewInterceptorChain()

		for _, interceptor := range config.RequestInterceptors {
			chain.AddRequestInterceptor(interceptor)
		}

		for _, interceptor := range config.ResponseInterceptors {
			chain.AddResponseInterceptor(interceptor)
		}

		httpOpts = append(httpOpts, briqhttp.WithInterceptors(chain))
	}

	if config.MetricsRegisterer != nil {
		httpOpts = append(httpOpts, briqhttp.WithMetrics(metrics.New(config.MetricsRegisterer)))
	}

	if config.TracerProvider != nil {
		httpOpts = append(httpOpts, briqhttp.WithTracerProvider(config.TracerProvider))
	}

	return httpOpts
}

// New creates an unopened client. Zero values in config fall back to the
// transport defaults; opts are applied after those derived from config.
func New(config *briq.Config, opts ...briqhttp.Option) (*Client, error) {
	if config == nil {
		return nil, briq.ErrConfigRequired
	}

	if config.APIKey == "" {
		return nil, briq.ErrAPIKeyRequired
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = constants.DefaultBaseURL
	}

	httpOpts := append(createHTTPClientOptions(config), opts...)

	httpClient, err := briqhttp.NewClient(baseURL, config.APIKey, httpOpts...)
	if err != nil {
		return nil, fmt.Errorf("creating transport: %w", err)
	}

	client := &Client{
		httpClient: httpClient,
		logger:     config.Logger,
	}

	// Initialize resource clients
	client.initializeResourceClients()

	return client, nil
}

// initializeResourceClients initializes all resource-specific clients.
func (c *Client) initializeResourceClients() {
	c.workspaces = NewWorkspacesClient(c.httpClient)
	c.campaigns = NewCampaignsClient(c.httpClient)
	c.messages = NewMessagesClient(c.httpClient)
}

// Open implements briq.Client.Open.
func (c *Client) Open(ctx context.Context) error {
	err := ctx.Err()
	if err != nil {
		return &briq.ConnectionError{Err: err}
	}

	err = c.httpClient.Open()
	if err != nil {
		return fmt.Errorf("opening session: %w", err)
	}

	c.log("Session opened", map[string]interface{}{"base_url": c.httpClient.BaseURL()})

	return nil
}

// Close implements briq.Client.Close.
func (c *Client) Close() error {
	wasOpen := c.httpClient.State() == briq.SessionOpen

	err := c.httpClient.Close()
	if err != nil {
		return fmt.Errorf("closing session: %w", err)
	}

	if wasOpen {
		c.log("Session closed", nil)
	}

	return nil
}

// State implements briq.Client.State.
func (c *Client) State() briq.SessionState {
	return c.httpClient.State()
}

// TestConnection implements briq.Client.TestConnection.
func (c *Client) TestConnection(ctx context.Context) (*briq.ConnectionStatus, error) {
	status, err := c.httpClient.Ping(ctx)
	if err != nil {
		return nil, fmt.Errorf("testing connection: %w", err)
	}

	if !status.Connected && c.logger != nil {
		c.logger.Warn("Connectivity check failed", map[string]interface{}{
			"status_code": status.StatusCode,
			"message":     status.Message,
		})
	}

	return status, nil
}

func (c *Client) log(msg string, fields map[string]interface{}) {
	if c.logger != nil {
		c.logger.Debug(msg, fields)
	}
}

// Resource client accessors

// Workspaces implements briq.Client.Workspaces.
func (c *Client) Workspaces() briq.WorkspacesClient {
	return c.workspaces
}

// Campaigns implements briq.Client.Campaigns.
func (c *Client) Campaigns() briq.CampaignsClient {
	return c.campaigns
}

// Messages implements briq.Client.Messages.
func (c *Client) Messages() briq.MessagesClient {
	return c.messages
}

// loggerAdapter adapts briq.Logger to http.Logger.
type loggerAdapter struct {
	logger briq.Logger
}

func (l *loggerAdapter) Debug(msg string, fields map[string]interface{}) {
	l.logger.Debug(msg, fields)
}

func (l *loggerAdapter) Info(msg string, fields map[string]interface{}) {
	l.logger.Info(msg, fields)
}

func (l *loggerAdapter) Warn(msg string, fields map[string]interface{}) {
	l.logger.Warn(msg, fields)
}

func (l *loggerAdapter) Error(msg string, fields map[string]interface{}) {
	l.logger.Error(msg, fields)
}
