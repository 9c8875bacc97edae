package briq

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
)

// WorkspacesClient manages workspaces.
type WorkspacesClient interface {
	Create(ctx context.Context, input *WorkspaceCreate) (*Workspace, error)
	List(ctx context.Context, params *WorkspaceListParams) (*PaginatedResponse[Workspace], error)
	Get(ctx context.Context, id string) (*Workspace, error)
	Update(ctx context.Context, id string, input *WorkspaceUpdate) (*Workspace, error)
	Delete(ctx context.Context, id string) error
}

// CampaignsClient manages campaigns.
type CampaignsClient interface {
	Create(ctx context.Context, input *CampaignCreate) (*Campaign, error)
	List(ctx context.Context, params *CampaignListParams) (*PaginatedResponse[Campaign], error)
	Get(ctx context.Context, id string) (*Campaign, error)
	Update(ctx context.Context, id string, input *CampaignUpdate) (*Campaign, error)
	Delete(ctx context.Context, id string) error
}

// MessagesClient sends messages and reads delivery data.
type MessagesClient interface {
	SendInstant(ctx context.Context, input *InstantMessage) (*MessageResponse, error)
	SendCampaign(ctx context.Context, input *CampaignMessage) (*MessageResponse, error)
	GetLogs(ctx context.Context, params *MessageLogParams) (*PaginatedResponse[MessageLog], error)
	GetHistory(ctx context.Context, params *MessageHistoryParams) (*PaginatedResponse[MessageHistory], error)
}

// ResourceClients provides access to all resource-specific clients.
type ResourceClients interface {
	Workspaces() WorkspacesClient
	Campaigns() CampaignsClient
	Messages() MessagesClient
}

// SessionState is the lifecycle state of a Client.
type SessionState int

// Session states. A client moves forward only: Unopened, Open, Closed.
const (
	SessionUnopened SessionState = iota
	SessionOpen
	SessionClosed
)

func (s SessionState) String() string {
	switch s {
	case SessionUnopened:
		return "unopened"
	case SessionOpen:
		return "open"
	case SessionClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Client is the facade over one transport and the resource clients sharing
// it. Resource methods fail with ErrSessionClosed unless the client is open.
type Client interface {
	ResourceClients

	// Open acquires the connection pool. It may be called once.
	Open(ctx context.Context) error
	// Close releases the connection pool. Calling it again is a no-op.
	Close() error
	// State reports the lifecycle state.
	State() SessionState
	// TestConnection probes the API health endpoint. Unreachability is
	// reported in the status, not as an error.
	TestConnection(ctx context.Context) (*ConnectionStatus, error)
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Config represents client configuration.
//
// # Timeouts
//
// Timeout bounds every single request, measured from dispatch to the end of
// the body read. A context deadline passed to a method applies as well;
// whichever expires first wins.
//
// # Retries
//
// The client never retries on its own. Wrap calls with Retry to opt in.
type Config struct {
	// APIKey is sent as a bearer token on every request. Required.
	APIKey string
	// BaseURL is the API root including any version prefix. Defaults to the
	// production endpoint.
	BaseURL string
	// Timeout applies per request. Defaults to 30s.
	Timeout time.Duration
	// MaxConnections sizes the connection pool. Defaults to 10.
	MaxConnections int
	// UserAgent overrides the default User-Agent header.
	UserAgent string
	// Debug enables request/response logging when a Logger is provided.
	Debug bool
	// Logger is an optional structured logger.
	Logger Logger
	// RequestInterceptors run before each request is sent, in order.
	RequestInterceptors []RequestInterceptor
	// ResponseInterceptors run after each response is read, in order.
	ResponseInterceptors []ResponseInterceptor
	// MetricsRegisterer enables Prometheus request metrics when set.
	MetricsRegisterer prometheus.Registerer
	// TracerProvider is used for request spans. Defaults to the global provider.
	TracerProvider trace.TracerProvider
}
