package constants

import "time"

// Endpoint defaults.
const (
	// DefaultBaseURL is the production API root, version prefix included.
	DefaultBaseURL = "https://karibu.briq.tz/v1"

	// Version is the library version reported in the User-Agent.
	Version = "0.3.0"

	// DefaultUserAgent is sent when Config.UserAgent is empty.
	DefaultUserAgent = "briq-go/" + Version
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default per-request timeout.
	DefaultHTTPTimeout = 30 * time.Second

	// ShortHTTPTimeout bounds the connectivity probe.
	ShortHTTPTimeout = 10 * time.Second

	// DialTimeout bounds establishing a TCP connection.
	DialTimeout = 10 * time.Second

	// IdleConnTimeout is how long idle pooled connections are kept.
	IdleConnTimeout = 90 * time.Second
)

// Connection pool sizing.
const (
	// DefaultMaxConnections is the default pool size per host.
	DefaultMaxConnections = 10
)

// Resource paths, relative to the base URL.
const (
	HealthPath           = "/health"
	WorkspacesPath       = "/workspaces"
	CampaignsPath        = "/campaigns"
	MessagesInstantPath  = "/messages/instant"
	MessagesCampaignPath = "/messages/campaign"
	MessagesLogsPath     = "/messages/logs"
	MessagesHistoryPath  = "/messages/history"
)

// Header names and values.
const (
	HeaderAuthorization = "Authorization"
	HeaderContentType   = "Content-Type"
	HeaderAccept        = "Accept"
	HeaderUserAgent     = "User-Agent"
	HeaderRequestID     = "X-Request-ID"
	HeaderRetryAfter    = "Retry-After"

	ContentTypeJSON = "application/json"
)

// Configuration keys understood by the env/config-file loader.
const (
	EnvPrefix            = "BRIQ"
	ConfigKeyAPIKey      = "api_key"
	ConfigKeyBaseURL     = "base_url"
	ConfigKeyTimeout     = "timeout_seconds"
	ConfigKeyMaxConns    = "max_connections"
	ConfigKeyUserAgent   = "user_agent"
	ConfigKeyDebug       = "debug"
	DefaultDotEnvFile    = ".env"
	DefaultConfigName    = "briq"
	DefaultConfigDirName = ".briq"
)

// Telemetry names.
const (
	TracerName       = "github.com/elusion/briq-go"
	MetricsNamespace = "briq_client"
)
