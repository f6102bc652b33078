package ktxclient

import (
	"errors"
	"net/http"

	"github.com/ktxhub/ktxclient/session"
	"github.com/ktxhub/ktxclient/transport"
	"github.com/redis/go-redis/v9"
)

// NotifyFunc surfaces a user-visible notice (the session-expired message).
type NotifyFunc func(message string)

// NavigateFunc performs a page navigation. Called once at most, as the
// terminal step of the auth-failure interrupt.
type NavigateFunc func(target string)

// Builder assembles a [Client].
//
// Builder instances are intended to be configured during initialization and
// then treated as immutable unless documented otherwise.
type Builder struct {
	config     Config
	redis      redis.UniversalClient
	httpClient *http.Client
	auditSink  AuditSink
	notify     NotifyFunc
	navigate   NavigateFunc

	built bool
}

// New returns a [Builder] seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the entire configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithBaseURL sets Endpoint.BaseURL on the current configuration.
func (b *Builder) WithBaseURL(baseURL string) *Builder {
	b.config.Endpoint.BaseURL = baseURL
	return b
}

// WithRedis sets the Redis client backing the session store.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithHTTPClient sets the http.Client used for all outbound requests.
// Timeouts and proxies belong to this client; ktxclient adds none.
func (b *Builder) WithHTTPClient(client *http.Client) *Builder {
	b.httpClient = client
	return b
}

// WithAuditSink sets the audit sink and enables auditing.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	b.config.Audit.Enabled = sink != nil
	return b
}

// WithNotifier sets the hook that surfaces the session-expired notice.
func (b *Builder) WithNotifier(notify NotifyFunc) *Builder {
	b.notify = notify
	return b
}

// WithNavigator sets the hook that performs the logout redirect.
func (b *Builder) WithNavigator(navigate NavigateFunc) *Builder {
	b.navigate = navigate
	return b
}

// WithMetricsEnabled toggles metrics collection.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles the request latency histogram.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and wires the client. A Builder can
// build once.
func (b *Builder) Build() (*Client, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if b.redis == nil {
		return nil, errors.New("redis client required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		config:   cfg,
		store:    session.NewStore(b.redis, cfg.Session.Namespace),
		audit:    newAuditDispatcher(cfg.Audit, b.auditSink),
		metrics:  NewMetrics(cfg.Metrics),
		notify:   b.notify,
		navigate: b.navigate,
	}

	// -------- AUTHENTICATED DISPATCHER --------
	// Credential resolution and the one-shot interrupt close over the
	// client so the dispatcher stays storage-agnostic.
	api, err := transport.New(cfg.Endpoint.BaseURL, b.httpClient, c.credentialSource, c.handleAuthFailure)
	if err != nil {
		return nil, err
	}
	c.api = api

	// -------- AUTH BOUNDARY DISPATCHER --------
	// Login and register talk to the token endpoints anonymously; a 401
	// there means bad credentials, not an expired session, so this
	// dispatcher carries no credential source and no interceptor.
	authAPI, err := transport.New(cfg.Endpoint.BaseURL, b.httpClient, nil, nil)
	if err != nil {
		return nil, err
	}
	c.authAPI = authAPI

	b.built = true

	return c, nil
}
