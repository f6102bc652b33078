package ktxclient

import (
	"errors"
	"net/url"
	"strings"
)

// Config defines the full client configuration.
//
// Config instances are intended to be configured during initialization and
// then treated as immutable unless documented otherwise.
type Config struct {
	Endpoint EndpointConfig
	Session  SessionConfig
	Routing  RoutingConfig
	Audit    AuditConfig
	Metrics  MetricsConfig
}

/*
====================================
ENDPOINT CONFIG
====================================
*/

// EndpointConfig locates the remote API. BaseURL is the only required
// field; the path fields default to the ktx backend layout.
type EndpointConfig struct {
	BaseURL      string
	TokenPath    string
	ProfilePath  string
	RegisterPath string
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig controls the persistent keyspace shared by all identities.
// Namespace prefixes every key: "<ns>:token:<identity>",
// "<ns>:user:<identity>", "<ns>:lastActiveUser".
type SessionConfig struct {
	Namespace string
}

/*
====================================
ROUTING CONFIG
====================================
*/

// RoutingConfig maps a profile role to its landing surface after login and
// names the query parameter that carries the identity selector across
// navigation. AdminRole defaults to "admin"; every other role lands on
// MemberLanding.
type RoutingConfig struct {
	SelectorParam string
	AdminRole     string
	AdminLanding  string
	MemberLanding string
	LoginSurface  string
}

// AuditConfig controls the asynchronous audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls the in-process metrics system.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns the configuration matching the original ktx
// frontend layout. Endpoint.BaseURL must still be supplied by the caller.
func DefaultConfig() Config {
	return Config{
		Endpoint: EndpointConfig{
			TokenPath:    "/auth/token",
			ProfilePath:  "/auth/users/me",
			RegisterPath: "/auth/register",
		},
		Session: SessionConfig{
			Namespace: "ktx",
		},
		Routing: RoutingConfig{
			SelectorParam: "u",
			AdminRole:     "admin",
			AdminLanding:  "/admin/admin.html",
			MemberLanding: "/student/student.html",
			LoginSurface:  "/common/login.html",
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	// All fields are value types today; the copy exists so later slice or
	// map fields cannot alias a caller-held Config.
	return cfg
}

/*
====================================
VALIDATION
====================================
*/

// Validate reports the first structural problem in the configuration.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Endpoint.BaseURL) == "" {
		return errors.New("endpoint base URL required")
	}
	u, err := url.Parse(c.Endpoint.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New("endpoint base URL must be absolute")
	}
	if !strings.HasPrefix(c.Endpoint.TokenPath, "/") {
		return errors.New("token path must be rooted")
	}
	if !strings.HasPrefix(c.Endpoint.ProfilePath, "/") {
		return errors.New("profile path must be rooted")
	}
	if c.Endpoint.RegisterPath != "" && !strings.HasPrefix(c.Endpoint.RegisterPath, "/") {
		return errors.New("register path must be rooted")
	}

	ns := c.Session.Namespace
	if strings.TrimSpace(ns) == "" {
		return errors.New("session namespace required")
	}
	if strings.Contains(ns, ":") {
		return errors.New("session namespace must not contain ':'")
	}

	if strings.TrimSpace(c.Routing.SelectorParam) == "" {
		return errors.New("selector parameter required")
	}
	if c.Routing.AdminRole == "" {
		return errors.New("admin role required")
	}
	if c.Routing.AdminLanding == "" || c.Routing.MemberLanding == "" {
		return errors.New("landing surfaces required")
	}
	if c.Routing.LoginSurface == "" {
		return errors.New("login surface required")
	}

	if c.Audit.Enabled && c.Audit.BufferSize < 0 {
		return errors.New("audit buffer size must not be negative")
	}

	return nil
}
