package ktxclient

import (
	"context"
	"time"

	"github.com/ktxhub/ktxclient/session"
	"github.com/ktxhub/ktxclient/transport"
)

// Client is the assembled session layer: store, resolver, authenticated
// dispatcher, login flow, and identity propagation. Construct through
// [Builder.Build]; safe for concurrent use afterwards.
type Client struct {
	config   Config
	store    *session.Store
	api      *transport.Dispatcher
	authAPI  *transport.Dispatcher
	audit    *auditDispatcher
	metrics  *Metrics
	notify   NotifyFunc
	navigate NavigateFunc
}

// Close flushes and stops the audit dispatcher. The Redis and HTTP clients
// are owned by the caller and stay open.
func (c *Client) Close() {
	if c == nil {
		return
	}
	if c.audit != nil {
		c.audit.Close()
	}
}

// State reports the dispatcher lifecycle state: StateLoggedOut after the
// one-shot auth-failure interrupt has fired.
func (c *Client) State() transport.State {
	if c == nil || c.api == nil {
		return transport.StateActive
	}
	return c.api.State()
}

// AuditDropped returns the number of audit events dropped under
// back-pressure.
func (c *Client) AuditDropped() uint64 {
	if c == nil || c.audit == nil {
		return 0
	}
	return c.audit.Dropped()
}

// Health is a point-in-time view of the client's dependencies.
type Health struct {
	StoreReachable bool
	StoreError     string
	State          transport.State
	AuditDropped   uint64
}

// CheckHealth probes the session store and reports the dispatcher state.
func (c *Client) CheckHealth(ctx context.Context) Health {
	if c == nil || c.store == nil {
		return Health{StoreError: ErrClientNotReady.Error()}
	}

	h := Health{
		StoreReachable: true,
		State:          c.State(),
		AuditDropped:   c.AuditDropped(),
	}
	if err := c.store.Ping(ctx); err != nil {
		h.StoreReachable = false
		h.StoreError = err.Error()
	}
	return h
}

// MetricsSnapshot returns a point-in-time copy of all metrics.
func (c *Client) MetricsSnapshot() MetricsSnapshot {
	if c == nil || c.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return c.metrics.Snapshot()
}

func (c *Client) metricInc(id MetricID) {
	if c == nil || c.metrics == nil {
		return
	}
	c.metrics.Inc(id)
}

func (c *Client) emit(ctx context.Context, event AuditEvent) {
	if c == nil || c.audit == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	c.audit.Emit(ctx, event)
}

// credentialSource resolves the active identity's credential for one
// outbound call. Resolution failures dispatch the request anonymously; the
// remote side answers 401 and the normal interception path takes over.
func (c *Client) credentialSource(ctx context.Context) (string, string) {
	identity, err := c.ActiveIdentity(ctx)
	if err != nil {
		return "", ""
	}
	rec, err := c.store.Read(ctx, identity)
	if err != nil {
		return identity, ""
	}
	return identity, rec.Credential
}

// handleAuthFailure is the one-shot interrupt body: notice, clear, redirect.
// It runs at most once per client lifetime, on the first 401/403.
func (c *Client) handleAuthFailure(ctx context.Context, identity string) {
	c.metricInc(MetricAuthFailureIntercept)

	// The triggering request's context may already be cancelled; the
	// cleanup must still land.
	ctx = context.WithoutCancel(ctx)

	c.emit(ctx, AuditEvent{
		EventType: EventAuthFailure,
		Identity:  identity,
		Success:   false,
		Error:     ErrUnauthorized.Error(),
	})

	if c.notify != nil {
		c.notify("Your session has expired. Please sign in again.")
	}

	if identity != "" {
		if err := c.store.Clear(ctx, identity); err == nil {
			c.metricInc(MetricSessionCleared)
		}
	}

	if c.navigate != nil {
		c.navigate(c.config.Routing.LoginSurface)
	}
}
