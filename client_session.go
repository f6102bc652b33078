package ktxclient

import (
	"context"
	"errors"
	"strings"

	"github.com/ktxhub/ktxclient/session"
	"github.com/ktxhub/ktxclient/token"
)

// ActiveIdentity resolves which identity is active for this call: an
// explicit selector on ctx (see [WithIdentitySelector]) wins, the store's
// last-active pointer is the fallback. Returns [ErrNoActiveIdentity] when
// neither source yields a value.
func (c *Client) ActiveIdentity(ctx context.Context) (string, error) {
	if c == nil || c.store == nil {
		return "", ErrClientNotReady
	}

	if selector := strings.TrimSpace(identitySelectorFromContext(ctx)); selector != "" {
		return selector, nil
	}

	last, err := c.store.LastActive(ctx)
	if err != nil {
		return "", err
	}
	if last == "" {
		return "", ErrNoActiveIdentity
	}
	return last, nil
}

// Context resolves the active identity and reads its stored record. This is
// the single source of truth the other components query; it never caches
// across calls. Returns [ErrNoActiveIdentity] when no identity resolves and
// [ErrSessionNotFound] when the resolved identity holds no record.
func (c *Client) Context(ctx context.Context) (SessionContext, error) {
	identity, err := c.ActiveIdentity(ctx)
	if err != nil {
		return SessionContext{}, err
	}

	rec, err := c.store.Read(ctx, identity)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return SessionContext{}, ErrSessionNotFound
		}
		return SessionContext{}, err
	}

	return SessionContext{
		Identity:   identity,
		Credential: rec.Credential,
		Profile:    rec.Profile,
	}, nil
}

// SetActive points the last-active pointer at identity, which must hold a
// live session record. Used right after login and by session switchers.
func (c *Client) SetActive(ctx context.Context, identity string) error {
	if c == nil || c.store == nil {
		return ErrClientNotReady
	}

	if err := c.store.SetLastActive(ctx, identity); err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return ErrSessionNotFound
		}
		return err
	}

	c.metricInc(MetricIdentitySwitch)
	c.emit(ctx, AuditEvent{
		EventType: EventIdentitySwitch,
		Identity:  identity,
		Success:   true,
	})
	return nil
}

// Sessions lists every identity holding a record, sorted ascending, with
// role and token expiry annotations for session-switcher rendering.
func (c *Client) Sessions(ctx context.Context) ([]SessionInfo, error) {
	if c == nil || c.store == nil {
		return nil, ErrClientNotReady
	}

	identities, err := c.store.List(ctx)
	if err != nil {
		return nil, err
	}

	active, _ := c.ActiveIdentity(ctx)

	infos := make([]SessionInfo, 0, len(identities))
	for _, identity := range identities {
		rec, err := c.store.Read(ctx, identity)
		if err != nil {
			// Cleared between List and Read; not an error for the listing.
			if errors.Is(err, session.ErrNotFound) {
				continue
			}
			return nil, err
		}

		info := SessionInfo{
			Identity: identity,
			Role:     rec.Profile.Role,
			FullName: rec.Profile.FullName,
			Active:   identity == active,
		}
		if claims, err := token.Inspect(rec.Credential); err == nil {
			info.ExpiresAt = claims.ExpiresAt
		}
		infos = append(infos, info)
	}

	return infos, nil
}

// Logout clears the active identity's session record. The last-active
// pointer goes with it when it names this identity.
func (c *Client) Logout(ctx context.Context) error {
	identity, err := c.ActiveIdentity(ctx)
	if err != nil {
		return err
	}
	return c.LogoutIdentity(ctx, identity)
}

// LogoutIdentity clears the named identity's session record. No-op when
// the identity holds no record; other identities are never touched.
func (c *Client) LogoutIdentity(ctx context.Context, identity string) error {
	if c == nil || c.store == nil {
		return ErrClientNotReady
	}

	if err := c.store.Clear(ctx, identity); err != nil {
		return err
	}

	c.metricInc(MetricSessionCleared)
	c.emit(ctx, AuditEvent{
		EventType: EventSessionCleared,
		Identity:  identity,
		Success:   true,
	})
	return nil
}
