package ktxclient

import (
	"context"
	"net/url"
	"strings"
)

// WithIdentity returns href with the active identity attached under the
// selector parameter. Existing query parameters and fragments are preserved;
// an existing selector value is replaced. When no identity resolves, or the
// href cannot be parsed, href is returned unchanged.
func (c *Client) WithIdentity(ctx context.Context, href string) string {
	identity, err := c.ActiveIdentity(ctx)
	if err != nil || identity == "" {
		return href
	}
	return attachSelector(href, c.config.Routing.SelectorParam, identity)
}

// RewriteLinks applies [Client.WithIdentity] to every link that opts in via
// KeepIdentity. Links without the flag pass through untouched, so external
// and identity-neutral destinations never leak the selector.
func (c *Client) RewriteLinks(ctx context.Context, links []Link) []string {
	identity, err := c.ActiveIdentity(ctx)

	out := make([]string, len(links))
	for i, link := range links {
		if link.KeepIdentity && err == nil && identity != "" {
			out[i] = attachSelector(link.Href, c.config.Routing.SelectorParam, identity)
			continue
		}
		out[i] = link.Href
	}
	return out
}

// ResolveAsset absolutizes a server-relative asset reference (an uploaded
// image URL, typically) against the endpoint base. Absolute URLs and empty
// strings pass through unchanged.
func (c *Client) ResolveAsset(raw string) string {
	if raw == "" {
		return ""
	}
	if u, err := url.Parse(raw); err == nil && u.IsAbs() {
		return raw
	}
	if !strings.HasPrefix(raw, "/") {
		raw = "/" + raw
	}
	return strings.TrimSuffix(c.config.Endpoint.BaseURL, "/") + raw
}

// SelectorFromURL extracts the identity selector from a raw URL, for
// surfaces that seed their context from the address bar. Empty when the
// parameter is absent or the URL does not parse.
func (c *Client) SelectorFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(u.Query().Get(c.config.Routing.SelectorParam))
}

// landingFor maps a role to its post-login destination and attaches the
// identity selector. Unknown roles land on the member surface.
func (c *Client) landingFor(role, identity string) string {
	landing := c.config.Routing.MemberLanding
	if role == c.config.Routing.AdminRole {
		landing = c.config.Routing.AdminLanding
	}
	return attachSelector(landing, c.config.Routing.SelectorParam, identity)
}

func attachSelector(href, param, identity string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	q := u.Query()
	q.Set(param, identity)
	u.RawQuery = q.Encode()
	return u.String()
}
