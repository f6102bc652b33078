package ktxclient

import "context"

type identitySelectorContextKey struct{}

// WithIdentitySelector attaches an explicit identity selector to ctx,
// typically parsed from the current navigation target's query parameter.
// A selector present on the context takes precedence over the store's
// last-active pointer, which is what lets two tabs operate as two
// different identities against one shared store.
func WithIdentitySelector(ctx context.Context, identity string) context.Context {
	return context.WithValue(ctx, identitySelectorContextKey{}, identity)
}

func identitySelectorFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	identity, _ := ctx.Value(identitySelectorContextKey{}).(string)
	return identity
}
