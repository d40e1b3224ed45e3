package auth

import "context"

// APIKeyInfo holds the identity behind a validated API key. The key's ID is
// the customer identity: it keys carts, checkout attempts, and progress.
type APIKeyInfo struct {
	ID      string
	KeyHash string
	Name    string
	Scopes  []string
}

// Repository provides lookup of API keys by their HMAC hash.
type Repository interface {
	FindByHash(ctx context.Context, hash string) (*APIKeyInfo, error)
}

type infoKey struct{}

// WithInfo stores the authenticated key info in the context.
func WithInfo(ctx context.Context, info *APIKeyInfo) context.Context {
	return context.WithValue(ctx, infoKey{}, info)
}

// FromContext returns the authenticated key info, or nil when the request
// was not authenticated.
func FromContext(ctx context.Context) *APIKeyInfo {
	info, _ := ctx.Value(infoKey{}).(*APIKeyInfo)
	return info
}
