// Package session maps bearer tokens to cart ids. The storefront does not
// own authentication; it only needs to know which cart a caller may mutate.
package session

import "context"

// Store issues and resolves session tokens.
type Store interface {
	NewSession(ctx context.Context, cartID string) (string, error)
	CartID(ctx context.Context, token string) (string, bool, error)
	DeleteSession(ctx context.Context, token string) error
}
