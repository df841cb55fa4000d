package identity

import (
	"context"
	"errors"
)

// ErrClaimsNotFound is returned when the authentication layer has no claims
// for the user.
var ErrClaimsNotFound = errors.New("no claims for user")

// Provider reads and writes custom claims in the authentication layer.
// Token verification is not this engine's concern; only the admin claims
// surface is.
type Provider interface {
	GetClaims(ctx context.Context, userID string) (*Claims, error)
	SetClaims(ctx context.Context, userID string, claims Claims) error
}
