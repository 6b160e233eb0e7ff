package service

import (
	"context"
	"time"
)

type SessionStore interface {
	// RevokeToken blacklists a token id until expiresAt.
	RevokeToken(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
	SaveOAuthState(ctx context.Context, state string, ttl time.Duration) error
	// ConsumeOAuthState reports whether state was issued, and deletes it.
	ConsumeOAuthState(ctx context.Context, state string) (bool, error)
}
