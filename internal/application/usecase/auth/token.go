package auth

import (
	"time"

	"go.opentelemetry.io/otel"

	"github.com/khoahotran/career-navigator/internal/domain/user"
	"github.com/khoahotran/career-navigator/pkg/apperror"
	"github.com/khoahotran/career-navigator/pkg/auth"
)

var tracer = otel.Tracer("auth_usecase")

// TokenOutput is returned by every use case that signs a user in.
type TokenOutput struct {
	AccessToken string
	ExpiresAt   time.Time
	User        *user.User
}

func issueToken(jwtSvc *auth.JWTService, u *user.User) (*TokenOutput, error) {
	token, err := jwtSvc.GenerateToken(u.ID)
	if err != nil {
		return nil, apperror.NewInternal("failed to generate token", err)
	}
	return &TokenOutput{AccessToken: token.AccessToken, ExpiresAt: token.ExpiresAt, User: u}, nil
}
