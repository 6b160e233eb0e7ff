package auth

import (
	"context"
	"time"

	"github.com/khoahotran/career-navigator/internal/application/service"
	"github.com/khoahotran/career-navigator/pkg/apperror"
	"github.com/khoahotran/career-navigator/pkg/logger"
)

type LogoutUseCase struct {
	sessions service.SessionStore
	logger   logger.Logger
}

func NewLogoutUseCase(s service.SessionStore, log logger.Logger) *LogoutUseCase {
	return &LogoutUseCase{sessions: s, logger: log}
}

type LogoutInput struct {
	TokenID   string
	ExpiresAt time.Time
}

func (uc *LogoutUseCase) Execute(ctx context.Context, input LogoutInput) error {
	ctx, span := tracer.Start(ctx, "Logout")
	defer span.End()

	if input.TokenID == "" {
		return apperror.NewInvalidInput("token has no id", nil)
	}
	if err := uc.sessions.RevokeToken(ctx, input.TokenID, input.ExpiresAt); err != nil {
		span.RecordError(err)
		uc.logger.Error("Failed to revoke token", err)
		return apperror.NewInternal("failed to revoke token", err)
	}
	return nil
}
