package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/khoahotran/career-navigator/internal/application/service"
	"github.com/khoahotran/career-navigator/internal/domain/user"
	"github.com/khoahotran/career-navigator/pkg/apperror"
	"github.com/khoahotran/career-navigator/pkg/auth"
	"github.com/khoahotran/career-navigator/pkg/logger"
)

type OAuthStartUseCase struct {
	provider service.OAuthProvider
	sessions service.SessionStore
	stateTTL time.Duration
	logger   logger.Logger
}

func NewOAuthStartUseCase(p service.OAuthProvider, s service.SessionStore, stateTTL time.Duration, log logger.Logger) *OAuthStartUseCase {
	return &OAuthStartUseCase{provider: p, sessions: s, stateTTL: stateTTL, logger: log}
}

type OAuthStartOutput struct {
	URL   string
	State string
}

func (uc *OAuthStartUseCase) Execute(ctx context.Context) (*OAuthStartOutput, error) {
	ctx, span := tracer.Start(ctx, "OAuthStart")
	defer span.End()

	state := uuid.NewString()
	if err := uc.sessions.SaveOAuthState(ctx, state, uc.stateTTL); err != nil {
		span.RecordError(err)
		uc.logger.Error("Failed to save oauth state", err)
		return nil, apperror.NewInternal("failed to start oauth flow", err)
	}
	return &OAuthStartOutput{URL: uc.provider.AuthCodeURL(state), State: state}, nil
}

type OAuthCallbackUseCase struct {
	provider service.OAuthProvider
	sessions service.SessionStore
	userRepo user.Repository
	jwtSvc   *auth.JWTService
	logger   logger.Logger
}

func NewOAuthCallbackUseCase(
	p service.OAuthProvider,
	s service.SessionStore,
	repo user.Repository,
	jwtSvc *auth.JWTService,
	log logger.Logger,
) *OAuthCallbackUseCase {
	return &OAuthCallbackUseCase{provider: p, sessions: s, userRepo: repo, jwtSvc: jwtSvc, logger: log}
}

type OAuthCallbackInput struct {
	State string
	Code  string
}

func (uc *OAuthCallbackUseCase) Execute(ctx context.Context, input OAuthCallbackInput) (*TokenOutput, error) {
	ctx, span := tracer.Start(ctx, "OAuthCallback")
	defer span.End()

	if input.State == "" || input.Code == "" {
		return nil, apperror.NewInvalidInput("state and code are required", nil)
	}

	ok, err := uc.sessions.ConsumeOAuthState(ctx, input.State)
	if err != nil {
		span.RecordError(err)
		return nil, apperror.NewInternal("failed to verify oauth state", err)
	}
	if !ok {
		return nil, apperror.NewUnauthorized("Sign-in session expired, please try again", nil)
	}

	profile, err := uc.provider.Exchange(ctx, input.Code)
	if err != nil {
		span.RecordError(err)
		uc.logger.Warn("OAuth code exchange failed", zap.Error(err))
		return nil, apperror.NewUnauthorized("Google sign-in failed", err)
	}

	u, err := uc.findOrCreate(ctx, profile)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return issueToken(uc.jwtSvc, u)
}

func (uc *OAuthCallbackUseCase) findOrCreate(ctx context.Context, profile *service.OAuthProfile) (*user.User, error) {
	email := user.NormalizeEmail(profile.Email)

	u, err := uc.userRepo.FindByEmail(ctx, email)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, user.ErrUserNotFound) {
		return nil, apperror.NewInternal("failed to find user", err)
	}

	u = &user.User{
		ID:        uuid.New(),
		Email:     email,
		Provider:  user.ProviderGoogle,
		CreatedAt: time.Now().UTC(),
	}
	if name := strings.TrimSpace(profile.Name); name != "" {
		u.Name = &name
	}

	if err := uc.userRepo.Save(ctx, u); err != nil {
		// Lost a race with a concurrent first sign-in.
		if errors.Is(err, user.ErrEmailTaken) {
			existing, findErr := uc.userRepo.FindByEmail(ctx, email)
			if findErr != nil {
				return nil, apperror.NewInternal("failed to find user", findErr)
			}
			return existing, nil
		}
		return nil, apperror.NewInternal("failed to save user", err)
	}

	uc.logger.Info("User registered via google", zap.String("user_id", u.ID.String()))
	return u, nil
}
