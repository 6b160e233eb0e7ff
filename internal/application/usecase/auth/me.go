package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/khoahotran/career-navigator/internal/domain/user"
	"github.com/khoahotran/career-navigator/pkg/apperror"
)

type MeUseCase struct {
	userRepo user.Repository
}

func NewMeUseCase(repo user.Repository) *MeUseCase {
	return &MeUseCase{userRepo: repo}
}

func (uc *MeUseCase) Execute(ctx context.Context, userID uuid.UUID) (*user.User, error) {
	u, err := uc.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			// The token outlived its account.
			return nil, apperror.NewUnauthorized("Session is no longer valid", err)
		}
		return nil, apperror.NewInternal("failed to load user", err)
	}
	return u, nil
}
