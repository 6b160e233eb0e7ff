package progress

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"

	"github.com/khoahotran/career-navigator/internal/domain/progress"
	"github.com/khoahotran/career-navigator/pkg/apperror"
	"github.com/khoahotran/career-navigator/pkg/logger"
)

var tracer = otel.Tracer("progress_usecase")

type GetProgressUseCase struct {
	progressRepo progress.Repository
	logger       logger.Logger
}

func NewGetProgressUseCase(repo progress.Repository, log logger.Logger) *GetProgressUseCase {
	return &GetProgressUseCase{progressRepo: repo, logger: log}
}

func (uc *GetProgressUseCase) Execute(ctx context.Context, userID uuid.UUID) (*progress.UserProgress, error) {
	ctx, span := tracer.Start(ctx, "GetProgress")
	defer span.End()

	p, err := uc.progressRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, progress.ErrProgressNotFound) {
			return nil, apperror.NewNotFound("progress", userID.String())
		}
		span.RecordError(err)
		uc.logger.Error("Failed to load progress", err)
		return nil, apperror.NewInternal("failed to load progress", err)
	}
	return p, nil
}
