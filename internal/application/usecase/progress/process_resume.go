package progress

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/khoahotran/career-navigator/adapters/event"
	"github.com/khoahotran/career-navigator/internal/application/service"
	"github.com/khoahotran/career-navigator/internal/domain/progress"
	"github.com/khoahotran/career-navigator/pkg/logger"
)

// ProcessResumeUseCase runs in the worker: it attaches a page-1 preview to the
// archived resume of a completed analysis.
type ProcessResumeUseCase struct {
	progressRepo progress.Repository
	uploader     service.Uploader
	logger       logger.Logger
}

func NewProcessResumeUseCase(repo progress.Repository, up service.Uploader, log logger.Logger) *ProcessResumeUseCase {
	return &ProcessResumeUseCase{progressRepo: repo, uploader: up, logger: log}
}

func (uc *ProcessResumeUseCase) Execute(ctx context.Context, payload event.AnalysisEventPayload) error {
	log := uc.logger.With(zap.String("user_id", payload.UserID.String()))

	if payload.EventType != event.AnalysisEventTypeCompleted {
		log.Warn("Unknown analysis event type, skip.", zap.String("event_type", string(payload.EventType)))
		return nil
	}
	if payload.ResumePublicID == "" {
		log.Info("No archived resume, skip.")
		return nil
	}

	previewURL, err := uc.uploader.PreviewURL(payload.ResumePublicID)
	if err != nil {
		return fmt.Errorf("build preview URL failed: %w", err)
	}

	if err := uc.progressRepo.UpdateResumePreview(ctx, payload.UserID, payload.ResumePublicID, previewURL); err != nil {
		if errors.Is(err, progress.ErrProgressNotFound) {
			log.Info("Resume was replaced by a newer analysis, skip.", zap.String("public_id", payload.ResumePublicID))
			return nil
		}
		return fmt.Errorf("update resume preview failed: %w", err)
	}

	log.Info("Updated resume preview.", zap.String("public_id", payload.ResumePublicID))
	return nil
}
