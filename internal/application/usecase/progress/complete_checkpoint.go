package progress

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/khoahotran/career-navigator/adapters/event"
	"github.com/khoahotran/career-navigator/internal/application/service"
	"github.com/khoahotran/career-navigator/internal/domain/progress"
	"github.com/khoahotran/career-navigator/pkg/apperror"
	"github.com/khoahotran/career-navigator/pkg/logger"
	"github.com/khoahotran/career-navigator/pkg/metrics"
)

const maxWriteAttempts = 3

type CompleteCheckpointUseCase struct {
	progressRepo progress.Repository
	publisher    service.EventPublisher
	logger       logger.Logger
	now          func() time.Time
}

func NewCompleteCheckpointUseCase(repo progress.Repository, publisher service.EventPublisher, log logger.Logger) *CompleteCheckpointUseCase {
	return &CompleteCheckpointUseCase{
		progressRepo: repo,
		publisher:    publisher,
		logger:       log,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

type CompleteCheckpointInput struct {
	UserID       uuid.UUID
	CheckpointID string
}

type CompleteCheckpointOutput struct {
	UpdatedReadinessScore int
	CompletedCheckpoints  []string
	AlreadyCompleted      bool
}

func (uc *CompleteCheckpointUseCase) Execute(ctx context.Context, input CompleteCheckpointInput) (*CompleteCheckpointOutput, error) {
	ctx, span := tracer.Start(ctx, "CompleteCheckpoint")
	defer span.End()
	span.SetAttributes(
		attribute.String("user_id", input.UserID.String()),
		attribute.String("checkpoint_id", input.CheckpointID),
	)

	if input.CheckpointID == "" {
		return nil, apperror.NewInvalidInput("checkpoint id is required", nil)
	}

	for attempt := 1; attempt <= maxWriteAttempts; attempt++ {
		current, err := uc.progressRepo.GetByUserID(ctx, input.UserID)
		if err != nil {
			if errors.Is(err, progress.ErrProgressNotFound) {
				return nil, apperror.NewNotFound("progress", input.UserID.String())
			}
			span.RecordError(err)
			return nil, apperror.NewInternal("failed to load progress", err)
		}

		if current.LastAnalysis == nil {
			return nil, apperror.NewNotFound("checkpoint", input.CheckpointID)
		}
		cp, ok := current.LastAnalysis.Checkpoint(input.CheckpointID)
		if !ok {
			return nil, apperror.NewNotFound("checkpoint", input.CheckpointID)
		}

		if current.IsCompleted(input.CheckpointID) {
			return &CompleteCheckpointOutput{
				UpdatedReadinessScore: current.UpdatedReadinessScore,
				CompletedCheckpoints:  current.CompletedCheckpoints,
				AlreadyCompleted:      true,
			}, nil
		}

		next := progress.CompleteCheckpoint(*current, input.CheckpointID, cp.ImpactPercentage, uc.now())
		err = uc.progressRepo.UpdateCheckpoints(ctx, &next, current.Version)
		if err == nil {
			metrics.CheckpointsCompleted.Inc()
			uc.publish(input, next)
			return &CompleteCheckpointOutput{
				UpdatedReadinessScore: next.UpdatedReadinessScore,
				CompletedCheckpoints:  next.CompletedCheckpoints,
			}, nil
		}

		if !errors.Is(err, progress.ErrVersionConflict) {
			span.RecordError(err)
			uc.logger.Error("Failed to save checkpoint", err, zap.String("user_id", input.UserID.String()))
			return nil, apperror.NewInternal("failed to save checkpoint", err)
		}

		metrics.ProgressWriteConflicts.Inc()
		uc.logger.Warn("Progress write conflict, retrying",
			zap.String("user_id", input.UserID.String()),
			zap.Int("attempt", attempt),
		)
	}

	return nil, apperror.NewAppError(apperror.ErrConflict,
		"Progress was updated elsewhere, please retry",
		"exhausted optimistic write attempts", progress.ErrVersionConflict)
}

func (uc *CompleteCheckpointUseCase) publish(input CompleteCheckpointInput, p progress.UserProgress) {
	go func() {
		payload := event.ProgressEventPayload{
			EventType:             event.ProgressEventTypeCheckpointCompleted,
			UserID:                input.UserID,
			CheckpointID:          input.CheckpointID,
			UpdatedReadinessScore: p.UpdatedReadinessScore,
			OccurredAt:            p.UpdatedAt,
		}
		if err := uc.publisher.PublishProgressEvent(context.Background(), payload); err != nil {
			uc.logger.Error("Failed to publish Kafka 'checkpoint.completed' event", err, zap.String("user_id", input.UserID.String()))
		}
	}()
}
