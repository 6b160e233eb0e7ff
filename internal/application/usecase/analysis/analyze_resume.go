package analysis

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/khoahotran/career-navigator/adapters/event"
	"github.com/khoahotran/career-navigator/internal/application/service"
	"github.com/khoahotran/career-navigator/internal/domain/analysis"
	"github.com/khoahotran/career-navigator/internal/domain/progress"
	"github.com/khoahotran/career-navigator/pkg/apperror"
	"github.com/khoahotran/career-navigator/pkg/logger"
	"github.com/khoahotran/career-navigator/pkg/metrics"
)

const pdfMIME = "application/pdf"

var tracer = otel.Tracer("analysis_usecase")

type AnalyzeResumeUseCase struct {
	analyzer       service.ResumeAnalyzer
	normalizer     analysis.Normalizer
	progressRepo   progress.Repository
	uploader       service.Uploader
	publisher      service.EventPublisher
	maxResumeBytes int64
	logger         logger.Logger
	now            func() time.Time
}

// NewAnalyzeResumeUseCase wires the analysis flow. uploader may be nil, in
// which case resumes are not archived.
func NewAnalyzeResumeUseCase(
	analyzer service.ResumeAnalyzer,
	normalizer analysis.Normalizer,
	repo progress.Repository,
	uploader service.Uploader,
	publisher service.EventPublisher,
	maxResumeBytes int64,
	log logger.Logger,
) *AnalyzeResumeUseCase {
	return &AnalyzeResumeUseCase{
		analyzer:       analyzer,
		normalizer:     normalizer,
		progressRepo:   repo,
		uploader:       uploader,
		publisher:      publisher,
		maxResumeBytes: maxResumeBytes,
		logger:         log,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

type AnalyzeResumeInput struct {
	UserID      uuid.UUID
	Filename    string
	ContentType string
	Resume      []byte
	TargetRole  string
}

type AnalyzeResumeOutput struct {
	Result   *analysis.AnalysisResult
	Progress *progress.UserProgress
}

func (uc *AnalyzeResumeUseCase) Execute(ctx context.Context, input AnalyzeResumeInput) (*AnalyzeResumeOutput, error) {
	ctx, span := tracer.Start(ctx, "AnalyzeResume")
	defer span.End()
	span.SetAttributes(
		attribute.String("user_id", input.UserID.String()),
		attribute.String("target_role", input.TargetRole),
		attribute.Int("resume_bytes", len(input.Resume)),
	)

	if err := uc.validate(input); err != nil {
		metrics.AnalysesTotal.WithLabelValues(metrics.OutcomeInvalid).Inc()
		return nil, err
	}

	raw, err := uc.analyzer.Analyze(ctx, input.Resume, input.Filename, input.TargetRole)
	if err != nil {
		span.RecordError(err)
		uc.logger.Error("Analysis service call failed", err, zap.String("user_id", input.UserID.String()))
		metrics.AnalysesTotal.WithLabelValues(metrics.OutcomeBackendError).Inc()
		return nil, apperror.NewBadGateway("analysis service call failed", err)
	}

	result, err := uc.normalizer.Normalize(*raw, input.TargetRole)
	if err != nil {
		span.RecordError(err)
		uc.logger.Error("Analysis service returned a malformed response", err, zap.String("user_id", input.UserID.String()))
		metrics.AnalysesTotal.WithLabelValues(metrics.OutcomeBackendError).Inc()
		return nil, apperror.NewBadGateway("malformed analysis response", err)
	}

	archive := uc.archive(ctx, input)

	p := progress.NewFromAnalysis(input.UserID, result, archive, uc.now())
	if err := uc.progressRepo.SaveAnalysis(ctx, p); err != nil {
		span.RecordError(err)
		uc.logger.Error("Failed to save analysis", err, zap.String("user_id", input.UserID.String()))
		metrics.AnalysesTotal.WithLabelValues(metrics.OutcomePersistenceFail).Inc()
		if archive.PublicID != "" {
			go uc.uploader.Delete(context.Background(), archive.PublicID)
		}
		return nil, apperror.NewInternal("failed to save analysis", err)
	}

	metrics.AnalysesTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
	metrics.ReadinessScore.Observe(float64(result.ReadinessScore))
	span.SetAttributes(attribute.Int("readiness_score", result.ReadinessScore))

	go func() {
		payload := event.AnalysisEventPayload{
			EventType:      event.AnalysisEventTypeCompleted,
			UserID:         input.UserID,
			TargetRole:     result.TargetRole,
			ReadinessScore: result.ReadinessScore,
			ResumePublicID: archive.PublicID,
			OccurredAt:     p.UpdatedAt,
		}
		if err := uc.publisher.PublishAnalysisEvent(context.Background(), payload); err != nil {
			uc.logger.Error("Failed to publish Kafka 'analysis.completed' event", err, zap.String("user_id", input.UserID.String()))
		}
	}()

	return &AnalyzeResumeOutput{Result: result, Progress: p}, nil
}

func (uc *AnalyzeResumeUseCase) validate(input AnalyzeResumeInput) error {
	if err := analysis.ValidateTargetRole(input.TargetRole); err != nil {
		if errors.Is(err, analysis.ErrRoleRequired) {
			return apperror.NewInvalidInput("Please select a target role", err)
		}
		return apperror.NewInvalidInput(fmt.Sprintf("Unsupported target role '%s'", input.TargetRole), err)
	}
	if len(input.Resume) == 0 {
		return apperror.NewInvalidInput("Please upload a resume", nil)
	}
	if uc.maxResumeBytes > 0 && int64(len(input.Resume)) > uc.maxResumeBytes {
		return apperror.NewInvalidInput(fmt.Sprintf("Resume must be at most %d MB", uc.maxResumeBytes>>20), nil)
	}

	declared := strings.TrimSpace(strings.Split(input.ContentType, ";")[0])
	if declared != "" && declared != pdfMIME && declared != "application/octet-stream" {
		return apperror.NewInvalidInput("Please upload a PDF file", nil)
	}
	if !mimetype.Detect(input.Resume).Is(pdfMIME) {
		return apperror.NewInvalidInput("Please upload a PDF file", nil)
	}
	return nil
}

// archive stores the resume for later preview. Failures are logged only.
func (uc *AnalyzeResumeUseCase) archive(ctx context.Context, input AnalyzeResumeInput) progress.ResumeArchive {
	if uc.uploader == nil {
		return progress.ResumeArchive{}
	}

	folder := fmt.Sprintf("users/%s/resumes", input.UserID.String())
	id := uuid.NewString()

	url, err := uc.uploader.Upload(ctx, bytes.NewReader(input.Resume), folder, id)
	if err != nil {
		uc.logger.Warn("Failed to archive resume", zap.String("user_id", input.UserID.String()), zap.Error(err))
		return progress.ResumeArchive{}
	}
	return progress.ResumeArchive{PublicID: folder + "/" + id, URL: url}
}
