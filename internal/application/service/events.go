package service

import (
	"context"

	"github.com/khoahotran/career-navigator/adapters/event"
)

type EventPublisher interface {
	PublishAnalysisEvent(ctx context.Context, payload event.AnalysisEventPayload) error
	PublishProgressEvent(ctx context.Context, payload event.ProgressEventPayload) error
}
