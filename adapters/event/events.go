package event

import (
	"time"

	"github.com/google/uuid"
)

type AnalysisEventType string

const (
	AnalysisEventTypeCompleted AnalysisEventType = "analysis.completed"
)

type AnalysisEventPayload struct {
	EventType      AnalysisEventType `json:"event_type"`
	UserID         uuid.UUID         `json:"user_id"`
	TargetRole     string            `json:"target_role"`
	ReadinessScore int               `json:"readiness_score"`
	ResumePublicID string            `json:"resume_public_id,omitempty"`
	OccurredAt     time.Time         `json:"occurred_at"`
}

type ProgressEventType string

const (
	ProgressEventTypeCheckpointCompleted ProgressEventType = "checkpoint.completed"
)

type ProgressEventPayload struct {
	EventType             ProgressEventType `json:"event_type"`
	UserID                uuid.UUID         `json:"user_id"`
	CheckpointID          string            `json:"checkpoint_id"`
	UpdatedReadinessScore int               `json:"updated_readiness_score"`
	OccurredAt            time.Time         `json:"occurred_at"`
}
