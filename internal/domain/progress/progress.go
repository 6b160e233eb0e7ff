package progress

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/khoahotran/career-navigator/internal/domain/analysis"
)

const MaxReadinessScore = 100

var (
	ErrProgressNotFound = errors.New("progress not found")
	ErrVersionConflict  = errors.New("progress was modified concurrently")
)

// ResumeArchive points at the stored copy of the resume behind LastAnalysis.
type ResumeArchive struct {
	PublicID   string `json:"public_id,omitempty"`
	URL        string `json:"url,omitempty"`
	PreviewURL string `json:"preview_url,omitempty"`
}

type UserProgress struct {
	UserID                uuid.UUID                `json:"user_id"`
	LastAnalysis          *analysis.AnalysisResult `json:"last_analysis"`
	CompletedCheckpoints  []string                 `json:"completed_checkpoints"`
	UpdatedReadinessScore int                      `json:"updated_readiness_score"`
	Resume                ResumeArchive            `json:"resume"`
	Version               int64                    `json:"version"`
	UpdatedAt             time.Time                `json:"updated_at"`
}

// NewFromAnalysis builds the record written when a new analysis is saved. It
// replaces any previous progress, so the score may go down here. The stored
// score is kept within [0, MaxReadinessScore] even for unclamped results.
func NewFromAnalysis(userID uuid.UUID, result *analysis.AnalysisResult, resume ResumeArchive, now time.Time) *UserProgress {
	return &UserProgress{
		UserID:                userID,
		LastAnalysis:          result,
		CompletedCheckpoints:  []string{},
		UpdatedReadinessScore: min(MaxReadinessScore, max(0, result.ReadinessScore)),
		Resume:                resume,
		UpdatedAt:             now,
	}
}

func (p UserProgress) IsCompleted(checkpointID string) bool {
	for _, id := range p.CompletedCheckpoints {
		if id == checkpointID {
			return true
		}
	}
	return false
}

// CompleteCheckpoint marks checkpointID complete and raises the score by
// impact, capped at MaxReadinessScore. Completing an id twice is a no-op.
// Negative impact counts as zero, so the score never decreases.
func CompleteCheckpoint(p UserProgress, checkpointID string, impact int, now time.Time) UserProgress {
	if p.IsCompleted(checkpointID) {
		return p
	}

	completed := make([]string, len(p.CompletedCheckpoints), len(p.CompletedCheckpoints)+1)
	copy(completed, p.CompletedCheckpoints)
	p.CompletedCheckpoints = append(completed, checkpointID)

	if impact < 0 {
		impact = 0
	}
	p.UpdatedReadinessScore = min(MaxReadinessScore, p.UpdatedReadinessScore+impact)
	p.UpdatedAt = now
	return p
}

type Repository interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*UserProgress, error)
	// SaveAnalysis creates or fully replaces the user's record and bumps Version.
	SaveAnalysis(ctx context.Context, p *UserProgress) error
	// UpdateCheckpoints writes completions and score only if the stored version
	// still equals expectedVersion, otherwise ErrVersionConflict.
	UpdateCheckpoints(ctx context.Context, p *UserProgress, expectedVersion int64) error
	// UpdateResumePreview sets the preview only while publicID is still current.
	UpdateResumePreview(ctx context.Context, userID uuid.UUID, publicID, previewURL string) error
}
