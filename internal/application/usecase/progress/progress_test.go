package progress

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/career-navigator/adapters/event"
	"github.com/khoahotran/career-navigator/internal/application/mocks"
	"github.com/khoahotran/career-navigator/internal/domain/analysis"
	"github.com/khoahotran/career-navigator/internal/domain/progress"
	"github.com/khoahotran/career-navigator/pkg/apperror"
	"github.com/khoahotran/career-navigator/pkg/logger"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func sampleProgress(userID uuid.UUID, score int, completed []string, version int64) *progress.UserProgress {
	return &progress.UserProgress{
		UserID: userID,
		LastAnalysis: &analysis.AnalysisResult{
			ReadinessScore: score,
			Roadmap: []analysis.Phase{
				{Phase: "Foundation (Week 1-2)", DaysRange: "1-14", Checkpoints: []analysis.Checkpoint{
					{ID: "cp_0", ImpactPercentage: 5},
					{ID: "cp_1", ImpactPercentage: 5},
				}},
				{Phase: "Intermediate (Week 3)", DaysRange: "15-21", Checkpoints: []analysis.Checkpoint{
					{ID: "cp_w3_0", ImpactPercentage: 7},
				}},
				{Phase: "Review (Week 4)", DaysRange: "22-30", Checkpoints: []analysis.Checkpoint{}},
			},
		},
		CompletedCheckpoints:  completed,
		UpdatedReadinessScore: score,
		Version:               version,
	}
}

func newCompleteUseCase(repo *mocks.ProgressRepository, pub *mocks.EventPublisher) *CompleteCheckpointUseCase {
	uc := NewCompleteCheckpointUseCase(repo, pub, logger.NewNopLogger())
	uc.now = func() time.Time { return fixedNow }
	return uc
}

func waitPublished(t *testing.T, p *mocks.EventPublisher) {
	t.Helper()
	select {
	case <-p.Published:
	case <-time.After(2 * time.Second):
		t.Fatal("event was not published")
	}
}

func TestGetProgress(t *testing.T) {
	repo := new(mocks.ProgressRepository)
	found, missing, broken := uuid.New(), uuid.New(), uuid.New()
	repo.On("GetByUserID", mock.Anything, found).Return(sampleProgress(found, 60, []string{}, 1), nil)
	repo.On("GetByUserID", mock.Anything, missing).Return(nil, progress.ErrProgressNotFound)
	repo.On("GetByUserID", mock.Anything, broken).Return(nil, errors.New("db down"))

	uc := NewGetProgressUseCase(repo, logger.NewNopLogger())

	p, err := uc.Execute(context.Background(), found)
	require.NoError(t, err)
	assert.Equal(t, 60, p.UpdatedReadinessScore)

	_, err = uc.Execute(context.Background(), missing)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = uc.Execute(context.Background(), broken)
	assert.ErrorIs(t, err, apperror.ErrInternal)
}

func TestCompleteCheckpoint_UsesStoredImpact(t *testing.T) {
	repo := new(mocks.ProgressRepository)
	pub := mocks.NewEventPublisher()
	userID := uuid.New()

	repo.On("GetByUserID", mock.Anything, userID).Return(sampleProgress(userID, 60, []string{}, 4), nil)
	repo.On("UpdateCheckpoints", mock.Anything, mock.MatchedBy(func(p *progress.UserProgress) bool {
		return p.UpdatedReadinessScore == 67 && assert.ObjectsAreEqual([]string{"cp_w3_0"}, p.CompletedCheckpoints) && p.UpdatedAt.Equal(fixedNow)
	}), int64(4)).Return(nil)
	pub.On("PublishProgressEvent", mock.Anything, mock.MatchedBy(func(e event.ProgressEventPayload) bool {
		return e.CheckpointID == "cp_w3_0" && e.UpdatedReadinessScore == 67
	})).Return(nil)

	out, err := newCompleteUseCase(repo, pub).Execute(context.Background(), CompleteCheckpointInput{UserID: userID, CheckpointID: "cp_w3_0"})

	require.NoError(t, err)
	assert.Equal(t, 67, out.UpdatedReadinessScore)
	assert.Equal(t, []string{"cp_w3_0"}, out.CompletedCheckpoints)
	assert.False(t, out.AlreadyCompleted)
	waitPublished(t, pub)
	repo.AssertExpectations(t)
	pub.AssertExpectations(t)
}

func TestCompleteCheckpoint_ClampsAt100(t *testing.T) {
	repo := new(mocks.ProgressRepository)
	pub := mocks.NewEventPublisher()
	userID := uuid.New()

	repo.On("GetByUserID", mock.Anything, userID).Return(sampleProgress(userID, 98, []string{}, 1), nil)
	repo.On("UpdateCheckpoints", mock.Anything, mock.Anything, int64(1)).Return(nil)
	pub.On("PublishProgressEvent", mock.Anything, mock.Anything).Return(nil)

	out, err := newCompleteUseCase(repo, pub).Execute(context.Background(), CompleteCheckpointInput{UserID: userID, CheckpointID: "cp_0"})

	require.NoError(t, err)
	assert.Equal(t, 100, out.UpdatedReadinessScore)
	waitPublished(t, pub)
}

func TestCompleteCheckpoint_AlreadyCompletedSkipsWrite(t *testing.T) {
	repo := new(mocks.ProgressRepository)
	pub := mocks.NewEventPublisher()
	userID := uuid.New()

	repo.On("GetByUserID", mock.Anything, userID).Return(sampleProgress(userID, 65, []string{"cp_0"}, 2), nil)

	out, err := newCompleteUseCase(repo, pub).Execute(context.Background(), CompleteCheckpointInput{UserID: userID, CheckpointID: "cp_0"})

	require.NoError(t, err)
	assert.True(t, out.AlreadyCompleted)
	assert.Equal(t, 65, out.UpdatedReadinessScore)
	repo.AssertNotCalled(t, "UpdateCheckpoints", mock.Anything, mock.Anything, mock.Anything)
	pub.AssertNotCalled(t, "PublishProgressEvent", mock.Anything, mock.Anything)
}

func TestCompleteCheckpoint_UnknownCheckpoint(t *testing.T) {
	repo := new(mocks.ProgressRepository)
	userID := uuid.New()
	repo.On("GetByUserID", mock.Anything, userID).Return(sampleProgress(userID, 60, []string{}, 1), nil)

	_, err := newCompleteUseCase(repo, mocks.NewEventPublisher()).Execute(context.Background(), CompleteCheckpointInput{UserID: userID, CheckpointID: "cp_w4_9"})

	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestCompleteCheckpoint_NoProgress(t *testing.T) {
	repo := new(mocks.ProgressRepository)
	userID := uuid.New()
	repo.On("GetByUserID", mock.Anything, userID).Return(nil, progress.ErrProgressNotFound)

	_, err := newCompleteUseCase(repo, mocks.NewEventPublisher()).Execute(context.Background(), CompleteCheckpointInput{UserID: userID, CheckpointID: "cp_0"})

	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestCompleteCheckpoint_RetriesOnConflict(t *testing.T) {
	repo := new(mocks.ProgressRepository)
	pub := mocks.NewEventPublisher()
	userID := uuid.New()

	// A concurrent request completed cp_1 between our read and write.
	repo.On("GetByUserID", mock.Anything, userID).Return(sampleProgress(userID, 60, []string{}, 1), nil).Once()
	repo.On("UpdateCheckpoints", mock.Anything, mock.Anything, int64(1)).Return(progress.ErrVersionConflict).Once()
	repo.On("GetByUserID", mock.Anything, userID).Return(sampleProgress(userID, 65, []string{"cp_1"}, 2), nil).Once()
	repo.On("UpdateCheckpoints", mock.Anything, mock.MatchedBy(func(p *progress.UserProgress) bool {
		return p.UpdatedReadinessScore == 70 && assert.ObjectsAreEqual([]string{"cp_1", "cp_0"}, p.CompletedCheckpoints)
	}), int64(2)).Return(nil).Once()
	pub.On("PublishProgressEvent", mock.Anything, mock.Anything).Return(nil)

	out, err := newCompleteUseCase(repo, pub).Execute(context.Background(), CompleteCheckpointInput{UserID: userID, CheckpointID: "cp_0"})

	require.NoError(t, err)
	assert.Equal(t, 70, out.UpdatedReadinessScore)
	assert.Equal(t, []string{"cp_1", "cp_0"}, out.CompletedCheckpoints)
	waitPublished(t, pub)
	repo.AssertExpectations(t)
}

func TestCompleteCheckpoint_GivesUpAfterRepeatedConflicts(t *testing.T) {
	repo := new(mocks.ProgressRepository)
	userID := uuid.New()

	repo.On("GetByUserID", mock.Anything, userID).Return(sampleProgress(userID, 60, []string{}, 1), nil)
	repo.On("UpdateCheckpoints", mock.Anything, mock.Anything, int64(1)).Return(progress.ErrVersionConflict)

	_, err := newCompleteUseCase(repo, mocks.NewEventPublisher()).Execute(context.Background(), CompleteCheckpointInput{UserID: userID, CheckpointID: "cp_0"})

	assert.ErrorIs(t, err, apperror.ErrConflict)
	repo.AssertNumberOfCalls(t, "UpdateCheckpoints", maxWriteAttempts)
}

func TestCompleteCheckpoint_CheckpointGoneAfterNewAnalysis(t *testing.T) {
	repo := new(mocks.ProgressRepository)
	userID := uuid.New()

	replaced := sampleProgress(userID, 40, []string{}, 2)
	replaced.LastAnalysis.Roadmap[1].Checkpoints = []analysis.Checkpoint{}

	repo.On("GetByUserID", mock.Anything, userID).Return(sampleProgress(userID, 60, []string{}, 1), nil).Once()
	repo.On("UpdateCheckpoints", mock.Anything, mock.Anything, int64(1)).Return(progress.ErrVersionConflict).Once()
	repo.On("GetByUserID", mock.Anything, userID).Return(replaced, nil).Once()

	_, err := newCompleteUseCase(repo, mocks.NewEventPublisher()).Execute(context.Background(), CompleteCheckpointInput{UserID: userID, CheckpointID: "cp_w3_0"})

	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestProcessResume(t *testing.T) {
	userID := uuid.New()
	payload := event.AnalysisEventPayload{
		EventType:      event.AnalysisEventTypeCompleted,
		UserID:         userID,
		ResumePublicID: "users/u/resumes/r1",
	}

	t.Run("stores preview", func(t *testing.T) {
		repo := new(mocks.ProgressRepository)
		up := new(mocks.Uploader)
		up.On("PreviewURL", "users/u/resumes/r1").Return("https://cdn/pg_1/r1.jpg", nil)
		repo.On("UpdateResumePreview", mock.Anything, userID, "users/u/resumes/r1", "https://cdn/pg_1/r1.jpg").Return(nil)

		require.NoError(t, NewProcessResumeUseCase(repo, up, logger.NewNopLogger()).Execute(context.Background(), payload))
		repo.AssertExpectations(t)
	})

	t.Run("stale event is skipped", func(t *testing.T) {
		repo := new(mocks.ProgressRepository)
		up := new(mocks.Uploader)
		up.On("PreviewURL", mock.Anything).Return("https://cdn/x.jpg", nil)
		repo.On("UpdateResumePreview", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(progress.ErrProgressNotFound)

		assert.NoError(t, NewProcessResumeUseCase(repo, up, logger.NewNopLogger()).Execute(context.Background(), payload))
	})

	t.Run("no archived resume", func(t *testing.T) {
		repo := new(mocks.ProgressRepository)
		up := new(mocks.Uploader)
		noResume := payload
		noResume.ResumePublicID = ""

		assert.NoError(t, NewProcessResumeUseCase(repo, up, logger.NewNopLogger()).Execute(context.Background(), noResume))
		up.AssertNotCalled(t, "PreviewURL", mock.Anything)
	})

	t.Run("repository failure is returned for redelivery", func(t *testing.T) {
		repo := new(mocks.ProgressRepository)
		up := new(mocks.Uploader)
		up.On("PreviewURL", mock.Anything).Return("https://cdn/x.jpg", nil)
		repo.On("UpdateResumePreview", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("db down"))

		assert.Error(t, NewProcessResumeUseCase(repo, up, logger.NewNopLogger()).Execute(context.Background(), payload))
	})
}
