package analysis

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

var samplePDF = []byte("%PDF-1.4\n1 0 obj<<>>endobj\ntrailer<<>>\n%%EOF")

func strPtr(s string) *string { return &s }

func sampleRaw() *analysis.RawAnalysis {
	return &analysis.RawAnalysis{
		Readiness:       62,
		ExtractedSkills: []string{"python", "sql"},
		Gaps:            []analysis.RawGap{{Name: "docker", Weight: 4, GapScore: 8}},
		Roadmap: analysis.RawRoadmap{
			Week1: []analysis.RawTask{{Task: strPtr("Learn Docker"), Skill: strPtr("docker")}},
		},
		Priority: []string{"docker"},
	}
}

type fixture struct {
	analyzer  *mocks.ResumeAnalyzer
	repo      *mocks.ProgressRepository
	uploader  *mocks.Uploader
	publisher *mocks.EventPublisher
	uc        *AnalyzeResumeUseCase
}

func newFixture(withUploader bool) *fixture {
	f := &fixture{
		analyzer:  new(mocks.ResumeAnalyzer),
		repo:      new(mocks.ProgressRepository),
		uploader:  new(mocks.Uploader),
		publisher: mocks.NewEventPublisher(),
	}
	uc := NewAnalyzeResumeUseCase(f.analyzer, analysis.NewNormalizer(true), f.repo, nil, f.publisher, 10<<20, logger.NewNopLogger())
	if withUploader {
		uc.uploader = f.uploader
	}
	uc.now = func() time.Time { return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC) }
	f.uc = uc
	return f
}

func validInput() AnalyzeResumeInput {
	return AnalyzeResumeInput{
		UserID:      uuid.New(),
		Filename:    "cv.pdf",
		ContentType: "application/pdf",
		Resume:      samplePDF,
		TargetRole:  "Data Scientist",
	}
}

func waitPublished(t *testing.T, p *mocks.EventPublisher) {
	t.Helper()
	select {
	case <-p.Published:
	case <-time.After(2 * time.Second):
		t.Fatal("event was not published")
	}
}

func TestAnalyzeResume_Success(t *testing.T) {
	f := newFixture(true)
	input := validInput()

	f.analyzer.On("Analyze", mock.Anything, samplePDF, "cv.pdf", "Data Scientist").Return(sampleRaw(), nil)
	f.uploader.On("Upload", mock.Anything, mock.Anything, "users/"+input.UserID.String()+"/resumes", mock.AnythingOfType("string")).
		Return("https://cdn/cv.pdf", nil)
	f.repo.On("SaveAnalysis", mock.Anything, mock.MatchedBy(func(p *progress.UserProgress) bool {
		return p.UserID == input.UserID && p.UpdatedReadinessScore == 62 && len(p.CompletedCheckpoints) == 0
	})).Return(nil)
	f.publisher.On("PublishAnalysisEvent", mock.Anything, mock.MatchedBy(func(e event.AnalysisEventPayload) bool {
		return e.EventType == event.AnalysisEventTypeCompleted && e.UserID == input.UserID && e.ReadinessScore == 62 && e.ResumePublicID != ""
	})).Return(nil)

	out, err := f.uc.Execute(context.Background(), input)

	require.NoError(t, err)
	assert.Equal(t, "Data Scientist", out.Result.TargetRole)
	assert.Equal(t, 62, out.Result.ReadinessScore)
	assert.Equal(t, "https://cdn/cv.pdf", out.Progress.Resume.URL)
	assert.Contains(t, out.Progress.Resume.PublicID, "users/"+input.UserID.String()+"/resumes/")

	waitPublished(t, f.publisher)
	f.publisher.AssertExpectations(t)
	f.repo.AssertExpectations(t)
}

func TestAnalyzeResume_Validation(t *testing.T) {
	cases := map[string]func(*AnalyzeResumeInput){
		"missing role":     func(in *AnalyzeResumeInput) { in.TargetRole = "" },
		"unsupported role": func(in *AnalyzeResumeInput) { in.TargetRole = "Astronaut" },
		"missing file":     func(in *AnalyzeResumeInput) { in.Resume = nil },
		"declared non-pdf": func(in *AnalyzeResumeInput) { in.ContentType = "image/png" },
		"content not pdf":  func(in *AnalyzeResumeInput) { in.Resume = []byte("plain text resume") },
		"too large": func(in *AnalyzeResumeInput) {
			in.Resume = append(append([]byte{}, samplePDF...), make([]byte, 10<<20)...)
		},
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			f := newFixture(false)
			input := validInput()
			mutate(&input)

			_, err := f.uc.Execute(context.Background(), input)

			assert.ErrorIs(t, err, apperror.ErrInvalidInput)
			f.analyzer.AssertNotCalled(t, "Analyze", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestAnalyzeResume_BackendFailure(t *testing.T) {
	f := newFixture(false)
	f.analyzer.On("Analyze", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))

	_, err := f.uc.Execute(context.Background(), validInput())

	require.ErrorIs(t, err, apperror.ErrBadGateway)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.BackendFailureMessage, appErr.Message)
	f.repo.AssertNotCalled(t, "SaveAnalysis", mock.Anything, mock.Anything)
}

func TestAnalyzeResume_MalformedResponseIsBackendError(t *testing.T) {
	f := newFixture(false)
	raw := sampleRaw()
	raw.Roadmap.Week3 = []analysis.RawTask{{Task: strPtr("no skill")}}
	f.analyzer.On("Analyze", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(raw, nil)

	_, err := f.uc.Execute(context.Background(), validInput())

	assert.ErrorIs(t, err, apperror.ErrBadGateway)
	var malformed *analysis.MalformedTaskError
	assert.ErrorAs(t, err, &malformed)
}

func TestAnalyzeResume_PersistenceFailure(t *testing.T) {
	f := newFixture(true)
	f.analyzer.On("Analyze", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(sampleRaw(), nil)
	f.uploader.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("https://cdn/cv.pdf", nil)
	deleted := make(chan string, 1)
	f.uploader.On("Delete", mock.Anything, mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) { deleted <- args.String(1) }).
		Return(nil)
	f.repo.On("SaveAnalysis", mock.Anything, mock.Anything).Return(errors.New("db down"))

	_, err := f.uc.Execute(context.Background(), validInput())

	assert.ErrorIs(t, err, apperror.ErrInternal)
	select {
	case id := <-deleted:
		assert.NotEmpty(t, id)
	case <-time.After(2 * time.Second):
		t.Fatal("archived resume was not cleaned up")
	}
	f.publisher.AssertNotCalled(t, "PublishAnalysisEvent", mock.Anything, mock.Anything)
}

func TestAnalyzeResume_ArchiveFailureIsNotFatal(t *testing.T) {
	f := newFixture(true)
	f.analyzer.On("Analyze", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(sampleRaw(), nil)
	f.uploader.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("quota exceeded"))
	f.repo.On("SaveAnalysis", mock.Anything, mock.Anything).Return(nil)
	f.publisher.On("PublishAnalysisEvent", mock.Anything, mock.MatchedBy(func(e event.AnalysisEventPayload) bool {
		return e.ResumePublicID == ""
	})).Return(errors.New("broker down"))

	out, err := f.uc.Execute(context.Background(), validInput())

	require.NoError(t, err)
	assert.Empty(t, out.Progress.Resume.PublicID)
	waitPublished(t, f.publisher)
}

func TestListRoles(t *testing.T) {
	roles := NewListRolesUseCase().Execute()

	assert.Len(t, roles, 10)
	assert.Equal(t, "Frontend Developer", roles[0])
}
