// Package mocks holds testify mocks for the domain repositories and
// application service ports.
package mocks

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/khoahotran/career-navigator/adapters/event"
	"github.com/khoahotran/career-navigator/internal/application/service"
	"github.com/khoahotran/career-navigator/internal/domain/analysis"
	"github.com/khoahotran/career-navigator/internal/domain/progress"
	"github.com/khoahotran/career-navigator/internal/domain/user"
)

type UserRepository struct {
	mock.Mock
}

func (m *UserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *UserRepository) Save(ctx context.Context, u *user.User) error {
	return m.Called(ctx, u).Error(0)
}

type ProgressRepository struct {
	mock.Mock
}

func (m *ProgressRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*progress.UserProgress, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*progress.UserProgress), args.Error(1)
}

func (m *ProgressRepository) SaveAnalysis(ctx context.Context, p *progress.UserProgress) error {
	return m.Called(ctx, p).Error(0)
}

func (m *ProgressRepository) UpdateCheckpoints(ctx context.Context, p *progress.UserProgress, expectedVersion int64) error {
	return m.Called(ctx, p, expectedVersion).Error(0)
}

func (m *ProgressRepository) UpdateResumePreview(ctx context.Context, userID uuid.UUID, publicID, previewURL string) error {
	return m.Called(ctx, userID, publicID, previewURL).Error(0)
}

type ResumeAnalyzer struct {
	mock.Mock
}

func (m *ResumeAnalyzer) Analyze(ctx context.Context, resume []byte, filename, targetRole string) (*analysis.RawAnalysis, error) {
	args := m.Called(ctx, resume, filename, targetRole)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*analysis.RawAnalysis), args.Error(1)
}

type Uploader struct {
	mock.Mock
}

func (m *Uploader) Upload(ctx context.Context, file io.Reader, folder string, publicID string) (string, error) {
	args := m.Called(ctx, file, folder, publicID)
	return args.String(0), args.Error(1)
}

func (m *Uploader) Delete(ctx context.Context, publicID string) error {
	return m.Called(ctx, publicID).Error(0)
}

func (m *Uploader) PreviewURL(publicID string) (string, error) {
	args := m.Called(publicID)
	return args.String(0), args.Error(1)
}

type OAuthProvider struct {
	mock.Mock
}

func (m *OAuthProvider) AuthCodeURL(state string) string {
	return m.Called(state).String(0)
}

func (m *OAuthProvider) Exchange(ctx context.Context, code string) (*service.OAuthProfile, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.OAuthProfile), args.Error(1)
}

type SessionStore struct {
	mock.Mock
}

func (m *SessionStore) RevokeToken(ctx context.Context, tokenID string, expiresAt time.Time) error {
	return m.Called(ctx, tokenID, expiresAt).Error(0)
}

func (m *SessionStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	args := m.Called(ctx, tokenID)
	return args.Bool(0), args.Error(1)
}

func (m *SessionStore) SaveOAuthState(ctx context.Context, state string, ttl time.Duration) error {
	return m.Called(ctx, state, ttl).Error(0)
}

func (m *SessionStore) ConsumeOAuthState(ctx context.Context, state string) (bool, error) {
	args := m.Called(ctx, state)
	return args.Bool(0), args.Error(1)
}

// EventPublisher is used from goroutines, so tests wait on Published.
type EventPublisher struct {
	mock.Mock
	Published chan struct{}
}

func NewEventPublisher() *EventPublisher {
	return &EventPublisher{Published: make(chan struct{}, 16)}
}

func (m *EventPublisher) PublishAnalysisEvent(ctx context.Context, payload event.AnalysisEventPayload) error {
	err := m.Called(ctx, payload).Error(0)
	m.signal()
	return err
}

func (m *EventPublisher) PublishProgressEvent(ctx context.Context, payload event.ProgressEventPayload) error {
	err := m.Called(ctx, payload).Error(0)
	m.signal()
	return err
}

func (m *EventPublisher) signal() {
	if m.Published != nil {
		m.Published <- struct{}{}
	}
}
