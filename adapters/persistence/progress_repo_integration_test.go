package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/suite"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/khoahotran/career-navigator/internal/domain/analysis"
	"github.com/khoahotran/career-navigator/internal/domain/progress"
	"github.com/khoahotran/career-navigator/internal/domain/user"
	"github.com/khoahotran/career-navigator/pkg/logger"
)

type ProgressRepoIntegrationTestSuite struct {
	suite.Suite
	dbPool       *pgxpool.Pool
	pgContainer  *postgres.PostgresContainer
	testLogger   logger.Logger
	progressRepo progress.Repository
	userRepo     user.Repository
}

func (s *ProgressRepoIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()
	s.testLogger = logger.NewNopLogger()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("test_db"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(1*time.Minute),
		),
	)
	if err != nil {
		s.T().Fatalf("Failed to start postgres container: %s", err)
	}
	s.pgContainer = pgContainer

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		s.T().Fatalf("Failed to get connection string: %s", err)
	}

	m, err := migrate.New("file://../../migrations", dsn)
	if err != nil {
		s.T().Fatalf("Failed to create migrate instance: %s", err)
	}
	if err := m.Up(); err != nil {
		s.T().Fatalf("Failed to run migrations: %s", err)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		s.T().Fatalf("Failed to create pgxpool: %s", err)
	}
	s.dbPool = pool

	s.progressRepo = NewPostgresProgressRepo(s.dbPool, s.testLogger)
	s.userRepo = NewPostgresUserRepo(s.dbPool, s.testLogger)
}

func (s *ProgressRepoIntegrationTestSuite) TearDownSuite() {
	if s.dbPool != nil {
		s.dbPool.Close()
	}
	if s.pgContainer != nil {
		if err := s.pgContainer.Terminate(context.Background()); err != nil {
			s.T().Fatalf("Failed to terminate postgres container: %s", err)
		}
	}
}

func TestProgressRepoIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode.")
	}
	suite.Run(t, new(ProgressRepoIntegrationTestSuite))
}

func (s *ProgressRepoIntegrationTestSuite) newUser() *user.User {
	u := &user.User{
		ID:           uuid.New(),
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: "hashedpassword",
		Provider:     user.ProviderPassword,
		CreatedAt:    time.Now().UTC(),
	}
	s.Require().NoError(s.userRepo.Save(context.Background(), u))
	return u
}

func sampleResult(score int) *analysis.AnalysisResult {
	return &analysis.AnalysisResult{
		TargetRole:     "Backend Developer",
		ReadinessScore: score,
		Breakdown:      analysis.Breakdown{CoreSkills: score + 10, Tools: score, Projects: score + 5},
		MatchedSkills:  []string{"go", "sql"},
		MissingSkills:  []analysis.MissingSkill{{Name: "KAFKA", Weight: 4, Priority: analysis.PriorityMedium, ImpactPercentage: 8}},
		Roadmap: []analysis.Phase{{
			Phase:     "Foundation (Week 1-2)",
			DaysRange: "1-14",
			Checkpoints: []analysis.Checkpoint{
				{ID: "cp_0", Title: "Learn Kafka", Skill: "KAFKA", Priority: analysis.PriorityHigh, ImpactPercentage: 5, EstimatedDays: 3},
			},
		}},
		Internships: []analysis.Internship{},
	}
}

func (s *ProgressRepoIntegrationTestSuite) Test_UserRepo_DuplicateEmail() {
	ctx := context.Background()
	u := s.newUser()

	dup := &user.User{ID: uuid.New(), Email: u.Email, Provider: user.ProviderPassword, CreatedAt: time.Now().UTC()}
	s.ErrorIs(s.userRepo.Save(ctx, dup), user.ErrEmailTaken)

	found, err := s.userRepo.FindByEmail(ctx, u.Email)
	s.Require().NoError(err)
	s.Equal(u.ID, found.ID)

	_, err = s.userRepo.FindByID(ctx, uuid.New())
	s.ErrorIs(err, user.ErrUserNotFound)
}

func (s *ProgressRepoIntegrationTestSuite) Test_SaveAnalysis_And_Get() {
	ctx := context.Background()
	u := s.newUser()

	_, err := s.progressRepo.GetByUserID(ctx, u.ID)
	s.ErrorIs(err, progress.ErrProgressNotFound)

	p := progress.NewFromAnalysis(u.ID, sampleResult(62), progress.ResumeArchive{PublicID: "pid-1", URL: "https://cdn/r.pdf"}, time.Now().UTC())
	s.Require().NoError(s.progressRepo.SaveAnalysis(ctx, p))
	s.EqualValues(1, p.Version)

	found, err := s.progressRepo.GetByUserID(ctx, u.ID)
	s.Require().NoError(err)
	s.Equal(62, found.UpdatedReadinessScore)
	s.Empty(found.CompletedCheckpoints)
	s.Equal(*p.LastAnalysis, *found.LastAnalysis)
	s.Equal("pid-1", found.Resume.PublicID)
	s.EqualValues(1, found.Version)
}

func (s *ProgressRepoIntegrationTestSuite) Test_SaveAnalysis_ReplacesAndBumpsVersion() {
	ctx := context.Background()
	u := s.newUser()
	now := time.Now().UTC()

	first := progress.NewFromAnalysis(u.ID, sampleResult(70), progress.ResumeArchive{}, now)
	s.Require().NoError(s.progressRepo.SaveAnalysis(ctx, first))
	done := progress.CompleteCheckpoint(*first, "cp_0", 5, now)
	s.Require().NoError(s.progressRepo.UpdateCheckpoints(ctx, &done, first.Version))

	second := progress.NewFromAnalysis(u.ID, sampleResult(40), progress.ResumeArchive{}, now)
	s.Require().NoError(s.progressRepo.SaveAnalysis(ctx, second))
	s.EqualValues(3, second.Version)

	found, err := s.progressRepo.GetByUserID(ctx, u.ID)
	s.Require().NoError(err)
	s.Equal(40, found.UpdatedReadinessScore)
	s.Empty(found.CompletedCheckpoints)
}

func (s *ProgressRepoIntegrationTestSuite) Test_UpdateCheckpoints_VersionConflict() {
	ctx := context.Background()
	u := s.newUser()
	now := time.Now().UTC()

	p := progress.NewFromAnalysis(u.ID, sampleResult(50), progress.ResumeArchive{}, now)
	s.Require().NoError(s.progressRepo.SaveAnalysis(ctx, p))
	staleVersion := p.Version

	a := progress.CompleteCheckpoint(*p, "cp_0", 5, now)
	s.Require().NoError(s.progressRepo.UpdateCheckpoints(ctx, &a, staleVersion))
	s.Equal(staleVersion+1, a.Version)

	b := progress.CompleteCheckpoint(*p, "cp_1", 5, now)
	s.ErrorIs(s.progressRepo.UpdateCheckpoints(ctx, &b, staleVersion), progress.ErrVersionConflict)

	found, err := s.progressRepo.GetByUserID(ctx, u.ID)
	s.Require().NoError(err)
	s.Equal([]string{"cp_0"}, found.CompletedCheckpoints)
	s.Equal(55, found.UpdatedReadinessScore)
}

func (s *ProgressRepoIntegrationTestSuite) Test_UpdateResumePreview_OnlyForCurrentResume() {
	ctx := context.Background()
	u := s.newUser()

	p := progress.NewFromAnalysis(u.ID, sampleResult(50), progress.ResumeArchive{PublicID: "current"}, time.Now().UTC())
	s.Require().NoError(s.progressRepo.SaveAnalysis(ctx, p))

	s.ErrorIs(s.progressRepo.UpdateResumePreview(ctx, u.ID, "stale", "https://cdn/stale.jpg"), progress.ErrProgressNotFound)
	s.Require().NoError(s.progressRepo.UpdateResumePreview(ctx, u.ID, "current", "https://cdn/current.jpg"))

	found, err := s.progressRepo.GetByUserID(ctx, u.ID)
	s.Require().NoError(err)
	s.Equal("https://cdn/current.jpg", found.Resume.PreviewURL)
}
