package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/khoahotran/career-navigator/internal/domain/analysis"
	"github.com/khoahotran/career-navigator/internal/domain/progress"
	"github.com/khoahotran/career-navigator/pkg/logger"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type postgresProgressRepo struct {
	db     *pgxpool.Pool
	logger logger.Logger
}

func NewPostgresProgressRepo(db *pgxpool.Pool, log logger.Logger) progress.Repository {
	return &postgresProgressRepo{db: db, logger: log}
}

func (r *postgresProgressRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*progress.UserProgress, error) {
	query := `
		SELECT user_id, last_analysis, completed_checkpoints, updated_readiness_score,
		       resume_public_id, resume_url, resume_preview_url, version, updated_at
		FROM user_progress
		WHERE user_id = $1
	`
	p := &progress.UserProgress{}
	var lastAnalysisBytes []byte

	err := r.db.QueryRow(ctx, query, userID).Scan(
		&p.UserID,
		&lastAnalysisBytes,
		&p.CompletedCheckpoints,
		&p.UpdatedReadinessScore,
		&p.Resume.PublicID,
		&p.Resume.URL,
		&p.Resume.PreviewURL,
		&p.Version,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, progress.ErrProgressNotFound
		}
		return nil, fmt.Errorf("error when query progress: %w", err)
	}

	var result analysis.AnalysisResult
	if err := json.Unmarshal(lastAnalysisBytes, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal last_analysis: %w", err)
	}
	p.LastAnalysis = &result
	if p.CompletedCheckpoints == nil {
		p.CompletedCheckpoints = []string{}
	}
	return p, nil
}

func (r *postgresProgressRepo) SaveAnalysis(ctx context.Context, p *progress.UserProgress) error {
	lastAnalysisBytes, err := json.Marshal(p.LastAnalysis)
	if err != nil {
		return fmt.Errorf("failed to marshal last_analysis: %w", err)
	}

	completed := p.CompletedCheckpoints
	if completed == nil {
		completed = []string{}
	}

	query := `
		INSERT INTO user_progress (
			user_id, last_analysis, completed_checkpoints, updated_readiness_score,
			resume_public_id, resume_url, resume_preview_url, version, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 1, $8)
		ON CONFLICT (user_id) DO UPDATE SET
			last_analysis = EXCLUDED.last_analysis,
			completed_checkpoints = EXCLUDED.completed_checkpoints,
			updated_readiness_score = EXCLUDED.updated_readiness_score,
			resume_public_id = EXCLUDED.resume_public_id,
			resume_url = EXCLUDED.resume_url,
			resume_preview_url = EXCLUDED.resume_preview_url,
			version = user_progress.version + 1,
			updated_at = EXCLUDED.updated_at
		RETURNING version
	`
	err = r.db.QueryRow(ctx, query,
		p.UserID, lastAnalysisBytes, completed, p.UpdatedReadinessScore,
		p.Resume.PublicID, p.Resume.URL, p.Resume.PreviewURL, p.UpdatedAt,
	).Scan(&p.Version)
	if err != nil {
		return fmt.Errorf("failed to save progress: %w", err)
	}
	return nil
}

func (r *postgresProgressRepo) UpdateCheckpoints(ctx context.Context, p *progress.UserProgress, expectedVersion int64) error {
	query, args, err := psql.Update("user_progress").
		Set("completed_checkpoints", p.CompletedCheckpoints).
		Set("updated_readiness_score", p.UpdatedReadinessScore).
		Set("updated_at", p.UpdatedAt).
		Set("version", sq.Expr("version + 1")).
		Where(sq.Eq{"user_id": p.UserID, "version": expectedVersion}).
		Suffix("RETURNING version").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update checkpoints query: %w", err)
	}

	if err := r.db.QueryRow(ctx, query, args...).Scan(&p.Version); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return progress.ErrVersionConflict
		}
		return fmt.Errorf("failed to update checkpoints: %w", err)
	}
	return nil
}

func (r *postgresProgressRepo) UpdateResumePreview(ctx context.Context, userID uuid.UUID, publicID, previewURL string) error {
	query, args, err := psql.Update("user_progress").
		Set("resume_preview_url", previewURL).
		Set("version", sq.Expr("version + 1")).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"user_id": userID, "resume_public_id": publicID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update preview query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update resume preview: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return progress.ErrProgressNotFound
	}
	return nil
}
