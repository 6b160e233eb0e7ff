package http

import (
	"time"

	"github.com/google/uuid"

	authUC "github.com/khoahotran/career-navigator/internal/application/usecase/auth"
	progressUC "github.com/khoahotran/career-navigator/internal/application/usecase/progress"
	"github.com/khoahotran/career-navigator/internal/domain/analysis"
	"github.com/khoahotran/career-navigator/internal/domain/progress"
	"github.com/khoahotran/career-navigator/internal/domain/user"
)

// Auth DTOs

type RegisterRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type UserDTO struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      *string   `json:"name"`
	Provider  string    `json:"provider"`
	CreatedAt time.Time `json:"created_at"`
}

type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        UserDTO   `json:"user"`
}

func ToUserDTO(u *user.User) UserDTO {
	return UserDTO{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Provider:  string(u.Provider),
		CreatedAt: u.CreatedAt,
	}
}

func ToTokenResponse(out *authUC.TokenOutput) TokenResponse {
	return TokenResponse{
		AccessToken: out.AccessToken,
		TokenType:   "Bearer",
		ExpiresAt:   out.ExpiresAt,
		User:        ToUserDTO(out.User),
	}
}

// Progress DTOs

type ResumeDTO struct {
	URL        string `json:"url,omitempty"`
	PreviewURL string `json:"preview_url,omitempty"`
}

type ProgressDTO struct {
	LastAnalysis          *analysis.AnalysisResult `json:"last_analysis"`
	CompletedCheckpoints  []string                 `json:"completed_checkpoints"`
	UpdatedReadinessScore int                      `json:"updated_readiness_score"`
	TotalCheckpoints      int                      `json:"total_checkpoints"`
	Resume                *ResumeDTO               `json:"resume,omitempty"`
	UpdatedAt             time.Time                `json:"updated_at"`
}

// ToProgressDTO prepares the dashboard view: missing skills are ordered by
// weight, heaviest first.
func ToProgressDTO(p *progress.UserProgress) ProgressDTO {
	dto := ProgressDTO{
		CompletedCheckpoints:  p.CompletedCheckpoints,
		UpdatedReadinessScore: p.UpdatedReadinessScore,
		UpdatedAt:             p.UpdatedAt,
	}
	if dto.CompletedCheckpoints == nil {
		dto.CompletedCheckpoints = []string{}
	}
	if p.LastAnalysis != nil {
		view := *p.LastAnalysis
		view.MissingSkills = p.LastAnalysis.SortedMissingSkills()
		dto.LastAnalysis = &view
		dto.TotalCheckpoints = view.CheckpointCount()
	}
	if p.Resume.URL != "" {
		dto.Resume = &ResumeDTO{URL: p.Resume.URL, PreviewURL: p.Resume.PreviewURL}
	}
	return dto
}

type AnalysisResponse struct {
	Analysis *analysis.AnalysisResult `json:"analysis"`
	Progress ProgressDTO              `json:"progress"`
}

type CompleteCheckpointResponse struct {
	UpdatedReadinessScore int      `json:"updated_readiness_score"`
	CompletedCheckpoints  []string `json:"completed_checkpoints"`
	AlreadyCompleted      bool     `json:"already_completed"`
}

func ToCompleteCheckpointResponse(out *progressUC.CompleteCheckpointOutput) CompleteCheckpointResponse {
	return CompleteCheckpointResponse{
		UpdatedReadinessScore: out.UpdatedReadinessScore,
		CompletedCheckpoints:  out.CompletedCheckpoints,
		AlreadyCompleted:      out.AlreadyCompleted,
	}
}
