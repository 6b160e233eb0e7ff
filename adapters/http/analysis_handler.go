package http

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	analysisUC "github.com/khoahotran/career-navigator/internal/application/usecase/analysis"
	"github.com/khoahotran/career-navigator/pkg/apperror"
	"github.com/khoahotran/career-navigator/pkg/logger"
)

type AnalysisHandler struct {
	analyzeUC      *analysisUC.AnalyzeResumeUseCase
	listRolesUC    *analysisUC.ListRolesUseCase
	maxResumeBytes int64
	logger         logger.Logger
}

func NewAnalysisHandler(
	analyzeUC *analysisUC.AnalyzeResumeUseCase,
	listRolesUC *analysisUC.ListRolesUseCase,
	maxResumeBytes int64,
	log logger.Logger,
) *AnalysisHandler {
	return &AnalysisHandler{
		analyzeUC:      analyzeUC,
		listRolesUC:    listRolesUC,
		maxResumeBytes: maxResumeBytes,
		logger:         log,
	}
}

func (h *AnalysisHandler) ListRoles(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"roles": h.listRolesUC.Execute()})
}

func (h *AnalysisHandler) Analyze(c *gin.Context) {
	session, ok := SessionFromGinContext(c)
	if !ok {
		c.Error(apperror.NewUnauthorized("Not signed in", nil))
		return
	}

	fileHeader, err := c.FormFile("resume")
	if err != nil {
		c.Error(apperror.NewInvalidInput("Please upload a resume", err))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.Error(apperror.NewInternal("failed to open file", err))
		return
	}
	defer file.Close()

	// One byte past the limit is enough for the use case to reject it.
	content, err := io.ReadAll(io.LimitReader(file, h.maxResumeBytes+1))
	if err != nil {
		c.Error(apperror.NewInternal("failed to read file", err))
		return
	}

	out, err := h.analyzeUC.Execute(c.Request.Context(), analysisUC.AnalyzeResumeInput{
		UserID:      session.UserID,
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Resume:      content,
		TargetRole:  c.PostForm("role"),
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, AnalysisResponse{
		Analysis: out.Result,
		Progress: ToProgressDTO(out.Progress),
	})
}
