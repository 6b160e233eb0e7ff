package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	progressUC "github.com/khoahotran/career-navigator/internal/application/usecase/progress"
	"github.com/khoahotran/career-navigator/pkg/apperror"
	"github.com/khoahotran/career-navigator/pkg/logger"
)

type ProgressHandler struct {
	getProgressUC        *progressUC.GetProgressUseCase
	completeCheckpointUC *progressUC.CompleteCheckpointUseCase
	logger               logger.Logger
}

func NewProgressHandler(
	getUC *progressUC.GetProgressUseCase,
	completeUC *progressUC.CompleteCheckpointUseCase,
	log logger.Logger,
) *ProgressHandler {
	return &ProgressHandler{
		getProgressUC:        getUC,
		completeCheckpointUC: completeUC,
		logger:               log,
	}
}

func (h *ProgressHandler) GetProgress(c *gin.Context) {
	session, ok := SessionFromGinContext(c)
	if !ok {
		c.Error(apperror.NewUnauthorized("Not signed in", nil))
		return
	}

	p, err := h.getProgressUC.Execute(c.Request.Context(), session.UserID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToProgressDTO(p))
}

func (h *ProgressHandler) CompleteCheckpoint(c *gin.Context) {
	session, ok := SessionFromGinContext(c)
	if !ok {
		c.Error(apperror.NewUnauthorized("Not signed in", nil))
		return
	}

	out, err := h.completeCheckpointUC.Execute(c.Request.Context(), progressUC.CompleteCheckpointInput{
		UserID:       session.UserID,
		CheckpointID: c.Param("id"),
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToCompleteCheckpointResponse(out))
}
