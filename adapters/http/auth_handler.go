package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	authUC "github.com/khoahotran/career-navigator/internal/application/usecase/auth"
	"github.com/khoahotran/career-navigator/pkg/apperror"
	"github.com/khoahotran/career-navigator/pkg/logger"
)

type AuthHandler struct {
	registerUC      *authUC.RegisterUseCase
	loginUC         *authUC.LoginUseCase
	oauthStartUC    *authUC.OAuthStartUseCase
	oauthCallbackUC *authUC.OAuthCallbackUseCase
	logoutUC        *authUC.LogoutUseCase
	meUC            *authUC.MeUseCase
	logger          logger.Logger
}

// NewAuthHandler builds the auth endpoints. The OAuth use cases may be nil
// when Google sign-in is not configured.
func NewAuthHandler(
	registerUC *authUC.RegisterUseCase,
	loginUC *authUC.LoginUseCase,
	oauthStartUC *authUC.OAuthStartUseCase,
	oauthCallbackUC *authUC.OAuthCallbackUseCase,
	logoutUC *authUC.LogoutUseCase,
	meUC *authUC.MeUseCase,
	log logger.Logger,
) *AuthHandler {
	return &AuthHandler{
		registerUC:      registerUC,
		loginUC:         loginUC,
		oauthStartUC:    oauthStartUC,
		oauthCallbackUC: oauthCallbackUC,
		logoutUC:        logoutUC,
		meUC:            meUC,
		logger:          log,
	}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("email and password are required", err))
		return
	}

	out, err := h.registerUC.Execute(c.Request.Context(), authUC.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, ToTokenResponse(out))
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("email and password are required", err))
		return
	}

	out, err := h.loginUC.Execute(c.Request.Context(), authUC.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToTokenResponse(out))
}

func (h *AuthHandler) GoogleStart(c *gin.Context) {
	if h.oauthStartUC == nil {
		c.Error(apperror.NewNotFound("oauth provider", "google"))
		return
	}

	out, err := h.oauthStartUC.Execute(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": out.URL})
}

func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	if h.oauthCallbackUC == nil {
		c.Error(apperror.NewNotFound("oauth provider", "google"))
		return
	}

	if errParam := c.Query("error"); errParam != "" {
		c.Error(apperror.NewUnauthorized("Google sign-in was cancelled", nil))
		return
	}

	out, err := h.oauthCallbackUC.Execute(c.Request.Context(), authUC.OAuthCallbackInput{
		State: c.Query("state"),
		Code:  c.Query("code"),
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToTokenResponse(out))
}

func (h *AuthHandler) Logout(c *gin.Context) {
	session, ok := SessionFromGinContext(c)
	if !ok {
		c.Error(apperror.NewUnauthorized("Not signed in", nil))
		return
	}

	err := h.logoutUC.Execute(c.Request.Context(), authUC.LogoutInput{
		TokenID:   session.TokenID,
		ExpiresAt: session.ExpiresAt,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AuthHandler) Me(c *gin.Context) {
	session, ok := SessionFromGinContext(c)
	if !ok {
		c.Error(apperror.NewUnauthorized("Not signed in", nil))
		return
	}

	u, err := h.meUC.Execute(c.Request.Context(), session.UserID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToUserDTO(u))
}
