package http

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/khoahotran/career-navigator/internal/application/service"
	"github.com/khoahotran/career-navigator/pkg/apperror"
	"github.com/khoahotran/career-navigator/pkg/auth"
	"github.com/khoahotran/career-navigator/pkg/logger"
)

const (
	GinContextKeySession = "session"
)

type sessionContextKey struct{}

// Session is the authenticated caller of a request.
type Session struct {
	UserID    uuid.UUID
	TokenID   string
	ExpiresAt time.Time
}

func AuthMiddleware(jwtSvc *auth.JWTService, sessions service.SessionStore, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Error(apperror.NewUnauthorized("Authorization header is required", nil))
			c.Abort()
			return
		}

		tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok {
			c.Error(apperror.NewUnauthorized("Invalid token format", nil))
			c.Abort()
			return
		}

		claims, err := jwtSvc.ValidateToken(tokenString)
		if err != nil {
			c.Error(apperror.NewUnauthorized("Invalid or expired token", err))
			c.Abort()
			return
		}

		revoked, err := sessions.IsRevoked(c.Request.Context(), claims.ID)
		if err != nil {
			log.Error("Failed to check token revocation", err, zap.String("user_id", claims.UserID.String()))
			c.Error(apperror.NewInternal("failed to check token", err))
			c.Abort()
			return
		}
		if revoked {
			c.Error(apperror.NewUnauthorized("Token has been revoked", nil))
			c.Abort()
			return
		}

		session := Session{UserID: claims.UserID, TokenID: claims.ID}
		if claims.ExpiresAt != nil {
			session.ExpiresAt = claims.ExpiresAt.Time
		}

		c.Set(GinContextKeySession, session)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), sessionContextKey{}, session))

		c.Next()
	}
}

func SessionFromContext(ctx context.Context) (Session, bool) {
	session, ok := ctx.Value(sessionContextKey{}).(Session)
	return session, ok
}

func SessionFromGinContext(c *gin.Context) (Session, bool) {
	v, ok := c.Get(GinContextKeySession)
	if !ok {
		return Session{}, false
	}
	session, ok := v.(Session)
	return session, ok
}

// ErrorMiddleware renders the last error a handler attached with c.Error.
func ErrorMiddleware(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
		}

		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			status := apperror.ToHTTPStatus(appErr)
			if status >= http.StatusInternalServerError {
				log.Error("Request failed", err, append(fields, zap.Int("status", status))...)
			} else {
				log.Info("Request rejected", append(fields, zap.Int("status", status), zap.String("details", appErr.Details))...)
			}
			c.AbortWithStatusJSON(status, appErr.ToJSON())
			return
		}

		log.Error("Unhandled error", err, fields...)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":   apperror.ErrInternal.Error(),
			"message": "An internal server error occurred",
		})
	}
}

// RateLimitMiddleware limits per signed-in user, falling back to client IP.
func RateLimitMiddleware(limiter *RateLimiter, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP()
		if session, ok := SessionFromGinContext(c); ok {
			key = "user:" + session.UserID.String()
		}

		if !limiter.Allow(key) {
			log.Info("Rate limit exceeded", zap.String("key", key), zap.String("path", c.FullPath()))
			c.Error(apperror.NewTooManyRequests("rate limit exceeded for " + key))
			c.Abort()
			return
		}
		c.Next()
	}
}
