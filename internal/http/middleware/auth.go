package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/philoatlas-backend/internal/http/response"
	"github.com/yungbote/philoatlas-backend/internal/platform/apierr"
	"github.com/yungbote/philoatlas-backend/internal/platform/ctxutil"
	"github.com/yungbote/philoatlas-backend/internal/platform/logger"
	"github.com/yungbote/philoatlas-backend/internal/services"
)

type AuthMiddleware struct {
	log         *logger.Logger
	authService services.AuthService
}

func NewAuthMiddleware(log *logger.Logger, authService services.AuthService) *AuthMiddleware {
	middlewareLogger := log.With("middleware", "AuthMiddleware")
	return &AuthMiddleware{log: middlewareLogger, authService: authService}
}

// RequireAuth rejects the request with a 401 envelope unless it carries a valid bearer token.
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c.GetHeader("Authorization"))
		if tokenString == "" {
			response.RespondAPIError(c, apierr.Unauthorized("missing or invalid token"))
			return
		}
		ctx, err := am.authService.SetContextFromToken(c.Request.Context(), tokenString)
		if err != nil {
			am.log.Debug("rejected bearer token", "path", c.FullPath(), "error", err)
			response.RespondAPIError(c, err)
			return
		}
		rd := ctxutil.GetRequestData(ctx)
		if rd == nil || rd.UserID == uuid.Nil {
			response.RespondAPIError(c, apierr.Unauthorized("missing or invalid token"))
			return
		}
		c.Request = c.Request.WithContext(ctx)
		c.Set("user_id", rd.UserID.String())
		c.Next()
	}
}

func bearerToken(authHeader string) string {
	authHeader = strings.TrimSpace(authHeader)
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}
