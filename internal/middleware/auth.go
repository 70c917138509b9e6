package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-api/internal/handler"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/pkg/auth"
	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
)

type AuthMiddleware struct {
	jwt auth.JWTService
}

func NewAuthMiddleware(jwt auth.JWTService) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt}
}

// Authenticate verifies the bearer token and stores the staff principal in the context
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			handler.Error(c, apperrors.Unauthorized(nil))
			return
		}

		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
			handler.Error(c, apperrors.Unauthorized(nil))
			return
		}

		principal, err := m.jwt.ValidateToken(token)
		if err != nil {
			appErr := apperrors.Unauthorized(err)
			_ = c.Error(appErr)
			handler.Error(c, appErr)
			return
		}

		handler.SetPrincipal(c, *principal)
		c.Next()
	}
}

// RequireRole lets the request through only when the principal holds one of roles.
// It must run after Authenticate.
func (m *AuthMiddleware) RequireRole(roles ...model.StaffRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := handler.Principal(c)
		if !ok {
			handler.Error(c, apperrors.Unauthorized(nil))
			return
		}
		if !p.HasRole(roles...) {
			handler.Error(c, apperrors.Forbidden("permission denied"))
			return
		}
		c.Next()
	}
}
