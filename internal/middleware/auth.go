package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/selimcan/tasktracker/internal/auth"
	"github.com/selimcan/tasktracker/internal/constants"
	"github.com/selimcan/tasktracker/internal/database"
	apierrors "github.com/selimcan/tasktracker/internal/errors"
	"github.com/selimcan/tasktracker/internal/models"
)

// RequireAuth validates the bearer access token and loads the actor fresh
// from the database so privilege decisions always run against persisted
// state, never against stale token claims.
func RequireAuth(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			apierrors.Unauthorized(c, "Authorization header required")
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			apierrors.Unauthorized(c, "Invalid authorization format. Use: Bearer <token>")
			c.Abort()
			return
		}

		claims, err := auth.ValidateToken(tokenString, jwtSecret, auth.TokenTypeAccess)
		if err != nil {
			apierrors.Unauthorized(c, "Invalid or expired token")
			c.Abort()
			return
		}

		var user models.User
		if err := database.GetDB().Preload("UserType").First(&user, claims.UserID).Error; err != nil {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}
		if !user.IsActive {
			apierrors.Unauthorized(c, "This account is disabled.")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyUser, &user)
		c.Next()
	}
}

// GetCurrentUser retrieves the authenticated actor from the context
func GetCurrentUser(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get(constants.ContextKeyUser)
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok
}
