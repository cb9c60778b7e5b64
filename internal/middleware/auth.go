package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/atelierhq/atelier-api/internal/authz"
	"github.com/atelierhq/atelier-api/internal/constants"
	apierrors "github.com/atelierhq/atelier-api/internal/errors"
	"github.com/atelierhq/atelier-api/internal/models"
	"github.com/atelierhq/atelier-api/internal/repository"
	"github.com/atelierhq/atelier-api/internal/token"
)

// RequireAuth validates the bearer token and loads the account into the
// request context. Deactivated accounts are rejected even with a valid token.
func RequireAuth(tokens *token.Manager, users repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || raw == "" {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		claims, err := tokens.Verify(raw)
		if err != nil {
			apierrors.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}

		user, err := users.FindByID(claims.UserID)
		if err != nil || !user.IsActive {
			apierrors.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyUser, user)
		c.Next()
	}
}

// CurrentUser retrieves the authenticated account from context.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get(constants.ContextKeyUser)
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok
}

// Actor builds the policy actor for the authenticated account.
func Actor(c *gin.Context) (authz.Actor, bool) {
	user, ok := CurrentUser(c)
	if !ok {
		return authz.Actor{}, false
	}
	return authz.ActorFor(user), true
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (uint64, bool) {
	user, ok := CurrentUser(c)
	if !ok {
		return 0, false
	}
	return user.ID, true
}
