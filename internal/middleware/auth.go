package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/itjee/jwp-pms-v1/internal/constants"
	apierrors "github.com/itjee/jwp-pms-v1/internal/errors"
	"github.com/itjee/jwp-pms-v1/internal/models"
	"github.com/itjee/jwp-pms-v1/internal/services"
)

// Authenticator builds the authentication middleware around the auth
// service's identity resolution.
type Authenticator struct {
	authService *services.AuthService
}

func NewAuthenticator(authService *services.AuthService) *Authenticator {
	return &Authenticator{authService: authService}
}

// RequireAuth resolves the bearer token into a live user and aborts with 401
// when no identity can be resolved.
func (a *Authenticator) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := a.resolve(c)
		if user == nil {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyUser, user)
		c.Next()
	}
}

// OptionalAuth resolves the bearer token when one is present. Absence of
// identity is not an error; public resources remain readable anonymously.
func (a *Authenticator) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if user := a.resolve(c); user != nil {
			c.Set(constants.ContextKeyUser, user)
		}
		c.Next()
	}
}

// RequireRole aborts with 403 unless the authenticated user's global role is
// in the allowed set. Admin passes regardless.
func (a *Authenticator) RequireRole(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := GetCurrentUser(c)
		if !ok {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		if user.IsAdmin() {
			c.Next()
			return
		}

		for _, role := range roles {
			if user.Role == role {
				c.Next()
				return
			}
		}

		apierrors.Forbidden(c, "Insufficient role")
		c.Abort()
	}
}

func (a *Authenticator) resolve(c *gin.Context) *models.User {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil
	}

	return a.authService.ResolveIdentity(parts[1])
}

// GetCurrentUser retrieves the authenticated user from the request context.
func GetCurrentUser(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get(constants.ContextKeyUser)
	if !exists {
		return nil, false
	}

	user, ok := value.(*models.User)
	if !ok {
		return nil, false
	}
	return user, true
}
