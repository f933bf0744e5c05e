package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/princinho/storefront/dto"
	"github.com/princinho/storefront/logger"
	"github.com/princinho/storefront/models"
	"github.com/princinho/storefront/utils"
)

const userKey = "user"

type AccessVerifier interface {
	VerifyAccess(token string) (string, error)
}

type UserFinder interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// RequireAuth admits requests whose accessToken cookie verifies and names an
// existing account, and attaches that account's profile to the context.
func RequireAuth(verifier AccessVerifier, users UserFinder, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(utils.AccessTokenCookie)
		if err != nil || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.Fail("Unauthorized - No access token provided"))
			return
		}

		userID, err := verifier.VerifyAccess(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.Fail("Unauthorized - Invalid or expired token"))
			return
		}

		user, err := users.FindByID(c.Request.Context(), userID)
		if errors.Is(err, models.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.Fail("User not found"))
			return
		}
		if err != nil {
			log.Error("auth: account lookup failed", "user_id", userID, "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, dto.Fail("Internal server error"))
			return
		}

		c.Set(userKey, models.NewProfile(user))
		c.Next()
	}
}

// AdminOnly must run after RequireAuth.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := CurrentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.Fail("Unauthorized - Authentication required"))
			return
		}
		if !p.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, dto.Fail("Forbidden - Admin access only"))
			return
		}
		c.Next()
	}
}

// CurrentUser returns the profile RequireAuth attached.
func CurrentUser(c *gin.Context) (models.Profile, bool) {
	v, ok := c.Get(userKey)
	if !ok {
		return models.Profile{}, false
	}
	p, ok := v.(models.Profile)
	return p, ok
}
