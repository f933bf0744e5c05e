package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/princinho/storefront/apperror"
	"github.com/princinho/storefront/dto"
	"github.com/princinho/storefront/middleware"
	"github.com/princinho/storefront/utils"
)

// POST /api/auth/signup
func (a *App) Signup() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.SignupDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			a.badRequest(c, "Invalid request body")
			return
		}

		session, err := a.Sessions.Register(c.Request.Context(), body.Name, body.Email, body.Password)
		if err != nil {
			a.respondError(c, err)
			return
		}

		a.Cookies.SetSession(c.Writer, session.Tokens)
		c.JSON(http.StatusCreated, dto.OK("User created successfully").With("user", session.User))
	}
}

// POST /api/auth/login
func (a *App) Login() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.LoginDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			a.badRequest(c, "Invalid request body")
			return
		}

		session, err := a.Sessions.Authenticate(c.Request.Context(), body.Email, body.Password)
		if err != nil {
			a.respondError(c, err)
			return
		}

		a.Cookies.SetSession(c.Writer, session.Tokens)
		c.JSON(http.StatusOK, dto.OK("Login successful").With("user", session.User))
	}
}

// POST /api/auth/logout always succeeds, with or without a session.
func (a *App) Logout() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, err := c.Cookie(utils.RefreshTokenCookie); err == nil {
			a.Sessions.Revoke(c.Request.Context(), token)
		}

		a.Cookies.Clear(c.Writer)
		c.JSON(http.StatusOK, dto.OK("Logged out successfully"))
	}
}

// POST /api/auth/refresh-token
func (a *App) RefreshToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie(utils.RefreshTokenCookie)

		access, err := a.Sessions.Rotate(c.Request.Context(), token)
		if err != nil {
			a.respondError(c, err)
			return
		}

		a.Cookies.SetAccessToken(c.Writer, access)
		c.JSON(http.StatusOK, dto.OK("Token refreshed successfully"))
	}
}

// GET /api/auth/profile
func (a *App) Profile() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			a.respondError(c, apperror.Unauthorized("Unauthorized - Authentication required"))
			return
		}
		c.JSON(http.StatusOK, dto.OK("").With("user", user))
	}
}

// POST /api/auth/change-password signs the caller out everywhere,
// including this client.
func (a *App) ChangeMyPassword() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.ChangeMyPasswordDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			a.badRequest(c, "Invalid request body")
			return
		}

		user, ok := middleware.CurrentUser(c)
		if !ok {
			a.respondError(c, apperror.Unauthorized("Unauthorized - Authentication required"))
			return
		}

		if err := a.Sessions.ChangePassword(c.Request.Context(), user.ID, body.CurrentPassword, body.NewPassword); err != nil {
			a.respondError(c, err)
			return
		}

		a.Cookies.Clear(c.Writer)
		c.JSON(http.StatusOK, dto.OK("Password updated successfully"))
	}
}
