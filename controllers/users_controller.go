package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/princinho/storefront/apperror"
	"github.com/princinho/storefront/dto"
	"github.com/princinho/storefront/models"
)

// PATCH /api/admin/users/:id/role
func (a *App) UpdateUserRole() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.UpdateRoleDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			a.badRequest(c, "Role is required")
			return
		}

		role := models.Role(strings.ToLower(strings.TrimSpace(body.Role)))
		if !role.Valid() {
			a.badRequest(c, "Role must be customer or admin")
			return
		}

		user, err := a.Users.SetRole(c.Request.Context(), c.Param("id"), role)
		if errors.Is(err, models.ErrNotFound) {
			a.respondError(c, apperror.NotFound("User not found"))
			return
		}
		if err != nil {
			a.respondError(c, apperror.Internal(err))
			return
		}

		c.JSON(http.StatusOK, dto.OK("Role updated successfully").With("user", models.NewProfile(user)))
	}
}
