package dto

type UpdateRoleDTO struct {
	Role string `json:"role" binding:"required"`
}
