package dto

type CartItemDTO struct {
	ProductID string `json:"productId"`
}

type UpdateQuantityDTO struct {
	Quantity *int `json:"quantity" binding:"required"`
}
