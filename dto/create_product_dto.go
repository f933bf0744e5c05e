package dto

// CreateProductDTO is the product payload, sent either as a JSON body or as
// the "data" field of a multipart form next to an "image" file.
type CreateProductDTO struct {
	Name        string  `json:"name" form:"name"`
	Description string  `json:"description" form:"description"`
	Price       float64 `json:"price" form:"price"`
	Category    string  `json:"category" form:"category"`
	Image       string  `json:"image" form:"image"`
	IsFeatured  bool    `json:"isFeatured" form:"isFeatured"`
}
