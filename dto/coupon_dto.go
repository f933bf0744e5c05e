package dto

import "time"

type ValidateCouponDTO struct {
	Code string `json:"code"`
}

type CouponSummary struct {
	Code               string    `json:"code"`
	DiscountPercentage int       `json:"discountPercentage"`
	ExpirationDate     time.Time `json:"expirationDate"`
}
