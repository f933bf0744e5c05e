package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/princinho/storefront/apperror"
	"github.com/princinho/storefront/dto"
	"github.com/princinho/storefront/middleware"
	"github.com/princinho/storefront/models"
)

// GET /api/coupons
func (a *App) GetCoupon() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, _ := middleware.CurrentUser(c)

		coupon, err := a.Coupons.FindActiveForUser(c.Request.Context(), user.ID, a.now())
		if errors.Is(err, models.ErrNotFound) {
			a.respondError(c, apperror.NotFound("No active coupon found"))
			return
		}
		if err != nil {
			a.respondError(c, apperror.Internal(err))
			return
		}

		c.JSON(http.StatusOK, dto.OK("").With("coupon", coupon))
	}
}

// POST /api/coupons/validate deactivates the coupon when it has expired.
func (a *App) ValidateCoupon() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.ValidateCouponDTO
		if err := c.ShouldBindJSON(&body); err != nil || strings.TrimSpace(body.Code) == "" {
			a.badRequest(c, "Coupon code is required")
			return
		}
		user, _ := middleware.CurrentUser(c)
		ctx := c.Request.Context()

		code := strings.ToUpper(strings.TrimSpace(body.Code))
		coupon, err := a.Coupons.FindActiveByCode(ctx, user.ID, code)
		if errors.Is(err, models.ErrNotFound) {
			a.respondError(c, apperror.NotFound("Coupon not found or inactive"))
			return
		}
		if err != nil {
			a.respondError(c, apperror.Internal(err))
			return
		}

		if coupon.ExpiredAt(a.now()) {
			if err := a.Coupons.Deactivate(ctx, coupon.ID); err != nil {
				a.respondError(c, apperror.Internal(err))
				return
			}
			a.respondError(c, apperror.Expired("Coupon has expired"))
			return
		}

		c.JSON(http.StatusOK, dto.OK("Coupon is valid").With("coupon", dto.CouponSummary{
			Code:               coupon.Code,
			DiscountPercentage: coupon.DiscountPercentage,
			ExpirationDate:     coupon.ExpirationDate,
		}))
	}
}
