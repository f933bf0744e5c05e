package controllers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/princinho/storefront/apperror"
	"github.com/princinho/storefront/dto"
	"github.com/princinho/storefront/middleware"
	"github.com/princinho/storefront/models"
)

// GET /api/cart lists the active products in the caller's cart with the
// quantity held of each.
func (a *App) GetCartProducts() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, _ := middleware.CurrentUser(c)

		products, err := a.Products.FindActiveByIDs(c.Request.Context(), user.CartItems.ProductIDs())
		if err != nil {
			a.respondError(c, apperror.Internal(err))
			return
		}

		byID := make(map[bson.ObjectID]models.Product, len(products))
		for _, p := range products {
			byID[p.ID] = p
		}
		quantities := user.CartItems.Quantities()

		items := make([]models.CartProduct, 0, len(products))
		for _, id := range user.CartItems.ProductIDs() {
			p, ok := byID[id]
			if !ok {
				continue
			}
			items = append(items, models.CartProduct{Product: p, Quantity: quantities[id]})
		}

		c.JSON(http.StatusOK, dto.OK("").With("products", items))
	}
}

// POST /api/cart
func (a *App) AddToCart() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.CartItemDTO
		if err := c.ShouldBindJSON(&body); err != nil || body.ProductID == "" {
			a.badRequest(c, "Product ID is required")
			return
		}
		user, _ := middleware.CurrentUser(c)
		ctx := c.Request.Context()

		product, err := a.Products.FindByID(ctx, body.ProductID)
		if err != nil && !errors.Is(err, models.ErrNotFound) {
			a.respondError(c, apperror.Internal(err))
			return
		}
		if product == nil || !product.IsActive {
			a.respondError(c, apperror.NotFound("Product not found"))
			return
		}

		cart := user.CartItems.Add(product.ID)
		if err := a.Users.SetCart(ctx, user.ID, cart); err != nil {
			a.respondError(c, apperror.Internal(err))
			return
		}

		c.JSON(http.StatusOK, dto.OK("Product added to cart").With("cartItems", cart))
	}
}

// DELETE /api/cart removes every line for productId, or empties the cart
// when no productId is given.
func (a *App) RemoveAllFromCart() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.CartItemDTO
		if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
			a.badRequest(c, "Invalid request body")
			return
		}
		user, _ := middleware.CurrentUser(c)

		cart := models.Cart{}
		if body.ProductID != "" {
			id, err := bson.ObjectIDFromHex(body.ProductID)
			if err != nil {
				a.badRequest(c, "Invalid product id")
				return
			}
			cart = user.CartItems.RemoveAll(id)
		}

		if err := a.Users.SetCart(c.Request.Context(), user.ID, cart); err != nil {
			a.respondError(c, apperror.Internal(err))
			return
		}

		c.JSON(http.StatusOK, dto.OK("Product removed from cart").With("cartItems", cart))
	}
}

// PUT /api/cart/:id
func (a *App) UpdateQuantity() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := bson.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			a.badRequest(c, "Invalid product id")
			return
		}
		var body dto.UpdateQuantityDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			a.badRequest(c, "Quantity is required")
			return
		}
		if *body.Quantity < 0 {
			a.badRequest(c, "Quantity must not be negative")
			return
		}
		user, _ := middleware.CurrentUser(c)

		cart, ok := user.CartItems.SetQuantity(id, *body.Quantity)
		if !ok {
			a.respondError(c, apperror.NotFound("Product not found in cart"))
			return
		}
		if err := a.Users.SetCart(c.Request.Context(), user.ID, cart); err != nil {
			a.respondError(c, apperror.Internal(err))
			return
		}

		c.JSON(http.StatusOK, dto.OK("Cart updated").With("cartItems", cart))
	}
}
