package controllers

import (
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/princinho/storefront/catalog"
	"github.com/princinho/storefront/dto"
)

// GET /api/products (admin)
func (a *App) GetProducts() gin.HandlerFunc {
	return func(c *gin.Context) {
		products, err := a.Catalog.ListAll(c.Request.Context())
		if err != nil {
			a.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.OK("").With("products", products))
	}
}

// GET /api/products/featured
func (a *App) GetFeaturedProducts() gin.HandlerFunc {
	return func(c *gin.Context) {
		products, src, err := a.Catalog.Featured(c.Request.Context())
		if err != nil {
			a.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.OK("").
			With("source", src).
			With("products", products))
	}
}

// POST /api/products (admin) takes either a JSON body or a multipart form
// with the JSON payload in "data" and an optional "image" file.
func (a *App) AddProduct() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.CreateProductDTO
		var image *multipart.FileHeader

		if c.ContentType() == "multipart/form-data" {
			if a.MaxUploadBytes > 0 {
				c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, a.MaxUploadBytes+1<<20)
			}
			jsonData := c.PostForm("data")
			if jsonData == "" {
				a.badRequest(c, "missing data")
				return
			}
			if err := json.Unmarshal([]byte(jsonData), &body); err != nil {
				a.badRequest(c, "invalid data json")
				return
			}
			fh, err := c.FormFile("image")
			switch {
			case err == nil:
				image = fh
			case !errors.Is(err, http.ErrMissingFile):
				a.badRequest(c, "invalid multipart form")
				return
			}
		} else if err := c.ShouldBindJSON(&body); err != nil {
			a.badRequest(c, "Invalid request body")
			return
		}

		product, err := a.Catalog.Create(c.Request.Context(), catalog.Input{
			Name:        body.Name,
			Description: body.Description,
			Price:       body.Price,
			Category:    body.Category,
			Image:       body.Image,
			IsFeatured:  body.IsFeatured,
		}, image)
		if err != nil {
			a.respondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, dto.OK("Product created successfully").With("product", product))
	}
}

// PATCH /api/products/:id (admin)
func (a *App) ToggleFeaturedProduct() gin.HandlerFunc {
	return func(c *gin.Context) {
		product, err := a.Catalog.ToggleFeatured(c.Request.Context(), c.Param("id"))
		if err != nil {
			a.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.OK("Product updated successfully").With("product", product))
	}
}

// DELETE /api/products/:id (admin)
func (a *App) DeleteProduct() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := a.Catalog.Delete(c.Request.Context(), c.Param("id")); err != nil {
			a.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.OK("Product deleted successfully"))
	}
}
