package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/princinho/storefront/auth"
	"github.com/princinho/storefront/catalog"
	"github.com/princinho/storefront/logger"
	"github.com/princinho/storefront/middleware"
	"github.com/princinho/storefront/models"
	"github.com/princinho/storefront/utils"
)

type UserStore interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	SetCart(ctx context.Context, id string, cart models.Cart) error
	SetRole(ctx context.Context, id string, role models.Role) (*models.User, error)
}

type ProductLookup interface {
	FindByID(ctx context.Context, id string) (*models.Product, error)
	FindActiveByIDs(ctx context.Context, ids []bson.ObjectID) ([]models.Product, error)
}

type CouponStore interface {
	FindActiveForUser(ctx context.Context, userID string, now time.Time) (*models.Coupon, error)
	FindActiveByCode(ctx context.Context, userID, code string) (*models.Coupon, error)
	Deactivate(ctx context.Context, id bson.ObjectID) error
}

// App holds everything the HTTP handlers depend on.
type App struct {
	Sessions *auth.Manager
	Verifier middleware.AccessVerifier
	Cookies  *utils.CookieBinder
	Catalog  *catalog.Service
	Users    UserStore
	Products ProductLookup
	Coupons  CouponStore
	Log      *logger.Logger

	// MaxUploadBytes caps multipart bodies on product creation.
	MaxUploadBytes int64
	Now            func() time.Time
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

// Routes registers every endpoint on r.
func (a *App) Routes(r *gin.Engine) {
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	requireAuth := middleware.RequireAuth(a.Verifier, a.Users, a.Log)
	adminOnly := middleware.AdminOnly()

	api := r.Group("/api")

	authRoutes := api.Group("/auth")
	{
		authRoutes.POST("/signup", a.Signup())
		authRoutes.POST("/login", a.Login())
		authRoutes.POST("/logout", a.Logout())
		authRoutes.POST("/refresh-token", a.RefreshToken())
		authRoutes.GET("/profile", requireAuth, a.Profile())
		authRoutes.POST("/change-password", requireAuth, a.ChangeMyPassword())
	}

	products := api.Group("/products")
	{
		products.GET("/featured", a.GetFeaturedProducts())
		products.GET("", requireAuth, adminOnly, a.GetProducts())
		products.POST("", requireAuth, adminOnly, a.AddProduct())
		products.PATCH("/:id", requireAuth, adminOnly, a.ToggleFeaturedProduct())
		products.DELETE("/:id", requireAuth, adminOnly, a.DeleteProduct())
	}

	cart := api.Group("/cart", requireAuth)
	{
		cart.GET("", a.GetCartProducts())
		cart.POST("", a.AddToCart())
		cart.DELETE("", a.RemoveAllFromCart())
		cart.PUT("/:id", a.UpdateQuantity())
	}

	coupons := api.Group("/coupons", requireAuth)
	{
		coupons.GET("", a.GetCoupon())
		coupons.POST("/validate", a.ValidateCoupon())
	}

	admin := api.Group("/admin", requireAuth, adminOnly)
	{
		admin.PATCH("/users/:id/role", a.UpdateUserRole())
	}
}
