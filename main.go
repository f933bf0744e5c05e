package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/princinho/storefront/auth"
	"github.com/princinho/storefront/cache"
	"github.com/princinho/storefront/catalog"
	"github.com/princinho/storefront/config"
	"github.com/princinho/storefront/controllers"
	"github.com/princinho/storefront/database"
	"github.com/princinho/storefront/logger"
	"github.com/princinho/storefront/repository"
	"github.com/princinho/storefront/storage"
	"github.com/princinho/storefront/tokens"
	"github.com/princinho/storefront/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New("error").Fatal("failed to load config", "error", err)
	}
	log := logger.New(cfg.LogLevel)

	issuer, err := tokens.NewIssuer(cfg.Tokens.AccessSecret, cfg.Tokens.RefreshSecret)
	if err != nil {
		log.Fatal("invalid token configuration", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mongoClient, err := database.Connect(ctx, cfg.Mongo.URI)
	if err != nil {
		log.Fatal("failed to connect to mongodb", "error", err)
	}
	db := mongoClient.Database(cfg.Mongo.Database)
	if err := database.EnsureIndexes(ctx, db); err != nil {
		log.Fatal("failed to create indexes", "error", err)
	}

	redisClient, err := database.NewRedis(ctx, cfg.Redis.URL)
	if err != nil {
		log.Fatal("failed to connect to redis", "error", err)
	}

	images, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		log.Fatal("failed to set up image storage", "error", err)
	}

	users := repository.NewUserRepository(db)
	products := repository.NewProductRepository(db)
	coupons := repository.NewCouponRepository(db)

	//seeding admin user
	if err := seedAdmin(ctx, users, cfg.Admin, log); err != nil {
		log.Fatal("failed to seed admin user", "error", err)
	}

	app := &controllers.App{
		Sessions:       auth.NewManager(users, repository.NewRefreshTokenStore(redisClient), issuer, log),
		Verifier:       issuer,
		Cookies:        utils.NewCookieBinder(cfg.Env),
		Catalog:        catalog.NewService(products, cache.NewRedisStore(redisClient), images, log),
		Users:          users,
		Products:       products,
		Coupons:        coupons,
		Log:            log,
		MaxUploadBytes: int64(cfg.Storage.MaxUploadMB) << 20,
	}

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	allowedOrigins := map[string]bool{}
	for _, origin := range cfg.AllowedOrigins {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			allowedOrigins[origin] = true
		}
	}
	log.Info("cors configured", "origins", cfg.AllowedOrigins)
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return allowedOrigins[origin]
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	app.Routes(r)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server failed", "error", err)
		}
	}()
	log.Info("storefront started", "port", cfg.Port, "env", cfg.Env, "image_storage", cfg.Storage.Backend)

	<-ctx.Done()
	log.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
	if err := redisClient.Close(); err != nil {
		log.Error("failed to close redis", "error", err)
	}
	if err := mongoClient.Disconnect(shutdownCtx); err != nil {
		log.Error("failed to disconnect mongodb", "error", err)
	}
	log.Info("storefront stopped cleanly")
}

// seedAdmin creates the configured admin account if it does not exist yet.
// Nothing is seeded when either variable is unset.
func seedAdmin(ctx context.Context, users *repository.UserRepository, admin config.Admin, log *logger.Logger) error {
	email := utils.NormalizeEmail(admin.Email)
	if email == "" || admin.Password == "" {
		return nil
	}

	hash, err := utils.HashPassword(admin.Password)
	if err != nil {
		return err
	}
	created, err := users.SeedAdmin(ctx, email, hash)
	if err != nil {
		return err
	}
	if created {
		log.Info("admin user created", "email", email)
	}
	return nil
}
