package config

import (
	"log"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/princinho/storefront/apperror"
)

// Config contains server configuration parameters.
type Config struct {
	Env            string   `env:"APP_ENV" envDefault:"development"`
	Port           string   `env:"PORT" envDefault:"3000"`
	LogLevel       string   `env:"LOG_LEVEL" envDefault:"info"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`
	Mongo          Mongo    `envPrefix:"MONGODB_"`
	Redis          Redis    `envPrefix:"REDIS_"`
	Tokens         Tokens
	Admin          Admin `envPrefix:"ADMIN_"`
	Storage        Storage
}

// Mongo contains document store connection parameters.
type Mongo struct {
	URI      string `env:"URI,required,notEmpty"`
	Database string `env:"DATABASE" envDefault:"storefront"`
}

// Redis contains the key-value store connection string.
type Redis struct {
	URL string `env:"URL,required,notEmpty"`
}

// Tokens holds the two independent signing secrets.
type Tokens struct {
	AccessSecret  string `env:"ACCESS_TOKEN_SECRET,required,notEmpty"`
	RefreshSecret string `env:"REFRESH_TOKEN_SECRET,required,notEmpty"`
}

// Admin is the optional account seeded at startup.
type Admin struct {
	Email    string `env:"EMAIL"`
	Password string `env:"PASSWORD"`
}

// Storage selects and configures the product image store.
type Storage struct {
	Backend     string `env:"IMAGE_STORAGE" envDefault:"none"`
	MaxUploadMB int    `env:"MAX_UPLOAD_SIZE_MB" envDefault:"5"`
	R2          R2     `envPrefix:"R2_"`
	GCS         GCS    `envPrefix:"GCS_"`
}

// R2 contains Cloudflare R2 (S3 compatible) parameters.
type R2 struct {
	Bucket       string `env:"BUCKET"`
	AccessKeyID  string `env:"ACCESS_KEY_ID"`
	SecretKey    string `env:"SECRET_ACCESS_KEY"`
	Endpoint     string `env:"ENDPOINT"`
	PublicDomain string `env:"PUBLIC_DOMAIN"`
}

// GCS contains Google Cloud Storage parameters.
type GCS struct {
	Bucket          string `env:"BUCKET"`
	CredentialsFile string `env:"CREDENTIALS_FILE"`
}

// Load reads .env when present and parses the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}
	return Parse()
}

// Parse builds a Config from the process environment only.
func Parse() (*Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, apperror.Configuration("failed to parse config", err)
	}
	cfg.Env = strings.ToLower(strings.TrimSpace(cfg.Env))
	cfg.Storage.Backend = strings.ToLower(strings.TrimSpace(cfg.Storage.Backend))
	return &cfg, nil
}

// IsDevelopment reports whether the process runs in a local environment.
func (c *Config) IsDevelopment() bool {
	return IsDevelopmentEnv(c.Env)
}

// IsDevelopmentEnv reports whether env names a local/development environment.
func IsDevelopmentEnv(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "", "development", "dev", "local", "test":
		return true
	}
	return false
}
