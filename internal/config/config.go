package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	App struct {
		ENV string
	}

	Log struct {
		Level     string
		Format    string
		Component string
		Source    bool
	}

	DB struct {
		DSN      string
		Host     string
		Port     string
		User     string
		Password string
		Name     string
	}

	Redis struct {
		Addr     string
		Password string
		DB       int
	}

	HTTP struct {
		Host string
		Port string
	}

	JWT struct {
		Secret           string
		AccessTTLMinutes int
		RefreshTTLHours  int
	}

	S3 struct {
		Region               string
		Bucket               string
		PresignExpirySeconds int
		ImageSizeLimitMB     int
		VideoSizeLimitMB     int
	}

	Stripe struct {
		SecretKey string
	}

	SMTP struct {
		Host     string
		Port     int
		User     string
		Password string
		From     string
	}

	Match struct {
		// Whether match discovery excludes users on either side of a block
		// edge. Production behavior is off; flip deliberately.
		ExcludeBlocked bool
	}

	Video struct {
		CascadeFile       string
		MaxRetries        int
		RetryDelaySeconds int
	}
}

func New() *Config {
	// Missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	cfg := &Config{}

	cfg.App.ENV = getEnvDefault("APP_ENV", "development")

	// Logger
	cfg.Log.Level = getEnvDefault("LOG_LEVEL", "info")
	cfg.Log.Format = getEnvDefault("LOG_FORMAT", "text")
	cfg.Log.Component = getEnvDefault("LOG_COMPONENT", "api_server")
	cfg.Log.Source = isTruthy(os.Getenv("LOG_SOURCE"))

	// Database
	cfg.DB.DSN = os.Getenv("MYSQL_DSN")
	if cfg.DB.DSN == "" {
		cfg.DB.Host = getEnvDefault("DB_HOST", "localhost")
		cfg.DB.Port = getEnvDefault("DB_PORT", "3306")
		cfg.DB.User = getEnvDefault("DB_USER", "root")
		cfg.DB.Password = getEnvDefault("DB_PASSWORD", "root")
		cfg.DB.Name = getEnvDefault("DB_NAME", "truedate")

		cfg.DB.DSN = fmt.Sprintf(
			"%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
			cfg.DB.User, cfg.DB.Password, cfg.DB.Host, cfg.DB.Port, cfg.DB.Name,
		)
	}

	// Redis
	cfg.Redis.Addr = getEnvDefault("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnvDefault("REDIS_PASSWORD", "")
	cfg.Redis.DB = getEnvInt("REDIS_DB", 0)

	// HTTP
	cfg.HTTP.Host = getEnvDefault("HTTP_HOST", "0.0.0.0")
	cfg.HTTP.Port = getEnvDefault("HTTP_PORT", "8080")

	// JWT
	cfg.JWT.Secret = getEnvDefault("JWT_SECRET", "dev-secret-do-not-ship")
	cfg.JWT.AccessTTLMinutes = getEnvInt("JWT_ACCESS_TTL_MINUTES", 60)
	cfg.JWT.RefreshTTLHours = getEnvInt("JWT_REFRESH_TTL_HOURS", 24*7)

	// Object storage
	cfg.S3.Region = getEnvDefault("AWS_S3_REGION", "us-east-1")
	cfg.S3.Bucket = getEnvDefault("AWS_S3_BUCKET", "truedate-media")
	cfg.S3.PresignExpirySeconds = getEnvInt("S3_PRESIGN_EXPIRY_SECONDS", 3600)
	cfg.S3.ImageSizeLimitMB = getEnvInt("IMAGE_SIZE_LIMIT_MB", 5)
	cfg.S3.VideoSizeLimitMB = getEnvInt("VIDEO_SIZE_LIMIT_MB", 50)

	// Stripe
	cfg.Stripe.SecretKey = os.Getenv("STRIPE_SECRET_KEY")

	// SMTP
	cfg.SMTP.Host = getEnvDefault("SMTP_HOST", "localhost")
	cfg.SMTP.Port = getEnvInt("SMTP_PORT", 587)
	cfg.SMTP.User = os.Getenv("SMTP_USER")
	cfg.SMTP.Password = os.Getenv("SMTP_PASSWORD")
	cfg.SMTP.From = getEnvDefault("SMTP_FROM", "no-reply@realtruedate.com")

	// Matching
	cfg.Match.ExcludeBlocked = isTruthy(os.Getenv("MATCH_EXCLUDE_BLOCKED"))

	// Video pipeline
	cfg.Video.CascadeFile = getEnvDefault("VIDEO_CASCADE_FILE", "assets/facefinder")
	cfg.Video.MaxRetries = getEnvInt("VIDEO_MAX_RETRIES", 3)
	cfg.Video.RetryDelaySeconds = getEnvInt("VIDEO_RETRY_DELAY_SECONDS", 60)

	return cfg
}

func getEnvDefault(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getEnvInt(k string, def int) int {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}
