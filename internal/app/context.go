package app

import (
	"log/slog"

	"gorm.io/gorm"

	"github.com/realtruedate/backend/internal/billing"
	"github.com/realtruedate/backend/internal/cache"
	"github.com/realtruedate/backend/internal/config"
	"github.com/realtruedate/backend/internal/mailer"
	"github.com/realtruedate/backend/internal/storage"
	"github.com/realtruedate/backend/internal/tasks"
	"github.com/realtruedate/backend/internal/token"
)

// AppContext holds the shared dependencies handed to every service. Nothing
// reads ambient globals; handlers get their data access through this bundle.
type AppContext struct {
	Cfg        *config.Config
	DB         *gorm.DB
	RedisCache *cache.RedisCache
	Logger     *slog.Logger
	Storage    storage.ObjectStorage
	Billing    billing.Billing
	Mailer     mailer.Mailer
	Tasks      tasks.Enqueuer
	Tokens     *token.Issuer
}

// New creates a new AppContext.
func New(cfg *config.Config, db *gorm.DB, rdb *cache.RedisCache, logger *slog.Logger) *AppContext {
	return &AppContext{
		Cfg:        cfg,
		DB:         db,
		RedisCache: rdb,
		Logger:     logger,
		Tokens:     token.NewIssuer(cfg),
	}
}
