package main

import (
	"context"

	"github.com/realtruedate/backend/internal/app"
	"github.com/realtruedate/backend/internal/billing"
	"github.com/realtruedate/backend/internal/cache"
	"github.com/realtruedate/backend/internal/config"
	"github.com/realtruedate/backend/internal/db"
	"github.com/realtruedate/backend/internal/logger"
	"github.com/realtruedate/backend/internal/mailer"
	"github.com/realtruedate/backend/internal/repository"
	"github.com/realtruedate/backend/internal/server"
	"github.com/realtruedate/backend/internal/service/admin"
	"github.com/realtruedate/backend/internal/service/auth"
	"github.com/realtruedate/backend/internal/service/content"
	"github.com/realtruedate/backend/internal/service/match"
	"github.com/realtruedate/backend/internal/service/profile"
	"github.com/realtruedate/backend/internal/service/quota"
	"github.com/realtruedate/backend/internal/service/subscription"
	"github.com/realtruedate/backend/internal/service/upload"
	"github.com/realtruedate/backend/internal/service/video"
	"github.com/realtruedate/backend/internal/storage"
	"github.com/realtruedate/backend/internal/tasks"
)

func main() {
	cfg := config.New()

	// Init logger (global singleton)
	logger.InitFromConfig(cfg)
	log := logger.L()

	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", "err", err)
		return
	}

	redisCache := cache.NewRedisCache(cfg)
	if err := redisCache.Ping(context.Background()); err != nil {
		log.Error("failed to connect to redis", "err", err)
		return
	}

	store, err := storage.NewS3(context.Background(), cfg)
	if err != nil {
		log.Error("failed to init object storage", "err", err)
		return
	}

	appCtx := app.New(cfg, database, redisCache, log)
	appCtx.Storage = store
	appCtx.Billing = billing.NewStripe(cfg)
	appCtx.Mailer = mailer.NewSMTP(cfg)
	appCtx.Tasks = tasks.NewClient(cfg)

	users := repository.NewUserRepository(database)
	swipes := repository.NewSwipeRepository(database)
	blocks := repository.NewBlockRepository(database)
	matches := repository.NewMatchRepository(database)
	subs := repository.NewSubscriptionRepository(database)
	videos := repository.NewVideoRepository(database)
	contents := repository.NewContentRepository(database)
	adminRepo := repository.NewAdminRepository(database)

	quotaSvc := quota.NewService(users, swipes, subs, redisCache, log)

	registrars := []server.Registrar{
		auth.NewHandler(auth.NewService(cfg, users, appCtx.Tokens, appCtx.Mailer, log)),
		profile.NewHandler(profile.NewService(cfg, users, blocks, store, log)),
		match.NewHandler(match.NewService(cfg, users, matches, swipes, blocks, quotaSvc, store, log)),
		subscription.NewHandler(subscription.NewService(subs, users, appCtx.Billing, log)),
		video.NewHandler(video.NewService(cfg, videos, store, appCtx.Tasks, log)),
		content.NewHandler(content.NewService(contents)),
		admin.NewHandler(admin.NewService(adminRepo)),
		upload.NewHandler(cfg, store, log),
	}

	if cfg.App.ENV == "development" {
		if err := db.SeedTestData(database); err != nil {
			log.Error("failed to seed", "err", err)
		}
	}

	addr := cfg.HTTP.Host + ":" + cfg.HTTP.Port
	log.Info("starting HTTP server", "addr", addr)

	if err := server.StartHTTPServer(appCtx, registrars...); err != nil {
		log.Error("failed to start HTTP server", "err", err)
	}
}
