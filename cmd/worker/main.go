package main

import (
	"context"

	"github.com/hibiken/asynq"

	"github.com/realtruedate/backend/internal/config"
	"github.com/realtruedate/backend/internal/db"
	"github.com/realtruedate/backend/internal/logger"
	"github.com/realtruedate/backend/internal/repository"
	"github.com/realtruedate/backend/internal/storage"
	"github.com/realtruedate/backend/internal/tasks"
	"github.com/realtruedate/backend/internal/video"
)

func main() {
	cfg := config.New()

	logger.InitFromConfig(cfg)
	log := logger.L()

	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", "err", err)
		return
	}

	store, err := storage.NewS3(context.Background(), cfg)
	if err != nil {
		log.Error("failed to init object storage", "err", err)
		return
	}

	analyzer, err := video.NewFaceAnalyzer(cfg.Video.CascadeFile)
	if err != nil {
		log.Error("failed to load face cascade", "err", err, "file", cfg.Video.CascadeFile)
		return
	}

	worker := video.NewWorker(repository.NewVideoRepository(database), store, analyzer, log)

	mux := asynq.NewServeMux()
	worker.Register(mux)

	log.Info("starting analysis worker", "queue", "video")
	if err := tasks.NewServer(cfg).Run(mux); err != nil {
		log.Error("worker exited", "err", err)
	}
}
