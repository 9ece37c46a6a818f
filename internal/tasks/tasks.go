package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/realtruedate/backend/internal/config"
)

const TypeVideoAnalyze = "video:analyze"

type VideoAnalyzePayload struct {
	VideoID uint64 `json:"video_id"`
}

// Enqueuer hands jobs to the broker; handlers only ever pass a row id.
type Enqueuer interface {
	EnqueueVideoAnalysis(ctx context.Context, videoID uint64) error
}

type Client struct {
	client *asynq.Client
	cfg    *config.Config
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		client: asynq.NewClient(redisOpt(cfg)),
		cfg:    cfg,
	}
}

func (c *Client) Close() error { return c.client.Close() }

func (c *Client) EnqueueVideoAnalysis(ctx context.Context, videoID uint64) error {
	payload, err := json.Marshal(VideoAnalyzePayload{VideoID: videoID})
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}
	task := asynq.NewTask(TypeVideoAnalyze, payload)
	if _, err := c.client.EnqueueContext(ctx, task,
		asynq.MaxRetry(c.cfg.Video.MaxRetries),
		asynq.Queue("video"),
	); err != nil {
		return fmt.Errorf("failed to enqueue video analysis: %w", err)
	}
	return nil
}

// NewServer builds the worker-side consumer. Concurrency is pinned to 1 per
// process and the retry delay is fixed rather than exponential.
func NewServer(cfg *config.Config) *asynq.Server {
	delay := time.Duration(cfg.Video.RetryDelaySeconds) * time.Second
	return asynq.NewServer(redisOpt(cfg), asynq.Config{
		Concurrency: 1,
		Queues:      map[string]int{"video": 1},
		RetryDelayFunc: func(n int, err error, task *asynq.Task) time.Duration {
			return delay
		},
	})
}

func redisOpt(cfg *config.Config) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}
}
