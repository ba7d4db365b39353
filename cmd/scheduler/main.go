package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"journal-post-bot/internal/adapters/repo"
	"journal-post-bot/internal/domain"
	"journal-post-bot/internal/infra/cache"
	"journal-post-bot/internal/infra/config"
	"journal-post-bot/internal/infra/db"
	applog "journal-post-bot/internal/infra/log"
	"journal-post-bot/internal/infra/metrics"
	"journal-post-bot/internal/infra/queue"
)

func main() {
	cfg := config.Load()
	logger := applog.NewLogger(cfg.AppEnv)

	metrics.MustRegister(prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics.StartServer(ctx, logger.With().Str("component", "metrics").Logger(), cfg.MetricsAddr)

	pool, err := db.Connect(cfg.PGDSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("scheduler: нет подключения к БД")
	}
	defer pool.Close()
	repoAdapter := repo.NewPostgres(pool)

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	sweepGuard := cache.NewRedis(redisClient)

	var composeQueue domain.ComposeQueue
	if cfg.AMQPURL != "" {
		composeQueue, err = queue.NewAMQPComposeQueue(cfg.AMQPURL, cfg.Queues.Compose)
		if err != nil {
			logger.Fatal().Err(err).Msg("scheduler: не удалось инициализировать очередь")
		}
	} else {
		composeQueue = queue.NewRedisComposeQueue(redisClient, cfg.Queues.Compose)
	}

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	logger.Info().Msg("scheduler: запущен")
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			sweep(ctx, cfg, logger, repoAdapter, sweepGuard, composeQueue, now.UTC())
		}
	}
}

// sweep ставит задачи ежедневного обхода для пользователей, чьё время
// наступило. Redis-ключ гарантирует не больше одного обхода на
// пользователя в день.
func sweep(ctx context.Context, cfg config.AppConfig, logger zerolog.Logger, repoAdapter *repo.Postgres, guard domain.Cache, composeQueue domain.ComposeQueue, now time.Time) {
	users, err := repoAdapter.ListForDailyTime(now)
	if err != nil {
		logger.Error().Err(err).Msg("scheduler: ошибка выборки пользователей")
		return
	}
	for _, user := range users {
		key := fmt.Sprintf("daily_sweep:%s:%d", now.Format("2006-01-02"), user.ID)
		err := guard.Once(key, 24*time.Hour, func() error {
			return enqueueSweep(ctx, cfg, repoAdapter, composeQueue, user, now)
		})
		if err != nil {
			logger.Error().Err(err).Int64("user", user.ID).Msg("scheduler: не удалось поставить обход")
		}
	}
}

func enqueueSweep(ctx context.Context, cfg config.AppConfig, repoAdapter *repo.Postgres, composeQueue domain.ComposeQueue, user domain.User, now time.Time) error {
	entries, err := repoAdapter.ListRecentEntries(user.ID, now.Add(-cfg.Limits.CollectorWindow))
	if err != nil {
		return fmt.Errorf("выборка записей: %w", err)
	}
	for _, entry := range entries {
		job := domain.ComposeJob{
			ID:          uuid.NewString(),
			UserID:      user.ID,
			Texts:       []string{entry.Text},
			Source:      entry.Source,
			RequestedAt: now,
			Cause:       domain.ComposeCauseScheduled,
		}
		if err := composeQueue.Enqueue(ctx, job); err != nil {
			return fmt.Errorf("постановка задачи: %w", err)
		}
	}
	return nil
}
