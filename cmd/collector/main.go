package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"journal-post-bot/internal/adapters/mtproto"
	"journal-post-bot/internal/adapters/repo"
	"journal-post-bot/internal/infra/config"
	"journal-post-bot/internal/infra/db"
	applog "journal-post-bot/internal/infra/log"
	"journal-post-bot/internal/infra/metrics"
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
		logger.Fatal().Err(err).Msg("collector: нет подключения к БД")
	}
	defer pool.Close()
	repoAdapter := repo.NewPostgres(pool)

	if cfg.Telegram.APIID == 0 || cfg.Telegram.APIHash == "" {
		logger.Fatal().Msg("collector: не указаны TG_API_ID и TG_API_HASH")
	}
	collector, err := mtproto.NewCollector(cfg.Telegram.APIID, cfg.Telegram.APIHash, &mtproto.SessionInMemory{}, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("collector: не удалось создать MTProto клиента")
	}

	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	logger.Info().Msg("collector: запущен")
	for {
		collect(logger, repoAdapter, collector, cfg.Limits.CollectorWindow)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// collect выгружает свежие записи дневников всех активных пользователей.
// Дубликаты отсекаются по хэшу на вставке.
func collect(logger zerolog.Logger, repoAdapter *repo.Postgres, collector *mtproto.Collector, window time.Duration) {
	now := time.Now().UTC()
	users, err := repoAdapter.ListForDailyTime(now)
	if err != nil {
		logger.Error().Err(err).Msg("collector: ошибка выборки пользователей")
		return
	}
	for _, user := range users {
		entries, err := collector.CollectSince(user, now.Add(-window))
		if err != nil {
			logger.Error().Err(err).Int64("user", user.ID).Msg("collector: сбор записей не удался")
			continue
		}
		if err := repoAdapter.SaveEntries(user.ID, entries); err != nil {
			logger.Error().Err(err).Int64("user", user.ID).Msg("collector: сохранение записей не удалось")
		}
	}
}
