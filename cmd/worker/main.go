package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"journal-post-bot/internal/adapters/prompter"
	"journal-post-bot/internal/adapters/publisher"
	"journal-post-bot/internal/adapters/repo"
	"journal-post-bot/internal/adapters/rules"
	"journal-post-bot/internal/adapters/transformer"
	"journal-post-bot/internal/domain"
	"journal-post-bot/internal/infra/cache"
	"journal-post-bot/internal/infra/config"
	"journal-post-bot/internal/infra/db"
	applog "journal-post-bot/internal/infra/log"
	"journal-post-bot/internal/infra/metrics"
	"journal-post-bot/internal/infra/openai"
	"journal-post-bot/internal/infra/queue"
	composeusecase "journal-post-bot/internal/usecase/compose"
	"journal-post-bot/internal/usecase/pipeline"
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
		logger.Fatal().Err(err).Msg("worker: нет подключения к БД")
	}
	defer pool.Close()
	repoAdapter := repo.NewPostgres(pool)

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	jobCache := cache.NewRedis(redisClient)

	composeQueue, err := buildQueue(cfg, redisClient)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: не удалось инициализировать очередь")
	}

	if cfg.Telegram.Token == "" {
		logger.Fatal().Msg("worker: не указан токен Telegram (TG_BOT_TOKEN)")
	}
	botAPI, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: не удалось создать бота")
	}

	var textTransformer domain.Transformer
	if cfg.OpenAI.APIKey != "" {
		client := openai.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.Timeout)
		textTransformer = transformer.NewOpenAI(client, cfg.OpenAI.Model, cfg.OpenAI.Timeout)
	} else {
		logger.Warn().Msg("worker: ключ OpenAI не задан, используется эвристический трансформер")
		textTransformer = transformer.NewSimple()
	}

	composeService := composeusecase.NewService(
		repoAdapter,
		repoAdapter,
		prompter.NewBuilder(repoAdapter),
		textTransformer,
		rules.NewEnforcer(domain.DefaultToneRules()),
		publisher.NewTelegram(botAPI, repoAdapter),
	).WithBatchDelay(cfg.Limits.BatchDelay).WithDefaultDailyLimit(cfg.Limits.DailyPosts)

	selection := pipeline.New()

	logger.Info().Str("queue", cfg.Queues.Compose).Msg("worker: запущен")
	for {
		job, ack, err := composeQueue.Receive(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			logger.Error().Err(err).Msg("worker: ошибка чтения очереди")
			time.Sleep(time.Second)
			continue
		}

		jobLogger := logger.With().Str("job", job.ID).Int64("user", job.UserID).Logger()
		err = jobCache.Once("compose_job:"+job.ID, 24*time.Hour, func() error {
			processJob(ctx, jobLogger, composeService, selection, job)
			return nil
		})
		if ackErr := ack(err == nil); ackErr != nil {
			jobLogger.Error().Err(ackErr).Msg("worker: не удалось подтвердить задачу")
		}
	}
}

// processJob отбирает сегменты и прогоняет их через конвейер композиции.
// Ручные черновики идут в конвейер как есть, остальные источники сначала
// проходят сегментацию и отбор.
func processJob(ctx context.Context, logger zerolog.Logger, service *composeusecase.Service, selection *pipeline.Pipeline, job domain.ComposeJob) {
	var candidates []string
	if job.Source == domain.SourceManual {
		candidates = job.Texts
	} else {
		for _, text := range job.Texts {
			candidates = append(candidates, pipeline.Texts(selection.Run(text))...)
		}
	}
	if len(candidates) == 0 {
		logger.Info().Msg("worker: нет пригодных сегментов")
		return
	}

	outcomes := service.ComposeMany(ctx, job.UserID, candidates, job.Source)
	for i, outcome := range outcomes {
		event := logger.Info()
		if outcome.Status == domain.ComposeFailed {
			event = logger.Error()
		}
		event.
			Int("item", i).
			Str("status", string(outcome.Status)).
			Str("reason", outcome.Reason).
			Str("detail", outcome.Detail).
			Msg("worker: итог композиции")
	}
}

func buildQueue(cfg config.AppConfig, redisClient *redis.Client) (domain.ComposeQueue, error) {
	if cfg.AMQPURL != "" {
		return queue.NewAMQPComposeQueue(cfg.AMQPURL, cfg.Queues.Compose)
	}
	return queue.NewRedisComposeQueue(redisClient, cfg.Queues.Compose), nil
}
