package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"journal-post-bot/internal/adapters/github"
	"journal-post-bot/internal/adapters/prompter"
	"journal-post-bot/internal/adapters/repo"
	"journal-post-bot/internal/domain"
	"journal-post-bot/internal/infra/config"
	"journal-post-bot/internal/infra/db"
	httpinfra "journal-post-bot/internal/infra/http"
	applog "journal-post-bot/internal/infra/log"
	"journal-post-bot/internal/infra/metrics"
	"journal-post-bot/internal/infra/queue"
	styleusecase "journal-post-bot/internal/usecase/style"
)

func main() {
	cfg := config.Load()
	logger := applog.NewLogger(cfg.AppEnv)

	metrics.MustRegister(prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(cfg.PGDSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("api: нет подключения к БД")
	}
	defer pool.Close()
	repoAdapter := repo.NewPostgres(pool)

	var composeQueue domain.ComposeQueue
	if cfg.AMQPURL != "" {
		composeQueue, err = queue.NewAMQPComposeQueue(cfg.AMQPURL, cfg.Queues.Compose)
		if err != nil {
			logger.Fatal().Err(err).Msg("api: не удалось инициализировать очередь")
		}
	} else {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		composeQueue = queue.NewRedisComposeQueue(redisClient, cfg.Queues.Compose)
	}

	styleService := styleusecase.NewService(repoAdapter)
	promptBuilder := prompter.NewBuilder(repoAdapter)

	server := httpinfra.NewServer(logger)

	server.Router.Post("/api/v1/style/learn", func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		var req learnRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.UserID == 0 || req.Text == "" {
			writeError(w, http.StatusBadRequest, "user_id and text are required")
			return
		}
		if err := styleService.LearnFromText(req.UserID, req.Text); err != nil {
			logger.Error().Err(err).Int64("user", req.UserID).Msg("api: ошибка обучения стиля")
			writeError(w, http.StatusInternalServerError, "learn failed")
			return
		}
		metrics.IncStyleLearn()
		writeJSON(w, map[string]string{"status": "ok"})
	})

	server.Router.Get("/api/v1/style/prompt", func(w http.ResponseWriter, r *http.Request) {
		userID, err := strconv.ParseInt(r.URL.Query().Get("user_id"), 10, 64)
		if err != nil || userID == 0 {
			writeError(w, http.StatusBadRequest, "user_id is required")
			return
		}
		instruction, err := promptBuilder.Build(userID)
		if err != nil {
			logger.Error().Err(err).Int64("user", userID).Msg("api: ошибка построения инструкции")
			writeError(w, http.StatusInternalServerError, "prompt build failed")
			return
		}
		writeJSON(w, map[string]string{"prompt": instruction})
	})

	server.Router.Post("/api/v1/github/events", func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		var req githubEventsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.UserID == 0 || len(req.Events) == 0 {
			writeError(w, http.StatusBadRequest, "user_id and events are required")
			return
		}
		events, err := github.ParseEvents(req.Events)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		entry, ok := github.EntryFromEvents(req.UserID, events)
		if !ok {
			writeError(w, http.StatusBadRequest, "events produced no entry")
			return
		}
		// Запись подхватит ежедневный обход планировщика; дубликаты
		// отсекаются по хэшу на вставке.
		if err := repoAdapter.SaveEntries(req.UserID, []domain.JournalEntry{entry}); err != nil {
			logger.Error().Err(err).Int64("user", req.UserID).Msg("api: сохранение активности GitHub не удалось")
			writeError(w, http.StatusInternalServerError, "save failed")
			return
		}
		writeJSON(w, map[string]string{"status": "ok", "hash": entry.Hash})
	})

	server.Router.Post("/api/v1/drafts", func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		var req draftRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.UserID == 0 || req.Text == "" {
			writeError(w, http.StatusBadRequest, "user_id and text are required")
			return
		}
		source := domain.PostSource(req.Source)
		if source == "" {
			source = domain.SourceManual
		}
		job := domain.ComposeJob{
			ID:          uuid.NewString(),
			UserID:      req.UserID,
			Texts:       []string{req.Text},
			Source:      source,
			RequestedAt: time.Now().UTC(),
			Cause:       domain.ComposeCauseManual,
		}
		if err := composeQueue.Enqueue(r.Context(), job); err != nil {
			logger.Error().Err(err).Int64("user", req.UserID).Msg("api: не удалось поставить задачу")
			writeError(w, http.StatusInternalServerError, "enqueue failed")
			return
		}
		writeJSON(w, map[string]string{"status": "queued", "job_id": job.ID})
	})

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	if err := server.Start(":" + strconv.Itoa(cfg.Port)); err != nil && err != http.ErrServerClosed {
		logger.Fatal().Err(err).Msg("api: сервер остановился с ошибкой")
	}
}

type learnRequest struct {
	UserID int64  `json:"user_id"`
	Text   string `json:"text"`
}

type githubEventsRequest struct {
	UserID int64                 `json:"user_id"`
	Events []github.EventPayload `json:"events"`
}

type draftRequest struct {
	UserID int64  `json:"user_id"`
	Text   string `json:"text"`
	Source string `json:"source"`
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
