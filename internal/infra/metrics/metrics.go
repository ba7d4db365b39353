package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	ComposeRequestsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "compose_requests_total",
		Help: "Общее количество запросов на композицию поста",
	})
	ComposeOutcomesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "compose_outcomes_total",
		Help: "Итоги прохода конвейера по статусу и причине",
	}, []string{"status", "reason"})
	ComposeDurationSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "compose_duration_seconds",
		Help:    "Время полного прохода конвейера",
		Buckets: prometheus.DefBuckets,
	})
	StyleLearnTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "style_learn_total",
		Help: "Количество обновлений профиля стиля",
	})
	PublishErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "publish_errors_total",
		Help: "Ошибки публикации постов",
	})

	NetworkRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "network_request_duration_seconds",
		Help:    "Длительность сетевых запросов",
		Buckets: prometheus.DefBuckets,
	}, []string{"component", "operation", "target", "status"})

	NetworkRequestTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "network_request_total",
		Help: "Количество сетевых запросов",
	}, []string{"component", "operation", "target", "status"})

	LLMGenerationDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "llm_generation_duration_seconds",
		Help:    "Длительность генерации ответа LLM",
		Buckets: prometheus.DefBuckets,
	}, []string{"model"})

	LLMTokensTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "llm_tokens_total",
		Help: "Количество токенов, использованных LLM",
	}, []string{"model", "type"})
)

// MustRegister регистрирует метрики.
func MustRegister(registerer prometheus.Registerer) {
	registerer.MustRegister(
		ComposeRequestsTotal,
		ComposeOutcomesTotal,
		ComposeDurationSeconds,
		StyleLearnTotal,
		PublishErrorsTotal,
		NetworkRequestDuration,
		NetworkRequestTotal,
		LLMGenerationDuration,
		LLMTokensTotal,
	)
}

// StartServer запускает HTTP сервер с эндпоинтом /metrics.
func StartServer(ctx context.Context, logger zerolog.Logger, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownTimeout); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics: graceful shutdown failed")
		}
	}()

	go func() {
		logger.Info().Str("addr", addr).Msg("metrics: server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics: server stopped")
		}
	}()
}

// IncComposeRequests увеличивает счётчик запросов на композицию.
func IncComposeRequests() {
	ComposeRequestsTotal.Inc()
}

// ObserveCompose записывает итог и длительность прохода конвейера.
func ObserveCompose(status, reason string, start time.Time) {
	if reason == "" {
		reason = "none"
	}
	ComposeOutcomesTotal.WithLabelValues(status, reason).Inc()
	ComposeDurationSeconds.Observe(time.Since(start).Seconds())
}

// IncStyleLearn увеличивает счётчик обновлений профиля стиля.
func IncStyleLearn() {
	StyleLearnTotal.Inc()
}

// IncPublishError увеличивает счётчик ошибок публикации.
func IncPublishError() {
	PublishErrorsTotal.Inc()
}

// ObserveNetworkRequest записывает длительность и статус сетевого запроса.
func ObserveNetworkRequest(component, operation, target string, start time.Time, err error) {
	if component == "" {
		component = "unknown"
	}
	if operation == "" {
		operation = "unknown"
	}
	if target == "" {
		target = "unknown"
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	duration := time.Since(start).Seconds()
	NetworkRequestDuration.WithLabelValues(component, operation, target, status).Observe(duration)
	NetworkRequestTotal.WithLabelValues(component, operation, target, status).Inc()
}

// ObserveLLMGeneration записывает длительность и токены генерации LLM.
func ObserveLLMGeneration(model string, duration time.Duration, promptTokens, completionTokens, totalTokens int) {
	if model == "" {
		model = "unknown"
	}
	LLMGenerationDuration.WithLabelValues(model).Observe(duration.Seconds())
	if promptTokens > 0 {
		LLMTokensTotal.WithLabelValues(model, "prompt").Add(float64(promptTokens))
	}
	if completionTokens > 0 {
		LLMTokensTotal.WithLabelValues(model, "completion").Add(float64(completionTokens))
	}
	if totalTokens <= 0 {
		totalTokens = promptTokens + completionTokens
	}
	if totalTokens > 0 {
		LLMTokensTotal.WithLabelValues(model, "total").Add(float64(totalTokens))
	}
}
