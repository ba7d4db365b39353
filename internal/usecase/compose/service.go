package compose

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"journal-post-bot/internal/domain"
	"journal-post-bot/internal/infra/metrics"
)

// ErrUserNotFound возвращается, если пользователь не существует.
var ErrUserNotFound = errors.New("пользователь не найден")

// defaultBatchDelay — пауза между успешно опубликованными постами батча,
// чтобы не упереться в лимиты внешней площадки.
const defaultBatchDelay = 5 * time.Second

// Service прогоняет тексты через конвейер публикации:
// квота → дубликат → трансформация → правила → сохранение → публикация →
// отметка. Ожидаемые отказы возвращаются как ComposeOutcome, ошибкой
// наружу выходят только отказы инфраструктуры.
type Service struct {
	users       domain.UserRepo
	posts       domain.PostRepo
	prompter    domain.PromptBuilder
	transformer domain.Transformer
	enforcer    domain.RuleEnforcer
	publisher   domain.Publisher
	batchDelay  time.Duration

	// defaultDailyLimit действует для пользователей без личного лимита.
	defaultDailyLimit int
}

// NewService создаёт сервис композиции.
func NewService(users domain.UserRepo, posts domain.PostRepo, prompter domain.PromptBuilder, transformer domain.Transformer, enforcer domain.RuleEnforcer, publisher domain.Publisher) *Service {
	return &Service{
		users:       users,
		posts:       posts,
		prompter:    prompter,
		transformer: transformer,
		enforcer:    enforcer,
		publisher:   publisher,
		batchDelay:  defaultBatchDelay,
	}
}

// WithBatchDelay переопределяет паузу между постами батча.
func (s *Service) WithBatchDelay(delay time.Duration) *Service {
	s.batchDelay = delay
	return s
}

// WithDefaultDailyLimit задаёт лимит постов в день для пользователей,
// у которых личный лимит не настроен.
func (s *Service) WithDefaultDailyLimit(limit int) *Service {
	s.defaultDailyLimit = limit
	return s
}

// Compose проводит один текст через весь конвейер.
func (s *Service) Compose(ctx context.Context, userID int64, text string, source domain.PostSource) (domain.ComposeOutcome, error) {
	metrics.IncComposeRequests()
	start := time.Now()
	outcome, err := s.compose(ctx, userID, text, source)
	if err != nil {
		return domain.ComposeOutcome{}, err
	}
	metrics.ObserveCompose(string(outcome.Status), outcome.Reason, start)
	return outcome, nil
}

func (s *Service) compose(ctx context.Context, userID int64, text string, source domain.PostSource) (domain.ComposeOutcome, error) {
	user, err := s.users.GetByID(userID)
	if err != nil {
		return domain.ComposeOutcome{}, fmt.Errorf("получение пользователя: %w", err)
	}

	// Квота: обычный ожидаемый исход, не ошибка. Трансформер не вызывается.
	today, err := s.posts.CountPostedToday(user.ID, time.Now().UTC())
	if err != nil {
		return domain.ComposeOutcome{}, fmt.Errorf("подсчёт постов за день: %w", err)
	}
	limit := user.DailyLimit
	if limit <= 0 {
		limit = s.defaultDailyLimit
	}
	if limit > 0 && today >= limit {
		return domain.ComposeOutcome{Status: domain.ComposeSkipped, Reason: domain.ReasonDailyLimit}, nil
	}

	fingerprint := domain.Fingerprint(text)
	exists, err := s.posts.ExistsByFingerprint(fingerprint)
	if err != nil {
		return domain.ComposeOutcome{}, fmt.Errorf("проверка дубликата: %w", err)
	}
	if exists {
		return domain.ComposeOutcome{Status: domain.ComposeSkipped, Reason: domain.ReasonDuplicate}, nil
	}

	instruction, err := s.prompter.Build(user.ID)
	if err != nil {
		return domain.ComposeOutcome{}, fmt.Errorf("построение инструкции: %w", err)
	}

	// Отказ трансформера не ретраится ядром: политика повторов — забота
	// вызывающего.
	transformed, err := s.transformer.Transform(ctx, instruction, text)
	if err != nil {
		return domain.ComposeOutcome{
			Status: domain.ComposeFailed,
			Reason: domain.ReasonTransformFailed,
			Detail: err.Error(),
		}, nil
	}
	transformed = strings.TrimSpace(transformed)

	if err := s.enforcer.Enforce(transformed); err != nil {
		var violation *domain.RuleViolation
		if errors.As(err, &violation) {
			return domain.ComposeOutcome{
				Status: domain.ComposeRejected,
				Reason: string(violation.Code),
				Detail: violation.Error(),
			}, nil
		}
		return domain.ComposeOutcome{}, fmt.Errorf("проверка правил: %w", err)
	}

	saved, err := s.posts.CreatePost(domain.Post{
		UserID:      user.ID,
		Text:        transformed,
		Fingerprint: fingerprint,
		Source:      source,
	})
	if err != nil {
		return domain.ComposeOutcome{}, fmt.Errorf("сохранение поста: %w", err)
	}

	// Отказ публикации не откатывает сохранение: запись остаётся видимой
	// точкой восстановления.
	publishedID, err := s.publisher.Publish(ctx, user.ID, transformed)
	if err != nil {
		return domain.ComposeOutcome{
			Status: domain.ComposeFailed,
			Reason: domain.ReasonPublishFailed,
			Detail: err.Error(),
			Post:   &saved,
		}, nil
	}

	postedAt := time.Now().UTC()
	if err := s.posts.MarkPosted(saved.ID, publishedID, postedAt); err != nil {
		return domain.ComposeOutcome{}, fmt.Errorf("отметка публикации: %w", err)
	}
	saved.Posted = true
	saved.PostedAt = &postedAt
	saved.PublishedID = publishedID

	return domain.ComposeOutcome{Status: domain.ComposePosted, Post: &saved}, nil
}

// ComposeMany последовательно прогоняет список текстов. После каждого
// опубликованного поста выдерживается пауза, отказ одного элемента не
// останавливает остальные. Батч намеренно не параллелится: внешняя
// площадка лимитирует частоту, а проверка дубликатов должна видеть
// результат предыдущего элемента.
func (s *Service) ComposeMany(ctx context.Context, userID int64, texts []string, source domain.PostSource) []domain.ComposeOutcome {
	outcomes := make([]domain.ComposeOutcome, 0, len(texts))
	for i, text := range texts {
		outcome, err := s.Compose(ctx, userID, text, source)
		if err != nil {
			outcome = domain.ComposeOutcome{
				Status: domain.ComposeFailed,
				Reason: "internal_error",
				Detail: err.Error(),
			}
		}
		outcomes = append(outcomes, outcome)

		if outcome.Status == domain.ComposePosted && i < len(texts)-1 && s.batchDelay > 0 {
			select {
			case <-ctx.Done():
				return outcomes
			case <-time.After(s.batchDelay):
			}
		}
	}
	return outcomes
}
