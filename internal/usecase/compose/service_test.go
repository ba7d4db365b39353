package compose

import (
	"context"
	"errors"
	"testing"
	"time"

	"journal-post-bot/internal/adapters/rules"
	"journal-post-bot/internal/domain"
)

type stubUserRepo struct {
	user domain.User
}

func (s *stubUserRepo) GetByID(int64) (domain.User, error) {
	return s.user, nil
}

func (s *stubUserRepo) ListForDailyTime(time.Time) ([]domain.User, error) {
	return []domain.User{s.user}, nil
}

// stubPostRepo хранит посты в памяти и моделирует проверку дубликатов.
type stubPostRepo struct {
	posted       int
	posts        []domain.Post
	fingerprints map[string]struct{}
	nextID       int64
	markErr      error
}

func newStubPostRepo() *stubPostRepo {
	return &stubPostRepo{fingerprints: make(map[string]struct{})}
}

func (s *stubPostRepo) CountPostedToday(int64, time.Time) (int, error) {
	return s.posted, nil
}

func (s *stubPostRepo) ExistsByFingerprint(fingerprint string) (bool, error) {
	_, ok := s.fingerprints[fingerprint]
	return ok, nil
}

func (s *stubPostRepo) CreatePost(post domain.Post) (domain.Post, error) {
	s.nextID++
	post.ID = s.nextID
	s.posts = append(s.posts, post)
	s.fingerprints[post.Fingerprint] = struct{}{}
	return post, nil
}

func (s *stubPostRepo) MarkPosted(postID int64, publishedID string, at time.Time) error {
	if s.markErr != nil {
		return s.markErr
	}
	for i := range s.posts {
		if s.posts[i].ID == postID {
			s.posts[i].Posted = true
			s.posts[i].PublishedID = publishedID
			s.posts[i].PostedAt = &at
			s.posted++
		}
	}
	return nil
}

func (s *stubPostRepo) ListUnposted(int64, int) ([]domain.Post, error) {
	return nil, nil
}

type stubPrompter struct{}

func (stubPrompter) Build(int64) (string, error) {
	return "перепиши как пост", nil
}

// stubTransformer возвращает подготовленные ответы и считает вызовы.
type stubTransformer struct {
	reply string
	err   error
	calls int
}

func (s *stubTransformer) Transform(_ context.Context, _, _ string) (string, error) {
	s.calls++
	return s.reply, s.err
}

type stubPublisher struct {
	err   error
	calls int
}

func (s *stubPublisher) Publish(_ context.Context, _ int64, _ string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return "msg-1", nil
}

const validReply = "We shipped the caching layer today. Latency dropped by forty percent at peak. The rotation is finally quiet."

func newTestService(posts *stubPostRepo, transformer *stubTransformer, publisher *stubPublisher) *Service {
	users := &stubUserRepo{user: domain.User{ID: 7, DailyLimit: 3}}
	enforcer := rules.NewEnforcer(domain.DefaultToneRules())
	return NewService(users, posts, stubPrompter{}, transformer, enforcer, publisher).WithBatchDelay(0)
}

func TestComposePostedHappyPath(t *testing.T) {
	posts := newStubPostRepo()
	transformer := &stubTransformer{reply: validReply}
	publisher := &stubPublisher{}
	service := newTestService(posts, transformer, publisher)

	outcome, err := service.Compose(context.Background(), 7, "Today I finally shipped the caching layer after three weeks.", domain.SourceJournal)
	if err != nil {
		t.Fatalf("композиция упала: %v", err)
	}
	if outcome.Status != domain.ComposePosted {
		t.Fatalf("ожидали posted, получили %s (%s)", outcome.Status, outcome.Reason)
	}
	if outcome.Post == nil || !outcome.Post.Posted || outcome.Post.PublishedID != "msg-1" {
		t.Fatalf("пост не отмечен опубликованным: %+v", outcome.Post)
	}
	if len(posts.posts) != 1 || !posts.posts[0].Posted {
		t.Fatalf("запись в хранилище не отмечена: %+v", posts.posts)
	}
}

func TestComposeQuotaSkipsWithoutTransform(t *testing.T) {
	posts := newStubPostRepo()
	posts.posted = 3
	transformer := &stubTransformer{reply: validReply}
	publisher := &stubPublisher{}
	service := newTestService(posts, transformer, publisher)

	outcome, err := service.Compose(context.Background(), 7, "Another note about the day.", domain.SourceJournal)
	if err != nil {
		t.Fatalf("композиция упала: %v", err)
	}
	if outcome.Status != domain.ComposeSkipped || outcome.Reason != domain.ReasonDailyLimit {
		t.Fatalf("ожидали skipped/daily_limit_reached, получили %s/%s", outcome.Status, outcome.Reason)
	}
	if transformer.calls != 0 {
		t.Fatalf("трансформер не должен вызываться при исчерпанной квоте")
	}
}

func TestComposeQuotaFallsBackToDefaultLimit(t *testing.T) {
	posts := newStubPostRepo()
	posts.posted = 2
	transformer := &stubTransformer{reply: validReply}
	// Личный лимит не настроен: действует лимит сервиса.
	users := &stubUserRepo{user: domain.User{ID: 7}}
	enforcer := rules.NewEnforcer(domain.DefaultToneRules())
	service := NewService(users, posts, stubPrompter{}, transformer, enforcer, &stubPublisher{}).
		WithBatchDelay(0).
		WithDefaultDailyLimit(2)

	outcome, err := service.Compose(context.Background(), 7, "Another note about the day.", domain.SourceJournal)
	if err != nil {
		t.Fatalf("композиция упала: %v", err)
	}
	if outcome.Status != domain.ComposeSkipped || outcome.Reason != domain.ReasonDailyLimit {
		t.Fatalf("ожидали skipped/daily_limit_reached, получили %s/%s", outcome.Status, outcome.Reason)
	}
	if transformer.calls != 0 {
		t.Fatalf("трансформер не должен вызываться при исчерпанной квоте")
	}
}

func TestComposeNoLimitsMeansUnlimited(t *testing.T) {
	posts := newStubPostRepo()
	posts.posted = 10
	transformer := &stubTransformer{reply: validReply}
	users := &stubUserRepo{user: domain.User{ID: 7}}
	enforcer := rules.NewEnforcer(domain.DefaultToneRules())
	service := NewService(users, posts, stubPrompter{}, transformer, enforcer, &stubPublisher{}).WithBatchDelay(0)

	outcome, err := service.Compose(context.Background(), 7, "Another note about the day.", domain.SourceJournal)
	if err != nil {
		t.Fatalf("композиция упала: %v", err)
	}
	if outcome.Status != domain.ComposePosted {
		t.Fatalf("без лимитов пост должен публиковаться: %s/%s", outcome.Status, outcome.Reason)
	}
}

func TestComposeDuplicateDetectedCaseInsensitive(t *testing.T) {
	posts := newStubPostRepo()
	transformer := &stubTransformer{reply: validReply}
	publisher := &stubPublisher{}
	service := newTestService(posts, transformer, publisher)

	original := "Today I shipped the caching layer and latency dropped hard."
	if _, err := service.Compose(context.Background(), 7, original, domain.SourceJournal); err != nil {
		t.Fatalf("первая композиция упала: %v", err)
	}

	// Тот же текст с другим регистром и лишними пробелами.
	outcome, err := service.Compose(context.Background(), 7, "  TODAY I shipped   the caching layer and latency dropped hard.", domain.SourceJournal)
	if err != nil {
		t.Fatalf("вторая композиция упала: %v", err)
	}
	if outcome.Status != domain.ComposeSkipped || outcome.Reason != domain.ReasonDuplicate {
		t.Fatalf("ожидали skipped/duplicate_content, получили %s/%s", outcome.Status, outcome.Reason)
	}
	if transformer.calls != 1 {
		t.Fatalf("трансформер не должен вызываться для дубликата")
	}
}

func TestComposeTransformFailure(t *testing.T) {
	posts := newStubPostRepo()
	transformer := &stubTransformer{err: errors.New("модель недоступна")}
	publisher := &stubPublisher{}
	service := newTestService(posts, transformer, publisher)

	outcome, err := service.Compose(context.Background(), 7, "A note about the day.", domain.SourceJournal)
	if err != nil {
		t.Fatalf("отказ трансформера должен быть исходом, а не ошибкой: %v", err)
	}
	if outcome.Status != domain.ComposeFailed || outcome.Reason != domain.ReasonTransformFailed {
		t.Fatalf("ожидали failed/transform_failed, получили %s/%s", outcome.Status, outcome.Reason)
	}
	if transformer.calls != 1 {
		t.Fatalf("ожидали ровно один вызов трансформера, получили %d", transformer.calls)
	}
	if len(posts.posts) != 0 {
		t.Fatalf("при отказе трансформера ничего не сохраняется")
	}
}

func TestComposeRejectionBlocksPersistAndPublish(t *testing.T) {
	posts := newStubPostRepo()
	transformer := &stubTransformer{reply: "I am excited to announce a huge thing happening today."}
	publisher := &stubPublisher{}
	service := newTestService(posts, transformer, publisher)

	outcome, err := service.Compose(context.Background(), 7, "A note about the launch.", domain.SourceJournal)
	if err != nil {
		t.Fatalf("композиция упала: %v", err)
	}
	if outcome.Status != domain.ComposeRejected || outcome.Reason != string(domain.RuleBannedPhrase) {
		t.Fatalf("ожидали rejected/banned_phrase, получили %s/%s", outcome.Status, outcome.Reason)
	}
	if len(posts.posts) != 0 {
		t.Fatalf("отклонённый текст не должен сохраняться")
	}
	if publisher.calls != 0 {
		t.Fatalf("отклонённый текст не должен публиковаться")
	}
}

func TestComposePublishFailureKeepsPersistedRecord(t *testing.T) {
	posts := newStubPostRepo()
	transformer := &stubTransformer{reply: validReply}
	publisher := &stubPublisher{err: errors.New("канал недоступен")}
	service := newTestService(posts, transformer, publisher)

	outcome, err := service.Compose(context.Background(), 7, "A note about the day.", domain.SourceJournal)
	if err != nil {
		t.Fatalf("отказ публикации должен быть исходом, а не ошибкой: %v", err)
	}
	if outcome.Status != domain.ComposeFailed || outcome.Reason != domain.ReasonPublishFailed {
		t.Fatalf("ожидали failed/publish_failed, получили %s/%s", outcome.Status, outcome.Reason)
	}
	// Запись остаётся в хранилище неопубликованной: отката нет.
	if len(posts.posts) != 1 {
		t.Fatalf("сохранённая запись должна остаться, получили %d", len(posts.posts))
	}
	if posts.posts[0].Posted {
		t.Fatalf("запись не должна быть отмечена опубликованной")
	}
	if outcome.Post == nil || outcome.Post.ID != posts.posts[0].ID {
		t.Fatalf("исход должен ссылаться на сохранённую запись: %+v", outcome.Post)
	}
}

func TestComposeManyContinuesAfterFailure(t *testing.T) {
	posts := newStubPostRepo()
	transformer := &stubTransformer{reply: validReply}
	publisher := &stubPublisher{}
	service := newTestService(posts, transformer, publisher)

	texts := []string{
		"First journal note about the caching layer work today.",
		"First journal note about the caching layer work today.",
		"Third journal note about the migration finishing cleanly.",
	}
	outcomes := service.ComposeMany(context.Background(), 7, texts, domain.SourceJournal)
	if len(outcomes) != 3 {
		t.Fatalf("ожидали 3 исхода, получили %d", len(outcomes))
	}
	if outcomes[0].Status != domain.ComposePosted {
		t.Fatalf("первый элемент должен опубликоваться: %s/%s", outcomes[0].Status, outcomes[0].Reason)
	}
	// Второй элемент — дубликат первого в рамках того же батча.
	if outcomes[1].Status != domain.ComposeSkipped || outcomes[1].Reason != domain.ReasonDuplicate {
		t.Fatalf("второй элемент должен отсеяться как дубликат: %s/%s", outcomes[1].Status, outcomes[1].Reason)
	}
	if outcomes[2].Status != domain.ComposePosted {
		t.Fatalf("третий элемент должен опубликоваться: %s/%s", outcomes[2].Status, outcomes[2].Reason)
	}
}

func TestComposeManyStopsOnCancelledContext(t *testing.T) {
	posts := newStubPostRepo()
	transformer := &stubTransformer{reply: validReply}
	publisher := &stubPublisher{}
	service := newTestService(posts, transformer, publisher).WithBatchDelay(time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	texts := []string{
		"First journal note about the caching layer work today.",
		"Second journal note about the migration finishing cleanly.",
	}
	outcomes := service.ComposeMany(ctx, 7, texts, domain.SourceJournal)
	// Контекст отменён: пауза прерывается, батч заканчивается на первом посте.
	if len(outcomes) != 1 {
		t.Fatalf("ожидали остановку после первого поста, получили %d исходов", len(outcomes))
	}
}
