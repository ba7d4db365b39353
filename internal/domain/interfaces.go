package domain

import (
	"context"
	"time"
)

// UserRepo управляет пользователями.
type UserRepo interface {
	GetByID(id int64) (User, error)
	ListForDailyTime(now time.Time) ([]User, error)
}

// PostRepo управляет постами.
type PostRepo interface {
	CountPostedToday(userID int64, day time.Time) (int, error)
	ExistsByFingerprint(fingerprint string) (bool, error)
	CreatePost(post Post) (Post, error)
	MarkPosted(postID int64, publishedID string, at time.Time) error
	ListUnposted(userID int64, limit int) ([]Post, error)
}

// StyleRepo хранит профили стиля. Отсутствие профиля не является ошибкой.
type StyleRepo interface {
	GetProfile(userID int64) (StyleProfile, bool, error)
	SaveProfile(profile StyleProfile) error
}

// EntryRepo управляет записями журнала.
type EntryRepo interface {
	SaveEntries(userID int64, entries []JournalEntry) error
	ListRecentEntries(userID int64, since time.Time) ([]JournalEntry, error)
}

// Transformer переписывает текст в выученном голосе пользователя.
type Transformer interface {
	Transform(ctx context.Context, instruction, text string) (string, error)
}

// Publisher публикует готовый пост и возвращает внешний идентификатор.
type Publisher interface {
	Publish(ctx context.Context, userID int64, text string) (string, error)
}

// RuleEnforcer детерминированно проверяет текст на жёсткие правила.
// Нарушение возвращается как *RuleViolation.
type RuleEnforcer interface {
	Enforce(text string) error
}

// PromptBuilder строит инструкцию для трансформера по профилю стиля.
type PromptBuilder interface {
	Build(userID int64) (string, error)
}

// JournalCollector собирает свежие записи из внешнего источника.
type JournalCollector interface {
	CollectSince(user User, since time.Time) ([]JournalEntry, error)
}

// Cache даёт TTL-защёлку для идемпотентной обработки.
type Cache interface {
	Once(key string, ttl time.Duration, fn func() error) error
}
