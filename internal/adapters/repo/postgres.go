package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"journal-post-bot/internal/domain"
	"journal-post-bot/internal/infra/metrics"
)

// Postgres реализует репозитории на основе pgxpool.
type Postgres struct {
	pool *pgxpool.Pool
}

var (
	_ domain.UserRepo  = (*Postgres)(nil)
	_ domain.PostRepo  = (*Postgres)(nil)
	_ domain.StyleRepo = (*Postgres)(nil)
	_ domain.EntryRepo = (*Postgres)(nil)
)

// NewPostgres создаёт адаптер БД.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) connCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second)
}

// GetByID реализует domain.UserRepo.
func (p *Postgres) GetByID(id int64) (domain.User, error) {
	ctx, cancel := p.connCtx()
	defer cancel()

	var user domain.User
	start := time.Now()
	err := p.pool.QueryRow(ctx, `
SELECT id, handle, tg_channel_id, daily_limit, daily_time, created_at, updated_at
FROM users WHERE id = $1
`, id).Scan(&user.ID, &user.Handle, &user.TGChannelID, &user.DailyLimit, &user.DailyTime, &user.CreatedAt, &user.UpdatedAt)
	metrics.ObserveNetworkRequest("postgres", "get_user", "users", start, err)
	if err != nil {
		return domain.User{}, fmt.Errorf("выборка пользователя: %w", err)
	}
	return user, nil
}

// ListForDailyTime возвращает пользователей, чьё время ежедневного обхода
// уже наступило.
func (p *Postgres) ListForDailyTime(now time.Time) ([]domain.User, error) {
	ctx, cancel := p.connCtx()
	defer cancel()

	start := time.Now()
	rows, err := p.pool.Query(ctx, `
SELECT id, handle, tg_channel_id, daily_limit, daily_time, created_at, updated_at
FROM users WHERE daily_time::time <= $1::time
`, now)
	metrics.ObserveNetworkRequest("postgres", "list_daily_users", "users", start, err)
	if err != nil {
		return nil, fmt.Errorf("выборка пользователей: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(&user.ID, &user.Handle, &user.TGChannelID, &user.DailyLimit, &user.DailyTime, &user.CreatedAt, &user.UpdatedAt); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// CountPostedToday считает опубликованные за календарный день посты.
func (p *Postgres) CountPostedToday(userID int64, day time.Time) (int, error) {
	ctx, cancel := p.connCtx()
	defer cancel()

	dayStart := day.UTC().Truncate(24 * time.Hour)
	var count int
	start := time.Now()
	err := p.pool.QueryRow(ctx, `
SELECT count(*) FROM posts
WHERE user_id = $1 AND posted AND posted_at >= $2 AND posted_at < $3
`, userID, dayStart, dayStart.Add(24*time.Hour)).Scan(&count)
	metrics.ObserveNetworkRequest("postgres", "count_posted_today", "posts", start, err)
	if err != nil {
		return 0, fmt.Errorf("подсчёт постов: %w", err)
	}
	return count, nil
}

// ExistsByFingerprint проверяет наличие поста с таким отпечатком.
func (p *Postgres) ExistsByFingerprint(fingerprint string) (bool, error) {
	ctx, cancel := p.connCtx()
	defer cancel()

	var exists bool
	start := time.Now()
	err := p.pool.QueryRow(ctx, `
SELECT EXISTS(SELECT 1 FROM posts WHERE fingerprint = $1)
`, fingerprint).Scan(&exists)
	metrics.ObserveNetworkRequest("postgres", "exists_fingerprint", "posts", start, err)
	if err != nil {
		return false, fmt.Errorf("проверка отпечатка: %w", err)
	}
	return exists, nil
}

// CreatePost сохраняет неопубликованный пост.
func (p *Postgres) CreatePost(post domain.Post) (domain.Post, error) {
	ctx, cancel := p.connCtx()
	defer cancel()

	start := time.Now()
	err := p.pool.QueryRow(ctx, `
INSERT INTO posts (user_id, text, fingerprint, source, posted)
VALUES ($1, $2, $3, $4, false)
RETURNING id, created_at
`, post.UserID, post.Text, post.Fingerprint, post.Source).Scan(&post.ID, &post.CreatedAt)
	metrics.ObserveNetworkRequest("postgres", "create_post", "posts", start, err)
	if err != nil {
		return domain.Post{}, fmt.Errorf("сохранение поста: %w", err)
	}
	return post, nil
}

// MarkPosted помечает пост опубликованным.
func (p *Postgres) MarkPosted(postID int64, publishedID string, at time.Time) error {
	ctx, cancel := p.connCtx()
	defer cancel()

	start := time.Now()
	tag, err := p.pool.Exec(ctx, `
UPDATE posts SET posted = true, posted_at = $2, published_id = $3 WHERE id = $1
`, postID, at, publishedID)
	metrics.ObserveNetworkRequest("postgres", "mark_posted", "posts", start, err)
	if err != nil {
		return fmt.Errorf("отметка публикации: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("пост %d не найден", postID)
	}
	return nil
}

// ListUnposted возвращает сохранённые, но не опубликованные посты.
func (p *Postgres) ListUnposted(userID int64, limit int) ([]domain.Post, error) {
	ctx, cancel := p.connCtx()
	defer cancel()

	start := time.Now()
	rows, err := p.pool.Query(ctx, `
SELECT id, user_id, text, fingerprint, source, posted, posted_at, COALESCE(published_id, ''), created_at
FROM posts WHERE user_id = $1 AND NOT posted
ORDER BY created_at DESC LIMIT $2
`, userID, limit)
	metrics.ObserveNetworkRequest("postgres", "list_unposted", "posts", start, err)
	if err != nil {
		return nil, fmt.Errorf("выборка черновиков: %w", err)
	}
	defer rows.Close()

	var posts []domain.Post
	for rows.Next() {
		var post domain.Post
		if err := rows.Scan(&post.ID, &post.UserID, &post.Text, &post.Fingerprint, &post.Source, &post.Posted, &post.PostedAt, &post.PublishedID, &post.CreatedAt); err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

// GetProfile реализует domain.StyleRepo.
func (p *Postgres) GetProfile(userID int64) (domain.StyleProfile, bool, error) {
	ctx, cancel := p.connCtx()
	defer cancel()

	var profile domain.StyleProfile
	start := time.Now()
	err := p.pool.QueryRow(ctx, `
SELECT user_id, avg_sentence_length, min_sentence_length, max_sentence_length,
       formality, uses_emoji, uses_hashtags, uses_abbreviations,
       comma_ratio, period_ratio, dash_ratio, ellipsis_ratio,
       common_words, common_starters, example_posts,
       total_posts_analyzed, updated_at
FROM style_profiles WHERE user_id = $1
`, userID).Scan(
		&profile.UserID, &profile.AvgSentenceLength, &profile.MinSentenceLength, &profile.MaxSentenceLength,
		&profile.Formality, &profile.UsesEmoji, &profile.UsesHashtags, &profile.UsesAbbreviations,
		&profile.CommaRatio, &profile.PeriodRatio, &profile.DashRatio, &profile.EllipsisRatio,
		&profile.CommonWords, &profile.CommonStarters, &profile.ExamplePosts,
		&profile.TotalPostsAnalyzed, &profile.UpdatedAt,
	)
	metrics.ObserveNetworkRequest("postgres", "get_profile", "style_profiles", start, err)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.StyleProfile{}, false, nil
	}
	if err != nil {
		return domain.StyleProfile{}, false, fmt.Errorf("выборка профиля: %w", err)
	}
	return profile, true, nil
}

// SaveProfile сохраняет профиль целиком (upsert по user_id).
func (p *Postgres) SaveProfile(profile domain.StyleProfile) error {
	ctx, cancel := p.connCtx()
	defer cancel()

	start := time.Now()
	_, err := p.pool.Exec(ctx, `
INSERT INTO style_profiles (
	user_id, avg_sentence_length, min_sentence_length, max_sentence_length,
	formality, uses_emoji, uses_hashtags, uses_abbreviations,
	comma_ratio, period_ratio, dash_ratio, ellipsis_ratio,
	common_words, common_starters, example_posts,
	total_posts_analyzed, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
ON CONFLICT (user_id) DO UPDATE SET
	avg_sentence_length = EXCLUDED.avg_sentence_length,
	min_sentence_length = EXCLUDED.min_sentence_length,
	max_sentence_length = EXCLUDED.max_sentence_length,
	formality = EXCLUDED.formality,
	uses_emoji = EXCLUDED.uses_emoji,
	uses_hashtags = EXCLUDED.uses_hashtags,
	uses_abbreviations = EXCLUDED.uses_abbreviations,
	comma_ratio = EXCLUDED.comma_ratio,
	period_ratio = EXCLUDED.period_ratio,
	dash_ratio = EXCLUDED.dash_ratio,
	ellipsis_ratio = EXCLUDED.ellipsis_ratio,
	common_words = EXCLUDED.common_words,
	common_starters = EXCLUDED.common_starters,
	example_posts = EXCLUDED.example_posts,
	total_posts_analyzed = EXCLUDED.total_posts_analyzed,
	updated_at = EXCLUDED.updated_at
`,
		profile.UserID, profile.AvgSentenceLength, profile.MinSentenceLength, profile.MaxSentenceLength,
		profile.Formality, profile.UsesEmoji, profile.UsesHashtags, profile.UsesAbbreviations,
		profile.CommaRatio, profile.PeriodRatio, profile.DashRatio, profile.EllipsisRatio,
		profile.CommonWords, profile.CommonStarters, profile.ExamplePosts,
		profile.TotalPostsAnalyzed, profile.UpdatedAt,
	)
	metrics.ObserveNetworkRequest("postgres", "save_profile", "style_profiles", start, err)
	if err != nil {
		return fmt.Errorf("сохранение профиля: %w", err)
	}
	return nil
}

// SaveEntries сохраняет записи журнала, дубликаты по хэшу пропускаются.
func (p *Postgres) SaveEntries(userID int64, entries []domain.JournalEntry) error {
	ctx, cancel := p.connCtx()
	defer cancel()

	for _, entry := range entries {
		start := time.Now()
		_, err := p.pool.Exec(ctx, `
INSERT INTO journal_entries (user_id, source, text, hash)
VALUES ($1, $2, $3, $4)
ON CONFLICT (hash) DO NOTHING
`, userID, entry.Source, entry.Text, entry.Hash)
		metrics.ObserveNetworkRequest("postgres", "save_entry", "journal_entries", start, err)
		if err != nil {
			return fmt.Errorf("сохранение записи: %w", err)
		}
	}
	return nil
}

// ListRecentEntries возвращает записи журнала с указанного момента.
func (p *Postgres) ListRecentEntries(userID int64, since time.Time) ([]domain.JournalEntry, error) {
	ctx, cancel := p.connCtx()
	defer cancel()

	start := time.Now()
	rows, err := p.pool.Query(ctx, `
SELECT id, user_id, source, text, hash, created_at
FROM journal_entries WHERE user_id = $1 AND created_at >= $2
ORDER BY created_at
`, userID, since)
	metrics.ObserveNetworkRequest("postgres", "list_entries", "journal_entries", start, err)
	if err != nil {
		return nil, fmt.Errorf("выборка записей: %w", err)
	}
	defer rows.Close()

	var entries []domain.JournalEntry
	for rows.Next() {
		var entry domain.JournalEntry
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.Source, &entry.Text, &entry.Hash, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
