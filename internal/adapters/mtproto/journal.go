package mtproto

import (
	"context"
	"fmt"
	"time"

	"github.com/gotd/td/telegram"
	"github.com/rs/zerolog"

	"journal-post-bot/internal/domain"
)

// Collector выгружает записи из личного дневникового канала через gotd.
type Collector struct {
	client *telegram.Client
	log    zerolog.Logger
}

var _ domain.JournalCollector = (*Collector)(nil)

// NewCollector создаёт MTProto клиент.
func NewCollector(apiID int, apiHash string, session telegram.SessionStorage, log zerolog.Logger) (*Collector, error) {
	client := telegram.NewClient(apiID, apiHash, telegram.Options{SessionStorage: session})
	return &Collector{client: client, log: log}, nil
}

// CollectSince собирает записи дневникового канала пользователя начиная
// с указанного момента.
func (c *Collector) CollectSince(user domain.User, since time.Time) ([]domain.JournalEntry, error) {
	ctx := context.Background()
	err := c.client.Run(ctx, func(ctx context.Context) error {
		// TODO: выгрузка истории канала через messages.getHistory с
		// фильтром по дате.
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("mtproto run: %w", err)
	}
	c.log.Warn().Int64("user", user.ID).Msg("CollectSince заглушка в MVP")
	text := "Пример дневниковой записи пользователя"
	return []domain.JournalEntry{{
		UserID:    user.ID,
		Source:    domain.SourceJournal,
		Text:      text,
		Hash:      domain.Fingerprint(text),
		CreatedAt: time.Now().UTC(),
	}}, nil
}

// SessionInMemory хранит сессию в памяти (MVP).
type SessionInMemory struct {
	data []byte
}

// LoadSession загружает сессию.
func (s *SessionInMemory) LoadSession(ctx context.Context) ([]byte, error) {
	return s.data, nil
}

// StoreSession сохраняет сессию.
func (s *SessionInMemory) StoreSession(ctx context.Context, data []byte) error {
	s.data = data
	return nil
}

var _ telegram.SessionStorage = (*SessionInMemory)(nil)
