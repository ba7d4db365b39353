package pipeline

import (
	"journal-post-bot/internal/adapters/scorer"
	"journal-post-bot/internal/adapters/segmenter"
	"journal-post-bot/internal/domain"
)

// topSegments — фиксированная политика отбора, не настраивается пользователем.
const topSegments = 2

// Pipeline связывает сегментацию и скоринг в явные стадии с типизированными
// входами и выходами, чтобы каждую можно было проверять отдельно.
type Pipeline struct {
	topN int
}

// New создаёт конвейер с политикой по умолчанию.
func New() *Pipeline {
	return &Pipeline{topN: topSegments}
}

// Run выделяет из сырого текста лучшие сегменты в порядке убывания оценки.
func (p *Pipeline) Run(text string) []domain.ScoredSegment {
	segments := segmenter.Split(text)
	scored := scorer.Rank(segments)
	if len(scored) > p.topN {
		scored = scored[:p.topN]
	}
	return scored
}

// Texts возвращает тексты отобранных сегментов.
func Texts(scored []domain.ScoredSegment) []string {
	texts := make([]string, 0, len(scored))
	for _, s := range scored {
		texts = append(texts, s.Segment.Text)
	}
	return texts
}
