package transformer

import (
	"context"
	"strings"
	"unicode/utf8"

	"journal-post-bot/internal/domain"
)

// Simple — эвристический трансформер без LLM. Сжимает текст до первых двух
// предложений и обрезает до лимита поста. Используется, когда ключ OpenAI
// не настроен.
type Simple struct{}

var _ domain.Transformer = (*Simple)(nil)

// NewSimple создаёт трансформер.
func NewSimple() *Simple {
	return &Simple{}
}

// Transform сжимает текст, инструкцию игнорирует.
func (s *Simple) Transform(_ context.Context, _ string, text string) (string, error) {
	compact := strings.Join(strings.Fields(text), " ")
	sentences := splitAfterTerminals(compact)
	if len(sentences) > 2 {
		compact = strings.TrimSpace(strings.Join(sentences[:2], " "))
	}
	return truncate(compact, domain.MaxPostLength), nil
}

func splitAfterTerminals(text string) []string {
	var sentences []string
	runes := []rune(text)
	start := 0
	for i, r := range runes {
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if i+1 < len(runes) && runes[i+1] != ' ' {
			continue
		}
		sentences = append(sentences, strings.TrimSpace(string(runes[start:i+1])))
		start = i + 1
	}
	if start < len(runes) {
		if rest := strings.TrimSpace(string(runes[start:])); rest != "" {
			sentences = append(sentences, rest)
		}
	}
	return sentences
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit-1]) + "…"
}
