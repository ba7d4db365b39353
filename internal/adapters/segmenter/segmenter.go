package segmenter

import (
	"regexp"
	"strings"

	"journal-post-bot/internal/domain"
)

const (
	// Абзац длиннее этого порога дополнительно режется на предложения.
	maxParagraphWords = 40
	minSegmentWords   = 8
	maxSegmentWords   = 50
)

var paragraphBreak = regexp.MustCompile(`\n\s*\n`)

// Split разбивает сырой текст на кандидатов для отдельных постов.
// Сначала по пустым строкам, длинные абзацы — по границам предложений.
// Сегменты вне диапазона [8, 50] слов отбрасываются, порядок документа
// сохраняется. Без скрытого состояния: одинаковый вход даёт одинаковый выход.
func Split(text string) []domain.Segment {
	var segments []domain.Segment
	for _, paragraph := range paragraphBreak.Split(text, -1) {
		paragraph = strings.TrimSpace(paragraph)
		if paragraph == "" {
			continue
		}
		candidates := []string{paragraph}
		if len(strings.Fields(paragraph)) > maxParagraphWords {
			candidates = splitSentences(paragraph)
		}
		for _, candidate := range candidates {
			candidate = strings.TrimSpace(candidate)
			words := len(strings.Fields(candidate))
			if words < minSegmentWords || words > maxSegmentWords {
				continue
			}
			segments = append(segments, domain.Segment{Text: candidate, WordCount: words})
		}
	}
	return segments
}

// splitSentences режет текст после `.`, `!` или `?`, за которыми следует
// пробельный символ.
func splitSentences(text string) []string {
	var sentences []string
	runes := []rune(text)
	start := 0
	for i := 0; i < len(runes); i++ {
		if runes[i] != '.' && runes[i] != '!' && runes[i] != '?' {
			continue
		}
		if i+1 < len(runes) && !isSpace(runes[i+1]) {
			continue
		}
		sentences = append(sentences, string(runes[start:i+1]))
		start = i + 1
	}
	if start < len(runes) {
		if rest := strings.TrimSpace(string(runes[start:])); rest != "" {
			sentences = append(sentences, rest)
		}
	}
	return sentences
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}
