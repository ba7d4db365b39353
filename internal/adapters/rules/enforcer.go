package rules

import (
	"strings"
	"unicode/utf8"

	"journal-post-bot/internal/domain"
)

// Enforcer детерминированно проверяет готовый текст на жёсткие правила
// публикации. Без побочных эффектов и без доступа к профилю стиля:
// одинаковый вход и конфигурация всегда дают одинаковый вердикт.
type Enforcer struct {
	rules domain.ToneRules
}

var _ domain.RuleEnforcer = (*Enforcer)(nil)

// NewEnforcer создаёт проверяющего с указанными правилами.
func NewEnforcer(rules domain.ToneRules) *Enforcer {
	return &Enforcer{rules: rules}
}

// Enforce проверяет текст и падает на первом нарушении.
// Порядок проверок: длина, запрещённые фразы, число предложений,
// длина каждого предложения.
func (e *Enforcer) Enforce(text string) error {
	if length := utf8.RuneCountInString(text); length > domain.MaxPostLength {
		return &domain.RuleViolation{Code: domain.RuleTooLong, Limit: domain.MaxPostLength, Actual: length}
	}

	lower := strings.ToLower(text)
	for _, phrase := range e.rules.BannedPhrases {
		if phrase == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(phrase)) {
			return &domain.RuleViolation{Code: domain.RuleBannedPhrase, Phrase: phrase}
		}
	}

	sentences := splitSentences(text)
	if e.rules.MaxSentences > 0 && len(sentences) > e.rules.MaxSentences {
		return &domain.RuleViolation{Code: domain.RuleTooManySentences, Limit: e.rules.MaxSentences, Actual: len(sentences)}
	}

	for i, sentence := range sentences {
		words := len(strings.Fields(sentence))
		if e.rules.MaxSentenceWords > 0 && words > e.rules.MaxSentenceWords {
			return &domain.RuleViolation{Code: domain.RuleSentenceTooLong, SentenceIndex: i, Limit: e.rules.MaxSentenceWords, Actual: words}
		}
		if e.rules.MinSentenceWords > 0 && words < e.rules.MinSentenceWords {
			return &domain.RuleViolation{Code: domain.RuleSentenceTooShort, SentenceIndex: i, Limit: e.rules.MinSentenceWords, Actual: words}
		}
	}
	return nil
}

// splitSentences режет по `.` и `!`, пустые куски отбрасывает.
func splitSentences(text string) []string {
	parts := strings.FieldsFunc(text, func(r rune) bool { return r == '.' || r == '!' })
	sentences := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			sentences = append(sentences, trimmed)
		}
	}
	return sentences
}
