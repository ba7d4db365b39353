package rules

import (
	"errors"
	"strings"
	"testing"

	"journal-post-bot/internal/domain"
)

func mustViolation(t *testing.T, err error) *domain.RuleViolation {
	t.Helper()
	var violation *domain.RuleViolation
	if !errors.As(err, &violation) {
		t.Fatalf("ожидали RuleViolation, получили %v", err)
	}
	return violation
}

func TestEnforceAcceptsValidText(t *testing.T) {
	enforcer := NewEnforcer(domain.DefaultToneRules())
	text := "We shipped the new caching layer to production today. Latency dropped by forty percent across every endpoint. The on-call rotation is finally quiet."
	if err := enforcer.Enforce(text); err != nil {
		t.Fatalf("валидный текст отклонён: %v", err)
	}
}

func TestEnforceTooLong(t *testing.T) {
	enforcer := NewEnforcer(domain.DefaultToneRules())
	violation := mustViolation(t, enforcer.Enforce(strings.Repeat("a", 281)))
	if violation.Code != domain.RuleTooLong {
		t.Fatalf("ожидали too_long, получили %s", violation.Code)
	}
	if violation.Actual != 281 || violation.Limit != domain.MaxPostLength {
		t.Fatalf("неверные границы: %+v", violation)
	}
}

func TestEnforceTooLongCountsRunesNotBytes(t *testing.T) {
	enforcer := NewEnforcer(domain.DefaultToneRules())
	// 280 кириллических символов занимают вдвое больше байт, но проходят по длине.
	text := strings.Repeat("я", 269) + " " + strings.Repeat("я", 9) + "."
	if err := enforcer.Enforce(text); err != nil {
		violation := mustViolation(t, err)
		if violation.Code == domain.RuleTooLong {
			t.Fatalf("длина должна считаться в рунах: %+v", violation)
		}
	}
}

func TestEnforceBannedPhraseCaseInsensitive(t *testing.T) {
	enforcer := NewEnforcer(domain.DefaultToneRules())
	violation := mustViolation(t, enforcer.Enforce("I am EXCITED TO ANNOUNCE this thing today."))
	if violation.Code != domain.RuleBannedPhrase {
		t.Fatalf("ожидали banned_phrase, получили %s", violation.Code)
	}
	if violation.Phrase != "excited to announce" {
		t.Fatalf("ожидали фразу из конфигурации, получили %q", violation.Phrase)
	}
}

func TestEnforceTooManySentences(t *testing.T) {
	enforcer := NewEnforcer(domain.DefaultToneRules())
	text := "First sentence goes right here today. Second sentence goes right here today. Third sentence goes right here today. Fourth sentence goes right here today."
	violation := mustViolation(t, enforcer.Enforce(text))
	if violation.Code != domain.RuleTooManySentences {
		t.Fatalf("ожидали too_many_sentences, получили %s", violation.Code)
	}
	if violation.Actual != 4 || violation.Limit != 3 {
		t.Fatalf("неверные границы: %+v", violation)
	}
}

func TestEnforceSentenceTooLong(t *testing.T) {
	enforcer := NewEnforcer(domain.DefaultToneRules())
	text := strings.TrimSpace(strings.Repeat("word ", 21)) + "."
	violation := mustViolation(t, enforcer.Enforce(text))
	if violation.Code != domain.RuleSentenceTooLong {
		t.Fatalf("ожидали sentence_too_long, получили %s", violation.Code)
	}
	if violation.SentenceIndex != 0 || violation.Actual != 21 {
		t.Fatalf("неверные детали: %+v", violation)
	}
}

func TestEnforceSentenceTooShort(t *testing.T) {
	enforcer := NewEnforcer(domain.DefaultToneRules())
	violation := mustViolation(t, enforcer.Enforce("Too short. The second sentence is perfectly fine today."))
	if violation.Code != domain.RuleSentenceTooShort {
		t.Fatalf("ожидали sentence_too_short, получили %s", violation.Code)
	}
	if violation.SentenceIndex != 0 {
		t.Fatalf("ожидали индекс 0, получили %d", violation.SentenceIndex)
	}
}

func TestEnforceOrderLengthBeforeBannedPhrase(t *testing.T) {
	enforcer := NewEnforcer(domain.DefaultToneRules())
	// Текст и длиннее лимита, и содержит запрещённую фразу:
	// первой должна сработать проверка длины.
	text := "excited to announce " + strings.Repeat("a", 300)
	violation := mustViolation(t, enforcer.Enforce(text))
	if violation.Code != domain.RuleTooLong {
		t.Fatalf("проверка длины должна идти первой, получили %s", violation.Code)
	}
}

func TestEnforceQuestionMarkDoesNotSplit(t *testing.T) {
	enforcer := NewEnforcer(domain.DefaultToneRules())
	// Вопросительный знак не делит предложения: всё остаётся одним куском.
	text := "Is this the fastest path to production? We believe the benchmark proves it."
	if err := enforcer.Enforce(text); err != nil {
		t.Fatalf("текст с вопросом отклонён: %v", err)
	}
}

func TestEnforceZeroLimitsDisableChecks(t *testing.T) {
	enforcer := NewEnforcer(domain.ToneRules{})
	text := "One. Two. Three. Four. Five words in a sentence here."
	if err := enforcer.Enforce(text); err != nil {
		t.Fatalf("нулевые лимиты должны отключать проверки: %v", err)
	}
}
