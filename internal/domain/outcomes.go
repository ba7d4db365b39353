package domain

import "fmt"

// RuleViolationCode классифицирует нарушение правил публикации.
type RuleViolationCode string

const (
	// RuleTooLong — текст длиннее MaxPostLength символов.
	RuleTooLong RuleViolationCode = "too_long"
	// RuleBannedPhrase — текст содержит запрещённую фразу.
	RuleBannedPhrase RuleViolationCode = "banned_phrase"
	// RuleTooManySentences — предложений больше допустимого.
	RuleTooManySentences RuleViolationCode = "too_many_sentences"
	// RuleSentenceTooLong — предложение длиннее допустимого.
	RuleSentenceTooLong RuleViolationCode = "sentence_too_long"
	// RuleSentenceTooShort — предложение короче допустимого.
	RuleSentenceTooShort RuleViolationCode = "sentence_too_short"
)

// RuleViolation описывает первое найденное нарушение. Проверка падает на
// первом нарушении, список не накапливается.
type RuleViolation struct {
	Code          RuleViolationCode
	Phrase        string
	SentenceIndex int
	Limit         int
	Actual        int
}

func (v *RuleViolation) Error() string {
	switch v.Code {
	case RuleTooLong:
		return fmt.Sprintf("текст длиннее %d символов: %d", v.Limit, v.Actual)
	case RuleBannedPhrase:
		return fmt.Sprintf("запрещённая фраза: %q", v.Phrase)
	case RuleTooManySentences:
		return fmt.Sprintf("слишком много предложений: %d при лимите %d", v.Actual, v.Limit)
	case RuleSentenceTooLong:
		return fmt.Sprintf("предложение %d длиннее %d слов: %d", v.SentenceIndex, v.Limit, v.Actual)
	case RuleSentenceTooShort:
		return fmt.Sprintf("предложение %d короче %d слов: %d", v.SentenceIndex, v.Limit, v.Actual)
	}
	return string(v.Code)
}

// ComposeStatus описывает итог прохода одного текста через конвейер.
type ComposeStatus string

const (
	// ComposePosted — пост сохранён и опубликован.
	ComposePosted ComposeStatus = "posted"
	// ComposeSkipped — ожидаемый отказ до трансформации (лимит, дубликат).
	ComposeSkipped ComposeStatus = "skipped"
	// ComposeRejected — кандидат отклонён правилами, ничего не сохранено.
	ComposeRejected ComposeStatus = "rejected"
	// ComposeFailed — отказ внешнего коллаборатора.
	ComposeFailed ComposeStatus = "failed"
)

// Машинные коды причин для не-успешных исходов.
const (
	ReasonDailyLimit      = "daily_limit_reached"
	ReasonDuplicate       = "duplicate_content"
	ReasonTransformFailed = "transform_failed"
	ReasonPublishFailed   = "publish_failed"
)

// ComposeOutcome — типизированный результат композиции. Ожидаемые отказы
// (лимит, дубликат) приходят сюда, а не ошибкой.
type ComposeOutcome struct {
	Status ComposeStatus
	Reason string
	Detail string
	Post   *Post
}
