package scorer

import (
	"sort"
	"strings"
	"unicode"

	"journal-post-bot/internal/domain"
)

// Словари эвристик. Однословные маркеры сверяются по токенам,
// словосочетания — подстрокой по нижнему регистру.
var (
	assertionWords = []string{"is", "are", "will", "must", "never", "always", "only"}
	actionVerbs    = []string{"built", "shipped", "created", "deployed", "implemented", "solved"}
	hedgingWords   = []string{"maybe", "perhaps", "might", "could", "possibly", "probably"}

	concreteNouns  = []string{"code", "system", "architecture", "algorithm", "feature", "bug", "performance", "api", "database"}
	recencyMarkers = []string{"today", "yesterday", "this week", "recently", "now", "currently"}
	fillerWords    = []string{"things", "stuff", "really", "very", "just", "quite", "pretty"}

	outcomeWords  = []string{"result", "outcome", "learned", "discovered", "realized", "found"}
	problemWords  = []string{"problem", "solution", "challenge", "fix", "resolve"}
	vagueHedges   = []string{"somehow", "something", "somewhat", "kind of", "sort of"}
	wordTrimChars = ".,!?;:—–-()\"'«»"
)

// Score оценивает текст по трём независимым осям. Все под-оценки
// прижимаются к нулю снизу, Total — точная сумма без весов.
func Score(text string) domain.SegmentScore {
	trimmed := strings.TrimSpace(text)
	lower := strings.ToLower(trimmed)
	tokens := tokenSet(lower)

	score := domain.SegmentScore{
		Conviction: conviction(trimmed, lower, tokens),
		Novelty:    novelty(lower, tokens),
		Signal:     signal(trimmed, lower, tokens),
	}
	score.Total = score.Conviction + score.Novelty + score.Signal
	return score
}

// Rank оценивает все сегменты и сортирует по убыванию суммы. Стабильная
// сортировка сохраняет порядок документа при равных оценках.
func Rank(segments []domain.Segment) []domain.ScoredSegment {
	scored := make([]domain.ScoredSegment, 0, len(segments))
	for _, seg := range segments {
		scored = append(scored, domain.ScoredSegment{Segment: seg, Score: Score(seg.Text)})
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score.Total > scored[j].Score.Total })
	return scored
}

func conviction(trimmed, lower string, tokens map[string]struct{}) int {
	score := 0
	if isSingleDeclarative(trimmed) {
		score += 2
	}
	if containsAny(lower, tokens, assertionWords) {
		score++
	}
	if containsAny(lower, tokens, actionVerbs) {
		score += 2
	}
	if containsAny(lower, tokens, hedgingWords) {
		score -= 2
	}
	return clamp(score)
}

func novelty(lower string, tokens map[string]struct{}) int {
	score := 0
	if strings.ContainsFunc(lower, unicode.IsDigit) {
		score++
	}
	if containsAny(lower, tokens, concreteNouns) {
		score += 2
	}
	if containsAny(lower, tokens, recencyMarkers) {
		score++
	}
	if containsAny(lower, tokens, fillerWords) {
		score--
	}
	return clamp(score)
}

func signal(trimmed, lower string, tokens map[string]struct{}) int {
	words := len(strings.Fields(trimmed))
	score := 1
	switch {
	case words < 15:
		score = 3
	case words < 25:
		score = 2
	}
	if containsAny(lower, tokens, outcomeWords) {
		score += 2
	}
	if containsAny(lower, tokens, problemWords) {
		score++
	}
	if containsAny(lower, tokens, vagueHedges) {
		score -= 2
	}
	return clamp(score)
}

// isSingleDeclarative: начинается с заглавной, заканчивается одной точкой,
// без вопросительного знака внутри.
func isSingleDeclarative(text string) bool {
	runes := []rune(text)
	if len(runes) < 2 {
		return false
	}
	if !unicode.IsUpper(runes[0]) {
		return false
	}
	if runes[len(runes)-1] != '.' || runes[len(runes)-2] == '.' {
		return false
	}
	return !strings.ContainsRune(text, '?')
}

func tokenSet(lower string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, field := range strings.Fields(lower) {
		word := strings.Trim(field, wordTrimChars)
		if word != "" {
			set[word] = struct{}{}
		}
	}
	return set
}

func containsAny(lower string, tokens map[string]struct{}, terms []string) bool {
	for _, term := range terms {
		if strings.ContainsRune(term, ' ') {
			if strings.Contains(lower, term) {
				return true
			}
			continue
		}
		if _, ok := tokens[term]; ok {
			return true
		}
	}
	return false
}

func clamp(score int) int {
	if score < 0 {
		return 0
	}
	return score
}
