package analyzer

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"journal-post-bot/internal/domain"
)

const (
	topWordsLimit    = 20
	topStartersLimit = 10
)

var (
	sentencePattern = regexp.MustCompile(`[^.!?]+[.!?]*`)
	hashtagPattern  = regexp.MustCompile(`#\w+`)
	abbrevPattern   = regexp.MustCompile(`[A-Z]{2,}`)

	// Небольшой фиксированный список стоп-слов для топа частотности.
	stopWords = map[string]struct{}{
		"the": {}, "and": {}, "that": {}, "this": {}, "with": {}, "from": {},
		"have": {}, "has": {}, "was": {}, "were": {}, "but": {}, "for": {},
		"not": {}, "you": {}, "are": {}, "they": {}, "what": {}, "when": {},
		"your": {}, "will": {}, "just": {}, "about": {}, "would": {},
	}

	wordTrimChars = ".,!?;:—–-()\"'«»…"
)

// Analyze строит статистику текста. Чистая и детерминированная функция.
func Analyze(text string) domain.TextAnalysis {
	analysis := domain.TextAnalysis{
		WordFreq:    make(map[string]int),
		StarterFreq: make(map[string]int),
	}

	totalWords := 0
	for _, raw := range sentencePattern.FindAllString(text, -1) {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			continue
		}
		stat := sentenceStat(trimmed)
		if stat.WordCount == 0 {
			continue
		}
		analysis.Sentences = append(analysis.Sentences, stat)
		totalWords += stat.WordCount

		starter := strings.Trim(stat.Words[0], wordTrimChars)
		if starter != "" {
			analysis.StarterFreq[starter]++
		}
		for _, word := range stat.Words {
			lower := strings.ToLower(strings.Trim(word, wordTrimChars))
			if lower != "" {
				analysis.WordFreq[lower]++
			}
		}
	}

	analysis.TotalWords = totalWords
	analysis.UniqueWords = len(analysis.WordFreq)
	if n := len(analysis.Sentences); n > 0 {
		analysis.AvgSentenceLength = float64(totalWords) / float64(n)
		analysis.MinSentenceLength = analysis.Sentences[0].WordCount
		analysis.MaxSentenceLength = analysis.Sentences[0].WordCount
		for _, s := range analysis.Sentences[1:] {
			if s.WordCount < analysis.MinSentenceLength {
				analysis.MinSentenceLength = s.WordCount
			}
			if s.WordCount > analysis.MaxSentenceLength {
				analysis.MaxSentenceLength = s.WordCount
			}
		}
	}

	analysis.Punctuation = countPunctuation(text)
	analysis.UsesEmoji = hasEmoji(text)
	analysis.UsesHashtags = hashtagPattern.MatchString(text)
	analysis.UsesAbbreviations = abbrevPattern.MatchString(text)
	analysis.Formality = formality(analysis)
	analysis.TopWords = topWords(analysis.WordFreq, topWordsLimit)
	analysis.CommonStarters = topStarters(analysis.StarterFreq, topStartersLimit)
	return analysis
}

func sentenceStat(sentence string) domain.SentenceStat {
	body := strings.TrimRight(sentence, ".!?")
	words := strings.Fields(strings.TrimSpace(body))
	stat := domain.SentenceStat{
		Words:       words,
		WordCount:   len(words),
		HasComma:    strings.Contains(sentence, ","),
		HasDash:     strings.Contains(sentence, "—") || strings.Contains(sentence, "-"),
		HasEllipsis: strings.Contains(sentence, "...") || strings.Contains(sentence, "…"),
	}
	runes := []rune(sentence)
	stat.Capitalized = unicode.IsUpper(runes[0])
	stat.Terminal = string(runes[len(runes)-1])
	return stat
}

// countPunctuation считает знаки по всему тексту, независимо от разбиения
// на предложения.
func countPunctuation(text string) domain.PunctuationCounts {
	return domain.PunctuationCounts{
		Commas:    strings.Count(text, ","),
		Periods:   strings.Count(text, "."),
		Dashes:    strings.Count(text, "—") + strings.Count(text, "-"),
		Ellipses:  strings.Count(text, "...") + strings.Count(text, "…"),
		Questions: strings.Count(text, "?"),
		Exclaims:  strings.Count(text, "!"),
	}
}

// formality: старт с 5.0, поправки по наблюдениям, зажим в [1, 10].
func formality(a domain.TextAnalysis) float64 {
	score := 5.0
	if a.AvgSentenceLength > 15 {
		score++
	}
	if a.Punctuation.Commas > len(a.Sentences) {
		score += 0.5
	}
	if a.UsesEmoji {
		score -= 2
	}
	if a.UsesAbbreviations {
		score--
	}
	if a.AvgSentenceLength < 10 {
		score--
	}
	if score < 1 {
		return 1
	}
	if score > 10 {
		return 10
	}
	return score
}

func topWords(freq map[string]int, limit int) []string {
	words := make([]string, 0, len(freq))
	for word := range freq {
		if len(word) <= 2 {
			continue
		}
		if _, stop := stopWords[word]; stop {
			continue
		}
		words = append(words, word)
	}
	sortByFreq(words, freq)
	if len(words) > limit {
		words = words[:limit]
	}
	return words
}

func topStarters(freq map[string]int, limit int) []string {
	starters := make([]string, 0, len(freq))
	for starter := range freq {
		starters = append(starters, starter)
	}
	sortByFreq(starters, freq)
	if len(starters) > limit {
		starters = starters[:limit]
	}
	return starters
}

// sortByFreq сортирует по убыванию частоты, при равенстве — по алфавиту,
// чтобы результат был детерминированным.
func sortByFreq(items []string, freq map[string]int) {
	sort.Slice(items, func(i, j int) bool {
		if freq[items[i]] != freq[items[j]] {
			return freq[items[i]] > freq[items[j]]
		}
		return items[i] < items[j]
	})
}

func hasEmoji(text string) bool {
	for _, r := range text {
		switch {
		case r >= 0x1F300 && r <= 0x1F5FF,
			r >= 0x1F600 && r <= 0x1F64F,
			r >= 0x1F680 && r <= 0x1F6FF,
			r >= 0x1F900 && r <= 0x1F9FF,
			r >= 0x2600 && r <= 0x27BF:
			return true
		}
	}
	return false
}
