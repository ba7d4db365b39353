package style

import (
	"fmt"
	"strings"
	"time"

	"journal-post-bot/internal/adapters/analyzer"
	"journal-post-bot/internal/domain"
)

// exampleWindow — сколько последних примеров хранится в профиле.
const exampleWindow = 20

// Service инкрементально обучает профиль стиля пользователя.
// Записи одного пользователя должны приходить последовательно: формула
// бегущего среднего не переживает параллельных обновлений.
type Service struct {
	styles domain.StyleRepo
}

// NewService создаёт сервис обучения стиля.
func NewService(styles domain.StyleRepo) *Service {
	return &Service{styles: styles}
}

// LearnFromText обновляет профиль по новому образцу текста. Числовые поля
// обновляются по формуле new = (old*n + sample)/(n+1) и никогда не
// пересчитываются по всей истории, поэтому оценка зависит от порядка.
// Топ слов, типичные начала и пунктуационные доли выводятся заново из
// скользящего окна примеров при каждом вызове.
func (s *Service) LearnFromText(userID int64, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	sample := analyzer.Analyze(text)
	if len(sample.Sentences) == 0 {
		return nil
	}

	profile, ok, err := s.styles.GetProfile(userID)
	if err != nil {
		return fmt.Errorf("чтение профиля: %w", err)
	}

	if !ok {
		profile = domain.StyleProfile{
			UserID:            userID,
			AvgSentenceLength: sample.AvgSentenceLength,
			MinSentenceLength: sample.MinSentenceLength,
			MaxSentenceLength: sample.MaxSentenceLength,
			Formality:         sample.Formality,
		}
	} else {
		n := float64(profile.TotalPostsAnalyzed)
		profile.AvgSentenceLength = (profile.AvgSentenceLength*n + sample.AvgSentenceLength) / (n + 1)
		profile.Formality = (profile.Formality*n + sample.Formality) / (n + 1)
		if sample.MinSentenceLength < profile.MinSentenceLength {
			profile.MinSentenceLength = sample.MinSentenceLength
		}
		if sample.MaxSentenceLength > profile.MaxSentenceLength {
			profile.MaxSentenceLength = sample.MaxSentenceLength
		}
	}

	// Булевы признаки — последнее наблюдение, не среднее.
	profile.UsesEmoji = sample.UsesEmoji
	profile.UsesHashtags = sample.UsesHashtags
	profile.UsesAbbreviations = sample.UsesAbbreviations

	profile.ExamplePosts = append(profile.ExamplePosts, text)
	if len(profile.ExamplePosts) > exampleWindow {
		profile.ExamplePosts = profile.ExamplePosts[len(profile.ExamplePosts)-exampleWindow:]
	}
	profile.TotalPostsAnalyzed++

	deriveFromWindow(&profile)
	profile.UpdatedAt = time.Now().UTC()

	if err := s.styles.SaveProfile(profile); err != nil {
		return fmt.Errorf("сохранение профиля: %w", err)
	}
	return nil
}

// Pattern возвращает профиль пользователя, если он уже создан.
func (s *Service) Pattern(userID int64) (domain.StyleProfile, bool, error) {
	return s.styles.GetProfile(userID)
}

// deriveFromWindow пересчитывает производные поля по текущему окну примеров.
func deriveFromWindow(profile *domain.StyleProfile) {
	window := analyzer.Analyze(strings.Join(profile.ExamplePosts, "\n\n"))
	profile.CommonWords = window.TopWords
	profile.CommonStarters = window.CommonStarters
	if n := float64(len(window.Sentences)); n > 0 {
		profile.CommaRatio = float64(window.Punctuation.Commas) / n
		profile.PeriodRatio = float64(window.Punctuation.Periods) / n
		profile.DashRatio = float64(window.Punctuation.Dashes) / n
		profile.EllipsisRatio = float64(window.Punctuation.Ellipses) / n
	}
}
