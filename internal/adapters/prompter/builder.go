package prompter

import (
	"fmt"
	"math"
	"strings"

	"journal-post-bot/internal/domain"
)

// GenericInstruction используется, пока профиль стиля ещё не выучен.
const GenericInstruction = "Перепиши текст как короткий пост: ясно, кратко и по делу. Не длиннее 280 символов."

const maxExamplePosts = 5

// Builder превращает профиль стиля в инструкцию для трансформера.
// Это единственная точка связи ядра с внешней языковой моделью.
type Builder struct {
	styles domain.StyleRepo
}

var _ domain.PromptBuilder = (*Builder)(nil)

// NewBuilder создаёт построитель инструкций.
func NewBuilder(styles domain.StyleRepo) *Builder {
	return &Builder{styles: styles}
}

// Build возвращает персональную инструкцию пользователя или общую,
// если профиль ещё не создан.
func (b *Builder) Build(userID int64) (string, error) {
	profile, ok, err := b.styles.GetProfile(userID)
	if err != nil {
		return "", fmt.Errorf("чтение профиля стиля: %w", err)
	}
	if !ok {
		return GenericInstruction, nil
	}
	return Render(profile), nil
}

// Render строит инструкцию по готовому профилю.
func Render(profile domain.StyleProfile) string {
	var sb strings.Builder
	sb.WriteString("Перепиши текст как короткий пост в голосе автора.\n\n")
	sb.WriteString("Стиль автора:\n")
	fmt.Fprintf(&sb, "- целевая длина предложения: %d слов (диапазон %d–%d)\n",
		int(math.Round(profile.AvgSentenceLength)), profile.MinSentenceLength, profile.MaxSentenceLength)
	fmt.Fprintf(&sb, "- тон: %s\n", formalityLabel(profile.Formality))
	if profile.UsesEmoji {
		sb.WriteString("- эмодзи уместны, автор их использует\n")
	} else {
		sb.WriteString("- без эмодзи\n")
	}
	if profile.UsesHashtags {
		sb.WriteString("- можно добавить хэштег, автор их использует\n")
	} else {
		sb.WriteString("- без хэштегов\n")
	}
	if len(profile.CommonWords) > 0 {
		fmt.Fprintf(&sb, "- характерные слова: %s\n", strings.Join(head(profile.CommonWords, 10), ", "))
	}
	if len(profile.CommonStarters) > 0 {
		fmt.Fprintf(&sb, "- типичные начала предложений: %s\n", strings.Join(head(profile.CommonStarters, 5), ", "))
	}

	if examples := recentExamples(profile.ExamplePosts, maxExamplePosts); len(examples) > 0 {
		sb.WriteString("\nПримеры постов автора:\n")
		for i, example := range examples {
			fmt.Fprintf(&sb, "%d. %s\n", i+1, example)
		}
	}

	sb.WriteString("\nЖёсткое ограничение: итоговый текст не длиннее 280 символов.")
	return sb.String()
}

// formalityLabel переводит числовую формальность в качественную метку.
func formalityLabel(score float64) string {
	switch {
	case score < 5:
		return "разговорный"
	case score > 7:
		return "формальный"
	default:
		return "нейтральный"
	}
}

// recentExamples возвращает до limit самых свежих примеров.
func recentExamples(posts []string, limit int) []string {
	if len(posts) > limit {
		posts = posts[len(posts)-limit:]
	}
	return posts
}

func head(items []string, limit int) []string {
	if len(items) > limit {
		return items[:limit]
	}
	return items
}
