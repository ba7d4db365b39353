package prompter

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"journal-post-bot/internal/domain"
)

type stubStyleRepo struct {
	profile domain.StyleProfile
	ok      bool
	err     error
}

func (s *stubStyleRepo) GetProfile(int64) (domain.StyleProfile, bool, error) {
	return s.profile, s.ok, s.err
}

func (s *stubStyleRepo) SaveProfile(domain.StyleProfile) error { return nil }

func TestBuildGenericWithoutProfile(t *testing.T) {
	builder := NewBuilder(&stubStyleRepo{ok: false})
	instruction, err := builder.Build(7)
	if err != nil {
		t.Fatalf("построение упало: %v", err)
	}
	if instruction != GenericInstruction {
		t.Fatalf("ожидали общую инструкцию, получили %q", instruction)
	}
}

func TestBuildPropagatesRepoError(t *testing.T) {
	repoErr := errors.New("нет связи")
	builder := NewBuilder(&stubStyleRepo{err: repoErr})
	if _, err := builder.Build(7); !errors.Is(err, repoErr) {
		t.Fatalf("ожидали ошибку репозитория, получили %v", err)
	}
}

func TestRenderIncludesProfileFacts(t *testing.T) {
	profile := domain.StyleProfile{
		UserID:            7,
		AvgSentenceLength: 11.4,
		MinSentenceLength: 6,
		MaxSentenceLength: 18,
		Formality:         4.2,
		UsesEmoji:         true,
		UsesHashtags:      false,
		CommonWords:       []string{"shipping", "latency", "pipeline"},
		CommonStarters:    []string{"Today", "We"},
		ExamplePosts:      []string{"Shipped it today."},
	}
	instruction := Render(profile)

	if !strings.Contains(instruction, "11 слов (диапазон 6–18)") {
		t.Fatalf("нет целевой длины предложения:\n%s", instruction)
	}
	if !strings.Contains(instruction, "тон: разговорный") {
		t.Fatalf("нет метки тона:\n%s", instruction)
	}
	if !strings.Contains(instruction, "эмодзи уместны") {
		t.Fatalf("нет разрешения эмодзи:\n%s", instruction)
	}
	if !strings.Contains(instruction, "без хэштегов") {
		t.Fatalf("нет запрета хэштегов:\n%s", instruction)
	}
	if !strings.Contains(instruction, "shipping, latency, pipeline") {
		t.Fatalf("нет характерных слов:\n%s", instruction)
	}
	if !strings.Contains(instruction, "1. Shipped it today.") {
		t.Fatalf("нет примера поста:\n%s", instruction)
	}
	if !strings.Contains(instruction, "не длиннее 280 символов") {
		t.Fatalf("нет жёсткого ограничения длины:\n%s", instruction)
	}
}

func TestFormalityLabels(t *testing.T) {
	cases := []struct {
		score float64
		label string
	}{
		{3.9, "разговорный"},
		{5, "нейтральный"},
		{7, "нейтральный"},
		{7.1, "формальный"},
	}
	for _, tc := range cases {
		if got := formalityLabel(tc.score); got != tc.label {
			t.Fatalf("для %f ожидали %q, получили %q", tc.score, tc.label, got)
		}
	}
}

func TestRenderKeepsAtMostFiveFreshExamples(t *testing.T) {
	posts := make([]string, 8)
	for i := range posts {
		posts[i] = fmt.Sprintf("Example post number %d.", i)
	}
	instruction := Render(domain.StyleProfile{ExamplePosts: posts, Formality: 5})

	if strings.Contains(instruction, "Example post number 2.") {
		t.Fatalf("старый пример не должен попадать в инструкцию:\n%s", instruction)
	}
	for i := 3; i < 8; i++ {
		if !strings.Contains(instruction, fmt.Sprintf("Example post number %d.", i)) {
			t.Fatalf("свежий пример %d отсутствует:\n%s", i, instruction)
		}
	}
}
