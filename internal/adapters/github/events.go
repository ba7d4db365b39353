package github

import (
	"fmt"
	"strings"
	"time"

	"journal-post-bot/internal/domain"
)

// Event — типизированный вариант события GitHub вместо сырого payload.
type Event interface {
	entryText() string
}

// CommitEvent — пуш коммита.
type CommitEvent struct {
	Repo      string
	Message   string
	Additions int
	Deletions int
}

// PullRequestEvent — открытый или смерженный pull request.
type PullRequestEvent struct {
	Repo   string
	Number int
	Title  string
	Merged bool
}

// ReleaseEvent — опубликованный релиз.
type ReleaseEvent struct {
	Repo string
	Tag  string
	Name string
}

func (e CommitEvent) entryText() string {
	text := fmt.Sprintf("Закоммитил в %s: %s", e.Repo, strings.TrimSpace(e.Message))
	if e.Additions > 0 || e.Deletions > 0 {
		text += fmt.Sprintf(" (+%d/−%d строк)", e.Additions, e.Deletions)
	}
	return text
}

func (e PullRequestEvent) entryText() string {
	verb := "Открыл"
	if e.Merged {
		verb = "Смержил"
	}
	return fmt.Sprintf("%s PR #%d в %s: %s", verb, e.Number, e.Repo, strings.TrimSpace(e.Title))
}

func (e ReleaseEvent) entryText() string {
	name := strings.TrimSpace(e.Name)
	if name == "" {
		name = e.Tag
	}
	return fmt.Sprintf("Выпустил релиз %s в %s: %s", e.Tag, e.Repo, name)
}

// EventPayload — сырое событие интеграции GitHub до типизации.
// Поле type определяет, какие остальные поля значимы.
type EventPayload struct {
	Type      string `json:"type"`
	Repo      string `json:"repo"`
	Message   string `json:"message,omitempty"`
	Additions int    `json:"additions,omitempty"`
	Deletions int    `json:"deletions,omitempty"`
	Number    int    `json:"number,omitempty"`
	Title     string `json:"title,omitempty"`
	Merged    bool   `json:"merged,omitempty"`
	Tag       string `json:"tag,omitempty"`
	Name      string `json:"name,omitempty"`
}

// ParseEvents превращает сырые события в типизированные. Событие
// неизвестного типа — ошибка, а не молчаливый пропуск.
func ParseEvents(payloads []EventPayload) ([]Event, error) {
	events := make([]Event, 0, len(payloads))
	for i, p := range payloads {
		switch p.Type {
		case "commit":
			events = append(events, CommitEvent{Repo: p.Repo, Message: p.Message, Additions: p.Additions, Deletions: p.Deletions})
		case "pull_request":
			events = append(events, PullRequestEvent{Repo: p.Repo, Number: p.Number, Title: p.Title, Merged: p.Merged})
		case "release":
			events = append(events, ReleaseEvent{Repo: p.Repo, Tag: p.Tag, Name: p.Name})
		default:
			return nil, fmt.Errorf("неизвестный тип события %q (элемент %d)", p.Type, i)
		}
	}
	return events, nil
}

// EntryFromEvents собирает события дня в одну запись журнала. Каждое
// событие становится отдельным абзацем, чтобы сегментация видела границы.
func EntryFromEvents(userID int64, events []Event) (domain.JournalEntry, bool) {
	paragraphs := make([]string, 0, len(events))
	for _, ev := range events {
		if text := strings.TrimSpace(ev.entryText()); text != "" {
			paragraphs = append(paragraphs, text)
		}
	}
	if len(paragraphs) == 0 {
		return domain.JournalEntry{}, false
	}
	text := strings.Join(paragraphs, "\n\n")
	return domain.JournalEntry{
		UserID:    userID,
		Source:    domain.SourceGitHub,
		Text:      text,
		Hash:      domain.Fingerprint(text),
		CreatedAt: time.Now().UTC(),
	}, true
}
