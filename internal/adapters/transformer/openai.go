package transformer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"journal-post-bot/internal/domain"
	openai "journal-post-bot/internal/infra/openai"
)

type chatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAI реализует domain.Transformer через OpenAI Chat Completions.
type OpenAI struct {
	client  chatClient
	model   string
	timeout time.Duration
}

var _ domain.Transformer = (*OpenAI)(nil)

// NewOpenAI создаёт трансформер.
func NewOpenAI(client chatClient, model string, timeout time.Duration) *OpenAI {
	if model == "" {
		model = "gpt-4.1-mini"
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &OpenAI{client: client, model: model, timeout: timeout}
}

// Transform переписывает текст по инструкции. Инструкция идёт системным
// сообщением, исходный текст — пользовательским.
func (t *OpenAI) Transform(ctx context.Context, instruction, text string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model:       t.model,
		Temperature: 0.7,
		MaxTokens:   150,
		Messages: []openai.ChatMessage{
			{Role: openai.RoleSystem, Content: instruction},
			{Role: openai.RoleUser, Content: clipRunes(text, 2000)},
		},
	}

	resp, err := t.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("openai completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai completion: пустой ответ")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func clipRunes(text string, limit int) string {
	if limit <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
