package domain

import (
	"context"
	"time"
)

// ComposeJobCause описывает источник задачи на композицию.
type ComposeJobCause string

const (
	// ComposeCauseManual — пользователь запросил публикацию вручную.
	ComposeCauseManual ComposeJobCause = "manual"
	// ComposeCauseScheduled — ежедневный обход по расписанию.
	ComposeCauseScheduled ComposeJobCause = "scheduled"
)

// ComposeJob содержит тексты одного прохода конвейера.
type ComposeJob struct {
	ID          string          `json:"job_id,omitempty"`
	UserID      int64           `json:"user_id"`
	Texts       []string        `json:"texts"`
	Source      PostSource      `json:"source"`
	RequestedAt time.Time       `json:"requested_at"`
	Cause       ComposeJobCause `json:"cause"`
}

// ComposeAckFunc подтверждает обработку или запрашивает повтор доставки.
type ComposeAckFunc func(success bool) error

// ComposeQueue описывает очередь задач на композицию.
type ComposeQueue interface {
	Enqueue(ctx context.Context, job ComposeJob) error
	Receive(ctx context.Context) (ComposeJob, ComposeAckFunc, error)
}
