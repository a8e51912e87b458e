// Package events announces memo changes to other services.
package events

import (
	"context"
	"time"

	"github.com/pbaille/memo/internal/domain"
)

// Routing keys
const (
	MemoCreated = "memo.created"
	MemoDeleted = "memo.deleted"
)

// MemoCreatedEvent is published after a memo is stored.
type MemoCreatedEvent struct {
	MemoID     int64     `json:"memo_id"`
	UserID     int64     `json:"user_id"`
	Text       string    `json:"text"`
	CategoryID int       `json:"category_id"`
	Timestamp  string    `json:"timestamp"`
	OccurredAt time.Time `json:"occurred_at"`
}

// MemoDeletedEvent is published after a confirmed deletion.
type MemoDeletedEvent struct {
	UserID     int64           `json:"user_id"`
	Count      int64           `json:"count"`
	StartTime  string          `json:"start_time"`
	EndTime    string          `json:"end_time"`
	Keyword    *string         `json:"keyword"`
	Category   domain.Category `json:"category"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// Publisher sends an event under a routing key.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// Nop discards events.
type Nop struct{}

func (Nop) Publish(context.Context, string, any) error { return nil }
