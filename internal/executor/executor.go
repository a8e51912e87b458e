// Package executor applies resolved actions to the memo store.
package executor

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/pbaille/memo/internal/domain"
	"github.com/pbaille/memo/internal/events"
	"github.com/pbaille/memo/internal/intent"
	"github.com/pbaille/memo/internal/pending"
)

// ErrMissingFields is returned when a user id, title or category id is
// absent.
var ErrMissingFields = errors.New("missing required fields")

// Store is the part of a memo backend the executor needs.
type Store interface {
	Insert(ctx context.Context, m *domain.Memo) (int64, error)
	Query(ctx context.Context, userID int64, start, end time.Time) ([]domain.Memo, error)
	Delete(ctx context.Context, userID int64, start, end time.Time, keyword *string) (int64, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Memo, error)
}

// Executor runs actions for a user
type Executor struct {
	store   Store
	pending pending.Store
	events  events.Publisher
	logger  *zap.Logger
}

// New creates an executor. A nil publisher disables events.
func New(store Store, ps pending.Store, pub events.Publisher, logger *zap.Logger) *Executor {
	if pub == nil {
		pub = events.Nop{}
	}
	return &Executor{store: store, pending: ps, events: pub, logger: logger}
}

// Outcome reports what Execute did. Only the field matching the action
// kind is set.
type Outcome struct {
	MemoID       int64
	Tasks        []domain.Task
	ConfirmToken string
}

// Execute applies action for userID. Create stores the memo, Query loads
// the target day, Delete only registers a pending deletion; nothing is
// removed until ConfirmDelete.
func (e *Executor) Execute(ctx context.Context, userID int64, action *domain.Action) (Outcome, error) {
	if userID <= 0 {
		return Outcome{}, ErrMissingFields
	}

	switch action.Kind {
	case domain.ActionCreate:
		c := action.Create
		id, err := e.Save(ctx, userID, c.Title, c.CategoryID, c.Timestamp)
		if err != nil {
			return Outcome{}, err
		}
		return Outcome{MemoID: id}, nil

	case domain.ActionQuery:
		start, end := intent.DayWindow(action.Query.TargetDate)
		memos, err := e.store.Query(ctx, userID, start, end)
		if err != nil {
			return Outcome{}, fmt.Errorf("query tasks: %w", err)
		}
		tasks := make([]domain.Task, 0, len(memos))
		for _, m := range memos {
			tasks = append(tasks, m.AsTask())
		}
		action.Query.Tasks = tasks
		return Outcome{Tasks: tasks}, nil

	case domain.ActionDelete:
		token, err := e.pending.Put(ctx, pending.FromAction(userID, action.Delete))
		if err != nil {
			return Outcome{}, fmt.Errorf("register deletion: %w", err)
		}
		e.logger.Info("Deletion awaiting confirmation",
			zap.Int64("user_id", userID),
			zap.String("category", string(action.Delete.Category)),
		)
		return Outcome{ConfirmToken: token}, nil
	}

	return Outcome{}, fmt.Errorf("unknown action kind %d", action.Kind)
}

// Save stores a memo and announces it.
func (e *Executor) Save(ctx context.Context, userID int64, title string, categoryID int, ts time.Time) (int64, error) {
	if userID <= 0 || title == "" || categoryID == 0 {
		return 0, ErrMissingFields
	}

	m := &domain.Memo{
		Text:      title,
		Category:  strconv.Itoa(categoryID),
		Timestamp: ts,
		UserID:    userID,
	}
	id, err := e.store.Insert(ctx, m)
	if err != nil {
		return 0, fmt.Errorf("save memo: %w", err)
	}

	e.publish(ctx, events.MemoCreated, events.MemoCreatedEvent{
		MemoID:     id,
		UserID:     userID,
		Text:       title,
		CategoryID: categoryID,
		Timestamp:  ts.Format(domain.TimestampLayout),
		OccurredAt: time.Now(),
	})
	return id, nil
}

// List returns every memo of the user, newest first.
func (e *Executor) List(ctx context.Context, userID int64) ([]domain.Memo, error) {
	if userID <= 0 {
		return nil, ErrMissingFields
	}
	memos, err := e.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list memos: %w", err)
	}
	return memos, nil
}

// ConfirmDelete runs the deletion registered under token. An unknown or
// expired token yields pending.ErrNotFound.
func (e *Executor) ConfirmDelete(ctx context.Context, userID int64, token string) (int64, error) {
	d, err := e.pending.Take(ctx, userID, token)
	if err != nil {
		return 0, err
	}
	return e.Delete(ctx, d)
}

// Delete removes the memos selected by d at once.
func (e *Executor) Delete(ctx context.Context, d pending.Deletion) (int64, error) {
	if d.UserID <= 0 {
		return 0, ErrMissingFields
	}

	n, err := e.store.Delete(ctx, d.UserID, d.StartTime, d.EndTime, d.Keyword)
	if err != nil {
		return 0, fmt.Errorf("delete memos: %w", err)
	}

	e.publish(ctx, events.MemoDeleted, events.MemoDeletedEvent{
		UserID:     d.UserID,
		Count:      n,
		StartTime:  d.StartTime.Format(domain.TimestampLayout),
		EndTime:    d.EndTime.Format(domain.TimestampLayout),
		Keyword:    d.Keyword,
		Category:   d.Category,
		OccurredAt: time.Now(),
	})
	return n, nil
}

// publish never fails the caller; the memo change already happened.
func (e *Executor) publish(ctx context.Context, key string, payload any) {
	if err := e.events.Publish(ctx, key, payload); err != nil {
		e.logger.Warn("Failed to publish event", zap.String("routing_key", key), zap.Error(err))
	}
}
