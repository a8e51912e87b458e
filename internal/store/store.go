// Package store persists memos.
package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pbaille/memo/internal/config"
	"github.com/pbaille/memo/internal/domain"
)

// Backend is implemented by every memo store.
type Backend interface {
	Insert(ctx context.Context, m *domain.Memo) (int64, error)
	Query(ctx context.Context, userID int64, start, end time.Time) ([]domain.Memo, error)
	Delete(ctx context.Context, userID int64, start, end time.Time, keyword *string) (int64, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Memo, error)
	Search(ctx context.Context, userID int64, keyword string) ([]domain.Memo, error)
	Close() error
}

var (
	_ Backend = (*SQLite)(nil)
	_ Backend = (*Postgres)(nil)
)

// Open returns the backend named by cfg.Driver.
func Open(ctx context.Context, cfg config.DBConfig, loc *time.Location, logger *zap.Logger) (Backend, error) {
	switch cfg.Driver {
	case "", "sqlite", "sqlite3":
		return NewSQLite(cfg.SQLitePath, loc, logger)
	case "postgres", "postgresql":
		return NewPostgres(ctx, cfg, loc, logger)
	}
	return nil, fmt.Errorf("unknown db driver %q", cfg.Driver)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a LIKE pattern matching keyword literally anywhere
// in the text. Queries pair it with ESCAPE '\'.
func containsPattern(keyword string) string {
	return "%" + likeEscaper.Replace(keyword) + "%"
}
