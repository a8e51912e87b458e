package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/pbaille/memo/internal/domain"
	"github.com/pbaille/memo/internal/metrics"
)

//go:embed schema.sql
var schema string

// SQLite stores memos in a local database file. Timestamps are kept as
// "YYYY-MM-DD HH:MM:SS" text in the store's location, so range filters
// compare lexically.
type SQLite struct {
	db     *sql.DB
	loc    *time.Location
	logger *zap.Logger
}

// NewSQLite opens (and if needed creates) the database at dbPath
func NewSQLite(dbPath string, loc *time.Location, logger *zap.Logger) (*SQLite, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Initialize schema
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	if loc == nil {
		loc = time.Local
	}
	return &SQLite{db: db, loc: loc, logger: logger}, nil
}

// Close closes the database connection
func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) format(t time.Time) string {
	return t.In(s.loc).Format(domain.TimestampLayout)
}

// Insert adds a memo and returns its id
func (s *SQLite) Insert(ctx context.Context, m *domain.Memo) (int64, error) {
	defer observe("insert", time.Now())

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO memo (text, category, timestamp, userID) VALUES (?, ?, ?, ?)",
		m.Text, m.Category, s.format(m.Timestamp), m.UserID,
	)
	if err != nil {
		s.logger.Error("Failed to insert memo", zap.Error(err), zap.Int64("user_id", m.UserID))
		return 0, fmt.Errorf("insert memo: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert memo id: %w", err)
	}
	m.ID = id
	s.logger.Debug("Memo inserted", zap.Int64("memo_id", id), zap.Int64("user_id", m.UserID))
	return id, nil
}

// Query returns the user's memos with a timestamp in [start, end]
func (s *SQLite) Query(ctx context.Context, userID int64, start, end time.Time) ([]domain.Memo, error) {
	defer observe("query", time.Now())

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, text, category, timestamp, userID FROM memo
		 WHERE userID = ? AND timestamp >= ? AND timestamp <= ?
		 ORDER BY timestamp`,
		userID, s.format(start), s.format(end),
	)
	if err != nil {
		return nil, fmt.Errorf("query memos: %w", err)
	}
	defer rows.Close()

	return s.scan(rows)
}

// Delete removes the user's memos in [start, end], narrowed to memos whose
// text contains keyword when one is given. It returns the number removed.
func (s *SQLite) Delete(ctx context.Context, userID int64, start, end time.Time, keyword *string) (int64, error) {
	defer observe("delete", time.Now())

	query := "DELETE FROM memo WHERE userID = ? AND timestamp >= ? AND timestamp <= ?"
	args := []any{userID, s.format(start), s.format(end)}
	if keyword != nil && *keyword != "" {
		query += ` AND text LIKE ? ESCAPE '\'`
		args = append(args, containsPattern(*keyword))
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		s.logger.Error("Failed to delete memos", zap.Error(err), zap.Int64("user_id", userID))
		return 0, fmt.Errorf("delete memos: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete memos count: %w", err)
	}
	s.logger.Info("Memos deleted", zap.Int64("user_id", userID), zap.Int64("count", n))
	return n, nil
}

// ListByUser returns all memos of a user, newest first
func (s *SQLite) ListByUser(ctx context.Context, userID int64) ([]domain.Memo, error) {
	defer observe("list", time.Now())

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, text, category, timestamp, userID FROM memo WHERE userID = ? ORDER BY timestamp DESC",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list memos: %w", err)
	}
	defer rows.Close()

	return s.scan(rows)
}

// Search performs a simple text search over a user's memos
func (s *SQLite) Search(ctx context.Context, userID int64, keyword string) ([]domain.Memo, error) {
	defer observe("search", time.Now())

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, text, category, timestamp, userID FROM memo WHERE userID = ? AND text LIKE ? ESCAPE '\' ORDER BY timestamp DESC`,
		userID, containsPattern(keyword),
	)
	if err != nil {
		return nil, fmt.Errorf("search memos: %w", err)
	}
	defer rows.Close()

	return s.scan(rows)
}

func (s *SQLite) scan(rows *sql.Rows) ([]domain.Memo, error) {
	var memos []domain.Memo
	for rows.Next() {
		var (
			m      domain.Memo
			ts     string
			userID sql.NullInt64
		)
		if err := rows.Scan(&m.ID, &m.Text, &m.Category, &ts, &userID); err != nil {
			return nil, fmt.Errorf("scan memo: %w", err)
		}
		t, err := parseStored(ts, s.loc)
		if err != nil {
			s.logger.Warn("Unreadable memo timestamp", zap.Int64("memo_id", m.ID), zap.String("timestamp", ts))
		}
		m.Timestamp = t
		m.UserID = userID.Int64
		memos = append(memos, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate memos: %w", err)
	}
	return memos, nil
}

// parseStored accepts both layouts the original service wrote.
func parseStored(ts string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(domain.TimestampLayout, ts, loc)
	if err == nil {
		return t, nil
	}
	return time.ParseInLocation(domain.DateLayout, ts, loc)
}

func observe(op string, start time.Time) {
	metrics.RecordDBQueryDuration(op, "memo", time.Since(start))
}
