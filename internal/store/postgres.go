package store

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/pbaille/memo/internal/config"
	"github.com/pbaille/memo/internal/domain"
)

//go:embed postgres_schema.sql
var postgresSchema string

// Postgres stores memos in PostgreSQL. Timestamps are stored as instants and
// read back in the store's location.
type Postgres struct {
	db     *pgxpool.Pool
	loc    *time.Location
	logger *zap.Logger
}

// NewPostgres connects the pool and ensures the schema exists.
func NewPostgres(ctx context.Context, cfg config.DBConfig, loc *time.Location, logger *zap.Logger) (*Postgres, error) {
	logger.Info("Initializing PostgreSQL connection pool",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("db", cfg.Name),
	)

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse db config: %w", err)
	}
	poolCfg.MaxConns = 10
	poolCfg.MinConns = 1
	poolCfg.MaxConnIdleTime = time.Minute

	connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(connectCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	if _, err := pool.Exec(connectCtx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	if loc == nil {
		loc = time.Local
	}
	logger.Info("PostgreSQL connection established")
	return &Postgres{db: pool, loc: loc, logger: logger}, nil
}

func (p *Postgres) Close() error {
	p.db.Close()
	return nil
}

func (p *Postgres) Insert(ctx context.Context, m *domain.Memo) (int64, error) {
	defer observe("insert", time.Now())

	var id int64
	err := p.db.QueryRow(ctx,
		`INSERT INTO memos (text, category, timestamp, user_id)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		m.Text, m.Category, m.Timestamp, m.UserID,
	).Scan(&id)
	if err != nil {
		p.logger.Error("Failed to insert memo", zap.Error(err), zap.Int64("user_id", m.UserID))
		return 0, fmt.Errorf("insert memo: %w", err)
	}
	m.ID = id
	p.logger.Debug("Memo inserted", zap.Int64("memo_id", id), zap.Int64("user_id", m.UserID))
	return id, nil
}

func (p *Postgres) Query(ctx context.Context, userID int64, start, end time.Time) ([]domain.Memo, error) {
	defer observe("query", time.Now())

	rows, err := p.db.Query(ctx,
		`SELECT id, text, category, timestamp, user_id FROM memos
		 WHERE user_id = $1 AND timestamp >= $2 AND timestamp <= $3
		 ORDER BY timestamp`,
		userID, start, end,
	)
	if err != nil {
		return nil, fmt.Errorf("query memos: %w", err)
	}
	return p.collect(rows)
}

func (p *Postgres) Delete(ctx context.Context, userID int64, start, end time.Time, keyword *string) (int64, error) {
	defer observe("delete", time.Now())

	query := "DELETE FROM memos WHERE user_id = $1 AND timestamp >= $2 AND timestamp <= $3"
	args := []any{userID, start, end}
	if keyword != nil && *keyword != "" {
		query += ` AND text LIKE $4 ESCAPE '\'`
		args = append(args, containsPattern(*keyword))
	}

	tag, err := p.db.Exec(ctx, query, args...)
	if err != nil {
		p.logger.Error("Failed to delete memos", zap.Error(err), zap.Int64("user_id", userID))
		return 0, fmt.Errorf("delete memos: %w", err)
	}
	p.logger.Info("Memos deleted", zap.Int64("user_id", userID), zap.Int64("count", tag.RowsAffected()))
	return tag.RowsAffected(), nil
}

func (p *Postgres) ListByUser(ctx context.Context, userID int64) ([]domain.Memo, error) {
	defer observe("list", time.Now())

	rows, err := p.db.Query(ctx,
		"SELECT id, text, category, timestamp, user_id FROM memos WHERE user_id = $1 ORDER BY timestamp DESC",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list memos: %w", err)
	}
	return p.collect(rows)
}

func (p *Postgres) Search(ctx context.Context, userID int64, keyword string) ([]domain.Memo, error) {
	defer observe("search", time.Now())

	rows, err := p.db.Query(ctx,
		`SELECT id, text, category, timestamp, user_id FROM memos WHERE user_id = $1 AND text ILIKE $2 ESCAPE '\' ORDER BY timestamp DESC`,
		userID, containsPattern(keyword),
	)
	if err != nil {
		return nil, fmt.Errorf("search memos: %w", err)
	}
	return p.collect(rows)
}

func (p *Postgres) collect(rows pgx.Rows) ([]domain.Memo, error) {
	defer rows.Close()

	var memos []domain.Memo
	for rows.Next() {
		var (
			m      domain.Memo
			userID *int64
		)
		if err := rows.Scan(&m.ID, &m.Text, &m.Category, &m.Timestamp, &userID); err != nil {
			return nil, fmt.Errorf("scan memo: %w", err)
		}
		m.Timestamp = m.Timestamp.In(p.loc)
		if userID != nil {
			m.UserID = *userID
		}
		memos = append(memos, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate memos: %w", err)
	}
	return memos, nil
}
