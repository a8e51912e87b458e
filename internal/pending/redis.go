package pending

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Redis shares pending deletions between service instances.
type Redis struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedis wraps an existing client; ttl <= 0 selects DefaultTTL.
func NewRedis(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *Redis {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Redis{rdb: rdb, ttl: ttl, logger: logger}
}

func key(token string) string {
	return "memo:pending_delete:" + token
}

func (r *Redis) Put(ctx context.Context, d Deletion) (string, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return "", fmt.Errorf("marshal deletion: %w", err)
	}

	token := newToken()
	if err := r.rdb.Set(ctx, key(token), data, r.ttl).Err(); err != nil {
		return "", fmt.Errorf("store deletion: %w", err)
	}
	r.logger.Debug("Pending deletion stored", zap.Int64("user_id", d.UserID), zap.Duration("ttl", r.ttl))
	return token, nil
}

func (r *Redis) Take(ctx context.Context, userID int64, token string) (Deletion, error) {
	data, err := r.rdb.GetDel(ctx, key(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Deletion{}, ErrNotFound
	}
	if err != nil {
		return Deletion{}, fmt.Errorf("load deletion: %w", err)
	}

	var d Deletion
	if err := json.Unmarshal(data, &d); err != nil {
		return Deletion{}, fmt.Errorf("unmarshal deletion: %w", err)
	}
	if d.UserID != userID {
		r.logger.Warn("Pending deletion claimed by another user",
			zap.Int64("owner", d.UserID),
			zap.Int64("user_id", userID),
		)
		return Deletion{}, ErrNotFound
	}
	return d, nil
}
