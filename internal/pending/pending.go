// Package pending holds deletions waiting for user confirmation.
package pending

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/pbaille/memo/internal/domain"
)

// DefaultTTL is how long a deletion waits for confirmation.
const DefaultTTL = 10 * time.Minute

// ErrNotFound is returned for unknown, expired, already used or foreign
// tokens.
var ErrNotFound = errors.New("pending deletion not found")

// Deletion is a resolved delete action owned by a user.
type Deletion struct {
	UserID    int64           `json:"user_id"`
	StartTime time.Time       `json:"start_time"`
	EndTime   time.Time       `json:"end_time"`
	Keyword   *string         `json:"keyword"`
	Category  domain.Category `json:"category"`
}

// FromAction copies the filter of a delete action.
func FromAction(userID int64, d *domain.DeleteTasks) Deletion {
	return Deletion{
		UserID:    userID,
		StartTime: d.StartTime,
		EndTime:   d.EndTime,
		Keyword:   d.Keyword,
		Category:  d.Category,
	}
}

// Store registers deletions under single-use tokens.
type Store interface {
	Put(ctx context.Context, d Deletion) (string, error)
	// Take returns and forgets the deletion. Any attempt consumes the
	// token; it only resolves for the user that registered it.
	Take(ctx context.Context, userID int64, token string) (Deletion, error)
}

func newToken() string {
	return uuid.NewString()
}
