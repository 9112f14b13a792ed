package session

import (
	"context"

	"github.com/openstax/rope/internal/model"
)

// Store holds logged-in user payloads keyed by session id. Entries expire
// after the configured TTL; Get on a missing or expired id returns
// ErrInvalidSession.
type Store interface {
	Get(ctx context.Context, id string) (*model.SessionUser, error)
	Set(ctx context.Context, id string, user model.SessionUser) error
	Delete(ctx context.Context, id string) error
}
