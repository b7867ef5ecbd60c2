// internal/pkg/auth/session.go
package auth

import (
	"context"
	"time"
)

// SessionStore tracks issued session tokens so they can be revoked before they expire
type SessionStore interface {
	Save(ctx context.Context, sessionID, userID string, ttl time.Duration) error
	Active(ctx context.Context, sessionID string) (bool, error)
	Revoke(ctx context.Context, sessionID string) error
}

// SessionKey is the storage key of a session id
func SessionKey(sessionID string) string {
	return "session:" + sessionID
}
