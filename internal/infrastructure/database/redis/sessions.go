// internal/infrastructure/database/redis/sessions.go
package redis

import (
	"context"
	"time"

	"github.com/your-org/storefront-backend/internal/pkg/auth"
)

// SessionStore keeps one key per issued session, expiring with the token
type SessionStore struct {
	client *Client
}

type sessionRecord struct {
	UserID   string    `json:"user_id"`
	IssuedAt time.Time `json:"issued_at"`
}

func (s *SessionStore) Save(ctx context.Context, sessionID, userID string, ttl time.Duration) error {
	record := sessionRecord{UserID: userID, IssuedAt: time.Now().UTC()}
	return s.client.SetJSON(ctx, auth.SessionKey(sessionID), record, ttl)
}

func (s *SessionStore) Active(ctx context.Context, sessionID string) (bool, error) {
	count, err := s.client.Redis.Exists(ctx, auth.SessionKey(sessionID)).Result()
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *SessionStore) Revoke(ctx context.Context, sessionID string) error {
	return s.client.Redis.Del(ctx, auth.SessionKey(sessionID)).Err()
}

// Owner returns the user a live session was issued to
func (s *SessionStore) Owner(ctx context.Context, sessionID string) (string, bool, error) {
	var record sessionRecord
	found, err := s.client.GetJSON(ctx, auth.SessionKey(sessionID), &record)
	if err != nil || !found {
		return "", false, err
	}
	return record.UserID, true, nil
}
