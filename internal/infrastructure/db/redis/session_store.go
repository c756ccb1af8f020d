package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/authsec/account-system/internal/core/domain"
	"github.com/authsec/account-system/internal/core/ports"
)

const (
	sessionKeyPrefix  = "session:"
	defaultSessionTTL = 30 * time.Minute
)

// SessionStore keeps login sessions in Redis.
// Key format: session:<uuid> → principal JSON. Every read slides the expiry.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionStore creates a SessionStore. A non-positive ttl falls back to
// defaultSessionTTL.
func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &SessionStore{client: client, ttl: ttl}
}

var _ ports.SessionStore = (*SessionStore)(nil)

type sessionRecord struct {
	Principal domain.Principal `json:"principal"`
	CreatedAt time.Time        `json:"created_at"`
}

// Create stores principal under a fresh session ID.
func (s *SessionStore) Create(ctx context.Context, principal domain.Principal) (string, error) {
	id := uuid.NewString()
	payload, err := json.Marshal(sessionRecord{Principal: principal, CreatedAt: time.Now().UTC()})
	if err != nil {
		return "", fmt.Errorf("encode session: %w", err)
	}
	if err := s.client.Set(ctx, s.key(id), payload, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	return id, nil
}

// Get loads the principal for id and refreshes its expiry.
func (s *SessionStore) Get(ctx context.Context, id string) (domain.Principal, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.Principal{}, domain.ErrUnauthenticated
	}

	raw, err := s.client.GetEx(ctx, s.key(id), s.ttl).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Principal{}, domain.ErrUnauthenticated
		}
		return domain.Principal{}, fmt.Errorf("load session: %w", err)
	}

	var rec sessionRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return domain.Principal{}, domain.ErrUnauthenticated
	}
	return rec.Principal, nil
}

// Delete invalidates the session. Deleting an unknown session is not an error.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *SessionStore) key(id string) string {
	return sessionKeyPrefix + id
}
