package repository

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedSessionPrefix = "session:revoked:"

// SessionRevocationRepository keeps the digests of sessions ended by logout
// until the tokens would have expired anyway.
type SessionRevocationRepository struct {
	client *redis.Client
	now    func() time.Time
}

// NewSessionRevocationRepository constructs a Redis-backed revocation store.
func NewSessionRevocationRepository(client *redis.Client) *SessionRevocationRepository {
	return &SessionRevocationRepository{client: client, now: time.Now}
}

// Revoke marks digest as revoked until expiresAt. Expired sessions are skipped.
func (r *SessionRevocationRepository) Revoke(ctx context.Context, digest string, expiresAt time.Time) error {
	if r == nil || r.client == nil {
		return errors.New("redis client not configured")
	}
	ttl := expiresAt.Sub(r.now())
	if ttl <= 0 {
		return nil
	}
	return r.client.Set(ctx, revokedSessionPrefix+digest, 1, ttl).Err()
}

// IsRevoked reports whether digest was revoked.
func (r *SessionRevocationRepository) IsRevoked(ctx context.Context, digest string) (bool, error) {
	if r == nil || r.client == nil {
		return false, errors.New("redis client not configured")
	}
	n, err := r.client.Exists(ctx, revokedSessionPrefix+digest).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
