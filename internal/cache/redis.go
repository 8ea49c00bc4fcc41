// Package cache manages the Redis connection and session revocations.
package cache

import (
	"context"
	"time"

	"quill/internal/observability"

	"github.com/redis/go-redis/v9"
)

// Client is the process-wide Redis client. It is nil when Redis is
// unavailable; callers fail open.
var Client *redis.Client

// InitRedis connects to Redis at addr. A failed connection is logged and
// leaves Client nil rather than aborting startup.
func InitRedis(addr string) {
	Client = redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := Client.Ping(ctx).Err(); err != nil {
		observability.Logger.Warn("Redis connection failed, continuing without it",
			"addr", addr, "error", err.Error())
		Client = nil
	} else {
		observability.Logger.Info("Redis connected successfully")
	}
}

// GetClient returns the shared Redis client, or nil when unavailable.
func GetClient() *redis.Client {
	return Client
}

// Sessions tracks revoked session token IDs so logout takes effect before
// token expiry.
type Sessions struct {
	rdb *redis.Client
}

// NewSessions returns a session revocation store backed by rdb.
// rdb may be nil, in which case revocation is a no-op and no token is
// reported revoked.
func NewSessions(rdb *redis.Client) *Sessions {
	return &Sessions{rdb: rdb}
}

func (s *Sessions) key(jti string) string {
	return "session:revoked:" + jti
}

// Revoke marks the token ID revoked until its natural expiry.
func (s *Sessions) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if s.rdb == nil || jti == "" {
		return nil
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return s.rdb.Set(ctx, s.key(jti), "1", ttl).Err()
}

// IsRevoked reports whether the token ID has been revoked. Redis errors
// fail open.
func (s *Sessions) IsRevoked(ctx context.Context, jti string) bool {
	if s.rdb == nil || jti == "" {
		return false
	}
	n, err := s.rdb.Exists(ctx, s.key(jti)).Result()
	if err != nil {
		return false
	}
	return n > 0
}
