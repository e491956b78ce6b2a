package identity

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Revoker records signed-out token ids until their natural expiry.
type Revoker interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// RedisRevoker stores revoked token ids in Redis with a TTL matching the
// token's remaining lifetime, so the revocation list cleans itself up.
type RedisRevoker struct {
	client *redis.Client
}

var _ Revoker = (*RedisRevoker)(nil)

// NewRedisRevoker builds a Redis-backed revocation list.
func NewRedisRevoker(client *redis.Client) *RedisRevoker {
	if client == nil {
		panic("identity: redis client cannot be nil")
	}
	return &RedisRevoker{client: client}
}

func revocationKey(tokenID string) string {
	return "guardian:revoked:" + tokenID
}

func (r *RedisRevoker) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		// already expired, nothing to record
		return nil
	}
	if err := r.client.Set(ctx, revocationKey(tokenID), "1", ttl).Err(); err != nil {
		return fmt.Errorf("identity: failed to revoke token: %w", err)
	}
	return nil
}

func (r *RedisRevoker) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.client.Exists(ctx, revocationKey(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("identity: failed to check revocation: %w", err)
	}
	return n > 0, nil
}

// MemoryRevoker is the in-process revocation list used when no Redis is
// configured, and in tests.
type MemoryRevoker struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

var _ Revoker = (*MemoryRevoker)(nil)

// NewMemoryRevoker creates an empty in-memory revocation list.
func NewMemoryRevoker() *MemoryRevoker {
	return &MemoryRevoker{revoked: make(map[string]time.Time)}
}

func (r *MemoryRevoker) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.revoked[tokenID] = until
	return nil
}

func (r *MemoryRevoker) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	until, ok := r.revoked[tokenID]
	if !ok {
		return false, nil
	}
	if time.Now().After(until) {
		delete(r.revoked, tokenID)
		return false, nil
	}
	return true, nil
}
