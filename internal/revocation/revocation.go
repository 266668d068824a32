// Package revocation keeps signed tokens that were logged out from being
// accepted again before they expire.
package revocation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Denylist records revoked tokens until their natural expiry.
type Denylist interface {
	Revoke(ctx context.Context, token string, ttl time.Duration) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// fingerprint avoids storing bearer tokens verbatim
func fingerprint(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Noop never revokes anything.
type Noop struct{}

func (Noop) Revoke(context.Context, string, time.Duration) error { return nil }
func (Noop) IsRevoked(context.Context, string) (bool, error)     { return false, nil }

// MemoryDenylist is a process-local denylist. Entries vanish on restart.
type MemoryDenylist struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

func NewMemoryDenylist() *MemoryDenylist {
	return &MemoryDenylist{
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (m *MemoryDenylist) Revoke(_ context.Context, token string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for key, expiry := range m.entries {
		if !now.Before(expiry) {
			delete(m.entries, key)
		}
	}
	m.entries[fingerprint(token)] = now.Add(ttl)
	return nil
}

func (m *MemoryDenylist) IsRevoked(_ context.Context, token string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	expiry, ok := m.entries[fingerprint(token)]
	if !ok {
		return false, nil
	}
	if !m.now().Before(expiry) {
		delete(m.entries, fingerprint(token))
		return false, nil
	}
	return true, nil
}

// RedisDenylist shares revocations between processes through redis key expiry.
type RedisDenylist struct {
	client *redis.Client
	prefix string
}

func NewRedisDenylist(client *redis.Client) *RedisDenylist {
	return &RedisDenylist{client: client, prefix: "denylist:access:"}
}

func (r *RedisDenylist) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	return r.client.Set(ctx, r.prefix+fingerprint(token), "1", ttl).Err()
}

func (r *RedisDenylist) IsRevoked(ctx context.Context, token string) (bool, error) {
	exists, err := r.client.Exists(ctx, r.prefix+fingerprint(token)).Result()
	if err != nil {
		return false, err
	}
	return exists > 0, nil
}
