package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/magusbylili/storefront-backend/pkg/config"
	redisclient "github.com/magusbylili/storefront-backend/pkg/redis"
	redislib "github.com/redis/go-redis/v9"
)

type sessionStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

type sessionKeyer interface {
	SessionKey(jti string) string
}

// Manager tracks active token sessions in Redis, keyed by JWT jti. A token
// whose jti is absent from the registry is treated as logged out even when
// its signature and expiry are still valid.
type Manager struct {
	store sessionStore
	keyer sessionKeyer
	ttl   time.Duration
}

// Checker exposes the read-only surface needed by middleware.
type Checker interface {
	HasSession(ctx context.Context, jti string) (bool, error)
}

// NewManager constructs a session manager backed by Redis.
func NewManager(client *redisclient.Client, cfg config.JWTConfig) (*Manager, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	ttl := cfg.SessionTTL()
	if ttl <= 0 {
		return nil, fmt.Errorf("session ttl must be positive")
	}

	return &Manager{
		store: client,
		keyer: client,
		ttl:   ttl,
	}, nil
}

// Create registers the jti so the minted token is accepted until logout or expiry.
func (m *Manager) Create(ctx context.Context, jti, userID string) error {
	if strings.TrimSpace(jti) == "" {
		return fmt.Errorf("jti is required")
	}
	return m.store.Set(ctx, m.keyer.SessionKey(jti), userID, m.ttl)
}

// HasSession reports whether the provided jti still has an active session.
func (m *Manager) HasSession(ctx context.Context, jti string) (bool, error) {
	if strings.TrimSpace(jti) == "" {
		return false, fmt.Errorf("jti is required")
	}
	if _, err := m.store.Get(ctx, m.keyer.SessionKey(jti)); err != nil {
		if errors.Is(err, redislib.Nil) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Revoke deletes the session tied to the jti, invalidating its token.
func (m *Manager) Revoke(ctx context.Context, jti string) error {
	if strings.TrimSpace(jti) == "" {
		return fmt.Errorf("jti is required")
	}
	return m.store.Del(ctx, m.keyer.SessionKey(jti))
}
