package storage

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// PresenceMirror writes a best-effort copy of the in-process presence table
// into redis so dashboards and sibling services can see who is online. The
// gateway never reads it back: the authoritative table lives in service/chat.
type PresenceMirror struct {
	rdb       *redis.Client
	gatewayID string
	ttl       time.Duration
}

func NewPresenceMirror(rdb *redis.Client, gatewayID string, ttl time.Duration) *PresenceMirror {
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	return &PresenceMirror{rdb: rdb, gatewayID: gatewayID, ttl: ttl}
}

// presence key: im:presence:<user>
// value: gateway id, TTL bounds staleness if the gateway dies uncleanly
func presenceKey(user string) string { return "im:presence:" + user }

func (m *PresenceMirror) Online(ctx context.Context, user string) error {
	if m == nil || m.rdb == nil {
		return nil
	}
	return m.rdb.Set(ctx, presenceKey(user), m.gatewayID, m.ttl).Err()
}

func (m *PresenceMirror) Offline(ctx context.Context, user string) error {
	if m == nil || m.rdb == nil {
		return nil
	}
	return m.rdb.Del(ctx, presenceKey(user)).Err()
}

// Lookup reports which gateway (if any) a user is mirrored on. Operational
// tooling only.
func (m *PresenceMirror) Lookup(ctx context.Context, user string) (gatewayID string, online bool, err error) {
	if m == nil || m.rdb == nil {
		return "", false, nil
	}
	val, err := m.rdb.Get(ctx, presenceKey(user)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}
