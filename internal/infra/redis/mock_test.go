//go:build !integration

package redis

import (
	"context"
	"sync"
	"time"

	"telegram-support-relay/internal/domain/model"
	"telegram-support-relay/internal/domain/ports/repository"

	"github.com/go-redis/redis/v8"
)

type mockRedisClient struct {
	GetFunc    func(ctx context.Context, key string) (string, error)
	SetFunc    func(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	SetNXFunc  func(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error)
	DelFunc    func(ctx context.Context, keys ...string) error
	IncrFunc   func(ctx context.Context, key string) (int64, error)
	ExpireFunc func(ctx context.Context, key string, expiration time.Duration) error
}

func (m *mockRedisClient) Ping(ctx context.Context) error { return nil }
func (m *mockRedisClient) Close() error                   { return nil }

func (m *mockRedisClient) Get(ctx context.Context, key string) (string, error) {
	return m.GetFunc(ctx, key)
}
func (m *mockRedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if m.SetFunc == nil {
		return nil
	}
	return m.SetFunc(ctx, key, value, expiration)
}
func (m *mockRedisClient) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error) {
	if m.SetNXFunc == nil {
		return true, nil
	}
	return m.SetNXFunc(ctx, key, value, expiration)
}
func (m *mockRedisClient) Del(ctx context.Context, keys ...string) error {
	if m.DelFunc == nil {
		return nil
	}
	return m.DelFunc(ctx, keys...)
}
func (m *mockRedisClient) Incr(ctx context.Context, key string) (int64, error) {
	return m.IncrFunc(ctx, key)
}
func (m *mockRedisClient) Expire(ctx context.Context, key string, expiration time.Duration) error {
	return m.ExpireFunc(ctx, key, expiration)
}

// mapCache is an in-memory cache honouring SetNX, wired through mockRedisClient.
type mapCache struct {
	mu   sync.Mutex
	vals map[string]string
}

func newMapCache() *mapCache { return &mapCache{vals: make(map[string]string)} }

func (c *mapCache) get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.vals[key]
	return v, ok
}

func (c *mapCache) client() *mockRedisClient {
	return &mockRedisClient{
		GetFunc: func(ctx context.Context, key string) (string, error) {
			if v, ok := c.get(key); ok {
				return v, nil
			}
			return "", redis.Nil
		},
		SetFunc: func(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
			c.mu.Lock()
			defer c.mu.Unlock()
			c.vals[key] = value.(string)
			return nil
		},
		SetNXFunc: func(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error) {
			c.mu.Lock()
			defer c.mu.Unlock()
			if _, ok := c.vals[key]; ok {
				return false, nil
			}
			c.vals[key] = value.(string)
			return true, nil
		},
		DelFunc: func(ctx context.Context, keys ...string) error {
			c.mu.Lock()
			defer c.mu.Unlock()
			for _, k := range keys {
				delete(c.vals, k)
			}
			return nil
		},
	}
}

type mockInnerUserRepo struct {
	UpsertFunc        func(ctx context.Context, tx repository.Tx, u *model.User) (bool, error)
	FindByIDFunc      func(ctx context.Context, tx repository.Tx, id int64) (*model.User, error)
	SetBlockedFunc    func(ctx context.Context, tx repository.Tx, id int64, blocked bool) error
	IsBlockedFunc     func(ctx context.Context, tx repository.Tx, id int64) (bool, error)
	ListBlockedFunc   func(ctx context.Context, tx repository.Tx) ([]*model.User, error)
	ListActiveIDsFunc func(ctx context.Context, tx repository.Tx) ([]int64, error)
}

func (m *mockInnerUserRepo) Upsert(ctx context.Context, tx repository.Tx, u *model.User) (bool, error) {
	return m.UpsertFunc(ctx, tx, u)
}
func (m *mockInnerUserRepo) FindByID(ctx context.Context, tx repository.Tx, id int64) (*model.User, error) {
	return m.FindByIDFunc(ctx, tx, id)
}
func (m *mockInnerUserRepo) SetBlocked(ctx context.Context, tx repository.Tx, id int64, blocked bool) error {
	return m.SetBlockedFunc(ctx, tx, id, blocked)
}
func (m *mockInnerUserRepo) IsBlocked(ctx context.Context, tx repository.Tx, id int64) (bool, error) {
	return m.IsBlockedFunc(ctx, tx, id)
}
func (m *mockInnerUserRepo) ListBlocked(ctx context.Context, tx repository.Tx) ([]*model.User, error) {
	return m.ListBlockedFunc(ctx, tx)
}
func (m *mockInnerUserRepo) ListActiveIDs(ctx context.Context, tx repository.Tx) ([]int64, error) {
	return m.ListActiveIDsFunc(ctx, tx)
}
