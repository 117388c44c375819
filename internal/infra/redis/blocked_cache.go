package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"telegram-support-relay/internal/domain/model"
	"telegram-support-relay/internal/domain/ports/repository"
	"telegram-support-relay/internal/infra/metrics"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
)

var _ repository.UserRepository = (*blockedCacheDecorator)(nil)

// blockedCacheDecorator caches IsBlocked answers, which are read on every
// inbound user message. All other calls pass through.
type blockedCacheDecorator struct {
	inner repository.UserRepository
	cache RedisClient
	ttl   time.Duration
	log   *zerolog.Logger
}

func NewBlockedCacheDecorator(inner repository.UserRepository, cache RedisClient, ttl time.Duration, logger *zerolog.Logger) repository.UserRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &blockedCacheDecorator{inner: inner, cache: cache, ttl: ttl, log: logger}
}

func blockedKey(id int64) string { return fmt.Sprintf("user:blocked:%d", id) }

func flag(blocked bool) string {
	if blocked {
		return "1"
	}
	return "0"
}

func (d *blockedCacheDecorator) IsBlocked(ctx context.Context, tx repository.Tx, id int64) (bool, error) {
	key := blockedKey(id)
	val, err := d.cache.Get(ctx, key)
	switch {
	case err == nil && (val == "1" || val == "0"):
		metrics.IncBlockedCacheLookup("hit")
		return val == "1", nil
	case err != nil && !errors.Is(err, redis.Nil):
		metrics.IncBlockedCacheLookup("error")
		d.log.Warn().Err(err).Int64("tg_id", id).Msg("blocked cache read failed")
	default:
		metrics.IncBlockedCacheLookup("miss")
	}

	blocked, err := d.inner.IsBlocked(ctx, tx, id)
	if err != nil {
		return false, err
	}
	// The answer may already be stale if SetBlocked ran meanwhile; only fill
	// an empty slot so a refreshed value is never overwritten.
	stored, err := d.cache.SetNX(ctx, key, flag(blocked), d.ttl)
	switch {
	case err != nil:
		metrics.IncBlockedCacheWrite("fill", "error")
		d.log.Warn().Err(err).Int64("tg_id", id).Msg("blocked cache write failed")
	case stored:
		metrics.IncBlockedCacheWrite("fill", "stored")
	default:
		metrics.IncBlockedCacheWrite("fill", "skipped")
	}
	return blocked, nil
}

// SetBlocked writes through, then caches the store's answer. Unknown ids are
// ignored by the store, so the value is read back rather than assumed.
func (d *blockedCacheDecorator) SetBlocked(ctx context.Context, tx repository.Tx, id int64, blocked bool) error {
	if err := d.inner.SetBlocked(ctx, tx, id, blocked); err != nil {
		return err
	}
	key := blockedKey(id)
	current, err := d.inner.IsBlocked(ctx, tx, id)
	if err == nil {
		err = d.cache.Set(ctx, key, flag(current), d.ttl)
	}
	if err == nil {
		metrics.IncBlockedCacheWrite("refresh", "stored")
		return nil
	}
	metrics.IncBlockedCacheWrite("refresh", "error")
	if delErr := d.cache.Del(ctx, key); delErr != nil {
		d.log.Error().Err(delErr).Int64("tg_id", id).Msg("blocked cache invalidation failed")
		return nil
	}
	d.log.Warn().Err(err).Int64("tg_id", id).Msg("blocked cache refresh failed, entry dropped")
	return nil
}

func (d *blockedCacheDecorator) Upsert(ctx context.Context, tx repository.Tx, u *model.User) (bool, error) {
	return d.inner.Upsert(ctx, tx, u)
}

func (d *blockedCacheDecorator) FindByID(ctx context.Context, tx repository.Tx, id int64) (*model.User, error) {
	return d.inner.FindByID(ctx, tx, id)
}

func (d *blockedCacheDecorator) ListBlocked(ctx context.Context, tx repository.Tx) ([]*model.User, error) {
	return d.inner.ListBlocked(ctx, tx)
}

func (d *blockedCacheDecorator) ListActiveIDs(ctx context.Context, tx repository.Tx) ([]int64, error) {
	return d.inner.ListActiveIDs(ctx, tx)
}
