package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/jhoicas/inventario-lotes/internal/application/inventory"
	"github.com/jhoicas/inventario-lotes/internal/domain"
)

var _ inventory.Locker = (*Redis)(nil)

// Redis bloqueo distribuido por llave (bsm/redislock). El TTL acota cuánto puede quedar
// tomada una llave si el proceso muere sin liberarla.
type Redis struct {
	client *redislock.Client
	ttl    time.Duration
	wait   time.Duration
	log    zerolog.Logger
}

// NewRedisClient abre el cliente y verifica la conexión.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
		PoolSize: 50,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return rdb, nil
}

// NewRedis construye el locker. wait es el tiempo máximo para obtener cada llave.
func NewRedis(rdb redis.UniversalClient, ttl, wait time.Duration, log zerolog.Logger) *Redis {
	return &Redis{
		client: redislock.New(rdb),
		ttl:    ttl,
		wait:   wait,
		log:    log.With().Str("component", "redis_lock").Logger(),
	}
}

// Lock obtiene todas las llaves en orden o ninguna. Si alguna no se obtiene a tiempo
// devuelve domain.ErrConcurrencyConflict.
func (r *Redis) Lock(ctx context.Context, keys ...string) (func(), error) {
	held := make([]*redislock.Lock, 0, len(keys))
	release := func() {
		for i := len(held) - 1; i >= 0; i-- {
			if err := held[i].Release(context.Background()); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
				r.log.Warn().Err(err).Str("key", held[i].Key()).Msg("no se pudo liberar el bloqueo")
			}
		}
	}
	for _, k := range keys {
		waitCtx, cancel := context.WithTimeout(ctx, r.wait)
		l, err := r.client.Obtain(waitCtx, "lock:"+k, r.ttl, &redislock.Options{
			RetryStrategy: redislock.LinearBackoff(25 * time.Millisecond),
		})
		cancel()
		if err != nil {
			release()
			if errors.Is(err, redislock.ErrNotObtained) || errors.Is(err, context.DeadlineExceeded) {
				return nil, fmt.Errorf("bloqueo %s: %w", k, domain.ErrConcurrencyConflict)
			}
			return nil, fmt.Errorf("bloqueo %s: %w", k, err)
		}
		held = append(held, l)
	}
	return release, nil
}
