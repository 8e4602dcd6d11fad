package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Produccion-api/internal/application/ports"
	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/pkg/config"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

var _ ports.Locker = (*RedisLocker)(nil)

// releaseScript borra la clave solo si sigue siendo nuestra (el token coincide).
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// NewRedis crea y valida la conexión con Redis.
func NewRedis(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}

// RedisLocker lock distribuido con SET NX PX. El TTL cubre la caída del proceso que lo tiene;
// debe superar la duración de cualquier operación protegida.
type RedisLocker struct {
	rdb    *redis.Client
	cfg    config.LockConfig
	prefix string
	log    zerolog.Logger
}

// NewRedisLocker construye el locker. prefix separa entornos que comparten el mismo Redis.
func NewRedisLocker(rdb *redis.Client, cfg config.LockConfig, prefix string, log zerolog.Logger) *RedisLocker {
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = 25 * time.Millisecond
	}
	return &RedisLocker{rdb: rdb, cfg: cfg, prefix: prefix, log: log}
}

// Lock adquiere las claves en orden con un token único por llamada.
func (l *RedisLocker) Lock(ctx context.Context, keys ...string) (func(), error) {
	keys = normalize(keys)
	ctx, cancel := context.WithTimeout(ctx, l.cfg.Timeout)
	defer cancel()

	token := uuid.NewString()
	held := make([]string, 0, len(keys))
	release := func() {
		// ctx propio: el del caller puede estar cancelado al liberar
		rctx, rcancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer rcancel()
		for i := len(held) - 1; i >= 0; i-- {
			if err := releaseScript.Run(rctx, l.rdb, []string{held[i]}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
				l.log.Warn().Err(err).Str("key", held[i]).Msg("no se pudo liberar el lock; expira por TTL")
			}
		}
	}

	for _, key := range keys {
		full := l.prefix + key
		if err := l.acquire(ctx, full, token); err != nil {
			release()
			return nil, err
		}
		held = append(held, full)
	}

	var once sync.Once
	return func() { once.Do(release) }, nil
}

func (l *RedisLocker) acquire(ctx context.Context, key, token string) error {
	ticker := time.NewTicker(l.cfg.RetryInterval)
	defer ticker.Stop()
	for {
		ok, err := l.rdb.SetNX(ctx, key, token, l.cfg.TTL).Result()
		if err != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("%w: %s", domain.ErrBusy, key)
			}
			return fmt.Errorf("redis lock %s: %w", key, err)
		}
		if ok {
			return nil
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return fmt.Errorf("%w: %s", domain.ErrBusy, key)
		}
	}
}
