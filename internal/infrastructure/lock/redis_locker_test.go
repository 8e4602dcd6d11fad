package lock_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/infrastructure/lock"
	"github.com/jhoicas/Produccion-api/pkg/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Requiere un Redis real: REDIS_URL=redis://localhost:6379/15 go test ./internal/infrastructure/lock/...
func newRedisLocker(t *testing.T, timeout time.Duration) *lock.RedisLocker {
	t.Helper()
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL no definido")
	}
	rdb, err := lock.NewRedis(context.Background(), url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })
	cfg := config.LockConfig{Timeout: timeout, RetryInterval: 5 * time.Millisecond, TTL: 5 * time.Second}
	return lock.NewRedisLocker(rdb, cfg, "test:"+uuid.NewString()+":", zerolog.Nop())
}

func TestRedisLocker_ExclusionYBusy(t *testing.T) {
	l := newRedisLocker(t, 50*time.Millisecond)
	ctx := context.Background()

	unlock, err := l.Lock(ctx, "product:p1", "product:p2")
	require.NoError(t, err)

	_, err = l.Lock(ctx, "product:p2")
	assert.ErrorIs(t, err, domain.ErrBusy)

	unlock()
	unlock()

	again, err := l.Lock(ctx, "product:p2")
	require.NoError(t, err)
	again()
}
