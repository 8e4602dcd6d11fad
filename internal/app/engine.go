// Package app arma el motor completo (repositorios, locks y casos de uso) a partir de la configuración.
package app

import (
	"context"
	"fmt"

	"github.com/jhoicas/Produccion-api/internal/application/auth"
	"github.com/jhoicas/Produccion-api/internal/application/bom"
	"github.com/jhoicas/Produccion-api/internal/application/inventory"
	"github.com/jhoicas/Produccion-api/internal/application/ports"
	"github.com/jhoicas/Produccion-api/internal/application/production"
	"github.com/jhoicas/Produccion-api/internal/application/setup"
	"github.com/jhoicas/Produccion-api/internal/application/usecase"
	"github.com/jhoicas/Produccion-api/internal/domain/repository"
	"github.com/jhoicas/Produccion-api/internal/infrastructure/lock"
	"github.com/jhoicas/Produccion-api/internal/infrastructure/memory"
	"github.com/jhoicas/Produccion-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Produccion-api/pkg/config"
	"github.com/jhoicas/Produccion-api/pkg/logger"
)

// Engine casos de uso listos para usar sobre un mismo almacenamiento.
type Engine struct {
	Products    *usecase.ProductUseCase
	WorkCenters *usecase.WorkCenterUseCase
	BOMs        *bom.UseCase
	Ledger      *inventory.LedgerUseCase
	Orders      *production.OrderUseCase
	Seeder      *setup.Seeder
}

// Options elige almacenamiento y política de autorización.
type Options struct {
	InMemory   bool            // sin PostgreSQL; el estado se pierde al salir
	Authorizer auth.Authorizer // nil = auth.DefaultPolicy()
}

// New conecta PostgreSQL (o el store en memoria) y el locker (Redis si REDIS_URL está definido).
// El closer libera pool y cliente Redis.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger, opts Options) (*Engine, func(), error) {
	var (
		repos   repository.Repositories
		tx      ports.TxRunner
		closers []func()
	)
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if opts.InMemory {
		store := memory.NewStore()
		repos = store.Repositories()
		tx = memory.NewTxRunner(store)
	} else {
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		closers = append(closers, pool.Close)
		if err := postgres.Migrate(ctx, pool, log.For("postgres")); err != nil {
			closeAll()
			return nil, nil, err
		}
		repos = postgres.NewRepositories(pool)
		tx = postgres.NewTxRunner(pool)
	}

	var locker ports.Locker
	if cfg.Redis.Enabled() {
		rdb, err := lock.NewRedis(ctx, cfg.Redis.URL)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		closers = append(closers, func() { _ = rdb.Close() })
		locker = lock.NewRedisLocker(rdb, cfg.Lock, cfg.App.Name, log.For("lock"))
	} else {
		locker = lock.NewKeyedMutex(cfg.Lock.Timeout)
	}

	authz := opts.Authorizer
	if authz == nil {
		authz = auth.DefaultPolicy()
	}

	e := &Engine{}
	e.Products = usecase.NewProductUseCase(repos.Products, authz)
	e.WorkCenters = usecase.NewWorkCenterUseCase(repos, tx, locker, authz)
	e.BOMs = bom.NewUseCase(repos, tx, locker, authz, log.For("bom"))
	e.Ledger = inventory.NewLedgerUseCase(repos, tx, locker, authz, log.For("ledger"), cfg.History.PageSize)
	e.Orders = production.NewOrderUseCase(repos, tx, locker, e.Ledger, e.BOMs, e.WorkCenters, authz, log.For("production"))
	e.Seeder = setup.NewSeeder(e.Products, e.WorkCenters, e.BOMs, e.Ledger, log.For("seed"))

	log.Info().
		Bool("in_memory", opts.InMemory).
		Bool("redis_locks", cfg.Redis.Enabled()).
		Dur("lock_timeout", cfg.Lock.Timeout).
		Msg("motor inicializado")
	return e, closeAll, nil
}
